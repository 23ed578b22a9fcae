package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("pulse.liveness_frames", DefaultLivenessFrames)
	v.SetDefault("pulse.reconcile_frames", DefaultReconcileFrames)
	v.SetDefault("pulse.tick_interval_ms", DefaultTickIntervalMS)
	v.SetDefault("pulse.frames_per_tick", DefaultFramesPerTick)

	v.SetDefault("world.fixture", "")
	v.SetDefault("world.watch", false)

	v.SetDefault("metrics.address", "")

	v.SetDefault("log.theme", DefaultLogTheme)
	v.SetDefault("log.json", false)
}

// BindEnvVars explicitly binds the settings most often overridden per run
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "FOREMAN_DATABASE_PATH")
	v.BindEnv("world.fixture", "FOREMAN_WORLD_FIXTURE")
	v.BindEnv("metrics.address", "FOREMAN_METRICS_ADDRESS")
	v.BindEnv("log.theme", "FOREMAN_LOG_THEME")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetTickInterval returns the wall-clock interval between pulse ticks
func (c *Config) GetTickInterval() time.Duration {
	if c.Pulse.TickIntervalMS <= 0 {
		return DefaultTickIntervalMS * time.Millisecond
	}
	return time.Duration(c.Pulse.TickIntervalMS) * time.Millisecond
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Pulse: {Liveness: %d, Reconcile: %d}, World: %s}",
		c.Database.Path, c.Pulse.LivenessFrames, c.Pulse.ReconcileFrames, c.World.Fixture)
}
