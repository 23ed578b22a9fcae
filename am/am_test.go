package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/foreman/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance without user/system config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "foreman.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Pulse.LivenessFrames)
	assert.Equal(t, 600, cfg.Pulse.ReconcileFrames)
	assert.Equal(t, 100, cfg.Pulse.TickIntervalMS)
	assert.Equal(t, 10, cfg.Pulse.FramesPerTick)
	assert.Equal(t, "everforest", cfg.Log.Theme)
	assert.Empty(t, cfg.Metrics.Address)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/tmp/session.db"

[pulse]
reconcile_frames = 1200

[world]
fixture = "fortress.yaml"
watch = true
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/session.db", cfg.Database.Path)
	assert.Equal(t, 1200, cfg.Pulse.ReconcileFrames)
	assert.Equal(t, 5, cfg.Pulse.LivenessFrames, "unset keys keep defaults")
	assert.Equal(t, "fortress.yaml", cfg.World.Fixture)
	assert.True(t, cfg.World.Watch)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Pulse: PulseConfig{LivenessFrames: 5, ReconcileFrames: 600, TickIntervalMS: 100, FramesPerTick: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero tick interval means default", func(c *Config) { c.Pulse.TickIntervalMS = 0 }, false},
		{"negative tick interval", func(c *Config) { c.Pulse.TickIntervalMS = -1 }, true},
		{"zero liveness frames", func(c *Config) { c.Pulse.LivenessFrames = 0 }, true},
		{"zero reconcile frames", func(c *Config) { c.Pulse.ReconcileFrames = 0 }, true},
		{"liveness slower than reconcile", func(c *Config) { c.Pulse.LivenessFrames = 700 }, true},
		{"zero frames per tick", func(c *Config) { c.Pulse.FramesPerTick = 0 }, true},
		{"watch without fixture", func(c *Config) { c.World.Watch = true }, true},
		{"watch with fixture", func(c *Config) { c.World.Watch = true; c.World.Fixture = "w.yaml" }, false},
		{"unknown theme", func(c *Config) { c.Log.Theme = "solarized" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Config{Log: LogConfig{Theme: "neon"}}
	err := cfg.Validate()
	require.Error(t, err)

	problems := Problems(err)
	assert.GreaterOrEqual(t, len(problems), 4)
	assert.Contains(t, problems, `log.theme must be everforest or gruvbox, got "neon"`)
}

func TestGetters(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultDatabasePath, cfg.GetDatabasePath())
	assert.Equal(t, DefaultLogTheme, cfg.GetLogTheme())
	assert.Equal(t, int64(100), cfg.GetTickInterval().Milliseconds())

	cfg.Pulse.TickIntervalMS = 250
	assert.Equal(t, int64(250), cfg.GetTickInterval().Milliseconds())
}

func TestEnvOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("FOREMAN_PULSE_RECONCILE_FRAMES", "300")
	t.Setenv("FOREMAN_DATABASE_PATH", "env.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Pulse.ReconcileFrames)
	assert.Equal(t, "env.db", cfg.Database.Path)

	var found bool
	for _, s := range GetConfigIntrospection() {
		if s.Key == "database.path" {
			found = true
			assert.Equal(t, SourceEnvironment, s.Source)
			assert.Equal(t, "FOREMAN_DATABASE_PATH", s.SourcePath)
		}
	}
	assert.True(t, found)
}

func TestIntrospect_FileSources(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("world.fixture", "fortress.toml")

	settings := Introspect(v, map[string]SourceInfo{
		"world.fixture": {Source: SourceProject, Path: "/work/am.toml"},
	})

	byKey := map[string]SettingInfo{}
	for _, s := range settings {
		byKey[s.Key] = s
	}
	assert.Equal(t, SourceProject, byKey["world.fixture"].Source)
	assert.Equal(t, "fortress.toml", byKey["world.fixture"].Value)
	assert.Equal(t, SourceDefault, byKey["pulse.liveness_frames"].Source)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "FOREMAN_PULSE_FRAMES_PER_TICK", EnvKey("pulse.frames_per_tick"))
}
