package am

// Config represents the core foreman configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Pulse    PulseConfig    `mapstructure:"pulse"`
	World    WorldConfig    `mapstructure:"world"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig configures the SQLite session store
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// PulseConfig configures the frame-driven control loop
type PulseConfig struct {
	LivenessFrames  int `mapstructure:"liveness_frames"`  // Frames between liveness passes (default: 5)
	ReconcileFrames int `mapstructure:"reconcile_frames"` // Frames between reconciliation passes (default: 600)

	// How the daemon advances simulated time
	TickIntervalMS int `mapstructure:"tick_interval_ms"` // Wall-clock interval between ticks (default: 100)
	FramesPerTick  int `mapstructure:"frames_per_tick"`  // Frames advanced per tick (default: 10)
}

// WorldConfig configures the simulated host world
type WorldConfig struct {
	Fixture string `mapstructure:"fixture"` // Path to a YAML or TOML fixture
	Watch   bool   `mapstructure:"watch"`   // Reload the fixture when it changes on disk
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Address string `mapstructure:"address"` // Listen address, empty disables the endpoint
}

// LogConfig configures logging output
type LogConfig struct {
	Theme string `mapstructure:"theme"` // Color theme: gruvbox, everforest
	JSON  bool   `mapstructure:"json"`
}

// Default values
const (
	DefaultDatabasePath    = "foreman.db"
	DefaultLivenessFrames  = 5
	DefaultReconcileFrames = 600 // half an in-world day
	DefaultTickIntervalMS  = 100
	DefaultFramesPerTick   = 10
	DefaultLogTheme        = "everforest"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
