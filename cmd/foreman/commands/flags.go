package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/foreman/am"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

// Global flag names
const (
	flagVerbose = "verbose"
	flagJSON    = "json"
	flagConfig  = "config"
	flagWorld   = "world"
	flagDB      = "db"
)

// AddGlobalFlags registers the persistent flags every command reads.
func AddGlobalFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.CountP(flagVerbose, "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	pf.Bool(flagJSON, false, "Print results and logs as JSON")
	pf.String(flagConfig, "", "Read configuration from this TOML file instead of the am cascade")
	pf.String(flagWorld, "", "World fixture (YAML or TOML), overrides world.fixture")
	pf.String(flagDB, "", "SQLite session store, overrides database.path")
}

// InitLogger configures the global logger from -v, --json and log.* settings.
func InitLogger(cmd *cobra.Command) error {
	verbosity, _ := cmd.Flags().GetCount(flagVerbose)
	opts := logger.Options{Level: logger.VerbosityToLevel(verbosity)}
	opts.JSON, _ = cmd.Flags().GetBool(flagJSON)

	if cfg, err := loadConfig(cmd); err == nil {
		opts.Theme = cfg.GetLogTheme()
		opts.JSON = opts.JSON || cfg.Log.JSON
	}

	if err := logger.Setup(opts); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// loadConfig reads --config when given, otherwise the am cascade.
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig)
	if path != "" {
		return am.LoadFromFile(path)
	}
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool(flagJSON)
	return on
}
