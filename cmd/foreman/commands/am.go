package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/foreman/am"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage foreman configuration",
	Long: sym.AM + ` am - Manage foreman configuration ("I am")

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/foreman/am.toml)
3. User config (~/.foreman/am.toml)
4. Project config (./am.toml, searched upward)
5. Environment variables (FOREMAN_* prefix)

Examples:
  foreman am show                    # Show current configuration
  foreman am show --format json      # Show configuration in JSON format
  foreman am get pulse.reconcile_frames
  foreman am set pulse.reconcile_frames 300
  foreman am validate                # Validate current configuration
  foreman am where                   # Show where each setting comes from`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, pulse.liveness_frames)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value",
	Long: `Write a configuration value into the --config file, the active config
file, or ./am.toml when none exists. A running daemon watching that file
picks up pulse cadence and log theme changes.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting is loaded from",
	RunE:  runAmWhere,
}

func init() {
	amShowCmd.Flags().String("format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

// configDocument mirrors am.Config with serialisation tags for display.
type configDocument struct {
	Database struct {
		Path string `json:"path" yaml:"path" toml:"path"`
	} `json:"database" yaml:"database" toml:"database"`
	Pulse struct {
		LivenessFrames  int `json:"liveness_frames" yaml:"liveness_frames" toml:"liveness_frames"`
		ReconcileFrames int `json:"reconcile_frames" yaml:"reconcile_frames" toml:"reconcile_frames"`
		TickIntervalMS  int `json:"tick_interval_ms" yaml:"tick_interval_ms" toml:"tick_interval_ms"`
		FramesPerTick   int `json:"frames_per_tick" yaml:"frames_per_tick" toml:"frames_per_tick"`
	} `json:"pulse" yaml:"pulse" toml:"pulse"`
	World struct {
		Fixture string `json:"fixture" yaml:"fixture" toml:"fixture"`
		Watch   bool   `json:"watch" yaml:"watch" toml:"watch"`
	} `json:"world" yaml:"world" toml:"world"`
	Metrics struct {
		Address string `json:"address" yaml:"address" toml:"address"`
	} `json:"metrics" yaml:"metrics" toml:"metrics"`
	Log struct {
		Theme string `json:"theme" yaml:"theme" toml:"theme"`
		JSON  bool   `json:"json" yaml:"json" toml:"json"`
	} `json:"log" yaml:"log" toml:"log"`
}

func newConfigDocument(cfg *am.Config) configDocument {
	var doc configDocument
	doc.Database.Path = cfg.Database.Path
	doc.Pulse.LivenessFrames = cfg.Pulse.LivenessFrames
	doc.Pulse.ReconcileFrames = cfg.Pulse.ReconcileFrames
	doc.Pulse.TickIntervalMS = cfg.Pulse.TickIntervalMS
	doc.Pulse.FramesPerTick = cfg.Pulse.FramesPerTick
	doc.World.Fixture = cfg.World.Fixture
	doc.World.Watch = cfg.World.Watch
	doc.Metrics.Address = cfg.Metrics.Address
	doc.Log.Theme = cfg.Log.Theme
	doc.Log.JSON = cfg.Log.JSON
	return doc
}

// encodeConfig renders cfg in one of the supported formats.
func encodeConfig(cfg *am.Config, format string) ([]byte, error) {
	doc := newConfigDocument(cfg)
	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to JSON")
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to YAML")
		}
		return append([]byte("# foreman configuration\n"), data...), nil
	case "toml":
		data, err := toml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal config to TOML")
		}
		return append([]byte("# foreman configuration\n"), data...), nil
	}
	return nil, errors.NewUsageError("unsupported format: %s (supported: toml, json, yaml)", format)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	data, err := encodeConfig(cfg, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.NewNotFoundError("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

// parseValue types a command-line value the way TOML would.
func parseValue(s string) interface{} {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func runAmSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if !am.GetViper().IsSet(key) {
		return errors.NewNotFoundError("configuration key %q not found", key)
	}

	path, _ := cmd.Flags().GetString(flagConfig)
	if path == "" {
		path = am.ActiveConfigFile()
	}
	if path == "" {
		path = "am.toml"
	}
	if err := am.SetValue(path, key, parseValue(raw)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s = %s (%s)\n", pterm.Green("✓"), key, raw, path)
	if cfg, err := am.LoadFromFile(path); err == nil {
		if err := cfg.Validate(); err != nil {
			for _, p := range am.Problems(err) {
				fmt.Fprintf(out, "  %s %s\n", pterm.Yellow("!"), p)
			}
		}
	}
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := cfg.Validate(); err != nil {
		for _, p := range am.Problems(err) {
			fmt.Fprintf(out, "  %s %s\n", pterm.Red("✗"), p)
		}
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprintln(out, pterm.Green("✓ Configuration is valid"))
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if active := am.ActiveConfigFile(); active != "" {
		fmt.Fprintf(out, "Active config file: %s\n\n", active)
	} else {
		fmt.Fprintln(out, "No config file found, using defaults and environment.")
		fmt.Fprintln(out)
	}
	for _, s := range am.GetConfigIntrospection() {
		source := pterm.Gray(string(s.Source))
		switch s.Source {
		case am.SourceEnvironment:
			source = pterm.Yellow(string(s.Source))
		case am.SourceProject, am.SourceUser, am.SourceSystem:
			source = pterm.Cyan(string(s.Source))
		}
		line := fmt.Sprintf("  %-24s = %-16v %s", s.Key, s.Value, source)
		if s.SourcePath != "" {
			line += " " + pterm.Gray(s.SourcePath)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
