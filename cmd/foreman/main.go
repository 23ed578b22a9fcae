package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/foreman/cmd/foreman/commands"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

var rootCmd = &cobra.Command{
	Use:   "foreman",
	Short: "foreman - repeat-job protection and production workflow",
	Long: `foreman - repeat-job protection and production workflow.

foreman watches the repeat jobs of a simulated world, rebuilds the ones that
vanish, and suspends or resumes them to keep stocks inside user-defined
bands.

Available commands:
  workflow - Inspect and change production constraints
  run      - Drive the world and controller from wall-clock time
  am       - Manage foreman configuration ("I am")
  version  - Show build information

Examples:
  foreman workflow count BAR//COAL 20     # Keep 15-20 coal bars
  foreman workflow list                   # Show constraints and counts
  foreman workflow jobs                   # Show protected jobs
  foreman run --metrics-address :9090     # Start the control loop`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return commands.InitLogger(cmd)
	},
}

func init() {
	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.WorkflowCmd)
	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "\nHint: %s\n", hint)
		}
		os.Exit(1)
	}
}
