package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/sym"
	"github.com/teranos/foreman/workflow"
)

// WorkflowCmd runs one controller command against the configured world.
var WorkflowCmd = &cobra.Command{
	Use:   "workflow [command] [args...]",
	Short: sym.Workflow + " Inspect and change production constraints",
	Long: sym.Workflow + ` workflow - keep stocks inside a band by suspending and resuming repeat jobs

Each call loads the world fixture and the session store, runs one full
reconciliation pass and then the command.

Commands:
  enable|disable [drybuckets] [auto-melt]
      Without options, switch the controller on or off. With options,
      switch only those item options.
  jobs
      List protected jobs, limited to the selected building if any.
  list
      List constraints with their live counts (default).
  count|amount <selector> <limit> [gap]
      Create or update a constraint. Production resumes at limit-gap and
      stops at limit. Implies enable.
  unlimit <selector>
      Remove a constraint.

Selectors are ITEM_TYPE[:SUBTYPE]/[CATEGORIES]/[MATERIAL], for example
BAR//COAL, BAR/metal, THREAD/silk, FOOD:ITEM_FOOD_ROAST.

Pass a negative gap after "--", e.g. "workflow -- count BAR//COAL 20 -1".`,
	Args: cobra.ArbitraryArgs,
	RunE: runWorkflow,
}

func init() {
	WorkflowCmd.Flags().Bool("save-world", false, "Write the world back to its fixture after the command")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	release := s.world.Suspend()
	res, err := workflow.NewRouter(s.wf, s.world).Run(ctx, args)
	release()
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save-world"); save {
		if err := s.saveWorld(); err != nil {
			return errors.Wrap(err, "failed to save world")
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		return writeJSONResult(out, res)
	}
	renderResult(out, res)
	return nil
}
