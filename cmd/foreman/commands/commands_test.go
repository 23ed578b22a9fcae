package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/foreman/am"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/workflow"
	"github.com/teranos/foreman/world/sim"
)

const furnaceFixture = `session: cli-test
buildings:
  - id: 1
    name: Wood Furnace
jobs:
  - id: 5
    type: MakeCharcoal
    holder: 1
    repeat: true
    suspend: true
    items:
      - type: WOOD
items:
  - id: 100
    type: BAR
    material: COAL
  - id: 101
    type: BAR
    material: COAL
`

type cli struct {
	t      *testing.T
	dir    string
	world  string
	db     string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	pterm.DisableColor()
	dir := t.TempDir()
	c := &cli{
		t:      t,
		dir:    dir,
		world:  filepath.Join(dir, "fort.yaml"),
		db:     filepath.Join(dir, "foreman.db"),
		config: filepath.Join(dir, "am.toml"),
	}
	require.NoError(t, os.WriteFile(c.world, []byte(furnaceFixture), 0644))
	require.NoError(t, os.WriteFile(c.config, []byte("[pulse]\nliveness_frames = 1\n"), 0644))
	return c
}

// run executes a command tree with every global flag set explicitly, since
// cobra keeps flag values between executions of the same command.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := &cobra.Command{Use: "foreman", SilenceErrors: true, SilenceUsage: true}
	AddGlobalFlags(root)
	root.AddCommand(WorkflowCmd, AmCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	full := append([]string{}, args...)
	full = append(full, "--config", c.config, "--world", c.world, "--db", c.db, "--json=false")
	root.SetArgs(full)
	c.t.Cleanup(func() { WorkflowCmd.Flags().Set("save-world", "false") })
	err := root.Execute()
	return out.String(), err
}

func (c *cli) runJSON(args ...string) *workflow.Result {
	c.t.Helper()
	out, err := c.run(append(args, "--json=true")...)
	require.NoError(c.t, err, out)
	var res workflow.Result
	require.NoError(c.t, json.Unmarshal([]byte(out), &res), out)
	return &res
}

func TestWorkflowCountPersistsAcrossRuns(t *testing.T) {
	c := newCLI(t)

	res := c.runJSON("workflow", "count", "BAR//COAL", "20")
	assert.Equal(t, "count", res.Command)
	require.Len(t, res.Constraints, 1)
	got := res.Constraints[0]
	assert.Equal(t, "BAR//COAL", got.Spec)
	assert.Equal(t, 20, got.Goal)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, workflow.RequestResume, got.Request)

	res = c.runJSON("workflow", "list")
	require.Len(t, res.Constraints, 1, "constraint reloaded from the session store")
	assert.Empty(t, res.Notes, "count enabled the controller")

	res = c.runJSON("workflow", "unlimit", "BAR//COAL")
	assert.Equal(t, "unlimit", res.Command)

	res = c.runJSON("workflow", "list")
	assert.Empty(t, res.Constraints)
}

func TestWorkflowSaveWorld(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("workflow", "count", "BAR//COAL", "20", "--save-world")
	require.NoError(t, err)

	w, err := sim.LoadFile(c.world, nil)
	require.NoError(t, err)
	job := w.FindJob(5)
	require.NotNil(t, job)
	assert.False(t, job.Flags.Suspend, "low coal resumed the furnace")
}

func TestWorkflowTextOutput(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("workflow", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No constraints.")
	assert.Contains(t, out, "Note: workflow is not enabled.")

	out, err = c.run("workflow", "amount", "BAR//COAL", "10", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "BAR//COAL: amount 2/10 (-4)")
	assert.Contains(t, out, "running")
}

func TestWorkflowErrors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("workflow", "frobnicate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUsage))
	assert.Contains(t, errors.FlattenHints(err), "workflow unlimit <selector>")

	_, err = c.run("workflow", "count", "BAR//COAL", "0")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = c.run("workflow", "unlimit", "BAR//COAL")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestWorkflowNeedsWorld(t *testing.T) {
	c := newCLI(t)
	c.world = ""
	_, err := c.run("workflow", "list")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--world")
}

func TestAmShowFormats(t *testing.T) {
	cfg, err := am.LoadFromFile(newCLI(t).config)
	require.NoError(t, err)

	for _, format := range []string{"toml", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := encodeConfig(cfg, format)
			require.NoError(t, err)
			assert.Contains(t, string(data), "liveness_frames")
			assert.Contains(t, string(data), "reconcile_frames")
		})
	}

	_, err = encodeConfig(cfg, "xml")
	assert.True(t, errors.Is(err, errors.ErrUsage))
}

func TestAmValidate(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("am", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	require.NoError(t, os.WriteFile(c.config, []byte("[pulse]\nliveness_frames = 0\n"), 0644))
	out, err = c.run("am", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "pulse.liveness_frames must be > 0")
}

func TestRenderJobs(t *testing.T) {
	pterm.DisableColor()
	melt := 3
	res := &workflow.Result{
		Command: "jobs",
		Jobs: &workflow.JobsReport{
			Jobs: []workflow.JobReport{
				{ID: 1, Description: "job 1: MeltMetalObject", Status: workflow.StatusRunning, Meltable: &melt},
				{ID: 2, Description: "job 2: MakeCharcoal", Status: workflow.StatusDelayed, Constraints: []workflow.ConstraintReport{
					{Spec: "BAR//COAL", ByCount: true, Goal: 20, Gap: 5, Count: 4, InUse: 2, Request: workflow.RequestResume},
				}},
			},
			Pending: []workflow.JobReport{{ID: 9, Description: "job 9: SmeltOre"}},
		},
	}

	var buf bytes.Buffer
	renderResult(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "⛨ Repeat-job protection and recovery")
	assert.Contains(t, out, "Meltable: 3 objects.")
	assert.Contains(t, out, "job 2: MakeCharcoal (delayed)")
	assert.Contains(t, out, "BAR//COAL: count 4/20 (-5), 2 in use")
	assert.Contains(t, out, "Pending recovery:")
	assert.True(t, strings.Index(out, "Pending recovery:") < strings.Index(out, "job 9: SmeltOre"))
}

func TestRenderConstraintCopies(t *testing.T) {
	pterm.DisableColor()
	var buf bytes.Buffer
	renderConstraint(&buf, workflow.ConstraintReport{
		Spec: "BAR//COAL", ByCount: false, Goal: 10, Gap: 3, Amount: 7, Count: 2, Request: workflow.RequestIdle,
		Jobs: []workflow.JobGroup{{Job: workflow.JobReport{Description: "job 4: MakeCharcoal", Status: workflow.StatusSuspended}, Copies: 2}},
	}, "")
	out := buf.String()
	assert.Contains(t, out, "BAR//COAL: amount 7/10 (-3), 2 items")
	assert.Contains(t, out, "job 4: MakeCharcoal (2 copies) (suspended)")
}

func TestAmSet(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("am", "set", "pulse.reconcile_frames", "300")
	require.NoError(t, err, out)
	assert.Contains(t, out, "pulse.reconcile_frames = 300")

	cfg, err := am.LoadFromFile(c.config)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Pulse.ReconcileFrames)
	assert.Equal(t, 1, cfg.Pulse.LivenessFrames, "existing keys are kept")

	out, err = c.run("am", "set", "pulse.liveness_frames", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "pulse.liveness_frames must be > 0")

	_, err = c.run("am", "set", "pulse.nonsense", "1")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, "everforest", parseValue("everforest"))
}
