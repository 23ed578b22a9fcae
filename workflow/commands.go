package workflow

import (
	"context"
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/world"
)

// Usage is the command synopsis shown with usage errors.
const Usage = `workflow enable|disable [drybuckets] [auto-melt]
workflow jobs
workflow list
workflow count|amount <selector> <limit> [gap]
workflow unlimit <selector>`

// Result is the outcome of one command.
type Result struct {
	Command     string             `json:"command"`
	Status      *StatusReport      `json:"status,omitempty"`
	Jobs        *JobsReport        `json:"jobs,omitempty"`
	Constraints []ConstraintReport `json:"constraints,omitempty"`
	Notes       []string           `json:"notes,omitempty"`
}

func (res *Result) note(s string) { res.Notes = append(res.Notes, s) }

// Router dispatches textual commands against a workflow. Callers hold the
// world critical section for the whole call.
type Router struct {
	wf  *Workflow
	sel world.Selection
}

// NewRouter creates a router. sel may be nil when the host has no UI.
func NewRouter(wf *Workflow, sel world.Selection) *Router {
	return &Router{wf: wf, sel: sel}
}

func usageError(format string, args ...interface{}) error {
	return errors.WithHint(errors.NewUsageError(format, args...), Usage)
}

// Exec splits line with shell quoting rules and runs it.
func (r *Router) Exec(ctx context.Context, line string) (*Result, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, usageError("cannot parse command %q: %v", line, err)
	}
	return r.Run(ctx, args)
}

// Run executes one command. An empty argument list lists constraints.
func (r *Router) Run(ctx context.Context, args []string) (*Result, error) {
	if r.wf == nil {
		return nil, errors.ErrNoWorld
	}
	wf := r.wf
	wf.Refresh()

	cmd := "list"
	if len(args) > 0 {
		cmd = args[0]
	}
	res := &Result{Command: cmd}

	wf.logger.Debugw("Workflow command", "command", cmd, "args", args)

	switch cmd {
	case "enable", "disable":
		if err := r.toggle(ctx, res, cmd == "enable", args[1:]); err != nil {
			return nil, err
		}
		return res, nil
	case "count", "amount":
		if err := wf.Enable(ctx); err != nil {
			return nil, err
		}
	}

	if !wf.Enabled() {
		res.note("Note: workflow is not enabled.")
	}

	switch cmd {
	case "jobs":
		if len(args) != 1 {
			return nil, usageError("jobs takes no arguments")
		}
		var holder *world.Building
		if r.sel != nil {
			holder = r.sel.SelectedBuilding()
		}
		jobs := wf.JobsReport(holder)
		res.Jobs = &jobs
		return res, nil

	case "list":
		res.Constraints = wf.ConstraintReports()
		return res, nil

	case "count", "amount":
		if len(args) < 3 {
			return nil, usageError("%s needs a selector and a limit", cmd)
		}
		limit, err := parseArg("limit", args[2])
		if err != nil {
			return nil, err
		}
		gap := -1
		if len(args) >= 4 {
			if gap, err = parseArg("gap", args[3]); err != nil {
				return nil, err
			}
		}
		c, err := wf.SetConstraint(ctx, args[1], cmd == "count", limit, gap)
		if err != nil {
			return nil, err
		}
		res.Constraints = []ConstraintReport{wf.constraintReport(c, true)}
		return res, nil

	case "unlimit":
		if len(args) != 2 {
			return nil, usageError("unlimit takes exactly one selector")
		}
		if err := wf.RemoveConstraint(ctx, args[1]); err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, usageError("unknown command %q", cmd)
}

func (r *Router) toggle(ctx context.Context, res *Result, enable bool, names []string) error {
	wf := r.wf

	opts := make([]Option, 0, len(names))
	for _, name := range names {
		opt, ok := ParseOption(name)
		if !ok {
			return usageError("unknown option %q", name)
		}
		opts = append(opts, opt)
	}

	switch {
	case enable:
		if err := wf.Enable(ctx); err != nil {
			return err
		}
	case len(opts) == 0:
		if err := wf.Disable(ctx); err != nil {
			return err
		}
	}
	for _, opt := range opts {
		if err := wf.SetOption(ctx, opt, enable); err != nil {
			return err
		}
		wf.logger.Infow("Workflow option changed", "option", opt.String(), "on", enable)
	}

	status := wf.Status()
	res.Status = &status
	if status.Enabled {
		res.note("Workflow is enabled.")
	} else {
		res.note("Workflow is disabled.")
	}
	if status.DryBuckets {
		res.note("Option drybuckets is enabled.")
	}
	if status.AutoMelt {
		res.note("Option auto-melt is enabled.")
	}
	wf.logger.Infow("Workflow toggled", "enabled", status.Enabled, logger.FieldCount, wf.registry.Len())
	return nil
}

// parseArg parses a decimal command argument. Trailing text and values out
// of int range are rejected.
func parseArg(what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewValidationError("Invalid %s value %q.", what, s)
	}
	return n, nil
}
