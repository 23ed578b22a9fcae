package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/foreman/sym"
	"github.com/teranos/foreman/workflow"
)

// requestColor marks a constraint line: green while production is wanted,
// cyan once the goal is met, gray inside the band.
func requestColor(request string) func(a ...interface{}) string {
	switch request {
	case workflow.RequestResume:
		return pterm.Green
	case workflow.RequestSuspend:
		return pterm.Cyan
	default:
		return pterm.Gray
	}
}

func statusText(status string) string {
	switch status {
	case workflow.StatusRunning:
		return pterm.Green(status)
	case workflow.StatusDelayed:
		return pterm.Yellow("(delayed)")
	default:
		return pterm.Cyan("(suspended)")
	}
}

func writeJSONResult(w io.Writer, res *workflow.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// renderResult prints a command result for a terminal.
func renderResult(w io.Writer, res *workflow.Result) {
	if glyph, ok := sym.CommandToSymbol[res.Command]; ok {
		fmt.Fprintln(w, pterm.Bold.Sprintf("%s %s", glyph, sym.Describe(glyph)))
	}
	if res.Jobs != nil {
		renderJobs(w, res.Jobs)
	}
	if res.Constraints != nil || res.Command == "list" {
		renderConstraints(w, res.Constraints)
	}
	for _, note := range res.Notes {
		fmt.Fprintln(w, note)
	}
}

func renderConstraints(w io.Writer, constraints []workflow.ConstraintReport) {
	if len(constraints) == 0 {
		fmt.Fprintln(w, pterm.Gray("No constraints."))
		return
	}
	for _, c := range constraints {
		renderConstraint(w, c, "")
	}
}

func renderConstraint(w io.Writer, c workflow.ConstraintReport, indent string) {
	color := requestColor(c.Request)
	measured := c.Count
	if !c.ByCount {
		measured = c.Amount
	}
	line := fmt.Sprintf("%s%s: %s %d/%d (-%d)", indent, c.Spec, c.Mode(), measured, c.Goal, c.Gap)
	if !c.ByCount && c.Count != c.Amount {
		line += fmt.Sprintf(", %d items", c.Count)
	}
	if c.InUse > 0 {
		line += fmt.Sprintf(", %d in use", c.InUse)
	}
	fmt.Fprintln(w, color(line))

	for _, g := range c.Jobs {
		fmt.Fprintf(w, "%s    %s%s %s\n", indent, g.Job.Description, copies(g.Copies), statusText(g.Job.Status))
	}
}

func copies(n int) string {
	if n <= 1 {
		return ""
	}
	return fmt.Sprintf(" (%d copies)", n)
}

func renderJobs(w io.Writer, r *workflow.JobsReport) {
	if len(r.Jobs) == 0 && len(r.Pending) == 0 {
		fmt.Fprintln(w, pterm.Gray("No protected jobs."))
		return
	}
	for _, j := range r.Jobs {
		fmt.Fprintf(w, "%s %s\n", j.Description, statusText(j.Status))
		if j.Meltable != nil {
			fmt.Fprintf(w, "    Meltable: %d objects.\n", *j.Meltable)
		}
		for _, c := range j.Constraints {
			renderConstraint(w, c, "    ")
		}
	}
	if len(r.Pending) > 0 {
		fmt.Fprintln(w, pterm.Yellow("Pending recovery:"))
		for _, j := range r.Pending {
			fmt.Fprintf(w, "    %s\n", j.Description)
		}
	}
}

// renderStatus prints the option flags of a status report.
func renderStatus(w io.Writer, st workflow.StatusReport) {
	var on []string
	if st.DryBuckets {
		on = append(on, workflow.OptionDryBuckets.String())
	}
	if st.AutoMelt {
		on = append(on, workflow.OptionAutoMelt.String())
	}
	state := pterm.Gray("disabled")
	if st.Enabled {
		state = pterm.Green("enabled")
	}
	opts := "none"
	if len(on) > 0 {
		opts = strings.Join(on, ", ")
	}
	fmt.Fprintf(w, "Workflow: %s, options: %s\n", state, opts)
}
