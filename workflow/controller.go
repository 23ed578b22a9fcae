package workflow

import (
	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/world"
)

// Vote decides whether a job should run given its linked constraints. The
// heaviest resume request and the heaviest suspend request are compared and
// resume wins ties. With no request either way current is kept.
func Vote(constraints []*Constraint, current bool) bool {
	resumeWeight, suspendWeight := -1, -1
	for _, c := range constraints {
		if c.RequestResume {
			resumeWeight = max(resumeWeight, c.Weight)
		}
		if c.RequestSuspend {
			suspendWeight = max(suspendWeight, c.Weight)
		}
	}

	switch {
	case resumeWeight >= 0 && resumeWeight >= suspendWeight:
		return true
	case suspendWeight >= 0 && suspendWeight >= resumeWeight:
		return false
	}
	return current
}

// mapJobConstraints relinks every live job to the constraints its inferred
// outputs serve.
func (wf *Workflow) mapJobConstraints() {
	wf.meltActive = false
	for _, c := range wf.constraints.All() {
		c.jobs = nil
		c.active = false
	}

	raws := wf.world.Raws()
	for _, tj := range wf.registry.Tracked() {
		tj.constraints = nil
		if !tj.IsLive() {
			continue
		}
		if !wf.meltActive && tj.actual.Type == world.JobMeltMetalObject {
			wf.meltActive = tj.IsResumed()
		}
		for _, out := range InferOutputs(raws, tj.snapshot) {
			wf.linkJobConstraint(tj, out)
		}
	}
}

func (wf *Workflow) linkJobConstraint(tj *TrackedJob, out Output) {
	raws := wf.world.Raws()
	for _, c := range wf.constraints.All() {
		if !c.AcceptsOutput(raws, out) {
			continue
		}
		if !c.link(tj) {
			continue
		}
		if !c.active && tj.IsResumed() {
			c.active = true
		}
	}
}

// setJobResumed applies a decision and reports it when it changes the job's
// resumed state.
func (wf *Workflow) setJobResumed(tj *TrackedJob, goal bool) {
	current := tj.IsResumed()
	tj.setResumed(wf.world.Frame(), goal)
	if goal == current {
		return
	}

	desc := ShortJobDescription(wf.world.Raws(), tj.ID, Capture(tj.actual))
	ev := Event{JobID: tj.ID}
	if goal {
		ev.Kind = EventJobResumed
		ev.Delayed = !tj.IsActuallyResumed()
		ev.Text = "Resuming " + desc
		if ev.Delayed {
			ev.Text += " (delayed)"
		}
	} else {
		ev.Kind = EventJobSuspended
		ev.Text = "Suspending " + desc
	}
	wf.recorder.JobTransition(goal)
	wf.notifier.Notify(ev)
}

// updateJobsByConstraints votes every live job and reports constraint
// production changes.
func (wf *Workflow) updateJobsByConstraints() {
	autoMelt := wf.OptionEnabled(OptionAutoMelt)

	for _, tj := range wf.registry.Tracked() {
		if !tj.IsLive() {
			continue
		}
		if autoMelt && tj.actual.Type == world.JobMeltMetalObject {
			wf.setJobResumed(tj, wf.meltableCount > 0)
			continue
		}
		if len(tj.constraints) == 0 {
			continue
		}
		wf.setJobResumed(tj, Vote(tj.constraints, tj.IsResumed()))
	}

	for _, c := range wf.constraints.All() {
		running := false
		for _, tj := range c.jobs {
			if tj.IsResumed() {
				running = true
				break
			}
		}
		info := c.Description()

		if running != c.active {
			switch {
			case running && c.RequestResume:
				wf.notifier.Notify(Event{Kind: EventProductionStarted, Constraint: c.Spec(), Text: "Resuming production: " + info})
			case !running && !c.RequestResume:
				wf.notifier.Notify(Event{Kind: EventProductionStopped, Constraint: c.Spec(), Text: "Stopping production: " + info})
			}
		}

		if c.RequestResume && !running {
			if !c.cantResumeReported {
				wf.notifier.Notify(Event{Kind: EventCannotProduce, Constraint: c.Spec(), Text: "Cannot produce: " + info})
			}
			c.cantResumeReported = true
		} else {
			c.cantResumeReported = false
		}
	}
}

// ProcessConstraints runs one reconciliation: link jobs, count items, vote.
// It does nothing when there are no constraints and no item options are set.
func (wf *Workflow) ProcessConstraints() {
	if wf.constraints.Len() == 0 && !wf.OptionEnabled(OptionDryBuckets|OptionAutoMelt) {
		return
	}
	wf.mapJobConstraints()
	wf.mapJobItems()
	wf.updateJobsByConstraints()

	wf.logger.Debugw("Constraints processed",
		logger.FieldFrame, wf.world.Frame(),
		logger.FieldCount, wf.constraints.Len(),
		"meltable", wf.meltableCount)
}
