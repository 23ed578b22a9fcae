package workflow

import "github.com/teranos/foreman/world"

// Job status classes.
const (
	StatusRunning   = "running"
	StatusDelayed   = "delayed"
	StatusSuspended = "suspended"
)

// Constraint request classes.
const (
	RequestResume  = "resume"
	RequestSuspend = "suspend"
	RequestIdle    = "idle"
)

// StatusReport is the controller state after an enable or disable.
type StatusReport struct {
	Enabled    bool `json:"enabled"`
	DryBuckets bool `json:"drybuckets"`
	AutoMelt   bool `json:"auto_melt"`
}

// JobReport describes one tracked job.
type JobReport struct {
	ID          int    `json:"id"`
	HolderID    int    `json:"holder_id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	// Meltable is set for melt jobs under auto-melt.
	Meltable    *int               `json:"meltable,omitempty"`
	Constraints []ConstraintReport `json:"constraints,omitempty"`
}

// JobGroup is a run of identical jobs at one holder.
type JobGroup struct {
	Job    JobReport `json:"job"`
	Copies int       `json:"copies"`
}

// JobsReport lists live jobs and the recovery queue.
type JobsReport struct {
	Jobs    []JobReport `json:"jobs"`
	Pending []JobReport `json:"pending,omitempty"`
}

// ConstraintReport describes one constraint with its live counters.
type ConstraintReport struct {
	Spec    string     `json:"spec"`
	ByCount bool       `json:"by_count"`
	Goal    int        `json:"goal"`
	Gap     int        `json:"gap"`
	Amount  int        `json:"amount"`
	Count   int        `json:"count"`
	InUse   int        `json:"in_use"`
	Request string     `json:"request"`
	Jobs    []JobGroup `json:"jobs,omitempty"`
}

// Mode returns "count" or "amount".
func (r ConstraintReport) Mode() string {
	if r.ByCount {
		return "count"
	}
	return "amount"
}

// HasItems reports whether the item counters are worth printing.
func (r ConstraintReport) HasItems() bool { return r.Count != 0 || r.InUse != 0 }

func jobStatus(tj *TrackedJob) string {
	switch {
	case tj.IsActuallyResumed():
		return StatusRunning
	case tj.wantResumed:
		return StatusDelayed
	}
	return StatusSuspended
}

func (wf *Workflow) jobReport(tj *TrackedJob, withConstraints bool) JobReport {
	snap := tj.snapshot
	if tj.IsLive() {
		snap = Capture(tj.actual)
	}
	r := JobReport{
		ID:          tj.ID,
		HolderID:    tj.HolderID,
		Description: ShortJobDescription(wf.world.Raws(), tj.ID, snap),
		Status:      jobStatus(tj),
	}
	if snap.Type == world.JobMeltMetalObject && wf.OptionEnabled(OptionAutoMelt) {
		n := wf.meltableCount
		r.Meltable = &n
	}
	if withConstraints {
		for _, c := range tj.constraints {
			r.Constraints = append(r.Constraints, wf.constraintReport(c, false))
		}
	}
	return r
}

func (wf *Workflow) constraintReport(c *Constraint, withJobs bool) ConstraintReport {
	r := ConstraintReport{
		Spec:    c.Spec(),
		ByCount: c.GoalByCount(),
		Goal:    c.GoalCount(),
		Gap:     c.GoalGap(),
		Amount:  c.Amount,
		Count:   c.Count,
		InUse:   c.InUse,
		Request: RequestIdle,
	}
	switch {
	case c.RequestResume:
		r.Request = RequestResume
	case c.RequestSuspend:
		r.Request = RequestSuspend
	}
	if !withJobs {
		return r
	}

	r.Jobs = []JobGroup{}
	var seen []*TrackedJob
	for _, tj := range c.jobs {
		dup := false
		for i, prev := range seen {
			if prev.HolderID == tj.HolderID && currentSnapshot(prev).Equal(currentSnapshot(tj)) {
				r.Jobs[i].Copies++
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, tj)
		r.Jobs = append(r.Jobs, JobGroup{Job: wf.jobReport(tj, false), Copies: 1})
	}
	return r
}

func currentSnapshot(tj *TrackedJob) Snapshot {
	if tj.IsLive() {
		return Capture(tj.actual)
	}
	return tj.snapshot
}

// ConstraintReports describes every constraint with its linked jobs.
func (wf *Workflow) ConstraintReports() []ConstraintReport {
	out := make([]ConstraintReport, 0, wf.constraints.Len())
	for _, c := range wf.constraints.All() {
		out = append(out, wf.constraintReport(c, true))
	}
	return out
}

// JobsReport lists tracked jobs. With holder set, only that building's queue
// is listed in queue order.
func (wf *Workflow) JobsReport(holder *world.Building) JobsReport {
	r := JobsReport{Jobs: []JobReport{}}
	if holder != nil {
		for _, job := range holder.Jobs {
			if tj := wf.registry.Get(job.ID); tj != nil {
				r.Jobs = append(r.Jobs, wf.jobReport(tj, true))
			}
		}
	} else {
		for _, tj := range wf.registry.Tracked() {
			if tj.IsLive() {
				r.Jobs = append(r.Jobs, wf.jobReport(tj, true))
			}
		}
	}

	for _, tj := range wf.registry.Pending() {
		if holder == nil || tj.HolderID == holder.ID {
			r.Pending = append(r.Pending, wf.jobReport(tj, false))
		}
	}
	return r
}

// Status reports the enabled flag and item options.
func (wf *Workflow) Status() StatusReport {
	return StatusReport{
		Enabled:    wf.enabled,
		DryBuckets: wf.OptionEnabled(OptionDryBuckets),
		AutoMelt:   wf.OptionEnabled(OptionAutoMelt),
	}
}
