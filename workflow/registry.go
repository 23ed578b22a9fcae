package workflow

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/world"
)

// Time constants of the host world.
const (
	DayTicks  = 1200
	MonthDays = 28

	// Resume backoff bounds.
	MinResumeDelay = DayTicks
	MaxResumeDelay = DayTicks * MonthDays
)

// JobState is the recovery state of a tracked job.
type JobState int

const (
	StateLive JobState = iota
	StatePending
	StateForgotten
)

func (s JobState) String() string {
	switch s {
	case StateLive:
		return "live"
	case StatePending:
		return "pending"
	case StateForgotten:
		return "forgotten"
	}
	return "unknown"
}

// TrackedJob shadows one repeating job of the host.
type TrackedJob struct {
	ID       int
	HolderID int

	snapshot Snapshot
	actual   *world.Job
	state    JobState
	seen     int

	wantResumed bool
	resumeTime  int
	resumeDelay int

	constraints []*Constraint
}

func newTrackedJob(job *world.Job, cycle int) *TrackedJob {
	return &TrackedJob{
		ID:          job.ID,
		HolderID:    job.HolderID,
		snapshot:    Capture(job),
		actual:      job,
		state:       StateLive,
		seen:        cycle,
		resumeDelay: MinResumeDelay,
	}
}

// Job returns the live job, or nil while the job is lost.
func (tj *TrackedJob) Job() *world.Job { return tj.actual }

// Snapshot returns the stored copy of the job's defining fields.
func (tj *TrackedJob) Snapshot() Snapshot { return tj.snapshot }

func (tj *TrackedJob) State() JobState { return tj.state }

func (tj *TrackedJob) IsLive() bool { return tj.actual != nil }

// IsActuallyResumed reports whether the live job is not suspended.
func (tj *TrackedJob) IsActuallyResumed() bool {
	return tj.actual != nil && !tj.actual.Flags.Suspend
}

// IsResumed reports whether the job runs or is wanted running.
func (tj *TrackedJob) IsResumed() bool {
	return tj.wantResumed || tj.IsActuallyResumed()
}

// Delayed reports a wanted resume that waits for the backoff timer.
func (tj *TrackedJob) Delayed() bool {
	return tj.wantResumed && !tj.IsActuallyResumed()
}

func (tj *TrackedJob) WantResumed() bool { return tj.wantResumed }
func (tj *TrackedJob) ResumeTime() int   { return tj.resumeTime }
func (tj *TrackedJob) ResumeDelay() int  { return tj.resumeDelay }

// Constraints returns the constraints linked at the last mapping.
func (tj *TrackedJob) Constraints() []*Constraint { return tj.constraints }

func (tj *TrackedJob) unlinkConstraint(c *Constraint) {
	for i, x := range tj.constraints {
		if x == c {
			tj.constraints = append(tj.constraints[:i], tj.constraints[i+1:]...)
			return
		}
	}
}

// observe attaches the live job and refreshes the snapshot if the job changed.
func (tj *TrackedJob) observe(job *world.Job, cycle int) {
	tj.actual = job
	tj.state = StateLive
	tj.seen = cycle
	if !tj.snapshot.Matches(job) {
		tj.snapshot = Capture(job)
	}
}

// tick relaxes the backoff while the job runs and releases a delayed resume
// once its timer has passed. A wanted resume with no timer means the player
// suspended a running job, which drops the wish.
func (tj *TrackedJob) tick(frame, ticks int) {
	if tj.IsActuallyResumed() {
		tj.resumeTime = 0
		tj.resumeDelay = max(MinResumeDelay, tj.resumeDelay-ticks)
	} else if tj.wantResumed {
		if tj.resumeTime == 0 {
			tj.wantResumed = false
		} else if frame >= tj.resumeTime {
			tj.actual.Flags.Suspend = false
		}
	}
}

// recover attaches a rebuilt job and grows the backoff.
func (tj *TrackedJob) recover(frame int, job *world.Job) {
	tj.actual = job
	tj.state = StateLive
	job.Flags.Repeat = true
	job.Flags.Suspend = true

	tj.resumeDelay = min(MaxResumeDelay, 5*tj.resumeDelay/3)
	tj.resumeTime = frame + tj.resumeDelay
}

// setResumed applies a resume or suspend decision to the live job.
func (tj *TrackedJob) setResumed(frame int, resume bool) {
	if tj.actual == nil {
		return
	}
	if resume {
		if frame >= tj.resumeTime {
			tj.actual.Flags.Suspend = false
		}
	} else {
		tj.resumeTime = 0
		if tj.IsActuallyResumed() {
			tj.resumeDelay = MinResumeDelay
		}
		tj.actual.Flags.Suspend = true
	}
	tj.wantResumed = resume
}

// IsSupported reports whether a job can be protected: it has no auxiliary
// links, sits in an existing holder, and has inputs or collects clay or sand.
func IsSupported(w world.World, job *world.Job) bool {
	if len(job.MiscLinks) > 0 || w.FindBuilding(job.HolderID) == nil {
		return false
	}
	return len(job.Items) > 0 || job.Type == world.JobCollectClay || job.Type == world.JobCollectSand
}

// Registry owns the tracked jobs and the pending recovery queue.
type Registry struct {
	jobs      map[int]*TrackedJob
	pending   []*TrackedJob
	forgotten map[int]struct{}
	cycle     int

	logger   *zap.SugaredLogger
	notifier Notifier
	recorder Recorder
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.SugaredLogger, notifier Notifier, recorder Recorder) *Registry {
	if log == nil {
		log = logger.Logger
	}
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Registry{
		jobs:      make(map[int]*TrackedJob),
		forgotten: make(map[int]struct{}),
		logger:    log,
		notifier:  notifier,
		recorder:  recorder,
	}
}

// Get returns the tracked job with id, or nil.
func (r *Registry) Get(id int) *TrackedJob { return r.jobs[id] }

// Len returns the number of tracked jobs, live or pending.
func (r *Registry) Len() int { return len(r.jobs) }

// PendingLen returns the length of the recovery queue.
func (r *Registry) PendingLen() int { return len(r.pending) }

// Pending returns the recovery queue in the order entries were lost.
func (r *Registry) Pending() []*TrackedJob { return r.pending }

// Tracked returns every tracked job ordered by id.
func (r *Registry) Tracked() []*TrackedJob {
	out := make([]*TrackedJob, 0, len(r.jobs))
	for _, tj := range r.jobs {
		out = append(out, tj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsForgotten reports whether id was forgotten during this session.
func (r *Registry) IsForgotten(id int) bool {
	_, ok := r.forgotten[id]
	return ok
}

// Scan runs one liveness pass over the world job list. ticks is the number
// of frames since the previous pass. Tracked jobs missing from the list are
// queued for recovery.
func (r *Registry) Scan(w world.World, ticks int) {
	r.cycle++
	if ticks < 0 {
		ticks = 0
	}
	frame := w.Frame()

	for _, job := range w.Jobs() {
		if tj := r.jobs[job.ID]; tj != nil {
			if !job.Flags.Repeat {
				r.forget(tj, ReasonNotRepeating, "job no longer repeats")
				continue
			}
			tj.observe(job, r.cycle)
			tj.tick(frame, ticks)
			continue
		}
		if r.IsForgotten(job.ID) {
			continue
		}
		if job.Flags.Repeat && IsSupported(w, job) {
			r.jobs[job.ID] = newTrackedJob(job, r.cycle)
			r.logger.Debugw("Tracking job",
				logger.FieldJobID, job.ID,
				logger.FieldJobType, job.Type.String(),
				logger.FieldHolderID, job.HolderID)
		}
	}

	for _, tj := range r.Tracked() {
		if tj.seen == r.cycle || !tj.IsLive() {
			continue
		}
		tj.actual = nil
		tj.state = StatePending
		r.pending = append(r.pending, tj)
		r.logger.Infow("Job lost, queued for recovery",
			logger.FieldJobID, tj.ID,
			logger.FieldJobType, tj.snapshot.Type.String(),
			logger.FieldHolderID, tj.HolderID)
	}
}

// Recover attempts to rebuild every pending job, newest first. Entries stay
// queued while their holder is blocked or their id is taken.
func (r *Registry) Recover(w world.World) {
	for i := len(r.pending) - 1; i >= 0; i-- {
		tj := r.pending[i]
		// forget already dequeues
		if r.recoverJob(w, tj) && i < len(r.pending) && r.pending[i] == tj {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
		}
	}
}

func (r *Registry) recoverJob(w world.World, tj *TrackedJob) bool {
	if tj.IsLive() || tj.state == StateForgotten {
		return true
	}

	holder := w.FindBuilding(tj.HolderID)
	if holder == nil {
		r.forget(tj, ReasonHolderLost, "holder building lost")
		return true
	}
	if len(holder.Jobs) >= world.MaxBuildingJobs {
		r.forget(tj, ReasonHolderFull, "holder building has too many jobs")
		return true
	}
	if len(holder.Jobs) > 0 {
		first := holder.Jobs[0].Type
		if first == world.JobDestroyBuilding || first.Class() == world.ClassStrangeMood {
			r.logger.Debugw("Recovery blocked by holder state",
				logger.FieldJobID, tj.ID,
				logger.FieldHolderID, tj.HolderID,
				"first_job", first.String())
			return false
		}
	}

	job := tj.snapshot.Build(tj.ID)
	if !w.LinkJob(job) {
		text := fmt.Sprintf("Inconsistency: job %d (%s) already in list.", tj.ID, tj.snapshot.Type)
		r.notifier.Notify(Event{Kind: EventRecoveryConflict, JobID: tj.ID, Text: text})
		return false
	}

	tj.recover(w.Frame(), job)
	r.recorder.JobRecovered()
	r.notifier.Notify(Event{
		Kind:  EventJobRecovered,
		JobID: tj.ID,
		Text:  fmt.Sprintf("Recovered job %d (%s), resume delay %d ticks.", tj.ID, tj.snapshot.Type, tj.resumeDelay),
	})
	r.logger.Infow("Job recovered",
		logger.FieldJobID, tj.ID,
		logger.FieldResumeDelay, tj.resumeDelay,
		logger.FieldResumeTime, tj.resumeTime)
	return true
}

// forget drops a tracked job for the rest of the session.
func (r *Registry) forget(tj *TrackedJob, reason, why string) {
	delete(r.jobs, tj.ID)
	r.forgotten[tj.ID] = struct{}{}
	for i, p := range r.pending {
		if p == tj {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	for _, c := range tj.constraints {
		c.unlink(tj)
	}
	tj.constraints = nil
	tj.actual = nil
	tj.state = StateForgotten

	r.recorder.JobForgotten(reason)
	r.notifier.Notify(Event{
		Kind:  EventJobForgotten,
		JobID: tj.ID,
		Text:  fmt.Sprintf("Forgetting job %d (%s): %s.", tj.ID, tj.snapshot.Type, why),
	})
}

// Clear drops all tracking without tombstoning, for a disable or session end.
func (r *Registry) Clear() {
	r.jobs = make(map[int]*TrackedJob)
	r.pending = nil
}

// Reset also forgets the tombstones, for a new session.
func (r *Registry) Reset() {
	r.Clear()
	r.forgotten = make(map[int]struct{})
	r.cycle = 0
}
