package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/persist"
	"github.com/teranos/foreman/sym"
	"github.com/teranos/foreman/world"
)

// Persistent record keys.
const (
	ConfigKey      = "workflow/config"
	ConstraintsKey = "workflow/constraints"
)

// Option is a bit of the persisted option mask.
type Option int

const (
	OptionEnabled    Option = 1
	OptionDryBuckets Option = 2
	OptionAutoMelt   Option = 4
)

// Default cadences, in frames.
const (
	DefaultLivenessFrames  = 5
	DefaultReconcileFrames = DayTicks / 2
)

// ParseOption resolves a command-line option name.
func ParseOption(name string) (Option, bool) {
	switch name {
	case "drybuckets":
		return OptionDryBuckets, true
	case "auto-melt":
		return OptionAutoMelt, true
	}
	return 0, false
}

func (o Option) String() string {
	switch o {
	case OptionEnabled:
		return "enabled"
	case OptionDryBuckets:
		return "drybuckets"
	case OptionAutoMelt:
		return "auto-melt"
	}
	return fmt.Sprintf("option(%d)", int(o))
}

// Options configures a Workflow. Zero values select defaults.
type Options struct {
	Logger          *zap.SugaredLogger
	Notifier        Notifier
	Recorder        Recorder
	LivenessFrames  int
	ReconcileFrames int
}

// Workflow is the controller state of one loaded session.
type Workflow struct {
	world world.World
	store persist.Store

	logger   *zap.SugaredLogger
	notifier Notifier
	recorder Recorder

	config      *persist.Record
	enabled     bool
	registry    *Registry
	constraints *Constraints

	meltableCount int
	meltActive    bool

	livenessFrames     int
	reconcileFrames    int
	updates            int
	lastTickFrame      int
	lastReconcileFrame int
	lastPendingLen     int
}

// New creates a controller for w backed by store. Call Load before use.
func New(w world.World, store persist.Store, opts Options) *Workflow {
	log := opts.Logger
	if log == nil {
		log = logger.Logger
	}
	log = log.With(logger.FieldSessionID, w.SessionID())
	guardLog := logger.AddGuardSymbol(log)
	log = logger.AddWorkflowSymbol(log)

	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: log}
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if opts.LivenessFrames <= 0 {
		opts.LivenessFrames = DefaultLivenessFrames
	}
	if opts.ReconcileFrames <= 0 {
		opts.ReconcileFrames = DefaultReconcileFrames
	}

	return &Workflow{
		world:           w,
		store:           store,
		logger:          log,
		notifier:        notifier,
		recorder:        recorder,
		registry:        NewRegistry(guardLog, notifier, recorder),
		constraints:     &Constraints{},
		livenessFrames:  opts.LivenessFrames,
		reconcileFrames: opts.ReconcileFrames,
	}
}

// World returns the host the controller runs against.
func (wf *Workflow) World() world.World { return wf.world }

// Registry returns the tracked job registry.
func (wf *Workflow) Registry() *Registry { return wf.registry }

// Constraints returns the constraints in list order.
func (wf *Workflow) Constraints() []*Constraint { return wf.constraints.All() }

// Meltable returns the meltable item count from the last inventory scan.
func (wf *Workflow) Meltable() int { return wf.meltableCount }

// MeltActive reports whether a melt job was resumed at the last mapping.
func (wf *Workflow) MeltActive() bool { return wf.meltActive }

// Enabled reports whether job protection is on.
func (wf *Workflow) Enabled() bool { return wf.enabled }

// OptionEnabled reports whether any bit of opt is set in the persisted mask.
func (wf *Workflow) OptionEnabled(opt Option) bool {
	return wf.config != nil && Option(wf.config.Ints[0])&opt != 0
}

func (wf *Workflow) message(format string, args ...interface{}) {
	wf.notifier.Notify(Event{Kind: EventMessage, Text: fmt.Sprintf(format, args...)})
}

// Load reads the session's persisted config and constraints. Unreadable
// state is logged and treated as absent; constraints whose selector no longer
// resolves are deleted.
func (wf *Workflow) Load(ctx context.Context) error {
	wf.config = nil
	wf.constraints.clear()
	wf.registry.Reset()
	rec, err := wf.store.Get(ctx, ConfigKey)
	switch {
	case err == nil:
		if rec.Ints[0] == -1 {
			rec.Ints[0] = 0
		}
		wf.config = rec
	case errors.IsNotFoundError(err):
	default:
		wf.logger.Warnw("Persisted workflow config unreadable, using defaults", logger.FieldError, err)
	}
	wf.enabled = wf.OptionEnabled(OptionEnabled)

	records, err := wf.store.List(ctx, ConstraintsKey)
	if err != nil {
		wf.logger.Warnw("Persisted constraints unreadable, starting without constraints", logger.FieldError, err)
		records = nil
	}
	raws := wf.world.Raws()
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		_, err := wf.getConstraint(ctx, raws, rec.Value, rec)
		if err == nil {
			continue
		}
		wf.logger.Debugw("Constraint selector rejected", logger.FieldConstraint, rec.Value, logger.FieldError, err)
		wf.notifier.Notify(Event{Kind: EventConstraintLost, Constraint: rec.Value, Text: "Lost constraint " + rec.Value})
		if err := wf.store.Delete(ctx, rec); err != nil {
			return errors.Wrapf(err, "failed to delete lost constraint %q", rec.Value)
		}
	}

	frame := wf.world.Frame()
	wf.lastTickFrame = frame
	wf.lastReconcileFrame = frame

	wf.logger.Infow(sym.PulseOpen+" Workflow loaded",
		"enabled", wf.enabled,
		logger.FieldCount, wf.constraints.Len(),
		logger.FieldFrame, frame)

	if wf.enabled {
		wf.startProtect()
	}
	return nil
}

// Close tears down the session state. Persisted records are untouched.
func (wf *Workflow) Close() {
	wf.logger.Infow(sym.PulseClose+" Workflow closed", logger.FieldCount, wf.registry.Len())
	wf.config = nil
	wf.enabled = false
	wf.stopProtect()
	wf.constraints.clear()
	wf.registry.Reset()
}

// SetCadence changes the liveness and reconciliation intervals. Values
// <= 0 keep the current setting.
func (wf *Workflow) SetCadence(livenessFrames, reconcileFrames int) {
	if livenessFrames > 0 {
		wf.livenessFrames = livenessFrames
	}
	if reconcileFrames > 0 {
		wf.reconcileFrames = reconcileFrames
	}
}

func (wf *Workflow) startProtect() {
	wf.registry.Scan(wf.world, 0)
	if n := wf.registry.Len(); n > 0 {
		wf.message("Protecting %d jobs.", n)
	}
	wf.recorder.ObserveRegistry(wf.registry.Len(), wf.registry.PendingLen())
}

func (wf *Workflow) stopProtect() {
	if n := wf.registry.Len(); n > 0 {
		wf.message("Unprotecting %d jobs.", n)
	}
	for _, c := range wf.constraints.All() {
		c.jobs = nil
	}
	wf.registry.Clear()
	wf.recorder.ObserveRegistry(0, 0)
}

func (wf *Workflow) ensureConfig(ctx context.Context) error {
	if wf.config != nil {
		return nil
	}
	rec, err := wf.store.Add(ctx, ConfigKey)
	if err != nil {
		return errors.Wrap(err, "failed to create workflow config")
	}
	rec.Ints[0] = 0
	wf.config = rec
	return nil
}

func (wf *Workflow) setOption(opt Option, on bool) {
	if wf.config == nil {
		return
	}
	if on {
		wf.config.Ints[0] |= int(opt)
	} else {
		wf.config.Ints[0] &^= int(opt)
	}
}

func (wf *Workflow) saveConfig(ctx context.Context) error {
	if wf.config == nil {
		return nil
	}
	if err := wf.store.Save(ctx, wf.config); err != nil {
		return errors.Wrap(err, "failed to save workflow config")
	}
	return nil
}

// Enable turns job protection on and starts tracking. It is a no-op when
// already enabled.
func (wf *Workflow) Enable(ctx context.Context) error {
	if wf.enabled {
		return nil
	}
	if err := wf.ensureConfig(ctx); err != nil {
		return err
	}
	wf.setOption(OptionEnabled, true)
	if err := wf.saveConfig(ctx); err != nil {
		return err
	}
	wf.enabled = true
	wf.message("Enabling workflow.")
	wf.startProtect()
	return nil
}

// Disable turns job protection off and drops all tracking.
func (wf *Workflow) Disable(ctx context.Context) error {
	if !wf.enabled {
		return nil
	}
	wf.enabled = false
	wf.setOption(OptionEnabled, false)
	wf.stopProtect()
	return wf.saveConfig(ctx)
}

// SetOption sets an item option. It has no effect before a config record
// exists, that is before the controller was ever enabled.
func (wf *Workflow) SetOption(ctx context.Context, opt Option, on bool) error {
	wf.setOption(opt, on)
	return wf.saveConfig(ctx)
}

// OnUpdate is the per-frame entry point. Every LivenessFrames calls it checks
// for lost jobs and retries pending recoveries; once ReconcileFrames have
// passed it also reconciles constraints.
func (wf *Workflow) OnUpdate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !wf.enabled {
		return nil
	}
	wf.updates++
	if wf.updates%wf.livenessFrames != 0 {
		return nil
	}

	frame := wf.world.Frame()
	wf.registry.Scan(wf.world, frame-wf.lastTickFrame)
	wf.lastTickFrame = frame

	checkTime := frame-wf.lastReconcileFrame >= wf.reconcileFrames
	pending := wf.registry.PendingLen()
	if pending != wf.lastPendingLen || pending > 0 || checkTime {
		wf.registry.Recover(wf.world)
		wf.lastPendingLen = wf.registry.PendingLen()

		if checkTime {
			wf.lastReconcileFrame = frame
			wf.ProcessConstraints()
		}
	}

	wf.recorder.ObserveRegistry(wf.registry.Len(), wf.registry.PendingLen())
	return nil
}

// Refresh brings tracking and counters up to date without voting. Commands
// call it before reporting.
func (wf *Workflow) Refresh() {
	if !wf.enabled {
		return
	}
	wf.registry.Scan(wf.world, 0)
	wf.registry.Recover(wf.world)
	wf.mapJobConstraints()
	wf.mapJobItems()
	wf.recorder.ObserveRegistry(wf.registry.Len(), wf.registry.PendingLen())
}

// getConstraint returns the constraint for spec, creating it when new. rec
// is the stored record when loading; nil creates one.
func (wf *Workflow) getConstraint(ctx context.Context, raws *world.Raws, spec string, rec *persist.Record) (*Constraint, error) {
	sel, err := ParseSelector(raws, spec)
	if err != nil {
		return nil, err
	}
	if c := wf.constraints.Find(sel); c != nil {
		return c, nil
	}

	if rec == nil {
		if rec, err = wf.store.Add(ctx, ConstraintsKey); err != nil {
			return nil, errors.Wrapf(err, "failed to store constraint %q", spec)
		}
		rec.Value = spec
		rec.Ints[slotGoalMode] = 0
	}
	c := newConstraint(sel, rec)
	wf.constraints.add(c)
	return c, nil
}

// SetConstraint creates or updates the constraint for spec and reconciles.
// The controller is enabled first if it was off. limit must be positive;
// gap -1 selects the default gap.
func (wf *Workflow) SetConstraint(ctx context.Context, spec string, byCount bool, limit, gap int) (*Constraint, error) {
	if !wf.enabled {
		if err := wf.Enable(ctx); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		return nil, errors.NewValidationError("Invalid limit value.")
	}

	c, err := wf.getConstraint(ctx, wf.world.Raws(), spec, nil)
	if err != nil {
		return nil, err
	}
	c.SetGoalByCount(byCount)
	c.SetGoalCount(limit)
	c.SetGoalGap(gap)
	if err := wf.store.Save(ctx, c.record); err != nil {
		return nil, errors.Wrapf(err, "failed to save constraint %q", spec)
	}

	wf.logger.Infow("Constraint set",
		logger.FieldConstraint, c.Spec(),
		"goal", limit,
		"gap", c.GoalGap(),
		"by_count", byCount)

	wf.ProcessConstraints()
	return c, nil
}

// RemoveConstraint deletes the constraint created with exactly spec.
func (wf *Workflow) RemoveConstraint(ctx context.Context, spec string) error {
	c := wf.constraints.FindSpec(spec)
	if c == nil {
		return errors.NewNotFoundError("Constraint not found: %s", spec)
	}
	wf.constraints.remove(c)
	wf.recorder.ForgetConstraint(spec)
	if err := wf.store.Delete(ctx, c.record); err != nil {
		return errors.Wrapf(err, "failed to delete constraint %q", spec)
	}
	wf.logger.Infow("Constraint removed", logger.FieldConstraint, spec)
	return nil
}
