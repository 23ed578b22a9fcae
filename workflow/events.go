package workflow

import (
	"go.uber.org/zap"

	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/world"
)

// EventKind classifies workflow notifications.
type EventKind int

const (
	EventMessage EventKind = iota
	EventJobResumed
	EventJobSuspended
	EventProductionStarted
	EventProductionStopped
	EventCannotProduce
	EventJobRecovered
	EventJobForgotten
	EventRecoveryConflict
	EventConstraintLost
)

var eventKindNames = [...]string{
	"message", "job_resumed", "job_suspended", "production_started", "production_stopped",
	"cannot_produce", "job_recovered", "job_forgotten", "recovery_conflict", "constraint_lost",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is one notification. Text is the line shown to the player.
type Event struct {
	Kind       EventKind
	JobID      int    // job events
	Constraint string // constraint events, the spec string
	Text       string
	Delayed    bool // EventJobResumed only: the resume waits for the backoff timer
}

// Announcement returns the in-world announcement for production events.
func (e Event) Announcement() (color world.Color, pause bool, ok bool) {
	switch e.Kind {
	case EventProductionStarted:
		return world.ColorGreen, false, true
	case EventProductionStopped:
		return world.ColorCyan, false, true
	case EventCannotProduce:
		return world.ColorBrown, true, true
	}
	return 0, false, false
}

// Notifier receives workflow events.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// Notifiers fans an event out to each notifier in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(e Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(e)
		}
	}
}

// LogNotifier writes events to a structured logger.
type LogNotifier struct {
	Logger *zap.SugaredLogger
}

func (n LogNotifier) Notify(e Event) {
	log := n.Logger
	if log == nil {
		log = logger.Logger
	}
	kv := []interface{}{"event", e.Kind.String()}
	if e.JobID != 0 {
		kv = append(kv, logger.FieldJobID, e.JobID)
	}
	if e.Constraint != "" {
		kv = append(kv, logger.FieldConstraint, e.Constraint)
	}
	switch e.Kind {
	case EventJobForgotten, EventRecoveryConflict, EventConstraintLost, EventCannotProduce:
		log.Warnw(e.Text, kv...)
	case EventMessage:
		log.Debugw(e.Text, kv...)
	default:
		log.Infow(e.Text, kv...)
	}
}

// AnnounceNotifier forwards production events to the host's announcements.
type AnnounceNotifier struct {
	Announcer world.Announcer
}

func (n AnnounceNotifier) Notify(e Event) {
	if color, pause, ok := e.Announcement(); ok && n.Announcer != nil {
		n.Announcer.Announce(e.Text, color, pause)
	}
}
