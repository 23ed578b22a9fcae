package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across foreman.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldJobID      = "job_id"
	FieldHolderID   = "holder_id"
	FieldItemID     = "item_id"
	FieldSessionID  = "session_id"
	FieldConstraint = "constraint"

	// Components
	FieldComponent = "component"
	FieldSymbol    = "symbol"

	// Job details
	FieldJobType     = "job_type"
	FieldState       = "state"
	FieldResumeDelay = "resume_delay"
	FieldResumeTime  = "resume_time"

	// Timing
	FieldFrame      = "frame"
	FieldTicks      = "ticks"
	FieldDurationMS = "duration_ms"

	// Counts
	FieldCount   = "count"
	FieldTracked = "tracked"
	FieldPending = "pending"

	// Errors
	FieldError = "error"

	// Files
	FieldPath = "path"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	wf := workflow.New(host, store, workflow.Options{
//	    Logger: logger.ComponentLogger("workflow"),
//	})
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	jobLogger := logger.ChildLogger(baseLogger, logger.FieldJobID, job.ID)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
