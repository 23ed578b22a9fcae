package logger

import (
	"github.com/teranos/foreman/sym"
	"go.uber.org/zap"
)

// Symbol wrappers for instance loggers.
// These attach the subsystem glyph as a structured field, not in the message,
// which keeps messages clean and logs queryable by symbol.
//
// Usage:
//
//	t.pulseLog = logger.AddPulseSymbol(baseLogger)
//	t.pulseLog.Infow("Ticker started", "interval", interval)

// AddPulseSymbol wraps a logger with the Pulse symbol (꩜)
func AddPulseSymbol(l *zap.SugaredLogger) *zap.SugaredLogger {
	return l.With(FieldSymbol, sym.Pulse)
}

// AddGuardSymbol wraps a logger with the Guard symbol (⛨)
func AddGuardSymbol(l *zap.SugaredLogger) *zap.SugaredLogger {
	return l.With(FieldSymbol, sym.Guard)
}

// AddWorkflowSymbol wraps a logger with the Workflow symbol (⚒)
func AddWorkflowSymbol(l *zap.SugaredLogger) *zap.SugaredLogger {
	return l.With(FieldSymbol, sym.Workflow)
}

// AddDBSymbol wraps a logger with the DB symbol (⊔)
func AddDBSymbol(l *zap.SugaredLogger) *zap.SugaredLogger {
	return l.With(FieldSymbol, sym.DB)
}

// WithSymbol returns the global logger with the given symbol as a field.
func WithSymbol(symbol string) *zap.SugaredLogger {
	return Logger.With(FieldSymbol, symbol)
}
