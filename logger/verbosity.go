package logger

import "go.uber.org/zap/zapcore"

// CLI verbosity, counted from -v flags.
const (
	VerbosityUser  = 0 // results and problems only
	VerbosityInfo  = 1 // -v: job transitions, recoveries, startup
	VerbosityDebug = 2 // -vv: per-cycle scans, record writes, config reloads
)

// VerbosityToLevel maps a -v count to the zap level: none is warn, -v is
// info and -vv or more is debug.
func VerbosityToLevel(verbosity int) zapcore.Level {
	if verbosity >= VerbosityDebug {
		return zapcore.DebugLevel
	}
	if verbosity == VerbosityInfo {
		return zapcore.InfoLevel
	}
	return zapcore.WarnLevel
}
