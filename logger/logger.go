package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until Setup so library
// code never sees a nil logger.
var Logger = zap.NewNop().Sugar()

// level is shared by every core Setup builds, so SetLevel takes effect on
// loggers already handed out.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Options selects how the global logger writes.
type Options struct {
	// JSON selects zap's production encoder instead of the themed console.
	JSON  bool
	Level zapcore.Level
	// Theme overrides FOREMAN_LOG_THEME when set.
	Theme string
	// Output defaults to stderr.
	Output zapcore.WriteSyncer
}

// Setup replaces the global logger.
func Setup(opts Options) error {
	if theme := os.Getenv("FOREMAN_LOG_THEME"); theme != "" {
		SetTheme(theme)
	}
	if opts.Theme != "" {
		SetTheme(opts.Theme)
	}
	level.SetLevel(opts.Level)

	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	var enc zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = newConsoleEncoder()
	}

	Logger = zap.New(zapcore.NewCore(enc, out, level)).Sugar()
	return nil
}

// Initialize sets up console or JSON logging at info level.
func Initialize(jsonOutput bool) error {
	return Setup(Options{JSON: jsonOutput, Level: zapcore.InfoLevel})
}

// SetLevel changes the minimum level of every logger built by Setup.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// Level returns the current minimum level.
func Level() zapcore.Level {
	return level.Level()
}

// Cleanup flushes any buffered log entries
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
