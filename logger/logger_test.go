package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogger(t *testing.T) {
	t.Cleanup(func() {
		Logger = zap.NewNop().Sugar()
		SetLevel(zapcore.InfoLevel)
		SetTheme("everforest")
	})
}

func TestSetupJSON(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{JSON: true, Level: zapcore.InfoLevel, Output: zapcore.AddSync(&buf)}))

	Logger.Infow("Job recovered", FieldJobID, 12)
	Logger.Debugw("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Job recovered", entry["msg"])
	assert.EqualValues(t, 12, entry[FieldJobID])
}

func TestSetupConsole(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: zapcore.WarnLevel, Theme: "gruvbox", Output: zapcore.AddSync(&buf)}))
	assert.Equal(t, "gruvbox", Theme())

	Logger.Infow("hidden")
	Logger.Warnw("Recovery blocked", FieldJobID, 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Recovery blocked")
}

func TestSetLevelAffectsExistingLoggers(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: zapcore.WarnLevel, Output: zapcore.AddSync(&buf)}))
	child := ComponentLogger("workflow")

	child.Infow("before")
	SetLevel(zapcore.DebugLevel)
	assert.Equal(t, zapcore.DebugLevel, Level())
	child.Infow("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestCleanupWithNilLogger(t *testing.T) {
	resetLogger(t)
	Logger = nil
	assert.NotPanics(t, Cleanup)
}

func TestComponentAndSymbolLoggers(t *testing.T) {
	resetLogger(t)
	core, logs := observer.New(zapcore.InfoLevel)
	Logger = zap.New(core).Sugar()

	guard := AddGuardSymbol(ComponentLogger("workflow"))
	guard.Infow("Job recovered", FieldJobID, 12)

	entry := logs.All()[0]
	assert.Equal(t, "workflow", entry.LoggerName)
	assert.Equal(t, "⛨", entry.ContextMap()[FieldSymbol])

	child := ChildLogger(AddPulseSymbol(Logger), FieldFrame, 600)
	child.Infow("Reconcile")
	assert.Equal(t, int64(600), logs.All()[1].ContextMap()[FieldFrame])
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}
