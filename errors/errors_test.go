package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "saving record %d", 7)

	assert.Contains(t, wrapped.Error(), "saving record 7")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestTaxonomyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"usage", NewUsageError("unknown option %q", "fast"), ErrUsage, `unknown option "fast"`},
		{"lookup", NewLookupError("cannot find item type: %s", "BARZ"), ErrLookup, "cannot find item type: BARZ"},
		{"validation", NewValidationError("invalid limit value: %d", 0), ErrValidation, "invalid limit value: 0"},
		{"not found", NewNotFoundError("constraint not found: %s", "BAR"), ErrNotFound, "constraint not found: BAR"},
		{"recovery", NewRecoveryError("holder %d lost", 3), ErrRecovery, "holder 3 lost"},
		{"conflict", NewConflictError("job %d already in list", 12), ErrReconstructionConflict, "job 12 already in list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, Is(tt.err, tt.sentinel))
			assert.Contains(t, tt.err.Error(), tt.message)
		})
	}
}

func TestTaxonomyIsDisjoint(t *testing.T) {
	err := NewLookupError("cannot find material: %s", "ADAMANT")

	assert.True(t, IsLookupError(err))
	assert.False(t, IsUsageError(err))
	assert.False(t, IsNotFoundError(err))
	assert.False(t, IsLookupError(nil))
}

func TestWrapCorrupt(t *testing.T) {
	err := WrapCorrupt(New("bad int column"), "loading workflow/config")

	assert.True(t, Is(err, ErrCorruptState))
	assert.Contains(t, err.Error(), "loading workflow/config")
	assert.Contains(t, err.Error(), "bad int column")
}

func TestWithHint(t *testing.T) {
	err := WithHint(NewUsageError("missing limit"), "workflow count <selector> <limit> [gap]")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "workflow count <selector> <limit> [gap]", hints[0])
	assert.True(t, IsUsageError(err))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
}

func ExampleNewLookupError() {
	err := NewLookupError("cannot find item type: %s", "BARZ")
	fmt.Println(IsLookupError(err))
	// Output: true
}
