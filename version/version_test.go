package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Equal(t, "abcdef1", Info{CommitHash: "abcdef123456"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestApplyBuildSettings(t *testing.T) {
	info := Info{CommitHash: "dev", BuildTime: "unknown"}
	applyBuildSettings(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		{Key: "GOOS", Value: "linux"},
	})
	assert.Equal(t, "0123456789abcdef", info.CommitHash)
	assert.Equal(t, "2026-10-01T12:00:00Z", info.BuildTime)
	assert.Contains(t, info.String(), "commit 0123456")
}

func TestGetFillsRuntime(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
