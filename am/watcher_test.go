package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/foreman/errors"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestConfigWatcher_OwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	writeConfig(t, path, "[log]\ntheme = \"gruvbox\"\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	assert.False(t, cw.consumeOwnWrite())
	cw.MarkOwnWrite()
	cw.MarkOwnWrite()
	assert.True(t, cw.consumeOwnWrite())
	assert.True(t, cw.consumeOwnWrite())
	assert.False(t, cw.consumeOwnWrite(), "each mark skips one event")
}

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "am.toml")
	writeConfig(t, path, "[log]\ntheme = \"gruvbox\"\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()
	cw.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan *Config, 1)
	cw.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	cw.Start()

	writeConfig(t, path, "[log]\ntheme = \"everforest\"\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "everforest", cfg.Log.Theme, "watched file is read even outside the cascade")
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not invoked")
	}
}

func TestConfigWatcher_RejectsInvalid(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "am.toml")
	writeConfig(t, path, "[pulse]\nliveness_frames = 0\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	called := false
	cw.OnReload(func(*Config) error {
		called = true
		return nil
	})

	err = cw.Reload()
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "running values are unchanged")
	assert.False(t, called)
	assert.Zero(t, cw.Reloads())

	writeConfig(t, path, "[pulse]\nliveness_frames = 3\n")
	cw.OnReload(func(*Config) error { return errors.New("callback failure is logged") })
	require.NoError(t, cw.Reload())
	assert.True(t, called)
	assert.EqualValues(t, 1, cw.Reloads())
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "am.toml")
	writeConfig(t, path, "")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()
	assert.Equal(t, path, cw.Path())

	assert.False(t, isBackupFile(path))
	assert.True(t, isBackupFile(path+".back1"))
}

func TestNewConfigWatcher_MissingFile(t *testing.T) {
	_, err := NewConfigWatcher(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
