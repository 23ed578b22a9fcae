package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const watchedFixture = `session: watched
buildings:
  - id: 1
    name: Smelter
jobs:
  - id: 1
    type: SmeltOre
    holder: 1
    repeat: true
`

func TestFixtureWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchedFixture), 0644))

	log := zaptest.NewLogger(t).Sugar()
	w, err := LoadFile(path, log)
	require.NoError(t, err)
	w.SetFrame(1000)

	fw, err := NewFixtureWatcher(path, w, log)
	require.NoError(t, err)
	fw.SetDebounce(10 * time.Millisecond)

	reloaded := make(chan struct{}, 1)
	fw.OnReload(func() { reloaded <- struct{}{} })
	fw.Start()
	defer fw.Stop()

	updated := watchedFixture + `  - id: 2
    type: SmeltOre
    holder: 1
    repeat: true
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("fixture was not reloaded")
	}

	release := w.Suspend()
	defer release()
	assert.Len(t, w.Jobs(), 2)
	assert.Equal(t, 1000, w.Frame(), "reload must not rewind the frame")
	assert.Equal(t, "watched", w.SessionID())
}

func TestFixtureWatcherSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchedFixture), 0644))

	log := zaptest.NewLogger(t).Sugar()
	w, err := LoadFile(path, log)
	require.NoError(t, err)

	fw, err := NewFixtureWatcher(path, w, log)
	require.NoError(t, err)
	fw.Start()
	defer fw.Stop()

	release := w.Suspend()
	w.FindJob(1).Flags.Suspend = true
	release()
	require.NoError(t, fw.Save())

	reread, err := LoadFile(path, log)
	require.NoError(t, err)
	assert.True(t, reread.FindJob(1).Flags.Suspend)
}

func TestFixtureWatcherStopWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchedFixture), 0644))
	w, err := LoadFile(path, nil)
	require.NoError(t, err)

	fw, err := NewFixtureWatcher(path, w, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	stopped := make(chan error, 1)
	go func() { stopped <- fw.Stop() }()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a watcher that never started")
	}
}

func TestFixtureWatcherIgnoresOwnSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchedFixture), 0644))

	log := zaptest.NewLogger(t).Sugar()
	w, err := LoadFile(path, log)
	require.NoError(t, err)

	fw, err := NewFixtureWatcher(path, w, log)
	require.NoError(t, err)
	fw.SetDebounce(10 * time.Millisecond)
	reloaded := make(chan struct{}, 8)
	fw.OnReload(func() { reloaded <- struct{}{} })
	fw.Start()
	defer fw.Stop()

	for i := 0; i < 3; i++ {
		require.NoError(t, fw.Save())
	}
	select {
	case <-reloaded:
		t.Fatal("own save triggered a reload")
	case <-time.After(ownWriteGrace + 200*time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte(watchedFixture), 0644))
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("external write after a save was not reloaded")
	}
}
