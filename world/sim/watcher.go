package sim

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

// FixtureWatcher reloads a fixture into a live world whenever the file
// changes on disk. The parent directory is watched so editors that replace
// the file by rename are still seen.
type FixtureWatcher struct {
	path    string
	world   *World
	watcher *fsnotify.Watcher
	logger  *zap.SugaredLogger

	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	started        bool
	saving         bool
	ownWriteUntil  time.Time
	onReload       []func()

	done chan struct{}
}

// ownWriteGrace is the minimum time after a Save during which change events
// for the fixture are treated as that save's own.
const ownWriteGrace = 200 * time.Millisecond

// NewFixtureWatcher prepares a watcher for path feeding w.
func NewFixtureWatcher(path string, w *World, log *zap.SugaredLogger) (*FixtureWatcher, error) {
	if log == nil {
		log = logger.Logger
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve fixture path %s", path)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch fixture directory %s", filepath.Dir(abs))
	}
	return &FixtureWatcher{
		path:           abs,
		world:          w,
		watcher:        fw,
		logger:         logger.AddWorkflowSymbol(log).With(logger.FieldComponent, "fixture"),
		debouncePeriod: 250 * time.Millisecond,
		done:           make(chan struct{}),
	}, nil
}

// SetDebounce changes how long the watcher waits for writes to settle.
func (fw *FixtureWatcher) SetDebounce(d time.Duration) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.debouncePeriod = d
}

// OnReload registers a callback run after each successful reload.
func (fw *FixtureWatcher) OnReload(fn func()) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.onReload = append(fw.onReload, fn)
}

// MarkOwnWrite makes the watcher skip change events for the fixture until
// the debounce period (at least ownWriteGrace) has passed. A single write
// may surface as several events.
func (fw *FixtureWatcher) MarkOwnWrite() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.ownWriteUntil = time.Now().Add(max(fw.debouncePeriod, ownWriteGrace))
}

// Save writes the world to the watched file without triggering a reload.
func (fw *FixtureWatcher) Save() error {
	release := fw.world.Suspend()
	defer release()

	fw.mu.Lock()
	fw.saving = true
	fw.mu.Unlock()

	err := SaveFile(fw.world, fw.path)

	fw.mu.Lock()
	fw.saving = false
	fw.mu.Unlock()
	fw.MarkOwnWrite()
	return err
}

// Start begins watching in the background.
func (fw *FixtureWatcher) Start() {
	fw.mu.Lock()
	if fw.started {
		fw.mu.Unlock()
		return
	}
	fw.started = true
	fw.mu.Unlock()
	go fw.watchLoop()
}

// Stop ends watching. It is safe to call without Start.
func (fw *FixtureWatcher) Stop() error {
	fw.mu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	started := fw.started
	fw.mu.Unlock()
	err := fw.watcher.Close()
	if started {
		<-fw.done
	}
	return err
}

func (fw *FixtureWatcher) watchLoop() {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if fw.checkOwnWrite() {
				fw.logger.Debugw("Ignoring own write", logger.FieldPath, event.Name)
				continue
			}
			fw.scheduleReload()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warnw("Fixture watcher error", logger.FieldError, err)
		}
	}
}

func (fw *FixtureWatcher) checkOwnWrite() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.saving || time.Now().Before(fw.ownWriteUntil)
}

func (fw *FixtureWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, func() {
		if err := fw.Reload(); err != nil {
			fw.logger.Errorw("Fixture reload failed", logger.FieldPath, fw.path, logger.FieldError, err)
		}
	})
}

// Reload reads the fixture and swaps its contents into the world.
func (fw *FixtureWatcher) Reload() error {
	next, err := LoadFile(fw.path, fw.logger)
	if err != nil {
		return err
	}

	release := fw.world.Suspend()
	fw.world.Replace(next)
	frame := fw.world.Frame()
	release()

	fw.logger.Infow("Fixture reloaded", logger.FieldPath, fw.path, logger.FieldFrame, frame)

	fw.mu.Lock()
	callbacks := append([]func(){}, fw.onReload...)
	fw.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
	return nil
}
