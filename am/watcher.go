package am

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/sym"
)

// DefaultReloadDebounce is how long the watcher waits for writes to settle.
const DefaultReloadDebounce = 500 * time.Millisecond

// ReloadCallback receives a validated configuration after the watched file
// changes. Errors are logged and do not stop later callbacks.
type ReloadCallback func(*Config) error

// ConfigWatcher reloads a config file when it changes on disk. The parent
// directory is watched so rename-on-save editors are seen. Configurations
// that fail Validate are rejected and callbacks keep the previous values.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.SugaredLogger

	mu        sync.Mutex
	callbacks []ReloadCallback
	debounce  time.Duration
	timer     *time.Timer

	// ownWrites counts writes made by SetValue that must not trigger a reload.
	ownWrites atomic.Int32
	reloads   atomic.Int64

	done chan struct{}
}

var (
	globalWatcher   *ConfigWatcher
	globalWatcherMu sync.Mutex
)

// NewConfigWatcher prepares a watcher for configPath. The file must exist.
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve config path %s", configPath)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	// Adding the file first reports a missing file instead of silently
	// watching its directory.
	if err := fw.Add(abs); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch config file %s", configPath)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch config directory %s", filepath.Dir(abs))
	}
	return &ConfigWatcher{
		path:     abs,
		watcher:  fw,
		logger:   logger.WithSymbol(sym.AM).Named("am").With(logger.FieldPath, abs),
		debounce: DefaultReloadDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (cw *ConfigWatcher) Path() string {
	return cw.path
}

// Reloads returns how many configurations have been delivered to callbacks.
func (cw *ConfigWatcher) Reloads() int64 {
	return cw.reloads.Load()
}

// SetDebounce changes how long the watcher waits for writes to settle.
func (cw *ConfigWatcher) SetDebounce(d time.Duration) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.debounce = d
}

// OnReload registers a callback.
func (cw *ConfigWatcher) OnReload(callback ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// MarkOwnWrite makes the watcher skip the next change to the file.
func (cw *ConfigWatcher) MarkOwnWrite() {
	cw.ownWrites.Add(1)
}

func (cw *ConfigWatcher) consumeOwnWrite() bool {
	for {
		n := cw.ownWrites.Load()
		if n <= 0 {
			return false
		}
		if cw.ownWrites.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Start begins watching in the background.
func (cw *ConfigWatcher) Start() {
	go cw.loop()
}

// Stop ends watching and waits for the event loop to exit.
func (cw *ConfigWatcher) Stop() error {
	cw.mu.Lock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.mu.Unlock()
	err := cw.watcher.Close()
	select {
	case <-cw.done:
	case <-time.After(time.Second):
		// Start was never called.
	}
	return err
}

func (cw *ConfigWatcher) loop() {
	defer close(cw.done)
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(event) {
				continue
			}
			if cw.consumeOwnWrite() {
				cw.logger.Debugw("Ignoring own config write")
				continue
			}
			cw.logger.Debugw("Config file changed", "op", event.Op.String())
			cw.schedule()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warnw("Config watcher error", logger.FieldError, err)
		}
	}
}

func (cw *ConfigWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path || isBackupFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (cw *ConfigWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, func() {
		if err := cw.Reload(); err != nil {
			cw.logger.Errorw("Config reload rejected", logger.FieldError, err)
		}
	})
}

// Reload reads the watched file, validates it and runs the callbacks. When
// the file is the active cascade file the whole cascade is reloaded.
func (cw *ConfigWatcher) Reload() error {
	var (
		cfg *Config
		err error
	)
	if active, _ := filepath.Abs(ActiveConfigFile()); active == cw.path {
		Reset()
		cfg, err = Load()
	} else {
		cfg, err = LoadFromFile(cw.path)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithHint(err, "fix the file; the running values are unchanged")
	}

	cw.mu.Lock()
	callbacks := append([]ReloadCallback(nil), cw.callbacks...)
	cw.mu.Unlock()

	for _, fn := range callbacks {
		if err := fn(cfg); err != nil {
			cw.logger.Warnw("Config reload callback failed", logger.FieldError, err)
		}
	}
	cw.reloads.Add(1)
	cw.logger.Infow("Config reloaded", "callbacks", len(callbacks))
	return nil
}

// isBackupFile reports rotating backups written by SetValue (.back1 … .back3).
func isBackupFile(path string) bool {
	return strings.HasPrefix(filepath.Ext(path), ".back")
}

// SetGlobalWatcher registers the watcher SetValue marks its own writes on.
func SetGlobalWatcher(watcher *ConfigWatcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the watcher registered with SetGlobalWatcher.
func GetGlobalWatcher() *ConfigWatcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
