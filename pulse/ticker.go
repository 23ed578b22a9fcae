// Package pulse drives the workflow controller from wall-clock time. Each
// tick enters the host critical section, advances the simulated frame counter
// and runs the per-frame entry point once per frame.
package pulse

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

// Host is the simulated world the ticker advances.
type Host interface {
	// Suspend enters the host critical section and returns its release.
	Suspend() (release func())
	AdvanceFrames(n int)
	Frame() int
}

// Stepper is the per-frame entry point.
type Stepper interface {
	OnUpdate(ctx context.Context) error
}

// StepperFunc adapts a function to Stepper.
type StepperFunc func(ctx context.Context) error

func (f StepperFunc) OnUpdate(ctx context.Context) error { return f(ctx) }

// Ticker advances a Host at a fixed interval
type Ticker struct {
	host          Host
	step          Stepper
	interval      time.Duration
	framesPerTick int

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	logger   *zap.SugaredLogger
	pulseLog *zap.SugaredLogger // Logger with Pulse symbol pre-attached

	// tick errors repeat every frame while the cause persists
	warnLimiter *rate.Limiter

	mu               sync.Mutex
	lastTickAt       time.Time
	ticksSinceStart  int64
	framesSinceStart int64
	tickErrors       int64
	suppressedWarns  int64
}

// TickerConfig contains configuration for the Pulse ticker
type TickerConfig struct {
	Interval      time.Duration // Wall-clock interval between ticks (default: 100ms)
	FramesPerTick int           // Frames advanced per tick (default: 10)
	WarnEvery     time.Duration // Minimum spacing of repeated tick error warnings (default: 5s)
}

// DefaultTickerConfig returns sensible defaults
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		Interval:      100 * time.Millisecond,
		FramesPerTick: 10,
		WarnEvery:     5 * time.Second,
	}
}

// NewTicker creates a new Pulse ticker
func NewTicker(host Host, step Stepper, cfg TickerConfig, log *zap.SugaredLogger) *Ticker {
	return NewTickerWithContext(context.Background(), host, step, cfg, log)
}

// NewTickerWithContext creates a ticker with a parent context
func NewTickerWithContext(ctx context.Context, host Host, step Stepper, cfg TickerConfig, log *zap.SugaredLogger) *Ticker {
	def := DefaultTickerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.FramesPerTick <= 0 {
		cfg.FramesPerTick = def.FramesPerTick
	}
	if cfg.WarnEvery <= 0 {
		cfg.WarnEvery = def.WarnEvery
	}
	if log == nil {
		log = logger.Logger
	}

	tickerCtx, cancel := context.WithCancel(ctx)
	return &Ticker{
		host:          host,
		step:          step,
		interval:      cfg.Interval,
		framesPerTick: cfg.FramesPerTick,
		ctx:           tickerCtx,
		cancel:        cancel,
		logger:        log,
		pulseLog:      logger.AddPulseSymbol(log),
		warnLimiter:   rate.NewLimiter(rate.Every(cfg.WarnEvery), 1),
	}
}

// Start begins the ticker loop
func (t *Ticker) Start() {
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
	t.pulseLog.Infow("Pulse ticker started", "interval", t.interval, "frames_per_tick", t.framesPerTick)
}

// Stop gracefully stops the ticker. The tick in progress, if any, completes.
func (t *Ticker) Stop() {
	t.cancel()
	t.wg.Wait()

	t.mu.Lock()
	started := t.started
	t.started = false
	ticks, frames := t.ticksSinceStart, t.framesSinceStart
	t.mu.Unlock()
	if started {
		t.pulseLog.Infow("Pulse ticker stopped", "ticks", ticks, "frames", frames)
	}
}

// run is the main ticker loop
func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case tickTime := <-ticker.C:
			if err := t.Tick(tickTime); err != nil {
				t.warn(err)
			}
		}
	}
}

// Tick runs one tick synchronously: framesPerTick frames inside one critical
// section. It stops at the first frame whose update fails.
func (t *Ticker) Tick(now time.Time) error {
	release := t.host.Suspend()
	defer release()

	start := time.Now()
	frames := 0
	var tickErr error
	for ; frames < t.framesPerTick; frames++ {
		if err := t.ctx.Err(); err != nil {
			break
		}
		t.host.AdvanceFrames(1)
		if err := t.step.OnUpdate(t.ctx); err != nil {
			tickErr = errors.Wrapf(err, "update failed at frame %d", t.host.Frame())
			frames++
			break
		}
	}

	t.mu.Lock()
	t.lastTickAt = now
	t.ticksSinceStart++
	t.framesSinceStart += int64(frames)
	if tickErr != nil {
		t.tickErrors++
	}
	ticks := t.ticksSinceStart
	t.mu.Unlock()

	t.pulseLog.Debugw("Pulse tick",
		"tick", ticks,
		logger.FieldFrame, t.host.Frame(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return tickErr
}

func (t *Ticker) warn(err error) {
	if !t.warnLimiter.Allow() {
		t.mu.Lock()
		t.suppressedWarns++
		t.mu.Unlock()
		return
	}

	t.mu.Lock()
	suppressed := t.suppressedWarns
	t.suppressedWarns = 0
	tick := t.ticksSinceStart
	t.mu.Unlock()

	// Don't spam logs - repeated errors are summarised
	t.pulseLog.Warnw("Pulse tick error", logger.FieldError, err, "tick", tick, "suppressed", suppressed)
}

// GetStats returns ticker statistics
func (t *Ticker) GetStats() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return map[string]interface{}{
		"last_tick_at":       t.lastTickAt,
		"ticks_since_start":  t.ticksSinceStart,
		"frames_since_start": t.framesSinceStart,
		"tick_errors":        t.tickErrors,
		"interval":           t.interval,
	}
}
