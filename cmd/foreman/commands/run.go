package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/foreman/am"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/pulse"
	"github.com/teranos/foreman/server"
	"github.com/teranos/foreman/sym"
	"github.com/teranos/foreman/workflow"
	"github.com/teranos/foreman/world/sim"
)

// RunCmd drives the world and the controller from wall-clock time.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: sym.Pulse + " Drive the world and controller from wall-clock time",
	Long: sym.Pulse + ` run - the frame-driven control loop

Every tick enters the world critical section, advances the frame counter
and runs the controller once per frame: a liveness pass every
pulse.liveness_frames frames and a full reconciliation every
pulse.reconcile_frames frames.

With an HTTP address, the daemon serves:
  /metrics  Prometheus metrics
  /status   controller state as JSON
  /events   websocket stream of workflow events

Example:
  foreman run --world fort.yaml
  foreman run --world fort.yaml --watch --metrics-address :9090`,
	RunE: runDaemon,
}

func init() {
	RunCmd.Flags().String("metrics-address", "", "HTTP listen address for /metrics, /status and /events (overrides metrics.address)")
	RunCmd.Flags().Bool("watch", false, "Reload the world fixture when it changes (overrides world.watch)")
	RunCmd.Flags().Bool("save-world", false, "Write the world back to its fixture on shutdown")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The server is the last notifier so it sees events after they are logged.
	var srv *server.Server
	hub := workflow.NotifierFunc(func(e workflow.Event) {
		if srv != nil {
			srv.Notify(e)
		}
	})

	s, err := openSession(ctx, cmd, hub)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	release := s.world.Suspend()
	renderStatus(out, s.wf.Status())
	release()

	tickerCfg := pulse.DefaultTickerConfig()
	tickerCfg.Interval = s.cfg.GetTickInterval()
	if s.cfg.Pulse.FramesPerTick > 0 {
		tickerCfg.FramesPerTick = s.cfg.Pulse.FramesPerTick
	}
	ticker := pulse.NewTickerWithContext(ctx, s.world, s.wf, tickerCfg, logger.ComponentLogger("pulse"))

	var watcher *sim.FixtureWatcher
	watch := s.cfg.World.Watch
	if cmd.Flags().Changed("watch") {
		watch, _ = cmd.Flags().GetBool("watch")
	}
	if watch {
		watcher, err = sim.NewFixtureWatcher(s.worldPath, s.world, logger.ComponentLogger("sim"))
		if err != nil {
			return errors.Wrap(err, "failed to watch world fixture")
		}
		watcher.Start()
	}

	if cw := watchConfig(cmd, s); cw != nil {
		defer cw.Stop()
	}

	addr := s.cfg.Metrics.Address
	if cmd.Flags().Changed("metrics-address") {
		addr, _ = cmd.Flags().GetString("metrics-address")
	}
	serveErr := make(chan error, 1)
	if addr != "" {
		srv = server.New(s.wf, s.world, s.recorder.Handler(), logger.ComponentLogger("server"))
		go func() {
			serveErr <- srv.ListenAndServe(addr)
		}()
	}

	ticker.Start()

	fmt.Fprintf(out, "%s Control loop started\n", sym.Pulse)
	fmt.Fprintf(out, "  World: %s (session %s)\n", s.worldPath, s.world.SessionID())
	fmt.Fprintf(out, "  Tick: %v x %d frames\n", tickerCfg.Interval, tickerCfg.FramesPerTick)
	if addr != "" {
		fmt.Fprintf(out, "  HTTP: %s\n", addr)
	}
	fmt.Fprintf(out, "\n%s Press Ctrl+C to stop\n\n", sym.Pulse)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case <-sigChan:
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	fmt.Fprintf(out, "\n%s Stopping...\n", sym.Pulse)

	// Reverse order of startup
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Warnw("HTTP shutdown failed", logger.FieldError, err)
		}
		shutdownCancel()
	}
	if watcher != nil {
		watcher.Stop()
	}
	ticker.Stop()

	if save, _ := cmd.Flags().GetBool("save-world"); save {
		if err := s.saveWorld(); err != nil {
			return errors.Wrap(err, "failed to save world")
		}
	}

	stats := ticker.GetStats()
	fmt.Fprintf(out, "%s Stopped after %v frames\n", sym.Pulse, stats["frames_since_start"])
	return runErr
}

// watchConfig reloads the pulse cadence and log theme when the config file
// changes. It returns nil when no config file is in use.
func watchConfig(cmd *cobra.Command, s *session) *am.ConfigWatcher {
	path, _ := cmd.Flags().GetString(flagConfig)
	if path == "" {
		path = am.ActiveConfigFile()
	}
	if path == "" {
		return nil
	}

	cw, err := am.NewConfigWatcher(path)
	if err != nil {
		logger.Logger.Warnw("Config changes will not be picked up", logger.FieldPath, path, logger.FieldError, err)
		return nil
	}
	am.SetGlobalWatcher(cw)
	cw.OnReload(func(cfg *am.Config) error {
		release := s.world.Suspend()
		s.wf.SetCadence(cfg.Pulse.LivenessFrames, cfg.Pulse.ReconcileFrames)
		release()
		logger.SetTheme(cfg.GetLogTheme())
		logger.Logger.Infow("Pulse cadence updated",
			"liveness_frames", cfg.Pulse.LivenessFrames,
			"reconcile_frames", cfg.Pulse.ReconcileFrames)
		return nil
	})
	cw.Start()
	return cw
}
