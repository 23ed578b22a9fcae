package am

import "github.com/teranos/foreman/errors"

var validThemes = map[string]bool{"": true, "everforest": true, "gruvbox": true}

// Validate checks that the configuration is valid.
// All problems are reported together, one per line.
func (c *Config) Validate() error {
	var problems []error

	if c.Pulse.LivenessFrames <= 0 {
		problems = append(problems, errors.Newf("pulse.liveness_frames must be > 0, got %d", c.Pulse.LivenessFrames))
	}
	if c.Pulse.ReconcileFrames <= 0 {
		problems = append(problems, errors.Newf("pulse.reconcile_frames must be > 0, got %d", c.Pulse.ReconcileFrames))
	}
	if c.Pulse.ReconcileFrames > 0 && c.Pulse.LivenessFrames > c.Pulse.ReconcileFrames {
		problems = append(problems, errors.Newf("pulse.liveness_frames (%d) must not exceed pulse.reconcile_frames (%d)",
			c.Pulse.LivenessFrames, c.Pulse.ReconcileFrames))
	}

	// Tick interval: 0 = default, negative = invalid
	if c.Pulse.TickIntervalMS < 0 {
		problems = append(problems, errors.Newf("pulse.tick_interval_ms must be >= 0, got %d", c.Pulse.TickIntervalMS))
	}
	if c.Pulse.FramesPerTick <= 0 {
		problems = append(problems, errors.Newf("pulse.frames_per_tick must be > 0, got %d", c.Pulse.FramesPerTick))
	}

	if c.World.Watch && c.World.Fixture == "" {
		problems = append(problems, errors.New("world.watch requires world.fixture"))
	}

	if !validThemes[c.Log.Theme] {
		problems = append(problems, errors.Newf("log.theme must be everforest or gruvbox, got %q", c.Log.Theme))
	}

	if len(problems) == 0 {
		return nil
	}
	err := errors.Wrap(errors.ErrValidation, "invalid configuration")
	for _, p := range problems {
		err = errors.WithDetail(err, p.Error())
	}
	return err
}

// Problems returns the individual validation messages attached to err
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	return errors.GetAllDetails(err)
}
