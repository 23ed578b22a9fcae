package commands

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/teranos/foreman/am"
	"github.com/teranos/foreman/db"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
	"github.com/teranos/foreman/metrics"
	"github.com/teranos/foreman/persist"
	"github.com/teranos/foreman/workflow"
	"github.com/teranos/foreman/world/sim"
)

// session is one loaded world with its store and controller.
type session struct {
	cfg       *am.Config
	worldPath string
	db        *sql.DB
	world     *sim.World
	store     persist.Store
	recorder  *metrics.Recorder
	wf        *workflow.Workflow
}

// openSession loads the configuration, the world fixture and the session
// store, then loads the controller inside the world critical section.
// Extra notifiers receive workflow events after the log and the host.
func openSession(ctx context.Context, cmd *cobra.Command, extra ...workflow.Notifier) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	worldPath, _ := cmd.Flags().GetString(flagWorld)
	if worldPath == "" {
		worldPath = cfg.World.Fixture
	}
	if worldPath == "" {
		return nil, errors.WithHint(errors.New("no world fixture configured"),
			"pass --world or set world.fixture in am.toml")
	}

	w, err := sim.LoadFile(worldPath, logger.ComponentLogger("sim"))
	if err != nil {
		return nil, err
	}

	database, err := openDatabase(cmd, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		worldPath: worldPath,
		db:        database,
		world:     w,
		store:     persist.NewSQLStore(database, w.SessionID(), logger.ComponentLogger("persist")),
		recorder:  metrics.NewRecorder(),
	}

	notifiers := workflow.Notifiers{
		workflow.LogNotifier{Logger: logger.ComponentLogger("workflow")},
		workflow.AnnounceNotifier{Announcer: w},
	}
	notifiers = append(notifiers, extra...)

	s.wf = workflow.New(w, s.store, workflow.Options{
		Logger:          logger.ComponentLogger("workflow"),
		Notifier:        notifiers,
		Recorder:        s.recorder,
		LivenessFrames:  cfg.Pulse.LivenessFrames,
		ReconcileFrames: cfg.Pulse.ReconcileFrames,
	})

	release := w.Suspend()
	err = s.wf.Load(ctx)
	release()
	if err != nil {
		s.Close()
		return nil, errors.Wrap(err, "failed to load workflow state")
	}
	return s, nil
}

// openDatabase opens and migrates the session store. --db wins over
// database.path.
func openDatabase(cmd *cobra.Command, cfg *am.Config) (*sql.DB, error) {
	dbPath, _ := cmd.Flags().GetString(flagDB)
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}
	database, err := db.OpenWithMigrations(dbPath, logger.ComponentLogger("db"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, nil
}

// saveWorld writes the world back to its fixture file.
func (s *session) saveWorld() error {
	release := s.world.Suspend()
	defer release()
	return sim.SaveFile(s.world, s.worldPath)
}

func (s *session) Close() {
	if s.wf != nil {
		release := s.world.Suspend()
		s.wf.Close()
		release()
	}
	if s.db != nil {
		s.db.Close()
	}
}
