package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

// SQLiteBusyTimeoutMS is how long a connection waits on a locked database.
// A daemon and a one-shot CLI command may share the same session file.
const SQLiteBusyTimeoutMS = 5000

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type pragma struct {
	stmt string
	what string
}

var sessionPragmas = []pragma{
	{"PRAGMA journal_mode = WAL", "enable WAL mode"},
	{"PRAGMA foreign_keys = ON", "enable foreign keys"},
	{fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS), "set busy timeout"},
}

// Open opens the session database at path. A nil logger keeps it silent.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}

	// Each pooled connection to :memory: would be a separate database.
	if path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	for _, p := range sessionPragmas {
		if _, err := conn.Exec(p.stmt); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to %s", p.what)
		}
	}

	if log != nil {
		logger.AddDBSymbol(log).Debugw("Session database opened", logger.FieldPath, path)
	}
	return conn, nil
}

// OpenWithMigrations opens the database and brings its schema up to date.
func OpenWithMigrations(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	conn, err := Open(path, log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn, log); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "migrate %s", path)
	}
	return conn, nil
}
