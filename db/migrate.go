package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

//go:embed sqlite/migrations/*.sql
var migrationFS embed.FS

const migrationDir = "sqlite/migrations"

// Migration is one embedded schema step. Version is the numeric file prefix.
type Migration struct {
	Version string
	File    string
	SQL     string
}

// Migrations returns the embedded migrations in apply order.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, migrationDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var out []Migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		data, err := fs.ReadFile(migrationFS, path.Join(migrationDir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		version, _, _ := strings.Cut(name, "_")
		out = append(out, Migration{Version: version, File: name, SQL: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// AppliedVersions returns the versions recorded in schema_migrations. A
// database that has never been migrated yields an empty set.
func AppliedVersions(conn *sql.DB) (map[string]bool, error) {
	var tables int
	err := conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'",
	).Scan(&tables)
	if err != nil {
		return nil, errors.Wrap(err, "inspect schema")
	}
	applied := make(map[string]bool)
	if tables == 0 {
		return applied, nil
	}

	rows, err := conn.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "read schema_migrations"),
			"the session database was created by an incompatible build; move it aside")
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan schema_migrations")
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Migrate applies every embedded migration not yet recorded, each in its own
// transaction. Migration 000 creates schema_migrations itself.
func Migrate(conn *sql.DB, log *zap.SugaredLogger) error {
	all, err := Migrations()
	if err != nil {
		return err
	}
	applied, err := AppliedVersions(conn)
	if err != nil {
		return err
	}

	ran := 0
	for _, m := range all {
		if applied[m.Version] {
			continue
		}
		if err := apply(conn, m); err != nil {
			return err
		}
		ran++
		if log != nil {
			log.Infow("Applied migration", "migration", m.File, "version", m.Version)
		}
	}

	if log != nil && ran > 0 {
		logger.AddDBSymbol(log).Debugw("Schema up to date", "applied", ran, "total", len(all))
	}
	return nil
}

func apply(conn *sql.DB, m Migration) error {
	tx, err := conn.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.File)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return errors.Wrapf(err, "execute %s", m.File)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return errors.Wrapf(err, "record %s", m.File)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.File)
}
