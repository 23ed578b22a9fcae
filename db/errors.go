package db

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/foreman/errors"
)

// IsBusy reports whether err is SQLite giving up on a lock held by another
// connection after the busy timeout.
func IsBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// IsClosed reports whether err comes from using a closed *sql.DB. The
// database/sql sentinel is unexported, so the message is matched.
func IsClosed(err error) bool {
	return err != nil && strings.Contains(err.Error(), "sql: database is closed")
}

// Annotate adds a user-facing hint to store errors whose cause the user can fix.
func Annotate(err error) error {
	switch {
	case err == nil:
		return nil
	case IsBusy(err):
		return errors.WithHint(err, "another foreman process holds the session database; stop it or pass a different --db")
	case IsClosed(err):
		return errors.WithHint(err, "the session database was closed before the workflow finished")
	}
	return err
}
