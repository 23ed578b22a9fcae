package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/foreman/errors"
)

func TestOpen(t *testing.T) {
	t.Run("applies session pragmas", func(t *testing.T) {
		conn, err := Open(filepath.Join(t.TempDir(), "foreman.db"), zaptest.NewLogger(t).Sugar())
		require.NoError(t, err)
		defer conn.Close()

		var journalMode string
		require.NoError(t, conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
		assert.Equal(t, "wal", journalMode)

		var busyTimeout int
		require.NoError(t, conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
		assert.Equal(t, SQLiteBusyTimeoutMS, busyTimeout)
	})

	t.Run("creates the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.db")
		conn, err := Open(path, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("memory database keeps one connection", func(t *testing.T) {
		conn, err := OpenWithMigrations(MemoryPath, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Exec("INSERT INTO persistent_data (session_id, key) VALUES ('s', 'k')")
		require.NoError(t, err)
		var n int
		require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM persistent_data").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("unwritable directory fails", func(t *testing.T) {
		conn, err := Open("/nonexistent/dir/foreman.db", nil)
		if err == nil {
			err = conn.Ping()
			conn.Close()
		}
		assert.Error(t, err)
	})
}

func TestErrorClassification(t *testing.T) {
	busy := errors.Wrap(sqlite3.Error{Code: sqlite3.ErrBusy}, "saving record")
	assert.True(t, IsBusy(busy))
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(t, IsBusy(errors.New("no such table")))
	assert.Contains(t, errors.FlattenHints(Annotate(busy)), "--db")

	conn, err := Open(filepath.Join(t.TempDir(), "foreman.db"), nil)
	require.NoError(t, err)
	conn.Close()
	_, err = conn.Exec("SELECT 1")
	assert.True(t, IsClosed(err))
	assert.NotEmpty(t, errors.FlattenHints(Annotate(err)))

	assert.False(t, IsClosed(nil))
	assert.Nil(t, Annotate(nil))
	plain := errors.New("disk full")
	assert.Equal(t, plain, Annotate(plain))
}
