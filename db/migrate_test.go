package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMigrations(t *testing.T) {
	all, err := Migrations()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "000", all[0].Version)
	assert.Equal(t, "001", all[1].Version)
	assert.Contains(t, all[1].SQL, "persistent_data")
}

func TestMigrate(t *testing.T) {
	t.Run("fresh database gets every migration once", func(t *testing.T) {
		conn, err := Open(filepath.Join(t.TempDir(), "foreman.db"), nil)
		require.NoError(t, err)
		defer conn.Close()

		applied, err := AppliedVersions(conn)
		require.NoError(t, err)
		assert.Empty(t, applied)

		log := zaptest.NewLogger(t).Sugar()
		require.NoError(t, Migrate(conn, log))
		require.NoError(t, Migrate(conn, log))

		applied, err = AppliedVersions(conn)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"000": true, "001": true}, applied)
	})

	t.Run("record ints default to -1", func(t *testing.T) {
		conn, err := OpenWithMigrations(MemoryPath, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Exec("INSERT INTO persistent_data (session_id, key) VALUES ('s', 'workflow/config')")
		require.NoError(t, err)

		var int0, int6 int
		require.NoError(t, conn.QueryRow("SELECT int0, int6 FROM persistent_data").Scan(&int0, &int6))
		assert.Equal(t, -1, int0)
		assert.Equal(t, -1, int6)
	})

	t.Run("foreign schema_migrations layout is rejected", func(t *testing.T) {
		conn, err := Open(MemoryPath, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, err = conn.Exec("CREATE TABLE schema_migrations (bad_schema TEXT)")
		require.NoError(t, err)

		err = Migrate(conn, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema_migrations")
	})
}
