// Package testing holds fixtures shared by package tests.
package testing

import (
	"database/sql"
	"testing"

	"github.com/teranos/foreman/db"
)

// CreateTestDB returns a migrated in-memory session database that is closed
// when the test ends.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenWithMigrations(db.MemoryPath, nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
