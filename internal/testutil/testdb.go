package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/panotour/internal/db"
)

// NewTestDB opens a migrated in-memory database that is closed when the test
// completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return open(t, ":memory:")
}

// NewTestDBPath returns the path of a migrated database file in a temp dir,
// for code under test that opens the database itself.
func NewTestDBPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panotour.db")
	open(t, path)
	return path
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

func open(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
