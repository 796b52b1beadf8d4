// Package testing provides testing utilities and helpers for the reinsim project.
package testing

import (
	"testing"

	"github.com/aristath/reinsim/internal/database"
)

// NewTestDB creates an isolated in-memory SQLite database with the embedded
// schema for name applied (e.g. "runs"). Returns the database and an
// idempotent cleanup function; cleanup also runs automatically at test end.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	db, err := database.New(database.Config{
		Profile: database.ProfileMemory,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, closer(t, db)
}

// NewTestDBWithSchema creates an isolated in-memory database and executes schema on it
func NewTestDBWithSchema(t *testing.T, name string, schema string) (*database.DB, func()) {
	t.Helper()

	db, err := database.New(database.Config{
		Profile: database.ProfileMemory,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			_ = db.Close()
			t.Fatalf("Failed to execute custom schema for test database %s: %v", name, err)
		}
	}

	return db, closer(t, db)
}

func closer(t *testing.T, db *database.DB) func() {
	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", db.Name(), err)
		}
	}
	t.Cleanup(cleanup)
	return cleanup
}
