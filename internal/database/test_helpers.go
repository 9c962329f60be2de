package database

import (
	"path/filepath"
	"testing"
)

// setupTestDB opens a throwaway sqlite database under t.TempDir. The
// postgres path is covered separately by the testcontainers test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(Config{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "vidquiz_test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
