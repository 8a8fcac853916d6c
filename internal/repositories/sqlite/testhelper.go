package sqlite

import (
	"database/sql"
	"testing"

	"github.com/asakaida/rolegate/internal/infrastructure/database"
)

// SetupTestDB opens a private in-memory SQLite database and runs migrations
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})

	return db.DB
}
