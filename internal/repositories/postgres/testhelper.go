package postgres

import (
	"database/sql"
	"os"
	"testing"

	"github.com/asakaida/rolegate/internal/infrastructure/config"
	"github.com/asakaida/rolegate/internal/infrastructure/database"
)

// SetupTestDB connects to the PostgreSQL test database from .env.test and runs migrations.
// The test is skipped unless INTEGRATION is set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("INTEGRATION") == "" {
		t.Skip("Skipping integration test. Set INTEGRATION=1 to run")
	}

	// Initialize test config
	if err := config.InitConfig("test"); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		t.Skipf("Skipping PostgreSQL integration test: DB_DRIVER is %q", cfg.Database.Driver)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := pg.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { CleanupTestDB(t, pg.DB) })

	return pg.DB
}

// CleanupTestDB deletes test data and closes the database connection
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec("DELETE FROM permissions"); err != nil {
		t.Logf("Warning: Failed to clean up table permissions: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}
