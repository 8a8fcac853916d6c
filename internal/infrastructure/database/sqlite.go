package database

import (
	"database/sql"
	"fmt"

	"github.com/asakaida/rolegate/internal/infrastructure/config"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLite opens a SQLite database at path (":memory:" for a private in-memory database)
func NewSQLite(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serialises writers, and every ":memory:" connection is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: config.DriverSQLite}, nil
}
