package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB holds the SQLite app database used for job tracking and the report
// audit log.
type DB struct {
	App *sql.DB
}

// Initialize opens (or creates) the app database at appPath and enables WAL
// mode for concurrent readers.
func Initialize(appPath string) (*DB, error) {
	if dir := filepath.Dir(appPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	appDB, err := sql.Open("sqlite3", appPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open app db: %w", err)
	}
	if _, err := appDB.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("Warning: Failed to set WAL mode: %v", err)
	}
	if err := appDB.Ping(); err != nil {
		appDB.Close()
		return nil, fmt.Errorf("failed to ping app db: %w", err)
	}

	return &DB{App: appDB}, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	if db.App == nil {
		return nil
	}
	return db.App.Close()
}
