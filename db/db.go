// ABOUTME: Database connection management and initialization
// ABOUTME: Handles opening the SQLite contact book with WAL mode
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// DriverName is go-sqlite3 with a fold(text) function registered on every
// connection. SQLite's own LOWER only folds ASCII, so "Étienne" would not
// match "étienne".
const DriverName = "sqlite3_mycrew"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", fold, true)
		},
	})
}

// fold is the case folding used on both sides of name and search
// comparisons.
func fold(s string) string {
	return strings.ToLower(s)
}

// dsnOptions turns on WAL and foreign keys (work_locations cascade on
// contact delete) and waits on a locked file instead of failing.
const dsnOptions = "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"

// OpenDatabase opens the contact book at path, creating its directory and
// schema on first use.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open(DriverName, path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	// One writer at a time; SQLite reports "database is locked" otherwise.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := InitSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
