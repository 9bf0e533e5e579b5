package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS payroll_history (
			id TEXT PRIMARY KEY,
			date DATETIME NOT NULL,
			employees INTEGER NOT NULL,
			total TEXT NOT NULL,
			fee TEXT NOT NULL,
			tx_hash TEXT NOT NULL,
			status TEXT NOT NULL,
			settlement_time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payroll_history_date ON payroll_history(date)`,

		`CREATE TABLE IF NOT EXISTS payroll_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			intents TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payroll_templates_name ON payroll_templates(name)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
