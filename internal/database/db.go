// Package database opens the SQLite database and keeps its schema current.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Initialize opens the SQLite database, applies pragmas and runs migrations
func Initialize(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty in-memory database
		db.SetMaxOpenConns(1)
	}

	if err := applyPragmas(db, dbPath); err != nil {
		db.Close()
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// dsn sets per-connection pragmas (a PRAGMA exec only reaches one pooled
// connection) and _txlock=immediate so write transactions take the lock up
// front instead of failing with SQLITE_BUSY on upgrade.
func dsn(dbPath string) string {
	if dbPath == ":memory:" || strings.Contains(dbPath, "?") {
		return dbPath
	}
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func applyPragmas(db *sql.DB, dbPath string) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA busy_timeout = 5000",
	}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return nil
}
