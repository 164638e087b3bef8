// Package history records executed metric queries in a SQLite metastore.
package history

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLite DSN parameters for production hardening.
const (
	busyTimeout = "5000"
	synchronous = "NORMAL"
	journalMode = "WAL"
)

// OpenSQLite opens the history database with WAL journaling, a busy timeout,
// and a single writer connection, then runs pending migrations.
func OpenSQLite(path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_busy_timeout", busyTimeout)
	params.Set("_journal_mode", journalMode)
	params.Set("_synchronous", synchronous)
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
