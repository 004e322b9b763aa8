// Package database provides SQLite persistence for games: metadata, seats,
// the latest snapshot, the ordered command log and the history feed.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn *sqlx.DB
}

// New creates a new database connection.
// If the database file doesn't exist, it will be created.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sqlx.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}

	// One writer at a time; SQLite serialises them anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate brings the schema up to date. Each pending migration runs in its
// own transaction together with its bookkeeping row.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := db.AppliedMigrations()
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}

	for _, m := range migrations {
		if done[m.id] {
			continue
		}
		if err := db.apply(m); err != nil {
			return fmt.Errorf("migration %d %s: %w", m.id, m.name, err)
		}
	}
	return nil
}

func (db *DB) apply(m migration) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.NamedExec(`INSERT INTO schema_migrations (id, name) VALUES (:id, :name)`,
		map[string]interface{}{"id": m.id, "name": m.name}); err != nil {
		return err
	}
	return tx.Commit()
}

// AppliedMigrations returns the ids of applied migrations in order.
func (db *DB) AppliedMigrations() ([]int, error) {
	ids := []int{}
	err := db.conn.Select(&ids, "SELECT id FROM schema_migrations ORDER BY id")
	return ids, err
}
