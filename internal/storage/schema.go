package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createJokesTable(tx); err != nil {
			return err
		}
		if err := createServeCountsTable(tx); err != nil {
			return err
		}
		if err := createAPIKeysTable(tx); err != nil {
			return err
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d",
			version, currentSchemaVersion)
	}

	// No migrations exist yet; version 1 is the first schema.
	return fmt.Errorf("no migration path from schema version %d", version)
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}
	return nil
}

func createJokesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS jokes (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL UNIQUE,
			body TEXT NOT NULL,
			imported_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create jokes table: %w", err)
	}
	return nil
}

func createServeCountsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS serve_counts (
			position INTEGER PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("create serve_counts table: %w", err)
	}
	return nil
}

func createAPIKeysTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS api_keys (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			token_prefix TEXT NOT NULL,
			scopes TEXT NOT NULL,
			rate_limit INTEGER,
			created_at TEXT NOT NULL,
			last_used_at TEXT,
			revoked INTEGER NOT NULL DEFAULT 0,
			revoked_at TEXT
		)`)
	if err != nil {
		return fmt.Errorf("create api_keys table: %w", err)
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(token_prefix)`)
	if err != nil {
		return fmt.Errorf("create api_keys prefix index: %w", err)
	}
	return nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("clear schema version: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}
