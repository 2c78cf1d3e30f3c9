package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JokeStore persists imported joke datasets. Each joke keeps its position in
// the original ordered sequence; IDs are assigned at import time.
type JokeStore struct {
	db *DB
}

// NewJokeStore creates a joke store over the given database
func NewJokeStore(db *DB) *JokeStore {
	return &JokeStore{db: db}
}

// ReplaceAll replaces the stored dataset with the given jokes, preserving
// order. The swap is atomic: readers see either the old or the new dataset.
func (s *JokeStore) ReplaceAll(jokes []json.RawMessage) error {
	now := time.Now().UTC().Format(time.RFC3339)

	return s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM jokes`); err != nil {
			return fmt.Errorf("clear jokes: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO jokes (id, position, body, imported_at) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare joke insert: %w", err)
		}
		defer stmt.Close()

		for i, joke := range jokes {
			if _, err := stmt.Exec(uuid.New().String(), i, string(joke), now); err != nil {
				return fmt.Errorf("insert joke %d: %w", i, err)
			}
		}
		return nil
	})
}

// LoadAll returns the stored dataset ordered by position
func (s *JokeStore) LoadAll() ([]json.RawMessage, error) {
	rows, err := s.db.conn.Query(`SELECT body FROM jokes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load jokes: %w", err)
	}
	defer rows.Close()

	var jokes []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan joke: %w", err)
		}
		jokes = append(jokes, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jokes: %w", err)
	}
	return jokes, nil
}

// Count returns the number of stored jokes
func (s *JokeStore) Count() (int, error) {
	var n int
	if err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM jokes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jokes: %w", err)
	}
	return n, nil
}
