package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jokebox/internal/logging"
	"jokebox/internal/storage"
)

// KeyStore persists API keys in the Jokebox database
type KeyStore struct {
	db     *storage.DB
	logger *logging.Logger
}

// NewKeyStore creates a key store over the given database
func NewKeyStore(db *storage.DB, logger *logging.Logger) *KeyStore {
	return &KeyStore{db: db, logger: logger}
}

// Create inserts a new API key
func (s *KeyStore) Create(key *APIKey) error {
	_, err := s.db.Conn().Exec(`
		INSERT INTO api_keys (id, name, token_hash, token_prefix, scopes, rate_limit, created_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		key.ID, key.Name, key.TokenHash, key.TokenPrefix,
		joinScopes(key.Scopes), key.RateLimit,
		key.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// GetByPrefix returns active keys whose token prefix matches.
// Several keys can share a prefix; callers verify the full token against each.
func (s *KeyStore) GetByPrefix(prefix string) ([]*APIKey, error) {
	rows, err := s.db.Conn().Query(`
		SELECT id, name, token_hash, token_prefix, scopes, rate_limit, created_at, last_used_at, revoked, revoked_at
		FROM api_keys WHERE token_prefix = ? AND revoked = 0`, prefix)
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}
	defer rows.Close()

	return scanKeys(rows)
}

// List returns all keys, newest first
func (s *KeyStore) List() ([]*APIKey, error) {
	rows, err := s.db.Conn().Query(`
		SELECT id, name, token_hash, token_prefix, scopes, rate_limit, created_at, last_used_at, revoked, revoked_at
		FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	return scanKeys(rows)
}

// Revoke marks a key as revoked
func (s *KeyStore) Revoke(keyID string) error {
	res, err := s.db.Conn().Exec(`
		UPDATE api_keys SET revoked = 1, revoked_at = ? WHERE id = ? AND revoked = 0`,
		time.Now().UTC().Format(time.RFC3339), keyID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no active key with ID %s", keyID)
	}
	return nil
}

// TouchLastUsed records that a key was used. Best effort; failures are logged.
func (s *KeyStore) TouchLastUsed(keyID string) {
	_, err := s.db.Conn().Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), keyID)
	if err != nil {
		s.logger.Warn("Failed to update key last_used_at", map[string]interface{}{
			"keyId": keyID,
			"error": err.Error(),
		})
	}
}

func scanKeys(rows *sql.Rows) ([]*APIKey, error) {
	var keys []*APIKey
	for rows.Next() {
		var (
			key                  APIKey
			scopes               string
			rateLimit            sql.NullInt64
			createdAt            string
			lastUsedAt, revokedAt sql.NullString
			revoked              int
		)
		if err := rows.Scan(&key.ID, &key.Name, &key.TokenHash, &key.TokenPrefix,
			&scopes, &rateLimit, &createdAt, &lastUsedAt, &revoked, &revokedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}

		key.Scopes = splitScopes(scopes)
		key.Revoked = revoked != 0
		if rateLimit.Valid {
			limit := int(rateLimit.Int64)
			key.RateLimit = &limit
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			key.CreatedAt = t
		}
		if lastUsedAt.Valid {
			if t, err := time.Parse(time.RFC3339, lastUsedAt.String); err == nil {
				key.LastUsedAt = &t
			}
		}
		if revokedAt.Valid {
			if t, err := time.Parse(time.RFC3339, revokedAt.String); err == nil {
				key.RevokedAt = &t
			}
		}

		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}
	return keys, nil
}

func joinScopes(scopes []Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func splitScopes(s string) []Scope {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	scopes := make([]Scope, 0, len(parts))
	for _, p := range parts {
		scopes = append(scopes, Scope(strings.TrimSpace(p)))
	}
	return scopes
}
