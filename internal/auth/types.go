// Package auth provides optional API key authentication for the mutating
// Jokebox endpoints, with bcrypt-hashed tokens, a SQLite-backed key store,
// static keys from a TOML file, and per-key rate limiting.
package auth

import "time"

// Scope represents an API key permission scope
type Scope string

const (
	// ScopeRead allows GET requests (lookup, listing, status)
	ScopeRead Scope = "read"
	// ScopeWrite allows mutating requests (dataset reload)
	ScopeWrite Scope = "write"
	// ScopeAdmin allows key management
	ScopeAdmin Scope = "admin"
)

// ValidScopes returns all valid scope values
func ValidScopes() []Scope {
	return []Scope{ScopeRead, ScopeWrite, ScopeAdmin}
}

// IsValid checks if a scope is valid
func (s Scope) IsValid() bool {
	switch s {
	case ScopeRead, ScopeWrite, ScopeAdmin:
		return true
	default:
		return false
	}
}

// Includes checks if this scope includes the required scope.
// admin includes write includes read.
func (s Scope) Includes(required Scope) bool {
	switch s {
	case ScopeAdmin:
		return true
	case ScopeWrite:
		return required == ScopeWrite || required == ScopeRead
	case ScopeRead:
		return required == ScopeRead
	default:
		return false
	}
}

// APIKey represents an API key for authentication
type APIKey struct {
	ID          string     `json:"id"`                     // "jok_key_" + 16 hex chars
	Name        string     `json:"name"`                   // Human-readable name
	TokenHash   string     `json:"-"`                      // bcrypt hash (never exposed in JSON)
	TokenPrefix string     `json:"token_prefix"`           // First 8 chars for identification
	Scopes      []Scope    `json:"scopes"`                 // Allowed scopes
	RateLimit   *int       `json:"rate_limit,omitempty"`   // Requests per minute (nil = default)
	CreatedAt   time.Time  `json:"created_at"`             // Creation timestamp
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"` // Last use timestamp
	Revoked     bool       `json:"revoked"`                // Whether key is revoked
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`   // Revocation timestamp
}

// IsActive checks if the key is usable
func (k *APIKey) IsActive() bool {
	return !k.Revoked
}

// HasScope checks if the key has the required scope
func (k *APIKey) HasScope(required Scope) bool {
	for _, s := range k.Scopes {
		if s.Includes(required) {
			return true
		}
	}
	return false
}
