package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"jokebox/internal/config"
	"jokebox/internal/errors"
	"jokebox/internal/logging"
	"jokebox/internal/storage"
)

// Manager handles API key authentication and per-key rate limiting
type Manager struct {
	config      config.AuthConfig
	store       *KeyStore
	rateLimiter *RateLimiter
	logger      *logging.Logger
	staticKeys  []staticEntry
}

// staticEntry pairs a static key definition with its resolved APIKey
type staticEntry struct {
	token string
	key   *APIKey
}

// NewManager creates a new auth manager.
// db may be nil when only static keys are used.
func NewManager(cfg config.AuthConfig, keysFile *KeysFile, db *storage.DB, logger *logging.Logger) (*Manager, error) {
	m := &Manager{
		config:      cfg,
		logger:      logger,
		rateLimiter: NewRateLimiter(cfg.RateLimit, logger),
	}

	if db != nil {
		m.store = NewKeyStore(db, logger)
	}

	if keysFile != nil {
		if err := keysFile.Validate(); err != nil {
			return nil, err
		}
		for _, sk := range keysFile.Keys {
			scopes := make([]Scope, 0, len(sk.Scopes))
			for _, s := range sk.Scopes {
				scopes = append(scopes, Scope(s))
			}
			if len(scopes) == 0 {
				scopes = []Scope{ScopeRead}
			}
			m.staticKeys = append(m.staticKeys, staticEntry{
				token: sk.Token,
				key: &APIKey{
					ID:        sk.ID,
					Name:      sk.Name,
					Scopes:    scopes,
					RateLimit: sk.RateLimit,
					CreatedAt: time.Now().UTC(),
				},
			})
		}
	}

	logger.Info("Auth manager initialized", map[string]interface{}{
		"enabled":     cfg.Enabled,
		"requireAuth": cfg.RequireAuth,
		"staticKeys":  len(m.staticKeys),
		"hasStore":    m.store != nil,
	})

	return m, nil
}

// Enabled reports whether authentication is turned on
func (m *Manager) Enabled() bool {
	return m.config.Enabled
}

// StartCleanup starts the rate limiter's idle-bucket cleanup loop.
// It stops when ctx is cancelled.
func (m *Manager) StartCleanup(ctx context.Context) {
	m.rateLimiter.StartCleanup(ctx)
}

// Authenticate resolves a bearer token to an API key.
// An empty token is allowed only when requireAuth is off (anonymous,
// read-only access); it yields a nil key.
func (m *Manager) Authenticate(token string) (*APIKey, error) {
	if !m.config.Enabled {
		return nil, nil
	}

	if token == "" {
		if m.config.RequireAuth {
			return nil, errors.New(errors.Unauthorized, "missing API token")
		}
		return nil, nil
	}

	// Static keys first: plaintext constant-time compare
	for _, entry := range m.staticKeys {
		if subtle.ConstantTimeCompare([]byte(entry.token), []byte(token)) == 1 {
			return entry.key, nil
		}
	}

	// Database keys: prefix lookup, then bcrypt verification
	if m.store != nil && IsValidTokenFormat(token) {
		candidates, err := m.store.GetByPrefix(ExtractTokenPrefix(token))
		if err != nil {
			return nil, errors.Wrap(errors.InternalError, "key lookup failed", err)
		}
		for _, key := range candidates {
			if key.IsActive() && VerifyToken(token, key.TokenHash) {
				m.store.TouchLastUsed(key.ID)
				return key, nil
			}
		}
	}

	return nil, errors.New(errors.Unauthorized, "invalid API token")
}

// Authorize checks that the key grants the required scope.
// A nil key (anonymous access) is granted read only.
func (m *Manager) Authorize(key *APIKey, required Scope) error {
	if !m.config.Enabled {
		return nil
	}
	if key == nil {
		if required == ScopeRead {
			return nil
		}
		return errors.New(errors.Unauthorized, "this operation requires an API token")
	}
	if !key.HasScope(required) {
		return errors.New(errors.Unauthorized, "API token lacks the required scope").
			WithDetails(map[string]interface{}{"required": required})
	}
	return nil
}

// Allow applies rate limiting for the key.
// Returns allowed and, when denied, the Retry-After value in seconds.
func (m *Manager) Allow(key *APIKey) (bool, int) {
	if !m.config.Enabled || key == nil {
		return true, 0
	}
	return m.rateLimiter.Allow(key.ID, key.RateLimit)
}
