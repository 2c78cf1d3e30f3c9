package auth

import (
	"context"
	"sync"
	"time"

	"jokebox/internal/config"
	"jokebox/internal/logging"
)

// RateLimiter implements token bucket rate limiting keyed by API key ID
type RateLimiter struct {
	config  config.RateLimitConfig
	buckets map[string]*tokenBucket
	mu      sync.Mutex
	logger  *logging.Logger
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	limit      int // Tokens per minute (custom per key, or default)
	burst      int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig, logger *logging.Logger) *RateLimiter {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 60
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 10
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 300
	}

	return &RateLimiter{
		config:  cfg,
		buckets: make(map[string]*tokenBucket),
		logger:  logger,
	}
}

// Allow checks if a request is allowed and consumes a token.
// Returns: allowed, retryAfter (seconds until the next token is available).
func (r *RateLimiter) Allow(keyID string, customLimit *int) (bool, int) {
	if !r.config.Enabled {
		return true, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.buckets[keyID]
	if !exists {
		limit := r.config.DefaultLimit
		if customLimit != nil && *customLimit > 0 {
			limit = *customLimit
		}
		bucket = &tokenBucket{
			tokens:     float64(r.config.BurstSize),
			lastRefill: time.Now(),
			limit:      limit,
			burst:      r.config.BurstSize,
		}
		r.buckets[keyID] = bucket
	}

	// Refill tokens based on elapsed time (limit per minute)
	now := time.Now()
	elapsed := now.Sub(bucket.lastRefill)
	bucket.lastRefill = now

	bucket.tokens += elapsed.Seconds() * (float64(bucket.limit) / 60.0)
	if bucket.tokens > float64(bucket.burst) {
		bucket.tokens = float64(bucket.burst)
	}

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true, 0
	}

	tokensNeeded := 1.0 - bucket.tokens
	secondsUntilToken := tokensNeeded / (float64(bucket.limit) / 60.0)
	retryAfter := int(secondsUntilToken) + 1 // Round up

	return false, retryAfter
}

// StartCleanup starts a background goroutine that periodically drops idle
// buckets. It stops when ctx is cancelled.
func (r *RateLimiter) StartCleanup(ctx context.Context) {
	if !r.config.Enabled {
		return
	}

	go func() {
		ticker := time.NewTicker(time.Duration(r.config.CleanupInterval) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Cleanup drops buckets that have been idle longer than the cleanup interval
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(r.config.CleanupInterval) * time.Second)
	removed := 0
	for keyID, bucket := range r.buckets {
		if bucket.lastRefill.Before(cutoff) {
			delete(r.buckets, keyID)
			removed++
		}
	}

	if removed > 0 {
		r.logger.Debug("Rate limit cleanup", map[string]interface{}{
			"removedBuckets": removed,
			"remaining":      len(r.buckets),
		})
	}
}
