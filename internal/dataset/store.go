// Package dataset holds the in-memory joke sequence and the loaders that
// build it from static files. Jokes are opaque JSON values; the service
// never inspects their shape.
package dataset

import (
	"encoding/json"
	"math/rand"

	"jokebox/internal/errors"
)

// Store is an immutable, ordered sequence of jokes. It is safe for
// concurrent readers; nothing mutates it after construction.
type Store struct {
	jokes []json.RawMessage
}

// NewStore creates a store over the given jokes. The slice is not copied;
// callers must not modify it afterwards.
func NewStore(jokes []json.RawMessage) *Store {
	return &Store{jokes: jokes}
}

// Len returns the number of jokes in the store
func (s *Store) Len() int {
	return len(s.jokes)
}

// ByIndex returns the joke at zero-based index i.
// Returns a JokeNotFound error when no joke exists at that position.
func (s *Store) ByIndex(i int) (json.RawMessage, error) {
	if i < 0 || i >= len(s.jokes) {
		return nil, errors.New(errors.JokeNotFound, "No jokes found").
			WithDetails(map[string]interface{}{"index": i, "total": len(s.jokes)})
	}
	return s.jokes[i], nil
}

// Random returns a uniformly random joke and its index.
// Returns a DatasetEmpty error when the store holds no jokes.
func (s *Store) Random() (json.RawMessage, int, error) {
	if len(s.jokes) == 0 {
		return nil, 0, errors.New(errors.DatasetEmpty, "No jokes found")
	}
	i := rand.Intn(len(s.jokes))
	return s.jokes[i], i, nil
}

// Slice returns jokes[offset:offset+limit], clamped to the store bounds.
// Used by the listing endpoint.
func (s *Store) Slice(offset, limit int) []json.RawMessage {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.jokes) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(s.jokes) {
		end = len(s.jokes)
	}
	return s.jokes[offset:end]
}

// All returns the full ordered sequence. Callers must treat it as read-only.
func (s *Store) All() []json.RawMessage {
	return s.jokes
}
