package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jokebox/internal/auth"
	"jokebox/internal/errors"
	"jokebox/internal/version"
)

// handleLookup serves the primary lookup surface. The exact root path
// returns a random joke; any other path is treated as an index token.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	if r.URL.Path == "/" {
		s.serveRandom(w)
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/")
	s.serveByToken(w, token)
}

// handleListJokes handles GET /jokes with pagination
func (s *Server) handleListJokes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	params, jerr := ParseListParams(r)
	if jerr != nil {
		s.writeError(w, jerr)
		return
	}

	store := s.Store()
	jokes := store.Slice(params.Offset, params.Limit)
	if jokes == nil {
		jokes = []json.RawMessage{}
	}

	WriteJSON(w, map[string]interface{}{
		"data":   jokes,
		"total":  store.Len(),
		"offset": params.Offset,
		"limit":  params.Limit,
	}, http.StatusOK)
}

// handleJokeRoutes handles GET /jokes/random and GET /jokes/:index
func (s *Server) handleJokeRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	token := GetPathParam(r, "/jokes/")
	if token == "random" {
		s.serveRandom(w)
		return
	}
	s.serveByToken(w, token)
}

// serveRandom writes a uniformly random joke
func (s *Server) serveRandom(w http.ResponseWriter) {
	joke, position, err := s.Store().Random()
	if err != nil {
		s.metrics.RecordLookup("random", "empty")
		s.writeError(w, err)
		return
	}

	s.metrics.RecordLookup("random", "ok")
	s.recordServe(position)
	WriteData(w, joke)
}

// serveByToken validates an index token and writes the joke at that position
func (s *Server) serveByToken(w http.ResponseWriter, token string) {
	index, jerr := ParseIndexToken(token)
	if jerr != nil {
		outcome := "invalid"
		if jerr.Code == errors.JokeNotFound {
			outcome = "not_found"
		}
		s.metrics.RecordLookup("index", outcome)
		s.writeError(w, jerr)
		return
	}

	joke, err := s.Store().ByIndex(index)
	if err != nil {
		s.metrics.RecordLookup("index", "not_found")
		s.writeError(w, err)
		return
	}

	s.metrics.RecordLookup("index", "ok")
	s.recordServe(index)
	WriteData(w, joke)
}

// handleReload handles POST /reload: re-read the dataset source and swap the
// store atomically. Requires write scope when auth is enabled.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w)
		return
	}

	if !s.authorize(w, r, auth.ScopeWrite) {
		return
	}

	if s.reload == nil {
		s.writeError(w, errors.New(errors.InternalError, "dataset reload is not configured"))
		return
	}

	// One reload at a time; concurrent lookups keep serving the old store
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	store, err := s.reload()
	if err != nil {
		s.logger.Error("Dataset reload failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.writeError(w, err)
		return
	}

	s.swapStore(store)
	s.logger.Info("Dataset reloaded", map[string]interface{}{
		"jokes": store.Len(),
	})

	WriteJSON(w, map[string]interface{}{
		"status": "reloaded",
		"jokes":  store.Len(),
	}, http.StatusOK)
}

// StatusResponse represents the system status
type StatusResponse struct {
	Name    string        `json:"name"`
	Version string        `json:"version"`
	Uptime  string        `json:"uptime"`
	Dataset DatasetStatus `json:"dataset"`
	Storage StorageStatus `json:"storage"`
	Auth    AuthStatus    `json:"auth"`
}

// DatasetStatus describes the loaded dataset
type DatasetStatus struct {
	Jokes  int    `json:"jokes"`
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
}

// StorageStatus describes the optional SQLite storage
type StorageStatus struct {
	Enabled     bool        `json:"enabled"`
	TotalServed int64       `json:"totalServed,omitempty"`
	TopServed   interface{} `json:"topServed,omitempty"`
}

// AuthStatus describes the authentication state
type AuthStatus struct {
	Enabled bool `json:"enabled"`
}

// handleStatus handles GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	resp := StatusResponse{
		Name:    "Jokebox HTTP API",
		Version: version.Version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Dataset: DatasetStatus{
			Jokes:  s.Store().Len(),
			Source: s.cfg.Dataset.Source,
			Path:   s.cfg.Dataset.Path,
		},
		Storage: StorageStatus{
			Enabled: s.counters != nil,
		},
		Auth: AuthStatus{
			Enabled: s.auth != nil && s.auth.Enabled(),
		},
	}

	if s.counters != nil {
		if total, err := s.counters.TotalServed(); err == nil {
			resp.Storage.TotalServed = total
		}
		if top, err := s.counters.TopServed(5); err == nil && len(top) > 0 {
			resp.Storage.TopServed = top
		}
	}

	WriteJSON(w, resp, http.StatusOK)
}

// authorize authenticates the request and checks the required scope and rate
// limit. Writes the error response itself and returns false on rejection.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, required auth.Scope) bool {
	if s.auth == nil || !s.auth.Enabled() {
		return true
	}

	key, err := s.auth.Authenticate(bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return false
	}

	if err := s.auth.Authorize(key, required); err != nil {
		s.writeError(w, err)
		return false
	}

	if allowed, retryAfter := s.auth.Allow(key); !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		s.writeError(w, errors.New(errors.RateLimited, "rate limit exceeded"))
		return false
	}

	return true
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// recordServe bumps the persistent serve counter when storage is enabled
func (s *Server) recordServe(position int) {
	if s.counters == nil {
		return
	}
	if err := s.counters.RecordServe(position); err != nil {
		s.logger.Warn("Failed to record serve counter", map[string]interface{}{
			"position": position,
			"error":    err.Error(),
		})
	}
}

// writeError writes an error response with status mapping and error metrics
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	s.metrics.RecordError(string(code))

	var je *errors.JokeError
	if jokeErr, ok := err.(*errors.JokeError); ok {
		je = jokeErr
	} else {
		je = errors.Wrap(errors.InternalError, "internal error", err)
	}
	WriteJokeError(w, je)
}
