package api

import (
	"net/http"
	"time"

	"jokebox/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Jokes     int       `json:"jokes"`
}

// handleHealth handles GET /health. Healthy means the process is up; dataset
// state is the readiness check's concern.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	WriteJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
	}, http.StatusOK)
}

// handleReady handles GET /ready. Ready requires a non-empty dataset.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w)
		return
	}

	n := s.Store().Len()
	resp := ReadyResponse{
		Timestamp: time.Now().UTC(),
		Jokes:     n,
	}

	if n == 0 {
		resp.Status = "not_ready"
		WriteJSON(w, resp, http.StatusServiceUnavailable)
		return
	}

	resp.Status = "ready"
	WriteJSON(w, resp, http.StatusOK)
}
