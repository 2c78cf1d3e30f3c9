package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"

	"jokebox/internal/config"
	"jokebox/internal/logging"
)

func discardLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Level:  logging.ErrorLevel,
		Format: logging.JSONFormat,
		Output: io.Discard,
	})
}

func TestRequestIDGenerated(t *testing.T) {
	server := newTestServer(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	server := newTestServer(t, 3)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-id-123" {
		t.Errorf("Expected client request ID to be echoed, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t, 3)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS allow-origin header")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := RecoveryMiddleware(discardLogger())(panicking)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 after panic, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse error response: %v", err)
	}
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("Expected INTERNAL_ERROR code, got %v", body["code"])
	}
}

func TestGzipApplied(t *testing.T) {
	cfg := config.CompressionConfig{Enabled: true, MinSizeBytes: 1}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"setup":"a long enough joke body for compression"}}`))
	})
	handler := GzipMiddleware(cfg, discardLogger())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Expected gzip encoding, got %q", got)
	}

	gz, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to open gzip reader: %v", err)
	}
	decoded, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("Failed to decompress body: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(decoded, &body); err != nil {
		t.Fatalf("Decompressed body is not JSON: %v", err)
	}
}

func TestGzipSkippedBelowMinSize(t *testing.T) {
	cfg := config.CompressionConfig{Enabled: true, MinSizeBytes: 4096}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":"tiny"}`))
	})
	handler := GzipMiddleware(cfg, discardLogger())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Expected no encoding below min size, got %q", got)
	}
	if w.Body.String() != `{"data":"tiny"}` {
		t.Errorf("Expected plain body, got %q", w.Body.String())
	}
}

func TestGzipSkippedWithoutAcceptHeader(t *testing.T) {
	cfg := config.CompressionConfig{Enabled: true, MinSizeBytes: 1}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":"plain client"}`))
	})
	handler := GzipMiddleware(cfg, discardLogger())(inner)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Encoding"); got != "" {
		t.Errorf("Expected no encoding without Accept-Encoding, got %q", got)
	}
}

func TestGzipPreservesStatusCode(t *testing.T) {
	cfg := config.CompressionConfig{Enabled: true, MinSizeBytes: 1}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"No jokes found","code":"JOKE_NOT_FOUND"}`))
	})
	handler := GzipMiddleware(cfg, discardLogger())(inner)

	req := httptest.NewRequest(http.MethodGet, "/99", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 through gzip middleware, got %d", w.Code)
	}
}
