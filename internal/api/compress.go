package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"

	"jokebox/internal/config"
	"jokebox/internal/logging"
)

// GzipMiddleware compresses responses for clients that accept gzip.
// Bodies below the configured minimum size are sent uncompressed; joke
// payloads are usually tiny and not worth the encoder round trip.
func GzipMiddleware(cfg config.CompressionConfig, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			// Buffer the response to decide whether compression pays off.
			// Jokebox responses are bounded in size, so this is cheap.
			buf := &bufferingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(buf, r)

			if err := buf.flush(cfg.MinSizeBytes); err != nil {
				logger.Warn("Failed to write compressed response", map[string]interface{}{
					"error": err.Error(),
				})
			}
		})
	}
}

// bufferingWriter holds the full response body until the handler returns
type bufferingWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (bw *bufferingWriter) WriteHeader(status int) {
	bw.status = status
}

func (bw *bufferingWriter) Write(data []byte) (int, error) {
	return bw.body.Write(data)
}

// flush writes the buffered body, gzipped when it meets the size threshold
func (bw *bufferingWriter) flush(minSize int) error {
	w := bw.ResponseWriter

	if bw.body.Len() >= minSize {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.WriteHeader(bw.status)

		gz := gzip.NewWriter(w)
		if _, err := gz.Write(bw.body.Bytes()); err != nil {
			_ = gz.Close()
			return err
		}
		return gz.Close()
	}

	w.WriteHeader(bw.status)
	_, err := w.Write(bw.body.Bytes())
	return err
}
