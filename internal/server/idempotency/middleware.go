package idempotency

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
)

// Header carries the client-supplied idempotency key
const Header = "Idempotency-Key"

// replayedHeader marks a response answered from the cache
const replayedHeader = "Idempotency-Replayed"

// captureWriter wraps http.ResponseWriter to record the status code and
// buffer a copy of the body for caching
type captureWriter struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

// WriteHeader captures the status code
func (cw *captureWriter) WriteHeader(code int) {
	cw.statusCode = code
	cw.ResponseWriter.WriteHeader(code)
}

// Write buffers a copy of the body while writing through
func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

// Middleware decorates a write endpoint with the idempotency cache. In
// required mode a request without a key is rejected with 400 before the
// wrapped handler runs; in optional mode it proceeds without protection.
// A cached, unexpired key is answered verbatim and the wrapped handler
// never executes.
func Middleware(cache *Cache, logger *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := r.Header.Get(Header)
			if key == "" {
				if required {
					logger.WarnContext(ctx, "missing idempotency key",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusBadRequest)
					fmt.Fprintf(w, `{"error":"%s header is required"}`, Header)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if rec := cache.Begin(ctx, key); rec != nil {
				logger.InfoContext(ctx, "replaying cached response",
					slog.String("key", key),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", rec.StatusCode))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(replayedHeader, "true")
				w.WriteHeader(rec.StatusCode)
				_, _ = w.Write(rec.ResponseBody)
				return
			}

			wrapped := &captureWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			// 5xx responses are not cached: the client should get a real
			// retry, not a replay of the outage.
			if wrapped.statusCode < http.StatusInternalServerError {
				cache.Commit(ctx, key, r.Method, r.URL.Path, wrapped.statusCode, wrapped.body.Bytes())
			}
		})
	}
}
