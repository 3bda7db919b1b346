package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/arx/internal/shared"
)

// Logging returns [Middleware] that logs each request with a generated id,
// method, path, and total duration. For streaming endpoints the duration
// covers the whole life of the stream.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := shared.GenerateID()

			logger.Debug("request started", "id", id, "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
			logger.Info("request finished", "id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// Recover returns [Middleware] that converts a handler panic into a 500
// response instead of tearing down the process.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
