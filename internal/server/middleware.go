package server

import (
	"net/http"
	"path"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// originAllowed matches origin against the configured patterns. Patterns follow
// path.Match, the same rules websocket.AcceptOptions.OriginPatterns uses.
func originAllowed(patterns []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, pattern := range patterns {
		if ok, err := path.Match(strings.ToLower(pattern), origin); err == nil && ok {
			return true
		}
	}
	return false
}

// cors admits configured origins only. Requests from any other browser origin are
// refused; requests without an Origin header (CLI, curl) pass through.
func cors(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !originAllowed(allowedOrigins, origin) {
				logger.Warn("rejected request from foreign origin",
					zap.String("origin", origin),
					zap.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusForbidden, errorResponse{
					Error: "origin not allowed",
					Hint:  "add the origin to server.allowed-origins",
				})
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
