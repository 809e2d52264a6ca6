package router

import (
	"net/http"

	"ReqFilter/internal/auth"
	"ReqFilter/internal/config"
	"ReqFilter/internal/handler"
	"ReqFilter/internal/logger"
	"ReqFilter/internal/resolver"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// InitRoutes собирает маршруты API. cache may be nil when Redis is not
// configured, verifier is nil when auth is disabled.
func InitRoutes(cfg *config.Config, res *resolver.Resolver, cache handler.Flusher, verifier *auth.Verifier) http.Handler {
	mux := http.NewServeMux()
	wrap := func(scope string, h http.HandlerFunc) http.HandlerFunc {
		if verifier != nil {
			h = verifier.Require(scope, h)
		}
		return withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(h))
	}
	mux.HandleFunc("/api/filter", wrap("", handler.FilterHandler(res)))
	mux.HandleFunc("/api/cache/flush", wrap(cfg.Auth.FlushScope, handler.FlushHandler(cache)))
	return mux
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging пишет одну строку на запрос и проставляет X-Request-ID.
func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		fields := map[string]any{
			"request_id": reqID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}
