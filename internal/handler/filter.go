package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ReqFilter/internal/filter"
	"ReqFilter/internal/logger"
	"ReqFilter/internal/model"
	"ReqFilter/internal/resolver"
	"ReqFilter/internal/store"
)

const filterEndpoint = "/api/filter"

// FilterHandler resolves a resource's filters and sort state.
//
//	POST /api/filter  {"resource":"posts","params":{...},"sorts":["-created_at"]}
//	GET  /api/filter?resource=posts&sort=-created_at&status=2
func FilterHandler(res *resolver.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			resp *resolver.FilterResponse
			err  error
		)
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			resp, err = res.ResolveQuery(r.Context(), q.Get(resolver.ResourceParam), q)
		case http.MethodPost:
			var req resolver.FilterRequest
			body, rerr := io.ReadAll(r.Body)
			if rerr != nil {
				logger.Warn("read_body_failed", map[string]any{"endpoint": filterEndpoint, "error": rerr.Error()})
				http.Error(w, "Failed to read body: "+rerr.Error(), http.StatusBadRequest)
				return
			}
			if jerr := json.Unmarshal(body, &req); jerr != nil {
				logger.Warn("invalid_json", map[string]any{"endpoint": filterEndpoint, "error": jerr.Error()})
				http.Error(w, "Invalid JSON body: "+jerr.Error(), http.StatusBadRequest)
				return
			}
			logger.Info("request", map[string]any{
				"endpoint": filterEndpoint,
				"payload":  json.RawMessage(body),
			})
			resp, err = res.Resolve(r.Context(), req)
		default:
			logger.Warn("method_not_allowed", map[string]any{"endpoint": filterEndpoint, "method": r.Method})
			http.Error(w, "Only GET and POST allowed", http.StatusMethodNotAllowed)
			return
		}

		if err != nil {
			http.Error(w, "Failed to resolve filters: "+err.Error(), statusFor(err))
			return
		}
		writeJSON(w, resp)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnknownResource), errors.Is(err, filter.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnknownField), errors.Is(err, store.ErrUnknownModel):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Flusher drops cached lookups.
type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// FlushHandler handles POST /api/cache/flush.
func FlushHandler(cache Flusher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
			return
		}
		if cache == nil {
			http.Error(w, "record cache disabled", http.StatusNotFound)
			return
		}
		n, err := cache.Flush(r.Context())
		if err != nil {
			logger.Error("cache_flush_failed", map[string]any{"error": err.Error()})
			http.Error(w, "Flush failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]int{"flushed": n})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write_response_failed", map[string]any{"error": err.Error()})
	}
}
