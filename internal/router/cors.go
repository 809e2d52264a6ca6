package router

import (
	"net/http"
	"slices"
	"strings"
)

// withCORS adds CORS headers and answers preflight requests.
func withCORS(allowOrigin string, allowCredentials bool, h http.HandlerFunc) http.HandlerFunc {
	origins := parseOrigins(allowOrigin)
	return func(w http.ResponseWriter, r *http.Request) {
		value, vary := matchOrigin(origins, allowCredentials, r.Header.Get("Origin"))
		if value != "" {
			w.Header().Set("Access-Control-Allow-Origin", value)
		}
		if vary {
			w.Header().Set("Vary", "Origin")
		}
		if allowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h(w, r)
	}
}

// matchOrigin: "*" echoes the caller only when credentials are allowed
// (browsers reject "*" with credentials); a list allows exact matches only.
func matchOrigin(origins []string, allowCredentials bool, requestOrigin string) (value string, vary bool) {
	if len(origins) == 0 {
		return "*", false
	}
	if slices.Contains(origins, "*") {
		if allowCredentials && requestOrigin != "" {
			return requestOrigin, true
		}
		return "*", false
	}
	if requestOrigin != "" && slices.Contains(origins, requestOrigin) {
		return requestOrigin, true
	}
	return "", true
}

func parseOrigins(allowOrigin string) []string {
	var res []string
	for _, p := range strings.Split(allowOrigin, ",") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}
