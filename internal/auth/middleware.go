package auth

import (
	"errors"
	"net/http"
	"strings"

	"ReqFilter/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Require rejects requests without a valid bearer token (401) or without
// scope in it (403). Verified claims are put on the request context.
func (v *Verifier) Require(scope string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			claims jwt.MapClaims
			err    error
		)
		if token := bearerToken(r); token == "" {
			err = ErrMissingToken
		} else if claims, err = v.Verify(token); err == nil && !HasScope(claims, scope) {
			err = ErrScope
		}
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, ErrScope) {
				status = http.StatusForbidden
			} else {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			}
			logger.Warn("auth_rejected", map[string]any{
				"path":  r.URL.Path,
				"scope": scope,
				"error": err.Error(),
			})
			http.Error(w, http.StatusText(status), status)
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
