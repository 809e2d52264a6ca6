package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ReqFilter/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrScope        = errors.New("insufficient scope")
)

type contextKey string

const claimsContextKey contextKey = "jwt_claims"

// Verifier checks bearer tokens against one algorithm, issuer and audience.
type Verifier struct {
	key     any
	options []jwt.ParserOption
	now     func() time.Time
}

func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("jwt issuer is required")
	}
	if cfg.Audience == "" {
		return nil, errors.New("jwt audience is required")
	}

	alg := strings.ToUpper(cfg.Algorithm)
	key, err := loadKey(alg, cfg)
	if err != nil {
		return nil, err
	}

	v := &Verifier{key: key, now: time.Now}
	v.options = []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithLeeway(max(cfg.ClockSkew, 0)),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	}
	return v, nil
}

func loadKey(alg string, cfg config.JWTConfig) (any, error) {
	switch alg {
	case "HS256":
		if cfg.HMACSecret == "" {
			return nil, errors.New("jwt hmac secret is required for HS256")
		}
		return []byte(cfg.HMACSecret), nil
	case "RS256", "ES256":
		pemBytes, err := publicKeyPEM(cfg)
		if err != nil {
			return nil, err
		}
		if alg == "RS256" {
			return jwt.ParseRSAPublicKeyFromPEM(pemBytes)
		}
		return jwt.ParseECPublicKeyFromPEM(pemBytes)
	}
	return nil, fmt.Errorf("unsupported jwt algorithm: %q", cfg.Algorithm)
}

func publicKeyPEM(cfg config.JWTConfig) ([]byte, error) {
	if cfg.PublicKeyPEM != "" {
		return []byte(cfg.PublicKeyPEM), nil
	}
	if cfg.PublicKeyPath == "" {
		return nil, errors.New("jwt public key is required")
	}
	data, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read jwt public key: %w", err)
	}
	return data, nil
}

// Verify parses token and validates signature and registered claims.
func (v *Verifier) Verify(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.NewParser(v.options...).Parse(token, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HasScope reports whether the "scope" claim (space separated or a list)
// contains scope. An empty scope is always granted.
func HasScope(claims jwt.MapClaims, scope string) bool {
	if scope == "" {
		return true
	}
	switch s := claims["scope"].(type) {
	case string:
		for _, item := range strings.Fields(s) {
			if item == scope {
				return true
			}
		}
	case []any:
		for _, item := range s {
			if item == scope {
				return true
			}
		}
	}
	return false
}

func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	return claims, ok
}
