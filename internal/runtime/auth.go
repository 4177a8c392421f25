package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsdesk/config"
)

// Scopes understood by the API.
const (
	ScopeRead     = "runs:read"
	ScopeResearch = "runs:write"
)

// ErrNoJWTSecret means the API runs without authentication.
var ErrNoJWTSecret = errors.New("jwt secret not configured (server.jwt_secret)")

// LoadJWTSecret resolves the shared JWT secret from config.
func LoadJWTSecret(cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if s := strings.TrimSpace(cfg.Server.JWTSecret); s != "" {
		return []byte(s), nil
	}
	return nil, ErrNoJWTSecret
}

// SignJWT issues a signed token with the provided subject and TTL.
func SignJWT(subject string, secret []byte, ttl time.Duration, scopes ...string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	if len(scopes) > 0 {
		claims["scopes"] = scopes
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// EchoAuthMiddleware validates HS256 bearer tokens and stores the subject and
// scopes on the request.
func EchoAuthMiddleware(secret []byte) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := extractToken(c)
			if tok == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			claims := jwt.MapClaims{}
			parsed, err := parser.ParseWithClaims(tok, claims, keyFunc)
			if err != nil || !parsed.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}
			scopes := normaliseScopes(claims["scopes"])
			ctx := context.WithValue(c.Request().Context(), subjectKey{}, sub)
			ctx = context.WithValue(ctx, scopeKey{}, scopes)
			c.Set("subject", sub)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if h := c.Request().Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if ck, err := c.Cookie("auth"); err == nil {
		return ck.Value
	}
	return ""
}

type subjectKey struct{}

// SubjectFromContext returns the JWT subject if stored in context via middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok
}

type scopeKey struct{}

// ScopesFromContext returns scopes associated with the request context.
func ScopesFromContext(ctx context.Context) ([]string, bool) {
	scopes, ok := ctx.Value(scopeKey{}).([]string)
	return scopes, ok
}

// RequireScopes rejects callers whose token lacks any of required. Requests
// that were not authenticated at all pass through, so the API stays open when
// no secret is configured.
func RequireScopes(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have, authed := ScopesFromContext(c.Request().Context())
			if !authed {
				return next(c)
			}
			for _, scope := range required {
				if !containsScope(have, scope) {
					return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("missing scope: %s", scope))
				}
			}
			return next(c)
		}
	}
}

func normaliseScopes(raw interface{}) []string {
	var items []string
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Fields(v)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsScope(scopes []string, target string) bool {
	for _, scope := range scopes {
		if scope == target || scope == "*" {
			return true
		}
	}
	return false
}
