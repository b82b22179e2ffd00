// Package auth guards the HTTP transports of the statute server.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sha1n/mcp-statute-server/internal/config"
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Health check paths served without credentials.
const (
	HealthPath = "/health"
	ReadyPath  = "/ready"
)

const realm = `Basic realm="statute-mcp"`

var publicPaths = map[string]bool{
	HealthPath: true,
	ReadyPath:  true,
}

// NewMiddleware returns the middleware for the configured auth type.
func NewMiddleware(settings config.AuthSettings) (Middleware, error) {
	return NewMiddlewareWithLogger(settings, slog.Default())
}

// NewMiddlewareWithLogger is NewMiddleware with an explicit logger for rejected requests.
func NewMiddlewareWithLogger(settings config.AuthSettings, logger *slog.Logger) (Middleware, error) {
	var check func(*http.Request) bool
	var challenge string

	switch settings.Type {
	case config.AuthTypeNone, "":
		return func(next http.Handler) http.Handler { return next }, nil
	case config.AuthTypeBasic:
		if settings.Basic.Username == "" || settings.Basic.Password == "" {
			return nil, fmt.Errorf("basic auth requires non-empty username and password")
		}
		check = basicCredentials(settings.Basic)
		challenge = realm
	case config.AuthTypeAPIKey:
		if len(settings.APIKeys) == 0 {
			return nil, fmt.Errorf("apikey auth requires at least one API key")
		}
		check = apiKeyCredentials(settings.APIKeys)
	default:
		return nil, fmt.Errorf("unknown auth type: %s", settings.Type)
	}

	return guard(settings.Type, check, challenge, logger), nil
}

// guard rejects requests failing check, except on public health check paths.
func guard(authType string, check func(*http.Request) bool, challenge string, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || check(r) {
				next.ServeHTTP(w, r)
				return
			}
			logger.WarnContext(r.Context(), "Rejected unauthenticated request",
				"auth", authType, "path", r.URL.Path, "remote", r.RemoteAddr)
			if challenge != "" {
				w.Header().Set("WWW-Authenticate", challenge)
			}
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func basicCredentials(settings config.BasicAuthSettings) func(*http.Request) bool {
	return func(r *http.Request) bool {
		user, pass, ok := r.BasicAuth()
		// both compares always run
		userOK := equal(user, settings.Username)
		passOK := equal(pass, settings.Password)
		return ok && userOK && passOK
	}
}

// presentedKey reads the key from X-API-Key or an Authorization bearer token.
func presentedKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func apiKeyCredentials(keys []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		key := presentedKey(r)
		if key == "" {
			return false
		}
		valid := false
		for _, k := range keys {
			if equal(key, k) {
				valid = true
			}
		}
		return valid
	}
}
