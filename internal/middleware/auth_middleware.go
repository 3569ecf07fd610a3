package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ticketing/userservice/internal/models"
	"github.com/ticketing/userservice/internal/service"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Principal, error)
}

type AuthMiddleware struct {
	tokens Authenticator
	logger *logrus.Logger
}

func NewAuthMiddleware(tokens Authenticator, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate establishes the request principal from a bearer access token.
// It never writes a response: a missing or rejected token leaves the request
// unauthenticated and the route policy decides what happens next.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.tokens.Authenticate(r.Context(), token)
		if err != nil {
			entry := m.logger.WithError(err).WithField("path", r.URL.Path)
			if errors.Is(err, service.ErrStoreUnavailable) {
				entry.Warn("Token store unavailable during authentication")
			} else {
				entry.Debug("Token rejected")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// RequireAuth rejects requests for which no principal was established.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			m.respondUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Enforce applies the route policy table once per request.
func (m *AuthMiddleware) Enforce(policy *RoutePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		public := m.Authenticate(next)
		protected := m.Authenticate(m.RequireAuth(next))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch policy.Lookup(r.URL.Path) {
			case PolicyIgnored:
				next.ServeHTTP(w, r)
			case PolicyPublic:
				public.ServeHTTP(w, r)
			default:
				protected.ServeHTTP(w, r)
			}
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}

func (m *AuthMiddleware) respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}
