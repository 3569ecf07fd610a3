package middleware

import (
	"context"

	"github.com/ticketing/userservice/internal/models"
)

type principalContextKey struct{}

func withPrincipal(ctx context.Context, principal *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext returns the identity established by the
// authentication middleware for the current request.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*models.Principal)
	return principal, ok && principal != nil
}
