package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/ticketing/userservice/internal/models"
)

const (
	refreshTokenKeyPrefix = "RT:"
	logoutMarker          = "logout"
)

// PrincipalLookup resolves an email to its stored user, returning nil, nil
// when no user has that email.
type PrincipalLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenService owns the token lifecycle: issuing pairs, reissuing access
// tokens, logout and per-request authentication. All session state lives in
// the TokenStore.
type TokenService struct {
	jwtService *JWTService
	store      TokenStore
	users      PrincipalLookup
	logger     *logrus.Logger
}

func NewTokenService(jwtService *JWTService, store TokenStore, users PrincipalLookup, logger *logrus.Logger) *TokenService {
	return &TokenService{
		jwtService: jwtService,
		store:      store,
		users:      users,
		logger:     logger,
	}
}

func refreshTokenKey(email string) string {
	return refreshTokenKeyPrefix + email
}

// Issue mints an access/refresh pair and registers the refresh token as the
// only live one for the email, replacing any earlier session's.
func (s *TokenService) Issue(ctx context.Context, principal models.Principal) (*models.TokenPair, error) {
	accessToken, _, err := s.jwtService.SignAccessToken(principal)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshClaims, err := s.jwtService.SignRefreshToken(principal.Email)
	if err != nil {
		return nil, err
	}

	ttl := s.jwtService.RemainingLifetime(refreshClaims)
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token expired at issue time")
	}

	if err := s.store.Set(ctx, refreshTokenKey(principal.Email), refreshToken, ttl); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": principal.UserID,
		"role":    principal.Role,
	}).Info("Issued token pair")

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtService.AccessExpiry().Seconds()),
	}, nil
}

// Renew returns a fresh access token for a refresh token that is still the
// registered one for its subject. The refresh token itself is not rotated.
func (s *TokenService) Renew(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.Verify(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRenewalToken, err)
	}

	stored, found, err := s.store.Get(ctx, refreshTokenKey(claims.Subject))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !found || subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return "", ErrRenewalMismatch
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return "", fmt.Errorf("failed to look up principal: %w", err)
	}
	if user == nil {
		return "", ErrPrincipalNotFound
	}

	accessToken, _, err := s.jwtService.SignAccessToken(user.Principal())
	if err != nil {
		return "", err
	}

	return accessToken, nil
}

// Revoke logs out the session behind accessToken: the subject's refresh
// token is dropped and the access token is denylisted for exactly its
// remaining lifetime.
func (s *TokenService) Revoke(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.Verify(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}
	if !claims.IsAccess() {
		return fmt.Errorf("%w: %w", ErrInvalidAccessToken, ErrTokenType)
	}

	if err := s.store.Delete(ctx, refreshTokenKey(claims.Subject)); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	remaining := s.jwtService.RemainingLifetime(claims)
	if remaining <= 0 {
		return nil
	}

	if err := s.store.Set(ctx, accessToken, logoutMarker, remaining); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.logger.WithField("user_id", claims.UserID).Info("Revoked access token")
	return nil
}

// Authenticate resolves the principal of a valid, unrevoked access token.
// Signature and expiry are checked before the denylist so forged tokens never
// cost a store round trip.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (*models.Principal, error) {
	claims, err := s.jwtService.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsAccess() {
		return nil, ErrTokenType
	}

	revoked, err := s.store.Exists(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	return claims.Principal(), nil
}
