package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ticketing/userservice/internal/config"
	"github.com/ticketing/userservice/internal/models"
)

// JWTService signs and verifies HS256 tokens. It holds no mutable state
// besides the clock, which only tests replace.
type JWTService struct {
	secretKey     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	parser        *jwt.Parser
	now           func() time.Time
	logger        *logrus.Logger
}

func NewJWTService(cfg *config.JWTConfig, logger *logrus.Logger) (*JWTService, error) {
	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key must be at least 32 bytes")
	}
	if cfg.AccessExpiry <= 0 || cfg.RefreshExpiry <= 0 {
		return nil, fmt.Errorf("token expiry must be positive")
	}

	s := &JWTService{
		secretKey:     secretKey,
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
		now:           time.Now,
		logger:        logger,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)

	return s, nil
}

// Claims is the payload of both token kinds. Refresh tokens carry only the
// registered claims; Role and UserID are set on access tokens.
type Claims struct {
	Role   models.Role `json:"role,omitempty"`
	UserID int64       `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// IsAccess reports whether the claims belong to an access token.
func (c *Claims) IsAccess() bool {
	return c.Role != ""
}

func (c *Claims) Principal() *models.Principal {
	return &models.Principal{
		UserID: c.UserID,
		Email:  c.Subject,
		Role:   c.Role,
	}
}

func (s *JWTService) AccessExpiry() time.Duration {
	return s.accessExpiry
}

func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// Sign stamps iat, exp and jti onto a copy of claims and returns the signed
// compact token together with the stamped claims. iat is truncated to whole
// seconds so that exp = iat + ttl holds on the wire.
func (s *JWTService) Sign(claims Claims, ttl time.Duration) (string, *Claims, error) {
	if ttl <= 0 {
		return "", nil, fmt.Errorf("token ttl must be positive")
	}

	issuedAt := s.now().Truncate(time.Second)
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(ttl))
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign token")
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, &claims, nil
}

func (s *JWTService) SignAccessToken(principal models.Principal) (string, *Claims, error) {
	return s.Sign(Claims{
		Role:   principal.Role,
		UserID: principal.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: principal.Email,
		},
	}, s.accessExpiry)
}

func (s *JWTService) SignRefreshToken(email string) (string, *Claims, error) {
	return s.Sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: email,
		},
	}, s.refreshExpiry)
}

// Verify checks structure, algorithm and signature before decoding any
// claims, then checks expiry. Failures wrap ErrMalformedToken,
// ErrBadSignature or ErrExpired.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	headerJSON, err := s.parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedToken, err)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedToken, err)
	}
	if header.Alg != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("%w: unexpected signing method %q", ErrBadSignature, header.Alg)
	}

	if _, err := s.parser.DecodeSegment(parts[1]); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrMalformedToken, err)
	}
	signature, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %w", ErrMalformedToken, err)
	}

	// HMAC comparison is constant time.
	signingString := parts[0] + "." + parts[1]
	if err := jwt.SigningMethodHS256.Verify(signingString, signature, s.secretKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
	}

	token, err := s.parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", ErrMalformedToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}

	return claims, nil
}

// RemainingLifetime is the time left until claims expire, negative once they have.
func (s *JWTService) RemainingLifetime(claims *Claims) time.Duration {
	return claims.ExpiresAt.Time.Sub(s.now())
}
