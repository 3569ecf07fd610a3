package service

import "errors"

// Token verification failures.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrExpired        = errors.New("token expired")
	ErrTokenType      = errors.New("wrong token type")
)

// Token lifecycle failures.
var (
	ErrRevoked             = errors.New("token revoked")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRenewalToken = errors.New("invalid refresh token")
	ErrRenewalMismatch     = errors.New("refresh token does not match the stored one")
	ErrPrincipalNotFound   = errors.New("principal not found")
	ErrStoreUnavailable    = errors.New("token store unavailable")
)

// Account failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
)
