package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ticketing/userservice/internal/middleware"
	"github.com/ticketing/userservice/internal/service"
)

type AuthHandlers struct {
	userService  *service.UserService
	tokenService *service.TokenService
	jwtService   *service.JWTService
	logger       *logrus.Logger
}

func NewAuthHandlers(
	userService *service.UserService,
	tokenService *service.TokenService,
	jwtService *service.JWTService,
	logger *logrus.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
		logger:       logger,
	}
}

type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Name            string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type ReissueRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ReissueResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type MyInfoResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format")
		return
	}
	if req.Password == "" || strings.TrimSpace(req.Name) == "" {
		h.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Password and name are required")
		return
	}

	_, err := h.userService.SignUp(r.Context(), service.SignUpInput{
		Email:           email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Name:            strings.TrimSpace(req.Name),
	})
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		h.respondWithError(w, http.StatusBadRequest, "PASSWORD_MISMATCH", "Passwords do not match")
		return
	case errors.Is(err, service.ErrEmailTaken):
		h.respondWithError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already in use")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to sign up user")
		h.respondWithError(w, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to sign up")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, MessageResponse{
		Message: "Sign up completed",
	})
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	tokenPair, err := h.userService.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.respondWithError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password does not match")
		return
	case errors.Is(err, service.ErrStoreUnavailable):
		h.logger.WithError(err).Error("Token store unavailable during login")
		h.respondWithError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Please retry later")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to log in")
		h.respondWithError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate tokens")
		return
	}

	h.respondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandlers) Reissue(w http.ResponseWriter, r *http.Request) {
	var req ReissueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		h.respondWithError(w, http.StatusBadRequest, "MISSING_TOKEN", "Refresh token is required")
		return
	}

	accessToken, err := h.tokenService.Renew(r.Context(), req.RefreshToken)
	switch {
	case errors.Is(err, service.ErrInvalidRenewalToken):
		h.respondWithError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token")
		return
	case errors.Is(err, service.ErrRenewalMismatch):
		h.respondWithError(w, http.StatusUnauthorized, "TOKEN_MISMATCH", "Refresh token is no longer valid")
		return
	case errors.Is(err, service.ErrPrincipalNotFound):
		h.respondWithError(w, http.StatusUnauthorized, "USER_NOT_FOUND", "User not found")
		return
	case errors.Is(err, service.ErrStoreUnavailable):
		h.logger.WithError(err).Error("Token store unavailable during reissue")
		h.respondWithError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Please retry later")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to reissue access token")
		h.respondWithError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate tokens")
		return
	}

	h.respondWithJSON(w, http.StatusOK, ReissueResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwtService.AccessExpiry().Seconds()),
	})
}

func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := middleware.BearerToken(r)
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing access token")
		return
	}

	err := h.tokenService.Revoke(r.Context(), accessToken)
	switch {
	case errors.Is(err, service.ErrInvalidAccessToken):
		h.respondWithError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid access token")
		return
	case errors.Is(err, service.ErrStoreUnavailable):
		h.logger.WithError(err).Error("Token store unavailable during logout")
		h.respondWithError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Please retry later")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to log out")
		h.respondWithError(w, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to log out")
		return
	}

	h.respondWithJSON(w, http.StatusOK, MessageResponse{
		Message: "Logged out successfully",
	})
}

func (h *AuthHandlers) MyInfo(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.userService.MyInfo(r.Context(), principal.Email)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		h.respondWithError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to load user")
		h.respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
		return
	}

	h.respondWithJSON(w, http.StatusOK, MyInfoResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}

func (h *AuthHandlers) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *AuthHandlers) respondWithError(w http.ResponseWriter, status int, code, message string) {
	h.respondWithJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
