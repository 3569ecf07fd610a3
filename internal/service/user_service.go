package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ticketing/userservice/internal/models"
	"github.com/ticketing/userservice/internal/repository"
)

type UserRepository interface {
	PrincipalLookup
	Create(ctx context.Context, user *models.User) error
}

type UserService struct {
	users  UserRepository
	hasher *PasswordHasher
	tokens *TokenService
	logger *logrus.Logger
}

func NewUserService(users UserRepository, hasher *PasswordHasher, tokens *TokenService, logger *logrus.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

type SignUpInput struct {
	Email           string
	Password        string
	PasswordConfirm string
	Name            string
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)

	if in.Password != in.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User signed up")
	return user, nil
}

// Login checks the password and issues a token pair. An unknown email and a
// wrong password fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.MatchesNothing(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.tokens.Issue(ctx, user.Principal())
}

func (s *UserService) MyInfo(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
