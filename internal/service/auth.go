package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/auth"
	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/id"
	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/store"
	"github.com/shelfnotes/shelfnotes-server/internal/validation"
)

// msgInvalidCredentials is shared by every login failure so callers cannot probe for accounts.
const msgInvalidCredentials = "invalid email or password"

// AuthService registers accounts, checks credentials and verifies bearer tokens.
type AuthService struct {
	users     store.Users
	tokens    *auth.TokenService
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// dummyHash is verified against when the email is unknown so both failure paths cost the same.
	dummyHash string
}

// NewAuthService creates an authentication service.
func NewAuthService(
	users store.Users,
	tokens *auth.TokenService,
	validator *validation.Validator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	dummy, err := auth.HashPassword("shelfnotes-timing-equalizer")
	if err != nil && logger != nil {
		logger.Warn("failed to prepare dummy password hash", "error", err)
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		validator: validator,
		metrics:   m,
		logger:    logger,
		dummyHash: dummy,
	}
}

// RegisterRequest contains the credentials for a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
}

// LoginRequest contains credentials to check.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=1024"`
}

// AuthResponse carries an access token and the account it was issued for.
type AuthResponse struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.UserRegistered()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	}

	return s.issue(user)
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.VerifyPassword(s.dummyHash, req.Password)
			return nil, domainerrors.InvalidCredentials(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		if s.logger != nil {
			s.logger.InfoContext(ctx, "login failed", "user_id", user.ID)
		}
		return nil, domainerrors.InvalidCredentials(msgInvalidCredentials)
	}

	return s.issue(user)
}

// VerifyAccessToken resolves a bearer token to an authenticated viewer.
func (s *AuthService) VerifyAccessToken(_ context.Context, token string) (domain.Viewer, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return domain.Anonymous(), domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}
	return domain.Authenticated(claims.UserID, claims.Email), nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokens.Duration()),
		User:      user,
	}, nil
}
