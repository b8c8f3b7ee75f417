package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register new user",
		Description:   "Creates an account and returns an access token for it",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.authRateLimit},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "User login",
		Description: "Verifies credentials and returns an access token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleLogin)
}

// === DTOs ===

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Email    string `json:"email" maxLength:"254" doc:"Account email"`
	Password string `json:"password" maxLength:"1024" doc:"Account password"`
}

// CredentialsInput wraps the credentials for Huma.
type CredentialsInput struct {
	Body CredentialsRequest
}

// UserResponse contains user information in auth responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"User email"`
	CreatedAt time.Time `json:"created_at" doc:"Registration timestamp"`
}

// AuthResponse contains an access token and the user it was issued for.
type AuthResponse struct {
	Token     string       `json:"token" doc:"PASETO access token"`
	TokenType string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresAt time.Time    `json:"expires_at" doc:"Token expiry"`
	User      UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *CredentialsInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *CredentialsInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		Token:     resp.Token,
		TokenType: "Bearer",
		ExpiresAt: resp.ExpiresAt,
		User: UserResponse{
			ID:        resp.User.ID,
			Email:     resp.User.Email,
			CreatedAt: resp.User.CreatedAt,
		},
	}
}
