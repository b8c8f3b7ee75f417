package auth

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	"github.com/shelfnotes/shelfnotes-server/internal/id"
)

const (
	tokenIssuer   = "shelfnotes-server"
	tokenAudience = "shelfnotes-client"
)

// ErrInvalidToken is returned for tokens that fail decryption, rule checks or claim parsing.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 64-character hex key.
func NewTokenService(keyHex string, duration time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("token key must be %d hex characters, got %d", keyHexLength, len(keyHex))
	}
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex token key: %w", err)
	}
	key, err := paseto.V4SymmetricKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}
	if duration <= 0 {
		return nil, errors.New("token duration must be positive")
	}

	return &TokenService{key: key, duration: duration, now: time.Now}, nil
}

// Duration returns the lifetime of issued tokens.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// GenerateAccessToken issues an encrypted token carrying the user's id and email.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))

	jti, err := id.Generate("tok")
	if err != nil {
		return "", err
	}
	token.SetJti(jti)

	//nolint:errcheck // Set only fails for values that cannot be marshalled
	_ = token.Set("id", user.ID)
	//nolint:errcheck // Set only fails for values that cannot be marshalled
	_ = token.Set("email", user.Email)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyAccessToken decrypts the token and checks issuer, audience and expiry.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %w", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &claims, nil
}
