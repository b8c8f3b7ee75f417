package auth

import "time"

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`

	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
