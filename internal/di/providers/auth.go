package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/auth"
	"github.com/shelfnotes/shelfnotes-server/internal/config"
	"github.com/shelfnotes/shelfnotes-server/internal/logger"
)

// AuthKey is the hex-encoded symmetric key used for access tokens.
type AuthKey string

// ProvideAuthKey loads or creates the token key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Auth.KeyPath)
	if err != nil {
		return "", err
	}

	log.Info("Auth key loaded", "path", cfg.Auth.KeyPath)

	return AuthKey(key), nil
}

// ProvideTokenService provides the access token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(key), cfg.Auth.TokenDuration)
}
