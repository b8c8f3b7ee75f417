// Package auth handles password hashing and bearer token issue and verification.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	keyLength    = 32
	keyHexLength = 64
)

// LoadOrGenerateKey returns the hex-encoded token key stored in <dir>/auth.key,
// generating and saving a fresh one when the file does not exist.
func LoadOrGenerateKey(dir string) (string, error) {
	keyPath := filepath.Join(dir, "auth.key")

	//#nosec G304 -- path is derived from the configured data directory
	if b, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(b))
		if len(keyHex) != keyHexLength {
			return "", fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}
		if _, err := hex.DecodeString(keyHex); err != nil {
			return "", fmt.Errorf("invalid auth key: %w", err)
		}
		return keyHex, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate auth key: %w", err)
	}
	keyHex := hex.EncodeToString(key)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return "", fmt.Errorf("save auth key: %w", err)
	}
	return keyHex, nil
}
