package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("secret1")
	require.NoError(t, err)
	b, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordLength+1))
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-hash", "secret1"))
	assert.False(t, VerifyPassword("$bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA", "secret1"))
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	user := &domain.User{ID: "usr-1", Email: "alice@example.com"}
	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expiration, 5*time.Second)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateAccessToken(&domain.User{ID: "usr-1", Email: "a@example.com"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService(strings.Repeat("ab", 32), time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(&domain.User{ID: "usr-1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyAccessToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(strings.Repeat("zz", 32), time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(testKeyHex, 0)
	assert.Error(t, err)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyHexLength)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte("nope"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
