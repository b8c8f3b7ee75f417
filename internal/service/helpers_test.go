package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfnotes/shelfnotes-server/internal/auth"
	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/store/sqlite"
	"github.com/shelfnotes/shelfnotes-server/internal/validation"
)

// testEnv wires the services over a throwaway database.
type testEnv struct {
	store   *sqlite.Store
	tokens  *auth.TokenService
	auth    *AuthService
	catalog *CatalogService
	reviews *ReviewService
	details *BookDetailsService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	s, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	catalog := NewCatalogService(s, nil, v, nil, nil)
	reviews := NewReviewService(s, domain.DefaultRatingBounds, nil, nil)

	return &testEnv{
		store:   s,
		tokens:  tokens,
		auth:    NewAuthService(s, tokens, v, nil, nil),
		catalog: catalog,
		reviews: reviews,
		details: NewBookDetailsService(catalog, reviews),
	}
}

func (e *testEnv) register(t *testing.T, email string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return resp.User
}

func (e *testEnv) addBook(t *testing.T, isbn, title string) *domain.Book {
	t.Helper()
	book, _, err := e.catalog.AddIfAbsent(context.Background(), BookInput{ISBN: isbn, Title: title, Author: "Frank Herbert"})
	require.NoError(t, err)
	return book
}

func requireCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr), "expected domain error, got %v", err)
	require.Equal(t, code, domainErr.Code, "message: %s", domainErr.Message)
}
