package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
)

func TestBookDetailsService_Get(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")
	env.addBook(t, "111", "Dune")

	_, _, err := env.reviews.Upsert(ctx, alice.ID, "111", ReviewInput{Rating: 4, Text: "good", IsPublic: true})
	require.NoError(t, err)
	_, _, err = env.reviews.Upsert(ctx, bob.ID, "111", ReviewInput{Rating: 2, Text: "slow", IsPublic: true})
	require.NoError(t, err)

	t.Run("anonymous viewer", func(t *testing.T) {
		details, err := env.details.Get(ctx, "111", domain.Anonymous())
		require.NoError(t, err)
		assert.Equal(t, "Dune", details.Book.Title)
		assert.Len(t, details.Reviews, 2)
		assert.Nil(t, details.UserReview)
		assert.Equal(t, domain.Aggregate{AverageRating: 3, ReviewCount: 2}, details.Aggregate)
	})

	t.Run("author sees own review separately", func(t *testing.T) {
		details, err := env.details.Get(ctx, "111", domain.Authenticated(alice.ID, alice.Email))
		require.NoError(t, err)
		require.NotNil(t, details.UserReview)
		assert.Equal(t, alice.ID, details.UserReview.UserID)
		require.Len(t, details.Reviews, 1)
		assert.Equal(t, "bob@example.com", details.Reviews[0].ReviewerEmail)
		assert.Equal(t, 2, details.Aggregate.ReviewCount, "aggregate still counts the viewer's public review")
	})

	t.Run("private review only visible to author", func(t *testing.T) {
		_, _, err := env.reviews.Upsert(ctx, bob.ID, "111", ReviewInput{Rating: 2, Text: "slow", IsPublic: false})
		require.NoError(t, err)

		details, err := env.details.Get(ctx, "111", domain.Authenticated(bob.ID, bob.Email))
		require.NoError(t, err)
		require.NotNil(t, details.UserReview)
		assert.False(t, details.UserReview.IsPublic)
		require.Len(t, details.Reviews, 1)
		assert.Equal(t, alice.ID, details.Reviews[0].UserID)

		anon, err := env.details.Get(ctx, "111", domain.Anonymous())
		require.NoError(t, err)
		assert.Len(t, anon.Reviews, 1)
		assert.Equal(t, 1, anon.Aggregate.ReviewCount)
	})
}

func TestBookDetailsService_Get_NotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.details.Get(context.Background(), "missing", domain.Anonymous())
	requireCode(t, err, domainerrors.CodeNotFound)
}
