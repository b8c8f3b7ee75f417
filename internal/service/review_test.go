package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
)

// steppedClock returns a later instant on every call.
func steppedClock(start time.Time) func() time.Time {
	var n int
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func TestReviewService_Upsert_CreateThenReplace(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice@example.com")
	env.addBook(t, "111", "Dune")

	first, created, err := env.reviews.Upsert(ctx, user.ID, "111", ReviewInput{Rating: 3, Text: " ok ", IsPublic: true})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ok", first.Text)
	assert.True(t, strings.HasPrefix(first.ID, "rev-"))

	second, created, err := env.reviews.Upsert(ctx, user.ID, "111", ReviewInput{Rating: 5, Text: "loved it", IsPublic: false})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "the review keeps its identity across replacements")

	own, found, err := env.reviews.ReviewForUser(ctx, user.ID, "111")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, own.Rating)
	assert.Equal(t, "loved it", own.Text)
	assert.False(t, own.IsPublic)
	assert.False(t, own.LastModified.Before(first.LastModified))
}

func TestReviewService_Upsert_Validation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice@example.com")
	env.addBook(t, "111", "Dune")

	tests := []struct {
		name string
		in   ReviewInput
	}{
		{"rating below range", ReviewInput{Rating: 0, Text: "meh"}},
		{"rating above range", ReviewInput{Rating: 6, Text: "wow"}},
		{"empty text", ReviewInput{Rating: 4, Text: "   "}},
		{"oversized text", ReviewInput{Rating: 4, Text: strings.Repeat("a", maxReviewText+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.reviews.Upsert(ctx, user.ID, "111", tt.in)
			requireCode(t, err, domainerrors.CodeValidation)
		})
	}

	_, found, err := env.reviews.ReviewForUser(ctx, user.ID, "111")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReviewService_Upsert_CustomBounds(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice@example.com")
	env.addBook(t, "111", "Dune")

	tenPoint := NewReviewService(env.store, domain.RatingBounds{Min: 1, Max: 10}, nil, nil)
	_, _, err := tenPoint.Upsert(ctx, user.ID, "111", ReviewInput{Rating: 9, Text: "great"})
	require.NoError(t, err)
	assert.Equal(t, 10, tenPoint.RatingBounds().Max)
}

func TestReviewService_Upsert_UnknownBook(t *testing.T) {
	env := setupEnv(t)
	user := env.register(t, "alice@example.com")

	_, _, err := env.reviews.Upsert(context.Background(), user.ID, "missing", ReviewInput{Rating: 4, Text: "hm"})
	requireCode(t, err, domainerrors.CodeNotFound)
}

func TestReviewService_Upsert_DeletedAccount(t *testing.T) {
	env := setupEnv(t)
	env.addBook(t, "111", "Dune")

	_, _, err := env.reviews.Upsert(context.Background(), "usr-deleted", "111", ReviewInput{Rating: 4, Text: "hm"})
	requireCode(t, err, domainerrors.CodeUnauthorized)
}

func TestReviewService_Upsert_TextLimitCountsCharacters(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice@example.com")
	env.addBook(t, "111", "Dune")

	atLimit := strings.Repeat("é", maxReviewText)
	review, _, err := env.reviews.Upsert(ctx, user.ID, "111", ReviewInput{Rating: 4, Text: atLimit})
	require.NoError(t, err)
	assert.Equal(t, atLimit, review.Text)

	_, _, err = env.reviews.Upsert(ctx, user.ID, "111", ReviewInput{Rating: 4, Text: atLimit + "é"})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestReviewService_AggregateCountsOnlyPublic(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")
	env.addBook(t, "111", "Dune")

	_, _, err := env.reviews.Upsert(ctx, alice.ID, "111", ReviewInput{Rating: 4, Text: "good", IsPublic: true})
	require.NoError(t, err)
	_, _, err = env.reviews.Upsert(ctx, bob.ID, "111", ReviewInput{Rating: 1, Text: "secret", IsPublic: false})
	require.NoError(t, err)

	agg, err := env.reviews.AggregateForBook(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{AverageRating: 4, ReviewCount: 1}, agg)

	// Flipping visibility takes the review out of the aggregate.
	_, _, err = env.reviews.Upsert(ctx, alice.ID, "111", ReviewInput{Rating: 4, Text: "good", IsPublic: false})
	require.NoError(t, err)

	agg, err = env.reviews.AggregateForBook(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{}, agg)

	public, err := env.reviews.PublicReviewsForBook(ctx, "111")
	require.NoError(t, err)
	assert.Empty(t, public)
}

func TestReviewService_LatestPublicReviews(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.reviews.now = steppedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	alice := env.register(t, "alice@example.com")

	for i, isbn := range []string{"1", "2", "3"} {
		env.addBook(t, isbn, "Book "+isbn)
		_, _, err := env.reviews.Upsert(ctx, alice.ID, isbn, ReviewInput{Rating: 3, Text: "text", IsPublic: i != 1})
		require.NoError(t, err)
	}

	feed, err := env.reviews.LatestPublicReviews(ctx, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "3", feed[0].BookISBN)
	assert.Equal(t, "1", feed[1].BookISBN)
	assert.Equal(t, "alice@example.com", feed[0].ReviewerEmail)
	assert.Equal(t, "Book 3", feed[0].BookTitle)

	limited, err := env.reviews.LatestPublicReviews(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestReviewService_ReviewsForUser(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	env.addBook(t, "1", "Dune")
	env.addBook(t, "2", "Hyperion")

	_, _, err := env.reviews.Upsert(ctx, alice.ID, "1", ReviewInput{Rating: 5, Text: "public", IsPublic: true})
	require.NoError(t, err)
	_, _, err = env.reviews.Upsert(ctx, alice.ID, "2", ReviewInput{Rating: 2, Text: "private"})
	require.NoError(t, err)

	public, err := env.reviews.ReviewsForUser(ctx, alice.ID, domain.VisibilityPublic)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Dune", public[0].BookTitle)

	private, err := env.reviews.ReviewsForUser(ctx, alice.ID, domain.VisibilityPrivate)
	require.NoError(t, err)
	require.Len(t, private, 1)
	assert.Equal(t, "Hyperion", private[0].BookTitle)

	_, err = env.reviews.ReviewsForUser(ctx, alice.ID, domain.Visibility("all"))
	requireCode(t, err, domainerrors.CodeValidation)
}
