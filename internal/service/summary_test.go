package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
)

type fakeSummarizer struct {
	got  []string
	text string
	err  error
}

func (f *fakeSummarizer) Summarize(_ context.Context, reviews []string) (string, error) {
	f.got = reviews
	return f.text, f.err
}

func TestSummaryService_Summarize(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")
	env.addBook(t, "111", "Dune")

	fake := &fakeSummarizer{text: "Readers admire the worldbuilding."}
	svc := NewSummaryService(env.catalog, env.reviews, fake, nil)

	empty, err := svc.Summarize(ctx, "111")
	require.NoError(t, err)
	assert.Empty(t, empty.Summary)
	assert.Zero(t, empty.ReviewCount)
	assert.Nil(t, fake.got, "no model call without reviews")

	_, _, err = env.reviews.Upsert(ctx, alice.ID, "111", ReviewInput{Rating: 5, Text: "epic", IsPublic: true})
	require.NoError(t, err)
	_, _, err = env.reviews.Upsert(ctx, bob.ID, "111", ReviewInput{Rating: 1, Text: "hidden", IsPublic: false})
	require.NoError(t, err)

	out, err := svc.Summarize(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "Readers admire the worldbuilding.", out.Summary)
	assert.Equal(t, 1, out.ReviewCount)
	assert.Equal(t, []string{"epic"}, fake.got, "private reviews are never sent")
}

func TestSummaryService_Errors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")
	env.addBook(t, "111", "Dune")
	_, _, err := env.reviews.Upsert(ctx, alice.ID, "111", ReviewInput{Rating: 5, Text: "epic", IsPublic: true})
	require.NoError(t, err)

	failing := NewSummaryService(env.catalog, env.reviews, &fakeSummarizer{err: errors.New("quota")}, nil)
	_, err = failing.Summarize(ctx, "111")
	requireCode(t, err, domainerrors.CodeUpstreamUnavailable)

	_, err = failing.Summarize(ctx, "missing")
	requireCode(t, err, domainerrors.CodeNotFound)

	disabled := NewSummaryService(env.catalog, env.reviews, nil, nil)
	_, err = disabled.Summarize(ctx, "111")
	requireCode(t, err, domainerrors.CodeUpstreamUnavailable)
}
