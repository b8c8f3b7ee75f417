package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	"github.com/shelfnotes/shelfnotes-server/internal/store"
)

func makeReview(id, userID, isbn string, rating int, public bool, at time.Time) *domain.Review {
	return &domain.Review{
		ID:           id,
		UserID:       userID,
		BookISBN:     isbn,
		Rating:       rating,
		Text:         fmt.Sprintf("rated %d", rating),
		IsPublic:     public,
		LastModified: at,
	}
}

func countReviews(t *testing.T, s *Store, userID, isbn string) int {
	t.Helper()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reviews WHERE user_id = ? AND book_isbn = ?`, userID, isbn).Scan(&n)
	if err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	return n
}

func TestUpsertReview_CreateThenReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "alice@example.com")
	seedBook(t, s, "123", "Dune")

	t0 := time.Now()
	first := makeReview("rev-1", "usr-1", "123", 5, true, t0)
	created, err := s.UpsertReview(ctx, first)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Error("first upsert should create")
	}

	second := makeReview("rev-2", "usr-1", "123", 3, false, t0.Add(time.Second))
	second.Text = "changed my mind"
	created, err = s.UpsertReview(ctx, second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Error("second upsert should update")
	}

	if second.ID != "rev-1" {
		t.Errorf("update must keep the original id, got %q", second.ID)
	}
	if second.Rating != 3 || second.Text != "changed my mind" || second.IsPublic {
		t.Errorf("fields not replaced: %+v", second)
	}
	if !second.LastModified.After(first.LastModified) {
		t.Errorf("last modified should advance: %v -> %v", first.LastModified, second.LastModified)
	}
	if n := countReviews(t, s, "usr-1", "123"); n != 1 {
		t.Errorf("expected exactly one row, got %d", n)
	}
}

func TestUpsertReview_LastModifiedNeverMovesBackwards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "alice@example.com")
	seedBook(t, s, "123", "Dune")

	t0 := time.Now()
	if _, err := s.UpsertReview(ctx, makeReview("rev-1", "usr-1", "123", 5, true, t0)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	stale := makeReview("rev-2", "usr-1", "123", 2, true, t0.Add(-time.Hour))
	if _, err := s.UpsertReview(ctx, stale); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if stale.LastModified.Before(t0) {
		t.Errorf("last modified went backwards: %v < %v", stale.LastModified, t0)
	}
	if stale.Rating != 2 {
		t.Errorf("rating should still be replaced, got %d", stale.Rating)
	}
}

func TestUpsertReview_MissingBook(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "usr-1", "alice@example.com")

	_, err := s.UpsertReview(context.Background(), makeReview("rev-1", "usr-1", "nope", 4, true, time.Now()))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n := countReviews(t, s, "usr-1", "nope"); n != 0 {
		t.Errorf("no review should be stored, got %d", n)
	}
}

func TestUpsertReview_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	seedBook(t, s, "123", "Dune")

	_, err := s.UpsertReview(context.Background(), makeReview("rev-1", "usr-gone", "123", 4, true, time.Now()))
	if !errors.Is(err, store.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Errorf("a missing user must not be reported as a missing book: %v", err)
	}
	if n := countReviews(t, s, "usr-gone", "123"); n != 0 {
		t.Errorf("no review should be stored, got %d", n)
	}
}

func TestUpsertReview_ConcurrentSameKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "alice@example.com")
	seedBook(t, s, "123", "Dune")

	const workers = 20
	var (
		wg      sync.WaitGroup
		creates atomic.Int32
		errs    atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := makeReview(fmt.Sprintf("rev-%d", i), "usr-1", "123", i%5+1, true, time.Now())
			created, err := s.UpsertReview(ctx, r)
			if err != nil {
				t.Logf("upsert %d: %v", i, err)
				errs.Add(1)
				return
			}
			if created {
				creates.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if errs.Load() != 0 {
		t.Fatalf("%d upserts failed", errs.Load())
	}
	if creates.Load() != 1 {
		t.Errorf("expected exactly one create, got %d", creates.Load())
	}
	if n := countReviews(t, s, "usr-1", "123"); n != 1 {
		t.Errorf("expected exactly one row, got %d", n)
	}
}

func TestGetBookAggregate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "a@example.com")
	seedUser(t, s, "usr-2", "b@example.com")
	seedBook(t, s, "123", "Dune")

	agg, err := s.GetBookAggregate(ctx, "123")
	if err != nil {
		t.Fatalf("GetBookAggregate: %v", err)
	}
	if agg != (domain.Aggregate{}) {
		t.Errorf("expected zero aggregate, got %+v", agg)
	}

	now := time.Now()
	if _, err := s.UpsertReview(ctx, makeReview("rev-1", "usr-1", "123", 5, true, now)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertReview(ctx, makeReview("rev-2", "usr-2", "123", 2, false, now)); err != nil {
		t.Fatal(err)
	}

	agg, err = s.GetBookAggregate(ctx, "123")
	if err != nil {
		t.Fatalf("GetBookAggregate: %v", err)
	}
	if agg.AverageRating != 5 || agg.ReviewCount != 1 {
		t.Errorf("expected (5, 1), got %+v", agg)
	}

	// Flipping the sole public review to private empties the aggregate.
	if _, err := s.UpsertReview(ctx, makeReview("rev-3", "usr-1", "123", 5, false, now.Add(time.Second))); err != nil {
		t.Fatal(err)
	}
	agg, err = s.GetBookAggregate(ctx, "123")
	if err != nil {
		t.Fatalf("GetBookAggregate: %v", err)
	}
	if agg != (domain.Aggregate{}) {
		t.Errorf("expected zero aggregate after flip, got %+v", agg)
	}
}

func TestListPublicReviewsForBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "a@example.com")
	seedUser(t, s, "usr-2", "b@example.com")
	seedUser(t, s, "usr-3", "c@example.com")
	seedBook(t, s, "123", "Dune")

	t0 := time.Now()
	for _, r := range []*domain.Review{
		makeReview("rev-1", "usr-1", "123", 5, true, t0),
		makeReview("rev-2", "usr-2", "123", 4, true, t0.Add(time.Minute)),
		makeReview("rev-3", "usr-3", "123", 1, false, t0.Add(2*time.Minute)),
	} {
		if _, err := s.UpsertReview(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	reviews, err := s.ListPublicReviewsForBook(ctx, "123")
	if err != nil {
		t.Fatalf("ListPublicReviewsForBook: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 public reviews, got %d", len(reviews))
	}
	if reviews[0].ID != "rev-2" || reviews[1].ID != "rev-1" {
		t.Errorf("expected newest first, got %s, %s", reviews[0].ID, reviews[1].ID)
	}
	if reviews[0].ReviewerEmail != "b@example.com" {
		t.Errorf("expected reviewer email, got %q", reviews[0].ReviewerEmail)
	}
}

func TestGetUserReview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "a@example.com")
	seedBook(t, s, "123", "Dune")

	if _, err := s.GetUserReview(ctx, "usr-1", "123"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := s.UpsertReview(ctx, makeReview("rev-1", "usr-1", "123", 2, false, time.Now())); err != nil {
		t.Fatal(err)
	}

	r, err := s.GetUserReview(ctx, "usr-1", "123")
	if err != nil {
		t.Fatalf("GetUserReview: %v", err)
	}
	if r.IsPublic || r.Rating != 2 {
		t.Errorf("unexpected review %+v", r)
	}
}

func TestListLatestPublicReviews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "alice@example.com")
	seedUser(t, s, "usr-2", "bob@example.com")
	seedBook(t, s, "1", "Dune")
	seedBook(t, s, "2", "Anathem")

	t0 := time.Now()
	for _, r := range []*domain.Review{
		makeReview("rev-1", "usr-1", "1", 5, true, t0),
		makeReview("rev-2", "usr-2", "1", 3, false, t0.Add(time.Minute)),
		makeReview("rev-3", "usr-2", "2", 4, true, t0.Add(2*time.Minute)),
		makeReview("rev-4", "usr-1", "2", 1, true, t0.Add(2*time.Minute)),
	} {
		if _, err := s.UpsertReview(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	feed, err := s.ListLatestPublicReviews(ctx, 10)
	if err != nil {
		t.Fatalf("ListLatestPublicReviews: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("expected 3 public reviews, got %d", len(feed))
	}
	// rev-3 and rev-4 share a timestamp; the later insert comes first.
	wantIDs := []string{"rev-4", "rev-3", "rev-1"}
	for i, item := range feed {
		if item.ID != wantIDs[i] {
			t.Errorf("position %d: got %s, want %s", i, item.ID, wantIDs[i])
		}
	}
	if feed[0].BookTitle != "Anathem" || feed[0].ReviewerEmail != "alice@example.com" {
		t.Errorf("join fields: got %q by %q", feed[0].BookTitle, feed[0].ReviewerEmail)
	}

	limited, err := s.ListLatestPublicReviews(ctx, 1)
	if err != nil {
		t.Fatalf("ListLatestPublicReviews: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}

func TestListUserReviews_ByPartition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "alice@example.com")
	seedUser(t, s, "usr-2", "bob@example.com")
	seedBook(t, s, "1", "Dune")
	seedBook(t, s, "2", "Anathem")

	t0 := time.Now()
	for _, r := range []*domain.Review{
		makeReview("rev-1", "usr-1", "1", 5, true, t0),
		makeReview("rev-2", "usr-1", "2", 3, false, t0.Add(time.Minute)),
		makeReview("rev-3", "usr-2", "2", 4, false, t0.Add(2*time.Minute)),
	} {
		if _, err := s.UpsertReview(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	public, err := s.ListUserReviews(ctx, "usr-1", true)
	if err != nil {
		t.Fatalf("ListUserReviews public: %v", err)
	}
	if len(public) != 1 || public[0].ID != "rev-1" || public[0].BookTitle != "Dune" {
		t.Errorf("unexpected public partition: %+v", public)
	}

	private, err := s.ListUserReviews(ctx, "usr-1", false)
	if err != nil {
		t.Fatalf("ListUserReviews private: %v", err)
	}
	if len(private) != 1 || private[0].ID != "rev-2" || private[0].BookTitle != "Anathem" {
		t.Errorf("unexpected private partition: %+v", private)
	}
}
