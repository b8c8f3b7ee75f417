package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/id"
	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/store"
)

const (
	// DefaultLatestLimit is the size of the public review feed.
	DefaultLatestLimit = 10
	maxLatestLimit     = 50
	maxReviewText      = 10000
)

// ReviewStore is the persistence the review service needs.
type ReviewStore interface {
	store.Reviews
	BookExists(ctx context.Context, isbn string) (bool, error)
}

// ReviewService owns reviews: the one-per-user-and-book upsert and the visibility-aware reads.
type ReviewService struct {
	store   ReviewStore
	bounds  domain.RatingBounds
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewReviewService creates a review service accepting ratings within bounds.
func NewReviewService(s ReviewStore, bounds domain.RatingBounds, m *metrics.Metrics, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:   s,
		bounds:  bounds,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ReviewInput holds the mutable fields of a review.
type ReviewInput struct {
	Rating   int
	Text     string
	IsPublic bool
}

// RatingBounds returns the accepted rating range.
func (s *ReviewService) RatingBounds() domain.RatingBounds {
	return s.bounds
}

// Upsert creates the user's review of the book or replaces every field of the existing one.
// It reports whether the review was created. Resubmitting never fails with a conflict.
func (s *ReviewService) Upsert(ctx context.Context, userID, isbn string, in ReviewInput) (*domain.Review, bool, error) {
	in.Text = strings.TrimSpace(in.Text)

	if !s.bounds.Contains(in.Rating) {
		msg := fmt.Sprintf("rating must be between %d and %d", s.bounds.Min, s.bounds.Max)
		return nil, false, domainerrors.ValidationWithDetails(msg, map[string]string{
			"rating": fmt.Sprintf("must be between %d and %d", s.bounds.Min, s.bounds.Max),
		})
	}
	if in.Text == "" {
		return nil, false, domainerrors.ValidationWithDetails("text is required", map[string]string{"text": "is required"})
	}
	if utf8.RuneCountInString(in.Text) > maxReviewText {
		return nil, false, domainerrors.ValidationWithDetails(
			fmt.Sprintf("text must not exceed %d characters", maxReviewText),
			map[string]string{"text": fmt.Sprintf("must not exceed %d characters", maxReviewText)},
		)
	}

	exists, err := s.store.BookExists(ctx, isbn)
	if err != nil {
		return nil, false, fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return nil, false, domainerrors.NotFound("book not found")
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, false, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		ID:           reviewID,
		UserID:       userID,
		BookISBN:     isbn,
		Rating:       in.Rating,
		Text:         in.Text,
		IsPublic:     in.IsPublic,
		LastModified: s.now().UTC(),
	}

	created, err := s.store.UpsertReview(ctx, review)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, false, domainerrors.NotFound("book not found")
		case errors.Is(err, store.ErrUnknownUser):
			return nil, false, domainerrors.Unauthorized("account no longer exists").WithCause(err)
		}
		return nil, false, fmt.Errorf("upsert review: %w", err)
	}

	s.metrics.ReviewUpserted(created)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "review saved",
			"review_id", review.ID,
			"isbn", isbn,
			"created", created,
			"public", review.IsPublic,
		)
	}

	return review, created, nil
}

// PublicReviewsForBook returns the book's public reviews, newest first.
func (s *ReviewService) PublicReviewsForBook(ctx context.Context, isbn string) ([]*domain.AuthoredReview, error) {
	reviews, err := s.store.ListPublicReviewsForBook(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("list public reviews: %w", err)
	}
	return reviews, nil
}

// ReviewForUser returns the user's own review of the book whatever its visibility.
func (s *ReviewService) ReviewForUser(ctx context.Context, userID, isbn string) (*domain.Review, bool, error) {
	review, err := s.store.GetUserReview(ctx, userID, isbn)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get user review: %w", err)
	}
	return review, true, nil
}

// AggregateForBook returns the mean and count of the book's public ratings, zero when there are none.
func (s *ReviewService) AggregateForBook(ctx context.Context, isbn string) (domain.Aggregate, error) {
	agg, err := s.store.GetBookAggregate(ctx, isbn)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("aggregate reviews: %w", err)
	}
	return agg, nil
}

// LatestPublicReviews returns the most recent public reviews across the catalog.
// A non-positive limit selects DefaultLatestLimit.
func (s *ReviewService) LatestPublicReviews(ctx context.Context, limit int) ([]*domain.FeedReview, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	limit = min(limit, maxLatestLimit)

	feed, err := s.store.ListLatestPublicReviews(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list latest reviews: %w", err)
	}
	return feed, nil
}

// ReviewsForUser returns one visibility partition of the user's reviews, newest first.
func (s *ReviewService) ReviewsForUser(ctx context.Context, userID string, visibility domain.Visibility) ([]*domain.UserBookReview, error) {
	if _, ok := domain.ParseVisibility(string(visibility)); !ok {
		return nil, domainerrors.ValidationWithDetails(
			"visibility must be one of: public private",
			map[string]string{"visibility": "must be one of: public private"},
		)
	}

	reviews, err := s.store.ListUserReviews(ctx, userID, visibility.IsPublic())
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, nil
}
