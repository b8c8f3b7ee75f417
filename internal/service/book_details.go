package service

import (
	"context"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
)

// BookDetailsService assembles a book page for a viewer.
type BookDetailsService struct {
	catalog *CatalogService
	reviews *ReviewService
}

// NewBookDetailsService creates a book details service.
func NewBookDetailsService(catalog *CatalogService, reviews *ReviewService) *BookDetailsService {
	return &BookDetailsService{catalog: catalog, reviews: reviews}
}

// Get returns the book with its public reviews and aggregate. Authenticated viewers also get
// their own review in UserReview, and it is left out of Reviews. The aggregate is not adjusted.
func (s *BookDetailsService) Get(ctx context.Context, isbn string, viewer domain.Viewer) (*domain.BookDetails, error) {
	book, ok, err := s.catalog.GetBook(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainerrors.NotFound("book not found")
	}

	public, err := s.reviews.PublicReviewsForBook(ctx, book.ISBN)
	if err != nil {
		return nil, err
	}

	agg, err := s.reviews.AggregateForBook(ctx, book.ISBN)
	if err != nil {
		return nil, err
	}

	details := &domain.BookDetails{
		Book:      *book,
		Reviews:   public,
		Aggregate: agg,
	}

	userID, authenticated := viewer.UserID()
	if !authenticated {
		return details, nil
	}

	own, found, err := s.reviews.ReviewForUser(ctx, userID, book.ISBN)
	if err != nil {
		return nil, err
	}
	if !found {
		return details, nil
	}

	details.UserReview = own
	community := make([]*domain.AuthoredReview, 0, len(public))
	for _, r := range public {
		if r.ID != own.ID {
			community = append(community, r)
		}
	}
	details.Reviews = community

	return details, nil
}
