// Package store defines the persistence contracts for the catalog.
package store

import (
	"context"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
)

// Users persists accounts. Email uniqueness is case-insensitive.
type Users interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Books persists catalog entries.
type Books interface {
	// CreateBook inserts a book, returning ErrAlreadyExists when the ISBN is taken.
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, isbn string) (*domain.Book, error)
	BookExists(ctx context.Context, isbn string) (bool, error)
	ListBooksWithRatings(ctx context.Context) ([]*domain.BookWithRating, error)
	GetBooksWithRatings(ctx context.Context, isbns []string) ([]*domain.BookWithRating, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
}

// Reviews persists reviews under the one-per-(user, book) rule.
type Reviews interface {
	// UpsertReview atomically inserts the review or replaces the caller's existing one.
	// It reports whether a new row was created.
	UpsertReview(ctx context.Context, review *domain.Review) (created bool, err error)
	GetUserReview(ctx context.Context, userID, isbn string) (*domain.Review, error)
	ListPublicReviewsForBook(ctx context.Context, isbn string) ([]*domain.AuthoredReview, error)
	GetBookAggregate(ctx context.Context, isbn string) (domain.Aggregate, error)
	ListLatestPublicReviews(ctx context.Context, limit int) ([]*domain.FeedReview, error)
	ListUserReviews(ctx context.Context, userID string, isPublic bool) ([]*domain.UserBookReview, error)
}

// Store is the full persistence surface.
type Store interface {
	Users
	Books
	Reviews
	Ping(ctx context.Context) error
	Close() error
}

// SearchIndexer keeps the catalog search index in step with book inserts.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
}

// NoopSearchIndexer discards index updates.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
