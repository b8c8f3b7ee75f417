package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/store"
	"github.com/shelfnotes/shelfnotes-server/internal/validation"
)

// CatalogService owns the book catalog. It is the only writer of books.
type CatalogService struct {
	books     store.Books
	indexer   store.SearchIndexer
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCatalogService creates a catalog service. A nil indexer disables search indexing.
func NewCatalogService(
	books store.Books,
	indexer store.SearchIndexer,
	validator *validation.Validator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *CatalogService {
	if indexer == nil {
		indexer = store.NoopSearchIndexer{}
	}
	return &CatalogService{
		books:     books,
		indexer:   indexer,
		validator: validator,
		metrics:   m,
		logger:    logger,
	}
}

// BookInput is the data needed to add a book.
type BookInput struct {
	ISBN    string `json:"isbn" validate:"required,max=32"`
	Title   string `json:"title" validate:"required,max=500"`
	Author  string `json:"author,omitempty" validate:"max=500"`
	Year    *int   `json:"year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Pages   *int   `json:"pages,omitempty" validate:"omitempty,gte=1"`
	CoverID *int64 `json:"coverid,omitempty" validate:"omitempty,gte=0"`
}

// ListBooks returns every book with its public aggregate, ordered by title.
func (s *CatalogService) ListBooks(ctx context.Context) ([]*domain.BookWithRating, error) {
	books, err := s.books.ListBooksWithRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook looks a book up by ISBN. A missing book is reported through the bool, not an error.
func (s *CatalogService) GetBook(ctx context.Context, isbn string) (*domain.Book, bool, error) {
	book, err := s.books.GetBook(ctx, strings.TrimSpace(isbn))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get book: %w", err)
	}
	return book, true, nil
}

// AddIfAbsent returns the stored book for in.ISBN, inserting it first when it does not exist.
// The bool reports whether this call created the book. Concurrent adds of the same ISBN
// resolve to a single row.
func (s *CatalogService) AddIfAbsent(ctx context.Context, in BookInput) (*domain.Book, bool, error) {
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)

	if in.ISBN == "" {
		return nil, false, domainerrors.ValidationWithDetails("isbn is required", map[string]string{"isbn": "is required"})
	}

	if existing, ok, err := s.GetBook(ctx, in.ISBN); err != nil {
		return nil, false, err
	} else if ok {
		return existing, false, nil
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, false, err
	}

	book := &domain.Book{
		ISBN:        in.ISBN,
		Title:       in.Title,
		Author:      in.Author,
		PublishYear: in.Year,
		PageCount:   in.Pages,
		CoverID:     in.CoverID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.books.CreateBook(ctx, book); err != nil {
		if !errors.Is(err, store.ErrAlreadyExists) {
			return nil, false, fmt.Errorf("create book: %w", err)
		}
		// Lost the race to a concurrent add; the winner's row is the book.
		existing, getErr := s.books.GetBook(ctx, in.ISBN)
		if getErr != nil {
			return nil, false, fmt.Errorf("get book after conflict: %w", getErr)
		}
		return existing, false, nil
	}

	s.metrics.BookAdded()
	if err := s.indexer.IndexBook(ctx, book); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to index book", "isbn", book.ISBN, "error", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "book added", "isbn", book.ISBN, "title", book.Title)
	}

	return book, true, nil
}
