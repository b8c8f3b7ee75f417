package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/summary"
)

// BookSummary is a generated synopsis of a book's public reviews.
type BookSummary struct {
	ISBN        string
	Summary     string
	ReviewCount int
}

// SummaryService summarizes what readers say about a book.
type SummaryService struct {
	catalog    *CatalogService
	reviews    *ReviewService
	summarizer summary.Summarizer
	logger     *slog.Logger
}

// NewSummaryService creates a summary service.
func NewSummaryService(catalog *CatalogService, reviews *ReviewService, s summary.Summarizer, logger *slog.Logger) *SummaryService {
	if s == nil {
		s = summary.Disabled{}
	}
	return &SummaryService{catalog: catalog, reviews: reviews, summarizer: s, logger: logger}
}

// Summarize condenses the book's public reviews. With no public reviews the summary is empty
// and no model call is made.
func (s *SummaryService) Summarize(ctx context.Context, isbn string) (*BookSummary, error) {
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

	out := &BookSummary{ISBN: book.ISBN, ReviewCount: len(public)}
	if len(public) == 0 {
		return out, nil
	}

	texts := make([]string, 0, len(public))
	for _, r := range public {
		texts = append(texts, r.Text)
	}

	text, err := s.summarizer.Summarize(ctx, texts)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "review summary failed", "isbn", book.ISBN, "error", err)
		}
		return nil, domainerrors.UpstreamUnavailable("summary service is unavailable", err)
	}
	out.Summary = text
	return out, nil
}
