package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/cache"
	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
	"github.com/shelfnotes/shelfnotes-server/internal/metadata/openlibrary"
	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/search"
)

const (
	externalCacheNamespace = "openlibrary:search"
	defaultLocalLimit      = 20
	maxLocalLimit          = 100
)

// ExternalSearcher queries a bibliographic provider.
type ExternalSearcher interface {
	Search(ctx context.Context, query string) ([]openlibrary.Book, error)
}

// ResultCache stores external search results between requests.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CatalogIndex answers full-text queries over the local catalog.
type CatalogIndex interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// BookRatings loads books with aggregates by ISBN, preserving order.
type BookRatings interface {
	GetBooksWithRatings(ctx context.Context, isbns []string) ([]*domain.BookWithRating, error)
}

// SearchOptions configures a SearchService.
type SearchOptions struct {
	External ExternalSearcher
	Cache    ResultCache
	CacheTTL time.Duration
	Timeout  time.Duration
	Index    CatalogIndex
	Books    BookRatings
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// SearchService finds books in the external provider and in the local catalog.
// External searches never write to the catalog.
type SearchService struct {
	opts SearchOptions
}

// NewSearchService creates a search service. Cache and Index are optional.
func NewSearchService(opts SearchOptions) *SearchService {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &SearchService{opts: opts}
}

// External proxies a query to the bibliographic provider. Any provider failure, including a
// timeout, is reported as UPSTREAM_UNAVAILABLE.
func (s *SearchService) External(ctx context.Context, query string) ([]openlibrary.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.ValidationWithDetails("query is required", map[string]string{"query": "is required"})
	}

	key := cache.Key(externalCacheNamespace, query)
	if s.opts.Cache != nil {
		var cached []openlibrary.Book
		ok, err := s.opts.Cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			s.warn(ctx, "search cache read failed", "error", err)
		case ok:
			s.opts.Metrics.ExternalSearch("cached", 0)
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	books, err := s.opts.External.Search(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		s.opts.Metrics.ExternalSearch("error", elapsed)
		s.warn(ctx, "external search failed", "query", query, "duration", elapsed, "error", err)
		return nil, domainerrors.UpstreamUnavailable("book search is unavailable", err)
	}
	s.opts.Metrics.ExternalSearch("ok", elapsed)

	if books == nil {
		books = []openlibrary.Book{}
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(ctx, key, books, s.opts.CacheTTL); err != nil {
			s.warn(ctx, "search cache write failed", "error", err)
		}
	}
	return books, nil
}

// Local runs a full-text query over the local catalog and returns matching books with their
// public aggregates, best match first.
func (s *SearchService) Local(ctx context.Context, query string, limit int) ([]*domain.BookWithRating, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.ValidationWithDetails("q is required", map[string]string{"q": "is required"})
	}
	if s.opts.Index == nil {
		return nil, domainerrors.Internal("catalog search is not available")
	}
	if limit <= 0 {
		limit = defaultLocalLimit
	}
	limit = min(limit, maxLocalLimit)

	res, err := s.opts.Index.Search(ctx, search.Params{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	isbns := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		isbns = append(isbns, h.ISBN)
	}
	if len(isbns) == 0 {
		return []*domain.BookWithRating{}, nil
	}

	books, err := s.opts.Books.GetBooksWithRatings(ctx, isbns)
	if err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}
	return books, nil
}

func (s *SearchService) warn(ctx context.Context, msg string, args ...any) {
	if s.opts.Logger != nil {
		s.opts.Logger.WarnContext(ctx, msg, args...)
	}
}
