package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
)

// SearchIndex wraps a Bleve index of catalog books.
//
// All methods are safe for concurrent use; Rebuild takes an exclusive lock.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string
	Logger   *slog.Logger
}

// mappingVersion is bumped whenever buildIndexMapping changes so stale indexes get rebuilt.
const mappingVersion = "1"

// NewSearchIndex opens the index under DataPath, recreating it when it is missing, unreadable
// or built with an older mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(opts.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create search directory: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "catalog.bleve")
	versionPath := filepath.Join(opts.DataPath, "catalog.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		existing, readErr := os.ReadFile(versionPath) //#nosec G304 -- derived from data path
		switch {
		case readErr != nil || string(existing) != mappingVersion:
			logger.Info("search index mapping changed, rebuilding",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				index = nil
			}
		}
		if index == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if index == nil {
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o600); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened search index", "path", indexPath)
	}

	return &SearchIndex{index: index, path: indexPath, logger: logger}, nil
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces a book in the index.
func (s *SearchIndex) IndexBook(_ context.Context, book *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := NewBookDocument(book)
	return s.index.Index(doc.ISBN, doc.ToMap())
}

// IndexBooks indexes books in batches.
func (s *SearchIndex) IndexBooks(books []*domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(books); i += batchSize {
		end := min(i+batchSize, len(books))

		batch := s.index.NewBatch()
		for _, b := range books[i:end] {
			doc := NewBookDocument(b)
			if err := batch.Index(doc.ISBN, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ISBN, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the number of indexed books.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and creates an empty one with the current mapping.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}

// BookSource lists every catalog book.
type BookSource interface {
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
}

// Reconcile rebuilds the index from src when its document count differs from the catalog.
// It reports whether a rebuild happened.
func (s *SearchIndex) Reconcile(ctx context.Context, src BookSource) (bool, error) {
	want, err := src.CountBooks(ctx)
	if err != nil {
		return false, fmt.Errorf("count books: %w", err)
	}
	have, err := s.DocumentCount()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	if uint64(want) == have { //nolint:gosec // book count is never negative
		return false, nil
	}

	s.logger.Info("search index out of step with catalog, reindexing", "catalog", want, "indexed", have)

	books, err := src.ListBooks(ctx)
	if err != nil {
		return false, fmt.Errorf("list books: %w", err)
	}
	if err := s.Rebuild(); err != nil {
		return false, err
	}
	if err := s.IndexBooks(books); err != nil {
		return false, err
	}
	return true, nil
}
