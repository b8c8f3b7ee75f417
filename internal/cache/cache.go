// Package cache provides a Badger-backed key/value cache with per-entry expiry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Cache stores JSON-encoded values that expire after a TTL.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens or creates a cache at path. An empty path keeps the cache in memory.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	if logger != nil {
		logger.Info("cache opened", "path", path, "in_memory", path == "")
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get decodes the entry for key into dest. It reports false when the key is absent or expired.
func (c *Cache) Get(_ context.Context, key string, dest any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for ttl. A non-positive ttl stores the entry without expiry.
func (c *Cache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Key builds a cache key from a namespace and free-form text. The text is Unicode
// normalized, case folded and whitespace collapsed so equivalent queries share an entry.
func Key(namespace, text string) string {
	normalized := norm.NFKC.String(text)
	normalized = cases.Fold().String(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")
	return namespace + ":" + normalized
}
