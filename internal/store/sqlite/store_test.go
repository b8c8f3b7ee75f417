package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser inserts a user with the given id and email.
func seedUser(t *testing.T, s *Store, id, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: email, PasswordHash: "hash", CreatedAt: time.Now()}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", id, err)
	}
	return u
}

// seedBook inserts a book with the given isbn and title.
func seedBook(t *testing.T, s *Store, isbn, title string) *domain.Book {
	t.Helper()
	b := &domain.Book{ISBN: isbn, Title: title, CreatedAt: time.Now()}
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook(%s): %v", isbn, err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "books", "reviews"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	seedBook(t, s, "9780441013593", "Dune")
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Schema is idempotent and data survives.
	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()

	n, err := s2.CountBooks(context.Background())
	if err != nil {
		t.Fatalf("CountBooks: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 book after reopen, got %d", n)
	}
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 5, 100_000_000, time.UTC)
	later := base.Add(20 * time.Millisecond)

	if !(formatTime(base) < formatTime(later)) {
		t.Errorf("expected %s < %s", formatTime(base), formatTime(later))
	}

	parsed, err := parseTime(formatTime(later))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !parsed.Equal(later) {
		t.Errorf("round trip: got %v, want %v", parsed, later)
	}
}
