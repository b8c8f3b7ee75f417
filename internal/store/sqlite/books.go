package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	"github.com/shelfnotes/shelfnotes-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `b.isbn, b.title, b.author, b.publish_year, b.page_count, b.cover_id, b.created_at`

// bookWithRatingSelect joins each book to its public reviews only.
const bookWithRatingSelect = `
	SELECT ` + bookColumns + `,
		COALESCE(AVG(r.rating), 0.0) AS average_rating,
		COUNT(r.id) AS review_count
	FROM books b
	LEFT JOIN reviews r ON r.book_isbn = b.isbn AND r.is_public = 1`

func scanBook(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Book, error) {
	var (
		b         domain.Book
		author    sql.NullString
		year      sql.NullInt64
		pages     sql.NullInt64
		coverID   sql.NullInt64
		createdAt string
	)

	dest := append([]any{&b.ISBN, &b.Title, &author, &year, &pages, &coverID, &createdAt}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	b.Author = author.String
	b.PublishYear = intPtrFromNull(year)
	b.PageCount = intPtrFromNull(pages)
	b.CoverID = int64PtrFromNull(coverID)

	var err error
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookWithRating(scanner interface{ Scan(dest ...any) error }) (*domain.BookWithRating, error) {
	var agg domain.Aggregate
	b, err := scanBook(scanner, &agg.AverageRating, &agg.ReviewCount)
	if err != nil {
		return nil, err
	}
	return &domain.BookWithRating{Book: *b, Aggregate: agg}, nil
}

// CreateBook inserts a book.
// Returns store.ErrAlreadyExists if the ISBN is already cataloged.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (isbn, title, author, publish_year, page_count, cover_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.ISBN,
		book.Title,
		nullString(book.Author),
		nullIntPtr(book.PublishYear),
		nullIntPtr(book.PageCount),
		nullInt64Ptr(book.CoverID),
		formatTime(book.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("book already exists")
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ISBN.
func (s *Store) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.isbn = ?`, isbn)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BookExists reports whether a book with the ISBN is cataloged.
func (s *Store) BookExists(ctx context.Context, isbn string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM books WHERE isbn = ?`, isbn).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListBooks returns every book ordered by ISBN.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books b ORDER BY b.isbn`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CountBooks returns the number of cataloged books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

// ListBooksWithRatings returns every book with its public aggregate, ordered by title.
func (s *Store) ListBooksWithRatings(ctx context.Context) ([]*domain.BookWithRating, error) {
	rows, err := s.db.QueryContext(ctx, bookWithRatingSelect+`
		GROUP BY b.isbn
		ORDER BY b.title ASC, b.isbn ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.BookWithRating{}
	for rows.Next() {
		b, err := scanBookWithRating(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// GetBooksWithRatings returns the requested books with aggregates, in the order of isbns.
// Unknown ISBNs are skipped.
func (s *Store) GetBooksWithRatings(ctx context.Context, isbns []string) ([]*domain.BookWithRating, error) {
	if len(isbns) == 0 {
		return []*domain.BookWithRating{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(isbns)), ",")
	args := make([]any, len(isbns))
	for i, isbn := range isbns {
		args[i] = isbn
	}

	rows, err := s.db.QueryContext(ctx, bookWithRatingSelect+`
		WHERE b.isbn IN (`+placeholders+`)
		GROUP BY b.isbn`, args...)
	if err != nil {
		return nil, fmt.Errorf("query books by isbn: %w", err)
	}
	defer rows.Close()

	byISBN := make(map[string]*domain.BookWithRating, len(isbns))
	for rows.Next() {
		b, err := scanBookWithRating(rows)
		if err != nil {
			return nil, err
		}
		byISBN[b.ISBN] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*domain.BookWithRating, 0, len(byISBN))
	for _, isbn := range isbns {
		if b, ok := byISBN[isbn]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}
