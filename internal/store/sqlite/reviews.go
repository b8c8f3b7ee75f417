package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	"github.com/shelfnotes/shelfnotes-server/internal/store"
)

// reviewColumns must match the scan order in scanReview.
const reviewColumns = `r.id, r.user_id, r.book_isbn, r.rating, r.review_text, r.is_public, r.last_modified`

// recentFirst orders reviews newest first; seq breaks ties by insertion order.
const recentFirst = `ORDER BY r.last_modified DESC, r.seq DESC`

func scanReview(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Review, error) {
	var (
		r            domain.Review
		isPublic     int
		lastModified string
	)

	dest := append([]any{&r.ID, &r.UserID, &r.BookISBN, &r.Rating, &r.Text, &isPublic, &lastModified}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	r.IsPublic = isPublic != 0

	var err error
	r.LastModified, err = parseTime(lastModified)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertReview stores the review as the user's only review of the book.
//
// Inside a single transaction it attempts an insert; when the (user_id, book_isbn) key is
// already taken it updates that row instead, keeping its id. last_modified never moves
// backwards. On return review holds the stored state. The referenced book must exist;
// otherwise store.ErrNotFound is returned.
func (s *Store) UpsertReview(ctx context.Context, review *domain.Review) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	modified := formatTime(review.LastModified)
	created := true

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, book_isbn, rating, review_text, is_public, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		review.ID,
		review.UserID,
		review.BookISBN,
		review.Rating,
		review.Text,
		boolToInt(review.IsPublic),
		modified,
	)
	switch {
	case err == nil:
	case isForeignKeyViolation(err):
		return false, missingReviewParent(ctx, tx, review)
	case isUniqueViolation(err):
		created = false
		if err := updateReview(ctx, tx, review, modified); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("insert review: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews r
		WHERE r.user_id = ? AND r.book_isbn = ?`, review.UserID, review.BookISBN)
	stored, err := scanReview(row)
	if err != nil {
		return false, fmt.Errorf("read back review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit review: %w", err)
	}

	*review = *stored
	return created, nil
}

func updateReview(ctx context.Context, tx *sql.Tx, review *domain.Review, modified string) error {
	var previous string
	err := tx.QueryRowContext(ctx, `SELECT last_modified FROM reviews WHERE user_id = ? AND book_isbn = ?`,
		review.UserID, review.BookISBN).Scan(&previous)
	if err != nil {
		return fmt.Errorf("load existing review: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE reviews
		SET rating = ?, review_text = ?, is_public = ?, last_modified = ?
		WHERE user_id = ? AND book_isbn = ?`,
		review.Rating,
		review.Text,
		boolToInt(review.IsPublic),
		laterTime(modified, previous),
		review.UserID,
		review.BookISBN,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// GetUserReview returns the user's review of the book regardless of visibility.
func (s *Store) GetUserReview(ctx context.Context, userID, isbn string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews r
		WHERE r.user_id = ? AND r.book_isbn = ?`, userID, isbn)

	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("review not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListPublicReviewsForBook returns the book's public reviews with reviewer emails, newest first.
func (s *Store) ListPublicReviewsForBook(ctx context.Context, isbn string) ([]*domain.AuthoredReview, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reviewColumns+`, u.email
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_isbn = ? AND r.is_public = 1 `+recentFirst, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*domain.AuthoredReview{}
	for rows.Next() {
		var item domain.AuthoredReview
		r, err := scanReview(rows, &item.ReviewerEmail)
		if err != nil {
			return nil, err
		}
		item.Review = *r
		reviews = append(reviews, &item)
	}
	return reviews, rows.Err()
}

// GetBookAggregate returns the mean rating and count of the book's public reviews.
// A book without public reviews yields a zero aggregate.
func (s *Store) GetBookAggregate(ctx context.Context, isbn string) (domain.Aggregate, error) {
	var agg domain.Aggregate
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(rating), 0.0), COUNT(*)
		FROM reviews
		WHERE book_isbn = ? AND is_public = 1`, isbn).Scan(&agg.AverageRating, &agg.ReviewCount)
	if err != nil {
		return domain.Aggregate{}, err
	}
	return agg, nil
}

// ListLatestPublicReviews returns up to limit public reviews across all books, newest first,
// joined with book and reviewer details.
func (s *Store) ListLatestPublicReviews(ctx context.Context, limit int) ([]*domain.FeedReview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`, b.title, b.cover_id, u.email
		FROM reviews r
		JOIN books b ON b.isbn = r.book_isbn
		JOIN users u ON u.id = r.user_id
		WHERE r.is_public = 1
		`+recentFirst+`
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feed := []*domain.FeedReview{}
	for rows.Next() {
		var (
			item    domain.FeedReview
			coverID sql.NullInt64
		)
		r, err := scanReview(rows, &item.BookTitle, &coverID, &item.ReviewerEmail)
		if err != nil {
			return nil, err
		}
		item.Review = *r
		item.BookCoverID = int64PtrFromNull(coverID)
		feed = append(feed, &item)
	}
	return feed, rows.Err()
}

// ListUserReviews returns the user's reviews in one visibility partition, newest first,
// joined with book details.
func (s *Store) ListUserReviews(ctx context.Context, userID string, isPublic bool) ([]*domain.UserBookReview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`, b.title, b.cover_id
		FROM reviews r
		JOIN books b ON b.isbn = r.book_isbn
		WHERE r.user_id = ? AND r.is_public = ?
		`+recentFirst, userID, boolToInt(isPublic))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*domain.UserBookReview{}
	for rows.Next() {
		var (
			item    domain.UserBookReview
			coverID sql.NullInt64
		)
		r, err := scanReview(rows, &item.BookTitle, &coverID)
		if err != nil {
			return nil, err
		}
		item.Review = *r
		item.BookCoverID = int64PtrFromNull(coverID)
		reviews = append(reviews, &item)
	}
	return reviews, rows.Err()
}

// missingReviewParent reports which side of a review's foreign keys is absent.
func missingReviewParent(ctx context.Context, tx *sql.Tx, review *domain.Review) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM books WHERE isbn = ?`, review.BookISBN).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound.WithMessage("book not found")
	case err != nil:
		return fmt.Errorf("check review book: %w", err)
	}
	return store.ErrUnknownUser.WithMessage("user " + review.UserID + " does not exist")
}
