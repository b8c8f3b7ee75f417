package domain

import "time"

// Visibility selects one partition of a user's reviews.
type Visibility string

const (
	// VisibilityPublic selects reviews shown to everyone and counted in aggregates.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate selects reviews visible only to their author.
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility converts a query value into a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), true
	default:
		return "", false
	}
}

// IsPublic reports whether the partition is the public one.
func (v Visibility) IsPublic() bool {
	return v == VisibilityPublic
}

// Review is a user's single rating and write-up of a book.
// A user has at most one review per book; resubmitting replaces it.
type Review struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	BookISBN     string    `json:"book_isbn"`
	Rating       int       `json:"rating"`
	Text         string    `json:"text"`
	IsPublic     bool      `json:"is_public"`
	LastModified time.Time `json:"last_modified"`
}

// AuthoredReview is a public review shown with its author's email.
type AuthoredReview struct {
	Review
	ReviewerEmail string `json:"reviewer_email"`
}

// FeedReview is a public review joined with its book and author for the landing feed.
type FeedReview struct {
	Review
	BookTitle     string `json:"book_title"`
	BookCoverID   *int64 `json:"book_coverid,omitempty"`
	ReviewerEmail string `json:"reviewer_email"`
}

// UserBookReview is one of the caller's own reviews joined with its book.
type UserBookReview struct {
	Review
	BookTitle   string `json:"book_title"`
	BookCoverID *int64 `json:"book_coverid,omitempty"`
}

// RatingBounds is the inclusive range accepted for Review.Rating.
type RatingBounds struct {
	Min int
	Max int
}

// DefaultRatingBounds is the 1 to 5 star scale.
var DefaultRatingBounds = RatingBounds{Min: 1, Max: 5}

// Contains reports whether rating falls within the bounds.
func (b RatingBounds) Contains(rating int) bool {
	return rating >= b.Min && rating <= b.Max
}
