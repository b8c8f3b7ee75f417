package api

import (
	"time"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
)

// BookResponse is a catalog entry in API responses.
type BookResponse struct {
	ISBN      string    `json:"isbn" doc:"ISBN, the book's natural key"`
	Title     string    `json:"title" doc:"Title"`
	Author    string    `json:"author,omitempty" doc:"Author names, comma separated"`
	Year      *int      `json:"year,omitempty" doc:"First publication year"`
	Pages     *int      `json:"pages,omitempty" doc:"Page count"`
	CoverID   *int64    `json:"coverid,omitempty" doc:"Open Library cover ID"`
	CreatedAt time.Time `json:"created_at" doc:"When the book was added to the catalog"`
}

// RatedBookResponse is a book with its public rating aggregate.
type RatedBookResponse struct {
	BookResponse
	AverageRating float64 `json:"average_rating" doc:"Mean of public ratings, 0 when there are none"`
	ReviewCount   int     `json:"review_count" doc:"Number of public reviews"`
}

// ReviewResponse is a review in API responses.
type ReviewResponse struct {
	ID           string    `json:"id" doc:"Review ID"`
	UserID       string    `json:"user_id" doc:"Author's user ID"`
	BookISBN     string    `json:"book_isbn" doc:"Reviewed book"`
	Rating       int       `json:"rating" doc:"Rating"`
	Text         string    `json:"text" doc:"Review text"`
	IsPublic     bool      `json:"is_public" doc:"Whether the review is visible to everyone"`
	LastModified time.Time `json:"last_modified" doc:"Last write time"`
}

// CommunityReviewResponse is a public review with its author's email.
type CommunityReviewResponse struct {
	ReviewResponse
	ReviewerEmail string `json:"reviewer_email" doc:"Author's email"`
}

// FeedReviewResponse is a public review in the latest-reviews feed.
type FeedReviewResponse struct {
	ReviewResponse
	BookTitle     string `json:"book_title" doc:"Reviewed book title"`
	BookCoverID   *int64 `json:"book_coverid,omitempty" doc:"Reviewed book cover ID"`
	ReviewerEmail string `json:"reviewer_email" doc:"Author's email"`
}

// MyReviewResponse is one of the caller's reviews with its book.
type MyReviewResponse struct {
	ReviewResponse
	BookTitle   string `json:"book_title" doc:"Reviewed book title"`
	BookCoverID *int64 `json:"book_coverid,omitempty" doc:"Reviewed book cover ID"`
}

func mapBook(b *domain.Book) BookResponse {
	return BookResponse{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Year:      b.PublishYear,
		Pages:     b.PageCount,
		CoverID:   b.CoverID,
		CreatedAt: b.CreatedAt,
	}
}

func mapRatedBooks(books []*domain.BookWithRating) []RatedBookResponse {
	out := make([]RatedBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, RatedBookResponse{
			BookResponse:  mapBook(&b.Book),
			AverageRating: b.AverageRating,
			ReviewCount:   b.ReviewCount,
		})
	}
	return out
}

func mapReview(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		BookISBN:     r.BookISBN,
		Rating:       r.Rating,
		Text:         r.Text,
		IsPublic:     r.IsPublic,
		LastModified: r.LastModified,
	}
}
