package domain

import "time"

// Book is a catalog entry keyed by ISBN. Books are written once and never modified.
type Book struct {
	ISBN        string    `json:"isbn"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	PublishYear *int      `json:"year,omitempty"`
	PageCount   *int      `json:"pages,omitempty"`
	CoverID     *int64    `json:"coverid,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Aggregate is the rating summary over a book's public reviews.
type Aggregate struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// BookWithRating pairs a book with its current public aggregate.
type BookWithRating struct {
	Book
	Aggregate
}
