package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns every book in the catalog with its public rating, ordered by title",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookDetails",
		Method:      http.MethodGet,
		Path:        "/books/{isbn}",
		Summary:     "Get book details",
		Description: "Returns the book, its public reviews and rating. Authenticated callers also get their own review in userReview.",
		Tags:        []string{"Books"},
	}, s.handleGetBookDetails)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/books",
		Summary:     "Add book",
		Description: "Adds a book to the catalog. Returns 201 when added and 200 with the stored book when the ISBN already exists.",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleAddBook)
}

// === DTOs ===

// ListBooksOutput contains the catalog listing.
type ListBooksOutput struct {
	Body []RatedBookResponse
}

// GetBookDetailsInput identifies a book.
type GetBookDetailsInput struct {
	ISBN string `path:"isbn" maxLength:"32" doc:"Book ISBN"`
}

// BookDetailsResponse is a book page shaped for the caller.
type BookDetailsResponse struct {
	Details       BookResponse              `json:"details" doc:"The book"`
	Reviews       []CommunityReviewResponse `json:"reviews" doc:"Public reviews, newest first, excluding the caller's own"`
	AverageRating float64                   `json:"average_rating" doc:"Mean of all public ratings"`
	ReviewCount   int                       `json:"review_count" doc:"Number of public reviews"`
	UserReview    *ReviewResponse           `json:"userReview" doc:"The caller's own review, null when anonymous or not reviewed"`
}

// BookDetailsOutput wraps the book details for Huma.
type BookDetailsOutput struct {
	Body BookDetailsResponse
}

// AddBookRequest is the request body for adding a book.
type AddBookRequest struct {
	ISBN    string `json:"isbn" maxLength:"32" doc:"ISBN"`
	Title   string `json:"title" maxLength:"500" doc:"Title"`
	Author  string `json:"author,omitempty" maxLength:"500" doc:"Author names"`
	Year    *int   `json:"year,omitempty" doc:"First publication year"`
	Pages   *int   `json:"pages,omitempty" doc:"Page count"`
	CoverID *int64 `json:"coverid,omitempty" doc:"Open Library cover ID"`
}

// AddBookInput wraps the add-book request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// AddBookOutput carries the stored book and whether it was just created.
type AddBookOutput struct {
	Status int
	Body   BookResponse
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: mapRatedBooks(books)}, nil
}

func (s *Server) handleGetBookDetails(ctx context.Context, input *GetBookDetailsInput) (*BookDetailsOutput, error) {
	details, err := s.services.BookDetails.Get(ctx, input.ISBN, ViewerFrom(ctx))
	if err != nil {
		return nil, err
	}

	resp := BookDetailsResponse{
		Details:       mapBook(&details.Book),
		Reviews:       make([]CommunityReviewResponse, 0, len(details.Reviews)),
		AverageRating: details.Aggregate.AverageRating,
		ReviewCount:   details.Aggregate.ReviewCount,
	}
	for _, r := range details.Reviews {
		resp.Reviews = append(resp.Reviews, CommunityReviewResponse{
			ReviewResponse: mapReview(&r.Review),
			ReviewerEmail:  r.ReviewerEmail,
		})
	}
	if details.UserReview != nil {
		own := mapReview(details.UserReview)
		resp.UserReview = &own
	}

	return &BookDetailsOutput{Body: resp}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*AddBookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, created, err := s.services.Catalog.AddIfAbsent(ctx, service.BookInput{
		ISBN:    input.Body.ISBN,
		Title:   input.Body.Title,
		Author:  input.Body.Author,
		Year:    input.Body.Year,
		Pages:   input.Body.Pages,
		CoverID: input.Body.CoverID,
	})
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &AddBookOutput{Status: status, Body: mapBook(book)}, nil
}
