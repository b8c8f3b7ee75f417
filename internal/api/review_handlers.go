package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	"github.com/shelfnotes/shelfnotes-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "upsertReview",
		Method:        http.MethodPost,
		Path:          "/books/{isbn}/reviews",
		Summary:       "Submit review",
		Description:   "Creates the caller's review of the book, or replaces it if one exists",
		Tags:          []string{"Reviews"},
		Security:      bearerAuth,
		Middlewares:   huma.Middlewares{s.requireAuth},
		DefaultStatus: http.StatusCreated,
	}, s.handleUpsertReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "latestReviews",
		Method:      http.MethodGet,
		Path:        "/reviews/latest",
		Summary:     "Latest public reviews",
		Description: "Returns the most recent public reviews across all books",
		Tags:        []string{"Reviews"},
	}, s.handleLatestReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "myReviews",
		Method:      http.MethodGet,
		Path:        "/me/reviews",
		Summary:     "List my reviews",
		Description: "Returns the caller's public or private reviews, newest first",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleMyReviews)
}

// === DTOs ===

// UpsertReviewRequest is the request body for submitting a review.
type UpsertReviewRequest struct {
	Rating   int    `json:"rating" doc:"Rating within the configured bounds"`
	Text     string `json:"text" maxLength:"10000" doc:"Review text"`
	IsPublic bool   `json:"is_public,omitempty" doc:"Show the review to everyone and count it in the book's rating"`
}

// UpsertReviewInput wraps the review request for Huma.
type UpsertReviewInput struct {
	ISBN string `path:"isbn" maxLength:"32" doc:"Book ISBN"`
	Body UpsertReviewRequest
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// LatestReviewsInput contains the feed size.
type LatestReviewsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"50" doc:"Number of reviews (default 10)"`
}

// LatestReviewsOutput contains the public feed.
type LatestReviewsOutput struct {
	Body []FeedReviewResponse
}

// MyReviewsInput selects a visibility partition.
type MyReviewsInput struct {
	Visibility string `query:"visibility" required:"true" enum:"public,private" doc:"Which of your reviews to list"`
}

// MyReviewsOutput contains the caller's reviews.
type MyReviewsOutput struct {
	Body []MyReviewResponse
}

// === Handlers ===

func (s *Server) handleUpsertReview(ctx context.Context, input *UpsertReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, _, err := s.services.Reviews.Upsert(ctx, userID, input.ISBN, service.ReviewInput{
		Rating:   input.Body.Rating,
		Text:     input.Body.Text,
		IsPublic: input.Body.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: mapReview(review)}, nil
}

func (s *Server) handleLatestReviews(ctx context.Context, input *LatestReviewsInput) (*LatestReviewsOutput, error) {
	feed, err := s.services.Reviews.LatestPublicReviews(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]FeedReviewResponse, 0, len(feed))
	for _, r := range feed {
		out = append(out, FeedReviewResponse{
			ReviewResponse: mapReview(&r.Review),
			BookTitle:      r.BookTitle,
			BookCoverID:    r.BookCoverID,
			ReviewerEmail:  r.ReviewerEmail,
		})
	}
	return &LatestReviewsOutput{Body: out}, nil
}

func (s *Server) handleMyReviews(ctx context.Context, input *MyReviewsInput) (*MyReviewsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Reviews.ReviewsForUser(ctx, userID, domain.Visibility(input.Visibility))
	if err != nil {
		return nil, err
	}

	out := make([]MyReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, MyReviewResponse{
			ReviewResponse: mapReview(&r.Review),
			BookTitle:      r.BookTitle,
			BookCoverID:    r.BookCoverID,
		})
	}
	return &MyReviewsOutput{Body: out}, nil
}
