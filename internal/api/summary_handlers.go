package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSummaryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookSummary",
		Method:      http.MethodGet,
		Path:        "/books/{isbn}/summary",
		Summary:     "Summarize reviews",
		Description: "Generates a short synopsis of what readers say about the book in its public reviews",
		Tags:        []string{"Books"},
	}, s.handleGetBookSummary)
}

// BookSummaryInput identifies the book to summarize.
type BookSummaryInput struct {
	ISBN string `path:"isbn" maxLength:"32" doc:"Book ISBN"`
}

// BookSummaryResponse is a generated review synopsis.
type BookSummaryResponse struct {
	ISBN        string `json:"isbn" doc:"Book ISBN"`
	Summary     string `json:"summary" doc:"Synopsis of the public reviews, empty when there are none"`
	ReviewCount int    `json:"reviewCount" doc:"Number of public reviews summarized"`
}

// BookSummaryOutput wraps the summary for Huma.
type BookSummaryOutput struct {
	Body BookSummaryResponse
}

func (s *Server) handleGetBookSummary(ctx context.Context, input *BookSummaryInput) (*BookSummaryOutput, error) {
	sum, err := s.services.Summary.Summarize(ctx, input.ISBN)
	if err != nil {
		return nil, err
	}
	return &BookSummaryOutput{Body: BookSummaryResponse{
		ISBN:        sum.ISBN,
		Summary:     sum.Summary,
		ReviewCount: sum.ReviewCount,
	}}, nil
}
