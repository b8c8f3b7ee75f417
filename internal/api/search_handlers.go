package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchExternal",
		Method:      http.MethodGet,
		Path:        "/books/search/external",
		Summary:     "Search Open Library",
		Description: "Searches the external bibliographic provider. Results are not added to the catalog.",
		Tags:        []string{"Search"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleSearchExternal)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/books/search",
		Summary:     "Search catalog",
		Description: "Full-text search over the titles, authors and ISBNs of books already in the catalog",
		Tags:        []string{"Search"},
		Security:    bearerAuth,
		Middlewares: huma.Middlewares{s.requireAuth},
	}, s.handleSearchCatalog)
}

// === DTOs ===

// ExternalSearchInput contains the external search query.
type ExternalSearchInput struct {
	Query string `query:"query" maxLength:"200" doc:"Search text"`
}

// ExternalBookResponse is a candidate book from the external provider.
type ExternalBookResponse struct {
	ISBN    string `json:"isbn" doc:"First ISBN listed for the work"`
	Title   string `json:"title" doc:"Title"`
	Author  string `json:"author" doc:"Author names, comma separated"`
	Year    *int   `json:"year,omitempty" doc:"First publication year"`
	Pages   *int   `json:"pages,omitempty" doc:"Median page count"`
	CoverID *int64 `json:"coverid,omitempty" doc:"Open Library cover ID"`
}

// ExternalSearchOutput contains provider results.
type ExternalSearchOutput struct {
	Body []ExternalBookResponse
}

// CatalogSearchInput contains the catalog search query.
type CatalogSearchInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search text"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// CatalogSearchOutput contains matching catalog books, best match first.
type CatalogSearchOutput struct {
	Body []RatedBookResponse
}

// === Handlers ===

func (s *Server) handleSearchExternal(ctx context.Context, input *ExternalSearchInput) (*ExternalSearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Search.External(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	out := make([]ExternalBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, ExternalBookResponse{
			ISBN:    b.ISBN,
			Title:   b.Title,
			Author:  b.Author,
			Year:    b.Year,
			Pages:   b.Pages,
			CoverID: b.CoverID,
		})
	}
	return &ExternalSearchOutput{Body: out}, nil
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *CatalogSearchInput) (*CatalogSearchOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Search.Local(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &CatalogSearchOutput{Body: mapRatedBooks(books)}, nil
}
