package api

import "github.com/shelfnotes/shelfnotes-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Reviews     *service.ReviewService
	BookDetails *service.BookDetailsService
	Search      *service.SearchService
	Summary     *service.SummaryService
}
