package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/auth"
	"github.com/shelfnotes/shelfnotes-server/internal/config"
	"github.com/shelfnotes/shelfnotes-server/internal/domain"
	"github.com/shelfnotes/shelfnotes-server/internal/logger"
	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/service"
	"github.com/shelfnotes/shelfnotes-server/internal/summary"
	"github.com/shelfnotes/shelfnotes-server/internal/validation"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, validator, m, log.Component("auth")), nil
}

// ProvideCatalogService provides the catalog service. New books are indexed for search.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.SearchIndex, validator, m, log.Component("catalog")), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	bounds := domain.RatingBounds{Min: cfg.Reviews.RatingMin, Max: cfg.Reviews.RatingMax}
	return service.NewReviewService(storeHandle.Store, bounds, m, log.Component("reviews")), nil
}

// ProvideBookDetailsService provides the book details composer.
func ProvideBookDetailsService(i do.Injector) (*service.BookDetailsService, error) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	reviews := do.MustInvoke[*service.ReviewService](i)

	return service.NewBookDetailsService(catalog, reviews), nil
}

// ProvideSearchService provides external and catalog search.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	clientHandle := do.MustInvoke[*OpenLibraryClientHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(service.SearchOptions{
		External: clientHandle.Client,
		Cache:    cacheHandle.Cache,
		CacheTTL: cfg.OpenLibrary.CacheTTL,
		Timeout:  cfg.OpenLibrary.Timeout,
		Index:    indexHandle.SearchIndex,
		Books:    storeHandle.Store,
		Metrics:  m,
		Logger:   log.Component("search"),
	}), nil
}

// ProvideSummaryService provides review summaries.
func ProvideSummaryService(i do.Injector) (*service.SummaryService, error) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	reviews := do.MustInvoke[*service.ReviewService](i)
	summarizer := do.MustInvoke[summary.Summarizer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSummaryService(catalog, reviews, summarizer, log.Component("summary")), nil
}
