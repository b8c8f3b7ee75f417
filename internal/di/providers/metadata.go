package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/config"
	"github.com/shelfnotes/shelfnotes-server/internal/logger"
	"github.com/shelfnotes/shelfnotes-server/internal/metadata/openlibrary"
	"github.com/shelfnotes/shelfnotes-server/internal/summary"
)

// OpenLibraryClientHandle wraps the Open Library client for lifecycle management.
type OpenLibraryClientHandle struct {
	*openlibrary.Client
}

// Shutdown implements do.Shutdownable.
func (h *OpenLibraryClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideOpenLibraryClient provides the Open Library API client.
func ProvideOpenLibraryClient(i do.Injector) (*OpenLibraryClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := openlibrary.New(openlibrary.Options{
		BaseURL:           cfg.OpenLibrary.BaseURL,
		Timeout:           cfg.OpenLibrary.Timeout,
		RequestsPerSecond: cfg.OpenLibrary.RequestsPerSecond,
		Logger:            log.Component("openlibrary"),
	})

	return &OpenLibraryClientHandle{Client: client}, nil
}

// ProvideSummarizer provides the review summarizer. Without an API key it is disabled.
func ProvideSummarizer(i do.Injector) (summary.Summarizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Summary.APIKey == "" {
		log.Info("Review summaries disabled: no API key configured")
	}

	return summary.NewGemini(summary.GeminiOptions{
		APIKey:  cfg.Summary.APIKey,
		Model:   cfg.Summary.Model,
		BaseURL: cfg.Summary.BaseURL,
		Timeout: cfg.Summary.Timeout,
		Logger:  log.Component("summary"),
	}), nil
}
