package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/cache"
	"github.com/shelfnotes/shelfnotes-server/internal/config"
	"github.com/shelfnotes/shelfnotes-server/internal/logger"
)

// CacheHandle wraps the external search cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the Badger-backed result cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Data.CachePath()
	c, err := cache.Open(path, log.Component("cache"))
	if err != nil {
		return nil, err
	}

	log.Info("Result cache initialized", "path", path, "ttl", cfg.OpenLibrary.CacheTTL)

	return &CacheHandle{Cache: c}, nil
}
