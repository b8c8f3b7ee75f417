package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/validation"
)

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second
)

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(_ do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
