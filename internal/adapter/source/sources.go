package source

import (
	"log/slog"

	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
)

// FromConfig builds the four agency adapters in domain.AllSources order.
func FromConfig(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) []domain.SourceAdapter {
	opts := func(baseURL, apiKey string) Options {
		return Options{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Timeout:    cfg.SourceTimeout,
			MaxRetries: cfg.SourceMaxRetries,
			RateLimit:  cfg.SourceRateLimit,
		}
	}
	return []domain.SourceAdapter{
		NewFAO(opts(cfg.FAOBaseURL, cfg.FAOAPIKey), logger, metrics),
		NewUNICEF(opts(cfg.UNICEFBaseURL, cfg.UNICEFAPIKey), logger, metrics),
		NewWHO(opts(cfg.WHOBaseURL, ""), logger, metrics),
		NewWorldBank(opts(cfg.WorldBankBaseURL, ""), logger, metrics),
	}
}
