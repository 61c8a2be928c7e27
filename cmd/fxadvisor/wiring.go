package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/config"
	"github.com/omerorhan/fx-advisor/internal/market"
	"github.com/omerorhan/fx-advisor/internal/service"
)

func newLogger(c config.LoggingConfig) (*zap.Logger, error) {
	if !c.Enabled {
		return zap.NewNop(), nil
	}

	zc := zap.NewProductionConfig()
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		zc.Level = level
	}
	return zc.Build()
}

// newService builds the advisor from configuration. One-shot commands pass
// refresh=false so no background refresher is started.
func newService(c *config.Config, logger *zap.Logger, refresh bool) (*service.AdvisorService, error) {
	options := []service.ServiceOption{
		service.WithLogger(logger),
		service.WithLogging(c.Logging.Enabled),
		service.WithRatesBaseUrl(c.Rates.BaseURL, c.Rates.RequestsPerSec, c.Rates.Burst),
		service.WithRateTimeout(c.Rates.Timeout),
		service.WithCacheTTL(c.Rates.CacheTTL),
		service.WithWarmPairs(c.Rates.WarmPairs...),
		service.WithPolicy(service.PolicyConfig{
			MajorCities:         c.Policy.MajorCities,
			RestrictedTypes:     c.Policy.RestrictedTypes,
			PurposeAdjustments:  c.Policy.PurposeAdjustments,
			SupportedCurrencies: c.Policy.SupportedCurrencies,
		}),
	}
	if len(c.Rates.Fallback) > 0 {
		options = append(options, service.WithFallbackRates(c.Rates.Fallback))
	}

	if c.Redis.Addr != "" {
		options = append(options, service.WithRedisConfig(c.Redis.Addr))
	}
	if c.Redis.KeyPrefix != "" {
		options = append(options, service.WithKeyPrefix(c.Redis.KeyPrefix))
	}
	if c.Market.Seed != 0 {
		options = append(options, service.WithMarketSignal(market.NewSeededSignal(c.Market.Seed)))
	}
	if refresh {
		options = append(options, service.WithRatesRefreshInterval(c.Rates.RefreshInterval))
	} else {
		options = append(options, service.WithRatesRefreshInterval(0), service.WithWarmPairs())
	}

	return service.NewAdvisorService(options...)
}
