package advisor

import (
	"context"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/market"
	"github.com/omerorhan/fx-advisor/internal/service"
)

// Client provides a clean public API for the advisor service
type Client struct {
	service *service.AdvisorService
}

// NewClient creates a new advisor client
func NewClient(options ...ServiceOption) (*Client, error) {
	svc, err := service.NewAdvisorService(options...)
	if err != nil {
		return nil, err
	}

	return &Client{
		service: svc,
	}, nil
}

// Initialize warms the rate cache and starts the refresher
func (c *Client) Initialize() error {
	return c.service.Initialize()
}

// Recommend ranks the eligible channels for a request
func (c *Client) Recommend(ctx context.Context, req RecommendReq) (*Recommendation, error) {
	return c.service.Recommend(ctx, req)
}

func (c *Client) AvailableChannels(amount float64, method Method, location string) ([]Channel, error) {
	return c.service.AvailableChannels(amount, method, location)
}

func (c *Client) RateQuote(ctx context.Context, from, to string) (*RateQuote, error) {
	return c.service.RateQuote(ctx, from, to)
}

func (c *Client) SupportedCurrencies() []string {
	return c.service.SupportedCurrencies()
}

// Stop gracefully shuts down the service
func (c *Client) Stop() error {
	c.service.Stop()
	return nil
}

// Service options (re-exported for convenience)
type ServiceOption = service.ServiceOption

// Re-export service options for clean API
var (
	WithRedisConfig          = service.WithRedisConfig
	WithKeyPrefix            = service.WithKeyPrefix
	WithRatesBaseUrl         = service.WithRatesBaseUrl
	WithRateProvider         = service.WithRateProvider
	WithCacheTTL             = service.WithCacheTTL
	WithRateTimeout          = service.WithRateTimeout
	WithRatesRefreshInterval = service.WithRatesRefreshInterval
	WithWarmPairs            = service.WithWarmPairs
	WithMarketSignal         = service.WithMarketSignal
	WithPolicy               = service.WithPolicy
	WithFallbackRates        = service.WithFallbackRates
	WithLogger               = service.WithLogger
	WithLogging              = service.WithLogging
)

// Re-export common types for convenience
type (
	RecommendReq      = service.RecommendReq
	Recommendation    = service.Recommendation
	RateQuote         = service.RateQuote
	PolicyConfig      = service.PolicyConfig
	Request           = engine.Request
	PreferenceWeights = engine.PreferenceWeights
	Channel           = engine.Channel
	Method            = engine.Method
	Urgency           = engine.Urgency
	ValidationError   = engine.ValidationError
	MarketConditions  = market.Conditions
)

const (
	Cash          = engine.Cash
	Digital       = engine.Digital
	UrgencyLow    = engine.UrgencyLow
	UrgencyMedium = engine.UrgencyMedium
	UrgencyHigh   = engine.UrgencyHigh
)

// NewSeededSignal returns a reproducible market signal for the given seed.
func NewSeededSignal(seed int64) market.Signal {
	return market.NewSeededSignal(seed)
}
