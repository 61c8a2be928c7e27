package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/market"
	"github.com/omerorhan/fx-advisor/internal/metrics"
	"github.com/omerorhan/fx-advisor/internal/rates"
	"github.com/omerorhan/fx-advisor/internal/storage"
)

// AdvisorService is a self-managing service around the decision engine. It owns the
// rate cache, keeps configured pairs warm and records metrics for every decision.
type AdvisorService struct {
	cache       storage.Cache
	rates       *rates.CachingProvider
	engine      *engine.Engine
	signal      market.Signal
	metrics     *metrics.AdvisorMetrics
	refresher   *Refresher
	pairs       []rates.Pair
	opts        *ServiceOptions
	logger      *zap.Logger
	sugar       *zap.SugaredLogger
	mu          sync.RWMutex
	initialized bool
	stopped     bool
}

// ServiceOptions provides configuration for the advisor service
type ServiceOptions struct {
	RedisAddr            string        `json:"redisAddr"`
	KeyPrefix            string        `json:"keyPrefix"`
	CacheTTL             time.Duration `json:"cacheTTL"`
	RatesBaseUrl         string        `json:"ratesBaseUrl"`
	RatesRequestsPerSec  float64       `json:"ratesRequestsPerSec"`
	RatesBurst           int           `json:"ratesBurst"`
	RateTimeout          time.Duration `json:"rateTimeout"`
	RatesRefreshInterval time.Duration `json:"ratesRefreshInterval"`
	WarmPairs            []string      `json:"warmPairs"`
	WarmConcurrency      int           `json:"warmConcurrency"`
	InitialLoadTimeout   time.Duration `json:"initialLoadTimeout"`
	LeaderLockTTL        time.Duration `json:"leaderLockTTL"`
	EnableLogging        bool          `json:"enableLogging"`

	Policy        *PolicyConfig      `json:"policy,omitempty"`
	FallbackRates map[string]float64 `json:"fallbackRates,omitempty"`

	RateProvider  rates.Provider          `json:"-"`
	MarketSignal  market.Signal           `json:"-"`
	Metrics       *metrics.AdvisorMetrics `json:"-"`
	Logger        *zap.Logger             `json:"-"`
	EngineOptions []engine.Option         `json:"-"`
}

// DefaultServiceOptions returns sensible default options. An empty RedisAddr keeps
// the rate cache in memory.
func DefaultServiceOptions() *ServiceOptions {
	return &ServiceOptions{
		CacheTTL:            rates.DefaultCacheTTL,
		RatesBaseUrl:        rates.DefaultBaseURL,
		RatesRequestsPerSec: 1,
		RatesBurst:          5,
		RateTimeout:         engine.DefaultRateTimeout,
		WarmPairs:           DefaultWarmPairs(),
		WarmConcurrency:     DefaultWarmConcurrency,
		InitialLoadTimeout:  DefaultInitialLoadTimeout,
		LeaderLockTTL:       DefaultLeaderLockTTL,
		EnableLogging:       true,
	}
}

// ServiceOption is a function that configures service options
type ServiceOption func(*ServiceOptions)

// WithRedisConfig stores rates in Redis so several instances share one cache and one refresher.
func WithRedisConfig(addr string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RedisAddr = addr
	}
}

func WithKeyPrefix(prefix string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.KeyPrefix = prefix
	}
}

// WithRatesBaseUrl sets the upstream rate API and its request budget.
func WithRatesBaseUrl(url string, requestsPerSec float64, burst int) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RatesBaseUrl = url
		opts.RatesRequestsPerSec = requestsPerSec
		opts.RatesBurst = burst
	}
}

// WithRateProvider replaces the HTTP upstream; results are still cached.
func WithRateProvider(p rates.Provider) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RateProvider = p
	}
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.CacheTTL = ttl
	}
}

func WithRateTimeout(timeout time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RateTimeout = timeout
	}
}

// WithRatesRefreshInterval enables the background refresher. Zero disables it.
func WithRatesRefreshInterval(interval time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.RatesRefreshInterval = interval
	}
}

func WithWarmPairs(pairs ...string) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.WarmPairs = pairs
	}
}

func WithWarmConcurrency(n int) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.WarmConcurrency = n
	}
}

func WithInitialLoadTimeout(timeout time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.InitialLoadTimeout = timeout
	}
}

func WithLeaderLockTTL(ttl time.Duration) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.LeaderLockTTL = ttl
	}
}

func WithMarketSignal(s market.Signal) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.MarketSignal = s
	}
}

func WithMetrics(m *metrics.AdvisorMetrics) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Metrics = m
	}
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Logger = l
	}
}

// WithPolicy replaces the location, purpose and currency tables the engine decides with.
func WithPolicy(p PolicyConfig) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.Policy = &p
	}
}

// WithFallbackRates replaces the static table used when no live rate is available.
// Keys are pairs such as "USDCNY" or "USD/CNY".
func WithFallbackRates(pairRates map[string]float64) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.FallbackRates = pairRates
	}
}

// WithEngineOptions passes catalog, policy or fallback overrides to the engine.
func WithEngineOptions(options ...engine.Option) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.EngineOptions = append(opts.EngineOptions, options...)
	}
}

// WithLogging enables/disables logging
func WithLogging(enabled bool) ServiceOption {
	return func(opts *ServiceOptions) {
		opts.EnableLogging = enabled
	}
}

// NewAdvisorService creates a new self-managing advisor service
func NewAdvisorService(options ...ServiceOption) (*AdvisorService, error) {
	opts := DefaultServiceOptions()
	for _, option := range options {
		option(opts)
	}

	logger, err := newLogger(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	pairs, err := parsePairs(opts.WarmPairs)
	if err != nil {
		return nil, fmt.Errorf("invalid warm pairs: %w", err)
	}

	cache, err := newCache(opts)
	if err != nil {
		return nil, err
	}

	upstream := opts.RateProvider
	source := "custom"
	if upstream == nil {
		httpProvider := rates.NewHTTPProvider(
			rates.WithBaseURL(opts.RatesBaseUrl),
			rates.WithRequestsPerSecond(opts.RatesRequestsPerSec, opts.RatesBurst),
			rates.WithHTTPLogger(logger),
		)
		upstream, source = httpProvider, httpProvider.Name()
	}

	cached := rates.NewCachingProvider(upstream, cache,
		rates.WithTTL(opts.CacheTTL),
		rates.WithSource(source),
		rates.WithCacheLogger(logger),
	)

	engineOptions := append([]engine.Option{
		engine.WithRateProvider(cached),
		engine.WithRateTimeout(opts.RateTimeout),
		engine.WithLogger(logger),
	}, policyOptions(opts)...)
	engineOptions = append(engineOptions, opts.EngineOptions...)
	eng, err := engine.New(engineOptions...)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	signal := opts.MarketSignal
	if signal == nil {
		signal = market.NeutralSignal{}
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewAdvisorMetrics()
	}

	service := &AdvisorService{
		cache:   cache,
		rates:   cached,
		engine:  eng,
		signal:  signal,
		metrics: m,
		pairs:   pairs,
		opts:    opts,
		logger:  logger,
		sugar:   logger.Sugar(),
	}

	if opts.RatesRefreshInterval > 0 && len(pairs) > 0 {
		service.refresher = NewRefresher(cache, cached, pairs, RefresherConfig{
			Interval:      opts.RatesRefreshInterval,
			LockTTL:       opts.LeaderLockTTL,
			Concurrency:   opts.WarmConcurrency,
			EnableLogging: opts.EnableLogging,
		}, logger, m)
	}

	return service, nil
}

func newLogger(opts *ServiceOptions) (*zap.Logger, error) {
	if opts.Logger != nil {
		return opts.Logger, nil
	}
	if !opts.EnableLogging {
		return zap.NewNop(), nil
	}
	return zap.NewProduction()
}

func newCache(opts *ServiceOptions) (storage.Cache, error) {
	if opts.RedisAddr == "" {
		return storage.NewMemoryCache(), nil
	}

	cacheOpts := storage.DefaultCacheOptions()
	cacheOpts.DefaultTTL = opts.CacheTTL
	if opts.KeyPrefix != "" {
		cacheOpts.KeyPrefix = opts.KeyPrefix
	}
	redisCache, err := storage.NewRedisCache(opts.RedisAddr, storage.WithRedisOptions(cacheOpts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis cache: %w", err)
	}
	return redisCache, nil
}

// Initialize warms the configured pairs and starts the refresher. A failed warm-up
// is logged, not returned: decisions fall back to the static table until rates arrive.
func (as *AdvisorService) Initialize() error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.stopped {
		return ErrStopped
	}
	if as.initialized {
		return nil
	}

	as.log("Initializing Advisor Service...")

	if len(as.pairs) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), as.opts.InitialLoadTimeout)
		warmed, err := as.rates.Warm(ctx, as.pairs, as.opts.WarmConcurrency)
		cancel()
		as.metrics.RecordRefresh(warmed, err)
		if err != nil {
			as.log("Warning: warmed %d/%d pairs: %v", warmed, len(as.pairs), err)
		} else {
			as.log("Warmed %d pairs", warmed)
		}
	}

	if as.refresher != nil {
		if err := as.refresher.Start(); err != nil {
			return fmt.Errorf("failed to start refresher: %w", err)
		}
	}

	as.initialized = true
	as.log("Advisor Service initialized successfully")
	return nil
}

func (as *AdvisorService) IsInitialized() bool {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.initialized
}

// IsLeader reports whether this instance runs the shared refresh.
func (as *AdvisorService) IsLeader() bool {
	if as.refresher == nil {
		return false
	}
	return as.refresher.IsLeader()
}

func (as *AdvisorService) Engine() *engine.Engine {
	return as.engine
}

func (as *AdvisorService) Metrics() *metrics.AdvisorMetrics {
	return as.metrics
}

// Recommend runs the engine and decorates the decision with an ID and market conditions.
func (as *AdvisorService) Recommend(ctx context.Context, req RecommendReq) (*Recommendation, error) {
	if !as.IsInitialized() {
		return nil, ErrNotInitialized
	}

	start := time.Now()
	decision, err := as.engine.Decide(ctx, req.Request, req.weights())
	if err != nil {
		as.recordError(err)
		return nil, err
	}

	from, to := strings.ToUpper(req.FromCurrency), strings.ToUpper(req.ToCurrency)
	conditions, err := as.signal.Conditions(ctx, from, to)
	if err != nil {
		as.log("Warning: market signal failed for %s/%s: %v", from, to, err)
		conditions, _ = market.NeutralSignal{}.Conditions(ctx, from, to)
	}

	pair := from + "/" + to
	if decision.NoEligibleChannel() {
		as.log("No eligible channel for %s %.2f via %s in %s", pair, req.Amount, req.Method, req.Location)
		as.metrics.RecordNoEligible(pair)
	} else {
		as.metrics.RecordDecision(string(decision.Best.RecommendedAction), pair, len(decision.Strategies),
			decision.IsRealTimeRate, time.Since(start).Seconds())
	}

	return &Recommendation{
		ID:               uuid.NewString(),
		Decision:         decision,
		MarketConditions: conditions,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

func (as *AdvisorService) AvailableChannels(amount float64, method engine.Method, location string) ([]engine.Channel, error) {
	channels, err := as.engine.AvailableChannels(amount, engine.Method(strings.ToUpper(string(method))), location)
	if err != nil {
		as.recordError(err)
		return nil, err
	}
	return channels, nil
}

// RateQuote returns the current base rate for a pair and its inverse.
func (as *AdvisorService) RateQuote(ctx context.Context, from, to string) (*RateQuote, error) {
	from, to = strings.ToUpper(strings.TrimSpace(from)), strings.ToUpper(strings.TrimSpace(to))

	switch {
	case !as.engine.CurrencySupported(from):
		return nil, &engine.ValidationError{Field: "from", Reason: "unsupported currency " + from}
	case !as.engine.CurrencySupported(to):
		return nil, &engine.ValidationError{Field: "to", Reason: "unsupported currency " + to}
	case strings.EqualFold(from, to):
		return nil, &engine.ValidationError{Field: "to", Reason: "from and to are same"}
	}

	rate, live := as.engine.Rate(ctx, from, to)
	as.metrics.RecordRateLookup(live)

	return &RateQuote{
		From:        from,
		To:          to,
		Pair:        from + "/" + to,
		Rate:        rate,
		InverseRate: roundTo(1/rate, inverseRatePlaces),
		IsRealTime:  live,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// SupportedCurrencies returns a copy of the accepted currency codes.
func (as *AdvisorService) SupportedCurrencies() []string {
	codes := as.engine.Policy().SupportedCurrencies
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// Stop gracefully shuts down the service. A stopped service cannot be initialized
// again; further calls to Stop are no-ops.
func (as *AdvisorService) Stop() {
	as.mu.Lock()
	if as.stopped {
		as.mu.Unlock()
		return
	}
	as.stopped = true
	as.mu.Unlock()

	as.log("Stopping Advisor Service...")

	if as.refresher != nil {
		as.refresher.Stop()
	}
	if err := as.cache.Close(); err != nil {
		as.log("Warning: failed to close cache: %v", err)
	}
	_ = as.logger.Sync()

	as.mu.Lock()
	as.initialized = false
	as.mu.Unlock()

	as.log("Advisor Service stopped")
}

func (as *AdvisorService) recordError(err error) {
	if engine.IsValidation(err) {
		as.metrics.RecordError("validation")
		return
	}
	as.metrics.RecordError("internal")
}

func (as *AdvisorService) log(format string, args ...interface{}) {
	if as.opts.EnableLogging {
		as.sugar.Infof("[AdvisorService] "+format, args...)
	}
}
