package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/rates"
)

const (
	DefaultRateTimeout = 5 * time.Second
	maxVIPLevel        = 5
)

// Engine turns a request into ranked exchange strategies. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	catalog     *Catalog
	policy      Policy
	provider    rates.Provider
	fallback    rates.FallbackTable
	rateTimeout time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

type Option func(*Engine)

func WithCatalog(c *Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithRateProvider sets the live rate source. Without one every decision uses the fallback table.
func WithRateProvider(p rates.Provider) Option {
	return func(e *Engine) { e.provider = p }
}

func WithFallbackTable(t rates.FallbackTable) Option {
	return func(e *Engine) { e.fallback = t }
}

func WithRateTimeout(d time.Duration) Option {
	return func(e *Engine) { e.rateTimeout = d }
}

// WithClock overrides the time source used for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(options ...Option) (*Engine, error) {
	e := &Engine{
		catalog:     DefaultCatalog(),
		policy:      DefaultPolicy(),
		fallback:    rates.DefaultFallbackTable(),
		rateTimeout: DefaultRateTimeout,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(e)
	}

	if e.catalog == nil {
		return nil, &ConfigurationError{Subject: "engine", Reason: "catalog is nil"}
	}
	if err := e.policy.validate(); err != nil {
		return nil, err
	}
	if e.rateTimeout <= 0 {
		return nil, &ConfigurationError{Subject: "engine", Reason: "rate timeout must be positive"}
	}
	return e, nil
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Decide runs the full pipeline. Only validation failures are returned as errors;
// an unavailable rate degrades the decision and an empty catalog match yields a
// decision without a best strategy.
func (e *Engine) Decide(ctx context.Context, req Request, weights PreferenceWeights) (Decision, error) {
	req, err := e.normalize(req)
	if err != nil {
		return Decision{}, err
	}
	if err := validateWeights(weights); err != nil {
		return Decision{}, err
	}

	eligible := e.eligible(req)
	if len(eligible) == 0 {
		return Decision{}, nil
	}

	baseRate, realTime := e.Rate(ctx, req.FromCurrency, req.ToCurrency)

	results := make([]StrategyResult, 0, len(eligible))
	for _, ch := range eligible {
		results = append(results, e.evaluate(ch, req, weights, baseRate))
	}

	best, alternatives := Rank(results, req.MaxFee)
	return Decision{
		Best:           best,
		Alternatives:   alternatives,
		Strategies:     results,
		Summary:        Summarize(results),
		Advisories:     Advise(results, weights),
		BaseRate:       baseRate,
		IsRealTimeRate: realTime,
	}, nil
}

// AvailableChannels applies only the hard constraints; no rate is fetched.
func (e *Engine) AvailableChannels(amount float64, method Method, location string) ([]Channel, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, invalid("amount", "must be a positive number")
	}
	if method != Cash && method != Digital {
		return nil, invalid("method", "must be CASH or DIGITAL, got %q", method)
	}
	return Filter(e.catalog.List(), FilterCriteria{
		Amount:   amount,
		Method:   method,
		Location: location,
		Urgency:  UrgencyMedium,
		Now:      e.now(),
	}, e.policy.Location), nil
}

// Rate returns the base rate for a pair and whether it came from the live provider.
// Provider failures fall back to the static table and are never surfaced.
func (e *Engine) Rate(ctx context.Context, from, to string) (float64, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	if e.provider != nil {
		rctx, cancel := context.WithTimeout(ctx, e.rateTimeout)
		rate, err := e.provider.BaseRate(rctx, from, to)
		cancel()

		if err == nil && rate > 0 && !math.IsInf(rate, 0) {
			return rate, true
		}
		if err == nil {
			err = rates.ErrRateUnavailable
		}
		e.logger.Warn("rate provider unavailable, using fallback table",
			zap.String("pair", from+"/"+to),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
			zap.Error(err))
	}

	rate, ok := e.fallback.Lookup(from, to)
	if !ok {
		e.logger.Warn("no fallback rate for pair, using default",
			zap.String("pair", from+"/"+to),
			zap.Float64("rate", rate))
	}
	return rate, false
}

// CurrencySupported reports whether a currency code is accepted.
func (e *Engine) CurrencySupported(code string) bool {
	return e.policy.supports(code)
}

func (e *Engine) eligible(req Request) []Channel {
	return Filter(e.catalog.List(), FilterCriteria{
		Amount:   req.Amount,
		Method:   req.Method,
		Location: req.Location,
		Urgency:  req.Urgency,
		Deadline: req.Deadline,
		Now:      e.now(),
	}, e.policy.Location)
}

func (e *Engine) evaluate(ch Channel, req Request, w PreferenceWeights, baseRate float64) StrategyResult {
	feeRate := e.policy.FeeRate(ch, req.Amount, req.Purpose, req.VIPLevel)
	cost := computeCost(ch, req.Amount, baseRate, feeRate)
	score := Score(ch, w)
	comp := Compose(ComposeInput{
		Channel: ch,
		Score:   score,
		FeeRate: feeRate,
		MaxFee:  req.MaxFee,
		Method:  req.Method,
		Weights: w,
	})

	return StrategyResult{
		Channel:           ch,
		BaseRate:          baseRate,
		FinalRate:         cost.finalRate,
		FeeRate:           feeRate,
		FeeAmount:         cost.feeAmount,
		TotalCost:         cost.totalCost,
		SavingsVsWorst:    cost.savings,
		Score:             score,
		RiskLevel:         Risk(ch, req.Amount),
		Confidence:        comp.Confidence,
		RecommendedAction: comp.Action,
		Timeframe:         TimeframeFor(ch.Processing(req.Urgency)),
		ReasoningFacts:    comp.ReasoningFacts,
		Pros:              comp.Pros,
		Cons:              comp.Cons,
		Steps:             Steps(ch.Type, req.Purpose),
	}
}

func (e *Engine) normalize(req Request) (Request, error) {
	req.FromCurrency = strings.ToUpper(strings.TrimSpace(req.FromCurrency))
	req.ToCurrency = strings.ToUpper(strings.TrimSpace(req.ToCurrency))
	req.Method = Method(strings.ToUpper(string(req.Method)))
	req.Urgency = Urgency(strings.ToUpper(string(req.Urgency)))
	req.Location = strings.TrimSpace(req.Location)

	switch {
	case math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0:
		return req, invalid("amount", "must be a positive number")
	case req.FromCurrency == "":
		return req, invalid("fromCurrency", "is required")
	case req.ToCurrency == "":
		return req, invalid("toCurrency", "is required")
	case !e.policy.supports(req.FromCurrency):
		return req, invalid("fromCurrency", "unsupported currency %s", req.FromCurrency)
	case !e.policy.supports(req.ToCurrency):
		return req, invalid("toCurrency", "unsupported currency %s", req.ToCurrency)
	case req.FromCurrency == req.ToCurrency:
		return req, invalid("toCurrency", "must differ from fromCurrency")
	case req.Method != Cash && req.Method != Digital:
		return req, invalid("method", "must be CASH or DIGITAL, got %q", req.Method)
	case req.Urgency != UrgencyLow && req.Urgency != UrgencyMedium && req.Urgency != UrgencyHigh:
		return req, invalid("urgency", "must be LOW, MEDIUM or HIGH, got %q", req.Urgency)
	case req.Location == "":
		return req, invalid("location", "is required")
	case math.IsNaN(req.MaxFee) || req.MaxFee < 0:
		return req, invalid("maxFee", "must be >= 0")
	case req.VIPLevel < 0 || req.VIPLevel > maxVIPLevel:
		return req, invalid("vipLevel", "must be between 0 and %d", maxVIPLevel)
	}
	return req, nil
}

func validateWeights(w PreferenceWeights) error {
	for name, v := range map[string]float64{
		"weights.convenience": w.Convenience,
		"weights.security":    w.Security,
		"weights.speed":       w.Speed,
		"weights.cost":        w.Cost,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(name, "must be a non-negative number")
		}
	}
	return nil
}
