package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.exchangerate-api.com/v4/latest"
	DefaultTimeout  = 5 * time.Second
	crossCurrency   = "USD"
	maxResponseSize = 1 << 20
)

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// HTTPProvider reads latest-rate tables from an exchangerate-api compatible endpoint
// (GET {baseURL}/{FROM} returning {"base": ..., "rates": {...}}). Pairs missing from
// the source table are crossed through USD.
type HTTPProvider struct {
	name    string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type HTTPOption func(*HTTPProvider)

func WithBaseURL(url string) HTTPOption {
	return func(p *HTTPProvider) { p.baseURL = strings.TrimRight(url, "/") }
}

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

// WithRequestsPerSecond bounds upstream calls; free tiers are heavily metered.
func WithRequestsPerSecond(rps float64, burst int) HTTPOption {
	return func(p *HTTPProvider) {
		if rps <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithProviderName(name string) HTTPOption {
	return func(p *HTTPProvider) { p.name = name }
}

func WithHTTPLogger(l *zap.Logger) HTTPOption {
	return func(p *HTTPProvider) { p.logger = l }
}

func NewHTTPProvider(options ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		name:    "exchangerate-api",
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  zap.NewNop(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *HTTPProvider) Name() string {
	return p.name
}

func (p *HTTPProvider) BaseRate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	table, err := p.latest(ctx, from)
	if err == nil {
		if r, ok := table[to]; ok && r > 0 {
			return r, nil
		}
	} else {
		p.logger.Warn("direct rate lookup failed",
			zap.String("provider", p.name),
			zap.String("pair", pairLabel(from, to)),
			zap.Error(err))
	}

	if from == crossCurrency {
		if err != nil {
			return 0, err
		}
		return 0, unavailable("%s has no quote for %s", p.name, pairLabel(from, to))
	}
	return p.crossRate(ctx, from, to)
}

// crossRate derives from->to as USD->to / USD->from.
func (p *HTTPProvider) crossRate(ctx context.Context, from, to string) (float64, error) {
	usd, err := p.latest(ctx, crossCurrency)
	if err != nil {
		return 0, err
	}
	usdFrom, ok := usd[from]
	usdTo, ok2 := usd[to]
	if to == crossCurrency {
		usdTo, ok2 = 1, true
	}
	if !ok || !ok2 || usdFrom <= 0 || usdTo <= 0 {
		return 0, unavailable("%s cannot cross %s via %s", p.name, pairLabel(from, to), crossCurrency)
	}
	return usdTo / usdFrom, nil
}

func (p *HTTPProvider) latest(ctx context.Context, base string) (map[string]float64, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, unavailable("rate limiter: %v", err)
		}
	}

	url := p.baseURL + "/" + base
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, unavailable("%s request failed: %v", p.name, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, unavailable("%s read failed: %v", p.name, err)
	}
	if resp.StatusCode >= 300 {
		return nil, unavailable("%s http %d: %s", p.name, resp.StatusCode, string(b))
	}

	var body latestResponse
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, unavailable("%s decode failed: %v", p.name, err)
	}
	if len(body.Rates) == 0 {
		return nil, unavailable("%s returned no rates for %s", p.name, base)
	}
	return body.Rates, nil
}
