package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/omerorhan/fx-advisor/internal/storage"
)

const DefaultCacheTTL = 10 * time.Minute

// Pair is a from/to currency pair.
type Pair struct {
	From string
	To   string
}

// ParsePair reads "USD/CNY" or "USDCNY".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if from, to, ok := strings.Cut(s, "/"); ok {
		if len(from) == 3 && len(to) == 3 {
			return Pair{From: from, To: to}, nil
		}
		return Pair{}, fmt.Errorf("invalid currency pair %q", s)
	}
	if len(s) == 6 && !strings.ContainsAny(s, "-_ ") {
		return Pair{From: s[:3], To: s[3:]}, nil
	}
	return Pair{}, fmt.Errorf("invalid currency pair %q", s)
}

// CachingProvider serves rates from a storage.Cache and falls through to the
// upstream provider on a miss. Concurrent misses for the same pair share one
// upstream call. Entries past their TTL are never served.
type CachingProvider struct {
	upstream Provider
	cache    storage.Cache
	ttl      time.Duration
	source   string
	group    singleflight.Group
	now      func() time.Time
	logger   *zap.Logger
}

type CacheOption func(*CachingProvider)

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachingProvider) { c.ttl = ttl }
}

func WithSource(name string) CacheOption {
	return func(c *CachingProvider) { c.source = name }
}

func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *CachingProvider) { c.now = now }
}

func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *CachingProvider) { c.logger = l }
}

func NewCachingProvider(upstream Provider, cache storage.Cache, options ...CacheOption) *CachingProvider {
	c := &CachingProvider{
		upstream: upstream,
		cache:    cache,
		ttl:      DefaultCacheTTL,
		source:   "upstream",
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *CachingProvider) BaseRate(ctx context.Context, from, to string) (float64, error) {
	pair := storage.NewPairKey(from, to)

	q, err := c.cache.GetQuote(ctx, pair)
	if err != nil {
		// a broken cache must not stop live lookups
		c.logger.Warn("rate cache read failed", zap.String("pair", string(pair)), zap.Error(err))
	} else if q != nil && q.Fresh(c.now()) {
		return q.Rate, nil
	}

	return c.Refresh(ctx, from, to)
}

// Refresh fetches the pair from upstream and stores it, bypassing any cached value.
func (c *CachingProvider) Refresh(ctx context.Context, from, to string) (float64, error) {
	pair := storage.NewPairKey(from, to)

	v, err, _ := c.group.Do(string(pair), func() (interface{}, error) {
		rate, err := c.upstream.BaseRate(ctx, from, to)
		if err != nil {
			return 0.0, err
		}
		if rate <= 0 {
			return 0.0, unavailable("upstream returned non-positive rate %v for %s", rate, pair)
		}

		now := c.now()
		quote := storage.Quote{
			From:      from,
			To:        to,
			Rate:      rate,
			Source:    c.source,
			FetchedAt: now.UTC(),
			ExpiresAt: now.Add(c.ttl),
		}
		if err := c.cache.SetQuote(ctx, quote); err != nil {
			c.logger.Warn("rate cache write failed", zap.String("pair", string(pair)), zap.Error(err))
		}
		return rate, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Warm refreshes pairs concurrently, at most limit at a time. It returns the number
// of pairs refreshed and the first error, if any; other pairs still complete.
func (c *CachingProvider) Warm(ctx context.Context, pairs []Pair, limit int) (int, error) {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]bool, len(pairs))
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			if _, err := c.Refresh(ctx, p.From, p.To); err != nil {
				c.logger.Warn("rate warm-up failed", zap.String("pair", pairLabel(p.From, p.To)), zap.Error(err))
				return err
			}
			results[i] = true
			return nil
		})
	}
	err := g.Wait()

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n, err
}
