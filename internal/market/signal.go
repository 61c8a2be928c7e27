// Package market supplies the market-condition snapshot attached to a recommendation.
// Conditions are informational only and never feed back into ranking.
package market

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

type Trend string

const (
	Bullish Trend = "BULLISH"
	Bearish Trend = "BEARISH"
	Neutral Trend = "NEUTRAL"
)

type Liquidity string

const (
	LiquidityHigh   Liquidity = "HIGH"
	LiquidityMedium Liquidity = "MEDIUM"
	LiquidityLow    Liquidity = "LOW"
)

const (
	MinVolatility = 0.5
	MaxVolatility = 2.5
)

type Conditions struct {
	Volatility float64   `json:"volatility"`
	Trend      Trend     `json:"trend"`
	Liquidity  Liquidity `json:"liquidity"`
}

// Signal produces conditions for a currency pair.
type Signal interface {
	Conditions(ctx context.Context, from, to string) (Conditions, error)
}

// NeutralSignal always reports a calm market.
type NeutralSignal struct{}

func (NeutralSignal) Conditions(ctx context.Context, from, to string) (Conditions, error) {
	return Conditions{Volatility: 1.0, Trend: Neutral, Liquidity: LiquidityHigh}, nil
}

// SeededSignal draws pseudo-random conditions. The same seed and pair always yield the
// same conditions, so callers stay reproducible.
type SeededSignal struct {
	Seed int64
}

func NewSeededSignal(seed int64) *SeededSignal {
	return &SeededSignal{Seed: seed}
}

func (s *SeededSignal) Conditions(ctx context.Context, from, to string) (Conditions, error) {
	if err := ctx.Err(); err != nil {
		return Conditions{}, err
	}

	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(from) + "/" + strings.ToUpper(to)))
	rng := rand.New(rand.NewSource(s.Seed ^ int64(h.Sum64())))

	trends := []Trend{Bullish, Bearish, Neutral}
	levels := []Liquidity{LiquidityHigh, LiquidityMedium, LiquidityLow}

	vol := MinVolatility + rng.Float64()*(MaxVolatility-MinVolatility)
	return Conditions{
		Volatility: math.Round(vol*100) / 100,
		Trend:      trends[rng.Intn(len(trends))],
		Liquidity:  levels[rng.Intn(len(levels))],
	}, nil
}
