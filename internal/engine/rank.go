package engine

import (
	"math"
	"sort"
	"time"
)

const (
	feeShare        = 0.4
	confidenceShare = 0.1
	maxAlternatives = 2
	unknownTime     = 5
	unknownRisk     = 10
)

// time and risk points are already expressed as their share of the 100-point total
var timePoints = map[Timeframe]float64{
	Instant:  30,
	HalfHour: 25,
	Hour:     20,
	FewHours: 15,
	Days:     10,
}

var riskPoints = map[RiskLevel]float64{
	RiskLow:    20,
	RiskMedium: 15,
	RiskHigh:   10,
}

// TimeframeFor buckets a processing time.
func TimeframeFor(d time.Duration) Timeframe {
	switch {
	case d <= 0:
		return Instant
	case d <= 30*time.Minute:
		return HalfHour
	case d <= time.Hour:
		return Hour
	case d <= 4*time.Hour:
		return FewHours
	default:
		return Days
	}
}

// RankScore is the composite used to pick the best strategy.
func RankScore(r StrategyResult, maxFee float64) float64 {
	feeFit := 0.0
	if maxFee > 0 {
		feeFit = math.Max(0, 1-r.FeeRate/maxFee) * 100
	}

	tp, ok := timePoints[r.Timeframe]
	if !ok {
		tp = unknownTime
	}
	rp, ok := riskPoints[r.RiskLevel]
	if !ok {
		rp = unknownRisk
	}

	return round(feeShare*feeFit+tp+rp+confidenceShare*r.Confidence, 4)
}

// Rank sorts results in place by RankScore desc, TotalCost asc, channel id asc and
// returns the best plus up to two alternatives.
func Rank(results []StrategyResult, maxFee float64) (*StrategyResult, []StrategyResult) {
	for i := range results {
		results[i].RankScore = RankScore(results[i], maxFee)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.RankScore != b.RankScore {
			return a.RankScore > b.RankScore
		}
		if c := a.TotalCost.Cmp(b.TotalCost); c != 0 {
			return c < 0
		}
		return a.Channel.ID < b.Channel.ID
	})

	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]
	end := 1 + maxAlternatives
	if end > len(results) {
		end = len(results)
	}
	alternatives := make([]StrategyResult, end-1)
	copy(alternatives, results[1:end])
	return &best, alternatives
}
