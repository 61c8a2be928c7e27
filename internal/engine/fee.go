package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	minFeeRate = 0.1

	largeVolume    = 50_000
	mediumVolume   = 10_000
	largeDiscount  = 0.6
	mediumDiscount = 0.8

	vipStep = 0.1

	// worst-case venue used as the savings baseline
	worstRateFactor = 0.98
	worstFeeRate    = 2.5
)

// FeeRate computes the percent fee for a channel. Volume discounts supersede each
// other rather than stacking; the result never drops below 0.1.
func (p Policy) FeeRate(ch Channel, amount float64, purpose string, vipLevel int) float64 {
	fee := ch.BaseFeeRate

	switch {
	case amount > largeVolume:
		fee *= largeDiscount
	case amount > mediumVolume:
		fee *= mediumDiscount
	}

	fee *= p.purposeMultiplier(purpose)

	if vipLevel > 0 {
		fee *= 1 - float64(vipLevel)*vipStep
	}

	return math.Max(minFeeRate, round(fee, 4))
}

type costBreakdown struct {
	finalRate float64
	feeAmount decimal.Decimal
	totalCost decimal.Decimal
	savings   decimal.Decimal
}

func computeCost(ch Channel, amount, baseRate, feeRate float64) costBreakdown {
	finalRate := baseRate * ch.RateModifier
	converted := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(finalRate))
	feeAmount := converted.Mul(decimal.NewFromFloat(feeRate)).Div(decimal.NewFromInt(100))
	total := converted.Add(feeAmount)

	worstConverted := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(baseRate * worstRateFactor))
	worstTotal := worstConverted.Add(worstConverted.Mul(decimal.NewFromFloat(worstFeeRate)).Div(decimal.NewFromInt(100)))
	savings := worstTotal.Sub(total)
	if savings.IsNegative() {
		savings = decimal.Zero
	}

	return costBreakdown{
		finalRate: round(finalRate, 4),
		feeAmount: feeAmount.Round(2),
		totalCost: total.Round(2),
		savings:   savings.Round(2),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
