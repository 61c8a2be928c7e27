package engine

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type ChannelType string

const (
	Bank         ChannelType = "BANK"
	Online       ChannelType = "ONLINE"
	Airport      ChannelType = "AIRPORT"
	ExchangeShop ChannelType = "EXCHANGE_SHOP"
	ATM          ChannelType = "ATM"
)

func (t ChannelType) Valid() bool {
	switch t {
	case Bank, Online, Airport, ExchangeShop, ATM:
		return true
	}
	return false
}

type Method string

const (
	Cash    Method = "CASH"
	Digital Method = "DIGITAL"
)

type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type Action string

const (
	Execute   Action = "EXECUTE"
	Compare   Action = "COMPARE"
	Negotiate Action = "NEGOTIATE"
	Wait      Action = "WAIT"
)

// Timeframe is the qualitative completion bucket of a channel for a given urgency.
type Timeframe string

const (
	Instant  Timeframe = "INSTANT"
	HalfHour Timeframe = "HALF_HOUR"
	Hour     Timeframe = "HOUR"
	FewHours Timeframe = "FEW_HOURS"
	Days     Timeframe = "DAYS"
)

type Availability struct {
	SupportsCash    bool    `json:"supportsCash"`
	SupportsDigital bool    `json:"supportsDigital"`
	MinAmount       float64 `json:"minAmount"`
	MaxAmount       float64 `json:"maxAmount"`
}

// Channel is an exchange venue. Values are copied out of the catalog and never written back.
type Channel struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         ChannelType  `json:"type"`
	RateModifier float64      `json:"rateModifier"`
	BaseFeeRate  float64      `json:"baseFeeRate"`
	Convenience  int          `json:"convenience"`
	Security     int          `json:"security"`
	Speed        int          `json:"speed"`
	Availability Availability `json:"availability"`

	// ProcessingTime per urgency; zero means instant.
	ProcessingTime map[Urgency]time.Duration `json:"processingTime"`
}

// Processing returns the processing time for the urgency, falling back to MEDIUM.
func (c Channel) Processing(u Urgency) time.Duration {
	if d, ok := c.ProcessingTime[u]; ok {
		return d
	}
	return c.ProcessingTime[UrgencyMedium]
}

func (c Channel) clone() Channel {
	out := c
	if c.ProcessingTime != nil {
		out.ProcessingTime = make(map[Urgency]time.Duration, len(c.ProcessingTime))
		for k, v := range c.ProcessingTime {
			out.ProcessingTime[k] = v
		}
	}
	return out
}

type Request struct {
	Amount       float64    `json:"amount"`
	FromCurrency string     `json:"fromCurrency"`
	ToCurrency   string     `json:"toCurrency"`
	Method       Method     `json:"method"`
	Location     string     `json:"location"`
	Urgency      Urgency    `json:"urgency"`
	MaxFee       float64    `json:"maxFee"`
	Purpose      string     `json:"purpose"`
	VIPLevel     int        `json:"vipLevel,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// PreferenceWeights are relative; only their ratios matter.
type PreferenceWeights struct {
	Convenience float64 `json:"convenience"`
	Security    float64 `json:"security"`
	Speed       float64 `json:"speed"`
	Cost        float64 `json:"cost"`
}

func (w PreferenceWeights) total() float64 {
	return w.Convenience + w.Security + w.Speed + w.Cost
}

// scaled divides every weight by the largest one. Ratios are unchanged and the
// sums stay finite for any finite input.
func (w PreferenceWeights) scaled() PreferenceWeights {
	m := math.Max(math.Max(w.Convenience, w.Security), math.Max(w.Speed, w.Cost))
	if m <= 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return w
	}
	return PreferenceWeights{
		Convenience: w.Convenience / m,
		Security:    w.Security / m,
		Speed:       w.Speed / m,
		Cost:        w.Cost / m,
	}
}

// DefaultWeights weighs every criterion equally.
func DefaultWeights() PreferenceWeights {
	return PreferenceWeights{Convenience: 3, Security: 3, Speed: 3, Cost: 3}
}

// Fact is a single structured observation: a criterion, the observed value and the
// threshold it was compared against. Code identifies the rule that produced it.
type Fact struct {
	Code      string  `json:"code"`
	Criterion string  `json:"criterion"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

type StrategyResult struct {
	Channel           Channel         `json:"channel"`
	BaseRate          float64         `json:"baseRate"`
	FinalRate         float64         `json:"finalRate"`
	FeeRate           float64         `json:"feeRate"`
	FeeAmount         decimal.Decimal `json:"feeAmount"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	SavingsVsWorst    decimal.Decimal `json:"savingsVsWorst"`
	Score             float64         `json:"score"`
	RiskLevel         RiskLevel       `json:"riskLevel"`
	Confidence        float64         `json:"confidence"`
	RecommendedAction Action          `json:"recommendedAction"`
	Timeframe         Timeframe       `json:"timeframe"`
	RankScore         float64         `json:"rankScore"`
	ReasoningFacts    []Fact          `json:"reasoningFacts"`
	Pros              []Fact          `json:"pros"`
	Cons              []Fact          `json:"cons"`
	Steps             []Step          `json:"steps"`
}

// Decision is the outcome of one Decide call.
type Decision struct {
	Best           *StrategyResult  `json:"best"`
	Alternatives   []StrategyResult `json:"alternatives"`
	Strategies     []StrategyResult `json:"strategies"`
	Summary        Summary          `json:"summary"`
	Advisories     []Advisory       `json:"advisories"`
	BaseRate       float64          `json:"baseRate"`
	IsRealTimeRate bool             `json:"isRealTimeRate"`
}

// NoEligibleChannel reports whether filtering left nothing to rank.
func (d Decision) NoEligibleChannel() bool {
	return d.Best == nil
}
