package engine

import (
	"math"
)

const (
	executeScore = 80
	compareScore = 60

	baseConfidence = 70
	minConfidence  = 50
	maxConfidence  = 95

	goodRating   = 4
	lowFeeRate   = 1.0
	highPriority = 4
	maxFacts     = 3
)

type ComposeInput struct {
	Channel Channel
	Score   float64
	FeeRate float64
	MaxFee  float64
	Method  Method
	Weights PreferenceWeights
}

type Composition struct {
	Action         Action
	Confidence     float64
	Pros           []Fact
	Cons           []Fact
	ReasoningFacts []Fact
}

func Compose(in ComposeInput) Composition {
	pros, cons := prosAndCons(in)
	return Composition{
		Action:         decideAction(in.Score, in.FeeRate, in.MaxFee),
		Confidence:     confidence(in.Channel, in.Score),
		Pros:           pros,
		Cons:           cons,
		ReasoningFacts: reasoning(in),
	}
}

// decideAction applies score tiers before the fee ceiling: a well-scored channel is
// still worth executing or comparing even when its fee is above the ceiling.
func decideAction(score, feeRate, maxFee float64) Action {
	switch {
	case score >= executeScore:
		return Execute
	case score >= compareScore:
		return Compare
	case maxFee > 0 && feeRate > maxFee:
		return Negotiate
	default:
		return Wait
	}
}

func confidence(ch Channel, score float64) float64 {
	c := float64(baseConfidence)
	if ch.Security >= goodRating {
		c += 10
	}
	if ch.Type == Bank || ch.Type == Online {
		c += 10
	}
	switch {
	case score >= executeScore:
		c += 15
	case score >= compareScore:
		c += 5
	}
	return math.Min(maxConfidence, math.Max(minConfidence, c))
}

type attributeRule struct {
	criterion string
	threshold float64
	value     func(ComposeInput) float64
	lowerWins bool
	pro, con  string
}

var attributeRules = []attributeRule{
	{
		criterion: "convenience", threshold: goodRating,
		value: func(in ComposeInput) float64 { return float64(in.Channel.Convenience) },
		pro:   "HIGH_CONVENIENCE", con: "REQUIRES_VISIT",
	},
	{
		criterion: "security", threshold: goodRating,
		value: func(in ComposeInput) float64 { return float64(in.Channel.Security) },
		pro:   "HIGH_SECURITY", con: "LOWER_SECURITY",
	},
	{
		criterion: "speed", threshold: goodRating,
		value: func(in ComposeInput) float64 { return float64(in.Channel.Speed) },
		pro:   "FAST_SETTLEMENT", con: "SLOW_SETTLEMENT",
	},
	{
		criterion: "fee_rate", threshold: lowFeeRate, lowerWins: true,
		value: func(in ComposeInput) float64 { return in.FeeRate },
		pro:   "LOW_FEE", con: "HIGH_FEE",
	},
}

func (r attributeRule) met(v float64) bool {
	if r.lowerWins {
		return v <= r.threshold
	}
	return v >= r.threshold
}

type typeRule struct {
	code string
	pro  bool
	when func(ComposeInput) bool
}

var typeRules = map[ChannelType][]typeRule{
	Online: {
		{code: "ALWAYS_AVAILABLE", pro: true},
		{code: "NO_CASH_SUPPORT", when: func(in ComposeInput) bool { return in.Method == Cash }},
	},
	Airport: {
		{code: "TRAVEL_FRIENDLY", pro: true},
		{code: "UNFAVOURABLE_RATE"},
	},
	Bank: {
		{code: "REGULATED_VENUE", pro: true},
		{code: "LIMITED_HOURS"},
	},
}

func prosAndCons(in ComposeInput) (pros, cons []Fact) {
	for _, r := range attributeRules {
		v := r.value(in)
		f := Fact{Criterion: r.criterion, Value: v, Threshold: r.threshold}
		if r.met(v) {
			f.Code = r.pro
			pros = append(pros, f)
		} else {
			f.Code = r.con
			cons = append(cons, f)
		}
	}

	for _, r := range typeRules[in.Channel.Type] {
		if r.when != nil && !r.when(in) {
			continue
		}
		f := Fact{Code: r.code, Criterion: "channel_type"}
		if r.pro {
			pros = append(pros, f)
		} else {
			cons = append(cons, f)
		}
	}

	return capFacts(pros), capFacts(cons)
}

func capFacts(facts []Fact) []Fact {
	if len(facts) > maxFacts {
		return facts[:maxFacts]
	}
	return facts
}

func reasoning(in ComposeInput) []Fact {
	ch := in.Channel
	facts := make([]Fact, 0, 5)

	supported := 0.0
	code := "METHOD_UNSUPPORTED"
	if methodSupported(ch, in.Method) {
		supported, code = 1, "METHOD_SUPPORTED"
	}
	facts = append(facts, Fact{Code: code, Criterion: "method", Value: supported, Threshold: 1})

	if in.Weights.Speed >= highPriority {
		facts = append(facts, Fact{Code: "URGENT_SPEED_RATING", Criterion: "speed", Value: float64(ch.Speed), Threshold: goodRating})
	}
	if in.Weights.Security >= highPriority {
		facts = append(facts, Fact{Code: "SECURITY_RATING", Criterion: "security", Value: float64(ch.Security), Threshold: goodRating})
	}
	if in.Weights.Cost >= highPriority && in.MaxFee > 0 {
		code := "FEE_WITHIN_CEILING"
		if in.FeeRate > in.MaxFee {
			code = "FEE_ABOVE_CEILING"
		}
		facts = append(facts, Fact{Code: code, Criterion: "fee_rate", Value: in.FeeRate, Threshold: in.MaxFee})
	}

	switch {
	case in.Score >= executeScore:
		facts = append(facts, Fact{Code: "SCORE_HIGH", Criterion: "score", Value: in.Score, Threshold: executeScore})
	case in.Score >= compareScore:
		facts = append(facts, Fact{Code: "SCORE_MEDIUM", Criterion: "score", Value: in.Score, Threshold: compareScore})
	default:
		facts = append(facts, Fact{Code: "SCORE_LOW", Criterion: "score", Value: in.Score, Threshold: compareScore})
	}
	return facts
}
