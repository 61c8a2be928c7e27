package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

type CostRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

type Summary struct {
	TotalOptions int       `json:"totalOptions"`
	BestChannel  string    `json:"bestChannel,omitempty"`
	BestScore    float64   `json:"bestScore"`
	AverageScore float64   `json:"averageScore"`
	CostRange    CostRange `json:"costRange"`
}

// Summarize describes the ranked strategies; best is the first element.
func Summarize(ranked []StrategyResult) Summary {
	if len(ranked) == 0 {
		return Summary{}
	}

	s := Summary{
		TotalOptions: len(ranked),
		BestChannel:  ranked[0].Channel.ID,
		BestScore:    ranked[0].Score,
		CostRange:    CostRange{Min: ranked[0].TotalCost, Max: ranked[0].TotalCost},
	}

	var sum float64
	for _, r := range ranked {
		sum += r.Score
		if r.TotalCost.LessThan(s.CostRange.Min) {
			s.CostRange.Min = r.TotalCost
		}
		if r.TotalCost.GreaterThan(s.CostRange.Max) {
			s.CostRange.Max = r.TotalCost
		}
	}
	s.AverageScore = math.Round(sum / float64(len(ranked)))
	return s
}

type Advisory struct {
	Code      string `json:"code"`
	ChannelID string `json:"channelId"`
}

// Advise highlights channels the user is likely to care about given their weights.
func Advise(ranked []StrategyResult, w PreferenceWeights) []Advisory {
	if len(ranked) == 0 {
		return nil
	}

	var out []Advisory
	if ranked[0].Score >= executeScore {
		out = append(out, Advisory{Code: "STRONGLY_RECOMMENDED", ChannelID: ranked[0].Channel.ID})
	}

	if w.Speed >= highPriority {
		for _, r := range ranked {
			if r.Channel.Speed >= goodRating {
				out = append(out, Advisory{Code: "FASTEST_OPTION", ChannelID: r.Channel.ID})
				break
			}
		}
	}

	if w.Cost >= highPriority {
		cheapest := ranked[0]
		for _, r := range ranked[1:] {
			if r.TotalCost.LessThan(cheapest.TotalCost) {
				cheapest = r
			}
		}
		out = append(out, Advisory{Code: "CHEAPEST_OPTION", ChannelID: cheapest.Channel.ID})
	}
	return out
}
