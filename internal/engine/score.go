package engine

import (
	"math"
)

const (
	// ratingScale maps a 1-5 rating onto 0-100.
	ratingScale  = 20
	neutralScore = 50
	maxRating    = 5
)

// Score rates a channel against the user's weights on a 0-100 scale. Cost is scored
// as the inverse of the base fee rate. A zero weight total yields the neutral score.
func Score(ch Channel, w PreferenceWeights) float64 {
	w = w.scaled()
	total := w.total()
	if total <= 0 {
		return neutralScore
	}

	costScore := math.Max(0, maxRating-ch.BaseFeeRate)
	raw := float64(ch.Convenience)*w.Convenience +
		float64(ch.Security)*w.Security +
		float64(ch.Speed)*w.Speed +
		costScore*w.Cost

	score := ratingScale * raw / total
	return math.Round(math.Min(100, math.Max(0, score)))
}
