package engine

import (
	"math"
	"math/rand"
	"testing"
)

func TestScore(t *testing.T) {
	catalog := DefaultCatalog()
	get := func(id string) Channel {
		ch, err := catalog.Get(id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		return ch
	}

	tests := []struct {
		name    string
		channel string
		weights PreferenceWeights
		want    float64
	}{
		{name: "convenience only", channel: "online_bank", weights: PreferenceWeights{Convenience: 1}, want: 100},
		{name: "security only", channel: "major_bank", weights: PreferenceWeights{Security: 5}, want: 100},
		{name: "speed only on slow channel", channel: "major_bank", weights: PreferenceWeights{Speed: 2}, want: 40},
		{name: "equal weights", channel: "exchange_shop", weights: PreferenceWeights{1, 1, 1, 1}, want: 70},
		{name: "equal weights airport", channel: "airport_exchange", weights: PreferenceWeights{1, 1, 1, 1}, want: 75},
		{name: "scale invariant", channel: "airport_exchange", weights: PreferenceWeights{7, 7, 7, 7}, want: 75},
		{name: "mixed weights", channel: "major_bank", weights: PreferenceWeights{Convenience: 2, Security: 1, Speed: 1}, want: 65},
		{name: "cost only inverts fee", channel: "airport_exchange", weights: PreferenceWeights{Cost: 1}, want: 60},
		{name: "zero weights neutral", channel: "online_bank", weights: PreferenceWeights{}, want: 50},
		{name: "huge weights do not overflow", channel: "airport_exchange", weights: PreferenceWeights{1e308, 1e308, 1e308, 1e308}, want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(get(tt.channel), tt.weights); got != tt.want {
				t.Errorf("Score(%s, %+v) = %v, want %v", tt.channel, tt.weights, got, tt.want)
			}
		})
	}
}

func TestScore_CostScoreClampsAtZero(t *testing.T) {
	ch := Channel{Convenience: 1, Security: 1, Speed: 1, BaseFeeRate: 7.5}
	if got := Score(ch, PreferenceWeights{Cost: 1}); got != 0 {
		t.Errorf("Score() = %v, want 0 for fee above 5%%", got)
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		ch := randomChannel(rng, 0)
		w := PreferenceWeights{
			Convenience: rng.Float64() * 100,
			Security:    rng.Float64() * 100,
			Speed:       rng.Float64() * 100,
			Cost:        rng.Float64() * 100,
		}
		if got := Score(ch, w); got < 0 || got > 100 {
			t.Fatalf("Score(%+v, %+v) = %v outside [0,100]", ch, w, got)
		}
	}

	extremes := []PreferenceWeights{
		{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		{Convenience: math.MaxFloat64, Cost: 1},
		{1e300, 1e-300, 0, 1e308},
		{Speed: math.SmallestNonzeroFloat64},
	}
	for _, w := range extremes {
		ch := randomChannel(rng, 0)
		got := Score(ch, w)
		if math.IsNaN(got) || got < 0 || got > 100 {
			t.Errorf("Score(%+v, %+v) = %v outside [0,100]", ch, w, got)
		}
	}
}
