package service

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/omerorhan/fx-advisor/internal/rates"
)

// addJitter spreads refreshes across instances.
// jitterPercent should be between 0.0-1.0 (e.g., 0.1 = ±10%)
func addJitter(duration time.Duration, jitterPercent float64) time.Duration {
	if jitterPercent <= 0 {
		return duration
	}

	jitterRange := float64(duration) * jitterPercent
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange

	result := time.Duration(float64(duration) + jitter)
	if result <= 0 {
		result = duration / 2
	}
	return result
}

// newPodID combines hostname and pid with a random suffix so restarts never reuse an ID.
func newPodID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])
}

func parsePairs(raw []string) ([]rates.Pair, error) {
	pairs := make([]rates.Pair, 0, len(raw))
	for _, s := range raw {
		p, err := rates.ParsePair(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
