package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/omerorhan/fx-advisor/internal/engine"
)

// parseWeights reads "convenience,security,speed,cost".
func parseWeights(s string) (engine.PreferenceWeights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return engine.PreferenceWeights{}, fmt.Errorf("weights must have 4 comma-separated values, got %d", len(parts))
	}

	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return engine.PreferenceWeights{}, fmt.Errorf("invalid weight %q: %w", p, err)
		}
		values[i] = v
	}

	return engine.PreferenceWeights{
		Convenience: values[0],
		Security:    values[1],
		Speed:       values[2],
		Cost:        values[3],
	}, nil
}
