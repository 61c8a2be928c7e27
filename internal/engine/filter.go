package engine

import (
	"time"
)

// FilterCriteria carries the hard constraints a channel must satisfy.
type FilterCriteria struct {
	Amount   float64
	Method   Method
	Location string
	Urgency  Urgency
	Deadline *time.Time
	Now      time.Time
}

// Filter returns the channels that pass every constraint, preserving input order.
// An empty result is a valid outcome.
func Filter(channels []Channel, criteria FilterCriteria, locations LocationPolicy) []Channel {
	var eligible []Channel
	for _, ch := range channels {
		if !methodSupported(ch, criteria.Method) {
			continue
		}
		if criteria.Amount < ch.Availability.MinAmount || criteria.Amount > ch.Availability.MaxAmount {
			continue
		}
		if !locations.Eligible(ch.Type, criteria.Location) {
			continue
		}
		if criteria.Deadline != nil && criteria.Now.Add(ch.Processing(criteria.Urgency)).After(*criteria.Deadline) {
			continue
		}
		eligible = append(eligible, ch)
	}
	return eligible
}

func methodSupported(ch Channel, m Method) bool {
	switch m {
	case Cash:
		return ch.Availability.SupportsCash
	case Digital:
		return ch.Availability.SupportsDigital
	}
	return false
}
