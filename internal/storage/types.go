package storage

import (
	"strings"
	"time"
)

type PairKey string

func NewPairKey(from, to string) PairKey {
	return PairKey(strings.ToUpper(from) + "->" + strings.ToUpper(to))
}

// Quote is a cached base rate for one currency pair.
type Quote struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (q Quote) Pair() PairKey {
	return NewPairKey(q.From, q.To)
}

// Fresh reports whether the quote is still inside its TTL at now.
func (q Quote) Fresh(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.Before(q.ExpiresAt)
}
