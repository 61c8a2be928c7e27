package service

import (
	"time"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/market"
)

type Recommendation struct {
	ID string `json:"id"`
	engine.Decision
	MarketConditions market.Conditions `json:"marketConditions"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

type RateQuote struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	Pair        string    `json:"pair"`
	Rate        float64   `json:"rate"`
	InverseRate float64   `json:"inverseRate"`
	IsRealTime  bool      `json:"isRealTime"`
	Timestamp   time.Time `json:"timestamp"`
}
