package service

import (
	"errors"
	"time"
)

const (
	DefaultInitialLoadTimeout = 30 * time.Second
	DefaultLeaderLockTTL      = 2 * time.Minute
	DefaultWarmConcurrency    = 4
	DefaultStopTimeout        = 10 * time.Second

	inverseRatePlaces = 6
)

var (
	ErrNotInitialized = errors.New("service not initialized - call Initialize() first")
	// ErrStopped is returned by Initialize after Stop; the cache is closed by then.
	ErrStopped = errors.New("service stopped - create a new service")
)

// DefaultWarmPairs are refreshed at startup when no pairs are configured.
func DefaultWarmPairs() []string {
	return []string{"USD/CNY", "EUR/CNY", "GBP/CNY", "JPY/CNY", "HKD/CNY"}
}
