package storage

import (
	"context"
	"time"
)

// Cache defines the interface for rate caching operations
type Cache interface {
	// SetQuote stores a quote until its ExpiresAt.
	SetQuote(ctx context.Context, quote Quote) error
	// GetQuote returns nil, nil on a miss or an expired entry.
	GetQuote(ctx context.Context, pair PairKey) (*Quote, error)
	AcquireLeaderLock(ctx context.Context, podID string, ttl time.Duration) (bool, error)
	ReleaseLeaderLock(ctx context.Context, podID string) error
	Close() error
}

type CacheOptions struct {
	DefaultTTL time.Duration
	KeyPrefix  string
}

func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL: 10 * time.Minute,
		KeyPrefix:  defaultKeyPrefix,
	}
}
