package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type leaderLock struct {
	holder    string
	expiresAt time.Time
}

// MemoryCache implements the Cache interface using in-memory storage
type MemoryCache struct {
	mu     sync.RWMutex
	quotes map[PairKey]Quote
	leader leaderLock
	opts   *CacheOptions
	now    func() time.Time
}

// NewMemoryCache creates a new in-memory cache instance
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		quotes: make(map[PairKey]Quote),
		opts:   DefaultCacheOptions(),
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests to move past TTLs.
func (mc *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	mc.mu.Lock()
	mc.now = now
	mc.mu.Unlock()
	return mc
}

func (mc *MemoryCache) SetQuote(_ context.Context, quote Quote) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	if quote.ExpiresAt.IsZero() {
		quote.ExpiresAt = now.Add(mc.opts.DefaultTTL)
	}
	if !quote.Fresh(now) {
		return fmt.Errorf("quote %s already expired", quote.Pair())
	}
	mc.quotes[quote.Pair()] = quote
	return nil
}

func (mc *MemoryCache) GetQuote(_ context.Context, pair PairKey) (*Quote, error) {
	mc.mu.RLock()
	q, found := mc.quotes[pair]
	now := mc.now()
	mc.mu.RUnlock()

	if !found {
		return nil, nil
	}
	if !q.Fresh(now) {
		mc.mu.Lock()
		if cur, ok := mc.quotes[pair]; ok && !cur.Fresh(now) {
			delete(mc.quotes, pair)
		}
		mc.mu.Unlock()
		return nil, nil
	}
	return &q, nil
}

// Len returns the number of stored quotes, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.quotes)
}

func (mc *MemoryCache) AcquireLeaderLock(_ context.Context, podID string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	if mc.leader.holder != "" && mc.leader.holder != podID && now.Before(mc.leader.expiresAt) {
		return false, nil
	}
	mc.leader = leaderLock{holder: podID, expiresAt: now.Add(ttl)}
	return true, nil
}

func (mc *MemoryCache) ReleaseLeaderLock(_ context.Context, podID string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.leader.holder == podID {
		mc.leader = leaderLock{}
	}
	return nil
}

func (mc *MemoryCache) Close() error {
	return nil
}
