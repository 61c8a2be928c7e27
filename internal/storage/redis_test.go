package storage

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	opts := DefaultCacheOptions()
	opts.KeyPrefix = fmt.Sprintf("fxadvisor-test-%d", time.Now().UnixNano())

	cache, err := NewRedisCache("tcp://localhost:6379", WithRedisOptions(opts))
	if err != nil {
		t.Skipf("Skipping test - Redis not available: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache("tcp://localhost:6379/notanumber"); err == nil {
		t.Error("Expected error for non-numeric db index")
	}
}

func TestRedisCache_Quote(t *testing.T) {
	cache := newTestRedis(t)
	ctx := context.Background()

	miss, err := cache.GetQuote(ctx, "USD->CNY")
	if err != nil {
		t.Fatalf("GetQuote on empty cache failed: %v", err)
	}
	if miss != nil {
		t.Fatalf("Expected miss, got %+v", miss)
	}

	quote := Quote{
		From:      "USD",
		To:        "CNY",
		Rate:      7.2345,
		Source:    "test",
		FetchedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Minute),
	}
	if err := cache.SetQuote(ctx, quote); err != nil {
		t.Fatalf("SetQuote failed: %v", err)
	}

	got, err := cache.GetQuote(ctx, "USD->CNY")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if got == nil || got.Rate != quote.Rate || got.Source != "test" {
		t.Errorf("Expected %+v, got %+v", quote, got)
	}
}

func TestRedisCache_QuoteExpires(t *testing.T) {
	cache := newTestRedis(t)
	ctx := context.Background()

	if err := cache.SetQuote(ctx, Quote{From: "EUR", To: "CNY", Rate: 7.89, ExpiresAt: time.Now().Add(1500 * time.Millisecond)}); err != nil {
		t.Fatalf("SetQuote failed: %v", err)
	}
	time.Sleep(2 * time.Second)

	got, err := cache.GetQuote(ctx, "EUR->CNY")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected expired quote to be gone, got %+v", got)
	}
}

func TestRedisCache_LeaderLock(t *testing.T) {
	cache := newTestRedis(t)
	ctx := context.Background()

	ok, err := cache.AcquireLeaderLock(ctx, "pod-1", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("pod-1 should acquire lock: ok=%v err=%v", ok, err)
	}

	ok, err = cache.AcquireLeaderLock(ctx, "pod-2", 10*time.Second)
	if err != nil {
		t.Fatalf("AcquireLeaderLock failed: %v", err)
	}
	if ok {
		t.Error("pod-2 should not acquire a held lock")
	}

	ok, err = cache.AcquireLeaderLock(ctx, "pod-1", 10*time.Second)
	if err != nil || !ok {
		t.Errorf("pod-1 should renew its own lock: ok=%v err=%v", ok, err)
	}

	if err := cache.ReleaseLeaderLock(ctx, "pod-2"); err != nil {
		t.Fatalf("ReleaseLeaderLock failed: %v", err)
	}
	if ok, _ := cache.AcquireLeaderLock(ctx, "pod-2", 10*time.Second); ok {
		t.Error("release by non-holder must not free the lock")
	}

	if err := cache.ReleaseLeaderLock(ctx, "pod-1"); err != nil {
		t.Fatalf("ReleaseLeaderLock failed: %v", err)
	}
	if ok, _ := cache.AcquireLeaderLock(ctx, "pod-2", 10*time.Second); !ok {
		t.Error("pod-2 should acquire after release")
	}
	_ = cache.ReleaseLeaderLock(ctx, "pod-2")
}
