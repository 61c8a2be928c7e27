package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/omerorhan/fx-advisor/internal/metrics"
	"github.com/omerorhan/fx-advisor/internal/rates"
	"github.com/omerorhan/fx-advisor/internal/storage"
)

type fakeWarmer struct {
	calls int32
	err   error
}

func (w *fakeWarmer) Warm(ctx context.Context, pairs []rates.Pair, limit int) (int, error) {
	atomic.AddInt32(&w.calls, 1)
	if w.err != nil {
		return 0, w.err
	}
	return len(pairs), nil
}

func (w *fakeWarmer) Calls() int {
	return int(atomic.LoadInt32(&w.calls))
}

var testPairs = []rates.Pair{{From: "USD", To: "CNY"}, {From: "EUR", To: "CNY"}}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func newTestRefresher(cache storage.Cache, w Warmer, m *metrics.AdvisorMetrics) *Refresher {
	return NewRefresher(cache, w, testPairs, RefresherConfig{Interval: 50 * time.Millisecond}, nil, m)
}

func TestRefresher_SingleLeader(t *testing.T) {
	cache := storage.NewMemoryCache()
	w1, w2 := &fakeWarmer{}, &fakeWarmer{}

	r1 := newTestRefresher(cache, w1, nil)
	r2 := newTestRefresher(cache, w2, nil)

	if err := r1.Start(); err != nil {
		t.Fatalf("Failed to start r1: %v", err)
	}
	defer r1.Stop()
	if !eventually(t, time.Second, r1.IsLeader) {
		t.Fatal("First refresher never became leader")
	}

	if err := r2.Start(); err != nil {
		t.Fatalf("Failed to start r2: %v", err)
	}
	defer r2.Stop()
	time.Sleep(200 * time.Millisecond)

	if r2.IsLeader() {
		t.Error("Both refreshers are leaders - should only be one")
	}
	if w1.Calls() < 2 {
		t.Errorf("Leader refreshed %d times, want at least 2", w1.Calls())
	}
	if w2.Calls() != 0 {
		t.Errorf("Follower refreshed %d times, want 0", w2.Calls())
	}
}

func TestRefresher_FailoverAfterStop(t *testing.T) {
	cache := storage.NewMemoryCache()
	w1, w2 := &fakeWarmer{}, &fakeWarmer{}

	r1 := newTestRefresher(cache, w1, nil)
	r2 := newTestRefresher(cache, w2, nil)

	_ = r1.Start()
	if !eventually(t, time.Second, r1.IsLeader) {
		t.Fatal("First refresher never became leader")
	}
	_ = r2.Start()
	defer r2.Stop()

	r1.Stop()
	if r1.IsLeader() {
		t.Error("Stopped refresher still reports leadership")
	}

	if !eventually(t, time.Second, r2.IsLeader) {
		t.Fatal("Second refresher did not take over after leader stopped")
	}
	if !eventually(t, time.Second, func() bool { return w2.Calls() > 0 }) {
		t.Error("New leader never refreshed")
	}
}

func TestRefresher_RestartAfterStop(t *testing.T) {
	w := &fakeWarmer{}
	r := newTestRefresher(storage.NewMemoryCache(), w, nil)

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !eventually(t, time.Second, r.IsLeader) {
		t.Fatal("Refresher never became leader")
	}
	r.Stop()
	r.Stop()

	before := w.Calls()
	if err := r.Start(); err != nil {
		t.Fatalf("Start() after Stop() error = %v", err)
	}
	defer r.Stop()

	if !eventually(t, time.Second, r.IsLeader) {
		t.Fatal("Restarted refresher never became leader")
	}
	if !eventually(t, time.Second, func() bool { return w.Calls() > before }) {
		t.Error("Restarted refresher never refreshed")
	}
}

func TestRefresher_StopBeforeStart(t *testing.T) {
	r := newTestRefresher(storage.NewMemoryCache(), &fakeWarmer{}, nil)
	r.Stop()
	if r.IsLeader() {
		t.Error("Refresher that never started reports leadership")
	}
}

func TestRefresher_StartTwice(t *testing.T) {
	r := newTestRefresher(storage.NewMemoryCache(), &fakeWarmer{}, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop()

	if err := r.Start(); err == nil {
		t.Error("Expected error when starting twice")
	}
}

func TestRefresher_Metrics(t *testing.T) {
	m := metrics.NewAdvisorMetrics()
	r := newTestRefresher(storage.NewMemoryCache(), &fakeWarmer{err: errors.New("upstream down")}, m)

	_ = r.Start()
	if !eventually(t, time.Second, func() bool {
		return testutil.ToFloat64(m.RateRefreshTotal.WithLabelValues("failed")) > 0
	}) {
		t.Error("Expected failed refresh to be counted")
	}
	if testutil.ToFloat64(m.RefreshLeader) != 1 {
		t.Error("Expected leader gauge to be 1")
	}

	r.Stop()
	if testutil.ToFloat64(m.RefreshLeader) != 0 {
		t.Error("Expected leader gauge to reset on stop")
	}
}

func TestNewRefresher_LockOutlivesInterval(t *testing.T) {
	r := NewRefresher(storage.NewMemoryCache(), &fakeWarmer{}, testPairs,
		RefresherConfig{Interval: time.Minute, LockTTL: time.Second}, nil, nil)
	if r.lockTTL != 2*time.Minute {
		t.Errorf("lockTTL = %v, want 2m", r.lockTTL)
	}
	if r.PodID() == "" {
		t.Error("Expected a pod ID")
	}
}

func TestRefresher_RedisLeaderElection(t *testing.T) {
	opts := storage.DefaultCacheOptions()
	opts.KeyPrefix = fmt.Sprintf("fxadvisor_test_%d", time.Now().UnixNano())

	redisCache, err := storage.NewRedisCache("tcp://localhost:6379", storage.WithRedisOptions(opts))
	if err != nil {
		t.Skipf("Skipping test - Redis not available: %v", err)
	}
	defer redisCache.Close()

	r1 := newTestRefresher(redisCache, &fakeWarmer{}, nil)
	r2 := newTestRefresher(redisCache, &fakeWarmer{}, nil)
	_ = r1.Start()
	defer r1.Stop()
	_ = r2.Start()
	defer r2.Stop()

	time.Sleep(300 * time.Millisecond)

	if r1.IsLeader() == r2.IsLeader() {
		t.Errorf("Expected exactly one leader, got r1=%v r2=%v", r1.IsLeader(), r2.IsLeader())
	}
}

func TestAddJitter(t *testing.T) {
	base := 10 * time.Second
	for i := 0; i < 100; i++ {
		got := addJitter(base, 0.1)
		if got < 9*time.Second || got > 11*time.Second {
			t.Fatalf("addJitter() = %v outside ±10%%", got)
		}
	}
	if got := addJitter(base, 0); got != base {
		t.Errorf("addJitter(0) = %v, want %v", got, base)
	}
}
