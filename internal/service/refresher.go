package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/metrics"
	"github.com/omerorhan/fx-advisor/internal/rates"
	"github.com/omerorhan/fx-advisor/internal/storage"
)

// Warmer refreshes a set of pairs, at most limit at a time.
type Warmer interface {
	Warm(ctx context.Context, pairs []rates.Pair, limit int) (int, error)
}

type RefresherConfig struct {
	Interval      time.Duration
	LockTTL       time.Duration
	Concurrency   int
	EnableLogging bool
}

// Refresher keeps the shared rate cache warm. Every instance runs one, but only the
// holder of the leader lock calls the upstream API; the others read what it stored.
type Refresher struct {
	cache       storage.Cache
	warmer      Warmer
	pairs       []rates.Pair
	podID       string
	interval    time.Duration
	lockTTL     time.Duration
	concurrency int
	logging     bool
	logger      *zap.SugaredLogger
	metrics     *metrics.AdvisorMetrics

	mu       sync.RWMutex
	isLeader bool

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	startMu sync.Mutex
}

func NewRefresher(cache storage.Cache, warmer Warmer, pairs []rates.Pair, cfg RefresherConfig, logger *zap.Logger, m *metrics.AdvisorMetrics) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	// the lock must outlive a tick or leadership flaps between instances
	if cfg.LockTTL < 2*cfg.Interval {
		cfg.LockTTL = 2 * cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewAdvisorMetrics()
	}

	return &Refresher{
		cache:       cache,
		warmer:      warmer,
		pairs:       pairs,
		podID:       newPodID(),
		interval:    cfg.Interval,
		lockTTL:     cfg.LockTTL,
		concurrency: cfg.Concurrency,
		logging:     cfg.EnableLogging,
		logger:      logger.Sugar(),
		metrics:     m,
	}
}

// Start launches the refresh loop. A stopped refresher can be started again.
func (r *Refresher) Start() error {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	if r.started {
		return fmt.Errorf("refresher already started")
	}

	r.log("Starting refresher (Pod ID: %s, %d pairs)", r.podID, len(r.pairs))

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go r.mainLoop(ctx)

	r.started = true
	return nil
}

// Stop cancels the loop, waits for an in-flight refresh and gives up leadership.
// Stopping a refresher that is not running is a no-op.
func (r *Refresher) Stop() {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	if !r.started {
		return
	}

	r.log("Stopping refresher...")
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(DefaultStopTimeout):
		r.log("Timeout waiting for refresher to stop")
	}

	r.mu.Lock()
	wasLeader := r.isLeader
	r.isLeader = false
	r.mu.Unlock()

	if wasLeader {
		r.releaseLeadership()
	}
	r.metrics.SetLeader(false)
	r.started = false
	r.log("Refresher stopped")
}

func (r *Refresher) IsLeader() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isLeader
}

func (r *Refresher) PodID() string {
	return r.podID
}

func (r *Refresher) mainLoop(ctx context.Context) {
	defer r.wg.Done()

	interval := addJitter(r.interval, 0.1)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.log("Refresh loop started (base interval: %v, jittered: %v)", r.interval, interval)

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	if r.performLeaderElection(ctx) {
		r.refresh(ctx)
	}
}

// performLeaderElection acquires or renews the lock and reports whether this instance leads.
func (r *Refresher) performLeaderElection(parent context.Context) bool {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	acquired, err := r.cache.AcquireLeaderLock(ctx, r.podID, r.lockTTL)
	if err != nil {
		r.log("Failed to acquire leadership: %v", err)
		acquired = false
	}

	r.mu.Lock()
	was := r.isLeader
	r.isLeader = acquired
	r.mu.Unlock()

	switch {
	case acquired && !was:
		r.log("Became leader, refreshing rates")
	case !acquired && was:
		r.log("Leadership lost, becoming follower")
	}
	r.metrics.SetLeader(acquired)
	return acquired
}

func (r *Refresher) refresh(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, r.interval)
	defer cancel()

	warmed, err := r.warmer.Warm(ctx, r.pairs, r.concurrency)
	r.metrics.RecordRefresh(warmed, err)
	if err != nil {
		r.log("Refreshed %d/%d pairs: %v", warmed, len(r.pairs), err)
		return
	}
	r.log("Refreshed %d pairs", warmed)
}

func (r *Refresher) releaseLeadership() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.cache.ReleaseLeaderLock(ctx, r.podID); err != nil {
		r.log("Failed to release leadership: %v", err)
		return
	}
	r.log("Leadership released")
}

func (r *Refresher) log(format string, args ...interface{}) {
	if r.logging {
		r.logger.Infof("[Refresher] "+format, args...)
	}
}
