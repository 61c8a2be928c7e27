package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements the Cache interface using Redis
type RedisCache struct {
	client *redis.Client
	opts   *CacheOptions
	now    func() time.Time
}

// NewRedisCache connects to addr, e.g. "tcp://:password@localhost:6379/0"
func NewRedisCache(addr string, options ...RedisOption) (*RedisCache, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("can't parse url for redis: %w", err)
	}
	var passwd string
	if u.User != nil {
		passwd, _ = u.User.Password()
	}
	db := 0
	if 1 < len(u.Path) {
		db, err = strconv.Atoi(u.Path[1:])
		if err != nil {
			return nil, fmt.Errorf("can't convert string into int for redis db; %s; %w", addr, err)
		}
	}
	network := u.Scheme
	if network == "" || network == "redis" {
		network = "tcp"
	}

	client := redis.NewClient(&redis.Options{
		Network:  network,
		Addr:     u.Host,
		Password: passwd,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisCache{
		client: client,
		opts:   DefaultCacheOptions(),
		now:    time.Now,
	}

	for _, option := range options {
		option(cache)
	}

	return cache, nil
}

// RedisOption is a function that configures Redis cache options
type RedisOption func(*RedisCache)

// WithRedisOptions sets cache options
func WithRedisOptions(opts *CacheOptions) RedisOption {
	return func(rc *RedisCache) {
		rc.opts = opts
	}
}

func (rc *RedisCache) key(parts ...string) string {
	k := rc.opts.KeyPrefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (rc *RedisCache) SetQuote(ctx context.Context, quote Quote) error {
	ttl := quote.ExpiresAt.Sub(rc.now())
	if quote.ExpiresAt.IsZero() {
		ttl = rc.opts.DefaultTTL
		quote.ExpiresAt = rc.now().Add(ttl)
	}
	if ttl <= 0 {
		return fmt.Errorf("quote %s already expired", quote.Pair())
	}

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	return rc.client.Set(ctx, rc.key(quoteKeyPart, string(quote.Pair())), data, ttl).Err()
}

func (rc *RedisCache) GetQuote(ctx context.Context, pair PairKey) (*Quote, error) {
	data, err := rc.client.Get(ctx, rc.key(quoteKeyPart, string(pair))).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get quote from Redis: %w", err)
	}

	var quote Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	// key expiry and ExpiresAt can drift by a few ms
	if !quote.Fresh(rc.now()) {
		return nil, nil
	}
	return &quote, nil
}

// Leader election methods
func (rc *RedisCache) AcquireLeaderLock(ctx context.Context, podID string, ttl time.Duration) (bool, error) {
	key := rc.key(leaderLockPart)

	// Use SET with NX (only if not exists) and EX (expiration) for atomic leader election
	result := rc.client.SetNX(ctx, key, podID, ttl)
	if result.Err() != nil {
		return false, fmt.Errorf("failed to acquire leader lock: %w", result.Err())
	}
	if result.Val() {
		return true, nil
	}

	// Already ours: extend it
	current, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check current leader: %w", err)
	}
	if current != podID {
		return false, nil
	}
	if err := rc.client.Expire(ctx, key, ttl).Err(); err != nil {
		return false, fmt.Errorf("failed to extend leader lock: %w", err)
	}
	return true, nil
}

func (rc *RedisCache) ReleaseLeaderLock(ctx context.Context, podID string) error {
	key := rc.key(leaderLockPart)

	// Only release if we're the current leader
	currentLeader, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil // No leader to release
		}
		return fmt.Errorf("failed to check current leader: %w", err)
	}

	if currentLeader == podID {
		return rc.client.Del(ctx, key).Err()
	}
	return nil
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
