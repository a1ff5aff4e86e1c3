// Package cache provides Redis-backed memoization of simulation results.
//
// engine.Simulate is a pure function of (Config, seed): running it twice
// with the same inputs always produces the same Result. That makes a
// simple key-value cache, keyed by a hash of the inputs, safe and
// effective for repeated requests against the same scenario.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hcoa-iot/csmasim/internal/engine"
)

// ErrMiss indicates no cached result exists for the given key.
var ErrMiss = errors.New("cache: miss")

// ResultCache memoizes engine.Result values in Redis, keyed by a hash of
// the Config and seed that produced them.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Connect dials addr and retries with exponential backoff, bounded by
// connectTimeout, until the server answers PING or the timeout elapses.
// Each retry is logged at Warn level, so a Redis that is not up yet when
// the daemon starts shows up in the logs.
func Connect(ctx context.Context, addr string, ttl, connectTimeout time.Duration, logger *slog.Logger) (*ResultCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = connectTimeout

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("result cache connect retrying",
			slog.String("addr", addr),
			slog.String("error", err.Error()),
			slog.Duration("wait", wait),
		)
	}

	if err := backoff.RetryNotify(ping, backoff.WithContext(bo, ctx), notify); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to result cache at %s: %w", addr, err)
	}

	logger.Info("result cache connected", slog.String("addr", addr))

	return &ResultCache{client: client, ttl: ttl, logger: logger}, nil
}

// Close releases the underlying Redis connection.
func (c *ResultCache) Close() error {
	return c.client.Close()
}

// Key derives the cache key for a (Config, seed) pair. Two requests with
// equal Config and seed always derive equal keys.
func Key(cfg engine.Config, seed uint64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%+v|seed=%d", cfg, seed)
	return "csmasim:result:" + hex.EncodeToString(h.Sum(nil))
}

// Get looks up a previously stored Result. Returns ErrMiss if absent.
func (c *ResultCache) Get(ctx context.Context, key string) (engine.Result, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.Result{}, ErrMiss
	}
	if err != nil {
		return engine.Result{}, fmt.Errorf("get cached result %s: %w", key, err)
	}

	var result engine.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return engine.Result{}, fmt.Errorf("decode cached result %s: %w", key, err)
	}

	return result, nil
}

// Put stores a Result under key with the cache's configured TTL.
func (c *ResultCache) Put(ctx context.Context, key string, result engine.Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result for %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("put cached result %s: %w", key, err)
	}

	return nil
}
