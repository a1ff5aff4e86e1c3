// Package simrunner wires engine.Simulate together with the result cache
// and Prometheus metrics, checking the cache before every run and
// recording outcomes after it.
package simrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hcoa-iot/csmasim/internal/cache"
	"github.com/hcoa-iot/csmasim/internal/engine"
	simmetrics "github.com/hcoa-iot/csmasim/internal/metrics"
)

// ErrInvalidPacketGenMode indicates a Request's PacketGenMode string did
// not match a recognized engine.PacketGenMode.
var ErrInvalidPacketGenMode = errors.New("simrunner: packet_gen_mode must be Random or Interval")

// Request is the caller-facing simulation request: an engine.Config plus
// the seed that makes the run reproducible.
type Request struct {
	Config engine.Config
	Seed   uint64
}

// Runner executes simulation requests, consulting the result cache before
// falling back to engine.Simulate. Every cache lookup is recorded as a hit
// or miss; run metrics (count, duration, channel fractions, outcomes) are
// recorded only for requests that execute engine.Simulate, not for cache
// hits.
type Runner struct {
	cache   *cache.ResultCache
	metrics *simmetrics.Collector
	logger  *slog.Logger
	nowSec  func() float64
}

// Option configures optional Runner parameters.
type Option func(*Runner)

// WithCache attaches a result cache. If c is nil, caching is disabled.
func WithCache(c *cache.ResultCache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithMetrics attaches a metrics collector. If m is nil, a collector
// registered against a private registry is used so metric calls are
// always safe to make.
func WithMetrics(m *simmetrics.Collector) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// withClock overrides the wall-clock source used to time runs. Exposed
// only for tests; production callers never need it.
func withClock(now func() float64) Option {
	return func(r *Runner) {
		r.nowSec = now
	}
}

// New creates a Runner. A metrics collector registered against a private
// registry is always present so Run never needs a nil check.
func New(logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:  logger,
		metrics: simmetrics.NewCollector(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a simulation request, serving from cache when available.
// The returned bool reports whether the result was a cache hit.
func (r *Runner) Run(ctx context.Context, req Request) (engine.Result, bool, error) {
	var key string
	if r.cache != nil {
		key = cache.Key(req.Config, req.Seed)

		cached, err := r.cache.Get(ctx, key)
		switch {
		case err == nil:
			r.metrics.RecordCacheHit()
			r.logger.Debug("result cache hit", slog.String("key", key))
			return cached, true, nil
		case errors.Is(err, cache.ErrMiss):
			r.metrics.RecordCacheMiss()
		default:
			r.logger.Warn("result cache lookup failed, running uncached",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	start := r.clockSeconds()
	result := engine.Simulate(req.Config, engine.NewRNG(req.Seed))
	elapsed := r.clockSeconds() - start

	r.metrics.ObserveRun(result, elapsed)

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, result); err != nil {
			r.logger.Warn("result cache store failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	return result, false, nil
}

// clockSeconds returns a monotonic-ish second counter for duration
// measurement. Real callers get wall-clock time from wallClockSeconds;
// tests inject withClock to make the measured duration deterministic.
func (r *Runner) clockSeconds() float64 {
	if r.nowSec != nil {
		return r.nowSec()
	}
	return wallClockSeconds()
}

// ParsePacketGenMode maps a configuration string to an engine.PacketGenMode.
func ParsePacketGenMode(s string) (engine.PacketGenMode, error) {
	switch s {
	case "Random":
		return engine.ModeRandom, nil
	case "Interval":
		return engine.ModeInterval, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidPacketGenMode)
	}
}
