// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 meddsl Contributors

// Package cache provides concurrent, LISTEN/NOTIFY-invalidated access to
// compiled RuleSets without hitting the database on every execution.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/meddsl/meddsl/internal/ruleset"
	"github.com/meddsl/meddsl/internal/store"
)

// Default cache configuration values.
const (
	defaultStalenessThreshold = 30 * time.Second
	defaultReconnectInitial   = 100 * time.Millisecond
	defaultReconnectMax       = 30 * time.Second
)

// Listener abstracts the PostgreSQL LISTEN/NOTIFY mechanism for testability.
// Implementations return a channel that emits notification payloads. The
// channel should close when the context is cancelled.
type Listener interface {
	Listen(ctx context.Context) (<-chan string, error)
}

// CachedRuleSet pairs a stored RuleSet record with its parsed form.
type CachedRuleSet struct {
	ID      string
	Profile string
	Hash    string
	Parsed  ruleset.RuleSet
}

// Snapshot is an immutable, read-only view of enabled RuleSets, keyed by
// profile. It is safe for concurrent reads without locking.
type Snapshot struct {
	ByProfile map[string]CachedRuleSet
	CreatedAt time.Time
}

// Option configures Cache behavior.
type Option func(*config)

type config struct {
	stalenessThreshold time.Duration
	reconnectInitial   time.Duration
	reconnectMax       time.Duration
	lastUpdateGauge    prometheus.Gauge
}

// WithStalenessThreshold sets the duration after which the cache is
// considered stale.
func WithStalenessThreshold(d time.Duration) Option {
	return func(c *config) { c.stalenessThreshold = d }
}

// WithReconnectConfig sets the exponential backoff bounds for LISTEN/NOTIFY
// reconnection attempts.
func WithReconnectConfig(initial, maxInterval time.Duration) Option {
	return func(c *config) {
		c.reconnectInitial = initial
		c.reconnectMax = maxInterval
	}
}

// WithLastUpdateGauge sets the Prometheus gauge recording the last
// successful reload's Unix timestamp.
func WithLastUpdateGauge(g prometheus.Gauge) Option {
	return func(c *config) { c.lastUpdateGauge = g }
}

// Cache provides concurrent access to compiled RuleSets with
// LISTEN/NOTIFY-based invalidation and staleness detection.
type Cache struct {
	store store.RuleSetStore
	cfg   config

	mu       sync.RWMutex
	snapshot *Snapshot

	// lastUpdate is the Unix nanosecond timestamp of the last successful
	// reload; zero means no reload has occurred.
	lastUpdate atomic.Int64

	wg sync.WaitGroup
}

// New creates a Cache over the given store. Call Reload to populate the
// cache before first use.
func New(s store.RuleSetStore, opts ...Option) *Cache {
	cfg := config{
		stalenessThreshold: defaultStalenessThreshold,
		reconnectInitial:   defaultReconnectInitial,
		reconnectMax:       defaultReconnectMax,
		lastUpdateGauge:    LastReload,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache{
		store:    s,
		cfg:      cfg,
		snapshot: &Snapshot{ByProfile: map[string]CachedRuleSet{}},
	}
}

// Snapshot returns the current read-only RuleSet snapshot. The returned
// snapshot's map is a defensive copy; callers may not mutate the live cache.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()

	copied := &Snapshot{
		ByProfile: make(map[string]CachedRuleSet, len(snap.ByProfile)),
		CreatedAt: snap.CreatedAt,
	}
	for k, v := range snap.ByProfile {
		copied.ByProfile[k] = v
	}
	return copied
}

// Lookup returns the cached RuleSet for profile, or false if none is
// currently enabled.
func (c *Cache) Lookup(profile string) (CachedRuleSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rs, ok := c.snapshot.ByProfile[profile]
	return rs, ok
}

// Reload fetches every enabled RuleSet from the store, parses it, and
// atomically swaps the snapshot. The write lock is held only for the
// pointer swap, not for the fetch or parse.
func (c *Cache) Reload(ctx context.Context) error {
	stored, err := c.store.ListEnabled(ctx)
	if err != nil {
		return oops.Code("CACHE_RELOAD_FAILED").With("operation", "list enabled").Wrap(err)
	}

	byProfile := make(map[string]CachedRuleSet, len(stored))
	for _, sr := range stored {
		var raw map[string]any
		if err := json.Unmarshal(sr.RawJSON, &raw); err != nil {
			return oops.Code("CACHE_RELOAD_FAILED").With("profile", sr.Profile).With("operation", "decode raw_json").Wrap(err)
		}
		parsed, err := ruleset.FromRaw(raw)
		if err != nil {
			return oops.Code("CACHE_RELOAD_FAILED").With("profile", sr.Profile).With("operation", "parse ruleset").Wrap(err)
		}
		byProfile[sr.Profile] = CachedRuleSet{
			ID:      sr.ID,
			Profile: sr.Profile,
			Hash:    sr.Hash,
			Parsed:  parsed,
		}
	}

	snap := &Snapshot{ByProfile: byProfile, CreatedAt: time.Now()}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	now := time.Now()
	c.lastUpdate.Store(now.UnixNano())
	if c.cfg.lastUpdateGauge != nil {
		c.cfg.lastUpdateGauge.Set(float64(now.Unix()))
	}
	return nil
}

// IsStale returns true if no successful reload has occurred within the
// staleness threshold. Callers should refuse to execute against a stale
// cache rather than risk running an outdated RuleSet silently.
func (c *Cache) IsStale() bool {
	last := c.lastUpdate.Load()
	if last == 0 {
		return true
	}
	return time.Since(time.Unix(0, last)) > c.cfg.stalenessThreshold
}

// StartWithListener spawns a background goroutine that reloads the cache
// on every notification from listener, reconnecting with exponential
// backoff if Listen itself fails. The goroutine exits when ctx is
// cancelled.
func (c *Cache) StartWithListener(ctx context.Context, listener Listener) {
	c.wg.Add(1)
	go c.listenLoop(ctx, listener)
}

// Wait blocks until the background listener goroutine has exited.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) listenLoop(ctx context.Context, listener Listener) {
	defer c.wg.Done()

	for {
		var ch <-chan string
		connectErr := retry.Do(ctx, c.reconnectBackoff(), func(ctx context.Context) error {
			var err error
			ch, err = listener.Listen(ctx)
			if err != nil {
				slog.Warn("cache listener connect failed, retrying", slog.String("error", err.Error()))
				return retry.RetryableError(err)
			}
			return nil
		})
		if connectErr != nil {
			return // context cancelled while waiting to reconnect
		}

		c.drain(ctx, ch)
		if ctx.Err() != nil {
			return
		}
	}
}

// reconnectBackoff builds the exponential backoff used between failed
// LISTEN/NOTIFY connection attempts, capped at cfg.reconnectMax.
func (c *Cache) reconnectBackoff() retry.Backoff {
	b, err := retry.NewExponential(c.cfg.reconnectInitial)
	if err != nil {
		b = retry.NewConstant(c.cfg.reconnectInitial)
	}
	return retry.WithCappedDuration(c.cfg.reconnectMax, b)
}

func (c *Cache) drain(ctx context.Context, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := c.Reload(ctx); err != nil {
				slog.Error("cache reload on notification failed", slog.String("error", err.Error()))
			}
		}
	}
}

// LastReload is the default Prometheus gauge tracking the last successful
// RuleSet cache reload. Register it with RegisterMetrics at startup.
var LastReload = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "meddsl_ruleset_cache_last_reload",
	Help: "Unix timestamp of the last successful RuleSet cache reload",
})

// RegisterMetrics registers cache metrics with the given Prometheus registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LastReload)
}
