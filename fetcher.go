package walletsec

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// FetchFunc produces fresh data for one cache key.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// throttledFetcher is the read-through layer in front of the backend: TTL
// cache hits skip the network, a per-key throttle window suppresses request
// storms from independently mounted views, and expired entries are served as
// stale fallbacks inside the window.
type throttledFetcher struct {
	store    *cacheStore
	interval time.Duration
	metrics  *Metrics
	now      func() time.Time

	mu          sync.Mutex
	lastFetched map[string]time.Time
}

func newThrottledFetcher(store *cacheStore, interval time.Duration, metrics *Metrics) *throttledFetcher {
	return &throttledFetcher{
		store:       store,
		interval:    interval,
		metrics:     metrics,
		now:         time.Now,
		lastFetched: make(map[string]time.Time),
	}
}

func (f *throttledFetcher) metricInc(id MetricID) {
	if f.metrics != nil {
		f.metrics.Inc(id)
	}
}

// FetchWithCache resolves key through the cache. Order of checks:
//
//  1. Fresh entry (age < ttl): returned without a network call.
//  2. Throttle window (a fetch for this key completed < MinInterval ago):
//     an existing entry is returned even when expired; with no entry the
//     caller blocks until the window elapses, then falls through.
//  3. Fresh fetch: stored with the current timestamp and returned. Failures
//     propagate without retry.
func (f *throttledFetcher) FetchWithCache(ctx context.Context, key string, ttl time.Duration, fn FetchFunc) (json.RawMessage, error) {
	entry, err := f.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	now := f.now()
	if entry != nil && now.UnixMilli() < entry.Timestamp+ttl.Milliseconds() {
		f.metricInc(MetricCacheHit)
		return entry.Data, nil
	}

	if remaining := f.throttleRemaining(key, now); remaining > 0 {
		f.metricInc(MetricThrottleHit)
		if entry != nil {
			f.metricInc(MetricCacheStale)
			return entry.Data, nil
		}
		if err := sleepCtx(ctx, remaining); err != nil {
			return nil, err
		}
	}

	f.metricInc(MetricCacheMiss)

	start := f.now()
	data, err := fn(ctx)
	completed := f.now()
	f.markFetched(key, completed)

	if f.metrics != nil && f.metrics.LatencyEnabled() {
		f.metrics.Observe(MetricFetchLatency, completed.Sub(start))
	}
	if err != nil {
		f.metricInc(MetricFetchFailure)
		return nil, err
	}
	f.metricInc(MetricFetchSuccess)

	if err := f.store.Set(ctx, key, data, completed); err != nil {
		return nil, err
	}
	return data, nil
}

// ClearCache deletes the entry for key. The throttle clock is untouched: a
// cleared key is still subject to the inter-request interval.
func (f *throttledFetcher) ClearCache(ctx context.Context, key string) error {
	return f.store.Clear(ctx, key)
}

// ForceRefresh clears the entry and immediately fetches a fresh one.
func (f *throttledFetcher) ForceRefresh(ctx context.Context, key string, ttl time.Duration, fn FetchFunc) (json.RawMessage, error) {
	if err := f.ClearCache(ctx, key); err != nil {
		return nil, err
	}
	return f.FetchWithCache(ctx, key, ttl, fn)
}

func (f *throttledFetcher) throttleRemaining(key string, now time.Time) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	last, ok := f.lastFetched[key]
	if !ok {
		return 0
	}
	elapsed := now.Sub(last)
	if elapsed >= f.interval {
		return 0
	}
	return f.interval - elapsed
}

func (f *throttledFetcher) markFetched(key string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFetched[key] = at
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
