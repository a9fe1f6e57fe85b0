package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes one counter or histogram slot.
type MetricID uint16

const (
	// MetricCacheHit counts fresh cache reads that skipped the network.
	MetricCacheHit MetricID = iota
	// MetricCacheStale counts expired entries served during throttling.
	MetricCacheStale
	// MetricCacheMiss counts reads that found no usable entry.
	MetricCacheMiss
	// MetricThrottleHit counts fetches suppressed by the throttle window.
	MetricThrottleHit
	// MetricFetchSuccess counts completed backend fetches.
	MetricFetchSuccess
	// MetricFetchFailure counts failed backend fetches.
	MetricFetchFailure
	// MetricToggleBlocked counts premium-gated toggle no-ops.
	MetricToggleBlocked
	// MetricToggleEnableSuccess counts confirmed feature enables.
	MetricToggleEnableSuccess
	// MetricToggleEnableFailure counts failed feature enables.
	MetricToggleEnableFailure
	// MetricToggleDisableSuccess counts confirmed feature disables.
	MetricToggleDisableSuccess
	// MetricToggleDisableFailure counts failed feature disables.
	MetricToggleDisableFailure
	// MetricTwoFactorSetupRequested counts provisioning fetches.
	MetricTwoFactorSetupRequested
	// MetricTwoFactorVerifySuccess counts confirmed setup verifications.
	MetricTwoFactorVerifySuccess
	// MetricTwoFactorVerifyFailure counts failed setup verifications.
	MetricTwoFactorVerifyFailure
	// MetricTwoFactorDisableSuccess counts confirmed 2FA disables.
	MetricTwoFactorDisableSuccess
	// MetricTwoFactorDisableFailure counts failed 2FA disables.
	MetricTwoFactorDisableFailure
	// MetricMethodChangeSuccess counts confirmed auth-method changes.
	MetricMethodChangeSuccess
	// MetricMethodChangeFailure counts failed auth-method changes.
	MetricMethodChangeFailure
	// MetricRateLimitHit counts backend cooldown responses.
	MetricRateLimitHit
	// MetricFetchLatency is the backend fetch latency histogram.
	MetricFetchLatency

	// MetricIDCount is the number of metric slots.
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// Config controls which metric families are recorded.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds all counter and histogram storage for one engine.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]metricHistogram
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a [Metrics] instance. When cfg.Enabled is false all write
// operations are no-ops.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are being recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only [MetricFetchLatency] has histogram
// storage.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= MetricIDCount {
		return
	}
	if id != MetricFetchLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricFetchLatency].buckets[i])
		}
		s.Histograms[MetricFetchLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
