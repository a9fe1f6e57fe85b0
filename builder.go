package walletsec

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaultik/walletsec/feature"
	internalaudit "github.com/vaultik/walletsec/internal/audit"
)

// Builder defines a public type used by walletsec APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// A Builder is single-use: Build may be called once.
type Builder struct {
	config    Config
	redis     *redis.Client
	backend   Backend
	auditSink AuditSink
	built     bool
}

// New creates a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the redis client backing the cache store. Required.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithBackend sets the settings backend. Required.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithAuditSink sets the sink receiving audit events. Without one, events go
// to a [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histogram recording.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("Build may only be called once per Builder")
	}
	if b.redis == nil {
		return nil, errors.New("a redis client is required, use WithRedis")
	}
	if b.backend == nil {
		return nil, errors.New("a settings backend is required, use WithBackend")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	registry := feature.NewRegistry()
	for _, def := range defaultFeatureDefinitions() {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	metrics := NewMetrics(b.config.Metrics)
	store := newCacheStore(b.redis, b.config.Cache.KeyPrefix)

	engine := &Engine{
		config:   b.config,
		registry: registry,
		store:    store,
		fetcher:  newThrottledFetcher(store, b.config.Throttle.MinInterval, metrics),
		backend:  b.backend,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink),
		metrics: metrics,
		now:     time.Now,
		enabled: make(map[FeatureID]bool),
	}

	b.built = true
	return engine, nil
}
