package walletsec

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/vaultik/walletsec/feature"
	internalaudit "github.com/vaultik/walletsec/internal/audit"
)

// Cache keys, joined with CacheConfig.KeyPrefix by the store.
const (
	settingsCacheKey   = "security_settings"
	dismissedAlertsKey = "dismissed_alerts"
)

// Engine defines a public type used by walletsec APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Immutability applies to wiring (config, registry, backend, sinks); the
// security state behind the mutex changes as operations complete. All methods
// are safe for concurrent use.
type Engine struct {
	config   Config
	registry *feature.Registry
	store    *cacheStore
	fetcher  *throttledFetcher
	backend  Backend
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	now      func() time.Time

	mu             sync.Mutex
	loaded         bool
	enabled        map[FeatureID]bool
	premium        bool
	loginMethod    AuthMethod
	transferMethod AuthMethod
	dialog         ActiveDialog
	session        *TwoFactorSession
	verifyToken    string
	verifyTokenExp time.Time
}

func (e *Engine) metricInc(id MetricID) {
	if e.metrics != nil {
		e.metrics.Inc(id)
	}
}

// Settings returns the current security settings, fetching through the cache
// and throttle layer. The first successful call primes the engine state; every
// mutating operation requires that priming.
func (e *Engine) Settings(ctx context.Context) (*SettingsSnapshot, error) {
	return e.loadSettings(ctx, false)
}

// RefreshSettings bypasses the cache and fetches fresh settings. The throttle
// window still applies.
func (e *Engine) RefreshSettings(ctx context.Context) (*SettingsSnapshot, error) {
	return e.loadSettings(ctx, true)
}

func (e *Engine) loadSettings(ctx context.Context, force bool) (*SettingsSnapshot, error) {
	fetch := func(ctx context.Context) (json.RawMessage, error) {
		snapshot, err := e.backend.FetchSettings(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(snapshot)
	}

	var (
		data json.RawMessage
		err  error
	)
	if force {
		data, err = e.fetcher.ForceRefresh(ctx, settingsCacheKey, e.config.Cache.SettingsTTL, fetch)
	} else {
		data, err = e.fetcher.FetchWithCache(ctx, settingsCacheKey, e.config.Cache.SettingsTTL, fetch)
	}
	if err != nil {
		e.observeBackendErr(ctx, AuditFetchFailure, "", err)
		return nil, err
	}

	var snapshot SettingsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, ErrInvalidServerResponse
	}

	e.mu.Lock()
	e.applySnapshotLocked(&snapshot)
	e.mu.Unlock()

	return &snapshot, nil
}

func (e *Engine) applySnapshotLocked(s *SettingsSnapshot) {
	e.enabled = map[FeatureID]bool{
		FeatureTwoFactor:        s.TwoFactorEnabled,
		FeatureTransferPassword: s.TransferPasswordEnabled,
		FeatureDailyLimit:       s.DailyLimitEnabled,
		FeatureGeoLock:          s.GeoLockEnabled,
		FeatureIPWhitelist:      s.IPWhitelistEnabled,
		FeatureTimeBasedAccess:  s.TimeBasedAccessEnabled,
		FeatureAutoSignIn:       s.AutoSignInEnabled,
		FeatureWalletFreeze:     s.WalletFrozen,
	}
	e.premium = s.Premium
	e.loginMethod = s.LoginMethod.Method()
	e.transferMethod = s.TransferMethod.Method()
	e.loaded = true
}

// featureListLocked materializes the catalogue in registration order with the
// current enabled flags. Caller holds e.mu.
func (e *Engine) featureListLocked() []Feature {
	ids := e.registry.IDs()
	out := make([]Feature, 0, len(ids))
	for _, id := range ids {
		def, ok := e.registry.Lookup(id)
		if !ok {
			continue
		}
		out = append(out, Feature{
			ID:          FeatureID(def.ID),
			Enabled:     e.enabled[FeatureID(def.ID)],
			Weight:      def.Weight,
			PremiumOnly: def.PremiumOnly,
			Inverted:    def.Inverted,
		})
	}
	return out
}

// Features returns the catalogue with current enabled state.
func (e *Engine) Features() []Feature {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.featureListLocked()
}

// FeatureEnabled reports the current enabled flag for id.
func (e *Engine) FeatureEnabled(id FeatureID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled[id]
}

// IsPremium reports the account tier from the last settings load.
func (e *Engine) IsPremium() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.premium
}

// LoginMethod returns the current login authorization method.
func (e *Engine) LoginMethod() AuthMethod {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loginMethod
}

// TransferMethod returns the current transfer authorization method.
func (e *Engine) TransferMethod() AuthMethod {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transferMethod
}

// Dialog returns the currently open dialog, or the zero value when none is.
func (e *Engine) Dialog() ActiveDialog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dialogLocked()
}

func (e *Engine) dialogLocked() ActiveDialog {
	d := e.dialog
	if d.Kind == DialogTwoFactor && e.session != nil {
		d.Step = e.session.Step()
	}
	return d
}

// CloseDialog dismisses the open dialog and discards its session state.
// In-flight backend calls started under the old session finish without
// mutating engine state. Closing with no dialog open is a no-op.
func (e *Engine) CloseDialog() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeDialogLocked()
}

func (e *Engine) closeDialogLocked() {
	e.dialog = ActiveDialog{}
	e.session = nil
}

// ClearSettingsCache invalidates the cached settings without fetching.
func (e *Engine) ClearSettingsCache(ctx context.Context) error {
	return e.fetcher.ClearCache(ctx, settingsCacheKey)
}

// VerificationToken returns the most recent backend verification token and
// its expiry. The boolean is false when no unexpired token is held.
func (e *Engine) VerificationToken() (string, time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.verifyToken == "" {
		return "", time.Time{}, false
	}
	if !e.verifyTokenExp.IsZero() && !e.now().Before(e.verifyTokenExp) {
		return "", time.Time{}, false
	}
	return e.verifyToken, e.verifyTokenExp, true
}

// MetricsSnapshot returns a deep copy of the engine's metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// Metrics returns the live metrics instance, for exporters.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// readyLocked guards mutating operations: settings must have loaded once.
func (e *Engine) readyLocked() error {
	if !e.loaded {
		return ErrEngineNotReady
	}
	return nil
}

// observeBackendErr records the metric and audit side effects of a failed
// backend call. Rate-limit responses get their own event type.
func (e *Engine) observeBackendErr(ctx context.Context, eventType AuditEventType, featureID FeatureID, err error) {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		e.metricInc(MetricRateLimitHit)
		e.emitAudit(ctx, AuditRateLimited, featureID, false, err, map[string]string{
			"retry_after": rateLimited.RetryAfter.String(),
		})
		return
	}
	e.emitAudit(ctx, eventType, featureID, false, err, nil)
}
