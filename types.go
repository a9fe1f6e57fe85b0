package walletsec

import (
	"context"
	"io"

	internalaudit "github.com/vaultik/walletsec/internal/audit"
	internalmetrics "github.com/vaultik/walletsec/internal/metrics"
)

// FeatureID identifies one independently toggleable security control.
type FeatureID string

const (
	// FeatureTwoFactor is an exported constant or variable used by the security engine.
	FeatureTwoFactor FeatureID = "two_factor"
	// FeatureTransferPassword is an exported constant or variable used by the security engine.
	FeatureTransferPassword FeatureID = "transfer_password"
	// FeatureDailyLimit is an exported constant or variable used by the security engine.
	FeatureDailyLimit FeatureID = "daily_limit"
	// FeatureGeoLock is an exported constant or variable used by the security engine.
	FeatureGeoLock FeatureID = "geo_lock"
	// FeatureIPWhitelist is an exported constant or variable used by the security engine.
	FeatureIPWhitelist FeatureID = "ip_whitelist"
	// FeatureTimeBasedAccess is an exported constant or variable used by the security engine.
	FeatureTimeBasedAccess FeatureID = "time_based_access"
	// FeatureAutoSignIn is an exported constant or variable used by the security engine.
	FeatureAutoSignIn FeatureID = "auto_signin"
	// FeatureWalletFreeze is an exported constant or variable used by the security engine.
	FeatureWalletFreeze FeatureID = "wallet_freeze"
)

// Feature is the runtime view of one security control: catalogue row plus
// current enabled state. Enabled mutates only on confirmed backend success.
type Feature struct {
	ID          FeatureID
	Enabled     bool
	Weight      int
	PremiumOnly bool
	Inverted    bool
}

// AuthMethod is a tagged value for the login and transfer authorization slots.
type AuthMethod uint8

const (
	// MethodNone is an exported constant or variable used by the security engine.
	MethodNone AuthMethod = iota
	// MethodSecretWord is an exported constant or variable used by the security engine.
	MethodSecretWord
	// MethodPassword is an exported constant or variable used by the security engine.
	MethodPassword
	// MethodTwoFactor is an exported constant or variable used by the security engine.
	MethodTwoFactor
)

// String describes the string operation and its observable behavior.
func (m AuthMethod) String() string {
	switch m {
	case MethodSecretWord:
		return "secret_word"
	case MethodPassword:
		return "password"
	case MethodTwoFactor:
		return "two_factor"
	default:
		return "none"
	}
}

// AuthMethodSelection is the wire shape of one authorization slot in the
// settings snapshot: a set of alternative keys of which exactly one is true.
type AuthMethodSelection struct {
	None       bool `json:"none,omitempty"`
	SecretWord bool `json:"secretWord,omitempty"`
	Password   bool `json:"password,omitempty"`
	TwoFactor  bool `json:"twoFactor,omitempty"`
}

// Method resolves the selection to its tagged value. Should the backend ever
// send more than one true key, the strongest wins; an all-false object maps
// to [MethodNone].
func (s AuthMethodSelection) Method() AuthMethod {
	switch {
	case s.TwoFactor:
		return MethodTwoFactor
	case s.Password:
		return MethodPassword
	case s.SecretWord:
		return MethodSecretWord
	default:
		return MethodNone
	}
}

// Selection returns the one-true-key wire shape for m.
func (m AuthMethod) Selection() AuthMethodSelection {
	switch m {
	case MethodSecretWord:
		return AuthMethodSelection{SecretWord: true}
	case MethodPassword:
		return AuthMethodSelection{Password: true}
	case MethodTwoFactor:
		return AuthMethodSelection{TwoFactor: true}
	default:
		return AuthMethodSelection{None: true}
	}
}

// SecurityLevel is the qualitative bucket derived from the score percentage.
type SecurityLevel uint8

const (
	// LevelWeak is an exported constant or variable used by the security engine.
	LevelWeak SecurityLevel = iota
	// LevelFair is an exported constant or variable used by the security engine.
	LevelFair
	// LevelGood is an exported constant or variable used by the security engine.
	LevelGood
	// LevelStrong is an exported constant or variable used by the security engine.
	LevelStrong
)

// String describes the string operation and its observable behavior.
func (l SecurityLevel) String() string {
	switch l {
	case LevelFair:
		return "fair"
	case LevelGood:
		return "good"
	case LevelStrong:
		return "strong"
	default:
		return "weak"
	}
}

// ScoreSnapshot is a derived, never-cached projection of the security state.
type ScoreSnapshot struct {
	RawScore    int
	TotalWeight int
	Percentage  int
	Level       SecurityLevel
}

// DialogKind discriminates the [ActiveDialog] tagged union.
type DialogKind uint8

const (
	// DialogNone is an exported constant or variable used by the security engine.
	DialogNone DialogKind = iota
	// DialogConfirmEnable is an exported constant or variable used by the security engine.
	DialogConfirmEnable
	// DialogConfirmDisable is an exported constant or variable used by the security engine.
	DialogConfirmDisable
	// DialogTwoFactor is an exported constant or variable used by the security engine.
	DialogTwoFactor
)

// ActiveDialog is the single engine-wide dialog slot. Exclusivity is a
// structural invariant: at most one dialog exists at a time.
type ActiveDialog struct {
	Kind    DialogKind
	Feature FeatureID
	Step    TwoFactorStep
}

// SettingsSnapshot is the full security settings state returned by
// GET /api/security/settings.
type SettingsSnapshot struct {
	TwoFactorEnabled        bool                `json:"twoFactorEnabled"`
	TransferPasswordEnabled bool                `json:"transferPasswordEnabled"`
	DailyLimitEnabled       bool                `json:"dailyLimitEnabled"`
	GeoLockEnabled          bool                `json:"geoLockEnabled"`
	IPWhitelistEnabled      bool                `json:"ipWhitelistEnabled"`
	TimeBasedAccessEnabled  bool                `json:"timeBasedAccessEnabled"`
	AutoSignInEnabled       bool                `json:"autoSignInEnabled"`
	WalletFrozen            bool                `json:"walletFrozen"`
	Premium                 bool                `json:"premium"`
	LoginMethod             AuthMethodSelection `json:"loginAuthMethod"`
	TransferMethod          AuthMethodSelection `json:"transferAuthMethod"`
	DailyLimitAmount        int64               `json:"dailyLimitAmount,omitempty"`
	AllowedCountries        []string            `json:"allowedCountries,omitempty"`
	AllowedIPs              []string            `json:"allowedIPs,omitempty"`
	AccessWindow            string              `json:"accessWindow,omitempty"`
}

// TwoFactorSetup is the provisioning material from GET /api/security/2fa/setup.
type TwoFactorSetup struct {
	Secret string `json:"secret"`
	QRCode string `json:"qrCode"`
}

// TwoFactorVerifyResponse is the backend's answer to a setup verification.
// Message and BackupCodes are required; a missing field is a protocol
// violation, not a success.
type TwoFactorVerifyResponse struct {
	Message           string   `json:"message"`
	BackupCodes       []string `json:"backupCodes"`
	VerificationToken string   `json:"verification_token,omitempty"`
}

// TwoFactorDisableResponse is the backend's answer to a disable verification.
type TwoFactorDisableResponse struct {
	Message             string `json:"message"`
	VerificationToken   string `json:"verification_token,omitempty"`
	TransferAuthUpdated bool   `json:"transfer_auth_updated,omitempty"`
}

// FeatureUpdate is the request body for the per-feature toggle endpoints.
// WalletPassword is required for disable actions on password-protected
// features; Value carries feature-specific payloads (limit amount, IP list,
// country list, access window).
type FeatureUpdate struct {
	Feature        FeatureID `json:"-"`
	Enabled        bool      `json:"enabled"`
	WalletPassword string    `json:"walletPassword,omitempty"`
	Value          any       `json:"value,omitempty"`
}

// Backend is the interface the engine consumes from the settings API. All
// cryptographic and persistence work happens behind it; the restapi
// subpackage is the HTTP implementation.
type Backend interface {
	FetchSettings(ctx context.Context) (*SettingsSnapshot, error)
	FetchTwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error)
	VerifyTwoFactor(ctx context.Context, req SignedCode) (*TwoFactorVerifyResponse, error)
	DisableTwoFactor(ctx context.Context, req DisableRequest) (*TwoFactorDisableResponse, error)
	UpdateFeature(ctx context.Context, req FeatureUpdate) error
	SetLoginAuthMethod(ctx context.Context, method AuthMethod) error
	SetTransferAuthMethod(ctx context.Context, method AuthMethod) error
}

// AuditEvent is a structured event emitted by the engine. Every failure path
// ends in one; sinks turn them into user-visible alerts or logs.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}

const (
	// MetricCacheHit is an exported constant or variable used by the security engine.
	MetricCacheHit = MetricID(internalmetrics.MetricCacheHit)
	// MetricCacheStale is an exported constant or variable used by the security engine.
	MetricCacheStale = MetricID(internalmetrics.MetricCacheStale)
	// MetricCacheMiss is an exported constant or variable used by the security engine.
	MetricCacheMiss = MetricID(internalmetrics.MetricCacheMiss)
	// MetricThrottleHit is an exported constant or variable used by the security engine.
	MetricThrottleHit = MetricID(internalmetrics.MetricThrottleHit)
	// MetricFetchSuccess is an exported constant or variable used by the security engine.
	MetricFetchSuccess = MetricID(internalmetrics.MetricFetchSuccess)
	// MetricFetchFailure is an exported constant or variable used by the security engine.
	MetricFetchFailure = MetricID(internalmetrics.MetricFetchFailure)
	// MetricToggleBlocked is an exported constant or variable used by the security engine.
	MetricToggleBlocked = MetricID(internalmetrics.MetricToggleBlocked)
	// MetricToggleEnableSuccess is an exported constant or variable used by the security engine.
	MetricToggleEnableSuccess = MetricID(internalmetrics.MetricToggleEnableSuccess)
	// MetricToggleEnableFailure is an exported constant or variable used by the security engine.
	MetricToggleEnableFailure = MetricID(internalmetrics.MetricToggleEnableFailure)
	// MetricToggleDisableSuccess is an exported constant or variable used by the security engine.
	MetricToggleDisableSuccess = MetricID(internalmetrics.MetricToggleDisableSuccess)
	// MetricToggleDisableFailure is an exported constant or variable used by the security engine.
	MetricToggleDisableFailure = MetricID(internalmetrics.MetricToggleDisableFailure)
	// MetricTwoFactorSetupRequested is an exported constant or variable used by the security engine.
	MetricTwoFactorSetupRequested = MetricID(internalmetrics.MetricTwoFactorSetupRequested)
	// MetricTwoFactorVerifySuccess is an exported constant or variable used by the security engine.
	MetricTwoFactorVerifySuccess = MetricID(internalmetrics.MetricTwoFactorVerifySuccess)
	// MetricTwoFactorVerifyFailure is an exported constant or variable used by the security engine.
	MetricTwoFactorVerifyFailure = MetricID(internalmetrics.MetricTwoFactorVerifyFailure)
	// MetricTwoFactorDisableSuccess is an exported constant or variable used by the security engine.
	MetricTwoFactorDisableSuccess = MetricID(internalmetrics.MetricTwoFactorDisableSuccess)
	// MetricTwoFactorDisableFailure is an exported constant or variable used by the security engine.
	MetricTwoFactorDisableFailure = MetricID(internalmetrics.MetricTwoFactorDisableFailure)
	// MetricMethodChangeSuccess is an exported constant or variable used by the security engine.
	MetricMethodChangeSuccess = MetricID(internalmetrics.MetricMethodChangeSuccess)
	// MetricMethodChangeFailure is an exported constant or variable used by the security engine.
	MetricMethodChangeFailure = MetricID(internalmetrics.MetricMethodChangeFailure)
	// MetricRateLimitHit is an exported constant or variable used by the security engine.
	MetricRateLimitHit = MetricID(internalmetrics.MetricRateLimitHit)
	// MetricFetchLatency is an exported constant or variable used by the security engine.
	MetricFetchLatency = MetricID(internalmetrics.MetricFetchLatency)
)
