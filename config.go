package walletsec

import (
	"errors"
	"time"
)

// Config defines a public type used by walletsec APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cache     CacheConfig
	Throttle  ThrottleConfig
	TwoFactor TwoFactorConfig
	Score     ScoreConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
CACHE CONFIG
====================================
*/

// CacheConfig defines a public type used by walletsec APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	KeyPrefix   string
	SettingsTTL time.Duration
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig defines a public type used by walletsec APIs.
//
// ThrottleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ThrottleConfig struct {
	// MinInterval is the minimum gap between two backend fetches for the
	// same cache key. Expired cache data is served inside the window.
	MinInterval time.Duration
}

/*
====================================
TWO FACTOR CONFIG
====================================
*/

// TwoFactorConfig defines a public type used by walletsec APIs.
//
// TwoFactorConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TwoFactorConfig struct {
	CodeDigits            int
	BackupCodeGroups      int
	BackupCodeGroupLength int
	CopiedIndicatorTTL    time.Duration
}

// backupCodeFullLength is the masked input length including separators.
func (c TwoFactorConfig) backupCodeFullLength() int {
	return c.BackupCodeGroups*c.BackupCodeGroupLength + (c.BackupCodeGroups - 1)
}

/*
====================================
SCORE CONFIG
====================================
*/

// ScoreConfig holds the bonus weights for auth-method selections. Each bonus
// adds to both the raw score and the total weight.
type ScoreConfig struct {
	TransferTwoFactorBonus int
	TransferPasswordBonus  int
	LoginTwoFactorBonus    int
	LoginSecretWordBonus   int
}

// AuditConfig defines a public type used by walletsec APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by walletsec APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			KeyPrefix:   "cache_",
			SettingsTTL: 5 * time.Minute,
		},
		Throttle: ThrottleConfig{
			MinInterval: 2 * time.Second,
		},
		TwoFactor: TwoFactorConfig{
			CodeDigits:            6,
			BackupCodeGroups:      3,
			BackupCodeGroupLength: 4,
			CopiedIndicatorTTL:    2 * time.Second,
		},
		Score: ScoreConfig{
			TransferTwoFactorBonus: 10,
			TransferPasswordBonus:  5,
			LoginTwoFactorBonus:    10,
			LoginSecretWordBonus:   5,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c *Config) Validate() error {
	if c.Cache.KeyPrefix == "" {
		return errors.New("Cache KeyPrefix must not be empty")
	}
	if c.Cache.SettingsTTL <= 0 {
		return errors.New("Cache SettingsTTL must be > 0")
	}
	if c.Throttle.MinInterval <= 0 {
		return errors.New("Throttle MinInterval must be > 0")
	}
	if c.TwoFactor.CodeDigits != 6 && c.TwoFactor.CodeDigits != 8 {
		return errors.New("TwoFactor CodeDigits must be 6 or 8")
	}
	if c.TwoFactor.BackupCodeGroups <= 0 {
		return errors.New("TwoFactor BackupCodeGroups must be > 0")
	}
	if c.TwoFactor.BackupCodeGroupLength <= 0 {
		return errors.New("TwoFactor BackupCodeGroupLength must be > 0")
	}
	if c.TwoFactor.CopiedIndicatorTTL <= 0 {
		return errors.New("TwoFactor CopiedIndicatorTTL must be > 0")
	}
	if c.Score.TransferTwoFactorBonus < 0 ||
		c.Score.TransferPasswordBonus < 0 ||
		c.Score.LoginTwoFactorBonus < 0 ||
		c.Score.LoginSecretWordBonus < 0 {
		return errors.New("Score bonuses must be >= 0")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}
	return nil
}
