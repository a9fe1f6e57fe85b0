package walletsec

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cache.KeyPrefix != "cache_" {
		t.Fatalf("unexpected key prefix: %s", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.SettingsTTL != 5*time.Minute {
		t.Fatalf("unexpected settings ttl: %v", cfg.Cache.SettingsTTL)
	}
	if cfg.Throttle.MinInterval != 2*time.Second {
		t.Fatalf("unexpected throttle interval: %v", cfg.Throttle.MinInterval)
	}
	if cfg.TwoFactor.CodeDigits != 6 {
		t.Fatalf("unexpected code digits: %d", cfg.TwoFactor.CodeDigits)
	}
	if got := cfg.TwoFactor.backupCodeFullLength(); got != 14 {
		t.Fatalf("expected backup code length 14, got %d", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty prefix", func(c *Config) { c.Cache.KeyPrefix = "" }},
		{"zero ttl", func(c *Config) { c.Cache.SettingsTTL = 0 }},
		{"zero throttle", func(c *Config) { c.Throttle.MinInterval = 0 }},
		{"bad digits", func(c *Config) { c.TwoFactor.CodeDigits = 5 }},
		{"zero groups", func(c *Config) { c.TwoFactor.BackupCodeGroups = 0 }},
		{"zero group length", func(c *Config) { c.TwoFactor.BackupCodeGroupLength = 0 }},
		{"zero copied ttl", func(c *Config) { c.TwoFactor.CopiedIndicatorTTL = 0 }},
		{"negative bonus", func(c *Config) { c.Score.LoginSecretWordBonus = -1 }},
	}

	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestStripErrorPrefix(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Error: Invalid wallet password", "Invalid wallet password"},
		{"error: rate limited", "rate limited"},
		{"  Error:  spaced  ", "spaced"},
		{"No prefix here", "No prefix here"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripErrorPrefix(tc.in); got != tc.want {
			t.Fatalf("StripErrorPrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuilderRequiresRedisAndBackend(t *testing.T) {
	if _, err := New().WithBackend(newFakeBackend()).Build(); err == nil {
		t.Fatal("expected error without redis")
	}

	mr, rdb := newTestRedis(t)
	defer mr.Close()

	if _, err := New().WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without backend")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	b := New().WithRedis(rdb).WithBackend(newFakeBackend())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.TwoFactor.CodeDigits = 7

	if _, err := New().WithConfig(cfg).WithRedis(rdb).WithBackend(newFakeBackend()).Build(); err == nil {
		t.Fatal("expected Build to reject invalid config")
	}
}
