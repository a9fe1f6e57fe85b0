package walletsec

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestSettingsPrimesEngineState(t *testing.T) {
	mr, engine, backend := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	backend.settings.TwoFactorEnabled = true
	backend.settings.Premium = true
	backend.settings.LoginMethod = MethodTwoFactor.Selection()

	snapshot := loadTestSettings(t, engine)
	if !snapshot.TwoFactorEnabled {
		t.Fatal("snapshot must carry the backend state")
	}

	if !engine.FeatureEnabled(FeatureTwoFactor) {
		t.Fatal("engine state must follow the snapshot")
	}
	if !engine.IsPremium() {
		t.Fatal("premium flag must follow the snapshot")
	}
	if engine.LoginMethod() != MethodTwoFactor {
		t.Fatalf("expected two_factor login method, got %s", engine.LoginMethod())
	}
	if engine.TransferMethod() != MethodPassword {
		t.Fatalf("expected password transfer method, got %s", engine.TransferMethod())
	}
}

func TestSnapshotDecodesAuthMethodObjects(t *testing.T) {
	raw := []byte(`{"loginAuthMethod":{"password":true,"twoFactor":false},"transferAuthMethod":{"twoFactor":true}}`)

	var snapshot SettingsSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if snapshot.LoginMethod.Method() != MethodPassword {
		t.Fatalf("unexpected login method: %+v", snapshot.LoginMethod)
	}
	if snapshot.TransferMethod.Method() != MethodTwoFactor {
		t.Fatalf("unexpected transfer method: %+v", snapshot.TransferMethod)
	}

	for _, m := range []AuthMethod{MethodNone, MethodSecretWord, MethodPassword, MethodTwoFactor} {
		if m.Selection().Method() != m {
			t.Fatalf("selection round trip broke for %s", m)
		}
	}
}

func TestSettingsSecondCallServedFromCache(t *testing.T) {
	mr, engine, backend := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	loadTestSettings(t, engine)
	loadTestSettings(t, engine)

	if backend.fetchCalls != 1 {
		t.Fatalf("expected 1 backend fetch, got %d", backend.fetchCalls)
	}
	if engine.metrics.Value(MetricCacheHit) != 1 {
		t.Fatalf("expected 1 cache hit, got %d", engine.metrics.Value(MetricCacheHit))
	}
}

func TestRefreshSettingsBypassesCache(t *testing.T) {
	mr, engine, backend := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	loadTestSettings(t, engine)

	backend.settings.DailyLimitEnabled = true
	if _, err := engine.RefreshSettings(context.Background()); err != nil {
		t.Fatalf("RefreshSettings failed: %v", err)
	}

	if backend.fetchCalls != 2 {
		t.Fatalf("expected 2 backend fetches, got %d", backend.fetchCalls)
	}
	if !engine.FeatureEnabled(FeatureDailyLimit) {
		t.Fatal("refresh must apply the new state")
	}
}

func TestFeaturesReturnsCatalogueInOrder(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	features := engine.Features()
	if len(features) != 8 {
		t.Fatalf("expected 8 features, got %d", len(features))
	}
	if features[0].ID != FeatureTwoFactor || features[0].Weight != 25 {
		t.Fatalf("unexpected first feature: %+v", features[0])
	}
	if !features[1].Enabled {
		t.Fatal("transfer_password must reflect backend state")
	}

	var sawInverted, sawPremium bool
	for _, f := range features {
		if f.Inverted {
			sawInverted = true
		}
		if f.PremiumOnly {
			sawPremium = true
		}
	}
	if !sawInverted || !sawPremium {
		t.Fatal("catalogue must carry inverted and premium flags")
	}
}

func TestEngineScoreTracksState(t *testing.T) {
	mr, engine, backend := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	loadTestSettings(t, engine)
	before := engine.Score()

	backend.settings.TwoFactorEnabled = true
	if _, err := engine.RefreshSettings(context.Background()); err != nil {
		t.Fatalf("RefreshSettings failed: %v", err)
	}

	after := engine.Score()
	if after.Percentage <= before.Percentage {
		t.Fatalf("enabling 2FA must raise the score: %d -> %d", before.Percentage, after.Percentage)
	}
	if after.Level < before.Level {
		t.Fatal("level must not drop when the score rises")
	}
}

func TestCloseDialogIsIdempotent(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	engine.CloseDialog() // nothing open

	if _, err := engine.Toggle(context.Background(), FeatureDailyLimit); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	engine.CloseDialog()
	engine.CloseDialog()

	if engine.Dialog().Kind != DialogNone {
		t.Fatal("expected no dialog")
	}

	// The slot is free again.
	if _, err := engine.Toggle(context.Background(), FeatureDailyLimit); err != nil {
		t.Fatalf("re-toggle after close failed: %v", err)
	}
}

func TestVerificationTokenAbsentByDefault(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	if _, _, ok := engine.VerificationToken(); ok {
		t.Fatal("expected no token before any verification")
	}
}

func TestVerificationTokenExpires(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	base := time.Now()
	engine.now = func() time.Time { return base }

	engine.mu.Lock()
	engine.verifyToken = "tok"
	engine.verifyTokenExp = base.Add(time.Minute)
	engine.mu.Unlock()

	if _, _, ok := engine.VerificationToken(); !ok {
		t.Fatal("expected token before expiry")
	}

	engine.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, _, ok := engine.VerificationToken(); ok {
		t.Fatal("expected token gone after expiry")
	}
}
