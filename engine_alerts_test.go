package walletsec

import (
	"context"
	"errors"
	"testing"
)

func TestSecurityAlertsFlagHeavyMisconfiguredFeatures(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	alerts, err := engine.SecurityAlerts(context.Background())
	if err != nil {
		t.Fatalf("SecurityAlerts failed: %v", err)
	}

	// Fake defaults: 2FA off (weight 25) and auto_signin on (weight 10,
	// inverted) both alert; transfer_password is on; premium features are
	// gated off for free accounts; everything else is below the threshold.
	got := map[FeatureID]bool{}
	for _, a := range alerts {
		got[a.Feature] = true
	}
	if !got[FeatureTwoFactor] {
		t.Fatal("expected alert for disabled two_factor")
	}
	if !got[FeatureAutoSignIn] {
		t.Fatal("expected alert for enabled auto_signin")
	}
	if got[FeatureTransferPassword] {
		t.Fatal("enabled transfer_password must not alert")
	}
	if got[FeatureGeoLock] || got[FeatureIPWhitelist] {
		t.Fatal("premium features must not alert on free accounts")
	}
	if got[FeatureDailyLimit] || got[FeatureWalletFreeze] {
		t.Fatal("features below the weight threshold must not alert")
	}
}

func TestSecurityAlertsIncludePremiumFeaturesForPremiumAccounts(t *testing.T) {
	mr, engine, backend := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	backend.settings.Premium = true
	loadTestSettings(t, engine)

	alerts, err := engine.SecurityAlerts(context.Background())
	if err != nil {
		t.Fatalf("SecurityAlerts failed: %v", err)
	}

	got := map[FeatureID]bool{}
	for _, a := range alerts {
		got[a.Feature] = true
	}
	if !got[FeatureGeoLock] || !got[FeatureIPWhitelist] {
		t.Fatal("heavy premium features must alert on premium accounts")
	}
}

func TestDismissAlertPersists(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	ctx := context.Background()
	if err := engine.DismissAlert(ctx, FeatureTwoFactor); err != nil {
		t.Fatalf("DismissAlert failed: %v", err)
	}

	alerts, err := engine.SecurityAlerts(ctx)
	if err != nil {
		t.Fatalf("SecurityAlerts failed: %v", err)
	}
	for _, a := range alerts {
		if a.Feature == FeatureTwoFactor {
			t.Fatal("dismissed alert must not reappear")
		}
	}

	dismissed, err := engine.DismissedAlerts(ctx)
	if err != nil {
		t.Fatalf("DismissedAlerts failed: %v", err)
	}
	if len(dismissed) != 1 || dismissed[0] != FeatureTwoFactor {
		t.Fatalf("unexpected dismissal list: %v", dismissed)
	}

	// Dismissing again is idempotent.
	if err := engine.DismissAlert(ctx, FeatureTwoFactor); err != nil {
		t.Fatalf("second DismissAlert failed: %v", err)
	}
	dismissed, _ = engine.DismissedAlerts(ctx)
	if len(dismissed) != 1 {
		t.Fatalf("dismissal must be idempotent, got %v", dismissed)
	}
}

func TestDismissAlertUnknownFeature(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	err := engine.DismissAlert(context.Background(), "nonsense")
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
}

func TestClearDismissedAlerts(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	ctx := context.Background()
	if err := engine.DismissAlert(ctx, FeatureTwoFactor); err != nil {
		t.Fatalf("DismissAlert failed: %v", err)
	}
	if err := engine.ClearDismissedAlerts(ctx); err != nil {
		t.Fatalf("ClearDismissedAlerts failed: %v", err)
	}

	dismissed, err := engine.DismissedAlerts(ctx)
	if err != nil {
		t.Fatalf("DismissedAlerts failed: %v", err)
	}
	if len(dismissed) != 0 {
		t.Fatalf("expected empty list after clear, got %v", dismissed)
	}
}

func TestReportIncludesScoreAndAlerts(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()
	loadTestSettings(t, engine)

	report, err := engine.Report(context.Background())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if len(report.Features) != 8 {
		t.Fatalf("expected full catalogue, got %d features", len(report.Features))
	}
	if report.Score != engine.Score() {
		t.Fatal("report score must match the live score")
	}
	if report.TransferMethod != "password" {
		t.Fatalf("unexpected transfer method: %s", report.TransferMethod)
	}
	if len(report.Alerts) == 0 {
		t.Fatal("expected outstanding alerts in the report")
	}
	if report.GeneratedAt.IsZero() {
		t.Fatal("expected a generation timestamp")
	}
}

func TestReportRequiresLoadedSettings(t *testing.T) {
	mr, engine, _ := newTestEngine(t)
	defer mr.Close()
	defer engine.Close()

	if _, err := engine.Report(context.Background()); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}
