package walletsec

import "testing"

func scoreTestFeatures(enabled map[FeatureID]bool) []Feature {
	return []Feature{
		{ID: FeatureTwoFactor, Weight: 25, Enabled: enabled[FeatureTwoFactor]},
		{ID: FeatureTransferPassword, Weight: 10, Enabled: enabled[FeatureTransferPassword]},
		{ID: FeatureDailyLimit, Weight: 8, Enabled: enabled[FeatureDailyLimit]},
	}
}

func TestScoreAllDisabledIsWeakZero(t *testing.T) {
	s := ComputeScore(scoreTestFeatures(nil), MethodNone, MethodNone, ScoreConfig{})
	if s.Percentage != 0 {
		t.Fatalf("expected 0%%, got %d%%", s.Percentage)
	}
	if s.Level != LevelWeak {
		t.Fatalf("expected weak, got %s", s.Level)
	}
}

func TestScoreAllEnabledIsStrongHundred(t *testing.T) {
	s := ComputeScore(scoreTestFeatures(map[FeatureID]bool{
		FeatureTwoFactor:        true,
		FeatureTransferPassword: true,
		FeatureDailyLimit:       true,
	}), MethodNone, MethodNone, ScoreConfig{})
	if s.Percentage != 100 {
		t.Fatalf("expected 100%%, got %d%%", s.Percentage)
	}
	if s.Level != LevelStrong {
		t.Fatalf("expected strong, got %s", s.Level)
	}
}

func TestScoreInvertedFeatureCountsWhenDisabled(t *testing.T) {
	features := []Feature{
		{ID: FeatureAutoSignIn, Weight: 10, Inverted: true, Enabled: false},
		{ID: FeatureDailyLimit, Weight: 10, Enabled: false},
	}
	s := ComputeScore(features, MethodNone, MethodNone, ScoreConfig{})
	if s.RawScore != 10 {
		t.Fatalf("disabled inverted feature must score, got raw %d", s.RawScore)
	}

	features[0].Enabled = true
	s = ComputeScore(features, MethodNone, MethodNone, ScoreConfig{})
	if s.RawScore != 0 {
		t.Fatalf("enabled inverted feature must not score, got raw %d", s.RawScore)
	}
}

func TestScoreBonusAddsToNumeratorAndDenominator(t *testing.T) {
	cfg := ScoreConfig{TransferTwoFactorBonus: 10}
	features := scoreTestFeatures(map[FeatureID]bool{FeatureTwoFactor: true})

	without := ComputeScore(features, MethodNone, MethodNone, cfg)
	with := ComputeScore(features, MethodNone, MethodTwoFactor, cfg)

	if with.RawScore != without.RawScore+10 {
		t.Fatalf("expected raw +10, got %d vs %d", with.RawScore, without.RawScore)
	}
	if with.TotalWeight != without.TotalWeight+10 {
		t.Fatalf("expected total +10, got %d vs %d", with.TotalWeight, without.TotalWeight)
	}
	// 25/43 -> 58%, (25+10)/(43+10) -> 66%
	if with.Percentage <= without.Percentage {
		t.Fatalf("earned bonus must raise the percentage: %d vs %d", with.Percentage, without.Percentage)
	}
}

func TestScoreBonusRequiresBackingFeature(t *testing.T) {
	cfg := ScoreConfig{TransferTwoFactorBonus: 10, TransferPasswordBonus: 5}

	// Transfer set to 2FA but 2FA disabled: no bonus at all.
	s := ComputeScore(scoreTestFeatures(nil), MethodNone, MethodTwoFactor, cfg)
	if s.RawScore != 0 || s.TotalWeight != 43 {
		t.Fatalf("unearned bonus must not apply: raw %d total %d", s.RawScore, s.TotalWeight)
	}

	// Transfer password path needs the transfer_password feature on.
	s = ComputeScore(scoreTestFeatures(map[FeatureID]bool{FeatureTransferPassword: true}), MethodNone, MethodPassword, cfg)
	if s.RawScore != 10+5 {
		t.Fatalf("expected feature weight plus bonus, got raw %d", s.RawScore)
	}
}

func TestScoreSecretWordLoginBonusIsUnconditional(t *testing.T) {
	cfg := ScoreConfig{LoginSecretWordBonus: 5}
	s := ComputeScore(scoreTestFeatures(nil), MethodSecretWord, MethodNone, cfg)
	if s.RawScore != 5 || s.TotalWeight != 48 {
		t.Fatalf("expected raw 5 total 48, got raw %d total %d", s.RawScore, s.TotalWeight)
	}
}

func TestScoreLevelThresholds(t *testing.T) {
	cases := []struct {
		pct  int
		want SecurityLevel
	}{
		{0, LevelWeak},
		{24, LevelWeak},
		{25, LevelFair},
		{49, LevelFair},
		{50, LevelGood},
		{74, LevelGood},
		{75, LevelStrong},
		{100, LevelStrong},
	}
	for _, tc := range cases {
		if got := levelForPercentage(tc.pct); got != tc.want {
			t.Fatalf("pct %d: expected %s, got %s", tc.pct, tc.want, got)
		}
	}
}

func TestScorePercentageStaysInBounds(t *testing.T) {
	cfg := ScoreConfig{TransferTwoFactorBonus: 10, LoginTwoFactorBonus: 10}
	features := scoreTestFeatures(map[FeatureID]bool{
		FeatureTwoFactor:        true,
		FeatureTransferPassword: true,
		FeatureDailyLimit:       true,
	})
	s := ComputeScore(features, MethodTwoFactor, MethodTwoFactor, cfg)
	if s.Percentage < 0 || s.Percentage > 100 {
		t.Fatalf("percentage out of bounds: %d", s.Percentage)
	}
	if s.Percentage != 100 {
		t.Fatalf("fully earned bonuses keep 100%%, got %d", s.Percentage)
	}
}
