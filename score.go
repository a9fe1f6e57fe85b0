package walletsec

import "math"

// ComputeScore maps feature state plus auth-method selections to a 0–100
// security score. Every feature contributes its weight to the total; it
// contributes to the raw score when correctly set (enabled, or disabled for
// inverted features). Method bonuses add to both the raw score and the total
// weight. That skews the achievable maximum while a bonus is unearned; the
// skew is part of the scoring contract and must be preserved.
func ComputeScore(features []Feature, loginMethod, transferMethod AuthMethod, cfg ScoreConfig) ScoreSnapshot {
	var raw, total int
	var twoFactorOn, transferPasswordOn bool

	for _, f := range features {
		total += f.Weight
		if (!f.Inverted && f.Enabled) || (f.Inverted && !f.Enabled) {
			raw += f.Weight
		}
		switch f.ID {
		case FeatureTwoFactor:
			twoFactorOn = f.Enabled
		case FeatureTransferPassword:
			transferPasswordOn = f.Enabled
		}
	}

	switch {
	case transferMethod == MethodTwoFactor && twoFactorOn:
		raw += cfg.TransferTwoFactorBonus
		total += cfg.TransferTwoFactorBonus
	case transferMethod == MethodPassword && transferPasswordOn:
		raw += cfg.TransferPasswordBonus
		total += cfg.TransferPasswordBonus
	}

	switch {
	case loginMethod == MethodTwoFactor && twoFactorOn:
		raw += cfg.LoginTwoFactorBonus
		total += cfg.LoginTwoFactorBonus
	case loginMethod == MethodSecretWord:
		raw += cfg.LoginSecretWordBonus
		total += cfg.LoginSecretWordBonus
	}

	if total == 0 {
		// Undefined by contract; the built-in catalogue is never empty.
		return ScoreSnapshot{Level: LevelWeak}
	}

	pct := int(math.Round(float64(raw) / float64(total) * 100))

	return ScoreSnapshot{
		RawScore:    raw,
		TotalWeight: total,
		Percentage:  pct,
		Level:       levelForPercentage(pct),
	}
}

func levelForPercentage(pct int) SecurityLevel {
	switch {
	case pct >= 75:
		return LevelStrong
	case pct >= 50:
		return LevelGood
	case pct >= 25:
		return LevelFair
	default:
		return LevelWeak
	}
}

// Score recomputes the security snapshot from the engine's current feature
// and method state. It is a pure projection and is never cached.
func (e *Engine) Score() ScoreSnapshot {
	if e == nil {
		return ScoreSnapshot{Level: LevelWeak}
	}

	e.mu.Lock()
	features := e.featureListLocked()
	login := e.loginMethod
	transfer := e.transferMethod
	e.mu.Unlock()

	return ComputeScore(features, login, transfer, e.config.Score)
}
