package walletsec

import "github.com/vaultik/walletsec/feature"

// defaultFeatureDefinitions is the fixed catalogue of security controls. The
// weights are scoring weights only. Geo-lock, IP allow-listing, and
// time-windowed access are premium exclusives; auto-sign-in is the one
// inverted control (enabling it weakens the posture).
func defaultFeatureDefinitions() []feature.Definition {
	return []feature.Definition{
		{ID: string(FeatureTwoFactor), Weight: 25},
		{ID: string(FeatureTransferPassword), Weight: 10},
		{ID: string(FeatureDailyLimit), Weight: 8},
		{ID: string(FeatureGeoLock), Weight: 15, PremiumOnly: true},
		{ID: string(FeatureIPWhitelist), Weight: 12, PremiumOnly: true},
		{ID: string(FeatureTimeBasedAccess), Weight: 7, PremiumOnly: true},
		{ID: string(FeatureAutoSignIn), Weight: 10, Inverted: true},
		{ID: string(FeatureWalletFreeze), Weight: 5},
	}
}

// passwordProtectedFeatures require wallet-password re-entry on disable.
// Two-factor is excluded: its disable path verifies via authenticator or
// backup code instead.
var passwordProtectedFeatures = map[FeatureID]bool{
	FeatureTransferPassword: true,
	FeatureDailyLimit:       true,
	FeatureGeoLock:          true,
	FeatureIPWhitelist:      true,
	FeatureTimeBasedAccess:  true,
}
