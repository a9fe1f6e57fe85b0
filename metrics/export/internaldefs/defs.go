package internaldefs

import (
	walletsec "github.com/vaultik/walletsec"
)

// CounterDef defines a public type used by walletsec APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   walletsec.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by walletsec APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   walletsec.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the security engine.
var CounterDefs = []CounterDef{
	{ID: walletsec.MetricCacheHit, Name: "walletsec_cache_hit_total", Help: "Fresh settings cache reads."},
	{ID: walletsec.MetricCacheStale, Name: "walletsec_cache_stale_total", Help: "Expired cache entries served during throttling."},
	{ID: walletsec.MetricCacheMiss, Name: "walletsec_cache_miss_total", Help: "Cache reads that required a backend fetch."},
	{ID: walletsec.MetricThrottleHit, Name: "walletsec_throttle_hit_total", Help: "Fetches suppressed by the throttle window."},
	{ID: walletsec.MetricFetchSuccess, Name: "walletsec_fetch_success_total", Help: "Completed backend fetches."},
	{ID: walletsec.MetricFetchFailure, Name: "walletsec_fetch_failure_total", Help: "Failed backend fetches."},
	{ID: walletsec.MetricToggleBlocked, Name: "walletsec_toggle_blocked_total", Help: "Premium-gated toggle no-ops."},
	{ID: walletsec.MetricToggleEnableSuccess, Name: "walletsec_toggle_enable_success_total", Help: "Confirmed feature enables."},
	{ID: walletsec.MetricToggleEnableFailure, Name: "walletsec_toggle_enable_failure_total", Help: "Failed feature enables."},
	{ID: walletsec.MetricToggleDisableSuccess, Name: "walletsec_toggle_disable_success_total", Help: "Confirmed feature disables."},
	{ID: walletsec.MetricToggleDisableFailure, Name: "walletsec_toggle_disable_failure_total", Help: "Failed feature disables."},
	{ID: walletsec.MetricTwoFactorSetupRequested, Name: "walletsec_twofactor_setup_requested_total", Help: "Two-factor provisioning fetches."},
	{ID: walletsec.MetricTwoFactorVerifySuccess, Name: "walletsec_twofactor_verify_success_total", Help: "Confirmed two-factor setup verifications."},
	{ID: walletsec.MetricTwoFactorVerifyFailure, Name: "walletsec_twofactor_verify_failure_total", Help: "Failed two-factor setup verifications."},
	{ID: walletsec.MetricTwoFactorDisableSuccess, Name: "walletsec_twofactor_disable_success_total", Help: "Confirmed two-factor disables."},
	{ID: walletsec.MetricTwoFactorDisableFailure, Name: "walletsec_twofactor_disable_failure_total", Help: "Failed two-factor disables."},
	{ID: walletsec.MetricMethodChangeSuccess, Name: "walletsec_method_change_success_total", Help: "Confirmed auth-method changes."},
	{ID: walletsec.MetricMethodChangeFailure, Name: "walletsec_method_change_failure_total", Help: "Failed auth-method changes."},
	{ID: walletsec.MetricRateLimitHit, Name: "walletsec_rate_limit_hit_total", Help: "Backend cooldown responses."},
}

// HistogramDefs is an exported constant or variable used by the security engine.
var HistogramDefs = []HistogramDef{
	{ID: walletsec.MetricFetchLatency, Name: "walletsec_fetch_latency_seconds", Help: "Backend fetch latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the security engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
