// Package prometheus renders walletsec metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [walletsec.Engine] and exposes an
// [http.Handler] that renders all walletsec counters and histograms. Counter
// names are prefixed walletsec_*_total; the single histogram is
// walletsec_fetch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
