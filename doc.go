// Package walletsec orchestrates the security controls of a wallet client:
// multi-step enable/disable flows for features such as two-factor
// authentication, transfer passwords, and daily limits, an aggregate security
// score computed from feature state, and a throttled, TTL-cached read path in
// front of the backend settings API.
//
// The package is designed as an embeddable engine: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build],
// although the intended host is a single-threaded, event-driven UI loop.
//
// # Architecture boundaries
//
// walletsec is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (ScoreSnapshot, ActiveDialog, SettingsSnapshot, etc.). All
// internal coordination — audit dispatch, metric storage — lives under
// internal/ and is never exported. Backend transport is abstracted behind the
// [Backend] interface; the restapi subpackage provides the HTTP implementation.
//
// # What this package must NOT do
//
//   - Generate or verify 2FA secrets cryptographically; the backend owns all
//     secret generation, password hashing, and persistence.
//   - Expose Redis clients or cache encoding details in its public API.
//   - Render anything. Dialog state is a data structure for the host UI, not
//     a widget.
//
// # Performance contract
//
// Score is the hot path: it is recomputed on every state change and must not
// allocate beyond the returned snapshot or touch the network. Settings reads
// are allowed one Redis round-trip on a cache hit and one backend call on a
// miss; the per-key throttle window bounds backend request rate.
package walletsec
