package walletsec

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := defaultConfig()
	// Keep tests fast: a real throttle window would make cache-cleared
	// reloads block.
	cfg.Throttle.MinInterval = time.Millisecond
	return cfg
}

// fakeBackend is an in-memory Backend with call counters and per-call hooks
// so tests can fail requests or mutate engine state mid-flight.
type fakeBackend struct {
	mu sync.Mutex

	settings SettingsSnapshot

	fetchCalls   int
	updateCalls  int
	verifyCalls  int
	disableCalls int

	fetchErr   error
	updateErr  error
	verifyErr  error
	disableErr error

	setupResp   *TwoFactorSetup
	verifyResp  *TwoFactorVerifyResponse
	disableResp *TwoFactorDisableResponse

	lastUpdate  FeatureUpdate
	lastVerify  SignedCode
	lastDisable DisableRequest

	onVerify  func()
	onDisable func()
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		settings: SettingsSnapshot{
			TransferPasswordEnabled: true,
			AutoSignInEnabled:       true,
			LoginMethod:             MethodSecretWord.Selection(),
			TransferMethod:          MethodPassword.Selection(),
		},
		setupResp: &TwoFactorSetup{
			Secret: "JBSWY3DPEHPK3PXP",
			QRCode: "data:image/png;base64,stub",
		},
		verifyResp: &TwoFactorVerifyResponse{
			Message:     "2FA enabled",
			BackupCodes: []string{"AAAA-BBBB-CCCC", "DDDD-EEEE-FFFF"},
		},
		disableResp: &TwoFactorDisableResponse{
			Message: "2FA disabled",
		},
	}
}

func (b *fakeBackend) FetchSettings(_ context.Context) (*SettingsSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fetchCalls++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	snapshot := b.settings
	return &snapshot, nil
}

func (b *fakeBackend) FetchTwoFactorSetup(_ context.Context) (*TwoFactorSetup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setupResp, nil
}

func (b *fakeBackend) VerifyTwoFactor(_ context.Context, req SignedCode) (*TwoFactorVerifyResponse, error) {
	b.mu.Lock()
	b.verifyCalls++
	b.lastVerify = req
	hook := b.onVerify
	err := b.verifyErr
	resp := b.verifyResp
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (b *fakeBackend) DisableTwoFactor(_ context.Context, req DisableRequest) (*TwoFactorDisableResponse, error) {
	b.mu.Lock()
	b.disableCalls++
	b.lastDisable = req
	hook := b.onDisable
	err := b.disableErr
	resp := b.disableResp
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (b *fakeBackend) UpdateFeature(_ context.Context, req FeatureUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.updateCalls++
	b.lastUpdate = req
	return b.updateErr
}

func (b *fakeBackend) SetLoginAuthMethod(_ context.Context, method AuthMethod) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.LoginMethod = method.Selection()
	return nil
}

func (b *fakeBackend) SetTransferAuthMethod(_ context.Context, method AuthMethod) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.TransferMethod = method.Selection()
	return nil
}

func newTestEngine(t *testing.T) (*miniredis.Miniredis, *Engine, *fakeBackend) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	backend := newFakeBackend()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithBackend(backend).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return mr, engine, backend
}

// loadTestSettings primes the engine so mutating operations pass the
// readiness guard.
func loadTestSettings(t *testing.T, engine *Engine) *SettingsSnapshot {
	t.Helper()

	snapshot, err := engine.Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings failed: %v", err)
	}
	return snapshot
}
