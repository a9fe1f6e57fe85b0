// Package restapi implements the walletsec settings backend over the wallet
// HTTP API. It is transport only: every validation and state decision stays
// in the engine.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vaultik/walletsec"
)

// Endpoint paths relative to the base URL.
const (
	pathSettings       = "/api/security/settings"
	pathTwoFactorSetup = "/api/security/2fa/setup"
	pathTwoFactorCheck = "/api/security/2fa/verify"
	pathTwoFactorOff   = "/api/security/2fa/disable"
	pathLoginMethod    = "/api/security/login-auth-method"
	pathTransferMethod = "/api/security/transfer-auth-method"
)

// featurePaths maps each toggleable control to its endpoint. Two-factor is
// absent: its changes go through the dedicated 2fa endpoints above.
var featurePaths = map[walletsec.FeatureID]string{
	walletsec.FeatureTransferPassword: "/api/security/transfer-password",
	walletsec.FeatureDailyLimit:       "/api/security/daily-limit",
	walletsec.FeatureGeoLock:          "/api/security/geo-lock",
	walletsec.FeatureIPWhitelist:      "/api/security/ip-whitelist",
	walletsec.FeatureTimeBasedAccess:  "/api/security/time-based-access",
	walletsec.FeatureAutoSignIn:       "/api/security/auto-signin",
	walletsec.FeatureWalletFreeze:     "/api/security/freeze-wallet",
}

// Client is a [walletsec.Backend] over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithAuthToken sets the bearer token attached to every request.
func WithAuthToken(token string) Option {
	return func(client *Client) {
		client.authToken = token
	}
}

// NewClient creates a [Client] for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSettings describes the fetchsettings operation and its observable behavior.
//
// FetchSettings may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) FetchSettings(ctx context.Context) (*walletsec.SettingsSnapshot, error) {
	var snapshot walletsec.SettingsSnapshot
	if err := c.do(ctx, http.MethodGet, pathSettings, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FetchTwoFactorSetup describes the fetchtwofactorsetup operation and its observable behavior.
//
// FetchTwoFactorSetup may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) FetchTwoFactorSetup(ctx context.Context) (*walletsec.TwoFactorSetup, error) {
	var setup walletsec.TwoFactorSetup
	if err := c.do(ctx, http.MethodGet, pathTwoFactorSetup, nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// VerifyTwoFactor describes the verifytwofactor operation and its observable behavior.
//
// VerifyTwoFactor may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) VerifyTwoFactor(ctx context.Context, req walletsec.SignedCode) (*walletsec.TwoFactorVerifyResponse, error) {
	var resp walletsec.TwoFactorVerifyResponse
	if err := c.do(ctx, http.MethodPost, pathTwoFactorCheck, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DisableTwoFactor describes the disabletwofactor operation and its observable behavior.
//
// DisableTwoFactor may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) DisableTwoFactor(ctx context.Context, req walletsec.DisableRequest) (*walletsec.TwoFactorDisableResponse, error) {
	var resp walletsec.TwoFactorDisableResponse
	if err := c.do(ctx, http.MethodPost, pathTwoFactorOff, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateFeature describes the updatefeature operation and its observable behavior.
//
// UpdateFeature may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) UpdateFeature(ctx context.Context, req walletsec.FeatureUpdate) error {
	path, ok := featurePaths[req.Feature]
	if !ok {
		return walletsec.ErrUnknownFeature
	}
	return c.do(ctx, http.MethodPost, path, req, nil)
}

// SetLoginAuthMethod describes the setloginauthmethod operation and its observable behavior.
//
// SetLoginAuthMethod may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) SetLoginAuthMethod(ctx context.Context, method walletsec.AuthMethod) error {
	return c.do(ctx, http.MethodPost, pathLoginMethod, methodBody{Method: method.String()}, nil)
}

// SetTransferAuthMethod describes the settransferauthmethod operation and its observable behavior.
//
// SetTransferAuthMethod may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) SetTransferAuthMethod(ctx context.Context, method walletsec.AuthMethod) error {
	return c.do(ctx, http.MethodPost, pathTransferMethod, methodBody{Method: method.String()}, nil)
}

type methodBody struct {
	Method string `json:"method"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", walletsec.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &walletsec.RateLimitedError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return walletsec.NewBackendError(resp.StatusCode, errorMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return walletsec.ErrInvalidServerResponse
	}
	return nil
}

// retryAfter reads the cooldown from the Retry-After header, supporting both
// the delay-seconds and HTTP-date forms. A missing or unparsable header maps
// to zero, never to an error.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var parsed errorBody
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(data))
}
