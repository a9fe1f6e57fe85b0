package walletsec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEngineNotReady is an exported constant or variable used by the security engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrUnknownFeature is an exported constant or variable used by the security engine.
	ErrUnknownFeature = errors.New("unknown security feature")
	// ErrDialogOpen is an exported constant or variable used by the security engine.
	ErrDialogOpen = errors.New("another security dialog is already open")
	// ErrNoDialog is an exported constant or variable used by the security engine.
	ErrNoDialog = errors.New("no security dialog is open")
	// ErrDialogClosed is an exported constant or variable used by the security engine.
	ErrDialogClosed = errors.New("dialog closed before the operation completed")
	// ErrWalletPasswordRequired is an exported constant or variable used by the security engine.
	ErrWalletPasswordRequired = errors.New("wallet password required to disable this feature")
	// ErrCodeIncomplete is an exported constant or variable used by the security engine.
	ErrCodeIncomplete = errors.New("authenticator code incomplete")
	// ErrBackupCodeIncomplete is an exported constant or variable used by the security engine.
	ErrBackupCodeIncomplete = errors.New("backup code incomplete")
	// ErrDisableMethodRequired is an exported constant or variable used by the security engine.
	ErrDisableMethodRequired = errors.New("disable verification method not chosen")
	// ErrInvalidServerResponse is an exported constant or variable used by the security engine.
	ErrInvalidServerResponse = errors.New("invalid server response")
	// ErrTwoFactorNotEnabled is an exported constant or variable used by the security engine.
	ErrTwoFactorNotEnabled = errors.New("two-factor authentication is not enabled")
	// ErrTransferPasswordNotEnabled is an exported constant or variable used by the security engine.
	ErrTransferPasswordNotEnabled = errors.New("transfer password is not enabled")
	// ErrTransferMethodRequired is an exported constant or variable used by the security engine.
	ErrTransferMethodRequired = errors.New("transfer authorization method cannot be none")
	// ErrCacheUnavailable is an exported constant or variable used by the security engine.
	ErrCacheUnavailable = errors.New("cache backend unavailable")
	// ErrBackendUnavailable is an exported constant or variable used by the security engine.
	ErrBackendUnavailable = errors.New("settings backend unavailable")
)

// BackendError carries a backend-reported failure message verbatim, minus a
// leading "Error:" prefix, so the host UI can surface it unchanged.
type BackendError struct {
	StatusCode int
	Message    string
}

// NewBackendError creates a [BackendError] with the display prefix stripped
// from the message.
func NewBackendError(statusCode int, message string) *BackendError {
	return &BackendError{
		StatusCode: statusCode,
		Message:    StripErrorPrefix(message),
	}
}

// Error describes the error operation and its observable behavior.
func (e *BackendError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("backend rejected the request (status %d)", e.StatusCode)
	}
	return e.Message
}

// RateLimitedError is the distinct error category for backend cooldowns. It
// carries the remaining cooldown so the UI can show a countdown and disable
// the retry action until it elapses.
type RateLimitedError struct {
	RetryAfter time.Duration
}

// Error describes the error operation and its observable behavior.
func (e *RateLimitedError) Error() string {
	if e == nil {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

// StripErrorPrefix removes a leading "Error:" marker from a backend message.
// All user-visible messages pass through this before display.
func StripErrorPrefix(message string) string {
	trimmed := strings.TrimSpace(message)
	for _, prefix := range []string{"Error:", "error:"} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return trimmed
}
