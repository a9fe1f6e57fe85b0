package walletsec

import (
	"context"
	"time"

	internalaudit "github.com/vaultik/walletsec/internal/audit"
)

// AuditEventType names the category of an [AuditEvent].
type AuditEventType = internalaudit.EventType

// Audit event types emitted by the engine.
const (
	// AuditToggleEnable is an exported constant or variable used by the security engine.
	AuditToggleEnable AuditEventType = "toggle_enable"
	// AuditToggleDisable is an exported constant or variable used by the security engine.
	AuditToggleDisable AuditEventType = "toggle_disable"
	// AuditToggleBlocked is an exported constant or variable used by the security engine.
	AuditToggleBlocked AuditEventType = "toggle_blocked"
	// AuditTwoFactorSetup is an exported constant or variable used by the security engine.
	AuditTwoFactorSetup AuditEventType = "twofactor_setup"
	// AuditTwoFactorVerify is an exported constant or variable used by the security engine.
	AuditTwoFactorVerify AuditEventType = "twofactor_verify"
	// AuditTwoFactorDisable is an exported constant or variable used by the security engine.
	AuditTwoFactorDisable AuditEventType = "twofactor_disable"
	// AuditMethodChange is an exported constant or variable used by the security engine.
	AuditMethodChange AuditEventType = "method_change"
	// AuditRateLimited is an exported constant or variable used by the security engine.
	AuditRateLimited AuditEventType = "rate_limited"
	// AuditFetchFailure is an exported constant or variable used by the security engine.
	AuditFetchFailure AuditEventType = "fetch_failure"
	// AuditAlertDismissed is an exported constant or variable used by the security engine.
	AuditAlertDismissed AuditEventType = "alert_dismissed"
)

func (e *Engine) emitAudit(ctx context.Context, eventType AuditEventType, featureID FeatureID, success bool, opErr error, metadata map[string]string) {
	if e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Feature:   string(featureID),
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	e.audit.Emit(ctx, event)
}

// AuditDropped returns the number of audit events discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}
