package walletsec

import (
	"context"
	"encoding/json"
)

// SecurityAlert flags one high-weight control that is currently weakening the
// posture: a heavy feature left off, or an inverted one left on.
type SecurityAlert struct {
	Feature FeatureID
	Weight  int
}

// alertWeightThreshold is the minimum scoring weight for a control to warrant
// an alert.
const alertWeightThreshold = 10

// SecurityAlerts returns the outstanding alerts, excluding dismissed ones.
// Premium-gated features never alert on free accounts.
func (e *Engine) SecurityAlerts(ctx context.Context) ([]SecurityAlert, error) {
	dismissed, err := e.DismissedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	skip := make(map[FeatureID]bool, len(dismissed))
	for _, id := range dismissed {
		skip[id] = true
	}

	e.mu.Lock()
	features := e.featureListLocked()
	premium := e.premium
	e.mu.Unlock()

	var alerts []SecurityAlert
	for _, f := range features {
		if f.Weight < alertWeightThreshold || skip[f.ID] {
			continue
		}
		if f.PremiumOnly && !premium {
			continue
		}
		misconfigured := (!f.Inverted && !f.Enabled) || (f.Inverted && f.Enabled)
		if misconfigured {
			alerts = append(alerts, SecurityAlert{Feature: f.ID, Weight: f.Weight})
		}
	}
	return alerts, nil
}

// DismissAlert hides the alert for id until the dismissal list is cleared.
// Dismissals persist across restarts through the cache store.
func (e *Engine) DismissAlert(ctx context.Context, id FeatureID) error {
	if _, ok := e.registry.Lookup(string(id)); !ok {
		return ErrUnknownFeature
	}

	dismissed, err := e.DismissedAlerts(ctx)
	if err != nil {
		return err
	}
	for _, existing := range dismissed {
		if existing == id {
			return nil
		}
	}
	dismissed = append(dismissed, id)

	data, err := json.Marshal(dismissed)
	if err != nil {
		return err
	}
	if err := e.store.Set(ctx, dismissedAlertsKey, data, e.now()); err != nil {
		return err
	}

	e.emitAudit(ctx, AuditAlertDismissed, id, true, nil, nil)
	return nil
}

// DismissedAlerts returns the persisted dismissal list. A corrupt stored list
// is treated as empty, matching the cache store's recovery behavior.
func (e *Engine) DismissedAlerts(ctx context.Context) ([]FeatureID, error) {
	entry, err := e.store.Get(ctx, dismissedAlertsKey)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	var dismissed []FeatureID
	if err := json.Unmarshal(entry.Data, &dismissed); err != nil {
		return nil, nil
	}
	return dismissed, nil
}

// ClearDismissedAlerts resets the dismissal list.
func (e *Engine) ClearDismissedAlerts(ctx context.Context) error {
	return e.store.Clear(ctx, dismissedAlertsKey)
}
