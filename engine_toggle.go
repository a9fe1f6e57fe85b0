package walletsec

import "context"

// Toggle requests a state change for one security control and returns the
// dialog the caller must drive next. Observable outcomes:
//
//   - Premium-gated feature on a free account: silent no-op, zero dialog.
//   - Wallet freeze: applied immediately, no dialog.
//   - Two-factor: opens the setup wizard when disabled, the disable wizard
//     when enabled.
//   - Everything else: opens an enable or disable confirmation dialog.
//
// Opening anything while another dialog is open fails with [ErrDialogOpen].
func (e *Engine) Toggle(ctx context.Context, id FeatureID) (ActiveDialog, error) {
	e.mu.Lock()

	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return ActiveDialog{}, err
	}

	if _, ok := e.registry.Lookup(string(id)); !ok {
		e.mu.Unlock()
		return ActiveDialog{}, ErrUnknownFeature
	}

	if !e.registry.IsToggleAllowed(string(id), e.premium) {
		e.mu.Unlock()
		e.metricInc(MetricToggleBlocked)
		e.emitAudit(ctx, AuditToggleBlocked, id, false, nil, nil)
		return ActiveDialog{}, nil
	}

	if id == FeatureWalletFreeze {
		target := !e.enabled[id]
		e.mu.Unlock()
		return ActiveDialog{}, e.applyFreeze(ctx, target)
	}

	if e.dialog.Kind != DialogNone {
		e.mu.Unlock()
		return ActiveDialog{}, ErrDialogOpen
	}

	if id == FeatureTwoFactor {
		step := StepChoose
		if e.enabled[id] {
			step = StepChooseDisableMethod
		}
		e.session = newTwoFactorSession(step, e.config.TwoFactor.CodeDigits)
		e.dialog = ActiveDialog{Kind: DialogTwoFactor, Feature: id, Step: step}
	} else if e.enabled[id] {
		e.dialog = ActiveDialog{Kind: DialogConfirmDisable, Feature: id}
	} else {
		e.dialog = ActiveDialog{Kind: DialogConfirmEnable, Feature: id}
	}

	dialog := e.dialogLocked()
	e.mu.Unlock()
	return dialog, nil
}

// applyFreeze flips the wallet freeze flag without a confirmation dialog.
func (e *Engine) applyFreeze(ctx context.Context, target bool) error {
	err := e.backend.UpdateFeature(ctx, FeatureUpdate{
		Feature: FeatureWalletFreeze,
		Enabled: target,
	})
	if err != nil {
		e.metricInc(toggleFailureMetric(target))
		e.observeBackendErr(ctx, toggleAuditType(target), FeatureWalletFreeze, err)
		return err
	}

	e.mu.Lock()
	e.enabled[FeatureWalletFreeze] = target
	e.mu.Unlock()

	e.metricInc(toggleSuccessMetric(target))
	e.emitAudit(ctx, toggleAuditType(target), FeatureWalletFreeze, true, nil, nil)
	_ = e.ClearSettingsCache(ctx)
	return nil
}

// ConfirmEnable completes an open enable-confirmation dialog. Value carries
// the feature-specific payload where one applies: the daily limit amount, the
// country or IP list, the access window. The local flag flips only after the
// backend confirms; the dialog stays open on failure so the caller can retry.
func (e *Engine) ConfirmEnable(ctx context.Context, id FeatureID, value any) error {
	e.mu.Lock()
	if e.dialog.Kind != DialogConfirmEnable || e.dialog.Feature != id {
		e.mu.Unlock()
		return ErrNoDialog
	}
	e.mu.Unlock()

	err := e.backend.UpdateFeature(ctx, FeatureUpdate{
		Feature: id,
		Enabled: true,
		Value:   value,
	})
	if err != nil {
		e.metricInc(MetricToggleEnableFailure)
		e.observeBackendErr(ctx, AuditToggleEnable, id, err)
		return err
	}

	e.mu.Lock()
	e.enabled[id] = true
	e.closeDialogLocked()
	e.mu.Unlock()

	e.metricInc(MetricToggleEnableSuccess)
	e.emitAudit(ctx, AuditToggleEnable, id, true, nil, nil)
	_ = e.ClearSettingsCache(ctx)
	return nil
}

// ConfirmDisable completes an open disable-confirmation dialog. Features in
// the password-protected set require the wallet password; an empty one fails
// locally with [ErrWalletPasswordRequired] before any backend call.
func (e *Engine) ConfirmDisable(ctx context.Context, id FeatureID, walletPassword string) error {
	e.mu.Lock()
	if e.dialog.Kind != DialogConfirmDisable || e.dialog.Feature != id {
		e.mu.Unlock()
		return ErrNoDialog
	}
	e.mu.Unlock()

	if passwordProtectedFeatures[id] && walletPassword == "" {
		return ErrWalletPasswordRequired
	}

	err := e.backend.UpdateFeature(ctx, FeatureUpdate{
		Feature:        id,
		Enabled:        false,
		WalletPassword: walletPassword,
	})
	if err != nil {
		e.metricInc(MetricToggleDisableFailure)
		e.observeBackendErr(ctx, AuditToggleDisable, id, err)
		return err
	}

	e.mu.Lock()
	e.enabled[id] = false
	e.closeDialogLocked()
	e.mu.Unlock()

	e.metricInc(MetricToggleDisableSuccess)
	e.emitAudit(ctx, AuditToggleDisable, id, true, nil, nil)
	_ = e.ClearSettingsCache(ctx)
	return nil
}

func toggleSuccessMetric(enable bool) MetricID {
	if enable {
		return MetricToggleEnableSuccess
	}
	return MetricToggleDisableSuccess
}

func toggleFailureMetric(enable bool) MetricID {
	if enable {
		return MetricToggleEnableFailure
	}
	return MetricToggleDisableFailure
}

func toggleAuditType(enable bool) AuditEventType {
	if enable {
		return AuditToggleEnable
	}
	return AuditToggleDisable
}
