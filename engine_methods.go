package walletsec

import "context"

// SetLoginMethod changes the login authorization method. Selecting two-factor
// requires the two-factor feature to be enabled first.
func (e *Engine) SetLoginMethod(ctx context.Context, method AuthMethod) error {
	e.mu.Lock()
	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	if method == MethodTwoFactor && !e.enabled[FeatureTwoFactor] {
		e.mu.Unlock()
		return ErrTwoFactorNotEnabled
	}
	e.mu.Unlock()

	if err := e.backend.SetLoginAuthMethod(ctx, method); err != nil {
		e.metricInc(MetricMethodChangeFailure)
		e.observeBackendErr(ctx, AuditMethodChange, "", err)
		return err
	}

	e.mu.Lock()
	e.loginMethod = method
	e.mu.Unlock()

	e.metricInc(MetricMethodChangeSuccess)
	e.emitAudit(ctx, AuditMethodChange, "", true, nil, map[string]string{
		"slot":   "login",
		"method": method.String(),
	})
	_ = e.ClearSettingsCache(ctx)
	return nil
}

// SetTransferMethod changes the transfer authorization method. The transfer
// slot can never be empty; two-factor and password selections require their
// backing feature to be enabled.
func (e *Engine) SetTransferMethod(ctx context.Context, method AuthMethod) error {
	e.mu.Lock()
	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	switch {
	case method == MethodNone:
		e.mu.Unlock()
		return ErrTransferMethodRequired
	case method == MethodTwoFactor && !e.enabled[FeatureTwoFactor]:
		e.mu.Unlock()
		return ErrTwoFactorNotEnabled
	case method == MethodPassword && !e.enabled[FeatureTransferPassword]:
		e.mu.Unlock()
		return ErrTransferPasswordNotEnabled
	}
	e.mu.Unlock()

	if err := e.backend.SetTransferAuthMethod(ctx, method); err != nil {
		e.metricInc(MetricMethodChangeFailure)
		e.observeBackendErr(ctx, AuditMethodChange, "", err)
		return err
	}

	e.mu.Lock()
	e.transferMethod = method
	e.mu.Unlock()

	e.metricInc(MetricMethodChangeSuccess)
	e.emitAudit(ctx, AuditMethodChange, "", true, nil, map[string]string{
		"slot":   "transfer",
		"method": method.String(),
	})
	_ = e.ClearSettingsCache(ctx)
	return nil
}
