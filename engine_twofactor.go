package walletsec

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TwoFactorDisableResult is the outcome of a confirmed disable, including the
// transfer-method fallback applied when the backend reports that disabling
// 2FA invalidated the transfer authorization selection.
type TwoFactorDisableResult struct {
	Message             string
	TransferAuthUpdated bool
	TransferMethod      AuthMethod
}

// StartTwoFactorSetup fetches provisioning material and advances the setup
// wizard from the choose step to the setup step. A result arriving after the
// dialog was closed, or after a new dialog replaced it, is discarded.
func (e *Engine) StartTwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error) {
	e.mu.Lock()
	sessionID, err := e.requireTwoFactorStepLocked(StepChoose)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricTwoFactorSetupRequested)

	setup, err := e.backend.FetchTwoFactorSetup(ctx)
	if err != nil {
		e.observeBackendErr(ctx, AuditTwoFactorSetup, FeatureTwoFactor, err)
		return nil, err
	}
	if setup == nil || setup.Secret == "" || setup.QRCode == "" {
		e.emitAudit(ctx, AuditTwoFactorSetup, FeatureTwoFactor, false, ErrInvalidServerResponse, nil)
		return nil, ErrInvalidServerResponse
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.sessionAliveLocked(sessionID) {
		return nil, ErrDialogClosed
	}

	e.session.secret = setup.Secret
	e.session.qrCode = setup.QRCode
	e.session.step = StepSetup
	return setup, nil
}

// SetCodeDigit appends one typed digit to the code input. Valid on the setup
// and disable verification steps; non-digits are ignored.
func (e *Engine) SetCodeDigit(ch byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCodeInputLocked(); err != nil {
		return err
	}
	e.session.pushDigit(e.config.TwoFactor.CodeDigits, ch)
	return nil
}

// Backspace removes the last typed digit.
func (e *Engine) Backspace() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCodeInputLocked(); err != nil {
		return err
	}
	e.session.popDigit()
	return nil
}

// PasteCode replaces the code input with the digits found in text.
func (e *Engine) PasteCode(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCodeInputLocked(); err != nil {
		return err
	}
	e.session.pasteCode(e.config.TwoFactor.CodeDigits, text)
	return nil
}

// Code returns the current code input.
func (e *Engine) Code() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireCodeInputLocked(); err != nil {
		return "", err
	}
	return e.session.Code(), nil
}

// VerifyTwoFactorSetup submits the typed authenticator code. The code must be
// complete; the backend response must carry both a message and backup codes,
// otherwise the flow fails with [ErrInvalidServerResponse] and 2FA is not
// marked enabled. On success the wizard advances to the completion step with
// the backup codes ready to copy.
func (e *Engine) VerifyTwoFactorSetup(ctx context.Context) (*TwoFactorVerifyResponse, error) {
	e.mu.Lock()
	sessionID, err := e.requireTwoFactorStepLocked(StepSetup)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if !e.session.codeComplete(e.config.TwoFactor.CodeDigits) {
		e.mu.Unlock()
		return nil, ErrCodeIncomplete
	}
	code := e.session.Code()
	e.mu.Unlock()

	resp, err := e.backend.VerifyTwoFactor(ctx, signCode(code, e.now()))
	if err != nil {
		e.metricInc(MetricTwoFactorVerifyFailure)
		e.observeBackendErr(ctx, AuditTwoFactorVerify, FeatureTwoFactor, err)
		return nil, err
	}
	if resp == nil || resp.Message == "" || len(resp.BackupCodes) == 0 {
		e.metricInc(MetricTwoFactorVerifyFailure)
		e.emitAudit(ctx, AuditTwoFactorVerify, FeatureTwoFactor, false, ErrInvalidServerResponse, nil)
		return nil, ErrInvalidServerResponse
	}

	e.mu.Lock()
	if !e.sessionAliveLocked(sessionID) {
		e.mu.Unlock()
		return nil, ErrDialogClosed
	}
	e.enabled[FeatureTwoFactor] = true
	e.session.backupCodes = append([]string(nil), resp.BackupCodes...)
	e.session.step = StepComplete
	e.storeVerificationTokenLocked(resp.VerificationToken)
	e.mu.Unlock()

	e.metricInc(MetricTwoFactorVerifySuccess)
	e.emitAudit(ctx, AuditTwoFactorVerify, FeatureTwoFactor, true, nil, nil)
	_ = e.ClearSettingsCache(ctx)
	return resp, nil
}

// ChooseDisableMethod selects how the disable is verified and advances the
// wizard to the verification step.
func (e *Engine) ChooseDisableMethod(method DisableMethod) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireTwoFactorStepLocked(StepChooseDisableMethod); err != nil {
		return err
	}
	if method == DisableMethodNone {
		return ErrDisableMethodRequired
	}

	e.session.disableMethod = method
	e.session.step = StepVerifyDisable
	return nil
}

// SetBackupCodeInput replaces the backup-code input with raw, normalized to
// the grouped uppercase shape.
func (e *Engine) SetBackupCodeInput(raw string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireTwoFactorStepLocked(StepVerifyDisable); err != nil {
		return err
	}
	if e.session.disableMethod != DisableMethodBackup {
		return ErrDisableMethodRequired
	}

	e.session.setBackupCodeInput(e.config.TwoFactor, raw)
	return nil
}

// BackupCodeInput returns the current masked backup-code input.
func (e *Engine) BackupCodeInput() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireTwoFactorStepLocked(StepVerifyDisable); err != nil {
		return "", err
	}
	return e.session.BackupCodeInput(), nil
}

// VerifyTwoFactorDisable submits the chosen credential. A response whose
// message does not acknowledge the disable is treated as a protocol violation
// and leaves 2FA enabled. On success the dialog closes and, when the backend
// reports the transfer authorization was reset, the transfer method falls back
// to the password when the transfer password is enabled, otherwise to the
// secret word.
func (e *Engine) VerifyTwoFactorDisable(ctx context.Context) (*TwoFactorDisableResult, error) {
	e.mu.Lock()
	sessionID, err := e.requireTwoFactorStepLocked(StepVerifyDisable)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	method := e.session.disableMethod
	var credential string
	switch method {
	case DisableMethodApp:
		if !e.session.codeComplete(e.config.TwoFactor.CodeDigits) {
			e.mu.Unlock()
			return nil, ErrCodeIncomplete
		}
		credential = e.session.Code()
	case DisableMethodBackup:
		if !e.session.backupCodeComplete(e.config.TwoFactor) {
			e.mu.Unlock()
			return nil, ErrBackupCodeIncomplete
		}
		credential = e.session.BackupCodeInput()
	default:
		e.mu.Unlock()
		return nil, ErrDisableMethodRequired
	}
	e.mu.Unlock()

	resp, err := e.backend.DisableTwoFactor(ctx, signDisable(method, credential, e.now()))
	if err != nil {
		e.metricInc(MetricTwoFactorDisableFailure)
		e.observeBackendErr(ctx, AuditTwoFactorDisable, FeatureTwoFactor, err)
		return nil, err
	}
	if resp == nil || !strings.Contains(strings.ToLower(resp.Message), "disabled") {
		e.metricInc(MetricTwoFactorDisableFailure)
		e.emitAudit(ctx, AuditTwoFactorDisable, FeatureTwoFactor, false, ErrInvalidServerResponse, nil)
		return nil, ErrInvalidServerResponse
	}

	e.mu.Lock()
	if !e.sessionAliveLocked(sessionID) {
		e.mu.Unlock()
		return nil, ErrDialogClosed
	}
	e.enabled[FeatureTwoFactor] = false
	if resp.TransferAuthUpdated {
		if e.enabled[FeatureTransferPassword] {
			e.transferMethod = MethodPassword
		} else {
			e.transferMethod = MethodSecretWord
		}
	}
	if e.loginMethod == MethodTwoFactor {
		e.loginMethod = MethodNone
	}
	transferMethod := e.transferMethod
	e.storeVerificationTokenLocked(resp.VerificationToken)
	e.closeDialogLocked()
	e.mu.Unlock()

	e.metricInc(MetricTwoFactorDisableSuccess)
	e.emitAudit(ctx, AuditTwoFactorDisable, FeatureTwoFactor, true, nil, nil)
	_ = e.ClearSettingsCache(ctx)

	return &TwoFactorDisableResult{
		Message:             StripErrorPrefix(resp.Message),
		TransferAuthUpdated: resp.TransferAuthUpdated,
		TransferMethod:      transferMethod,
	}, nil
}

// BackupCodes returns the recovery codes issued on the completion step.
func (e *Engine) BackupCodes() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireTwoFactorStepLocked(StepComplete); err != nil {
		return nil, err
	}
	return e.session.BackupCodes(), nil
}

// CopyBackupCodes returns the codes joined for the clipboard and starts the
// transient copied indicator.
func (e *Engine) CopyBackupCodes() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireTwoFactorStepLocked(StepComplete); err != nil {
		return "", err
	}
	e.session.markCopied(e.now())
	return strings.Join(e.session.backupCodes, "\n"), nil
}

// BackupCodesCopied reports whether the copied indicator is still showing.
func (e *Engine) BackupCodesCopied() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return false
	}
	return e.session.copiedRecently(e.now(), e.config.TwoFactor.CopiedIndicatorTTL)
}

// FinishTwoFactorSetup closes the completion step. Before the completion step
// the wizard is abandoned with [CloseDialog] instead.
func (e *Engine) FinishTwoFactorSetup() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.requireTwoFactorStepLocked(StepComplete); err != nil {
		return err
	}
	e.closeDialogLocked()
	return nil
}

func (e *Engine) requireTwoFactorStepLocked(step TwoFactorStep) (uuid.UUID, error) {
	if e.dialog.Kind != DialogTwoFactor || e.session == nil {
		return uuid.UUID{}, ErrNoDialog
	}
	if e.session.step != step {
		return uuid.UUID{}, ErrNoDialog
	}
	return e.session.id, nil
}

func (e *Engine) requireCodeInputLocked() error {
	if e.dialog.Kind != DialogTwoFactor || e.session == nil {
		return ErrNoDialog
	}
	if e.session.step != StepSetup && e.session.step != StepVerifyDisable {
		return ErrNoDialog
	}
	return nil
}

func (e *Engine) sessionAliveLocked(id uuid.UUID) bool {
	return e.dialog.Kind == DialogTwoFactor && e.session != nil && e.session.id == id
}

// storeVerificationTokenLocked retains the backend's verification token. The
// expiry comes from the token's own exp claim; the signature is not checked
// here because the token is opaque proof forwarded back to the same backend.
func (e *Engine) storeVerificationTokenLocked(token string) {
	if token == "" {
		return
	}
	e.verifyToken = token
	e.verifyTokenExp = time.Time{}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		e.verifyTokenExp = exp.Time
	}
}
