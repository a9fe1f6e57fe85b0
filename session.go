package walletsec

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TwoFactorStep is the wizard position inside the two-factor dialog. Steps 1
// through 3 are the setup path, 4 and 5 the disable path. The two paths never
// mix within one session.
type TwoFactorStep uint8

const (
	// StepNone is an exported constant or variable used by the security engine.
	StepNone TwoFactorStep = iota
	// StepChoose is an exported constant or variable used by the security engine.
	StepChoose
	// StepSetup is an exported constant or variable used by the security engine.
	StepSetup
	// StepComplete is an exported constant or variable used by the security engine.
	StepComplete
	// StepChooseDisableMethod is an exported constant or variable used by the security engine.
	StepChooseDisableMethod
	// StepVerifyDisable is an exported constant or variable used by the security engine.
	StepVerifyDisable
)

// String describes the string operation and its observable behavior.
func (s TwoFactorStep) String() string {
	switch s {
	case StepChoose:
		return "choose"
	case StepSetup:
		return "setup"
	case StepComplete:
		return "complete"
	case StepChooseDisableMethod:
		return "choose_disable_method"
	case StepVerifyDisable:
		return "verify_disable"
	default:
		return "none"
	}
}

// TwoFactorSession is the per-dialog state of one setup or disable wizard. A
// session is created when the dialog opens and discarded when it closes; its
// ID lets in-flight backend results from an abandoned session be thrown away
// instead of mutating a newer one. Callers access sessions only through the
// engine, which holds the lock.
type TwoFactorSession struct {
	id   uuid.UUID
	step TwoFactorStep

	// Setup path.
	secret      string
	qrCode      string
	codeDigits  []byte
	backupCodes []string
	copiedAt    time.Time

	// Disable path.
	disableMethod   DisableMethod
	backupCodeInput string
}

func newTwoFactorSession(step TwoFactorStep, digits int) *TwoFactorSession {
	return &TwoFactorSession{
		id:         uuid.New(),
		step:       step,
		codeDigits: make([]byte, 0, digits),
	}
}

// ID returns the session identity.
func (s *TwoFactorSession) ID() uuid.UUID {
	return s.id
}

// Step returns the current wizard position.
func (s *TwoFactorSession) Step() TwoFactorStep {
	return s.step
}

// Secret returns the provisioning secret fetched for the setup path.
func (s *TwoFactorSession) Secret() string {
	return s.secret
}

// QRCode returns the provisioning QR image payload for the setup path.
func (s *TwoFactorSession) QRCode() string {
	return s.qrCode
}

// Code returns the authenticator digits typed so far.
func (s *TwoFactorSession) Code() string {
	return string(s.codeDigits)
}

// BackupCodes returns the one-time recovery codes issued on verification.
func (s *TwoFactorSession) BackupCodes() []string {
	out := make([]string, len(s.backupCodes))
	copy(out, s.backupCodes)
	return out
}

// DisableMethod returns the chosen verification channel on the disable path.
func (s *TwoFactorSession) DisableMethod() DisableMethod {
	return s.disableMethod
}

// BackupCodeInput returns the masked backup-code input, separators included.
func (s *TwoFactorSession) BackupCodeInput() string {
	return s.backupCodeInput
}

// pushDigit appends one digit cell. Non-digit bytes and input past the digit
// count are ignored.
func (s *TwoFactorSession) pushDigit(digits int, ch byte) {
	if ch < '0' || ch > '9' {
		return
	}
	if len(s.codeDigits) >= digits {
		return
	}
	s.codeDigits = append(s.codeDigits, ch)
}

// popDigit removes the last digit cell, if any.
func (s *TwoFactorSession) popDigit() {
	if len(s.codeDigits) > 0 {
		s.codeDigits = s.codeDigits[:len(s.codeDigits)-1]
	}
}

// pasteCode replaces the cells with the digits of text, filtered to at most
// the configured count. Matches paste behavior: non-digits are dropped, not
// rejected.
func (s *TwoFactorSession) pasteCode(digits int, text string) {
	s.codeDigits = s.codeDigits[:0]
	for i := 0; i < len(text) && len(s.codeDigits) < digits; i++ {
		if text[i] >= '0' && text[i] <= '9' {
			s.codeDigits = append(s.codeDigits, text[i])
		}
	}
}

// codeComplete reports whether every digit cell is filled.
func (s *TwoFactorSession) codeComplete(digits int) bool {
	return len(s.codeDigits) == digits
}

// setBackupCodeInput normalizes raw into the grouped XXXX-XXXX-XXXX shape:
// uppercased alphanumerics only, a dash inserted after each full group,
// truncated at the full masked length.
func (s *TwoFactorSession) setBackupCodeInput(cfg TwoFactorConfig, raw string) {
	var b strings.Builder
	b.Grow(cfg.backupCodeFullLength())

	count := 0
	limit := cfg.BackupCodeGroups * cfg.BackupCodeGroupLength
	for _, r := range strings.ToUpper(raw) {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			continue
		}
		if count == limit {
			break
		}
		if count > 0 && count%cfg.BackupCodeGroupLength == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
		count++
	}
	s.backupCodeInput = b.String()
}

// backupCodeComplete reports whether the masked input is fully filled.
func (s *TwoFactorSession) backupCodeComplete(cfg TwoFactorConfig) bool {
	return len(s.backupCodeInput) == cfg.backupCodeFullLength()
}

// markCopied records the time the backup codes were copied to the clipboard.
func (s *TwoFactorSession) markCopied(at time.Time) {
	s.copiedAt = at
}

// copiedRecently reports whether the copy happened within ttl of now. The UI
// shows a transient "copied" indicator while this is true.
func (s *TwoFactorSession) copiedRecently(now time.Time, ttl time.Duration) bool {
	return !s.copiedAt.IsZero() && now.Sub(s.copiedAt) < ttl
}
