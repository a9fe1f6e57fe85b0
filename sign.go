package walletsec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"time"
)

// SignedCode is the tamper-evidence payload posted with every code
// verification: the code, its submission timestamp, a digest binding the two,
// and a reversed base64 echo of the code. The scheme is fixed by the backend
// contract; it is not a substitute for transport security and must not be
// strengthened or weakened without product sign-off.
type SignedCode struct {
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
	CodeHash  string `json:"codeHash"`
	Challenge string `json:"challenge"`
}

// DisableMethod selects the verification channel for the 2FA disable path.
type DisableMethod uint8

const (
	// DisableMethodNone is an exported constant or variable used by the security engine.
	DisableMethodNone DisableMethod = iota
	// DisableMethodApp is an exported constant or variable used by the security engine.
	DisableMethodApp
	// DisableMethodBackup is an exported constant or variable used by the security engine.
	DisableMethodBackup
)

// DisableRequest is the payload for POST /api/security/2fa/disable. Exactly
// one of Code or BackupCode is set, matching Method.
type DisableRequest struct {
	Method     DisableMethod `json:"-"`
	Code       string        `json:"code,omitempty"`
	BackupCode string        `json:"backupCode,omitempty"`
	Timestamp  int64         `json:"timestamp"`
	CodeHash   string        `json:"codeHash"`
	Challenge  string        `json:"challenge"`
}

func signCode(code string, at time.Time) SignedCode {
	ts := at.UnixMilli()
	digest := sha256.Sum256([]byte(code + strconv.FormatInt(ts, 10)))
	return SignedCode{
		Code:      code,
		Timestamp: ts,
		CodeHash:  hex.EncodeToString(digest[:]),
		Challenge: base64.StdEncoding.EncodeToString([]byte(reverseString(code))),
	}
}

func signDisable(method DisableMethod, credential string, at time.Time) DisableRequest {
	signed := signCode(credential, at)
	req := DisableRequest{
		Method:    method,
		Timestamp: signed.Timestamp,
		CodeHash:  signed.CodeHash,
		Challenge: signed.Challenge,
	}
	if method == DisableMethodBackup {
		req.BackupCode = credential
	} else {
		req.Code = credential
	}
	return req
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
