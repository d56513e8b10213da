package otpcode

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dmitrijs2005/otpkeeper/internal/clock"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultStep is the TOTP time step in seconds.
	DefaultStep uint64 = 30

	// TOTPWindow bounds validation to [mf-TOTPWindow, mf+TOTPWindow).
	TOTPWindow uint64 = 3
)

// MovingFactor returns floor(unix(t) / step). Instants before the epoch map
// to 0; a zero step means DefaultStep.
func MovingFactor(t time.Time, step uint64) uint64 {
	if step == 0 {
		step = DefaultStep
	}
	unix := t.Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix) / step
}

// TOTP computes and validates time-based codes against an injected clock.
type TOTP struct {
	clock  clock.Clocker
	step   uint64
	window uint64
}

// NewTOTP returns an engine reading time from c. A zero step means
// DefaultStep.
func NewTOTP(c clock.Clocker, step uint64) *TOTP {
	if step == 0 {
		step = DefaultStep
	}
	return &TOTP{clock: c, step: step, window: TOTPWindow}
}

// Step returns the configured time step in seconds.
func (t *TOTP) Step() uint64 {
	return t.step
}

// Compute returns the compatible-mode code: HMAC-SHA256 keyed with the
// secret text over the 8-byte big-endian moving factor.
func (t *TOTP) Compute(secret string, mf uint64) (string, error) {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], mf)
	return hmacCode(sha256.New, []byte(secret), msg[:]), nil
}

// ComputeFor returns the code for account a at moving factor mf, honouring
// the account's encoding.
func (t *TOTP) ComputeFor(a models.Account, mf uint64) (string, error) {
	if a.Type != models.OTPTypeTOTP {
		return "", ErrWrongOTPType
	}
	if a.Encoding == models.EncodingRFC {
		at := time.Unix(int64(mf*t.step), 0).UTC()
		code, err := totp.GenerateCodeCustom(a.Key, at, totp.ValidateOpts{
			Period:    uint(t.step),
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA256,
		})
		if err != nil {
			return "", fmt.Errorf("totp: %w", err)
		}
		return code, nil
	}
	return t.Compute(a.Key, mf)
}

// MovingFactor returns the moving factor for the clock's current time.
func (t *TOTP) MovingFactor() uint64 {
	return MovingFactor(t.clock.Now(), t.step)
}

// Now returns the code for a at the current time.
func (t *TOTP) Now(a models.Account) (string, error) {
	return t.ComputeFor(a, t.MovingFactor())
}

// Validate looks for candidate in [mf-window, mf+window) around the clock's
// current moving factor. Nothing is persisted, so a code stays acceptable
// for as long as it is inside the window.
func (t *TOTP) Validate(a models.Account, candidate string) (string, error) {
	if a.Type != models.OTPTypeTOTP {
		return "", ErrWrongOTPType
	}
	if !wellFormed(candidate) {
		return "", ErrInvalidCode
	}

	mf := t.MovingFactor()
	lo := uint64(0)
	if mf > t.window {
		lo = mf - t.window
	}
	hi := mf + t.window

	for f := lo; f < hi; f++ {
		code, err := t.ComputeFor(a, f)
		if err != nil {
			return "", err
		}
		if codesEqual(code, candidate) {
			return code, nil
		}
	}
	return "", ErrInvalidCode
}
