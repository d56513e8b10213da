package otpcode

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// HOTPWindow is how many counter values Validate probes.
const HOTPWindow = 10

// HOTP computes and validates counter-based codes.
type HOTP struct {
	window uint64
}

// NewHOTP returns an engine with the standard look-ahead window.
func NewHOTP() *HOTP {
	return &HOTP{window: HOTPWindow}
}

// Compute returns the compatible-mode code for secret at counter: HMAC-SHA1
// keyed with the secret text over the 4-byte big-endian counter.
func (h *HOTP) Compute(secret string, counter uint64) (string, error) {
	if counter > math.MaxUint32 {
		return "", ErrCounterOverflow
	}
	var msg [4]byte
	binary.BigEndian.PutUint32(msg[:], uint32(counter))
	return hmacCode(sha1.New, []byte(secret), msg[:]), nil
}

// ComputeFor returns the code for account a at counter, honouring the
// account's encoding.
func (h *HOTP) ComputeFor(a models.Account, counter uint64) (string, error) {
	if a.Type != models.OTPTypeHOTP {
		return "", ErrWrongOTPType
	}
	if a.Encoding == models.EncodingRFC {
		code, err := hotp.GenerateCodeCustom(a.Key, counter, hotp.ValidateOpts{
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		if err != nil {
			return "", fmt.Errorf("hotp: %w", err)
		}
		return code, nil
	}
	return h.Compute(a.Key, counter)
}

// Generate returns the code at the account's current counter together with
// the counter the caller must persist next.
func (h *HOTP) Generate(a models.Account) (code string, next uint64, err error) {
	counter := a.CounterValue()
	if counter == math.MaxUint64 {
		return "", 0, ErrCounterOverflow
	}
	code, err = h.ComputeFor(a, counter)
	if err != nil {
		return "", 0, err
	}
	return code, counter + 1, nil
}

// Validate looks for candidate in [counter, counter+window). On a match it
// returns one past the matching counter, so that code and every earlier one
// can't be replayed, plus the matched code.
func (h *HOTP) Validate(a models.Account, candidate string) (newCounter uint64, code string, err error) {
	if a.Type != models.OTPTypeHOTP {
		return 0, "", ErrWrongOTPType
	}
	if !wellFormed(candidate) {
		return 0, "", ErrInvalidCode
	}

	limit := uint64(math.MaxUint64)
	if a.Encoding != models.EncodingRFC {
		limit = math.MaxUint32
	}

	start := a.CounterValue()
	for i := uint64(0); i < h.window; i++ {
		c := start + i
		if c < start || c > limit || c == math.MaxUint64 {
			break
		}
		code, err := h.ComputeFor(a, c)
		if err != nil {
			return 0, "", err
		}
		if codesEqual(code, candidate) {
			return c + 1, code, nil
		}
	}
	return 0, "", ErrInvalidCode
}
