// Package models defines the persisted data model of the credential store:
// accounts, the secrets record and the state handed to storage backends.
package models

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
)

// OTPType classifies an account as counter-based or time-based.
type OTPType string

const (
	OTPTypeHOTP OTPType = "HOTP"
	OTPTypeTOTP OTPType = "TOTP"
)

// ParseOTPType accepts HOTP/TOTP in any case.
func ParseOTPType(s string) (OTPType, error) {
	switch OTPType(strings.ToUpper(s)) {
	case OTPTypeHOTP:
		return OTPTypeHOTP, nil
	case OTPTypeTOTP:
		return OTPTypeTOTP, nil
	default:
		return "", fmt.Errorf("unknown otp type %q", s)
	}
}

// Encoding selects how an account's secret and moving factor are fed to the
// HMAC.
type Encoding string

const (
	// EncodingCompat keys the HMAC with the secret's Base32 text and, for
	// HOTP, a 4-byte counter. Codes match those produced by earlier versions
	// of this tool.
	EncodingCompat Encoding = ""

	// EncodingRFC decodes the secret and uses an 8-byte moving factor as in
	// RFC 4226/6238, so codes match standard authenticator apps.
	EncodingRFC Encoding = "rfc"
)

// MinSecretBytes is the smallest accepted decoded secret (128 bits).
const MinSecretBytes = 16

var (
	ErrInvalidSecret = errors.New("the key is not a valid base32 encoding")
	ErrWeakSecret    = errors.New("the key must carry at least 128 bits")
)

// Account is one stored credential.
type Account struct {
	// Key is the shared secret as upper-case Base32 text without padding.
	Key string

	// Type is HOTP or TOTP.
	Type OTPType

	// Counter is the next HOTP counter value. Nil reads as zero; TOTP
	// accounts never carry one.
	Counter *uint64

	// Encoding is EncodingCompat unless the account was added in RFC mode.
	Encoding Encoding
}

// NewHOTPAccount returns a HOTP account starting at counter 0.
func NewHOTPAccount(key string, enc Encoding) Account {
	var zero uint64
	return Account{Key: NormalizeSecret(key), Type: OTPTypeHOTP, Counter: &zero, Encoding: enc}
}

// NewTOTPAccount returns a TOTP account.
func NewTOTPAccount(key string, enc Encoding) Account {
	return Account{Key: NormalizeSecret(key), Type: OTPTypeTOTP, Encoding: enc}
}

// CounterValue returns the stored counter, or 0 when none is set.
func (a Account) CounterValue() uint64 {
	if a.Counter == nil {
		return 0
	}
	return *a.Counter
}

// WithCounter returns a copy of a with the counter set to v.
func (a Account) WithCounter(v uint64) Account {
	a.Counter = &v
	return a
}

// NormalizeSecret upper-cases key and strips surrounding blanks, inner
// spaces and trailing padding.
func NormalizeSecret(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "")
	return strings.TrimRight(key, "=")
}

// DecodeSecret returns the raw bytes of a Base32 secret in any case, with
// or without padding.
func DecodeSecret(key string) ([]byte, error) {
	key = NormalizeSecret(key)
	// unpadded Base32 never ends on a partial group of 1, 3 or 6 characters
	switch len(key) % 8 {
	case 1, 3, 6:
		return nil, ErrInvalidSecret
	}
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).Strict().DecodeString(key)
	if err != nil {
		return nil, ErrInvalidSecret
	}
	return raw, nil
}

// ValidateSecret checks that key is Base32 (case-insensitive) and carries at
// least 128 bits.
func ValidateSecret(key string) error {
	if NormalizeSecret(key) == "" {
		return ErrInvalidSecret
	}
	raw, err := DecodeSecret(key)
	if err != nil {
		return err
	}
	if len(raw) < MinSecretBytes {
		return ErrWeakSecret
	}
	return nil
}
