package otpcode

import (
	"crypto/hmac"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
)

// Digits is the length of every generated code.
const Digits = 6

const modulus = 1_000_000

// truncationByte is the digest byte whose low nibble selects the offset.
const truncationByte = 19

var (
	// ErrInvalidCode is returned when a candidate does not match inside the
	// validation window, or is not a 6-digit code at all.
	ErrInvalidCode = errors.New("invalid code")

	// ErrWrongOTPType is returned when an account of the other kind is
	// handed to an engine.
	ErrWrongOTPType = errors.New("wrong otp type for this operation")

	// ErrCounterOverflow is returned when a compatible-mode HOTP counter no
	// longer fits in 4 bytes.
	ErrCounterOverflow = errors.New("hotp counter overflow")
)

// hmacCode signs msg with key and applies dynamic truncation.
func hmacCode(newHash func() hash.Hash, key, msg []byte) string {
	mac := hmac.New(newHash, key)
	mac.Write(msg)
	sum := mac.Sum(nil)

	offset := int(sum[truncationByte] & 0x0f)
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return formatCode(bin % modulus)
}

func formatCode(v uint32) string {
	return fmt.Sprintf("%0*d", Digits, v)
}

// wellFormed reports whether s is exactly Digits ASCII digits.
func wellFormed(s string) bool {
	if len(s) != Digits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
