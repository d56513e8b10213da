package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of the blob encryption key.
const KeySize = 32

// KeyScheme selects how the blob encryption key is obtained from a PIN hash.
type KeyScheme string

const (
	// KeySchemeLegacy uses the first 32 bytes of the encoded hash string as
	// the key. Stores written before the kdf field existed use this scheme.
	KeySchemeLegacy KeyScheme = "legacy"

	// KeySchemeHKDF expands the Argon2 digest with HKDF-SHA256, salted with
	// the hash's own salt.
	KeySchemeHKDF KeyScheme = "hkdf"
)

const hkdfInfo = "otpkeeper blob key v1"

// ParseKeyScheme maps a persisted kdf value to a KeyScheme. The empty string
// means the store predates the field and is treated as legacy.
func ParseKeyScheme(s string) (KeyScheme, error) {
	switch KeyScheme(s) {
	case "", KeySchemeLegacy:
		return KeySchemeLegacy, nil
	case KeySchemeHKDF:
		return KeySchemeHKDF, nil
	default:
		return "", fmt.Errorf("unknown key scheme %q", s)
	}
}

// DeriveEncryptionKey returns the 32-byte symmetric key for storedHash.
//
// The key depends only on the PIN hash, never on the raw PIN, so it exists as
// soon as a PIN is set and stays the same across saves until the PIN
// changes. Only the nonce rotates.
//
// With KeySchemeLegacy the key is the leading 32 bytes of the encoded string.
// That material is mostly the fixed "$argon2id$v=19$m=..." prefix, so its
// strength is far below 256 bits; it is kept only so existing stores open.
//
// The caller owns the returned slice and should wipe it after use.
func DeriveEncryptionKey(storedHash string, scheme KeyScheme) ([]byte, error) {
	switch scheme {
	case KeySchemeLegacy, "":
		if len(storedHash) < KeySize {
			return nil, fmt.Errorf("%w: hash shorter than %d bytes", ErrMalformedHash, KeySize)
		}
		key := make([]byte, KeySize)
		copy(key, storedHash[:KeySize])
		return key, nil

	case KeySchemeHKDF:
		h, err := decodePinHash(storedHash)
		if err != nil {
			return nil, err
		}
		key := make([]byte, KeySize)
		r := hkdf.New(sha256.New, h.digest, h.salt, []byte(hkdfInfo))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("hkdf expand: %w", err)
		}
		return key, nil

	default:
		return nil, fmt.Errorf("unknown key scheme %q", scheme)
	}
}
