package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2 work factors for new PIN hashes.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32

	// Upper bounds accepted when decoding a stored hash.
	maxArgonMemory  uint32 = 1024 * 1024
	maxArgonTime    uint32 = 64
	maxArgonThreads uint8  = 64

	// SaltSize is the length of the random salt embedded in every PIN hash.
	SaltSize = 32
)

const (
	variantArgon2id = "argon2id"
	variantArgon2i  = "argon2i"
)

// ErrMalformedHash is returned when a stored PIN hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed pin hash")

// pinHash is the decoded form of an encoded Argon2 hash string.
type pinHash struct {
	variant string
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	digest  []byte
}

// DerivePinHash hashes pin with Argon2id under a fresh random 32-byte salt
// and returns the self-describing encoded form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
//
// Salt and digest are base64 (standard alphabet, no padding). The returned
// string is everything needed to verify the PIN later and to derive the
// blob encryption key (see DeriveEncryptionKey).
func DerivePinHash(pin []byte) (string, error) {
	if len(pin) == 0 {
		return "", errors.New("pin must not be empty")
	}

	salt := common.GenerateRandByteArray(SaltSize)
	digest := argon2.IDKey(pin, salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return encodePinHash(&pinHash{
		variant: variantArgon2id,
		memory:  argonMemory,
		time:    argonTime,
		threads: argonThreads,
		salt:    salt,
		digest:  digest,
	}), nil
}

// VerifyPin reports whether candidate is the PIN that produced storedHash.
//
// Parameters and salt are taken from storedHash itself, so hashes written
// with other work factors (including argon2i hashes from older stores) keep
// verifying. Digests are compared in constant time. A malformed storedHash
// yields false, never an error.
func VerifyPin(storedHash string, candidate []byte) bool {
	h, err := decodePinHash(storedHash)
	if err != nil {
		return false
	}

	var computed []byte
	switch h.variant {
	case variantArgon2id:
		computed = argon2.IDKey(candidate, h.salt, h.time, h.memory, h.threads, uint32(len(h.digest)))
	case variantArgon2i:
		computed = argon2.Key(candidate, h.salt, h.time, h.memory, h.threads, uint32(len(h.digest)))
	default:
		return false
	}
	defer common.WipeByteArray(computed)

	return subtle.ConstantTimeCompare(h.digest, computed) == 1
}

func encodePinHash(h *pinHash) string {
	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.variant,
		argon2.Version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.digest),
	)
}

func decodePinHash(encoded string) (*pinHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrMalformedHash
	}

	h := &pinHash{variant: parts[1]}
	if h.variant != variantArgon2id && h.variant != variantArgon2i {
		return nil, fmt.Errorf("%w: unsupported variant %q", ErrMalformedHash, h.variant)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: bad version", ErrMalformedHash)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return nil, fmt.Errorf("%w: bad parameters", ErrMalformedHash)
	}
	if h.time == 0 || h.threads == 0 {
		return nil, fmt.Errorf("%w: bad parameters", ErrMalformedHash)
	}
	if h.memory > maxArgonMemory || h.time > maxArgonTime || h.threads > maxArgonThreads {
		return nil, fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(h.salt) == 0 {
		return nil, fmt.Errorf("%w: bad salt", ErrMalformedHash)
	}
	if h.digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(h.digest) == 0 {
		return nil, fmt.Errorf("%w: bad digest", ErrMalformedHash)
	}

	return h, nil
}
