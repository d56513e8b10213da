package common

import (
	"crypto/rand"

	"github.com/awnumar/memguard"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source fails, since no caller can
// continue safely without randomness.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. Use it for PINs and derived keys
// once they are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	memguard.WipeBytes(b)
}
