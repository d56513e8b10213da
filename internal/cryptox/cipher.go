package cryptox

import (
	"crypto/rand"
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the XChaCha20-Poly1305 nonce length.
const NonceSize = chacha20poly1305.NonceSizeX

var (
	// ErrAuthenticationFailed means the tag did not verify: wrong key, wrong
	// nonce, or tampered ciphertext.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidUTF8 means decryption succeeded but the plaintext is not text.
	ErrInvalidUTF8 = errors.New("plaintext is not valid utf-8")
)

// Encrypt seals plaintext with XChaCha20-Poly1305 under key.
//
// A fresh random 24-byte nonce is generated on every call and returned next
// to the ciphertext (which carries the 16-byte tag). Reusing a nonce under the
// same key breaks confidentiality, so callers must never pass an old nonce
// back in; there is deliberately no API for that.
//
// Example:
//
//	key, _ := DeriveEncryptionKey(pinHash, KeySchemeHKDF)
//	ct, nonce, err := Encrypt([]byte("[github]\n..."), key)
//	if err != nil {
//	    return err
//	}
//	// persist ct and nonce together
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext produced by Encrypt.
//
// Any failure to authenticate, including a key or nonce of the wrong size,
// is reported as ErrAuthenticationFailed. An empty ciphertext decrypts to an
// empty plaintext without touching the AEAD, so a store that never held any
// accounts can be opened before key material exists.
func Decrypt(ciphertext, key, nonce []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return []byte{}, nil
	}

	if len(nonce) != NonceSize {
		return nil, ErrAuthenticationFailed
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// DecryptString is Decrypt for callers that expect text. It additionally
// fails with ErrInvalidUTF8 when the plaintext is not valid UTF-8.
func DecryptString(ciphertext, key, nonce []byte) (string, error) {
	plaintext, err := Decrypt(ciphertext, key, nonce)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", ErrInvalidUTF8
	}
	return string(plaintext), nil
}
