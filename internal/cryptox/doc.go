// Package cryptox holds the cryptographic building blocks of the credential
// store: the Argon2 PIN hash, derivation of the blob encryption key from that
// hash, XChaCha20-Poly1305 encryption of the account blob, and generation of
// new Base32 OTP secrets.
//
// All functions are pure with respect to external state apart from reading
// crypto/rand.
package cryptox
