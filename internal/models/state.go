package models

// Secrets is the unencrypted metadata stored next to the account blob.
type Secrets struct {
	// PinHash is the encoded Argon2 hash of the PIN. Empty until init.
	PinHash string `json:"pin_hash,omitempty"`

	// Nonce is the 24-byte nonce of the most recent blob encryption.
	Nonce []byte `json:"nonce,omitempty"`

	// KDF names the scheme that turns PinHash into the blob key. Empty means
	// the store predates the field.
	KDF string `json:"kdf,omitempty"`
}

// HasPin reports whether a PIN has been set.
func (s Secrets) HasPin() bool {
	return s.PinHash != ""
}

// State is everything a backend persists: the encrypted account blob and
// its secrets record. Backends load and commit it as one unit.
type State struct {
	Blob    []byte
	Secrets Secrets
}
