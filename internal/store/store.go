// Package store owns the in-memory account map and the secrets record.
//
// A Store is opened once per invocation from a Backend, mutated in memory and
// written back with Save, which re-encrypts the whole map under a fresh nonce
// and commits blob and secrets together.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/dmitrijs2005/otpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/otpkeeper/internal/logging"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
)

var (
	// ErrMissingKeyMaterial means a blob is stored without a pin hash or
	// nonce, which only a partial or corrupt save produces.
	ErrMissingKeyMaterial = errors.New("encrypted data present but key material is missing")

	// ErrDecryptionFailed means the blob did not authenticate under the
	// derived key.
	ErrDecryptionFailed = errors.New("cannot read store: decryption failed")

	// ErrCorrupt means the decrypted blob is not a valid account table.
	ErrCorrupt = errors.New("store data is corrupt")

	// ErrMissingSalt is returned by Save before a PIN has been set.
	ErrMissingSalt = errors.New("no pin has been set, cannot encrypt")
)

// Backend is the persistence the store needs. persist.Backend satisfies it.
type Backend interface {
	Load(ctx context.Context) (*models.State, error)
	Commit(ctx context.Context, state *models.State) error
}

// Store is not safe for concurrent use.
type Store struct {
	backend  Backend
	log      logging.Logger
	scheme   cryptox.KeyScheme
	accounts map[string]models.Account
	secrets  models.Secrets
}

type Option func(*Store)

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithKeyScheme sets the scheme recorded when a PIN is set. Existing stores
// keep their persisted scheme until the PIN changes.
func WithKeyScheme(scheme cryptox.KeyScheme) Option {
	return func(s *Store) { s.scheme = scheme }
}

// Open loads and decrypts the state held by backend.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend:  backend,
		log:      logging.Discard(),
		scheme:   cryptox.KeySchemeHKDF,
		accounts: map[string]models.Account{},
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	s.secrets = state.Secrets

	if len(state.Blob) == 0 {
		return s, nil
	}
	if !s.secrets.HasPin() || len(s.secrets.Nonce) == 0 {
		return nil, ErrMissingKeyMaterial
	}

	key, err := s.key()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	text, err := cryptox.DecryptString(state.Blob, key, s.secrets.Nonce)
	if errors.Is(err, cryptox.ErrInvalidUTF8) {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	accounts, err := models.UnmarshalAccounts([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	s.accounts = accounts

	s.log.Debug(ctx, "store opened", "accounts", len(accounts), "kdf", s.secrets.KDF)
	return s, nil
}

// key derives the blob key from the current pin hash and persisted scheme.
func (s *Store) key() ([]byte, error) {
	scheme, err := cryptox.ParseKeyScheme(s.secrets.KDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	key, err := cryptox.DeriveEncryptionKey(s.secrets.PinHash, scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingKeyMaterial, err)
	}
	return key, nil
}

func (s *Store) Get(name string) (models.Account, bool) {
	a, ok := s.accounts[name]
	return a, ok
}

// List returns the account names in ascending order.
func (s *Store) List() []string {
	names := lo.Keys(s.accounts)
	sort.Strings(names)
	return names
}

// Add stores a under name, replacing any existing account.
func (s *Store) Add(name string, a models.Account) {
	s.accounts[name] = a
}

// Delete removes name and returns the removed account.
func (s *Store) Delete(name string) (models.Account, bool) {
	a, ok := s.accounts[name]
	if !ok {
		return models.Account{}, false
	}
	delete(s.accounts, name)
	return a, true
}

func (s *Store) IsInitialized() bool {
	return s.secrets.HasPin()
}

// KeyScheme reports the scheme the blob is currently encrypted under.
func (s *Store) KeyScheme() cryptox.KeyScheme {
	scheme, err := cryptox.ParseKeyScheme(s.secrets.KDF)
	if err != nil {
		return cryptox.KeyScheme(s.secrets.KDF)
	}
	return scheme
}

// SetSecrets replaces the pin hash and forgets the old nonce. The next Save
// encrypts under the key derived from the new hash.
func (s *Store) SetSecrets(pin []byte) error {
	h, err := cryptox.DerivePinHash(pin)
	if err != nil {
		return err
	}
	s.secrets = models.Secrets{PinHash: h, KDF: string(s.scheme)}
	return nil
}

// ValidatePin is false for an uninitialized store.
func (s *Store) ValidatePin(candidate []byte) bool {
	if !s.secrets.HasPin() {
		return false
	}
	return cryptox.VerifyPin(s.secrets.PinHash, candidate)
}

// SetCounter stores value as the counter of a HOTP account. Missing and
// TOTP accounts are left alone with a warning.
func (s *Store) SetCounter(ctx context.Context, name string, value uint64) {
	a, ok := s.accounts[name]
	if !ok {
		s.log.Warn(ctx, "set counter skipped", "account", name, "reason", common.ErrorNotFound.Error())
		return
	}
	if a.Type != models.OTPTypeHOTP {
		s.log.Warn(ctx, "set counter skipped", "account", name, "reason", "not a HOTP account")
		return
	}
	s.accounts[name] = a.WithCounter(value)
}

// Save encrypts the account map under a fresh nonce and commits it with the
// secrets record in one backend call.
func (s *Store) Save(ctx context.Context) error {
	if !s.secrets.HasPin() {
		return ErrMissingSalt
	}

	plaintext, err := models.MarshalAccounts(s.accounts)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	key, err := s.key()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	blob, nonce, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return fmt.Errorf("encrypt store: %w", err)
	}

	secrets := s.secrets
	secrets.Nonce = nonce
	if err := s.backend.Commit(ctx, &models.State{Blob: blob, Secrets: secrets}); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}
	s.secrets = secrets

	s.log.Debug(ctx, "store saved", "accounts", len(s.accounts))
	return nil
}
