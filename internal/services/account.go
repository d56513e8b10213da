// Package services contains the application services behind the otp CLI.
// AccountService applies the PIN rules, drives the OTP engines and persists
// every state change through the credential store.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pquerna/otp"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/dmitrijs2005/otpkeeper/internal/logging"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/dmitrijs2005/otpkeeper/internal/otpcode"
	"github.com/dmitrijs2005/otpkeeper/internal/validation"
)

var (
	ErrAccountNotFound = common.ErrorNotFound
	ErrAccountExists   = common.ErrorAlreadyExists
	ErrInvalidPin      = common.ErrorInvalidPin
	ErrNotInitialized  = common.ErrorNotInitialized

	// ErrNotPortable is returned by URI for accounts in the compatible
	// encoding, whose codes no standard authenticator reproduces.
	ErrNotPortable = errors.New("only rfc-encoded accounts can be exported")
)

// CredentialStore is the part of *store.Store the service relies on.
type CredentialStore interface {
	Get(name string) (models.Account, bool)
	List() []string
	Add(name string, a models.Account)
	Delete(name string) (models.Account, bool)
	IsInitialized() bool
	SetSecrets(pin []byte) error
	ValidatePin(candidate []byte) bool
	SetCounter(ctx context.Context, name string, value uint64)
	Save(ctx context.Context) error
}

// AddRequest describes a new account.
type AddRequest struct {
	Name     string
	Key      string
	Type     models.OTPType
	Encoding models.Encoding

	// Overwrite replaces an existing account of the same name.
	Overwrite bool
}

// URIRequest selects the account to export and the issuer label.
type URIRequest struct {
	Name   string
	Issuer string
}

// AccountService defines the account operations of the CLI.
//
// Every method taking a pin rejects it with ErrInvalidPin unless it is 4-6
// characters long and verifies against the stored hash, and fails with
// ErrNotInitialized before Init has run.
type AccountService interface {
	// Init sets the PIN. On an initialized store currentPin must verify
	// first and the blob is re-encrypted under the new key.
	Init(ctx context.Context, pin, currentPin []byte) error
	IsInitialized() bool
	Add(ctx context.Context, pin []byte, req AddRequest) error
	Delete(ctx context.Context, pin []byte, name string) error
	List(ctx context.Context) ([]string, error)
	// Get returns the current code. HOTP accounts advance and persist their
	// counter.
	Get(ctx context.Context, pin []byte, name string) (string, error)
	// Validate checks code. A HOTP match persists the resynchronised counter.
	Validate(ctx context.Context, pin []byte, name, code string) error
	URI(ctx context.Context, pin []byte, req URIRequest) (*otp.Key, error)
}

type accountService struct {
	store CredentialStore
	hotp  *otpcode.HOTP
	totp  *otpcode.TOTP
	log   logging.Logger
}

func NewAccountService(st CredentialStore, hotp *otpcode.HOTP, totp *otpcode.TOTP, log logging.Logger) AccountService {
	if log == nil {
		log = logging.Discard()
	}
	return &accountService{store: st, hotp: hotp, totp: totp, log: log}
}

func pinLengthOK(pin []byte) bool {
	return len(pin) >= validation.MinPinLen && len(pin) <= validation.MaxPinLen
}

// checkPin applies the PIN rules shared by every gated operation.
func (s *accountService) checkPin(pin []byte) error {
	if !pinLengthOK(pin) {
		return ErrInvalidPin
	}
	if !s.store.IsInitialized() {
		return ErrNotInitialized
	}
	if !s.store.ValidatePin(pin) {
		return ErrInvalidPin
	}
	return nil
}

func (s *accountService) IsInitialized() bool {
	return s.store.IsInitialized()
}

func (s *accountService) Init(ctx context.Context, pin, currentPin []byte) error {
	if s.store.IsInitialized() {
		if err := s.checkPin(currentPin); err != nil {
			return err
		}
	}
	if !pinLengthOK(pin) {
		return fmt.Errorf("%w: must be %d-%d characters", ErrInvalidPin, validation.MinPinLen, validation.MaxPinLen)
	}
	if err := s.store.SetSecrets(pin); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "pin set")
	return nil
}

func (s *accountService) Add(ctx context.Context, pin []byte, req AddRequest) error {
	if err := s.checkPin(pin); err != nil {
		return err
	}
	if req.Name == "" {
		return fmt.Errorf("%w: account name is required", common.ErrorValidation)
	}
	if err := models.ValidateSecret(req.Key); err != nil {
		return err
	}
	if _, exists := s.store.Get(req.Name); exists && !req.Overwrite {
		return fmt.Errorf("account %q: %w", req.Name, ErrAccountExists)
	}

	var a models.Account
	switch req.Type {
	case models.OTPTypeHOTP:
		a = models.NewHOTPAccount(req.Key, req.Encoding)
	case models.OTPTypeTOTP, "":
		a = models.NewTOTPAccount(req.Key, req.Encoding)
	default:
		return fmt.Errorf("%w: unknown otp type %q", common.ErrorValidation, req.Type)
	}

	s.store.Add(req.Name, a)
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "account added", "account", req.Name, "type", a.Type)
	return nil
}

func (s *accountService) Delete(ctx context.Context, pin []byte, name string) error {
	if err := s.checkPin(pin); err != nil {
		return err
	}
	if _, ok := s.store.Delete(name); !ok {
		return fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "account deleted", "account", name)
	return nil
}

func (s *accountService) List(_ context.Context) ([]string, error) {
	return s.store.List(), nil
}

func (s *accountService) account(pin []byte, name string) (models.Account, error) {
	if err := s.checkPin(pin); err != nil {
		return models.Account{}, err
	}
	a, ok := s.store.Get(name)
	if !ok {
		return models.Account{}, fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	return a, nil
}

func (s *accountService) Get(ctx context.Context, pin []byte, name string) (string, error) {
	a, err := s.account(pin, name)
	if err != nil {
		return "", err
	}

	if a.Type != models.OTPTypeHOTP {
		return s.totp.Now(a)
	}

	code, next, err := s.hotp.Generate(a)
	if err != nil {
		return "", err
	}
	s.store.SetCounter(ctx, name, next)
	if err := s.store.Save(ctx); err != nil {
		return "", err
	}
	s.log.Debug(ctx, "counter advanced", "account", name, "counter", next)
	return code, nil
}

func (s *accountService) Validate(ctx context.Context, pin []byte, name, code string) error {
	a, err := s.account(pin, name)
	if err != nil {
		return err
	}

	if a.Type != models.OTPTypeHOTP {
		_, err := s.totp.Validate(a, code)
		return err
	}

	next, _, err := s.hotp.Validate(a, code)
	if err != nil {
		return err
	}
	s.store.SetCounter(ctx, name, next)
	if err := s.store.Save(ctx); err != nil {
		return err
	}
	s.log.Debug(ctx, "counter resynchronised", "account", name, "counter", next)
	return nil
}

// URI returns the otpauth:// key for provisioning an authenticator app.
func (s *accountService) URI(_ context.Context, pin []byte, req URIRequest) (*otp.Key, error) {
	a, err := s.account(pin, req.Name)
	if err != nil {
		return nil, err
	}
	if a.Encoding != models.EncodingRFC {
		return nil, fmt.Errorf("account %q: %w", req.Name, ErrNotPortable)
	}

	label := req.Name
	if req.Issuer != "" {
		label = req.Issuer + ":" + req.Name
	}

	q := url.Values{}
	q.Set("secret", a.Key)
	q.Set("digits", strconv.Itoa(otpcode.Digits))
	if req.Issuer != "" {
		q.Set("issuer", req.Issuer)
	}

	host := "totp"
	if a.Type == models.OTPTypeHOTP {
		host = "hotp"
		q.Set("algorithm", "SHA1")
		q.Set("counter", strconv.FormatUint(a.CounterValue(), 10))
	} else {
		q.Set("algorithm", "SHA256")
		q.Set("period", strconv.FormatUint(s.totp.Step(), 10))
	}

	u := url.URL{
		Scheme:   "otpauth",
		Host:     host,
		Path:     "/" + label,
		RawQuery: q.Encode(),
	}
	return otp.NewKeyFromURL(u.String())
}
