// Package validation wraps go-playground/validator with English messages
// and the custom rules used by CLI input and configuration.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/otpkeeper/internal/common"
	"github.com/dmitrijs2005/otpkeeper/internal/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// PIN length bounds.
const (
	MinPinLen = 4
	MaxPinLen = 6
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// Validator validates tagged structs.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// Error maps snake_case field names to human-readable messages.
type Error map[string]string

// Error implements the error interface. Fields are listed in name order.
func (e Error) Error() string {
	if len(e) == 0 {
		return "validation error"
	}
	keys := lo.Keys(e)
	sort.Strings(keys)
	msgs := lo.Map(keys, func(k string, _ int) string { return e[k] })
	return strings.Join(msgs, "; ")
}

// Is lets errors.Is match common.ErrorValidation.
func (e Error) Is(target error) bool {
	return target == common.ErrorValidation
}

// MarshalJSON renders the field map.
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string(e))
}

// New constructs a Validator with English translations and custom rules.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, translator: enTrans}, nil
}

// Struct validates data and returns an Error on failure.
func (v *Validator) Struct(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		out := make(Error)
		for _, fe := range validateErrs {
			out[lo.SnakeCase(fe.Field())] = fe.Translate(v.translator)
		}
		return out
	}
	return nil
}

func registerCustom(validate *validator.Validate, trans ut.Translator) error {
	rules := []struct {
		tag string
		fn  validator.Func
		msg string
	}{
		{
			tag: "base32key",
			fn: func(fl validator.FieldLevel) bool {
				s, ok := fl.Field().Interface().(string)
				return ok && models.ValidateSecret(s) == nil
			},
			msg: "{0} must be a base32 secret of at least 128 bits",
		},
		{
			tag: "pin",
			fn: func(fl validator.FieldLevel) bool {
				s, ok := fl.Field().Interface().(string)
				return ok && len(s) >= MinPinLen && len(s) <= MaxPinLen
			},
			msg: fmt.Sprintf("{0} must be between %d and %d characters", MinPinLen, MaxPinLen),
		},
		{
			tag: "otpcode",
			fn: func(fl validator.FieldLevel) bool {
				s, ok := fl.Field().Interface().(string)
				if !ok || len(s) != 6 {
					return false
				}
				return strings.Trim(s, "0123456789") == ""
			},
			msg: "{0} must be a 6-digit code",
		},
	}

	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}
		msg := r.msg
		err := validate.RegisterTranslation(r.tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(r.tag, msg, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(fe.Tag(), fe.Field())
				return t
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}
