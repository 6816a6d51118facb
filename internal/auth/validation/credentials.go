package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/victorgomez09/healthflow/internal/auth/models"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is not a valid address")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
)

// CredentialPolicy bounds what the client accepts before sending a login request.
// The server remains the authority; this only catches obvious typos early.
type CredentialPolicy struct {
	MinPasswordLength int
	MaxPasswordLength int
}

func DefaultCredentialPolicy() CredentialPolicy {
	return CredentialPolicy{
		MinPasswordLength: 6,
		MaxPasswordLength: 128,
	}
}

type CredentialValidator struct {
	policy CredentialPolicy
}

func NewCredentialValidator(policy CredentialPolicy) *CredentialValidator {
	return &CredentialValidator{policy: policy}
}

// Normalize trims the email. Passwords are sent verbatim.
func Normalize(c models.Credentials) models.Credentials {
	c.Email = strings.TrimSpace(c.Email)
	return c
}

func (v *CredentialValidator) Validate(c models.Credentials) error {
	if c.Email == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return ErrEmailInvalid
	}

	n := utf8.RuneCountInString(c.Password)
	switch {
	case n == 0:
		return ErrPasswordRequired
	case n < v.policy.MinPasswordLength:
		return ErrPasswordTooShort
	case v.policy.MaxPasswordLength > 0 && n > v.policy.MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}
