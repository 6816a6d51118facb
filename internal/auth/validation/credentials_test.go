package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/victorgomez09/healthflow/internal/auth/models"
)

func TestCredentialValidator(t *testing.T) {
	v := NewCredentialValidator(DefaultCredentialPolicy())

	tests := []struct {
		name  string
		creds models.Credentials
		want  error
	}{
		{"valid", models.Credentials{Email: "admin@example.com", Password: "password"}, nil},
		{"missing email", models.Credentials{Password: "password"}, ErrEmailRequired},
		{"display name form", models.Credentials{Email: "Admin <admin@example.com>", Password: "password"}, ErrEmailInvalid},
		{"no at sign", models.Credentials{Email: "admin", Password: "password"}, ErrEmailInvalid},
		{"missing password", models.Credentials{Email: "admin@example.com"}, ErrPasswordRequired},
		{"short password", models.Credentials{Email: "admin@example.com", Password: "abc"}, ErrPasswordTooShort},
		{"long password", models.Credentials{Email: "admin@example.com", Password: strings.Repeat("x", 129)}, ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.creds)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalize(t *testing.T) {
	c := Normalize(models.Credentials{Email: "  admin@example.com\n", Password: " secret "})
	assert.Equal(t, "admin@example.com", c.Email)
	assert.Equal(t, " secret ", c.Password)
}
