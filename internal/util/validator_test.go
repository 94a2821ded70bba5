package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		email string
		want  error
	}{
		{"admin@cgdf.gov.br", nil},
		{"  maria.souza@example.com ", nil},
		{"", ErrEmailRequired},
		{"   ", ErrEmailRequired},
		{"sem-arroba", ErrEmailInvalid},
		{"Maria <maria@example.com>", ErrEmailInvalid},
		{"maria@localhost", ErrEmailInvalid},
	}

	for _, tc := range cases {
		err := ValidateEmail(tc.email)
		if tc.want == nil {
			assert.NoError(t, err, tc.email)
			continue
		}
		assert.ErrorIs(t, err, tc.want, tc.email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "admin@cgdf.gov.br", NormalizeEmail("  Admin@CGDF.gov.br "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("admin123"))
	assert.EqualError(t, ValidatePassword("curta"), "senha deve ter pelo menos 8 caracteres")
	assert.EqualError(t, ValidatePassword(strings.Repeat("a", 73)), "senha deve ter no máximo 72 bytes")
}

func TestRequireString(t *testing.T) {
	assert.NoError(t, RequireString("Fulano", "nome"))
	assert.EqualError(t, RequireString(" ", "nome"), "nome é obrigatório")
}
