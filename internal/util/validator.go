package util

import (
	"errors"
	"net/mail"
	"strings"
)

const (
	minPasswordLen = 8
	// bcrypt ignora silenciosamente o que passa de 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrEmailRequired = errors.New("e-mail obrigatório")
	ErrEmailInvalid  = errors.New("e-mail inválido")
)

// NormalizeEmail aplica a forma canônica usada em gestores.email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail aceita apenas um endereço simples, sem nome de exibição.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword exige entre 8 caracteres e 72 bytes.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLen {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	if len(password) > maxPasswordBytes {
		return errors.New("senha deve ter no máximo 72 bytes")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " é obrigatório")
	}
	return nil
}
