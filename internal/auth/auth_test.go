package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("admin123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	ok, err := Verify("admin123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("errada", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyArgon2id(t *testing.T) {
	hash, err := HashArgon2id("SenhaForte123!")
	require.NoError(t, err)

	ok, err := Verify("SenhaForte123!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("outra", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedHash(t *testing.T) {
	ok, err := Verify("x", "nao-e-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("s", 32), 24*time.Hour)
	subject := Subject{ID: uuid.New(), Nome: "Admin", Email: "admin@cgdf.gov.br", Orgao: "Controladoria-Geral do Distrito Federal"}

	token, jti, err := mgr.GenerateAccessToken(subject)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := mgr.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, subject.ID.String(), claims.Subject)
	assert.Equal(t, "Admin", claims.Nome)
	assert.Equal(t, subject.Orgao, claims.Orgao)
	assert.Equal(t, jti, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenRejectsWrongSecretAndExpired(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("s", 32), time.Hour)
	token, _, err := mgr.GenerateAccessToken(Subject{ID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTManager(strings.Repeat("x", 32), time.Hour)
	_, err = other.ParseAndValidate(token)
	assert.Error(t, err)

	mgr.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = mgr.ParseAndValidate(token)
	assert.Error(t, err)

	_, err = mgr.ParseAndValidate("lixo")
	assert.Error(t, err)
}
