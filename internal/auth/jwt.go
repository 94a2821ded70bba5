package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AudienceGestor identifica tokens emitidos para o painel.
const AudienceGestor = "gestor"

// Claims representa as informações presentes em um JWT de acesso.
type Claims struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Orgao string `json:"orgao"`
	jwt.RegisteredClaims
}

// Subject identifica o gestor dono do token.
type Subject struct {
	ID    uuid.UUID
	Nome  string
	Email string
	Orgao string
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// TTL devolve a validade dos tokens emitidos.
func (m *JWTManager) TTL() time.Duration {
	return m.accessTTL
}

// GenerateAccessToken cria um JWT HS256 e devolve também o jti.
func (m *JWTManager) GenerateAccessToken(subject Subject) (string, string, error) {
	now := m.now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		Nome:  subject.Nome,
		Email: subject.Email,
		Orgao: subject.Orgao,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID.String(),
			Audience:  jwt.ClaimStrings{AudienceGestor},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAndValidate verifica assinatura, audiência e expiração.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceGestor),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}

	return claims, nil
}

// RevokedRedisKey monta a chave que marca um jti como revogado.
func RevokedRedisKey(jti string) string {
	return "revoked:" + jti
}
