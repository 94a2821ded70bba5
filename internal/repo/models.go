package repo

import (
	"time"

	"github.com/google/uuid"
)

// Gestor representa servidor que atende manifestações no painel.
type Gestor struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	SenhaHash string
	Orgao     string
	Ativo     bool
	CriadoEm  time.Time
}

// GestorPasskey é uma credencial WebAuthn vinculada ao gestor.
type GestorPasskey struct {
	ID           uuid.UUID
	GestorID     uuid.UUID
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	AAGUID       []byte
	Transports   []string
	CriadoEm     time.Time
	UsadoEm      *time.Time
}

// InsertGestorParams reúne os campos de um novo gestor.
type InsertGestorParams struct {
	Nome      string
	Email     string
	SenhaHash string
	Orgao     string
}

// InsertPasskeyParams reúne os campos de uma nova credencial.
type InsertPasskeyParams struct {
	GestorID     uuid.UUID
	CredentialID []byte
	PublicKey    []byte
	SignCount    uint32
	AAGUID       []byte
	Transports   []string
}
