package repo

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var (
	// ErrNotFound indica gestor ou passkey inexistente.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicate indica e-mail ou credential id já cadastrado.
	ErrDuplicate = errors.New("registro duplicado")
)

// translate converte erros do pgx nos sentinelas do pacote.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
