package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/participadf/ouvidoria/internal/util"
)

// Queries agrupa as consultas de gestores e passkeys.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria Queries sobre o pool.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const gestorColumns = `id, nome, email, senha_hash, orgao, ativo, created_at`

// GetGestorByEmail busca gestor pelo e-mail (comparação em minúsculas).
func (q *Queries) GetGestorByEmail(ctx context.Context, email string) (Gestor, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+gestorColumns+` FROM gestores WHERE email = $1`,
		util.NormalizeEmail(email))
	return scanGestor(row)
}

// GetGestorByID busca gestor pelo id.
func (q *Queries) GetGestorByID(ctx context.Context, id uuid.UUID) (Gestor, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+gestorColumns+` FROM gestores WHERE id = $1`, id)
	return scanGestor(row)
}

// InsertGestor cria gestor ativo. Retorna ErrDuplicate se o e-mail já existe.
func (q *Queries) InsertGestor(ctx context.Context, arg InsertGestorParams) (Gestor, error) {
	row := q.pool.QueryRow(ctx, `
        INSERT INTO gestores (nome, email, senha_hash, orgao)
        VALUES ($1, $2, $3, $4)
        RETURNING `+gestorColumns,
		strings.TrimSpace(arg.Nome),
		util.NormalizeEmail(arg.Email),
		arg.SenhaHash,
		strings.TrimSpace(arg.Orgao),
	)
	return scanGestor(row)
}

// SetGestorAtivo ativa ou desativa o gestor identificado pelo e-mail.
func (q *Queries) SetGestorAtivo(ctx context.Context, email string, ativo bool) error {
	cmd, err := q.pool.Exec(ctx, `
        UPDATE gestores SET ativo = $2, updated_at = now()
        WHERE email = $1
    `, util.NormalizeEmail(email), ativo)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const passkeyColumns = `id, gestor_id, credential_id, public_key, sign_count, aaguid, transports, created_at, last_used_at`

// ListPasskeys lista as credenciais do gestor, mais recentes primeiro.
func (q *Queries) ListPasskeys(ctx context.Context, gestorID uuid.UUID) ([]GestorPasskey, error) {
	rows, err := q.pool.Query(ctx, `
        SELECT `+passkeyColumns+`
        FROM gestor_passkeys
        WHERE gestor_id = $1
        ORDER BY created_at DESC
    `, gestorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passkeys []GestorPasskey
	for rows.Next() {
		pk, err := scanPasskey(rows)
		if err != nil {
			return nil, err
		}
		passkeys = append(passkeys, pk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passkeys, nil
}

// GetPasskeyByCredentialID busca credencial pelo id WebAuthn.
func (q *Queries) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (GestorPasskey, error) {
	row := q.pool.QueryRow(ctx, `SELECT `+passkeyColumns+` FROM gestor_passkeys WHERE credential_id = $1`, credentialID)
	return scanPasskey(row)
}

// InsertPasskey grava nova credencial.
func (q *Queries) InsertPasskey(ctx context.Context, arg InsertPasskeyParams) (GestorPasskey, error) {
	transports := arg.Transports
	if transports == nil {
		transports = []string{}
	}
	row := q.pool.QueryRow(ctx, `
        INSERT INTO gestor_passkeys (gestor_id, credential_id, public_key, sign_count, aaguid, transports)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+passkeyColumns,
		arg.GestorID, arg.CredentialID, arg.PublicKey, int64(arg.SignCount), arg.AAGUID, transports)
	return scanPasskey(row)
}

// TouchPasskey atualiza o contador e a data de último uso.
func (q *Queries) TouchPasskey(ctx context.Context, id uuid.UUID, signCount uint32) error {
	cmd, err := q.pool.Exec(ctx, `
        UPDATE gestor_passkeys
        SET sign_count = $2, last_used_at = now()
        WHERE id = $1
    `, id, int64(signCount))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanGestor(row pgx.Row) (Gestor, error) {
	var g Gestor
	if err := row.Scan(&g.ID, &g.Nome, &g.Email, &g.SenhaHash, &g.Orgao, &g.Ativo, &g.CriadoEm); err != nil {
		return Gestor{}, translate(err)
	}
	return g, nil
}

func scanPasskey(row pgx.Row) (GestorPasskey, error) {
	var (
		pk   GestorPasskey
		sign int64
	)
	if err := row.Scan(&pk.ID, &pk.GestorID, &pk.CredentialID, &pk.PublicKey, &sign, &pk.AAGUID, &pk.Transports,
		&pk.CriadoEm, &pk.UsadoEm); err != nil {
		return GestorPasskey{}, translate(err)
	}
	if sign < 0 {
		sign = 0
	}
	pk.SignCount = uint32(sign)
	return pk, nil
}
