package manifestacao

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/participadf/ouvidoria/internal/db"
)

// protocoloUniqueConstraint é o nome gerado pelo Postgres para a coluna UNIQUE.
const protocoloUniqueConstraint = "manifestacoes_protocolo_key"

const manifestacaoColumns = `id, protocolo, tipo, orgao, assunto, data_fato, horario_fato, local, pessoas_envolvidas,
        relato, audio_url, status, anonimo, nome, email, telefone, created_at, updated_at`

// PGRepository persiste manifestações no Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository cria instância do repositório.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create insere a manifestação com status RECEBIDA.
func (r *PGRepository) Create(ctx context.Context, input NewManifestacao) (*Manifestacao, error) {
	query := `
        INSERT INTO manifestacoes (protocolo, tipo, orgao, assunto, data_fato, horario_fato, local, pessoas_envolvidas,
            relato, audio_url, status, anonimo, nome, email, telefone)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING ` + manifestacaoColumns

	row := r.pool.QueryRow(ctx, query,
		input.Protocolo,
		input.Tipo,
		input.Orgao,
		input.Assunto,
		input.DataFato,
		input.HorarioFato,
		input.Local,
		input.PessoasEnvolvidas,
		input.Relato,
		input.AudioURL,
		StatusRecebida,
		input.Anonimo,
		input.Nome,
		input.Email,
		input.Telefone,
	)

	m, err := scanManifestacao(row)
	if err != nil {
		if isProtocoloConflict(err) {
			return nil, ErrProtocoloEmUso
		}
		return nil, err
	}
	m.Anexos = []Anexo{}
	m.Respostas = []Resposta{}
	return m, nil
}

func isProtocoloConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == protocoloUniqueConstraint
}

// FindByProtocolo busca a manifestação com anexos e respostas.
func (r *PGRepository) FindByProtocolo(ctx context.Context, protocolo string) (*Manifestacao, error) {
	query := `SELECT ` + manifestacaoColumns + ` FROM manifestacoes WHERE protocolo = $1`
	return r.findOne(ctx, query, protocolo)
}

// FindByID busca a manifestação com anexos e respostas.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Manifestacao, error) {
	query := `SELECT ` + manifestacaoColumns + ` FROM manifestacoes WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (*Manifestacao, error) {
	m, err := scanManifestacao(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	items := []Manifestacao{*m}
	if err := r.hydrate(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// List devolve a página pedida e o total de registros que casam com o filtro.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Manifestacao, int, error) {
	where, args := buildListWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM manifestacoes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, pageArgs := buildListPage(where, args, filter)
	rows, err := r.pool.Query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Manifestacao{}
	for rows.Next() {
		m, err := scanManifestacao(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *m)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	if err := r.hydrate(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// buildListPage monta a consulta paginada. id desempata created_at para que
// páginas consecutivas não repitam nem pulem registros.
func buildListPage(where string, args []any, filter ListFilter) (string, []any) {
	idx := len(args) + 1
	query := `SELECT ` + manifestacaoColumns + ` FROM manifestacoes` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	pageArgs := make([]any, 0, len(args)+2)
	pageArgs = append(pageArgs, args...)
	return query, append(pageArgs, filter.Limit, filter.Offset)
}

// buildListWhere monta a cláusula WHERE com filtros de igualdade e busca textual.
func buildListWhere(filter ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Tipo != "" {
		clauses = append(clauses, fmt.Sprintf("tipo = $%d", idx))
		args = append(args, filter.Tipo)
		idx++
	}
	if filter.Orgao != "" {
		clauses = append(clauses, fmt.Sprintf("orgao = $%d", idx))
		args = append(args, filter.Orgao)
		idx++
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			`(protocolo ILIKE $%d ESCAPE '\' OR assunto ILIKE $%d ESCAPE '\' OR relato ILIKE $%d ESCAPE '\')`, idx, idx, idx))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

// UpdateStatus grava o novo status e atualiza updated_at.
func (r *PGRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Manifestacao, error) {
	query := `
        UPDATE manifestacoes
        SET status = $1, updated_at = now()
        WHERE id = $2
        RETURNING ` + manifestacaoColumns

	m, err := scanManifestacao(r.pool.QueryRow(ctx, query, status, id))
	if err != nil {
		return nil, err
	}
	items := []Manifestacao{*m}
	if err := r.hydrate(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// AddAnexo vincula um arquivo à manifestação.
func (r *PGRepository) AddAnexo(ctx context.Context, manifestacaoID uuid.UUID, url, tipo string) (*Anexo, error) {
	const query = `
        INSERT INTO anexos (manifestacao_id, url, tipo)
        VALUES ($1, $2, $3)
        RETURNING id, manifestacao_id, url, tipo, created_at
    `

	var a Anexo
	if err := r.pool.QueryRow(ctx, query, manifestacaoID, url, tipo).
		Scan(&a.ID, &a.ManifestacaoID, &a.URL, &a.Tipo, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Stats conta manifestações por status, tipo e órgão num único snapshot.
func (r *PGRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		PorStatus: map[string]int{},
		PorTipo:   map[string]int{},
		PorOrgao:  map[string]int{},
	}

	err := db.WithReadTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM manifestacoes`).Scan(&stats.Total); err != nil {
			return err
		}
		groups := []struct {
			column string
			target map[string]int
		}{
			{"status", stats.PorStatus},
			{"tipo", stats.PorTipo},
			{"orgao", stats.PorOrgao},
		}
		for _, g := range groups {
			if err := countBy(ctx, tx, g.column, g.target); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func countBy(ctx context.Context, tx pgx.Tx, column string, target map[string]int) error {
	rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT %s, count(*) FROM manifestacoes GROUP BY %s`, column, column))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		target[key] = count
	}
	return rows.Err()
}

// CreateResposta insere a resposta e devolve o nome do gestor autor.
func (r *PGRepository) CreateResposta(ctx context.Context, texto string, gestorID, manifestacaoID uuid.UUID) (*Resposta, error) {
	const query = `
        WITH inserted AS (
            INSERT INTO respostas (texto, gestor_id, manifestacao_id)
            VALUES ($1, $2, $3)
            RETURNING id, manifestacao_id, gestor_id, texto, created_at
        )
        SELECT i.id, i.manifestacao_id, i.gestor_id, g.nome, i.texto, i.created_at
        FROM inserted i
        JOIN gestores g ON g.id = i.gestor_id
    `

	return scanResposta(r.pool.QueryRow(ctx, query, texto, gestorID, manifestacaoID))
}

// hydrate carrega anexos e respostas das manifestações em duas consultas.
func (r *PGRepository) hydrate(ctx context.Context, items []Manifestacao) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].Anexos = []Anexo{}
		items[i].Respostas = []Resposta{}
	}

	anexoRows, err := r.pool.Query(ctx, `
        SELECT id, manifestacao_id, url, tipo, created_at
        FROM anexos
        WHERE manifestacao_id = ANY($1)
        ORDER BY created_at ASC
    `, ids)
	if err != nil {
		return err
	}
	defer anexoRows.Close()

	for anexoRows.Next() {
		var a Anexo
		if err := anexoRows.Scan(&a.ID, &a.ManifestacaoID, &a.URL, &a.Tipo, &a.CreatedAt); err != nil {
			return err
		}
		i := index[a.ManifestacaoID]
		items[i].Anexos = append(items[i].Anexos, a)
	}
	if anexoRows.Err() != nil {
		return anexoRows.Err()
	}

	respostaRows, err := r.pool.Query(ctx, `
        SELECT r.id, r.manifestacao_id, r.gestor_id, g.nome, r.texto, r.created_at
        FROM respostas r
        JOIN gestores g ON g.id = r.gestor_id
        WHERE r.manifestacao_id = ANY($1)
        ORDER BY r.created_at ASC
    `, ids)
	if err != nil {
		return err
	}
	defer respostaRows.Close()

	for respostaRows.Next() {
		resposta, err := scanResposta(respostaRows)
		if err != nil {
			return err
		}
		i := index[resposta.ManifestacaoID]
		items[i].Respostas = append(items[i].Respostas, *resposta)
	}
	return respostaRows.Err()
}

func scanManifestacao(row pgx.Row) (*Manifestacao, error) {
	var m Manifestacao
	if err := row.Scan(&m.ID, &m.Protocolo, &m.Tipo, &m.Orgao, &m.Assunto, &m.DataFato, &m.HorarioFato, &m.Local,
		&m.PessoasEnvolvidas, &m.Relato, &m.AudioURL, &m.Status, &m.Anonimo, &m.Nome, &m.Email, &m.Telefone,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func scanResposta(row pgx.Row) (*Resposta, error) {
	var r Resposta
	if err := row.Scan(&r.ID, &r.ManifestacaoID, &r.GestorID, &r.GestorNome, &r.Texto, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
