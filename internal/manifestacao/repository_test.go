package manifestacao

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestBuildListWhereEmpty(t *testing.T) {
	where, args := buildListWhere(ListFilter{Limit: 10})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildListWhereAllFilters(t *testing.T) {
	where, args := buildListWhere(ListFilter{
		Status: StatusRecebida,
		Tipo:   TipoDenuncia,
		Orgao:  "Outro",
		Search: "50%_off",
	})

	assert.Equal(t,
		` WHERE status = $1 AND tipo = $2 AND orgao = $3 AND (protocolo ILIKE $4 ESCAPE '\' OR assunto ILIKE $4 ESCAPE '\' OR relato ILIKE $4 ESCAPE '\')`,
		where)
	assert.Equal(t, []any{StatusRecebida, TipoDenuncia, "Outro", `%50\%\_off%`}, args)
}

func TestBuildListWhereSearchOnly(t *testing.T) {
	where, args := buildListWhere(ListFilter{Search: "2026-0001"})
	assert.Contains(t, where, "protocolo ILIKE $1")
	assert.Equal(t, []any{"%2026-0001%"}, args)
}

func TestBuildListPageOrdersDeterministically(t *testing.T) {
	filter := ListFilter{Status: StatusRecebida, Limit: 500, Offset: 1000}
	where, args := buildListWhere(filter)

	query, pageArgs := buildListPage(where, args, filter)
	assert.True(t, strings.HasSuffix(query, " WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3"), query)
	assert.Equal(t, []any{StatusRecebida, 500, 1000}, pageArgs)
	assert.Equal(t, []any{StatusRecebida}, args)
}

func TestIsProtocoloConflict(t *testing.T) {
	assert.True(t, isProtocoloConflict(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: protocoloUniqueConstraint})))
	assert.False(t, isProtocoloConflict(&pgconn.PgError{Code: "23505", ConstraintName: "manifestacoes_pkey"}))
	assert.False(t, isProtocoloConflict(&pgconn.PgError{Code: "23503", ConstraintName: protocoloUniqueConstraint}))
	assert.False(t, isProtocoloConflict(errors.New("falha de rede")))
}
