package manifestacao

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	nome := "Maria"
	created := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)
	items := []Manifestacao{
		{ID: uuid.New(), Protocolo: "2026-000001", Tipo: TipoElogio, Orgao: "Outro", Status: StatusRecebida, Nome: &nome, CreatedAt: created, UpdatedAt: created},
		{ID: uuid.New(), Protocolo: "2026-000002", Tipo: TipoDenuncia, Orgao: "Outro", Status: StatusArquivada, Anonimo: true, CreatedAt: created, UpdatedAt: created},
	}

	data, err := WriteWorkbook(items)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, "2026-000001", rows[1][0])
	assert.Equal(t, "Maria", rows[1][8])
	assert.Equal(t, "Anônimo", rows[2][8])
	assert.Equal(t, "2026-02-01T10:30:00.000Z", rows[2][13])
}

func TestExportPagesThroughAllRows(t *testing.T) {
	repo := &pagingRepo{stubRepo: newStubRepo(), total: 1203}
	svc := NewService(repo, nil, 100)

	data, err := svc.Export(context.Background(), ListQuery{Status: "recebida"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, []int{0, 500, 1000}, repo.offsets)
	assert.Equal(t, StatusRecebida, repo.lastFilter.Status)
}

type pagingRepo struct {
	*stubRepo
	total   int
	offsets []int
}

func (p *pagingRepo) List(_ context.Context, filter ListFilter) ([]Manifestacao, int, error) {
	p.lastFilter = filter
	p.offsets = append(p.offsets, filter.Offset)
	n := p.total - filter.Offset
	if n > filter.Limit {
		n = filter.Limit
	}
	if n < 0 {
		n = 0
	}
	items := make([]Manifestacao, n)
	for i := range items {
		items[i] = Manifestacao{ID: uuid.New(), Protocolo: "2026-000001", Status: StatusRecebida}
	}
	return items, p.total, nil
}
