package manifestacao

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Manifestações"
	exportPageSize = 500
)

// ExportHeader são as colunas da planilha exportada.
var ExportHeader = []string{
	"Protocolo",
	"Tipo",
	"Órgão",
	"Assunto",
	"Status",
	"Data do fato",
	"Local",
	"Relato",
	"Manifestante",
	"E-mail",
	"Telefone",
	"Anexos",
	"Respostas",
	"Criada em",
	"Atualizada em",
}

var exportWidths = []float64{14, 14, 40, 30, 14, 14, 25, 60, 25, 28, 16, 10, 10, 22, 22}

// Export gera a planilha XLSX com todas as manifestações que casam com os filtros.
func (s *Service) Export(ctx context.Context, query ListQuery) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.Export")
	defer span.End()

	filter := s.filter(query)
	filter.Limit = exportPageSize

	var all []Manifestacao
	for {
		items, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		filter.Offset += len(items)
		if len(items) == 0 || filter.Offset >= total {
			break
		}
	}

	return WriteWorkbook(all)
}

// WriteWorkbook serializa as manifestações numa planilha com cabeçalho destacado.
func WriteWorkbook(items []Manifestacao) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("criar planilha: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remover planilha padrão: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("estilo do cabeçalho: %w", err)
	}

	for col, header := range ExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, name, name, exportWidths[col]); err != nil {
			return nil, err
		}
	}

	for i, m := range items {
		for col, value := range exportRow(m) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("célula %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("gravar planilha: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(m Manifestacao) []any {
	dataFato := ""
	if m.DataFato != nil {
		dataFato = m.DataFato.UTC().Format("2006-01-02")
	}
	manifestante := deref(m.Nome)
	if m.Anonimo {
		manifestante = "Anônimo"
	}
	return []any{
		m.Protocolo,
		m.Tipo,
		m.Orgao,
		m.Assunto,
		m.Status,
		dataFato,
		deref(m.Local),
		deref(m.Relato),
		manifestante,
		deref(m.Email),
		deref(m.Telefone),
		len(m.Anexos),
		len(m.Respostas),
		timestamp(m.CreatedAt),
		timestamp(m.UpdatedAt),
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
