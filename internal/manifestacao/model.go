package manifestacao

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica protocolo ou id inexistente.
	ErrNotFound = errors.New("manifestação não encontrada")
	// ErrProtocoloEmUso indica que o INSERT esbarrou no índice único de protocolo.
	ErrProtocoloEmUso = errors.New("protocolo já utilizado")
)

// ValidationError sinaliza entrada inválida vinda do cidadão ou do gestor.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

const (
	TipoReclamacao  = "RECLAMACAO"
	TipoSugestao    = "SUGESTAO"
	TipoElogio      = "ELOGIO"
	TipoDenuncia    = "DENUNCIA"
	TipoSolicitacao = "SOLICITACAO"

	StatusRecebida   = "RECEBIDA"
	StatusEmAnalise  = "EM_ANALISE"
	StatusRespondida = "RESPONDIDA"
	StatusArquivada  = "ARQUIVADA"

	AnexoImagem = "IMAGEM"
	AnexoVideo  = "VIDEO"
	AnexoAudio  = "AUDIO"
)

var (
	validTipos = map[string]struct{}{
		TipoReclamacao:  {},
		TipoSugestao:    {},
		TipoElogio:      {},
		TipoDenuncia:    {},
		TipoSolicitacao: {},
	}
	validStatuses = map[string]struct{}{
		StatusRecebida:   {},
		StatusEmAnalise:  {},
		StatusRespondida: {},
		StatusArquivada:  {},
	}
)

// Manifestacao é o registro persistido de uma manifestação.
// Campos opcionais usam ponteiro: nil significa "sem valor".
type Manifestacao struct {
	ID                uuid.UUID
	Protocolo         string
	Tipo              string
	Orgao             string
	Assunto           string
	DataFato          *time.Time
	HorarioFato       *string
	Local             *string
	PessoasEnvolvidas *string
	Relato            *string
	AudioURL          *string
	Status            string
	Anonimo           bool
	Nome              *string
	Email             *string
	Telefone          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Anexos            []Anexo
	Respostas         []Resposta
}

// Anexo referencia arquivo enviado junto com a manifestação.
type Anexo struct {
	ID             uuid.UUID
	ManifestacaoID uuid.UUID
	URL            string
	Tipo           string
	CreatedAt      time.Time
}

// Resposta é a devolutiva registrada por um gestor.
type Resposta struct {
	ID             uuid.UUID
	ManifestacaoID uuid.UUID
	GestorID       uuid.UUID
	GestorNome     string
	Texto          string
	CreatedAt      time.Time
}

// NewManifestacao reúne os campos já normalizados para inserção.
type NewManifestacao struct {
	Protocolo         string
	Tipo              string
	Orgao             string
	Assunto           string
	DataFato          *time.Time
	HorarioFato       *string
	Local             *string
	PessoasEnvolvidas *string
	Relato            *string
	AudioURL          *string
	Anonimo           bool
	Nome              *string
	Email             *string
	Telefone          *string
}

// CreateInput é o formulário enviado pelo cidadão.
type CreateInput struct {
	Tipo              string
	Orgao             string
	Assunto           string
	DataFato          string
	HorarioFato       string
	Local             string
	PessoasEnvolvidas string
	Relato            string
	AudioURL          string
	Anonimo           bool
	Nome              string
	Email             string
	Telefone          string
	Anexos            []string
}

// ListQuery representa a paginação e os filtros do painel.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
	Tipo   string
	Orgao  string
	Search string
}

// ListFilter é o filtro já resolvido repassado ao repositório.
type ListFilter struct {
	Status string
	Tipo   string
	Orgao  string
	Search string
	Limit  int
	Offset int
}

// Stats agrega contagens por status, tipo e órgão.
type Stats struct {
	Total     int
	PorStatus map[string]int
	PorTipo   map[string]int
	PorOrgao  map[string]int
}

// NormalizeTipo padroniza o tipo em maiúsculas.
func NormalizeTipo(tipo string) string {
	return strings.ToUpper(strings.TrimSpace(tipo))
}

// NormalizeStatus padroniza o status em maiúsculas.
func NormalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

// IsValidTipo indica se o tipo é aceito.
func IsValidTipo(tipo string) bool {
	_, ok := validTipos[NormalizeTipo(tipo)]
	return ok
}

// IsValidStatus indica se o status é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[NormalizeStatus(status)]
	return ok
}

// optional converte texto vazio no marcador de ausência.
func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
