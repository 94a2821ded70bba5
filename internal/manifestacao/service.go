package manifestacao

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/participadf/ouvidoria/internal/notify"
	"github.com/participadf/ouvidoria/internal/protocolo"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	notifyTTL    = 10 * time.Second
)

var tracer = otel.Tracer("github.com/participadf/ouvidoria/internal/manifestacao")

// Repository é o gateway de persistência usado pelo serviço.
type Repository interface {
	Create(ctx context.Context, input NewManifestacao) (*Manifestacao, error)
	FindByProtocolo(ctx context.Context, protocolo string) (*Manifestacao, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Manifestacao, error)
	List(ctx context.Context, filter ListFilter) ([]Manifestacao, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Manifestacao, error)
	AddAnexo(ctx context.Context, manifestacaoID uuid.UUID, url, tipo string) (*Anexo, error)
	Stats(ctx context.Context) (*Stats, error)
	CreateResposta(ctx context.Context, texto string, gestorID, manifestacaoID uuid.UUID) (*Resposta, error)
}

// Service concentra o ciclo de vida das manifestações.
type Service struct {
	repo      Repository
	notifier  notify.Notifier
	protocolo func() string
	maxLimit  int
}

// NewService cria o serviço. notifier pode ser nil; maxLimit <= 0 desativa o teto de paginação.
func NewService(repo Repository, notifier notify.Notifier, maxLimit int) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		protocolo: protocolo.Generate,
		maxLimit:  maxLimit,
	}
}

// Create registra a manifestação, emite o protocolo e vincula os anexos.
func (s *Service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.Create")
	defer span.End()

	tipo := NormalizeTipo(input.Tipo)
	orgao := CanonicalOrgao(input.Orgao)
	if tipo == "" {
		return nil, invalid("tipo", "tipo é obrigatório")
	}
	if orgao == "" {
		return nil, invalid("orgao", "órgão é obrigatório")
	}
	if !IsValidTipo(tipo) {
		return nil, invalid("tipo", "tipo inválido")
	}

	dataFato, err := parseDataFato(input.DataFato)
	if err != nil {
		return nil, err
	}

	record := NewManifestacao{
		Tipo:              tipo,
		Orgao:             orgao,
		Assunto:           strings.TrimSpace(input.Assunto),
		DataFato:          dataFato,
		HorarioFato:       optional(input.HorarioFato),
		Local:             optional(input.Local),
		PessoasEnvolvidas: optional(input.PessoasEnvolvidas),
		Relato:            optional(input.Relato),
		AudioURL:          optional(input.AudioURL),
		Anonimo:           input.Anonimo,
	}
	if !input.Anonimo {
		record.Nome = optional(input.Nome)
		record.Email = optional(input.Email)
		record.Telefone = optional(input.Telefone)
	}

	created, err := s.insert(ctx, record)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("manifestacao.protocolo", created.Protocolo))

	for _, url := range input.Anexos {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, err := s.repo.AddAnexo(ctx, created.ID, url, ClassifyAnexo(url)); err != nil {
			return nil, fmt.Errorf("anexo: %w", err)
		}
	}

	full, err := s.repo.FindByID(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("protocolo", full.Protocolo).Str("tipo", full.Tipo).Bool("anonimo", full.Anonimo).
		Int("anexos", len(full.Anexos)).Msg("manifestação registrada")

	s.notifyCreated(ctx, *full)

	return &CreateResult{Manifestacao: Format(*full), Protocolo: full.Protocolo}, nil
}

// insert grava o registro e sorteia outro protocolo quando um cadastro
// concorrente ocupa o candidato entre a consulta e o INSERT.
func (s *Service) insert(ctx context.Context, record NewManifestacao) (*Manifestacao, error) {
	for {
		candidate, err := s.nextProtocolo(ctx)
		if err != nil {
			return nil, fmt.Errorf("protocolo: %w", err)
		}
		record.Protocolo = candidate

		created, err := s.repo.Create(ctx, record)
		if errors.Is(err, ErrProtocoloEmUso) {
			log.Debug().Str("protocolo", candidate).Msg("protocolo ocupado no insert, gerando outro")
			continue
		}
		return created, err
	}
}

// nextProtocolo gera candidatos até encontrar um protocolo livre.
func (s *Service) nextProtocolo(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := s.protocolo()
		_, err := s.repo.FindByProtocolo(ctx, candidate)
		if errors.Is(err, ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		log.Debug().Str("protocolo", candidate).Msg("colisão de protocolo, gerando outro")
	}
}

// GetByProtocolo busca a manifestação pelo protocolo público.
func (s *Service) GetByProtocolo(ctx context.Context, protocolo string) (*View, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.GetByProtocolo")
	defer span.End()

	m, err := s.repo.FindByProtocolo(ctx, strings.TrimSpace(protocolo))
	if err != nil {
		return nil, err
	}
	v := Format(*m)
	return &v, nil
}

// GetByID busca a manifestação pelo id interno.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*View, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.GetByID")
	defer span.End()

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := Format(*m)
	return &v, nil
}

// List pagina as manifestações mais recentes primeiro.
func (s *Service) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.List")
	defer span.End()

	page, limit := s.pagination(query)
	if page > math.MaxInt/limit {
		return nil, invalid("page", "página fora do intervalo")
	}
	filter := s.filter(query)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(items))
	for _, m := range items {
		views = append(views, Format(m))
	}

	return &ListResult{
		Manifestacoes: views,
		Total:         total,
		Page:          page,
		TotalPages:    (total + limit - 1) / limit,
	}, nil
}

func (s *Service) pagination(query ListQuery) (int, int) {
	page := query.Page
	if page <= 0 {
		page = defaultPage
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	return page, limit
}

func (s *Service) filter(query ListQuery) ListFilter {
	filter := ListFilter{
		Status: NormalizeStatus(query.Status),
		Tipo:   NormalizeTipo(query.Tipo),
		Search: strings.TrimSpace(query.Search),
	}
	if query.Orgao != "" {
		filter.Orgao = CanonicalOrgao(query.Orgao)
	}
	return filter
}

// UpdateStatus sobrescreve o status sem validar transições.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*View, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.UpdateStatus")
	defer span.End()

	status = NormalizeStatus(status)
	if status == "" {
		return nil, invalid("status", "status é obrigatório")
	}
	if !IsValidStatus(status) {
		return nil, invalid("status", "status inválido")
	}

	m, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	v := Format(*m)
	return &v, nil
}

// Stats devolve as contagens do painel.
func (s *Service) Stats(ctx context.Context) (*StatsView, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.Stats")
	defer span.End()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	view := &StatsView{
		Total:       stats.Total,
		Recebidas:   stats.PorStatus[StatusRecebida],
		EmAnalise:   stats.PorStatus[StatusEmAnalise],
		Respondidas: stats.PorStatus[StatusRespondida],
		Arquivadas:  stats.PorStatus[StatusArquivada],
		PorTipo:     stats.PorTipo,
		PorOrgao:    stats.PorOrgao,
	}
	if view.PorTipo == nil {
		view.PorTipo = map[string]int{}
	}
	if view.PorOrgao == nil {
		view.PorOrgao = map[string]int{}
	}
	return view, nil
}

// AddResposta registra a resposta do gestor e marca a manifestação como RESPONDIDA,
// qualquer que seja o status anterior.
func (s *Service) AddResposta(ctx context.Context, manifestacaoID, gestorID uuid.UUID, texto string) (*RespostaView, error) {
	ctx, span := tracer.Start(ctx, "manifestacao.AddResposta")
	defer span.End()

	texto = strings.TrimSpace(texto)
	if texto == "" {
		return nil, invalid("texto", "texto da resposta é obrigatório")
	}

	if _, err := s.repo.FindByID(ctx, manifestacaoID); err != nil {
		return nil, err
	}

	resposta, err := s.repo.CreateResposta(ctx, texto, gestorID, manifestacaoID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateStatus(ctx, manifestacaoID, StatusRespondida); err != nil {
		return nil, err
	}

	view := FormatResposta(*resposta)
	return &view, nil
}

func (s *Service) notifyCreated(ctx context.Context, m Manifestacao) {
	if s.notifier == nil {
		return
	}

	msg := notify.Message{
		Title:    "Nova manifestação " + m.Protocolo,
		Text:     fmt.Sprintf("%s para %s: %s", m.Tipo, m.Orgao, m.Assunto),
		Severity: notify.SeverityInfo,
	}
	if m.Tipo == TipoDenuncia {
		msg.Severity = notify.SeverityWarning
	}
	if !m.Anonimo && m.Nome != nil {
		msg.Text += "\nManifestante: " + *m.Nome
	}

	logger := log.With().Str("component", "notify").Str("protocolo", m.Protocolo).Logger()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTTL)
	go func() {
		defer cancel()
		if err := s.notifier.Notify(ctx, msg); err != nil {
			logger.Warn().Err(err).Msg("falha ao notificar nova manifestação")
		}
	}()
}

// parseDataFato aceita AAAA-MM-DD ou RFC 3339.
func parseDataFato(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, invalid("dataFato", "dataFato inválida")
}
