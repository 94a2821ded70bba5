package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/participadf/ouvidoria/internal/http/middleware"
	"github.com/participadf/ouvidoria/internal/manifestacao"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Dashboard devolve as contagens do painel.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manifestacoes.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// ListManifestacoes lista manifestações com paginação e filtros.
func (h *Handler) ListManifestacoes(w http.ResponseWriter, r *http.Request) {
	query, ok := parseListQuery(w, r)
	if !ok {
		return
	}

	result, err := h.manifestacoes.List(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ExportManifestacoes devolve planilha XLSX com o resultado filtrado.
func (h *Handler) ExportManifestacoes(w http.ResponseWriter, r *http.Request) {
	query, ok := parseListQuery(w, r)
	if !ok {
		return
	}

	data, err := h.manifestacoes.Export(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("manifestacoes-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetManifestacao detalha manifestação pelo id.
func (h *Handler) GetManifestacao(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.manifestacoes.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// UpdateManifestacaoStatus altera o status sem restrição de transição.
func (h *Handler) UpdateManifestacaoStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	view, err := h.manifestacoes.UpdateStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	audit := auditLogger(r)
	audit.Info().Str("manifestacao_id", id.String()).Str("status", view.Status).Msg("status alterado")
	WriteJSON(w, http.StatusOK, view)
}

// AddResposta registra a resposta do gestor e devolve a manifestação atualizada.
func (h *Handler) AddResposta(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	gestorID, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	var payload struct {
		Texto string `json:"texto"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	if _, err := h.manifestacoes.AddResposta(r.Context(), id, gestorID, payload.Texto); err != nil {
		writeServiceError(w, r, err)
		return
	}

	audit := auditLogger(r)
	audit.Info().Str("manifestacao_id", id.String()).Msg("resposta registrada")

	view, err := h.manifestacoes.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, view)
}

// auditLogger identifica o gestor autenticado nos registros de alterações.
func auditLogger(r *http.Request) zerolog.Logger {
	logCtx := log.With().Str("component", "audit").Str("request_id", chimiddleware.GetReqID(r.Context()))
	if gestor := httpmiddleware.GetGestor(r.Context()); gestor != nil {
		logCtx = logCtx.Str("gestor_id", gestor.ID).Str("gestor_email", gestor.Email)
	}
	return logCtx.Logger()
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return uuid.Nil, false
	}
	return id, true
}

func parseListQuery(w http.ResponseWriter, r *http.Request) (manifestacao.ListQuery, bool) {
	values := r.URL.Query()
	query := manifestacao.ListQuery{
		Status: values.Get("status"),
		Tipo:   values.Get("tipo"),
		Orgao:  values.Get("orgao"),
		Search: values.Get("search"),
	}

	for _, field := range []struct {
		name   string
		target *int
	}{
		{"page", &query.Page},
		{"limit", &query.Limit},
	} {
		raw := strings.TrimSpace(values.Get(field.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", field.name+" inválido", nil)
			return manifestacao.ListQuery{}, false
		}
		*field.target = n
	}

	return query, true
}
