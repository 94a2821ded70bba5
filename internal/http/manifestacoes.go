package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/participadf/ouvidoria/internal/manifestacao"
)

type createManifestacaoPayload struct {
	Tipo              string   `json:"tipo"`
	Orgao             string   `json:"orgao"`
	Assunto           string   `json:"assunto"`
	DataFato          string   `json:"dataFato"`
	HorarioFato       string   `json:"horarioFato"`
	Local             string   `json:"local"`
	PessoasEnvolvidas string   `json:"pessoasEnvolvidas"`
	Relato            string   `json:"relato"`
	AudioURL          string   `json:"audioUrl"`
	Anonimo           *bool    `json:"anonimo"`
	Nome              string   `json:"nome"`
	Email             string   `json:"email"`
	Telefone          string   `json:"telefone"`
	Anexos            []string `json:"anexos"`
}

// CreateManifestacao registra manifestação enviada pelo cidadão.
func (h *Handler) CreateManifestacao(w http.ResponseWriter, r *http.Request) {
	var payload createManifestacaoPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	if strings.TrimSpace(payload.Tipo) == "" || strings.TrimSpace(payload.Orgao) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "tipo e órgão são obrigatórios", nil)
		return
	}
	if payload.Anonimo == nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "anonimo é obrigatório", nil)
		return
	}

	result, err := h.manifestacoes.Create(r.Context(), manifestacao.CreateInput{
		Tipo:              payload.Tipo,
		Orgao:             payload.Orgao,
		Assunto:           payload.Assunto,
		DataFato:          payload.DataFato,
		HorarioFato:       payload.HorarioFato,
		Local:             payload.Local,
		PessoasEnvolvidas: payload.PessoasEnvolvidas,
		Relato:            payload.Relato,
		AudioURL:          payload.AudioURL,
		Anonimo:           *payload.Anonimo,
		Nome:              payload.Nome,
		Email:             payload.Email,
		Telefone:          payload.Telefone,
		Anexos:            payload.Anexos,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// GetManifestacaoByProtocolo permite ao cidadão acompanhar pelo protocolo.
func (h *Handler) GetManifestacaoByProtocolo(w http.ResponseWriter, r *http.Request) {
	view, err := h.manifestacoes.GetByProtocolo(r.Context(), chi.URLParam(r, "protocolo"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// ListOrgaos devolve o catálogo de órgãos do formulário.
func (h *Handler) ListOrgaos(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, manifestacao.Orgaos)
}
