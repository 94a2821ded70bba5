package manifestacao

import "time"

// TimestampLayout é o formato ISO 8601 (UTC, milissegundos) usado nas respostas.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// View é a manifestação formatada para a API.
type View struct {
	ID                string         `json:"id"`
	Protocolo         string         `json:"protocolo"`
	Tipo              string         `json:"tipo"`
	Orgao             string         `json:"orgao"`
	Assunto           string         `json:"assunto"`
	DataFato          *string        `json:"dataFato"`
	HorarioFato       *string        `json:"horarioFato"`
	Local             *string        `json:"local"`
	PessoasEnvolvidas *string        `json:"pessoasEnvolvidas"`
	Relato            *string        `json:"relato"`
	AudioURL          *string        `json:"audioUrl"`
	Status            string         `json:"status"`
	Anonimo           bool           `json:"anonimo"`
	Nome              *string        `json:"nome"`
	Email             *string        `json:"email"`
	Telefone          *string        `json:"telefone"`
	Anexos            []AnexoView    `json:"anexos"`
	Respostas         []RespostaView `json:"respostas"`
	CreatedAt         string         `json:"createdAt"`
	UpdatedAt         string         `json:"updatedAt"`
}

// AnexoView é o anexo formatado.
type AnexoView struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	Tipo           string `json:"tipo"`
	ManifestacaoID string `json:"manifestacaoId"`
	CreatedAt      string `json:"createdAt"`
}

// RespostaView é a resposta formatada com o nome do gestor.
type RespostaView struct {
	ID             string `json:"id"`
	Texto          string `json:"texto"`
	GestorID       string `json:"gestorId"`
	GestorNome     string `json:"gestorNome"`
	ManifestacaoID string `json:"manifestacaoId"`
	CreatedAt      string `json:"createdAt"`
}

// StatsView é o resumo do painel.
type StatsView struct {
	Total       int            `json:"total"`
	Recebidas   int            `json:"recebidas"`
	EmAnalise   int            `json:"emAnalise"`
	Respondidas int            `json:"respondidas"`
	Arquivadas  int            `json:"arquivadas"`
	PorTipo     map[string]int `json:"porTipo"`
	PorOrgao    map[string]int `json:"porOrgao"`
}

// CreateResult devolve a manifestação criada e o protocolo emitido.
type CreateResult struct {
	Manifestacao View   `json:"manifestacao"`
	Protocolo    string `json:"protocolo"`
}

// ListResult é uma página de manifestações.
type ListResult struct {
	Manifestacoes []View `json:"manifestacoes"`
	Total         int    `json:"total"`
	Page          int    `json:"page"`
	TotalPages    int    `json:"totalPages"`
}

// Format converte o registro em View.
func Format(m Manifestacao) View {
	id := m.ID.String()
	v := View{
		ID:                id,
		Protocolo:         m.Protocolo,
		Tipo:              m.Tipo,
		Orgao:             m.Orgao,
		Assunto:           m.Assunto,
		HorarioFato:       m.HorarioFato,
		Local:             m.Local,
		PessoasEnvolvidas: m.PessoasEnvolvidas,
		Relato:            m.Relato,
		AudioURL:          m.AudioURL,
		Status:            m.Status,
		Anonimo:           m.Anonimo,
		Nome:              m.Nome,
		Email:             m.Email,
		Telefone:          m.Telefone,
		Anexos:            make([]AnexoView, 0, len(m.Anexos)),
		Respostas:         make([]RespostaView, 0, len(m.Respostas)),
		CreatedAt:         timestamp(m.CreatedAt),
		UpdatedAt:         timestamp(m.UpdatedAt),
	}
	if m.DataFato != nil {
		s := timestamp(*m.DataFato)
		v.DataFato = &s
	}
	for _, a := range m.Anexos {
		v.Anexos = append(v.Anexos, AnexoView{
			ID:             a.ID.String(),
			URL:            a.URL,
			Tipo:           a.Tipo,
			ManifestacaoID: id,
			CreatedAt:      timestamp(a.CreatedAt),
		})
	}
	for _, r := range m.Respostas {
		v.Respostas = append(v.Respostas, FormatResposta(r))
	}
	return v
}

// FormatResposta converte a resposta em RespostaView.
func FormatResposta(r Resposta) RespostaView {
	return RespostaView{
		ID:             r.ID.String(),
		Texto:          r.Texto,
		GestorID:       r.GestorID.String(),
		GestorNome:     r.GestorNome,
		ManifestacaoID: r.ManifestacaoID.String(),
		CreatedAt:      timestamp(r.CreatedAt),
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
