package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/participadf/ouvidoria/internal/service"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyGestor  contextKey = "gestor"
	ContextKeyToken   contextKey = "token"
)

// TokenVerifier valida tokens de gestores.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*service.StaffSummary, error)
}

// Auth valida o Bearer token e injeta o gestor no contexto.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			gestor, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
					return
				}
				log.Error().Err(err).Msg("falha ao validar token")
				writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, gestor.ID)
			ctx = context.WithValue(ctx, ContextKeyGestor, gestor)
			ctx = context.WithValue(ctx, ContextKeyToken, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extrai o token do cabeçalho Authorization.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetSubject recupera o id do gestor do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetGestor recupera o gestor autenticado.
func GetGestor(ctx context.Context) *service.StaffSummary {
	val, _ := ctx.Value(ContextKeyGestor).(*service.StaffSummary)
	return val
}

// GetToken recupera o token bruto usado na requisição.
func GetToken(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyToken).(string)
	return val
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
