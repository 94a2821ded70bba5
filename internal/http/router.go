package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/participadf/ouvidoria/internal/config"
	httpmiddleware "github.com/participadf/ouvidoria/internal/http/middleware"
	"github.com/participadf/ouvidoria/internal/manifestacao"
	"github.com/participadf/ouvidoria/internal/repo"
	"github.com/participadf/ouvidoria/internal/service"
	"github.com/participadf/ouvidoria/internal/storage"
)

// Authenticator é o subconjunto do serviço de autenticação usado pela API.
type Authenticator interface {
	httpmiddleware.TokenVerifier
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	LoginWithGestor(ctx context.Context, gestor repo.Gestor) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, id uuid.UUID) (*service.StaffSummary, error)
	GetGestorByID(ctx context.Context, id uuid.UUID) (repo.Gestor, error)
	GetGestorByEmail(ctx context.Context, email string) (repo.Gestor, error)
	ListPasskeys(ctx context.Context, gestorID uuid.UUID) ([]repo.GestorPasskey, error)
	GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.GestorPasskey, error)
	CreatePasskey(ctx context.Context, arg repo.InsertPasskeyParams) (repo.GestorPasskey, error)
	TouchPasskey(ctx context.Context, id uuid.UUID, signCount uint32) error
}

type sessionStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Deps reúne as dependências da API.
type Deps struct {
	Auth          Authenticator
	Manifestacoes *manifestacao.Service
	Storage       storage.Uploader
	Sessions      sessionStore
	// Checks são as verificações de prontidão por dependência (db, redis).
	Checks map[string]func(context.Context) error
	// UploadsDir, quando preenchido, é servido em /uploads.
	UploadsDir string
}

type Handler struct {
	cfg           *config.Config
	auth          Authenticator
	manifestacoes *manifestacao.Service
	storage       storage.Uploader
	sessions      sessionStore
	checks        map[string]func(context.Context) error
	webauthn      *webauthn.WebAuthn
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

const (
	passkeyRegisterSessionPrefix = "webauthn:register:"
	passkeyLoginSessionPrefix    = "webauthn:login:"
	passkeySessionTTL            = 5 * time.Minute
)

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, deps Deps) (http.Handler, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.WebAuthnRPName,
		RPID:          cfg.WebAuthnRPID,
		RPOrigins:     []string{cfg.WebAuthnRPOrigin},
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn: %w", err)
	}

	uploader := deps.Storage
	if uploader == nil {
		uploader = storage.NoopUploader{}
	}

	h := &Handler{
		cfg:           cfg,
		auth:          deps.Auth,
		manifestacoes: deps.Manifestacoes,
		storage:       uploader,
		sessions:      deps.Sessions,
		checks:        deps.Checks,
		webauthn:      wa,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Tracing)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	if deps.UploadsDir != "" {
		r.Handle("/uploads/*", serveUploads(deps.UploadsDir))
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

			public.Post("/manifestacoes", h.CreateManifestacao)
			public.Get("/manifestacoes/{protocolo}", h.GetManifestacaoByProtocolo)
			public.Get("/orgaos", h.ListOrgaos)
			public.Post("/upload", h.Upload)

			public.Route("/auth", func(auth chi.Router) {
				auth.Post("/login", h.Login)
				auth.Post("/passkey/login/start", h.PasskeyLoginStart)
				auth.Post("/passkey/login/finish", h.PasskeyLoginFinish)
			})
		})

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.Auth(h.auth))
			private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

			private.Post("/auth/logout", h.Logout)
			private.Get("/auth/me", h.Me)
			private.Route("/auth/passkey/register", func(r chi.Router) {
				r.Post("/start", h.PasskeyRegisterStart)
				r.Post("/finish", h.PasskeyRegisterFinish)
			})

			private.Route("/admin", func(admin chi.Router) {
				admin.Get("/dashboard", h.Dashboard)
				admin.Get("/manifestacoes", h.ListManifestacoes)
				admin.Get("/manifestacoes/export", h.ExportManifestacoes)
				admin.Get("/manifestacoes/{id}", h.GetManifestacao)
				admin.Patch("/manifestacoes/{id}/status", h.UpdateManifestacaoStatus)
				admin.Post("/manifestacoes/{id}/resposta", h.AddResposta)
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida as dependências externas registradas.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]any{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// writeServiceError traduz erros de domínio para o envelope HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *manifestacao.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, "VALIDATION", verr.Message, map[string]string{"field": verr.Field})
	case errors.Is(err, manifestacao.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", manifestacao.ErrNotFound.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", repo.ErrNotFound.Error(), nil)
	case errors.Is(err, storage.ErrDisabled):
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "envio de anexos indisponível", nil)
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, context.Canceled):
		log.Debug().Str("path", r.URL.Path).Msg("requisição cancelada pelo cliente")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("falha ao processar requisição")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}
