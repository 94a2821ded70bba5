package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/participadf/ouvidoria/internal/auth"
	"github.com/participadf/ouvidoria/internal/repo"
	"github.com/participadf/ouvidoria/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação. A mesma mensagem cobre
	// e-mail desconhecido, conta inativa e senha errada.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrInvalidToken indica token ausente, malformado, expirado ou revogado.
	ErrInvalidToken = errors.New("token inválido")
	// ErrEmailInUse indica e-mail já cadastrado para outro gestor.
	ErrEmailInUse = errors.New("e-mail já cadastrado")
)

var tracer = otel.Tracer("github.com/participadf/ouvidoria/internal/service")

type authRepository interface {
	GetGestorByEmail(ctx context.Context, email string) (repo.Gestor, error)
	GetGestorByID(ctx context.Context, id uuid.UUID) (repo.Gestor, error)
	InsertGestor(ctx context.Context, arg repo.InsertGestorParams) (repo.Gestor, error)
	SetGestorAtivo(ctx context.Context, email string, ativo bool) error
	ListPasskeys(ctx context.Context, gestorID uuid.UUID) ([]repo.GestorPasskey, error)
	GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.GestorPasskey, error)
	InsertPasskey(ctx context.Context, arg repo.InsertPasskeyParams) (repo.GestorPasskey, error)
	TouchPasskey(ctx context.Context, id uuid.UUID, signCount uint32) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação de gestores.
type AuthService struct {
	repo  authRepository
	redis redisCommander
	jwt   *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr}
}

// StaffSummary é o resumo público do gestor autenticado.
type StaffSummary struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Orgao string `json:"orgao"`
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	Token  string       `json:"token"`
	Gestor StaffSummary `json:"gestor"`
}

// Login autentica gestor por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	gestor, err := s.repo.GetGestorByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login gestor: e-mail não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, gestor.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login gestor: falha ao verificar senha")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login gestor: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.LoginWithGestor(ctx, gestor)
}

// LoginWithGestor emite token para um gestor já verificado (ex.: passkey).
func (s *AuthService) LoginWithGestor(ctx context.Context, gestor repo.Gestor) (*LoginResult, error) {
	if !gestor.Ativo {
		log.Warn().Str("gestor_id", gestor.ID.String()).Msg("login gestor: conta inativa")
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.jwt.GenerateAccessToken(auth.Subject{
		ID:    gestor.ID,
		Nome:  gestor.Nome,
		Email: gestor.Email,
		Orgao: gestor.Orgao,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("gestor_id", gestor.ID.String()).Msg("gestor autenticado")
	return &LoginResult{Token: token, Gestor: summary(gestor)}, nil
}

// VerifyToken valida o token e devolve o gestor que ele representa.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*StaffSummary, error) {
	claims, err := s.jwt.ParseAndValidate(strings.TrimSpace(token))
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return &StaffSummary{
		ID:    claims.Subject,
		Nome:  claims.Nome,
		Email: claims.Email,
		Orgao: claims.Orgao,
	}, nil
}

// Logout revoga o token até sua expiração.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.ParseAndValidate(strings.TrimSpace(token))
	if err != nil {
		return ErrInvalidToken
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, auth.RevokedRedisKey(claims.ID), "1", ttl).Err()
}

func (s *AuthService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return true, nil
	}
	err := s.redis.Get(ctx, auth.RevokedRedisKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Me recarrega o perfil do gestor autenticado.
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*StaffSummary, error) {
	gestor, err := s.repo.GetGestorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := summary(gestor)
	return &out, nil
}

// CreateGestor cadastra gestor ativo com senha bcrypt.
func (s *AuthService) CreateGestor(ctx context.Context, nome, email, senha, orgao string) (*StaffSummary, error) {
	ctx, span := tracer.Start(ctx, "auth.CreateGestor")
	defer span.End()

	if err := util.RequireString(nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(orgao, "orgao"); err != nil {
		return nil, err
	}
	email = util.NormalizeEmail(email)
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(senha); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetGestorByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		return nil, err
	}

	gestor, err := s.repo.InsertGestor(ctx, repo.InsertGestorParams{
		Nome:      nome,
		Email:     email,
		SenhaHash: hash,
		Orgao:     orgao,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	out := summary(gestor)
	return &out, nil
}

// SetGestorAtivo ativa ou desativa o acesso de um gestor.
func (s *AuthService) SetGestorAtivo(ctx context.Context, email string, ativo bool) error {
	return s.repo.SetGestorAtivo(ctx, util.NormalizeEmail(email), ativo)
}

// GetGestorByID expõe a busca usada no fluxo de passkeys.
func (s *AuthService) GetGestorByID(ctx context.Context, id uuid.UUID) (repo.Gestor, error) {
	return s.repo.GetGestorByID(ctx, id)
}

// GetGestorByEmail expõe a busca usada no fluxo de passkeys.
func (s *AuthService) GetGestorByEmail(ctx context.Context, email string) (repo.Gestor, error) {
	return s.repo.GetGestorByEmail(ctx, util.NormalizeEmail(email))
}

// ListPasskeys lista as credenciais WebAuthn do gestor.
func (s *AuthService) ListPasskeys(ctx context.Context, gestorID uuid.UUID) ([]repo.GestorPasskey, error) {
	return s.repo.ListPasskeys(ctx, gestorID)
}

// GetPasskeyByCredentialID busca credencial pelo id WebAuthn.
func (s *AuthService) GetPasskeyByCredentialID(ctx context.Context, credentialID []byte) (repo.GestorPasskey, error) {
	return s.repo.GetPasskeyByCredentialID(ctx, credentialID)
}

// CreatePasskey registra nova credencial do gestor.
func (s *AuthService) CreatePasskey(ctx context.Context, arg repo.InsertPasskeyParams) (repo.GestorPasskey, error) {
	return s.repo.InsertPasskey(ctx, arg)
}

// TouchPasskey atualiza o contador após um login por passkey.
func (s *AuthService) TouchPasskey(ctx context.Context, id uuid.UUID, signCount uint32) error {
	return s.repo.TouchPasskey(ctx, id, signCount)
}

func summary(g repo.Gestor) StaffSummary {
	return StaffSummary{
		ID:    g.ID.String(),
		Nome:  g.Nome,
		Email: g.Email,
		Orgao: g.Orgao,
	}
}
