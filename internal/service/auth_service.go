package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zeladoria/aeroporto/internal/auth"
	"github.com/zeladoria/aeroporto/internal/db"
	"github.com/zeladoria/aeroporto/internal/repo"
	"github.com/zeladoria/aeroporto/internal/util"
	"github.com/zeladoria/aeroporto/internal/zelador"
)

// Audience única do painel; gerentes e zeladores compartilham o emissor.
const audiencePainel = "painel"

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
	// ErrEmailEmUso indica cadastro com e-mail já registrado.
	ErrEmailEmUso = errors.New("este email já está sendo usado")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	InsertUsuario(ctx context.Context, nome, email, senhaHash, papel, setor string) (repo.Usuario, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error)
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	WithTx(tx pgx.Tx) *repo.Queries
}

// zeladorAccounts dá acesso aos cadastros provisórios de zeladores.
type zeladorAccounts interface {
	GetByEmail(ctx context.Context, email string) (*zelador.Zelador, error)
	AtivarTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra autenticação, ativação de zeladores e sessões.
type AuthService struct {
	repo       authRepository
	zeladores  zeladorAccounts
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
	pool       *pgxpool.Pool
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, zeladores zeladorAccounts, pool *pgxpool.Pool, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, zeladores: zeladores, pool: pool, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       uuid.UUID
	Roles         []string
	Profile       *PainelProfile
	RefreshExpiry time.Time
}

// PainelProfile descreve a conta autenticada.
type PainelProfile struct {
	ID    string `json:"id"`
	Nome  string `json:"name"`
	Email string `json:"email"`
	Papel string `json:"role"`
	Setor string `json:"setor,omitempty"`
}

func profileFromUsuario(u repo.Usuario) *PainelProfile {
	return &PainelProfile{
		ID:    u.ID.String(),
		Nome:  u.Nome,
		Email: u.Email,
		Papel: u.Papel,
		Setor: u.Setor,
	}
}

// Login autentica pelo e-mail. Quando a conta ainda não existe mas há um
// cadastro provisório de zelador pendente, a senha provisória é conferida e
// a conta definitiva é provisionada na mesma transação (primeiro login).
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.loginPrimeiroAcesso(ctx, email, password)
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// loginPrimeiroAcesso ativa o zelador provisório: confere a senha
// provisória e cria a conta definitiva numa única transação.
func (s *AuthService) loginPrimeiroAcesso(ctx context.Context, email, password string) (*LoginResult, error) {
	z, err := s.zeladores.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, zelador.ErrNotFound) {
			log.Warn().Msg("login: conta não encontrada")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !z.NeedsAccountCreation || z.TempPasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.Verify(password, z.TempPasswordHash)
	if err != nil || !ok {
		log.Warn().Msg("login: senha provisória inválida")
		return nil, ErrInvalidCredentials
	}

	senhaHash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	var user repo.Usuario
	err = db.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
		user, err = s.repo.WithTx(tx).InsertUsuario(txCtx, z.Name, z.Email, senhaHash, repo.PapelZelador, z.Setor)
		if err != nil {
			return err
		}
		return s.zeladores.AtivarTx(txCtx, tx, z.ID)
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicado) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	log.Info().Str("email", user.Email).Msg("zelador ativado no primeiro login")
	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	if !user.Ativo {
		return nil, ErrAccountDisabled
	}

	roles := []string{user.Papel}
	token, _, err := s.jwt.GenerateAccessToken(user.ID.String(), audiencePainel, roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       user.ID,
		Roles:         roles,
		Profile:       profileFromUsuario(user),
		RefreshExpiry: expires,
	}, nil
}

// Register cria uma conta de gerente diretamente ativa.
func (s *AuthService) Register(ctx context.Context, nome, email, password, setor string) (*LoginResult, error) {
	if err := util.RequireString(nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	senhaHash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.InsertUsuario(ctx, nome, email, senhaHash, repo.PapelGerente, setor)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicado) {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Refresh troca refresh token por novos tokens, com rotação.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revogado || time.Now().UTC().After(record.Expiracao) || record.Audience != audiencePainel {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(audiencePainel, hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.GetUsuarioByID(ctx, record.Subject)
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// Revoga token anterior (DB + Redis)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	redisKey := auth.RefreshRedisKey(audiencePainel, hash)
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe retorna perfil e papéis do sujeito autenticado.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (*PainelProfile, []string, error) {
	user, err := s.repo.GetUsuarioByID(ctx, subject)
	if err != nil {
		return nil, nil, err
	}
	return profileFromUsuario(user), []string{user.Papel}, nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	_, err := s.repo.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		Subject:   subject,
		Audience:  audiencePainel,
		TokenHash: hash,
		Expiracao: expires,
		CriadoEm:  util.Now(),
	})
	if err != nil {
		return err
	}

	if err := s.repo.InvalidateOtherRefreshTokens(ctx, subject, audiencePainel, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(audiencePainel, hash), "active", time.Until(expires)).Err()
}
