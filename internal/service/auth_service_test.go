package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/zeladoria/aeroporto/internal/auth"
	"github.com/zeladoria/aeroporto/internal/repo"
	"github.com/zeladoria/aeroporto/internal/zelador"
)

type stubAuthRepo struct {
	usuarios map[string]repo.Usuario
	tokens   map[string]repo.TokenRefresh
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		usuarios: make(map[string]repo.Usuario),
		tokens:   make(map[string]repo.TokenRefresh),
	}
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	u, ok := s.usuarios[strings.ToLower(email)]
	if !ok {
		return repo.Usuario{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubAuthRepo) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	for _, u := range s.usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) InsertUsuario(ctx context.Context, nome, email, senhaHash, papel, setorNome string) (repo.Usuario, error) {
	email = strings.ToLower(email)
	if _, ok := s.usuarios[email]; ok {
		return repo.Usuario{}, repo.ErrDuplicado
	}
	u := repo.Usuario{
		ID:        uuid.New(),
		Nome:      nome,
		Email:     email,
		SenhaHash: senhaHash,
		Papel:     papel,
		Setor:     setorNome,
		Ativo:     true,
	}
	s.usuarios[email] = u
	return u, nil
}

func (s *stubAuthRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error) {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.TokenRefresh{}, repo.ErrNotFound
	}
	return t, nil
}

func (s *stubAuthRepo) InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error) {
	t := repo.TokenRefresh{
		ID:        arg.ID,
		Subject:   arg.Subject,
		Audience:  arg.Audience,
		TokenHash: arg.TokenHash,
		Expiracao: arg.Expiracao,
		CriadoEm:  arg.CriadoEm,
	}
	s.tokens[arg.TokenHash] = t
	return t, nil
}

func (s *stubAuthRepo) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error {
	for hash, t := range s.tokens {
		if t.Subject == subject && t.Audience == audience && hash != keepHash {
			t.Revogado = true
			s.tokens[hash] = t
		}
	}
	return nil
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.ErrNotFound
	}
	t.Revogado = true
	s.tokens[tokenHash] = t
	return nil
}

func (s *stubAuthRepo) WithTx(tx pgx.Tx) *repo.Queries {
	return nil
}

type stubZeladores struct {
	porEmail map[string]zelador.Zelador
}

func (s *stubZeladores) GetByEmail(ctx context.Context, email string) (*zelador.Zelador, error) {
	z, ok := s.porEmail[strings.ToLower(email)]
	if !ok {
		return nil, zelador.ErrNotFound
	}
	clone := z
	return &clone, nil
}

func (s *stubZeladores) AtivarTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func novoAuthService(repoStub *stubAuthRepo, zeladores *stubZeladores, cache *stubRedis) *AuthService {
	return &AuthService{
		repo:       repoStub,
		zeladores:  zeladores,
		redis:      cache,
		jwt:        auth.NewJWTManager(strings.Repeat("a", 32), time.Minute),
		refreshTTL: time.Hour,
	}
}

func cadastraUsuario(t *testing.T, repoStub *stubAuthRepo, email, senha, papel string, ativo bool) repo.Usuario {
	t.Helper()
	hash, err := auth.Hash(senha)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := repo.Usuario{
		ID:        uuid.New(),
		Nome:      "Usuário Teste",
		Email:     email,
		SenhaHash: hash,
		Papel:     papel,
		Ativo:     ativo,
	}
	repoStub.usuarios[email] = u
	return u
}

func TestLoginComCredenciaisValidas(t *testing.T) {
	repoStub := newStubAuthRepo()
	cache := &stubRedis{store: make(map[string]string)}
	cadastraUsuario(t, repoStub, "gerente@aeroporto.com", "SenhaForte123", repo.PapelGerente, true)

	svc := novoAuthService(repoStub, &stubZeladores{porEmail: map[string]zelador.Zelador{}}, cache)

	result, err := svc.Login(context.Background(), "gerente@aeroporto.com", "SenhaForte123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("tokens ausentes no resultado")
	}
	if len(result.Roles) != 1 || result.Roles[0] != repo.PapelGerente {
		t.Fatalf("papéis incorretos: %v", result.Roles)
	}

	hash := auth.HashRefreshToken(result.RefreshToken)
	if cache.store[auth.RefreshRedisKey("painel", hash)] != "active" {
		t.Fatal("sessão refresh não marcada como ativa no redis")
	}
}

func TestLoginSenhaInvalida(t *testing.T) {
	repoStub := newStubAuthRepo()
	cadastraUsuario(t, repoStub, "gerente@aeroporto.com", "SenhaForte123", repo.PapelGerente, true)

	svc := novoAuthService(repoStub, &stubZeladores{porEmail: map[string]zelador.Zelador{}}, &stubRedis{store: map[string]string{}})

	_, err := svc.Login(context.Background(), "gerente@aeroporto.com", "errada")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperado ErrInvalidCredentials, veio %v", err)
	}
}

func TestLoginContaDesativada(t *testing.T) {
	repoStub := newStubAuthRepo()
	cadastraUsuario(t, repoStub, "inativo@aeroporto.com", "SenhaForte123", repo.PapelGerente, false)

	svc := novoAuthService(repoStub, &stubZeladores{porEmail: map[string]zelador.Zelador{}}, &stubRedis{store: map[string]string{}})

	_, err := svc.Login(context.Background(), "inativo@aeroporto.com", "SenhaForte123")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("esperado ErrAccountDisabled, veio %v", err)
	}
}

func TestLoginContaInexistenteSemCadastroProvisorio(t *testing.T) {
	svc := novoAuthService(newStubAuthRepo(), &stubZeladores{porEmail: map[string]zelador.Zelador{}}, &stubRedis{store: map[string]string{}})

	_, err := svc.Login(context.Background(), "ninguem@aeroporto.com", "tanto-faz")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperado ErrInvalidCredentials, veio %v", err)
	}
}

func TestLoginZeladorPendenteComSenhaProvisoriaErrada(t *testing.T) {
	tempHash, err := auth.Hash("senha-certa")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	zeladores := &stubZeladores{porEmail: map[string]zelador.Zelador{
		"pendente@aeroporto.com": {
			ID:                   uuid.New(),
			Email:                "pendente@aeroporto.com",
			NeedsAccountCreation: true,
			TempPasswordHash:     tempHash,
		},
	}}

	svc := novoAuthService(newStubAuthRepo(), zeladores, &stubRedis{store: map[string]string{}})

	_, err = svc.Login(context.Background(), "pendente@aeroporto.com", "senha-errada")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperado ErrInvalidCredentials, veio %v", err)
	}
}

func TestRefreshRotacionaToken(t *testing.T) {
	repoStub := newStubAuthRepo()
	cache := &stubRedis{store: make(map[string]string)}
	cadastraUsuario(t, repoStub, "gerente@aeroporto.com", "SenhaForte123", repo.PapelGerente, true)

	svc := novoAuthService(repoStub, &stubZeladores{porEmail: map[string]zelador.Zelador{}}, cache)

	login, err := svc.Login(context.Background(), "gerente@aeroporto.com", "SenhaForte123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	renovado, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renovado.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token deveria ter sido rotacionado")
	}

	// token antigo foi revogado em definitivo
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperado ErrRefreshInvalid para token antigo, veio %v", err)
	}
}

func TestLogoutRevogaSessao(t *testing.T) {
	repoStub := newStubAuthRepo()
	cache := &stubRedis{store: make(map[string]string)}
	cadastraUsuario(t, repoStub, "gerente@aeroporto.com", "SenhaForte123", repo.PapelGerente, true)

	svc := novoAuthService(repoStub, &stubZeladores{porEmail: map[string]zelador.Zelador{}}, cache)

	login, err := svc.Login(context.Background(), "gerente@aeroporto.com", "SenhaForte123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperado ErrRefreshInvalid após logout, veio %v", err)
	}
}

func TestRegisterCriaGerenteAtivo(t *testing.T) {
	repoStub := newStubAuthRepo()
	cache := &stubRedis{store: make(map[string]string)}

	svc := novoAuthService(repoStub, &stubZeladores{porEmail: map[string]zelador.Zelador{}}, cache)

	result, err := svc.Register(context.Background(), "Nova Gerente", "nova@aeroporto.com", "SenhaForte123", "Terminal 2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Profile.Papel != repo.PapelGerente {
		t.Fatalf("esperado papel GERENTE, veio %s", result.Profile.Papel)
	}

	// e-mail duplicado é recusado
	if _, err := svc.Register(context.Background(), "Outra", "nova@aeroporto.com", "SenhaForte123", ""); !errors.Is(err, ErrEmailEmUso) {
		t.Fatalf("esperado ErrEmailEmUso, veio %v", err)
	}
}
