package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zeladoria/aeroporto/internal/auth"
	"github.com/zeladoria/aeroporto/internal/config"
	"github.com/zeladoria/aeroporto/internal/relatorio"
	"github.com/zeladoria/aeroporto/internal/service"
	"github.com/zeladoria/aeroporto/internal/setor"
	"github.com/zeladoria/aeroporto/internal/tarefa"
	"github.com/zeladoria/aeroporto/internal/template"
	"github.com/zeladoria/aeroporto/internal/zelador"
)

type stubAuth struct {
	jwt     *auth.JWTManager
	profile *service.PainelProfile
	roles   []string
}

func (s *stubAuth) Login(ctx context.Context, email, senha string) (*service.LoginResult, error) {
	if senha != "correta" {
		return nil, service.ErrInvalidCredentials
	}
	return &service.LoginResult{
		AccessToken:   "token",
		RefreshToken:  "refresh",
		Subject:       uuid.New(),
		Roles:         s.roles,
		Profile:       s.profile,
		RefreshExpiry: time.Now().Add(time.Hour),
	}, nil
}

func (s *stubAuth) Register(ctx context.Context, nome, email, senha, setorNome string) (*service.LoginResult, error) {
	return s.Login(ctx, email, "correta")
}

func (s *stubAuth) Refresh(ctx context.Context, rawToken string) (*service.LoginResult, error) {
	if rawToken != "refresh" {
		return nil, service.ErrRefreshInvalid
	}
	return s.Login(ctx, s.profile.Email, "correta")
}

func (s *stubAuth) Logout(ctx context.Context, rawToken string) error {
	return nil
}

func (s *stubAuth) GetMe(ctx context.Context, subject uuid.UUID) (*service.PainelProfile, []string, error) {
	return s.profile, s.roles, nil
}

func (s *stubAuth) JWT() *auth.JWTManager {
	return s.jwt
}

type stubSetores struct {
	setores []setor.Setor
}

func (s *stubSetores) List(ctx context.Context) ([]setor.Setor, error) { return s.setores, nil }
func (s *stubSetores) GetByID(ctx context.Context, id uuid.UUID) (*setor.Setor, error) {
	for _, st := range s.setores {
		if st.ID == id {
			clone := st
			return &clone, nil
		}
	}
	return nil, setor.ErrNotFound
}
func (s *stubSetores) Create(ctx context.Context, input setor.CreateInput) (*setor.Setor, error) {
	novo := setor.Setor{ID: uuid.New(), Name: input.Name, Description: input.Description, Location: input.Location}
	s.setores = append(s.setores, novo)
	return &novo, nil
}
func (s *stubSetores) Update(ctx context.Context, id uuid.UUID, input setor.UpdateInput) (*setor.Setor, error) {
	return s.GetByID(ctx, id)
}
func (s *stubSetores) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubZeladoresAPI struct{}

func (s *stubZeladoresAPI) List(ctx context.Context) ([]zelador.Zelador, error) { return nil, nil }
func (s *stubZeladoresAPI) ListBySetor(ctx context.Context, setorNome string) ([]zelador.Zelador, error) {
	return nil, nil
}
func (s *stubZeladoresAPI) GetByID(ctx context.Context, id uuid.UUID) (*zelador.Zelador, error) {
	return nil, zelador.ErrNotFound
}
func (s *stubZeladoresAPI) Create(ctx context.Context, input zelador.CreateInput) (*zelador.Zelador, error) {
	return &zelador.Zelador{ID: uuid.New(), Name: input.Name, Email: input.Email, NeedsAccountCreation: true}, nil
}
func (s *stubZeladoresAPI) Update(ctx context.Context, id uuid.UUID, input zelador.UpdateInput) (*zelador.Zelador, error) {
	return nil, zelador.ErrNotFound
}
func (s *stubZeladoresAPI) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubTarefasAPI struct {
	tarefas map[uuid.UUID]tarefa.Tarefa
}

func (s *stubTarefasAPI) Criar(ctx context.Context, input tarefa.CriarInput) (*tarefa.Tarefa, error) {
	t := tarefa.Tarefa{ID: uuid.New(), Title: input.Title, Setor: input.Setor, Status: tarefa.StatusPendente}
	s.tarefas[t.ID] = t
	return &t, nil
}
func (s *stubTarefasAPI) Get(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error) {
	t, ok := s.tarefas[id]
	if !ok {
		return nil, tarefa.ErrNotFound
	}
	clone := t
	return &clone, nil
}
func (s *stubTarefasAPI) Atualizar(ctx context.Context, id uuid.UUID, input tarefa.AtualizarInput) (*tarefa.Tarefa, error) {
	return s.Get(ctx, id)
}
func (s *stubTarefasAPI) Excluir(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubTarefasAPI) Listar(ctx context.Context, f tarefa.Filtros) ([]tarefa.Tarefa, error) {
	var result []tarefa.Tarefa
	for _, t := range s.tarefas {
		if f.AssignedTo != "" && !strings.EqualFold(t.AssignedTo, f.AssignedTo) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}
func (s *stubTarefasAPI) ListarPorZelador(ctx context.Context, email string) ([]tarefa.Tarefa, error) {
	return s.Listar(ctx, tarefa.Filtros{AssignedTo: email})
}
func (s *stubTarefasAPI) ListarNaoAtribuidas(ctx context.Context) ([]tarefa.Tarefa, error) {
	return nil, nil
}
func (s *stubTarefasAPI) Atribuir(ctx context.Context, tarefaID, zeladorID uuid.UUID) (*tarefa.Tarefa, error) {
	return nil, tarefa.ErrZeladorNaoEncontrado
}
func (s *stubTarefasAPI) Iniciar(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error) {
	return s.Get(ctx, id)
}
func (s *stubTarefasAPI) Concluir(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, item := range t.Checklist {
		if item.Status == tarefa.ItemPendente {
			return nil, tarefa.ErrChecklistIncompleto
		}
	}
	t.Status = tarefa.StatusConcluida
	s.tarefas[id] = *t
	return t, nil
}
func (s *stubTarefasAPI) Atrasar(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error) {
	return s.Get(ctx, id)
}
func (s *stubTarefasAPI) AtualizarItemChecklist(ctx context.Context, tarefaID uuid.UUID, itemID string, input tarefa.AtualizarItemInput) (*tarefa.Tarefa, error) {
	return s.Get(ctx, tarefaID)
}

type stubTemplatesAPI struct{}

func (s *stubTemplatesAPI) List(ctx context.Context, f template.Filtros) ([]template.Template, error) {
	return nil, nil
}
func (s *stubTemplatesAPI) GetByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	return nil, template.ErrNotFound
}
func (s *stubTemplatesAPI) Create(ctx context.Context, input template.CreateInput) (*template.Template, error) {
	return &template.Template{ID: uuid.New(), Title: input.Title}, nil
}
func (s *stubTemplatesAPI) Update(ctx context.Context, id uuid.UUID, input template.UpdateInput) (*template.Template, error) {
	return nil, template.ErrNotFound
}
func (s *stubTemplatesAPI) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubTemplatesAPI) Instantiate(ctx context.Context, templateID uuid.UUID) (*tarefa.Tarefa, error) {
	return nil, template.ErrNotFound
}

type stubRelatoriosAPI struct{}

func (s *stubRelatoriosAPI) Gerar(ctx context.Context, f relatorio.Filtros) (*relatorio.Relatorio, error) {
	return &relatorio.Relatorio{Setor: f.Setor}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            8080,
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 200},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 100, Burst: 200},
	}
}

func novoRouter(t *testing.T, perfil *service.PainelProfile, roles []string) (http.Handler, *auth.JWTManager, *stubTarefasAPI) {
	t.Helper()

	jwtMgr := auth.NewJWTManager(strings.Repeat("s", 32), time.Minute)
	tarefas := &stubTarefasAPI{tarefas: make(map[uuid.UUID]tarefa.Tarefa)}

	handler, err := NewRouter(testConfig(), nil, nil, Services{
		Auth:       &stubAuth{jwt: jwtMgr, profile: perfil, roles: roles},
		Setores:    &stubSetores{},
		Zeladores:  &stubZeladoresAPI{},
		Tarefas:    tarefas,
		Templates:  &stubTemplatesAPI{},
		Relatorios: &stubRelatoriosAPI{},
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return handler, jwtMgr, tarefas
}

func bearer(t *testing.T, jwtMgr *auth.JWTManager, roles []string) string {
	t.Helper()
	token, _, err := jwtMgr.GenerateAccessToken(uuid.NewString(), "painel", roles)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func corpo(body any) *bytes.Buffer {
	if body == nil {
		return bytes.NewBuffer(nil)
	}
	b, _ := json.Marshal(body)
	return bytes.NewBuffer(b)
}

func TestHealth(t *testing.T) {
	handler, _, _ := novoRouter(t, &service.PainelProfile{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("esperado 200, veio %d", rec.Code)
	}
}

func TestLoginDevolveEnvelopeECookie(t *testing.T) {
	perfil := &service.PainelProfile{ID: uuid.NewString(), Email: "gerente@aeroporto.com", Papel: "GERENTE"}
	handler, _, _ := novoRouter(t, perfil, []string{"GERENTE"})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", corpo(map[string]string{
		"email":    "gerente@aeroporto.com",
		"password": "correta",
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("esperado 200, veio %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decodificar envelope: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatal("access_token ausente no envelope")
	}

	var temCookie bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName && c.Value != "" {
			temCookie = true
		}
	}
	if !temCookie {
		t.Fatal("cookie de refresh não foi definido")
	}
}

func TestLoginSenhaErrada(t *testing.T) {
	handler, _, _ := novoRouter(t, &service.PainelProfile{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", corpo(map[string]string{
		"email":    "x@x.com",
		"password": "errada",
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("esperado 401, veio %d", rec.Code)
	}
}

func TestRotasGerenciaisExigemPapel(t *testing.T) {
	perfil := &service.PainelProfile{Email: "zelador@aeroporto.com", Papel: "ZELADOR"}
	handler, jwtMgr, _ := novoRouter(t, perfil, []string{"ZELADOR"})

	req := httptest.NewRequest(http.MethodGet, "/setores/", nil)
	req.Header.Set("Authorization", bearer(t, jwtMgr, []string{"ZELADOR"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("esperado 403 para zelador, veio %d", rec.Code)
	}

	// sem token nenhum
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/setores/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("esperado 401 sem token, veio %d", rec.Code)
	}
}

func TestCreateSetorComoGerente(t *testing.T) {
	perfil := &service.PainelProfile{Email: "gerente@aeroporto.com", Papel: "GERENTE"}
	handler, jwtMgr, _ := novoRouter(t, perfil, []string{"GERENTE"})

	req := httptest.NewRequest(http.MethodPost, "/setores/", corpo(map[string]string{
		"name":     "Terminal 3",
		"location": "Ala leste",
	}))
	req.Header.Set("Authorization", bearer(t, jwtMgr, []string{"GERENTE"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("esperado 201, veio %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMinhaTarefaDeOutroZelador(t *testing.T) {
	perfil := &service.PainelProfile{Email: "zelador@aeroporto.com", Papel: "ZELADOR"}
	handler, jwtMgr, tarefas := novoRouter(t, perfil, []string{"ZELADOR"})

	alheia := tarefa.Tarefa{ID: uuid.New(), AssignedTo: "outro@aeroporto.com", Status: tarefa.StatusPendente}
	tarefas.tarefas[alheia.ID] = alheia

	req := httptest.NewRequest(http.MethodPost, "/minhas-tarefas/"+alheia.ID.String()+"/iniciar", nil)
	req.Header.Set("Authorization", bearer(t, jwtMgr, []string{"ZELADOR"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("esperado 403, veio %d", rec.Code)
	}
}

func TestConcluirComChecklistPendenteRetornaConflito(t *testing.T) {
	perfil := &service.PainelProfile{Email: "zelador@aeroporto.com", Papel: "ZELADOR"}
	handler, jwtMgr, tarefas := novoRouter(t, perfil, []string{"ZELADOR"})

	minha := tarefa.Tarefa{
		ID:         uuid.New(),
		AssignedTo: "zelador@aeroporto.com",
		Status:     tarefa.StatusEmAndamento,
		Checklist:  []tarefa.ItemChecklist{{ID: "1", Status: tarefa.ItemPendente}},
	}
	tarefas.tarefas[minha.ID] = minha

	req := httptest.NewRequest(http.MethodPost, "/minhas-tarefas/"+minha.ID.String()+"/concluir", nil)
	req.Header.Set("Authorization", bearer(t, jwtMgr, []string{"ZELADOR"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("esperado 409, veio %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAtribuirZeladorInexistente(t *testing.T) {
	perfil := &service.PainelProfile{Email: "gerente@aeroporto.com", Papel: "GERENTE"}
	handler, jwtMgr, tarefas := novoRouter(t, perfil, []string{"GERENTE"})

	minha := tarefa.Tarefa{ID: uuid.New(), Status: tarefa.StatusPendente}
	tarefas.tarefas[minha.ID] = minha

	req := httptest.NewRequest(http.MethodPost, "/tarefas/"+minha.ID.String()+"/atribuir", corpo(map[string]string{
		"zeladorId": uuid.NewString(),
	}))
	req.Header.Set("Authorization", bearer(t, jwtMgr, []string{"GERENTE"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("esperado 404, veio %d", rec.Code)
	}
}

func TestRelatorioComFiltros(t *testing.T) {
	perfil := &service.PainelProfile{Email: "gerente@aeroporto.com", Papel: "GERENTE"}
	handler, jwtMgr, _ := novoRouter(t, perfil, []string{"GERENTE"})

	req := httptest.NewRequest(http.MethodGet, "/relatorios?setor=Terminal+1&de=2026-03-01&ate=2026-03-31", nil)
	req.Header.Set("Authorization", bearer(t, jwtMgr, []string{"GERENTE"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("esperado 200, veio %d: %s", rec.Code, rec.Body.String())
	}
}
