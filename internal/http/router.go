package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/zeladoria/aeroporto/internal/auth"
	"github.com/zeladoria/aeroporto/internal/config"
	httpmiddleware "github.com/zeladoria/aeroporto/internal/http/middleware"
	"github.com/zeladoria/aeroporto/internal/relatorio"
	"github.com/zeladoria/aeroporto/internal/service"
	"github.com/zeladoria/aeroporto/internal/setor"
	"github.com/zeladoria/aeroporto/internal/tarefa"
	"github.com/zeladoria/aeroporto/internal/template"
	"github.com/zeladoria/aeroporto/internal/zelador"
)

// AuthAPI é a superfície de autenticação consumida pelos handlers.
type AuthAPI interface {
	Login(ctx context.Context, email, senha string) (*service.LoginResult, error)
	Register(ctx context.Context, nome, email, senha, setorNome string) (*service.LoginResult, error)
	Refresh(ctx context.Context, rawToken string) (*service.LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	GetMe(ctx context.Context, subject uuid.UUID) (*service.PainelProfile, []string, error)
	JWT() *auth.JWTManager
}

// SetorAPI expõe o diretório de setores.
type SetorAPI interface {
	List(ctx context.Context) ([]setor.Setor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*setor.Setor, error)
	Create(ctx context.Context, input setor.CreateInput) (*setor.Setor, error)
	Update(ctx context.Context, id uuid.UUID, input setor.UpdateInput) (*setor.Setor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ZeladorAPI expõe o diretório de zeladores.
type ZeladorAPI interface {
	List(ctx context.Context) ([]zelador.Zelador, error)
	ListBySetor(ctx context.Context, setorNome string) ([]zelador.Zelador, error)
	GetByID(ctx context.Context, id uuid.UUID) (*zelador.Zelador, error)
	Create(ctx context.Context, input zelador.CreateInput) (*zelador.Zelador, error)
	Update(ctx context.Context, id uuid.UUID, input zelador.UpdateInput) (*zelador.Zelador, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TarefaAPI expõe o motor de tarefas.
type TarefaAPI interface {
	Criar(ctx context.Context, input tarefa.CriarInput) (*tarefa.Tarefa, error)
	Get(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error)
	Atualizar(ctx context.Context, id uuid.UUID, input tarefa.AtualizarInput) (*tarefa.Tarefa, error)
	Excluir(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context, f tarefa.Filtros) ([]tarefa.Tarefa, error)
	ListarPorZelador(ctx context.Context, email string) ([]tarefa.Tarefa, error)
	ListarNaoAtribuidas(ctx context.Context) ([]tarefa.Tarefa, error)
	Atribuir(ctx context.Context, tarefaID, zeladorID uuid.UUID) (*tarefa.Tarefa, error)
	Iniciar(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error)
	Concluir(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error)
	Atrasar(ctx context.Context, id uuid.UUID) (*tarefa.Tarefa, error)
	AtualizarItemChecklist(ctx context.Context, tarefaID uuid.UUID, itemID string, input tarefa.AtualizarItemInput) (*tarefa.Tarefa, error)
}

// TemplateAPI expõe o catálogo de templates.
type TemplateAPI interface {
	List(ctx context.Context, f template.Filtros) ([]template.Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*template.Template, error)
	Create(ctx context.Context, input template.CreateInput) (*template.Template, error)
	Update(ctx context.Context, id uuid.UUID, input template.UpdateInput) (*template.Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Instantiate(ctx context.Context, templateID uuid.UUID) (*tarefa.Tarefa, error)
}

// RelatorioAPI expõe a geração de relatórios.
type RelatorioAPI interface {
	Gerar(ctx context.Context, f relatorio.Filtros) (*relatorio.Relatorio, error)
}

// Services agrupa as dependências dos handlers.
type Services struct {
	Auth       AuthAPI
	Setores    SetorAPI
	Zeladores  ZeladorAPI
	Tarefas    TarefaAPI
	Templates  TemplateAPI
	Relatorios RelatorioAPI
}

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	auth          AuthAPI
	setores       SetorAPI
	zeladores     ZeladorAPI
	tarefas       TarefaAPI
	templates     TemplateAPI
	relatorios    RelatorioAPI
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, svcs Services) (http.Handler, error) {
	if svcs.Auth == nil {
		return nil, errors.New("router: serviço de autenticação obrigatório")
	}

	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		auth:          svcs.Auth,
		setores:       svcs.Setores,
		zeladores:     svcs.Zeladores,
		tarefas:       svcs.Tarefas,
		templates:     svcs.Templates,
		relatorios:    svcs.Relatorios,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(authRouter chi.Router) {
			authRouter.Post("/login", h.Login)
			authRouter.Post("/register", h.Register)
			authRouter.Post("/refresh", h.Refresh)
			authRouter.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(svcs.Auth.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Group(func(gerente chi.Router) {
			gerente.Use(httpmiddleware.RequireGerente)

			gerente.Route("/setores", func(s chi.Router) {
				s.Get("/", h.ListSetores)
				s.Post("/", h.CreateSetor)
				s.Get("/{id}", h.GetSetor)
				s.Put("/{id}", h.UpdateSetor)
				s.Delete("/{id}", h.DeleteSetor)
			})

			gerente.Route("/zeladores", func(z chi.Router) {
				z.Get("/", h.ListZeladores)
				z.Post("/", h.CreateZelador)
				z.Get("/{id}", h.GetZelador)
				z.Put("/{id}", h.UpdateZelador)
				z.Delete("/{id}", h.DeleteZelador)
				z.Get("/{id}/tarefas", h.ListTarefasDoZelador)
			})

			gerente.Route("/tarefas", func(t chi.Router) {
				t.Get("/", h.ListTarefas)
				t.Post("/", h.CreateTarefa)
				t.Get("/nao-atribuidas", h.ListTarefasNaoAtribuidas)
				t.Get("/{id}", h.GetTarefa)
				t.Put("/{id}", h.UpdateTarefa)
				t.Delete("/{id}", h.DeleteTarefa)
				t.Post("/{id}/atribuir", h.AtribuirTarefa)
				t.Post("/{id}/iniciar", h.IniciarTarefa)
				t.Post("/{id}/concluir", h.ConcluirTarefa)
				t.Post("/{id}/atrasar", h.AtrasarTarefa)
				t.Patch("/{id}/checklist/{itemID}", h.AtualizarChecklistTarefa)
			})

			gerente.Route("/templates", func(tp chi.Router) {
				tp.Get("/", h.ListTemplates)
				tp.Post("/", h.CreateTemplate)
				tp.Get("/{id}", h.GetTemplate)
				tp.Put("/{id}", h.UpdateTemplate)
				tp.Delete("/{id}", h.DeleteTemplate)
				tp.Post("/{id}/instanciar", h.InstanciarTemplate)
			})

			gerente.Get("/relatorios", h.GerarRelatorio)
			gerente.Get("/relatorios/export", h.ExportarRelatorio)
		})

		private.Group(func(zeladorGroup chi.Router) {
			zeladorGroup.Use(httpmiddleware.RequireZelador)

			zeladorGroup.Route("/minhas-tarefas", func(m chi.Router) {
				m.Get("/", h.MinhasTarefas)
				m.Post("/{id}/iniciar", h.IniciarMinhaTarefa)
				m.Post("/{id}/concluir", h.ConcluirMinhaTarefa)
				m.Patch("/{id}/checklist/{itemID}", h.AtualizarMeuChecklist)
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (h *Handler) subjectUUID(r *http.Request) (uuid.UUID, error) {
	subjectStr := httpmiddleware.GetSubject(r.Context())
	if strings.TrimSpace(subjectStr) == "" {
		return uuid.Nil, errors.New("subject ausente")
	}
	subject, err := uuid.Parse(subjectStr)
	if err != nil {
		return uuid.Nil, err
	}
	return subject, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, param))
}
