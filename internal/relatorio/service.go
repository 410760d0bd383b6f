package relatorio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zeladoria/aeroporto/internal/setor"
	"github.com/zeladoria/aeroporto/internal/tarefa"
	"github.com/zeladoria/aeroporto/internal/util"
)

// TarefaLister lista tarefas já filtradas para agregação.
type TarefaLister interface {
	Listar(ctx context.Context, f tarefa.Filtros) ([]tarefa.Tarefa, error)
}

// SetorLister lista os setores cadastrados.
type SetorLister interface {
	List(ctx context.Context) ([]setor.Setor, error)
}

// Filtros restringe o período e o setor do relatório.
type Filtros struct {
	Setor    string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Service monta relatórios agregados com cache curto em redis.
type Service struct {
	tarefas  TarefaLister
	setores  SetorLister
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService cria o serviço de relatórios. cache pode ser nulo em testes.
func NewService(tarefas TarefaLister, setores SetorLister, cache *redis.Client, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &Service{tarefas: tarefas, setores: setores, cache: cache, cacheTTL: cacheTTL}
}

func cacheKey(f Filtros) string {
	de, ate := "", ""
	if f.DateFrom != nil {
		de = f.DateFrom.Format("2006-01-02")
	}
	if f.DateTo != nil {
		ate = f.DateTo.Format("2006-01-02")
	}
	return fmt.Sprintf("relatorio:%s:%s:%s", f.Setor, de, ate)
}

// Gerar monta o relatório do período. O resultado fica em cache por um
// intervalo curto; relatórios são leituras caras e toleram defasagem.
func (s *Service) Gerar(ctx context.Context, f Filtros) (*Relatorio, error) {
	key := cacheKey(f)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var r Relatorio
			if json.Unmarshal(data, &r) == nil {
				return &r, nil
			}
		}
	}

	tarefas, err := s.tarefas.Listar(ctx, tarefa.Filtros{
		Setor:    f.Setor,
		DateFrom: f.DateFrom,
		DateTo:   f.DateTo,
	})
	if err != nil {
		return nil, err
	}

	setores, err := s.setores.List(ctx)
	if err != nil {
		return nil, err
	}

	r := &Relatorio{
		Setor:       f.Setor,
		Geral:       Estatisticas(tarefas),
		Zeladores:   MetricasPorZelador(tarefas),
		Setores:     MetricasPorSetor(tarefas, setores),
		Checklist:   Conformidade(tarefas),
		Prioridades: Distribuicao(tarefas),
		GeradoEm:    util.Now(),
	}
	if f.DateFrom != nil {
		r.PeriodoDe = f.DateFrom.Format("2006-01-02")
	}
	if f.DateTo != nil {
		r.PeriodoAte = f.DateTo.Format("2006-01-02")
	}

	if s.cache != nil {
		if payload, err := json.Marshal(r); err == nil {
			_ = s.cache.Set(ctx, key, payload, s.cacheTTL).Err()
		}
	}

	return r, nil
}
