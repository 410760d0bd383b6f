// Package relatorio deriva métricas agregadas a partir das tarefas.
// Todas as funções são puras: recebem a lista já filtrada e reduzem
// sem estado armazenado.
package relatorio

import (
	"time"

	"github.com/zeladoria/aeroporto/internal/setor"
	"github.com/zeladoria/aeroporto/internal/tarefa"
)

// MetricaZelador resume o desempenho de um zelador no período.
type MetricaZelador struct {
	Name              string  `json:"name"`
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	CompletionRate    float64 `json:"completionRate"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
}

// MetricaSetor resume o desempenho de um setor no período.
type MetricaSetor struct {
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
	AvgTime        float64 `json:"avgTime"`
}

// ConformidadeChecklist agrega itens de checklist de tarefas concluídas.
type ConformidadeChecklist struct {
	Total          int     `json:"total"`
	OK             int     `json:"ok"`
	NotCompliant   int     `json:"notCompliant"`
	ComplianceRate float64 `json:"complianceRate"`
}

// DistribuicaoPrioridade conta tarefas por prioridade.
type DistribuicaoPrioridade struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// EstatisticasGerais resume o conjunto filtrado.
type EstatisticasGerais struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Overdue        int     `json:"overdue"`
	InProgress     int     `json:"inProgress"`
	CompletionRate float64 `json:"completionRate"`
}

// Relatorio é o documento agregado devolvido ao painel gerencial.
type Relatorio struct {
	PeriodoDe   string                 `json:"periodoDe"`
	PeriodoAte  string                 `json:"periodoAte"`
	Setor       string                 `json:"setor"`
	Geral       EstatisticasGerais     `json:"geral"`
	Zeladores   []MetricaZelador       `json:"zeladores"`
	Setores     []MetricaSetor         `json:"setores"`
	Checklist   ConformidadeChecklist  `json:"checklist"`
	Prioridades DistribuicaoPrioridade `json:"prioridades"`
	GeradoEm    time.Time              `json:"geradoEm"`
}

// horasDeConclusao calcula o tempo entre criação e conclusão, em horas.
func horasDeConclusao(t tarefa.Tarefa) float64 {
	if t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(t.CreatedAt).Hours()
}

// MetricasPorZelador agrupa por e-mail atribuído e calcula taxa de conclusão
// e tempo médio de conclusão (apenas tarefas concluídas com carimbo).
func MetricasPorZelador(tarefas []tarefa.Tarefa) []MetricaZelador {
	ordem := make([]string, 0)
	porZelador := make(map[string][]tarefa.Tarefa)
	for _, t := range tarefas {
		if _, ok := porZelador[t.AssignedTo]; !ok {
			ordem = append(ordem, t.AssignedTo)
		}
		porZelador[t.AssignedTo] = append(porZelador[t.AssignedTo], t)
	}

	metricas := make([]MetricaZelador, 0, len(ordem))
	for _, email := range ordem {
		grupo := porZelador[email]

		var completed int
		var somaHoras float64
		var comCarimbo int
		for _, t := range grupo {
			if t.Status != tarefa.StatusConcluida {
				continue
			}
			completed++
			if t.CompletedAt != nil {
				somaHoras += horasDeConclusao(t)
				comCarimbo++
			}
		}

		m := MetricaZelador{
			Name:      email,
			Total:     len(grupo),
			Completed: completed,
		}
		if len(grupo) > 0 {
			m.CompletionRate = float64(completed) / float64(len(grupo)) * 100
		}
		if comCarimbo > 0 {
			m.AvgCompletionTime = somaHoras / float64(comCarimbo)
		}
		metricas = append(metricas, m)
	}
	return metricas
}

// MetricasPorSetor calcula as mesmas métricas para cada setor cadastrado.
func MetricasPorSetor(tarefas []tarefa.Tarefa, setores []setor.Setor) []MetricaSetor {
	metricas := make([]MetricaSetor, 0, len(setores))
	for _, s := range setores {
		var grupo []tarefa.Tarefa
		for _, t := range tarefas {
			if t.Setor == s.Name {
				grupo = append(grupo, t)
			}
		}

		var completed int
		var somaHoras float64
		var comCarimbo int
		for _, t := range grupo {
			if t.Status != tarefa.StatusConcluida {
				continue
			}
			completed++
			if t.CompletedAt != nil {
				somaHoras += horasDeConclusao(t)
				comCarimbo++
			}
		}

		m := MetricaSetor{
			Name:      s.Name,
			Total:     len(grupo),
			Completed: completed,
		}
		if len(grupo) > 0 {
			m.CompletionRate = float64(completed) / float64(len(grupo)) * 100
		}
		if comCarimbo > 0 {
			m.AvgTime = somaHoras / float64(comCarimbo)
		}
		metricas = append(metricas, m)
	}
	return metricas
}

// Conformidade agrega os itens de checklist das tarefas concluídas.
// A taxa considera OK sobre o total de itens avaliados.
func Conformidade(tarefas []tarefa.Tarefa) ConformidadeChecklist {
	var c ConformidadeChecklist
	for _, t := range tarefas {
		if t.Status != tarefa.StatusConcluida {
			continue
		}
		for _, item := range t.Checklist {
			c.Total++
			switch item.Status {
			case tarefa.ItemOK:
				c.OK++
			case tarefa.ItemNaoConforme:
				c.NotCompliant++
			}
		}
	}
	if c.Total > 0 {
		c.ComplianceRate = float64(c.OK) / float64(c.Total) * 100
	}
	return c
}

// Distribuicao conta tarefas por prioridade.
func Distribuicao(tarefas []tarefa.Tarefa) DistribuicaoPrioridade {
	var d DistribuicaoPrioridade
	for _, t := range tarefas {
		switch t.Priority {
		case tarefa.PrioridadeAlta:
			d.High++
		case tarefa.PrioridadeMedia:
			d.Medium++
		case tarefa.PrioridadeBaixa:
			d.Low++
		}
	}
	return d
}

// Estatisticas resume o conjunto filtrado.
func Estatisticas(tarefas []tarefa.Tarefa) EstatisticasGerais {
	var e EstatisticasGerais
	e.Total = len(tarefas)
	for _, t := range tarefas {
		switch t.Status {
		case tarefa.StatusConcluida:
			e.Completed++
		case tarefa.StatusAtrasada:
			e.Overdue++
		case tarefa.StatusEmAndamento:
			e.InProgress++
		}
	}
	if e.Total > 0 {
		e.CompletionRate = float64(e.Completed) / float64(e.Total) * 100
	}
	return e
}
