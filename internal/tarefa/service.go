package tarefa

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zeladoria/aeroporto/internal/util"
)

// TarefaRepository abstrai o armazenamento de tarefas.
type TarefaRepository interface {
	Insert(ctx context.Context, t *Tarefa) error
	Get(ctx context.Context, id uuid.UUID) (*Tarefa, error)
	Save(ctx context.Context, t *Tarefa) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filtros) ([]Tarefa, error)
	ListUnassigned(ctx context.Context) ([]Tarefa, error)
}

// ZeladorDirectory resolve zeladores para atribuição de tarefas.
type ZeladorDirectory interface {
	EmailByID(ctx context.Context, id uuid.UUID) (string, error)
}

// Service implementa o ciclo de vida das tarefas: criação, atribuição,
// máquina de estados, checklist e consultas.
type Service struct {
	repo      TarefaRepository
	zeladores ZeladorDirectory
}

// NewService cria o serviço de tarefas.
func NewService(repo TarefaRepository, zeladores ZeladorDirectory) *Service {
	return &Service{repo: repo, zeladores: zeladores}
}

// Criar registra uma nova tarefa. Status informado pelo chamador é ignorado:
// toda tarefa nasce PENDING com createdAt do servidor. Cada item do checklist
// recebe um id novo.
func (s *Service) Criar(ctx context.Context, input CriarInput) (*Tarefa, error) {
	if err := util.RequireString(input.Title, "título"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Setor, "setor"); err != nil {
		return nil, err
	}
	if input.EstimatedDuration <= 0 {
		return nil, errors.New("duração estimada deve ser positiva")
	}
	if input.Priority == "" {
		input.Priority = PrioridadeMedia
	}
	if !input.Priority.Valid() {
		return nil, errors.New("prioridade inválida")
	}

	checklist := make([]ItemChecklist, 0, len(input.Checklist))
	for _, item := range input.Checklist {
		checklist = append(checklist, ItemChecklist{
			ID:            util.NewID(),
			Question:      item.Question,
			Status:        ItemPendente,
			IsEquipment:   item.IsEquipment,
			EquipmentName: item.EquipmentName,
		})
	}

	t := &Tarefa{
		ID:                uuid.New(),
		Title:             strings.TrimSpace(input.Title),
		Description:       strings.TrimSpace(input.Description),
		Setor:             strings.TrimSpace(input.Setor),
		Status:            StatusPendente,
		ScheduledTime:     input.ScheduledTime,
		EstimatedDuration: input.EstimatedDuration,
		Checklist:         checklist,
		AssignedTo:        strings.TrimSpace(input.AssignedTo),
		CreatedAt:         util.Now(),
		Priority:          input.Priority,
	}

	if err := s.repo.Insert(ctx, t); err != nil {
		log.Error().Err(err).Msg("erro ao criar tarefa")
		return nil, err
	}

	return t, nil
}

// Get busca tarefa pelo identificador.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tarefa, error) {
	return s.repo.Get(ctx, id)
}

// Atualizar aplica alteração parcial e sempre renova updatedAt. Marcar
// COMPLETED sem completedAt explícito carimba o instante atual. Tarefas
// concluídas não mudam mais de status.
func (s *Service) Atualizar(ctx context.Context, id uuid.UUID, input AtualizarInput) (*Tarefa, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, errors.New("status inválido")
		}
		if t.Status == StatusConcluida && *input.Status != StatusConcluida {
			return nil, ErrTransicaoInvalida
		}
		t.Status = *input.Status
	}
	if input.Title != nil {
		t.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		t.Description = strings.TrimSpace(*input.Description)
	}
	if input.Setor != nil {
		t.Setor = strings.TrimSpace(*input.Setor)
	}
	if input.ScheduledTime != nil {
		t.ScheduledTime = *input.ScheduledTime
	}
	if input.EstimatedDuration != nil {
		if *input.EstimatedDuration <= 0 {
			return nil, errors.New("duração estimada deve ser positiva")
		}
		t.EstimatedDuration = *input.EstimatedDuration
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, errors.New("prioridade inválida")
		}
		t.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		t.AssignedTo = strings.TrimSpace(*input.AssignedTo)
	}
	if input.Checklist != nil {
		t.Checklist = input.Checklist
	}
	if input.CompletedAt != nil {
		t.CompletedAt = input.CompletedAt
	}

	now := util.Now()
	t.UpdatedAt = &now

	if t.Status == StatusConcluida && t.CompletedAt == nil {
		t.CompletedAt = &now
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}

	// Releitura pós-escrita, preservando a verificação de integridade original.
	atualizada, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return atualizada, nil
}

// Excluir remove a tarefa incondicionalmente.
func (s *Service) Excluir(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Listar devolve tarefas filtradas, mais recentes primeiro.
func (s *Service) Listar(ctx context.Context, f Filtros) ([]Tarefa, error) {
	return s.repo.List(ctx, f)
}

// ListarPorZelador devolve as tarefas atribuídas ao e-mail informado.
func (s *Service) ListarPorZelador(ctx context.Context, email string) ([]Tarefa, error) {
	return s.repo.List(ctx, Filtros{AssignedTo: email})
}

// ListarPorSetor devolve as tarefas do setor informado.
func (s *Service) ListarPorSetor(ctx context.Context, nome string) ([]Tarefa, error) {
	return s.repo.List(ctx, Filtros{Setor: nome})
}

// ListarNaoAtribuidas devolve tarefas sem zelador.
func (s *Service) ListarNaoAtribuidas(ctx context.Context) ([]Tarefa, error) {
	return s.repo.ListUnassigned(ctx)
}

// Atribuir resolve o zelador pelo id e grava seu e-mail na tarefa.
// Zelador inexistente deixa a tarefa intocada.
func (s *Service) Atribuir(ctx context.Context, tarefaID, zeladorID uuid.UUID) (*Tarefa, error) {
	email, err := s.zeladores.EmailByID(ctx, zeladorID)
	if err != nil {
		return nil, ErrZeladorNaoEncontrado
	}

	return s.Atualizar(ctx, tarefaID, AtualizarInput{AssignedTo: &email})
}

// Iniciar move a tarefa para IN_PROGRESS. Tarefas atrasadas continuam
// iniciáveis; tarefas concluídas não.
func (s *Service) Iniciar(ctx context.Context, id uuid.UUID) (*Tarefa, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch t.Status {
	case StatusPendente, StatusAtrasada, StatusEmAndamento:
	default:
		return nil, ErrTransicaoInvalida
	}

	status := StatusEmAndamento
	return s.Atualizar(ctx, id, AtualizarInput{Status: &status})
}

// Concluir finaliza a tarefa. A conclusão exige que todos os itens do
// checklist tenham sido respondidos (nenhum PENDING).
func (s *Service) Concluir(ctx context.Context, id uuid.UUID) (*Tarefa, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusConcluida {
		return nil, ErrTransicaoInvalida
	}
	for _, item := range t.Checklist {
		if item.Status == ItemPendente {
			return nil, ErrChecklistIncompleto
		}
	}

	status := StatusConcluida
	now := util.Now()
	return s.Atualizar(ctx, id, AtualizarInput{Status: &status, CompletedAt: &now})
}

// Atrasar marca a tarefa como OVERDUE. A promoção é sempre acionada pelo
// chamador; não há rotina automática de atraso.
func (s *Service) Atrasar(ctx context.Context, id uuid.UUID) (*Tarefa, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPendente {
		return nil, ErrTransicaoInvalida
	}

	status := StatusAtrasada
	return s.Atualizar(ctx, id, AtualizarInput{Status: &status})
}

// AtualizarItemChecklist substitui o item pelo id e regrava o checklist
// inteiro. Item marcado NOT_COMPLIANT exige observação não vazia.
func (s *Service) AtualizarItemChecklist(ctx context.Context, tarefaID uuid.UUID, itemID string, input AtualizarItemInput) (*Tarefa, error) {
	t, err := s.repo.Get(ctx, tarefaID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range t.Checklist {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	item := t.Checklist[idx]
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, errors.New("status de item inválido")
		}
		item.Status = *input.Status
	}
	if input.Observation != nil {
		item.Observation = strings.TrimSpace(*input.Observation)
	}
	if input.Photos != nil {
		item.Photos = input.Photos
	}

	if item.Status == ItemNaoConforme && item.Observation == "" {
		return nil, ErrObservacaoObrigatoria
	}

	checklist := make([]ItemChecklist, len(t.Checklist))
	copy(checklist, t.Checklist)
	checklist[idx] = item

	return s.Atualizar(ctx, tarefaID, AtualizarInput{Checklist: checklist})
}
