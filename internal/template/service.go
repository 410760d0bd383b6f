package template

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zeladoria/aeroporto/internal/setor"
	"github.com/zeladoria/aeroporto/internal/tarefa"
	"github.com/zeladoria/aeroporto/internal/util"
)

// TemplateRepository abstrai o armazenamento de templates.
type TemplateRepository interface {
	List(ctx context.Context, f Filtros) ([]Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	Create(ctx context.Context, t *Template) error
	Save(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SetorDirectory resolve setores por id na instanciação.
type SetorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*setor.Setor, error)
}

// TarefaCreator cria tarefas a partir de templates.
type TarefaCreator interface {
	Criar(ctx context.Context, input tarefa.CriarInput) (*tarefa.Tarefa, error)
}

// Service contém as regras do catálogo de templates.
type Service struct {
	repo    TemplateRepository
	setores SetorDirectory
	tarefas TarefaCreator
}

// NewService cria o serviço de templates.
func NewService(repo TemplateRepository, setores SetorDirectory, tarefas TarefaCreator) *Service {
	return &Service{repo: repo, setores: setores, tarefas: tarefas}
}

// List devolve templates filtrados. O filtro de categoria aceita templates
// com ao menos uma questão na categoria informada.
func (s *Service) List(ctx context.Context, f Filtros) ([]Template, error) {
	templates, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if f.Category == "" {
		return templates, nil
	}

	filtrados := templates[:0]
	for _, t := range templates {
		for _, q := range t.Questions {
			if q.Category == f.Category {
				filtrados = append(filtrados, t)
				break
			}
		}
	}
	return filtrados, nil
}

// GetByID busca template pelo identificador.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registra um novo template, atribuindo id novo a cada questão.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Template, error) {
	if err := util.RequireString(input.Title, "título"); err != nil {
		return nil, err
	}
	if input.EstimatedDuration <= 0 {
		return nil, errors.New("duração estimada deve ser positiva")
	}
	if input.Priority == "" {
		input.Priority = tarefa.PrioridadeMedia
	}
	if !input.Priority.Valid() {
		return nil, errors.New("prioridade inválida")
	}
	if input.SetorID == uuid.Nil {
		return nil, errors.New("setor obrigatório")
	}

	t := &Template{
		ID:                uuid.New(),
		Title:             strings.TrimSpace(input.Title),
		Description:       strings.TrimSpace(input.Description),
		EstimatedDuration: input.EstimatedDuration,
		Priority:          input.Priority,
		Questions:         comIDs(input.Questions),
		SetorID:           input.SetorID,
		CreatedAt:         util.Now(),
	}
	t.UpdatedAt = t.CreatedAt

	if err := s.repo.Create(ctx, t); err != nil {
		log.Error().Err(err).Msg("erro ao criar template")
		return nil, err
	}
	return t, nil
}

// Update aplica alteração parcial; questões novas recebem ids novos.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Template, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		t.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		t.Description = strings.TrimSpace(*input.Description)
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
	if input.SetorID != nil {
		t.SetorID = *input.SetorID
	}
	if input.Questions != nil {
		t.Questions = comIDs(input.Questions)
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete remove o template.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Instantiate copia o template em uma nova tarefa: título, descrição,
// duração e prioridade são herdados; o setor é resolvido pelo id; cada
// questão vira item de checklist PENDING com id novo. Os metadados
// isRequired/category não são transportados para a tarefa.
func (s *Service) Instantiate(ctx context.Context, templateID uuid.UUID) (*tarefa.Tarefa, error) {
	t, err := s.repo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	st, err := s.setores.GetByID(ctx, t.SetorID)
	if err != nil {
		if errors.Is(err, setor.ErrNotFound) {
			return nil, ErrSetorNaoEncontrado
		}
		return nil, err
	}

	checklist := make([]tarefa.NovoItemChecklist, 0, len(t.Questions))
	for _, q := range t.Questions {
		checklist = append(checklist, tarefa.NovoItemChecklist{
			Question:      q.Question,
			IsEquipment:   q.IsEquipment,
			EquipmentName: q.EquipmentName,
		})
	}

	return s.tarefas.Criar(ctx, tarefa.CriarInput{
		Title:             t.Title,
		Description:       t.Description,
		Setor:             st.Name,
		ScheduledTime:     horarioPadrao,
		EstimatedDuration: t.EstimatedDuration,
		Checklist:         checklist,
		Priority:          t.Priority,
	})
}

func comIDs(questoes []NovaQuestao) []QuestaoTemplate {
	result := make([]QuestaoTemplate, 0, len(questoes))
	for _, q := range questoes {
		result = append(result, QuestaoTemplate{
			ID:            util.NewID(),
			Question:      q.Question,
			IsEquipment:   q.IsEquipment,
			EquipmentName: q.EquipmentName,
			IsRequired:    q.IsRequired,
			Category:      q.Category,
		})
	}
	return result
}
