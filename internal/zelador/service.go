package zelador

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/zeladoria/aeroporto/internal/auth"
	"github.com/zeladoria/aeroporto/internal/util"
)

// ZeladorRepository abstrai o armazenamento de zeladores.
type ZeladorRepository interface {
	List(ctx context.Context) ([]Zelador, error)
	ListBySetor(ctx context.Context, setorNome string) ([]Zelador, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Zelador, error)
	GetByEmail(ctx context.Context, email string) (*Zelador, error)
	Create(ctx context.Context, input CreateInput, tempHash string) (*Zelador, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Zelador, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountTarefas(ctx context.Context, email string) (ContadoresTarefas, error)
	CountTarefasAll(ctx context.Context) (map[string]ContadoresTarefas, error)
	AtivarTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// Service contém as regras do diretório de zeladores.
type Service struct {
	repo ZeladorRepository
}

// NewService cria o serviço de zeladores.
func NewService(repo ZeladorRepository) *Service {
	return &Service{repo: repo}
}

func aplicarContadores(z *Zelador, c ContadoresTarefas) {
	z.TotalTasks = c.Total
	z.PendingTasks = c.Pendentes
	z.CompletedTasks = c.Concluidas
	z.OverdueTasks = c.Atrasadas
}

// List devolve todos os zeladores com contadores recalculados em uma única
// consulta agrupada.
func (s *Service) List(ctx context.Context) ([]Zelador, error) {
	zeladores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	contadores, err := s.repo.CountTarefasAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range zeladores {
		aplicarContadores(&zeladores[i], contadores[zeladores[i].Email])
	}
	return zeladores, nil
}

// ListBySetor devolve os zeladores de um setor com contadores.
func (s *Service) ListBySetor(ctx context.Context, setorNome string) ([]Zelador, error) {
	zeladores, err := s.repo.ListBySetor(ctx, setorNome)
	if err != nil {
		return nil, err
	}

	contadores, err := s.repo.CountTarefasAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range zeladores {
		aplicarContadores(&zeladores[i], contadores[zeladores[i].Email])
	}
	return zeladores, nil
}

// GetByID busca zelador com contadores recalculados.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Zelador, error) {
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.CountTarefas(ctx, z.Email)
	if err != nil {
		return nil, err
	}
	aplicarContadores(z, c)
	return z, nil
}

// GetByEmail busca zelador pelo e-mail com contadores recalculados.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Zelador, error) {
	z, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.CountTarefas(ctx, z.Email)
	if err != nil {
		return nil, err
	}
	aplicarContadores(z, c)
	return z, nil
}

// EmailByID resolve o e-mail de um zelador para atribuição de tarefas.
func (s *Service) EmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return z.Email, nil
}

// Create cadastra um zelador provisório: a conta real só é provisionada no
// primeiro login. A senha provisória é guardada apenas como hash.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Zelador, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	tempHash, err := auth.Hash(input.Password)
	if err != nil {
		log.Error().Err(err).Msg("erro ao gerar hash de senha provisória")
		return nil, err
	}

	z, err := s.repo.Create(ctx, input, tempHash)
	if err != nil {
		if err != ErrEmailEmUso {
			log.Error().Err(err).Msg("erro ao criar zelador")
		}
		return nil, err
	}
	return z, nil
}

// Update aplica alteração parcial e devolve o registro com contadores.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Zelador, error) {
	if input.Email != nil {
		if err := util.ValidateEmail(*input.Email); err != nil {
			return nil, err
		}
	}

	z, err := s.repo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.CountTarefas(ctx, z.Email)
	if err != nil {
		return nil, err
	}
	aplicarContadores(z, c)
	return z, nil
}

// Delete remove o zelador, recusando enquanto houver tarefa PENDING ou
// IN_PROGRESS atribuída a ele.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	c, err := s.repo.CountTarefas(ctx, z.Email)
	if err != nil {
		return err
	}
	if c.Pendentes > 0 || c.EmAndamento > 0 {
		return ErrPossuiTarefasPendentes
	}

	return s.repo.Delete(ctx, id)
}
