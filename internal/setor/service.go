package setor

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zeladoria/aeroporto/internal/util"
)

// SetorRepository abstrai o armazenamento de setores.
type SetorRepository interface {
	List(ctx context.Context) ([]Setor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Setor, error)
	GetByName(ctx context.Context, name string) (*Setor, error)
	Create(ctx context.Context, input CreateInput) (*Setor, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Setor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service contém as regras do diretório de setores.
type Service struct {
	repo SetorRepository
}

// NewService cria o serviço de setores.
func NewService(repo SetorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Setor, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Setor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Setor, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Setor, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}

	criado, err := s.repo.Create(ctx, input)
	if err != nil {
		if err != ErrNomeEmUso {
			log.Error().Err(err).Msg("erro ao criar setor")
		}
		return nil, err
	}
	return criado, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Setor, error) {
	if input.Name != nil {
		if err := util.RequireString(*input.Name, "nome"); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
