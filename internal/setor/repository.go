package setor

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zeladoria/aeroporto/internal/repo"
	"github.com/zeladoria/aeroporto/internal/util"
)

const setorColumns = `id, name, description, location, created_at, updated_at`

// Repository provê acesso ao armazenamento de setores.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de setores.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanSetor(row pgx.Row) (*Setor, error) {
	var s Setor
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Location, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List devolve todos os setores ordenados por nome.
func (r *Repository) List(ctx context.Context) ([]Setor, error) {
	const query = `
        SELECT ` + setorColumns + `
        FROM setores
        ORDER BY name
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var setores []Setor
	for rows.Next() {
		s, err := scanSetor(rows)
		if err != nil {
			return nil, err
		}
		setores = append(setores, *s)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return setores, nil
}

// GetByID busca setor pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Setor, error) {
	const query = `
        SELECT ` + setorColumns + `
        FROM setores
        WHERE id = $1
    `
	return scanSetor(r.pool.QueryRow(ctx, query, id))
}

// GetByName busca setor pelo nome exato.
func (r *Repository) GetByName(ctx context.Context, name string) (*Setor, error) {
	const query = `
        SELECT ` + setorColumns + `
        FROM setores
        WHERE name = $1
    `
	return scanSetor(r.pool.QueryRow(ctx, query, strings.TrimSpace(name)))
}

// Create insere um novo setor. A unicidade do nome é garantida por índice único.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Setor, error) {
	const query = `
        INSERT INTO setores (name, description, location, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        RETURNING ` + setorColumns + `
    `

	now := util.Now()
	s, err := scanSetor(r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Name),
		strings.TrimSpace(input.Description),
		strings.TrimSpace(input.Location),
		now,
	))
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrNomeEmUso
		}
		return nil, err
	}
	return s, nil
}

// Update aplica alteração parcial e devolve o registro atualizado.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Setor, error) {
	const query = `
        UPDATE setores
        SET name = COALESCE($2, name),
            description = COALESCE($3, description),
            location = COALESCE($4, location),
            updated_at = $5
        WHERE id = $1
        RETURNING ` + setorColumns + `
    `

	var name *string
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		name = &trimmed
	}

	s, err := scanSetor(r.pool.QueryRow(ctx, query, id, name, input.Description, input.Location, util.Now()))
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrNomeEmUso
		}
		return nil, err
	}
	return s, nil
}

// Delete remove o setor. Referências por nome em tarefas e zeladores permanecem.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
        DELETE FROM setores
        WHERE id = $1
    `

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
