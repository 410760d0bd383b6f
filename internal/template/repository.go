package template

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zeladoria/aeroporto/internal/util"
)

const templateColumns = `id, title, description, estimated_duration, priority, questions, setor_id, created_at, updated_at`

// Repository provê acesso ao armazenamento de templates.
// As questões são persistidas como JSONB.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de templates.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var (
		t            Template
		questionsRaw []byte
	)

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.EstimatedDuration, &t.Priority,
		&questionsRaw, &t.SetorID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(questionsRaw) > 0 {
		if err := json.Unmarshal(questionsRaw, &t.Questions); err != nil {
			return nil, err
		}
	}
	if t.Questions == nil {
		t.Questions = []QuestaoTemplate{}
	}

	return &t, nil
}

// List devolve templates filtrados, mais recentes primeiro.
func (r *Repository) List(ctx context.Context, f Filtros) ([]Template, error) {
	query := `
        SELECT ` + templateColumns + `
        FROM templates
        WHERE 1=1
    `

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.SetorID != nil {
		query += " AND setor_id = " + arg(*f.SetorID)
	}
	if f.Priority != "" {
		query += " AND priority = " + arg(f.Priority)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return templates, nil
}

// GetByID busca template pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	const query = `
        SELECT ` + templateColumns + `
        FROM templates
        WHERE id = $1
    `
	return scanTemplate(r.pool.QueryRow(ctx, query, id))
}

// Create insere um novo template com as questões já identificadas.
func (r *Repository) Create(ctx context.Context, t *Template) error {
	const query = `
        INSERT INTO templates (id, title, description, estimated_duration, priority, questions, setor_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
    `

	questionsJSON, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		t.ID, strings.TrimSpace(t.Title), strings.TrimSpace(t.Description),
		t.EstimatedDuration, t.Priority, questionsJSON, t.SetorID, t.CreatedAt)
	return err
}

// Save regrava o template por inteiro, renovando updated_at.
func (r *Repository) Save(ctx context.Context, t *Template) error {
	const query = `
        UPDATE templates
        SET title = $2,
            description = $3,
            estimated_duration = $4,
            priority = $5,
            questions = $6,
            setor_id = $7,
            updated_at = $8
        WHERE id = $1
    `

	questionsJSON, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.EstimatedDuration, t.Priority,
		questionsJSON, t.SetorID, util.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete remove o template.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
        DELETE FROM templates
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
