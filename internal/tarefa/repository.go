package tarefa

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tarefaColumns = `id, title, description, setor, status, scheduled_time, estimated_duration, checklist, assigned_to, created_at, completed_at, priority, updated_at`

// Repository provê acesso ao armazenamento de tarefas.
// O checklist é persistido como JSONB e sempre gravado por inteiro.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de tarefas.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTarefa(row pgx.Row) (*Tarefa, error) {
	var (
		t            Tarefa
		checklistRaw []byte
		assignedTo   *string
		completedAt  *time.Time
		updatedAt    *time.Time
	)

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Setor, &t.Status, &t.ScheduledTime,
		&t.EstimatedDuration, &checklistRaw, &assignedTo, &t.CreatedAt, &completedAt, &t.Priority, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if assignedTo != nil {
		t.AssignedTo = *assignedTo
	}
	t.CompletedAt = completedAt
	t.UpdatedAt = updatedAt

	if len(checklistRaw) > 0 {
		if err := json.Unmarshal(checklistRaw, &t.Checklist); err != nil {
			return nil, err
		}
	}
	if t.Checklist == nil {
		t.Checklist = []ItemChecklist{}
	}

	return &t, nil
}

func scanTarefas(rows pgx.Rows) ([]Tarefa, error) {
	defer rows.Close()

	var tarefas []Tarefa
	for rows.Next() {
		t, err := scanTarefa(rows)
		if err != nil {
			return nil, err
		}
		tarefas = append(tarefas, *t)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return tarefas, nil
}

// Insert grava uma tarefa recém-criada.
func (r *Repository) Insert(ctx context.Context, t *Tarefa) error {
	const query = `
        INSERT INTO tarefas (id, title, description, setor, status, scheduled_time, estimated_duration, checklist, assigned_to, created_at, completed_at, priority, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `

	checklistJSON, err := json.Marshal(t.Checklist)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Setor, t.Status, t.ScheduledTime,
		t.EstimatedDuration, checklistJSON, nullable(t.AssignedTo), t.CreatedAt, t.CompletedAt, t.Priority, t.UpdatedAt)
	return err
}

// Get busca tarefa pelo identificador.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Tarefa, error) {
	const query = `
        SELECT ` + tarefaColumns + `
        FROM tarefas
        WHERE id = $1
    `
	return scanTarefa(r.pool.QueryRow(ctx, query, id))
}

// Save grava o estado completo da tarefa (documento único, sem escrita parcial).
func (r *Repository) Save(ctx context.Context, t *Tarefa) error {
	const query = `
        UPDATE tarefas
        SET title = $2,
            description = $3,
            setor = $4,
            status = $5,
            scheduled_time = $6,
            estimated_duration = $7,
            checklist = $8,
            assigned_to = $9,
            completed_at = $10,
            priority = $11,
            updated_at = $12
        WHERE id = $1
    `

	checklistJSON, err := json.Marshal(t.Checklist)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.Title, t.Description, t.Setor, t.Status, t.ScheduledTime,
		t.EstimatedDuration, checklistJSON, nullable(t.AssignedTo), t.CompletedAt, t.Priority, t.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete remove a tarefa sem verificação de dependências.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
        DELETE FROM tarefas
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

// List devolve tarefas filtradas, mais recentes primeiro.
// O limite superior de data é inclusivo até o fim do dia.
func (r *Repository) List(ctx context.Context, f Filtros) ([]Tarefa, error) {
	query := `
        SELECT ` + tarefaColumns + `
        FROM tarefas
        WHERE 1=1
    `

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Setor != "" {
		query += " AND setor = " + arg(f.Setor)
	}
	if f.AssignedTo != "" {
		query += " AND assigned_to = " + arg(f.AssignedTo)
	}
	if f.Status != "" {
		query += " AND status = " + arg(f.Status)
	}
	if f.Priority != "" {
		query += " AND priority = " + arg(f.Priority)
	}
	if f.DateFrom != nil {
		query += " AND created_at >= " + arg(*f.DateFrom)
	}
	if f.DateTo != nil {
		endOfDay := time.Date(f.DateTo.Year(), f.DateTo.Month(), f.DateTo.Day(), 23, 59, 59, 999999999, f.DateTo.Location())
		query += " AND created_at <= " + arg(endOfDay)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTarefas(rows)
}

// ListUnassigned devolve tarefas sem zelador (assigned_to nulo ou vazio).
func (r *Repository) ListUnassigned(ctx context.Context) ([]Tarefa, error) {
	const query = `
        SELECT ` + tarefaColumns + `
        FROM tarefas
        WHERE assigned_to IS NULL OR assigned_to = ''
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanTarefas(rows)
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
