package zelador

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

const zeladorColumns = `id, name, email, setor, needs_account_creation, is_active, temp_password_hash, created_at, updated_at`

// Repository provê acesso ao armazenamento de zeladores.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de zeladores.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanZelador(row pgx.Row) (*Zelador, error) {
	var (
		z        Zelador
		tempHash *string
	)

	err := row.Scan(&z.ID, &z.Name, &z.Email, &z.Setor, &z.NeedsAccountCreation, &z.IsActive, &tempHash, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	z.Role = "ZELADOR"
	if tempHash != nil {
		z.TempPasswordHash = *tempHash
	}
	return &z, nil
}

// List devolve todos os zeladores.
func (r *Repository) List(ctx context.Context) ([]Zelador, error) {
	const query = `
        SELECT ` + zeladorColumns + `
        FROM zeladores
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanZeladores(rows)
}

// ListBySetor devolve os zeladores do setor informado.
func (r *Repository) ListBySetor(ctx context.Context, setorNome string) ([]Zelador, error) {
	const query = `
        SELECT ` + zeladorColumns + `
        FROM zeladores
        WHERE setor = $1
        ORDER BY name
    `
	rows, err := r.pool.Query(ctx, query, strings.TrimSpace(setorNome))
	if err != nil {
		return nil, err
	}
	return scanZeladores(rows)
}

func scanZeladores(rows pgx.Rows) ([]Zelador, error) {
	defer rows.Close()

	var zeladores []Zelador
	for rows.Next() {
		z, err := scanZelador(rows)
		if err != nil {
			return nil, err
		}
		zeladores = append(zeladores, *z)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return zeladores, nil
}

// GetByID busca zelador pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Zelador, error) {
	const query = `
        SELECT ` + zeladorColumns + `
        FROM zeladores
        WHERE id = $1
    `
	return scanZelador(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail busca zelador pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Zelador, error) {
	const query = `
        SELECT ` + zeladorColumns + `
        FROM zeladores
        WHERE email = $1
    `
	return scanZelador(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// Create insere um zelador provisório aguardando primeiro login.
// A unicidade do e-mail é garantida por índice único.
func (r *Repository) Create(ctx context.Context, input CreateInput, tempHash string) (*Zelador, error) {
	const query = `
        INSERT INTO zeladores (name, email, setor, needs_account_creation, is_active, temp_password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, TRUE, FALSE, $4, $5, $5)
        RETURNING ` + zeladorColumns + `
    `

	now := util.Now()
	z, err := scanZelador(r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Name),
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.TrimSpace(input.Setor),
		tempHash,
		now,
	))
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}
	return z, nil
}

// Update aplica alteração parcial e devolve o registro atualizado.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Zelador, error) {
	const query = `
        UPDATE zeladores
        SET name = COALESCE($2, name),
            email = COALESCE($3, email),
            setor = COALESCE($4, setor),
            updated_at = $5
        WHERE id = $1
        RETURNING ` + zeladorColumns + `
    `

	var email *string
	if input.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*input.Email))
		email = &normalized
	}

	z, err := scanZelador(r.pool.QueryRow(ctx, query, id, input.Name, email, input.Setor, util.Now()))
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}
	return z, nil
}

// Delete remove o zelador. A verificação de tarefas em aberto fica no serviço.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
        DELETE FROM zeladores
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

// CountTarefas recalcula os contadores de tarefas do e-mail informado em uma
// única consulta agrupada.
func (r *Repository) CountTarefas(ctx context.Context, email string) (ContadoresTarefas, error) {
	const query = `
        SELECT status, COUNT(*)
        FROM tarefas
        WHERE assigned_to = $1
        GROUP BY status
    `

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return ContadoresTarefas{}, err
	}
	defer rows.Close()

	var c ContadoresTarefas
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return ContadoresTarefas{}, err
		}
		c.Total += count
		switch status {
		case "PENDING":
			c.Pendentes = count
		case "IN_PROGRESS":
			c.EmAndamento = count
		case "COMPLETED":
			c.Concluidas = count
		case "OVERDUE":
			c.Atrasadas = count
		}
	}

	if rows.Err() != nil {
		return ContadoresTarefas{}, rows.Err()
	}

	return c, nil
}

// CountTarefasAll recalcula os contadores de todos os zeladores de uma vez,
// agrupados por e-mail, evitando uma consulta por registro na listagem.
func (r *Repository) CountTarefasAll(ctx context.Context) (map[string]ContadoresTarefas, error) {
	const query = `
        SELECT assigned_to, status, COUNT(*)
        FROM tarefas
        WHERE assigned_to IS NOT NULL AND assigned_to <> ''
        GROUP BY assigned_to, status
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]ContadoresTarefas)
	for rows.Next() {
		var (
			email  string
			status string
			count  int
		)
		if err := rows.Scan(&email, &status, &count); err != nil {
			return nil, err
		}
		c := result[email]
		c.Total += count
		switch status {
		case "PENDING":
			c.Pendentes = count
		case "IN_PROGRESS":
			c.EmAndamento = count
		case "COMPLETED":
			c.Concluidas = count
		case "OVERDUE":
			c.Atrasadas = count
		}
		result[email] = c
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return result, nil
}

// AtivarTx marca o zelador como ativo e descarta o hash da senha provisória,
// dentro da transação de ativação do primeiro login.
func (r *Repository) AtivarTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	const query = `
        UPDATE zeladores
        SET needs_account_creation = FALSE,
            is_active = TRUE,
            temp_password_hash = NULL,
            updated_at = $2
        WHERE id = $1
    `

	tag, err := tx.Exec(ctx, query, id, util.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
