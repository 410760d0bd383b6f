package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstrai pool ou transação do pgx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries concentra acesso às tabelas de usuários e sessões.
type Queries struct {
	db DBTX
}

// New cria Queries sobre pool ou transação.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx devolve Queries vinculado à transação informada.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// IsUniqueViolation identifica violação de índice único do Postgres.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const usuarioColumns = `id, nome, email, senha_hash, papel, setor, ativo, criado_em, atualizado_em`

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Papel, &u.Setor, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}

// GetUsuarioByEmail busca conta pelo e-mail normalizado.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE email = $1
    `
	return scanUsuario(q.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetUsuarioByID busca conta pelo identificador.
func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	const query = `
        SELECT ` + usuarioColumns + `
        FROM usuarios
        WHERE id = $1
    `
	return scanUsuario(q.db.QueryRow(ctx, query, id))
}

// InsertUsuario cria conta e devolve o registro persistido.
func (q *Queries) InsertUsuario(ctx context.Context, nome, email, senhaHash, papel, setor string) (Usuario, error) {
	const query = `
        INSERT INTO usuarios (nome, email, senha_hash, papel, setor, ativo)
        VALUES ($1, $2, $3, $4, $5, TRUE)
        RETURNING ` + usuarioColumns + `
    `

	row := q.db.QueryRow(ctx, query,
		strings.TrimSpace(nome),
		strings.ToLower(strings.TrimSpace(email)),
		senhaHash,
		strings.ToUpper(strings.TrimSpace(papel)),
		strings.TrimSpace(setor),
	)

	u, err := scanUsuario(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return Usuario{}, ErrDuplicado
		}
		return Usuario{}, err
	}
	return u, nil
}

// InsertRefreshToken persiste um refresh token hasheado.
func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (TokenRefresh, error) {
	const query = `
        INSERT INTO tokens_refresh (id, subject, audience, token_hash, expiracao, criado_em, revogado)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE)
        RETURNING id, subject, audience, token_hash, expiracao, criado_em, revogado
    `

	var t TokenRefresh
	err := q.db.QueryRow(ctx, query, arg.ID, arg.Subject, arg.Audience, arg.TokenHash, arg.Expiracao, arg.CriadoEm).
		Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		return TokenRefresh{}, err
	}
	return t, nil
}

// GetRefreshTokenByHash busca refresh token pelo hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (TokenRefresh, error) {
	const query = `
        SELECT id, subject, audience, token_hash, expiracao, criado_em, revogado
        FROM tokens_refresh
        WHERE token_hash = $1
    `

	var t TokenRefresh
	err := q.db.QueryRow(ctx, query, tokenHash).
		Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenRefresh{}, ErrNotFound
		}
		return TokenRefresh{}, err
	}
	return t, nil
}

// RevokeRefreshToken marca token como revogado.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	const query = `
        UPDATE tokens_refresh
        SET revogado = TRUE
        WHERE token_hash = $1
    `

	tag, err := q.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidateOtherRefreshTokens revoga sessões anteriores do mesmo sujeito.
func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error {
	const query = `
        UPDATE tokens_refresh
        SET revogado = TRUE
        WHERE subject = $1 AND audience = $2 AND token_hash <> $3 AND NOT revogado
    `

	_, err := q.db.Exec(ctx, query, subject, audience, keepHash)
	return err
}
