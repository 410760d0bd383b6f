package repo

import (
	"time"

	"github.com/google/uuid"
)

// Papéis reconhecidos pela aplicação.
const (
	PapelAdmin   = "ADMIN"
	PapelGerente = "GERENTE"
	PapelZelador = "ZELADOR"
)

// Usuario representa uma conta autenticável (gerente, zelador ou admin).
type Usuario struct {
	ID           uuid.UUID
	Nome         string
	Email        string
	SenhaHash    string
	Papel        string
	Setor        string
	Ativo        bool
	CriadoEm     time.Time
	AtualizadoEm time.Time
}

// TokenRefresh modela tabela de refresh tokens.
type TokenRefresh struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
	Revogado  bool
}

// InsertRefreshTokenParams agrupa campos do insert de refresh token.
type InsertRefreshTokenParams struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	Audience  string
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
}
