package setor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica setor inexistente.
	ErrNotFound = errors.New("setor não encontrado")
	// ErrNomeEmUso indica violação da unicidade do nome.
	ErrNomeEmUso = errors.New("setor já existe")
)

// Setor representa uma zona organizacional (ex.: um terminal do aeroporto).
type Setor struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput contém os campos para registrar um setor.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// UpdateInput contém campos opcionais para atualização parcial.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}
