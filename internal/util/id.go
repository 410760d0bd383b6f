package util

import "github.com/google/uuid"

// NewID gera identificador único para entidades e itens de checklist.
func NewID() string {
	return uuid.NewString()
}
