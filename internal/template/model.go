package template

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zeladoria/aeroporto/internal/tarefa"
)

var (
	// ErrNotFound indica template inexistente.
	ErrNotFound = errors.New("template não encontrado")
	// ErrSetorNaoEncontrado indica setor inválido na instanciação.
	ErrSetorNaoEncontrado = errors.New("setor do template não encontrado")
)

// horarioPadrao é aplicado quando uma tarefa é instanciada a partir de template.
const horarioPadrao = "08:00"

// QuestaoTemplate é uma pergunta reutilizável de checklist.
type QuestaoTemplate struct {
	ID            string `json:"id"`
	Question      string `json:"question"`
	IsEquipment   bool   `json:"isEquipment"`
	EquipmentName string `json:"equipmentName,omitempty"`
	IsRequired    bool   `json:"isRequired"`
	Category      string `json:"category"`
}

// Template é um modelo imutável para gerar tarefas com checklist predefinido.
type Template struct {
	ID                uuid.UUID         `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	EstimatedDuration int               `json:"estimatedDuration"`
	Priority          tarefa.Prioridade `json:"priority"`
	Questions         []QuestaoTemplate `json:"questions"`
	SetorID           uuid.UUID         `json:"setorId"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// NovaQuestao é a definição de questão recebida na criação (sem id).
type NovaQuestao struct {
	Question      string `json:"question"`
	IsEquipment   bool   `json:"isEquipment"`
	EquipmentName string `json:"equipmentName,omitempty"`
	IsRequired    bool   `json:"isRequired"`
	Category      string `json:"category"`
}

// CreateInput contém os campos de criação de template.
type CreateInput struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	EstimatedDuration int               `json:"estimatedDuration"`
	Priority          tarefa.Prioridade `json:"priority"`
	Questions         []NovaQuestao     `json:"questions"`
	SetorID           uuid.UUID         `json:"setorId"`
}

// UpdateInput contém campos opcionais para atualização parcial.
// Questions, quando presente, substitui a lista inteira com ids novos.
type UpdateInput struct {
	Title             *string            `json:"title"`
	Description       *string            `json:"description"`
	EstimatedDuration *int               `json:"estimatedDuration"`
	Priority          *tarefa.Prioridade `json:"priority"`
	Questions         []NovaQuestao      `json:"questions"`
	SetorID           *uuid.UUID         `json:"setorId"`
}

// Filtros restringe listagens de templates.
type Filtros struct {
	SetorID  *uuid.UUID
	Priority tarefa.Prioridade
	Category string
}
