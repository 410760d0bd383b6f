package tarefa

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica tarefa inexistente.
	ErrNotFound = errors.New("tarefa não encontrada")
	// ErrItemNotFound indica item de checklist inexistente na tarefa.
	ErrItemNotFound = errors.New("item do checklist não encontrado")
	// ErrZeladorNaoEncontrado indica atribuição a zelador inexistente.
	ErrZeladorNaoEncontrado = errors.New("zelador não encontrado")
	// ErrTransicaoInvalida indica mudança de status fora da máquina de estados.
	ErrTransicaoInvalida = errors.New("transição de status inválida")
	// ErrChecklistIncompleto bloqueia conclusão com itens pendentes.
	ErrChecklistIncompleto = errors.New("checklist possui itens pendentes")
	// ErrObservacaoObrigatoria exige justificativa para não conformidade.
	ErrObservacaoObrigatoria = errors.New("item não conforme exige observação")
)

// Status da tarefa.
type Status string

const (
	StatusPendente    Status = "PENDING"
	StatusEmAndamento Status = "IN_PROGRESS"
	StatusConcluida   Status = "COMPLETED"
	StatusAtrasada    Status = "OVERDUE"
)

// Valid informa se o status é reconhecido.
func (s Status) Valid() bool {
	switch s {
	case StatusPendente, StatusEmAndamento, StatusConcluida, StatusAtrasada:
		return true
	}
	return false
}

// Prioridade da tarefa.
type Prioridade string

const (
	PrioridadeBaixa Prioridade = "low"
	PrioridadeMedia Prioridade = "medium"
	PrioridadeAlta  Prioridade = "high"
)

// Valid informa se a prioridade é reconhecida.
func (p Prioridade) Valid() bool {
	switch p {
	case PrioridadeBaixa, PrioridadeMedia, PrioridadeAlta:
		return true
	}
	return false
}

// StatusItem é o resultado de um item do checklist.
type StatusItem string

const (
	ItemOK          StatusItem = "OK"
	ItemNaoConforme StatusItem = "NOT_COMPLIANT"
	ItemPendente    StatusItem = "PENDING"
)

// Valid informa se o status de item é reconhecido.
func (s StatusItem) Valid() bool {
	switch s {
	case ItemOK, ItemNaoConforme, ItemPendente:
		return true
	}
	return false
}

// ItemChecklist é uma pergunta de conformidade dentro de uma tarefa.
type ItemChecklist struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Status        StatusItem `json:"status"`
	Observation   string     `json:"observation,omitempty"`
	Photos        []string   `json:"photos,omitempty"`
	IsEquipment   bool       `json:"isEquipment,omitempty"`
	EquipmentName string     `json:"equipmentName,omitempty"`
}

// Tarefa é a unidade de trabalho atribuível a um zelador.
// AssignedTo vazio denota tarefa não atribuída.
type Tarefa struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Setor             string          `json:"setor"`
	Status            Status          `json:"status"`
	ScheduledTime     string          `json:"scheduledTime"`
	EstimatedDuration int             `json:"estimatedDuration"`
	Checklist         []ItemChecklist `json:"checklist"`
	AssignedTo        string          `json:"assignedTo"`
	CreatedAt         time.Time       `json:"createdAt"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty"`
	Priority          Prioridade      `json:"priority"`
	UpdatedAt         *time.Time      `json:"updatedAt,omitempty"`
}

// NovoItemChecklist é a definição de item recebida na criação (sem id).
type NovoItemChecklist struct {
	Question      string `json:"question"`
	IsEquipment   bool   `json:"isEquipment,omitempty"`
	EquipmentName string `json:"equipmentName,omitempty"`
}

// CriarInput contém os campos de criação de tarefa.
// Qualquer status informado pelo chamador é ignorado.
type CriarInput struct {
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Setor             string              `json:"setor"`
	ScheduledTime     string              `json:"scheduledTime"`
	EstimatedDuration int                 `json:"estimatedDuration"`
	Checklist         []NovoItemChecklist `json:"checklist"`
	AssignedTo        string              `json:"assignedTo"`
	Priority          Prioridade          `json:"priority"`
}

// AtualizarInput contém campos opcionais para atualização parcial.
type AtualizarInput struct {
	Title             *string         `json:"title"`
	Description       *string         `json:"description"`
	Setor             *string         `json:"setor"`
	ScheduledTime     *string         `json:"scheduledTime"`
	EstimatedDuration *int            `json:"estimatedDuration"`
	Status            *Status         `json:"status"`
	CompletedAt       *time.Time      `json:"completedAt"`
	AssignedTo        *string         `json:"assignedTo"`
	Priority          *Prioridade     `json:"priority"`
	Checklist         []ItemChecklist `json:"checklist"`
}

// AtualizarItemInput contém campos opcionais de um item do checklist.
type AtualizarItemInput struct {
	Status      *StatusItem `json:"status"`
	Observation *string     `json:"observation"`
	Photos      []string    `json:"photos"`
}

// Filtros restringe listagens de tarefas.
type Filtros struct {
	Setor      string
	AssignedTo string
	Status     Status
	Priority   Prioridade
	DateFrom   *time.Time
	DateTo     *time.Time
}
