package zelador

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica zelador inexistente.
	ErrNotFound = errors.New("zelador não encontrado")
	// ErrEmailEmUso indica violação da unicidade do e-mail.
	ErrEmailEmUso = errors.New("este email já está sendo usado")
	// ErrPossuiTarefasPendentes bloqueia exclusão com tarefas em aberto.
	ErrPossuiTarefasPendentes = errors.New("zelador possui tarefas pendentes ou em andamento")
)

// Zelador é o funcionário que executa tarefas de limpeza e manutenção.
// Os contadores de tarefas não são armazenados: são recalculados a cada
// leitura a partir do motor de tarefas.
type Zelador struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	Setor                string    `json:"setor"`
	Role                 string    `json:"role"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	NeedsAccountCreation bool      `json:"needsAccountCreation"`
	IsActive             bool      `json:"isActive"`

	// TempPasswordHash guarda o hash da senha provisória até o primeiro
	// login. Nunca é serializado.
	TempPasswordHash string `json:"-"`

	TotalTasks     int `json:"totalTasks"`
	PendingTasks   int `json:"pendingTasks"`
	CompletedTasks int `json:"completedTasks"`
	OverdueTasks   int `json:"overdueTasks"`
}

// CreateInput contém os campos para cadastrar um zelador provisório.
type CreateInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Setor    string `json:"setor"`
	Password string `json:"password"`
}

// UpdateInput contém campos opcionais para atualização parcial.
type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Setor *string `json:"setor"`
}

// ContadoresTarefas agrupa os totais por status de um zelador.
type ContadoresTarefas struct {
	Total       int
	Pendentes   int
	EmAndamento int
	Concluidas  int
	Atrasadas   int
}
