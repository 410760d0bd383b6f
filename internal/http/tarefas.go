package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zeladoria/aeroporto/internal/tarefa"
	"github.com/zeladoria/aeroporto/internal/zelador"
)

// filtrosFromQuery monta os filtros de listagem a partir da query string.
// Datas usam o formato 2006-01-02.
func filtrosFromQuery(r *http.Request) (tarefa.Filtros, error) {
	q := r.URL.Query()
	f := tarefa.Filtros{
		Setor:      strings.TrimSpace(q.Get("setor")),
		AssignedTo: strings.TrimSpace(q.Get("assignedTo")),
		Status:     tarefa.Status(strings.TrimSpace(q.Get("status"))),
		Priority:   tarefa.Prioridade(strings.TrimSpace(q.Get("priority"))),
	}

	if f.Status != "" && !f.Status.Valid() {
		return f, errors.New("status inválido")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return f, errors.New("prioridade inválida")
	}

	if de := strings.TrimSpace(q.Get("de")); de != "" {
		parsed, err := time.Parse("2006-01-02", de)
		if err != nil {
			return f, errors.New("data inicial inválida")
		}
		f.DateFrom = &parsed
	}
	if ate := strings.TrimSpace(q.Get("ate")); ate != "" {
		parsed, err := time.Parse("2006-01-02", ate)
		if err != nil {
			return f, errors.New("data final inválida")
		}
		f.DateTo = &parsed
	}

	return f, nil
}

// ListTarefas devolve tarefas filtradas por setor, zelador, status,
// prioridade e intervalo de datas.
func (h *Handler) ListTarefas(w http.ResponseWriter, r *http.Request) {
	f, err := filtrosFromQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	tarefas, err := h.tarefas.Listar(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar tarefas", nil)
		return
	}
	WriteJSON(w, http.StatusOK, tarefas)
}

// ListTarefasNaoAtribuidas devolve tarefas sem zelador.
func (h *Handler) ListTarefasNaoAtribuidas(w http.ResponseWriter, r *http.Request) {
	tarefas, err := h.tarefas.ListarNaoAtribuidas(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar tarefas", nil)
		return
	}
	WriteJSON(w, http.StatusOK, tarefas)
}

// GetTarefa devolve uma tarefa pelo id.
func (h *Handler) GetTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	t, err := h.tarefas.Get(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// CreateTarefa registra uma nova tarefa.
func (h *Handler) CreateTarefa(w http.ResponseWriter, r *http.Request) {
	var input tarefa.CriarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	criada, err := h.tarefas.Criar(r.Context(), input)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, criada)
}

// UpdateTarefa aplica alteração parcial.
func (h *Handler) UpdateTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input tarefa.AtualizarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	atualizada, err := h.tarefas.Atualizar(r.Context(), id, input)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, atualizada)
}

// DeleteTarefa remove a tarefa.
func (h *Handler) DeleteTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.tarefas.Excluir(r.Context(), id); err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AtribuirTarefa vincula a tarefa a um zelador pelo id.
func (h *Handler) AtribuirTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		ZeladorID uuid.UUID `json:"zeladorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if payload.ZeladorID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "zeladorId é obrigatório", nil)
		return
	}

	t, err := h.tarefas.Atribuir(r.Context(), id, payload.ZeladorID)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// AtrasarTarefa promove tarefa pendente a OVERDUE.
func (h *Handler) AtrasarTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	t, err := h.tarefas.Atrasar(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// IniciarTarefa move a tarefa para IN_PROGRESS em nome da gerência.
func (h *Handler) IniciarTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	t, err := h.tarefas.Iniciar(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// ConcluirTarefa finaliza a tarefa em nome da gerência. A trava do
// checklist vale também aqui.
func (h *Handler) ConcluirTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	t, err := h.tarefas.Concluir(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// AtualizarChecklistTarefa responde um item do checklist em nome da gerência.
func (h *Handler) AtualizarChecklistTarefa(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if itemID == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "item inválido", nil)
		return
	}

	var input tarefa.AtualizarItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	t, err := h.tarefas.AtualizarItemChecklist(r.Context(), id, itemID, input)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// MinhasTarefas devolve as tarefas atribuídas ao zelador autenticado.
func (h *Handler) MinhasTarefas(w http.ResponseWriter, r *http.Request) {
	email, err := h.meuEmail(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return
	}

	tarefas, err := h.tarefas.ListarPorZelador(r.Context(), email)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar tarefas", nil)
		return
	}
	WriteJSON(w, http.StatusOK, tarefas)
}

// minhaTarefa carrega a tarefa e garante que pertence ao zelador autenticado.
func (h *Handler) minhaTarefa(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return uuid.Nil, false
	}

	email, err := h.meuEmail(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "identificação inválida", nil)
		return uuid.Nil, false
	}

	t, err := h.tarefas.Get(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return uuid.Nil, false
	}
	if !strings.EqualFold(t.AssignedTo, email) {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "tarefa não atribuída a você", nil)
		return uuid.Nil, false
	}

	return id, true
}

// IniciarMinhaTarefa move a tarefa do zelador para IN_PROGRESS.
func (h *Handler) IniciarMinhaTarefa(w http.ResponseWriter, r *http.Request) {
	id, ok := h.minhaTarefa(w, r)
	if !ok {
		return
	}

	t, err := h.tarefas.Iniciar(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// ConcluirMinhaTarefa finaliza a tarefa do zelador.
func (h *Handler) ConcluirMinhaTarefa(w http.ResponseWriter, r *http.Request) {
	id, ok := h.minhaTarefa(w, r)
	if !ok {
		return
	}

	t, err := h.tarefas.Concluir(r.Context(), id)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// AtualizarMeuChecklist responde um item do checklist da tarefa do zelador.
func (h *Handler) AtualizarMeuChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := h.minhaTarefa(w, r)
	if !ok {
		return
	}

	itemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if itemID == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "item inválido", nil)
		return
	}

	var input tarefa.AtualizarItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	t, err := h.tarefas.AtualizarItemChecklist(r.Context(), id, itemID, input)
	if err != nil {
		h.handleTarefaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleTarefaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tarefa.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, tarefa.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, tarefa.ErrZeladorNaoEncontrado), errors.Is(err, zelador.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, tarefa.ErrTransicaoInvalida),
		errors.Is(err, tarefa.ErrChecklistIncompleto),
		errors.Is(err, tarefa.ErrObservacaoObrigatoria):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
