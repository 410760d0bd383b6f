package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/zeladoria/aeroporto/internal/zelador"
)

// ListZeladores devolve zeladores com contadores de tarefas; aceita ?setor=.
func (h *Handler) ListZeladores(w http.ResponseWriter, r *http.Request) {
	var (
		zeladores []zelador.Zelador
		err       error
	)

	if setorNome := strings.TrimSpace(r.URL.Query().Get("setor")); setorNome != "" {
		zeladores, err = h.zeladores.ListBySetor(r.Context(), setorNome)
	} else {
		zeladores, err = h.zeladores.List(r.Context())
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar zeladores", nil)
		return
	}
	WriteJSON(w, http.StatusOK, zeladores)
}

// GetZelador devolve um zelador pelo id.
func (h *Handler) GetZelador(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	z, err := h.zeladores.GetByID(r.Context(), id)
	if err != nil {
		h.handleZeladorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, z)
}

// ListTarefasDoZelador devolve as tarefas atribuídas ao zelador indicado.
func (h *Handler) ListTarefasDoZelador(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	z, err := h.zeladores.GetByID(r.Context(), id)
	if err != nil {
		h.handleZeladorError(w, err)
		return
	}

	tarefas, err := h.tarefas.ListarPorZelador(r.Context(), z.Email)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar tarefas", nil)
		return
	}
	WriteJSON(w, http.StatusOK, tarefas)
}

// CreateZelador cadastra um zelador provisório com senha temporária.
func (h *Handler) CreateZelador(w http.ResponseWriter, r *http.Request) {
	var input zelador.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	criado, err := h.zeladores.Create(r.Context(), input)
	if err != nil {
		h.handleZeladorError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, criado)
}

// UpdateZelador aplica alteração parcial.
func (h *Handler) UpdateZelador(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input zelador.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	atualizado, err := h.zeladores.Update(r.Context(), id, input)
	if err != nil {
		h.handleZeladorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, atualizado)
}

// DeleteZelador remove um zelador sem tarefas em aberto.
func (h *Handler) DeleteZelador(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.zeladores.Delete(r.Context(), id); err != nil {
		h.handleZeladorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleZeladorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, zelador.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, zelador.ErrEmailEmUso):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, zelador.ErrPossuiTarefasPendentes):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
