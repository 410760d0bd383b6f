package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zeladoria/aeroporto/internal/setor"
)

// ListSetores devolve todos os setores.
func (h *Handler) ListSetores(w http.ResponseWriter, r *http.Request) {
	setores, err := h.setores.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar setores", nil)
		return
	}
	WriteJSON(w, http.StatusOK, setores)
}

// GetSetor devolve um setor pelo id.
func (h *Handler) GetSetor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	s, err := h.setores.GetByID(r.Context(), id)
	if err != nil {
		h.handleSetorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s)
}

// CreateSetor cadastra um setor.
func (h *Handler) CreateSetor(w http.ResponseWriter, r *http.Request) {
	var input setor.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	criado, err := h.setores.Create(r.Context(), input)
	if err != nil {
		h.handleSetorError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, criado)
}

// UpdateSetor aplica alteração parcial.
func (h *Handler) UpdateSetor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input setor.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	atualizado, err := h.setores.Update(r.Context(), id, input)
	if err != nil {
		h.handleSetorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, atualizado)
}

// DeleteSetor remove um setor.
func (h *Handler) DeleteSetor(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.setores.Delete(r.Context(), id); err != nil {
		h.handleSetorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleSetorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, setor.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, setor.ErrNomeEmUso):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
