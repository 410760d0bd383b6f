package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zeladoria/aeroporto/internal/tarefa"
	"github.com/zeladoria/aeroporto/internal/template"
)

// ListTemplates devolve templates; aceita ?setorId=, ?priority= e ?category=.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f template.Filtros

	if raw := strings.TrimSpace(q.Get("setorId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "setorId inválido", nil)
			return
		}
		f.SetorID = &id
	}
	if raw := strings.TrimSpace(q.Get("priority")); raw != "" {
		p := tarefa.Prioridade(raw)
		if !p.Valid() {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "prioridade inválida", nil)
			return
		}
		f.Priority = p
	}
	f.Category = strings.TrimSpace(q.Get("category"))

	templates, err := h.templates.List(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar templates", nil)
		return
	}
	WriteJSON(w, http.StatusOK, templates)
}

// GetTemplate devolve um template pelo id.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	t, err := h.templates.GetByID(r.Context(), id)
	if err != nil {
		h.handleTemplateError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// CreateTemplate cadastra um template.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var input template.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	criado, err := h.templates.Create(r.Context(), input)
	if err != nil {
		h.handleTemplateError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, criado)
}

// UpdateTemplate aplica alteração parcial.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input template.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	atualizado, err := h.templates.Update(r.Context(), id, input)
	if err != nil {
		h.handleTemplateError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, atualizado)
}

// DeleteTemplate remove o template.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.templates.Delete(r.Context(), id); err != nil {
		h.handleTemplateError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// InstanciarTemplate gera uma tarefa a partir do template.
func (h *Handler) InstanciarTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	t, err := h.templates.Instantiate(r.Context(), id)
	if err != nil {
		h.handleTemplateError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleTemplateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, template.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, template.ErrSetorNaoEncontrado):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
