package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeladoria/aeroporto/internal/relatorio"
	"github.com/zeladoria/aeroporto/internal/util"
)

func filtrosRelatorio(w http.ResponseWriter, r *http.Request) (relatorio.Filtros, bool) {
	q := r.URL.Query()
	f := relatorio.Filtros{Setor: strings.TrimSpace(q.Get("setor"))}

	if de := strings.TrimSpace(q.Get("de")); de != "" {
		parsed, err := time.Parse("2006-01-02", de)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "data inicial inválida", nil)
			return f, false
		}
		f.DateFrom = &parsed
	}
	if ate := strings.TrimSpace(q.Get("ate")); ate != "" {
		parsed, err := time.Parse("2006-01-02", ate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "data final inválida", nil)
			return f, false
		}
		f.DateTo = &parsed
	}

	return f, true
}

// GerarRelatorio monta o relatório agregado do painel gerencial.
// Aceita ?setor=, ?de= e ?ate= (formato 2006-01-02).
func (h *Handler) GerarRelatorio(w http.ResponseWriter, r *http.Request) {
	f, ok := filtrosRelatorio(w, r)
	if !ok {
		return
	}

	rel, err := h.relatorios.Gerar(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao gerar relatório", nil)
		return
	}
	WriteJSON(w, http.StatusOK, rel)
}

// ExportarRelatorio devolve o mesmo relatório como download JSON.
func (h *Handler) ExportarRelatorio(w http.ResponseWriter, r *http.Request) {
	f, ok := filtrosRelatorio(w, r)
	if !ok {
		return
	}

	rel, err := h.relatorios.Gerar(r.Context(), f)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao gerar relatório", nil)
		return
	}

	nome := fmt.Sprintf("relatorio-%s.json", util.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(rel)
}
