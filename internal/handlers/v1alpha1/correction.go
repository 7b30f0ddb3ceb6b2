package v1alpha1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/handlers/v1alpha1/mappers"
	"github.com/tankops/bath-planner/internal/store/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// (POST /api/v1/modules/{name}/correction)
func (h *ServiceHandler) Correct(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.CorrectionRequest
	if !h.decode(w, r, &form) {
		return
	}

	result, err := h.correctionSrv.Correct(r.Context(), chi.URLParam(r, "name"), mappers.CorrectionFormApi(form))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.CorrectionResultToApi(result))
}

// (POST /api/v1/modules/{name}/simulation)
func (h *ServiceHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.SimulationRequest
	if !h.decode(w, r, &form) {
		return
	}

	result, err := h.correctionSrv.Simulate(r.Context(), chi.URLParam(r, "name"), mappers.SimulationFormApi(form))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.SimulationResultToApi(result))
}

// (POST /api/v1/modules/{name}/refill)
func (h *ServiceHandler) Refill(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.RefillRequest
	if !h.decode(w, r, &form) {
		return
	}

	result, err := h.correctionSrv.Refill(r.Context(), chi.URLParam(r, "name"), mappers.RefillFormApi(form))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.RefillResultToApi(result))
}

// (GET /api/v1/modules/{name}/history)
func (h *ServiceHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	kind := model.CorrectionKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", model.KindCorrection, model.KindSimulation, model.KindRefill:
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid kind %q", kind))
		return
	}

	history, err := h.correctionSrv.History(r.Context(), chi.URLParam(r, "name"), kind, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.HistoryToApi(history))
}

// (GET /api/v1/modules/{name}/history/export)
func (h *ServiceHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	content, err := h.correctionSrv.ExportHistory(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"-history.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
