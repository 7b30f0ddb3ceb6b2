package v1alpha1

import (
	"net/http"

	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/setup)
func (h *ServiceHandler) GetSetup(w http.ResponseWriter, r *http.Request) {
	status, err := h.moduleSrv.Setup(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.SetupStatusToApi(status))
}

// (PUT /api/v1/setup)
func (h *ServiceHandler) ReplaceSetup(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.SetupUpdate
	if !h.decode(w, r, &form) {
		return
	}

	if _, err := h.moduleSrv.ReplaceAll(r.Context(), mappers.ModuleListFormApi(form.Modules)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	status, err := h.moduleSrv.Setup(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.SetupStatusToApi(status))
}
