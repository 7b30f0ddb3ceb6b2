package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/modules)
func (h *ServiceHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.moduleSrv.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.ModuleListToApi(modules))
}

// (POST /api/v1/modules)
func (h *ServiceHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.Module
	if !h.decode(w, r, &form) {
		return
	}

	module, err := h.moduleSrv.Create(r.Context(), mappers.ModuleFormApi(form))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, mappers.ModuleToApi(*module))
}

// (GET /api/v1/modules/{name})
func (h *ServiceHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	module, err := h.moduleSrv.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.ModuleToApi(*module))
}

// (PUT /api/v1/modules/{name})
func (h *ServiceHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.Module
	if !h.decode(w, r, &form) {
		return
	}

	module, err := h.moduleSrv.Update(r.Context(), chi.URLParam(r, "name"), mappers.ModuleFormApi(form))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, mappers.ModuleToApi(*module))
}

// (DELETE /api/v1/modules/{name})
func (h *ServiceHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	if err := h.moduleSrv.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
