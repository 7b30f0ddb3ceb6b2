package v1alpha1

import (
	"net/http"

	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/handlers/v1alpha1/mappers"
	"github.com/tankops/bath-planner/pkg/version"
)

// (GET /health)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, v1alpha1.Health{Status: "ok"})
}

// (GET /api/v1/info)
func (h *ServiceHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()

	respond(w, r, http.StatusOK, v1alpha1.Info{
		GitCommit:   versionInfo.GitCommit,
		VersionName: versionInfo.GitVersion,
	})
}

// (GET /api/v1/module-types)
func (h *ServiceHandler) ListModuleTypes(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, mappers.ModuleTypesToApi(correction.ModuleTypes()))
}
