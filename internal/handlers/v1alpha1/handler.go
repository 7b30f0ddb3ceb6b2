package v1alpha1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/handlers/validator"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/pkg/requestid"
)

type ServiceHandler struct {
	moduleSrv     *service.ModuleService
	correctionSrv *service.CorrectionService
	validator     *validator.Validator
}

func NewServiceHandler(moduleService *service.ModuleService, correctionService *service.CorrectionService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewModuleValidationRules()...)

	return &ServiceHandler{
		moduleSrv:     moduleService,
		correctionSrv: correctionService,
		validator:     v,
	}
}

// Routes mounts the API on r.
func (h *ServiceHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/info", h.GetInfo)
		r.Get("/module-types", h.ListModuleTypes)

		r.Get("/setup", h.GetSetup)
		r.Put("/setup", h.ReplaceSetup)

		r.Route("/modules", func(r chi.Router) {
			r.Get("/", h.ListModules)
			r.Post("/", h.CreateModule)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", h.GetModule)
				r.Put("/", h.UpdateModule)
				r.Delete("/", h.DeleteModule)

				r.Post("/correction", h.Correct)
				r.Post("/simulation", h.Simulate)
				r.Post("/refill", h.Refill)
				r.Get("/history", h.ListHistory)
				r.Get("/history/export", h.ExportHistory)
			})
		})
	})
}

// decode reads a JSON body into form and validates it. On failure the 400 response is already
// written and false is returned.
func (h *ServiceHandler) decode(w http.ResponseWriter, r *http.Request, form any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		writeError(w, r, http.StatusBadRequest, errors.New("empty body"))
		return false
	}
	if err := render.DecodeJSON(r.Body, form); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	if err := h.validator.Struct(form); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	respond(w, r, status, v1alpha1.Error{
		Message:   err.Error(),
		RequestId: requestid.FromContext(r.Context()),
	})
}

// writeServiceError maps service errors onto HTTP statuses. Unknown errors are not exposed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch err.(type) {
	case *service.ErrInvalidRequest:
		writeError(w, r, http.StatusBadRequest, err)
	case *service.ErrResourceNotFound:
		writeError(w, r, http.StatusNotFound, err)
	case *service.ErrResourceExists, *service.ErrSetupRequired:
		writeError(w, r, http.StatusConflict, err)
	default:
		writeError(w, r, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
