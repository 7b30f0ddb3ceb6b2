package v1alpha1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/tankops/bath-planner/api/v1alpha1"
	handlers "github.com/tankops/bath-planner/internal/handlers/v1alpha1"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/pkg/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func module3() v1alpha1.Module {
	return v1alpha1.Module{
		Name:        "Module 3",
		ModuleType:  "2-Component Corrector",
		TotalVolume: 240,
		Chemicals: []v1alpha1.Chemical{
			{InternalId: "A", Name: "Component A", Unit: "ml/L", Target: 120},
			{InternalId: "B", Name: "Component B", Unit: "ml/L", Target: 50},
		},
	}
}

var _ = Describe("api handlers", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		router chi.Router
	)

	BeforeAll(func() {
		gormdb = newTestDB()
		s = store.NewStore(gormdb)

		h := handlers.NewServiceHandler(service.NewModuleService(s), service.NewCorrectionService(s))
		router = chi.NewRouter()
		router.Use(middleware.RequestID)
		h.Routes(router)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM corrections;")
		gormdb.Exec("DELETE FROM chemicals;")
		gormdb.Exec("DELETE FROM modules;")
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			data, err := json.Marshal(body)
			Expect(err).To(BeNil())
			reader = bytes.NewReader(data)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	modulePath := func(name string, rest string) string {
		return "/api/v1/modules/" + url.PathEscape(name) + rest
	}

	decodeError := func(rr *httptest.ResponseRecorder) v1alpha1.Error {
		var e v1alpha1.Error
		Expect(json.Unmarshal(rr.Body.Bytes(), &e)).To(Succeed())
		return e
	}

	Context("health and catalogue", func() {
		It("reports health", func() {
			rr := do(http.MethodGet, "/health", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(ContainSubstring(`"ok"`))
		})

		It("lists the module types", func() {
			rr := do(http.MethodGet, "/api/v1/module-types", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var types []v1alpha1.ModuleTypeInfo
			Expect(json.Unmarshal(rr.Body.Bytes(), &types)).To(Succeed())
			Expect(types).To(HaveLen(2))
			Expect(types[0].Name).To(Equal("2-Component Corrector"))
			Expect(types[1].Components).To(Equal([]string{"cond", "cu", "h2o2"}))
		})

		It("returns version info", func() {
			rr := do(http.MethodGet, "/api/v1/info", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var info v1alpha1.Info
			Expect(json.Unmarshal(rr.Body.Bytes(), &info)).To(Succeed())
			Expect(info.VersionName).NotTo(BeEmpty())
		})
	})

	Context("modules", func() {
		It("creates and reads a module", func() {
			rr := do(http.MethodPost, "/api/v1/modules", module3())
			Expect(rr.Code).To(Equal(http.StatusCreated))

			rr = do(http.MethodGet, modulePath("Module 3", ""), nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var m v1alpha1.Module
			Expect(json.Unmarshal(rr.Body.Bytes(), &m)).To(Succeed())
			Expect(m).To(Equal(module3()))
		})

		It("rejects an invalid form", func() {
			form := module3()
			form.ModuleType = "unknown"
			rr := do(http.MethodPost, "/api/v1/modules", form)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			e := decodeError(rr)
			Expect(e.Message).To(ContainSubstring("unknown module type"))
			Expect(e.RequestId).NotTo(BeEmpty())
		})

		It("rejects a module with the wrong chemicals", func() {
			form := module3()
			form.Chemicals[1].InternalId = "cu"
			rr := do(http.MethodPost, "/api/v1/modules", form)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects an empty body", func() {
			rr := do(http.MethodPost, "/api/v1/modules", nil)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 409 for a duplicate module", func() {
			Expect(do(http.MethodPost, "/api/v1/modules", module3()).Code).To(Equal(http.StatusCreated))
			Expect(do(http.MethodPost, "/api/v1/modules", module3()).Code).To(Equal(http.StatusConflict))
		})

		It("returns 409 while setup is required", func() {
			rr := do(http.MethodGet, modulePath("Module 3", ""), nil)
			Expect(rr.Code).To(Equal(http.StatusConflict))
			Expect(decodeError(rr).Message).To(ContainSubstring("setup"))
		})

		It("returns 404 for an unknown module", func() {
			Expect(do(http.MethodPost, "/api/v1/modules", module3()).Code).To(Equal(http.StatusCreated))
			Expect(do(http.MethodGet, modulePath("Module 9", ""), nil).Code).To(Equal(http.StatusNotFound))
		})

		It("updates and deletes a module", func() {
			Expect(do(http.MethodPost, "/api/v1/modules", module3()).Code).To(Equal(http.StatusCreated))

			form := module3()
			form.TotalVolume = 300
			rr := do(http.MethodPut, modulePath("Module 3", ""), form)
			Expect(rr.Code).To(Equal(http.StatusOK))

			rr = do(http.MethodGet, "/api/v1/modules", nil)
			var modules v1alpha1.ModuleList
			Expect(json.Unmarshal(rr.Body.Bytes(), &modules)).To(Succeed())
			Expect(modules).To(HaveLen(1))
			Expect(modules[0].TotalVolume).To(Equal(300.0))

			Expect(do(http.MethodDelete, modulePath("Module 3", ""), nil).Code).To(Equal(http.StatusNoContent))
			Expect(do(http.MethodDelete, modulePath("Module 3", ""), nil).Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("setup", func() {
		It("reports and replaces the configuration", func() {
			rr := do(http.MethodGet, "/api/v1/setup", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))

			var status v1alpha1.SetupStatus
			Expect(json.Unmarshal(rr.Body.Bytes(), &status)).To(Succeed())
			Expect(status.Configured).To(BeFalse())
			Expect(status.Template).To(HaveLen(2))

			rr = do(http.MethodPut, "/api/v1/setup", v1alpha1.SetupUpdate{Modules: status.Template})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rr.Body.Bytes(), &status)).To(Succeed())
			Expect(status.Configured).To(BeTrue())
			Expect(status.Modules).To(HaveLen(2))
		})
	})

	Context("calculations", func() {
		BeforeEach(func() {
			Expect(do(http.MethodPost, "/api/v1/modules", module3()).Code).To(Equal(http.StatusCreated))
		})

		It("recommends a dilution", func() {
			rr := do(http.MethodPost, modulePath("Module 3", "/correction"), v1alpha1.CorrectionRequest{
				CurrentVolume: 120,
				Current:       map[string]float64{"A": 130, "B": 58},
			})
			Expect(rr.Code).To(Equal(http.StatusOK))

			var result v1alpha1.CorrectionResult
			Expect(json.Unmarshal(rr.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Status).To(Equal("OPTIMAL_DILUTION"))
			Expect(result.AddWater).To(BeNumerically("~", 11.36, 0.01))
			Expect(result.Chemicals).To(HaveLen(2))
		})

		It("rejects a volume above the capacity", func() {
			rr := do(http.MethodPost, modulePath("Module 3", "/correction"), v1alpha1.CorrectionRequest{
				CurrentVolume: 500,
				Current:       map[string]float64{"A": 130, "B": 58},
			})
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("simulates and refills", func() {
			rr := do(http.MethodPost, modulePath("Module 3", "/simulation"), v1alpha1.SimulationRequest{
				CurrentVolume: 100,
				Current:       map[string]float64{"A": 100, "B": 40},
				Water:         100,
			})
			Expect(rr.Code).To(Equal(http.StatusOK))
			var sim v1alpha1.SimulationResult
			Expect(json.Unmarshal(rr.Body.Bytes(), &sim)).To(Succeed())
			Expect(sim.NewVolume).To(BeNumerically("~", 200, 1e-9))

			rr = do(http.MethodPost, modulePath("Module 3", "/refill"), v1alpha1.RefillRequest{
				CurrentVolume: 120,
				Current:       map[string]float64{"A": 120, "B": 50},
			})
			Expect(rr.Code).To(Equal(http.StatusOK))
			var refill v1alpha1.RefillResult
			Expect(json.Unmarshal(rr.Body.Bytes(), &refill)).To(Succeed())
			Expect(refill.Status).To(Equal("REFILL"))
		})

		It("lists and exports the history", func() {
			do(http.MethodPost, modulePath("Module 3", "/correction"), v1alpha1.CorrectionRequest{
				CurrentVolume: 120,
				Current:       map[string]float64{"A": 130, "B": 58},
			})

			rr := do(http.MethodGet, modulePath("Module 3", "/history?kind=correction&limit=5"), nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			var history v1alpha1.HistoryList
			Expect(json.Unmarshal(rr.Body.Bytes(), &history)).To(Succeed())
			Expect(history).To(HaveLen(1))
			Expect(string(history[0].Input)).To(ContainSubstring(`"current_volume":120`))

			Expect(do(http.MethodGet, modulePath("Module 3", "/history?kind=bogus"), nil).Code).To(Equal(http.StatusBadRequest))

			rr = do(http.MethodGet, modulePath("Module 3", "/history/export"), nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("spreadsheetml"))
			Expect(rr.Body.Len()).To(BeNumerically(">", 0))
		})
	})
})
