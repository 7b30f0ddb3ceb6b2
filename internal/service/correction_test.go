package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/events"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/internal/service/report"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var _ = Describe("correction service", Ordered, func() {
	var (
		s       store.Store
		gormdb  *gorm.DB
		modules *service.ModuleService
		srv     *service.CorrectionService
	)

	BeforeAll(func() {
		gormdb = newTestDB()
		s = store.NewStore(gormdb)
		modules = service.NewModuleService(s)
		srv = service.NewCorrectionService(s, service.WithHistoryLimit(2))
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		_, err := modules.ReplaceAll(context.TODO(), []correction.Module{module3(), module7()})
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		cleanDB(gormdb)
	})

	Context("correct", func() {
		It("dilutes a bath above target and records it", func() {
			result, err := srv.Correct(context.TODO(), "Module 3", correction.Input{
				CurrentVolume: 120,
				Current:       map[string]float64{"A": 130, "B": 58},
			})
			Expect(err).To(BeNil())
			Expect(result.Status).To(Equal(correction.StatusOptimalDilution))
			Expect(result.AddWater).To(BeNumerically("~", 11.36, 0.01))

			history, err := srv.History(context.TODO(), "Module 3", "", 0)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Kind).To(Equal(model.KindCorrection))
			Expect(history[0].Status).To(Equal(string(correction.StatusOptimalDilution)))
			Expect(history[0].Input).To(ContainSubstring("130"))
		})

		It("rejects invalid measurements", func() {
			_, err := srv.Correct(context.TODO(), "Module 3", correction.Input{
				CurrentVolume: 300,
				Current:       map[string]float64{"A": 130, "B": 58},
			})
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))

			_, err = srv.Correct(context.TODO(), "Module 3", correction.Input{
				CurrentVolume: 100,
				Current:       map[string]float64{"A": 130},
			})
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})

		It("returns not found for an unknown module", func() {
			_, err := srv.Correct(context.TODO(), "Module 9", correction.Input{})
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})

	Context("simulate and refill", func() {
		It("simulates an addition", func() {
			result, err := srv.Simulate(context.TODO(), "Module 3", correction.SimulationInput{
				CurrentVolume: 100,
				Current:       map[string]float64{"A": 100, "B": 40},
				Water:         100,
			})
			Expect(err).To(BeNil())
			Expect(result.NewVolume).To(BeNumerically("~", 200, 1e-9))
			Expect(result.Chemicals[0].Final).To(BeNumerically("~", 50, 1e-9))

			history, err := srv.History(context.TODO(), "Module 3", model.KindSimulation, 0)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Status).To(Equal("SIMULATED"))
		})

		It("computes a refill recipe", func() {
			result, err := srv.Refill(context.TODO(), "Module 7", correction.Input{
				CurrentVolume: 0,
				Current:       map[string]float64{"cond": 0, "cu": 0, "h2o2": 0},
			})
			Expect(err).To(BeNil())
			Expect(result.Status).To(Equal(correction.StatusRefill))
			Expect(result.FinalVolume).To(BeNumerically("~", 250, 1e-6))
		})
	})

	Context("history", func() {
		It("caps the history at the configured limit", func() {
			for i := 0; i < 3; i++ {
				_, err := srv.Correct(context.TODO(), "Module 3", correction.Input{
					CurrentVolume: 120,
					Current:       map[string]float64{"A": 120, "B": 50},
				})
				Expect(err).To(BeNil())
			}

			history, err := srv.History(context.TODO(), "Module 3", "", 10)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(2))
		})

		It("exports the history as a workbook", func() {
			_, err := srv.Correct(context.TODO(), "Module 3", correction.Input{
				CurrentVolume: 120,
				Current:       map[string]float64{"A": 130, "B": 58},
			})
			Expect(err).To(BeNil())

			content, err := srv.ExportHistory(context.TODO(), "Module 3")
			Expect(err).To(BeNil())

			f, err := excelize.OpenReader(bytes.NewReader(content))
			Expect(err).To(BeNil())
			defer f.Close()

			rows, err := f.GetRows(report.HistorySheet)
			Expect(err).To(BeNil())
			Expect(rows).To(HaveLen(2))
			Expect(rows[1][2]).To(Equal(string(correction.StatusOptimalDilution)))
			Expect(rows[1][3]).To(Equal("120"))
			Expect(rows[1][4]).To(Equal("11.36"))
		})
	})
})

type recordingEvents struct {
	kinds  []string
	bodies [][]byte
}

func (r *recordingEvents) Write(_ context.Context, kind string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	r.kinds = append(r.kinds, kind)
	r.bodies = append(r.bodies, data)
	return nil
}

var _ = Describe("correction events", Ordered, func() {
	var (
		s        store.Store
		gormdb   *gorm.DB
		recorded *recordingEvents
		srv      *service.CorrectionService
	)

	BeforeAll(func() {
		gormdb = newTestDB()
		s = store.NewStore(gormdb)
		_, err := service.NewModuleService(s).ReplaceAll(context.TODO(), []correction.Module{module3(), module7()})
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		recorded = &recordingEvents{}
		srv = service.NewCorrectionService(s, service.WithEventWriter(recorded))
	})

	It("publishes every recorded calculation", func() {
		_, err := srv.Correct(context.TODO(), "Module 3", correction.Input{
			CurrentVolume: 120,
			Current:       map[string]float64{"A": 130, "B": 58},
		})
		Expect(err).To(BeNil())
		_, err = srv.Refill(context.TODO(), "Module 7", correction.Input{
			CurrentVolume: 100,
			Current:       map[string]float64{"cond": 180, "cu": 20, "h2o2": 6.5},
		})
		Expect(err).To(BeNil())

		Expect(recorded.kinds).To(Equal([]string{events.CorrectionMessageKind, events.RefillMessageKind}))

		var event service.CalculationEvent
		Expect(json.Unmarshal(recorded.bodies[0], &event)).To(Succeed())
		Expect(event.Module).To(Equal("Module 3"))
		Expect(event.Kind).To(Equal(string(model.KindCorrection)))
		Expect(event.Status).To(Equal(string(correction.StatusOptimalDilution)))
		Expect(string(event.Input)).To(ContainSubstring(`"current_volume":120`))
	})

	It("does not publish failed calculations", func() {
		_, err := srv.Correct(context.TODO(), "Module 9", correction.Input{})
		Expect(err).NotTo(BeNil())
		Expect(recorded.kinds).To(BeEmpty())
	})
})
