package store_test

import (
	"context"

	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func twoComponent(name string, volume float64) model.Module {
	return model.NewModule(correction.Module{
		Name:        name,
		Type:        correction.TwoComponent,
		TotalVolume: volume,
		Chemicals: []correction.Chemical{
			{InternalID: "A", Name: "Component A", Unit: "ml/L", Target: 120},
			{InternalID: "B", Name: "Component B", Unit: "ml/L", Target: 50},
		},
	}, 0)
}

func threeComponent(name string) model.Module {
	return model.NewModule(correction.Module{
		Name:        name,
		Type:        correction.ThreeComponent,
		TotalVolume: 250,
		Chemicals: []correction.Chemical{
			{InternalID: "cond", Name: "Conditioner", Unit: "ml/L", Target: 180},
			{InternalID: "cu", Name: "Cu Etch", Unit: "g/L", Target: 20},
			{InternalID: "h2o2", Name: "H2O2", Unit: "ml/L", Target: 6.5},
		},
	}, 1)
}

var _ = Describe("module store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		gormdb = newTestDB()
		s = store.NewStore(gormdb)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM corrections;")
		gormdb.Exec("DELETE FROM chemicals;")
		gormdb.Exec("DELETE FROM modules;")
	})

	Context("create", func() {
		It("stores the module with its chemicals", func() {
			m, err := s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())
			Expect(m.Chemicals).To(HaveLen(2))

			var count int
			tx := gormdb.Raw("SELECT COUNT(*) FROM chemicals WHERE module_name = ?", "Module 3").Scan(&count)
			Expect(tx.Error).To(BeNil())
			Expect(count).To(Equal(2))
		})

		It("rejects a duplicate name", func() {
			_, err := s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())

			_, err = s.Module().Create(context.TODO(), twoComponent("Module 3", 100))
			Expect(err).To(MatchError(store.ErrDuplicateKey))
		})
	})

	Context("get and list", func() {
		It("returns not found for an unknown module", func() {
			_, err := s.Module().Get(context.TODO(), "missing")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("lists modules in configured order", func() {
			_, err := s.Module().Create(context.TODO(), threeComponent("Module 7"))
			Expect(err).To(BeNil())
			_, err = s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())

			modules, err := s.Module().List(context.TODO(), nil)
			Expect(err).To(BeNil())
			Expect(modules).To(HaveLen(2))
			Expect(modules[0].Name).To(Equal("Module 3"))
			Expect(modules[1].ToDomain().Chemicals[2].InternalID).To(Equal("h2o2"))
		})

		It("filters by type", func() {
			_, err := s.Module().Create(context.TODO(), threeComponent("Module 7"))
			Expect(err).To(BeNil())
			_, err = s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())

			modules, err := s.Module().List(context.TODO(), store.NewModuleQueryFilter().ByType(string(correction.ThreeComponent)))
			Expect(err).To(BeNil())
			Expect(modules).To(HaveLen(1))
			Expect(modules[0].Name).To(Equal("Module 7"))
		})
	})

	Context("update", func() {
		It("replaces the volume and the chemicals", func() {
			_, err := s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())

			updated := twoComponent("Module 3", 300)
			updated.Chemicals[0].Target = 130
			m, err := s.Module().Update(context.TODO(), updated)
			Expect(err).To(BeNil())
			Expect(m.TotalVolume).To(Equal(300.0))
			Expect(m.UpdatedAt).NotTo(BeNil())
			Expect(m.ToDomain().Chemicals[0].Target).To(Equal(130.0))
			Expect(m.Chemicals).To(HaveLen(2))
		})

		It("moves a module", func() {
			_, err := s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())
			_, err = s.Module().Create(context.TODO(), threeComponent("Module 7"))
			Expect(err).To(BeNil())

			Expect(s.Module().SetPosition(context.TODO(), "Module 3", 5)).To(Succeed())
			Expect(s.Module().SetPosition(context.TODO(), "missing", 1)).To(MatchError(store.ErrRecordNotFound))

			modules, err := s.Module().List(context.TODO(), nil)
			Expect(err).To(BeNil())
			Expect(modules[0].Name).To(Equal("Module 7"))
		})

		It("fails for an unknown module", func() {
			_, err := s.Module().Update(context.TODO(), twoComponent("missing", 100))
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("delete", func() {
		It("removes the module, its chemicals and its history", func() {
			_, err := s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
			Expect(err).To(BeNil())
			_, err = s.Correction().Create(context.TODO(), model.Correction{
				ModuleName: "Module 3",
				ModuleType: string(correction.TwoComponent),
				Kind:       model.KindCorrection,
				Status:     "PERFECT",
				Input:      "{}",
				Result:     "{}",
			})
			Expect(err).To(BeNil())

			Expect(s.Module().Delete(context.TODO(), "Module 3")).To(Succeed())

			var count int
			tx := gormdb.Raw("SELECT COUNT(*) FROM chemicals;").Scan(&count)
			Expect(tx.Error).To(BeNil())
			Expect(count).To(Equal(0))
			tx = gormdb.Raw("SELECT COUNT(*) FROM corrections;").Scan(&count)
			Expect(tx.Error).To(BeNil())
			Expect(count).To(Equal(0))
		})

		It("returns not found for an unknown module", func() {
			Expect(s.Module().Delete(context.TODO(), "missing")).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("seed", func() {
		It("seeds an empty store only", func() {
			Expect(s.Seed(context.TODO(), model.ModuleList{twoComponent("Module 3", 240)})).To(Succeed())
			Expect(s.Seed(context.TODO(), model.ModuleList{threeComponent("Module 7")})).To(Succeed())

			modules, err := s.Module().List(context.TODO(), nil)
			Expect(err).To(BeNil())
			Expect(modules).To(HaveLen(1))
			Expect(modules[0].Name).To(Equal("Module 3"))
		})
	})

	Context("transactions", func() {
		It("rolls back every change", func() {
			ctx, err := s.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = s.Module().Create(ctx, twoComponent("Module 3", 240))
			Expect(err).To(BeNil())

			_, err = store.Rollback(ctx)
			Expect(err).To(BeNil())

			count, err := s.Module().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(BeZero())
		})
	})
})

var _ = Describe("correction store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		gormdb = newTestDB()
		s = store.NewStore(gormdb)
		_, err := s.Module().Create(context.TODO(), twoComponent("Module 3", 240))
		Expect(err).To(BeNil())
		_, err = s.Module().Create(context.TODO(), threeComponent("Module 7"))
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM corrections;")
	})

	record := func(module, status string, kind model.CorrectionKind) {
		_, err := s.Correction().Create(context.TODO(), model.Correction{
			ModuleName: module,
			ModuleType: string(correction.TwoComponent),
			Kind:       kind,
			Status:     status,
			Input:      `{"current_volume":100}`,
			Result:     `{"status":"` + status + `"}`,
		})
		Expect(err).To(BeNil())
	}

	It("lists the history of one module, newest first", func() {
		record("Module 3", "PERFECT", model.KindCorrection)
		record("Module 3", "OPTIMAL_DILUTION", model.KindCorrection)
		record("Module 7", "REFILL", model.KindRefill)

		history, err := s.Correction().List(context.TODO(),
			store.NewCorrectionQueryFilter().ByModule("Module 3"),
			store.NewCorrectionQueryOptions().WithSortOrder(store.SortByCreatedTimeDesc))
		Expect(err).To(BeNil())
		Expect(history).To(HaveLen(2))
		Expect(history[0].Status).To(Equal("OPTIMAL_DILUTION"))
		Expect(history[0].ID.String()).NotTo(BeEmpty())
	})

	It("limits and filters by kind", func() {
		record("Module 3", "PERFECT", model.KindCorrection)
		record("Module 3", "PERFECT", model.KindCorrection)
		record("Module 3", "REFILL", model.KindRefill)

		history, err := s.Correction().List(context.TODO(),
			store.NewCorrectionQueryFilter().ByModule("Module 3").ByKind(string(model.KindCorrection)),
			store.NewCorrectionQueryOptions().WithLimit(1))
		Expect(err).To(BeNil())
		Expect(history).To(HaveLen(1))
		Expect(history[0].Kind).To(Equal(model.KindCorrection))
	})

	It("rejects history for an unknown module", func() {
		_, err := s.Correction().Create(context.TODO(), model.Correction{
			ModuleName: "missing",
			ModuleType: string(correction.TwoComponent),
			Kind:       model.KindCorrection,
			Status:     "PERFECT",
			Input:      "{}",
			Result:     "{}",
		})
		Expect(err).NotTo(BeNil())
	})

	It("reports statistics", func() {
		record("Module 3", "PERFECT", model.KindCorrection)
		record("Module 3", "PERFECT", model.KindCorrection)

		stats, err := s.Statistics(context.TODO())
		Expect(err).To(BeNil())
		Expect(stats.ModulesByType[string(correction.TwoComponent)]).To(Equal(1))
		Expect(stats.ModulesByType[string(correction.ThreeComponent)]).To(Equal(1))
		Expect(stats.CorrectionsByStatus["PERFECT"]).To(Equal(2))
	})
})
