package service_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/modulefile"
	"github.com/tankops/bath-planner/internal/service"
	"github.com/tankops/bath-planner/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("module service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		path   string
		srv    *service.ModuleService
	)

	BeforeAll(func() {
		gormdb = newTestDB()
		s = store.NewStore(gormdb)
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "modules.json")
		srv = service.NewModuleService(s, service.WithModulesFile(path))
	})

	AfterEach(func() {
		cleanDB(gormdb)
	})

	Context("crud", func() {
		It("creates a module and writes the modules file", func() {
			m, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())
			Expect(m.Name).To(Equal("Module 3"))

			onDisk, err := modulefile.Load(path)
			Expect(err).To(BeNil())
			Expect(onDisk).To(Equal([]correction.Module{module3()}))
		})

		It("rejects an invalid module", func() {
			invalid := module3()
			invalid.Chemicals = invalid.Chemicals[:1]

			_, err := srv.Create(context.TODO(), invalid)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})

		It("rejects a duplicate module", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())

			_, err = srv.Create(context.TODO(), module3())
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceExists{}))
		})

		It("asks for setup when nothing is configured", func() {
			_, err := srv.Get(context.TODO(), "Module 3")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrSetupRequired{}))
		})

		It("returns not found for an unknown module", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())

			_, err = srv.Get(context.TODO(), "Module 9")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})

		It("updates a module", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())

			updated := module3()
			updated.Name = ""
			updated.TotalVolume = 300
			m, err := srv.Update(context.TODO(), "Module 3", updated)
			Expect(err).To(BeNil())
			Expect(m.TotalVolume).To(Equal(300.0))
		})

		It("refuses to rename a module", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())

			renamed := module3()
			renamed.Name = "Module 4"
			_, err = srv.Update(context.TODO(), "Module 3", renamed)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))
		})

		It("deletes a module", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())

			Expect(srv.Delete(context.TODO(), "Module 3")).To(Succeed())
			err = srv.Delete(context.TODO(), "Module 3")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})

	Context("setup", func() {
		It("reports an empty configuration", func() {
			status, err := srv.Setup(context.TODO())
			Expect(err).To(BeNil())
			Expect(status.Configured).To(BeFalse())
			Expect(status.Problems).NotTo(BeEmpty())
			Expect(status.Template).To(Equal(modulefile.Defaults()))
			Expect(status.ModuleTypes).To(HaveKey(correction.ThreeComponent))
		})

		It("replaces the whole configuration in order", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())
			old := module3()
			old.Name = "Old"
			_, err = srv.Create(context.TODO(), old)
			Expect(err).To(BeNil())

			changed := module3()
			changed.TotalVolume = 200
			modules, err := srv.ReplaceAll(context.TODO(), []correction.Module{module7(), changed})
			Expect(err).To(BeNil())
			Expect(modules).To(HaveLen(2))
			Expect(modules[0].Name).To(Equal("Module 7"))
			Expect(modules[1].TotalVolume).To(Equal(200.0))

			status, err := srv.Setup(context.TODO())
			Expect(err).To(BeNil())
			Expect(status.Configured).To(BeTrue())

			onDisk, err := modulefile.Load(path)
			Expect(err).To(BeNil())
			Expect(onDisk).To(HaveLen(2))
		})

		It("rejects duplicate names and keeps the previous configuration", func() {
			_, err := srv.Create(context.TODO(), module3())
			Expect(err).To(BeNil())

			_, err = srv.ReplaceAll(context.TODO(), []correction.Module{module7(), module7()})
			Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidRequest{}))

			modules, err := srv.List(context.TODO())
			Expect(err).To(BeNil())
			Expect(modules).To(HaveLen(1))
		})
	})

	Context("import", func() {
		It("imports the modules file without rewriting it", func() {
			Expect(modulefile.Save(path, modulefile.Defaults())).To(Succeed())
			before, err := os.Stat(path)
			Expect(err).To(BeNil())

			Expect(srv.ImportFile(context.TODO())).To(Succeed())

			modules, err := srv.List(context.TODO())
			Expect(err).To(BeNil())
			Expect(modules).To(Equal(modulefile.Defaults()))

			after, err := os.Stat(path)
			Expect(err).To(BeNil())
			Expect(after.ModTime()).To(Equal(before.ModTime()))
		})

		It("ignores a missing modules file", func() {
			Expect(srv.ImportFile(context.TODO())).To(Succeed())

			modules, err := srv.List(context.TODO())
			Expect(err).To(BeNil())
			Expect(modules).To(BeEmpty())
		})
	})
})
