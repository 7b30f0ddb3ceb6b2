package migrations_test

import (
	"path/filepath"

	"github.com/tankops/bath-planner/internal/config"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("migrations", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		cfg, err := config.New()
		Expect(err).To(BeNil())
		dbCfg := *cfg.Database
		dbCfg.Type = "sqlite"
		dbCfg.Path = filepath.Join(GinkgoT().TempDir(), "migrations.db")

		db, err := store.InitDB(&config.Config{Database: &dbCfg, Service: cfg.Service})
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
	})

	AfterAll(func() {
		s.Close()
	})

	Context("store migrations", Ordered, func() {
		It("fails to migrate the db -- migration folder does not exist", func() {
			err := migrations.MigrateStore(gormdb, "sqlite", "some folder")
			Expect(err).NotTo(BeNil())
		})

		It("fails for an unknown database type", func() {
			err := migrations.MigrateStore(gormdb, "oracle", "")
			Expect(err).NotTo(BeNil())
		})

		It("successfully migrates the db from the embedded migrations", func() {
			Expect(migrations.MigrateStore(gormdb, "sqlite", "")).To(Succeed())

			tableExists := func(name string) bool {
				var count int
				tx := gormdb.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
				Expect(tx.Error).To(BeNil())
				return count == 1
			}

			for _, table := range []string{"modules", "chemicals", "corrections", "goose_db_version"} {
				Expect(tableExists(table)).To(BeTrue())
			}
		})

		It("is idempotent", func() {
			Expect(migrations.MigrateStore(gormdb, "sqlite", "")).To(Succeed())
		})

		It("migrates from a folder", func() {
			Expect(migrations.MigrateStore(gormdb, "sqlite", "sql")).To(Succeed())
		})
	})
})
