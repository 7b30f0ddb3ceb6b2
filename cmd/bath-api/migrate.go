package main

import (
	"github.com/spf13/cobra"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/pkg/migrations"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done, err := setup()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}
		defer done()

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		store := store.NewStore(db)
		defer store.Close()

		if err := migrations.MigrateStore(db, cfg.Database.Type, cfg.Service.MigrationFolder); err != nil {
			zap.S().Fatalw("running migrations", "error", err)
		}
		zap.S().Info("Db migrated")

		return nil
	},
}
