package store

import (
	"context"

	"github.com/tankops/bath-planner/internal/store/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Module() Module
	Correction() Correction
	Seed(ctx context.Context, modules model.ModuleList) error
	Statistics(ctx context.Context) (model.Statistics, error)
	Close() error
}

type DataStore struct {
	db         *gorm.DB
	module     Module
	correction Correction
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:         db,
		module:     NewModuleStore(db),
		correction: NewCorrectionStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Module() Module {
	return s.module
}

func (s *DataStore) Correction() Correction {
	return s.correction
}

// Seed stores modules when no module is configured yet. An existing configuration is never touched.
func (s *DataStore) Seed(ctx context.Context, modules model.ModuleList) error {
	ctx, err := s.NewTransactionContext(ctx)
	if err != nil {
		return err
	}

	count, err := s.module.Count(ctx)
	if err != nil {
		_, _ = Rollback(ctx)
		return err
	}
	if count > 0 {
		_, err = Rollback(ctx)
		return err
	}

	for _, m := range modules {
		if _, err := s.module.Create(ctx, m); err != nil {
			_, _ = Rollback(ctx)
			return err
		}
	}

	if _, err := Commit(ctx); err != nil {
		return err
	}
	zap.S().Named("store").Infow("seeded modules", "count", len(modules))
	return nil
}

func (s *DataStore) Statistics(ctx context.Context) (model.Statistics, error) {
	stats := model.Statistics{
		ModulesByType:       make(map[string]int),
		CorrectionsByStatus: make(map[string]int),
	}

	type row struct {
		Label string
		Total int
	}

	var modules []row
	if err := s.db.WithContext(ctx).Model(&model.Module{}).Select("type AS label, COUNT(*) AS total").Group("type").Scan(&modules).Error; err != nil {
		return stats, err
	}
	for _, r := range modules {
		stats.ModulesByType[r.Label] = r.Total
	}

	var corrections []row
	if err := s.db.WithContext(ctx).Model(&model.Correction{}).Select("status AS label, COUNT(*) AS total").Group("status").Scan(&corrections).Error; err != nil {
		return stats, err
	}
	for _, r := range corrections {
		stats.CorrectionsByStatus[r.Label] = r.Total
	}

	return stats, nil
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
