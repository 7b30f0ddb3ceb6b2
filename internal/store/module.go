package store

import (
	"context"
	"errors"
	"time"

	"github.com/tankops/bath-planner/internal/store/model"
	"gorm.io/gorm"
)

type Module interface {
	List(ctx context.Context, filter *ModuleQueryFilter) (model.ModuleList, error)
	Get(ctx context.Context, name string) (*model.Module, error)
	Create(ctx context.Context, module model.Module) (*model.Module, error)
	Update(ctx context.Context, module model.Module) (*model.Module, error)
	Delete(ctx context.Context, name string) error
	SetPosition(ctx context.Context, name string, position int) error
	Count(ctx context.Context) (int64, error)
}

type ModuleStore struct {
	db *gorm.DB
}

// Make sure we conform to Module interface
var _ Module = (*ModuleStore)(nil)

func NewModuleStore(db *gorm.DB) Module {
	return &ModuleStore{db: db}
}

func (m *ModuleStore) List(ctx context.Context, filter *ModuleQueryFilter) (model.ModuleList, error) {
	var modules model.ModuleList
	tx := m.getDB(ctx).Model(&modules).Order("position").Order("name").Preload("Chemicals")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (m *ModuleStore) Get(ctx context.Context, name string) (*model.Module, error) {
	var module model.Module
	result := m.getDB(ctx).Preload("Chemicals").First(&module, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &module, nil
}

// Create stores the module together with its chemicals.
func (m *ModuleStore) Create(ctx context.Context, module model.Module) (*model.Module, error) {
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now()
	}
	if err := m.getDB(ctx).Create(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return m.Get(ctx, module.Name)
}

// Update replaces the module definition and its chemicals. The position is left unchanged.
func (m *ModuleStore) Update(ctx context.Context, module model.Module) (*model.Module, error) {
	db := m.getDB(ctx)

	var existing model.Module
	if err := db.First(&existing, "name = ?", module.Name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := db.Model(&model.Module{}).Where("name = ?", module.Name).Updates(map[string]any{
		"type":         module.Type,
		"total_volume": module.TotalVolume,
		"updated_at":   &now,
	}).Error; err != nil {
		return nil, err
	}

	if err := db.Where("module_name = ?", module.Name).Delete(&model.Chemical{}).Error; err != nil {
		return nil, err
	}
	for i := range module.Chemicals {
		module.Chemicals[i].ModuleName = module.Name
	}
	if len(module.Chemicals) > 0 {
		if err := db.Create(&module.Chemicals).Error; err != nil {
			return nil, err
		}
	}

	return m.Get(ctx, module.Name)
}

// Delete removes the module, its chemicals and its history.
func (m *ModuleStore) Delete(ctx context.Context, name string) error {
	db := m.getDB(ctx)
	if err := db.Where("module_name = ?", name).Delete(&model.Correction{}).Error; err != nil {
		return err
	}
	if err := db.Where("module_name = ?", name).Delete(&model.Chemical{}).Error; err != nil {
		return err
	}
	result := db.Where("name = ?", name).Delete(&model.Module{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetPosition moves the module to position in the configured order.
func (m *ModuleStore) SetPosition(ctx context.Context, name string, position int) error {
	result := m.getDB(ctx).Model(&model.Module{}).Where("name = ?", name).Update("position", position)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (m *ModuleStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := m.getDB(ctx).Model(&model.Module{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (m *ModuleStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return m.db.WithContext(ctx)
}
