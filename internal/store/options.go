package store

import (
	"gorm.io/gorm"
)

type SortOrder int

const (
	SortByCreatedTime SortOrder = iota
	SortByCreatedTimeDesc
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type ModuleQueryFilter BaseQuerier

func NewModuleQueryFilter() *ModuleQueryFilter {
	return &ModuleQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *ModuleQueryFilter) ByType(moduleType string) *ModuleQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("type = ?", moduleType)
	})
	return qf
}

func (qf *ModuleQueryFilter) ByNames(names ...string) *ModuleQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name IN ?", names)
	})
	return qf
}

type CorrectionQueryFilter BaseQuerier

func NewCorrectionQueryFilter() *CorrectionQueryFilter {
	return &CorrectionQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *CorrectionQueryFilter) ByModule(name string) *CorrectionQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("module_name = ?", name)
	})
	return qf
}

func (qf *CorrectionQueryFilter) ByKind(kind string) *CorrectionQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("kind = ?", kind)
	})
	return qf
}

type CorrectionQueryOptions BaseQuerier

func NewCorrectionQueryOptions() *CorrectionQueryOptions {
	return &CorrectionQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *CorrectionQueryOptions) WithSortOrder(sort SortOrder) *CorrectionQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByCreatedTime:
			return tx.Order("created_at")
		case SortByCreatedTimeDesc:
			return tx.Order("created_at DESC")
		default:
			return tx
		}
	})
	return o
}

// WithLimit caps the number of rows returned. Non-positive limits are ignored.
func (o *CorrectionQueryOptions) WithLimit(limit int) *CorrectionQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return tx
		}
		return tx.Limit(limit)
	})
	return o
}
