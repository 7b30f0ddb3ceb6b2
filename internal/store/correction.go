package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tankops/bath-planner/internal/store/model"
	"gorm.io/gorm"
)

type Correction interface {
	Create(ctx context.Context, correction model.Correction) (*model.Correction, error)
	List(ctx context.Context, filter *CorrectionQueryFilter, opts *CorrectionQueryOptions) (model.CorrectionList, error)
}

type CorrectionStore struct {
	db *gorm.DB
}

// Make sure we conform to Correction interface
var _ Correction = (*CorrectionStore)(nil)

func NewCorrectionStore(db *gorm.DB) Correction {
	return &CorrectionStore{db: db}
}

func (c *CorrectionStore) Create(ctx context.Context, correction model.Correction) (*model.Correction, error) {
	if correction.ID == uuid.Nil {
		correction.ID = uuid.New()
	}
	if correction.CreatedAt.IsZero() {
		correction.CreatedAt = time.Now()
	}
	if err := c.getDB(ctx).Create(&correction).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &correction, nil
}

func (c *CorrectionStore) List(ctx context.Context, filter *CorrectionQueryFilter, opts *CorrectionQueryOptions) (model.CorrectionList, error) {
	var corrections model.CorrectionList
	tx := c.getDB(ctx).Model(&corrections)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Find(&corrections).Error; err != nil {
		return nil, err
	}
	return corrections, nil
}

func (c *CorrectionStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return c.db.WithContext(ctx)
}
