package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/internal/repo"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// Repository manages persistence for stock movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.StockMovement, error)
	ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a stock movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	return r.base.DB(ctx).Create(movement).Error
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.base.DB(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.base.DB(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
