package quotations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for quotations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quotation *models.Quotation) (*models.Quotation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*QuotationList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error)
	VehicleByID(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
	HasDerivedRepair(ctx context.Context, quotationID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quotation *models.Quotation) (*models.Quotation, error) {
	if err := r.db.WithContext(ctx).Create(quotation).Error; err != nil {
		return nil, err
	}
	return quotation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*QuotationList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Quotation{})
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filters.VehicleID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Query != "" {
		query = query.Where("code LIKE ?", "%"+filters.Query+"%")
	}

	var rows []models.Quotation
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &QuotationList{Quotations: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Quotations = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Quotation{}).Error
}

func (r *repository) CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) VehicleByID(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", vehicleID).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) HasDerivedRepair(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RepairOrder{}).
		Where("quotation_id = ?", quotationID).
		Count(&count).Error
	return count > 0, err
}
