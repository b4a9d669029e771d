package repairs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for repair orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, repair *models.RepairOrder) (*models.RepairOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*RepairList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error)
	VehicleByID(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
	QuotationByID(ctx context.Context, quotationID uuid.UUID) (*models.Quotation, error)
	ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error)
	HasInvoice(ctx context.Context, repairID uuid.UUID) (bool, error)
	ConsumptionMovements(ctx context.Context, repairID uuid.UUID) ([]models.StockMovement, error)
	AdvanceOdometer(ctx context.Context, vehicleID uuid.UUID, reading int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repair order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, repair *models.RepairOrder) (*models.RepairOrder, error) {
	if err := r.db.WithContext(ctx).Create(repair).Error; err != nil {
		return nil, err
	}
	return repair, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error) {
	var repair models.RepairOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&repair).Error
	if err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*RepairList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.RepairOrder{})
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

	var rows []models.RepairOrder
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &RepairList{Repairs: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Repairs = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RepairOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RepairOrder{}).Error
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

func (r *repository) QuotationByID(ctx context.Context, quotationID uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).Where("id = ?", quotationID).First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *repository) ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RepairOrder{}).
		Where("quotation_id = ?", quotationID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasInvoice(ctx context.Context, repairID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("repair_order_id = ?", repairID).
		Count(&count).Error
	return count > 0, err
}

// ConsumptionMovements returns the ledger entries written when this order was
// reconciled. Restoring stock on cancellation replays their applied
// quantities, not the requested ones.
func (r *repository) ConsumptionMovements(ctx context.Context, repairID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_kind = ? AND reference_id = ? AND type = ?",
			enums.DocumentKindRepairOrder, repairID, enums.StockMovementRepairConsumption).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// AdvanceOdometer moves the vehicle watermark forward only.
func (r *repository) AdvanceOdometer(ctx context.Context, vehicleID uuid.UUID, reading int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ? AND last_odometer < ?", vehicleID, reading).
		Update("last_odometer", reading).Error
}
