package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	FindByRepairOrder(ctx context.Context, repairID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*InvoiceList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	RepairByID(ctx context.Context, repairID uuid.UUID) (*models.RepairOrder, error)
	MarkRepairDelivered(ctx context.Context, repairID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoice repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByRepairOrder(ctx context.Context, repairID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("repair_order_id = ?", repairID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*InvoiceList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Invoice{})
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

	var rows []models.Invoice
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &InvoiceList{Invoices: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Invoices = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{}).Error
}

func (r *repository) RepairByID(ctx context.Context, repairID uuid.UUID) (*models.RepairOrder, error) {
	var repair models.RepairOrder
	err := r.db.WithContext(ctx).Where("id = ?", repairID).First(&repair).Error
	if err != nil {
		return nil, err
	}
	return &repair, nil
}

// MarkRepairDelivered advances the billed repair order to delivered unless it
// already reached a terminal status.
func (r *repository) MarkRepairDelivered(ctx context.Context, repairID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RepairOrder{}).
		Where("id = ? AND status NOT IN ?", repairID, []enums.RepairStatus{enums.RepairStatusDelivered, enums.RepairStatusCancelled}).
		Updates(map[string]any{"status": enums.RepairStatusDelivered, "delivered_at": at}).Error
}
