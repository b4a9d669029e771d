package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*CustomerList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountVehicles(ctx context.Context, customerID uuid.UUID) (int64, error)
	CountDocuments(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*CustomerList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR code LIKE ?", like, like, like)
	}

	var rows []models.Customer
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &CustomerList{Customers: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Customers = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{}).Error
}

func (r *repository) CountVehicles(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountDocuments(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var total int64
	for _, model := range []any{&models.Quotation{}, &models.RepairOrder{}, &models.Invoice{}} {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(model).
			Where("customer_id = ?", customerID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}
