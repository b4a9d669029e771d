package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*VehicleList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDocuments(ctx context.Context, vehicleID uuid.UUID) (int64, error)
	CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error)
	AdvanceOdometer(ctx context.Context, id uuid.UUID, reading int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vehicle repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Where("license_plate = ?", plate).First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*VehicleList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("license_plate LIKE ? OR brand LIKE ? OR model LIKE ? OR code LIKE ?", like, like, like, like)
	}

	var rows []models.Vehicle
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &VehicleList{Vehicles: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Vehicles = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Vehicle{}).Error
}

func (r *repository) CountDocuments(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var total int64
	for _, model := range []any{&models.Quotation{}, &models.RepairOrder{}, &models.Invoice{}} {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(model).
			Where("vehicle_id = ?", vehicleID).
			Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (r *repository) CustomerExists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Count(&count).Error
	return count > 0, err
}

// AdvanceOdometer moves the watermark forward only; stale readings are a no-op.
func (r *repository) AdvanceOdometer(ctx context.Context, id uuid.UUID, reading int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ? AND last_odometer < ?", id, reading).
		Update("last_odometer", reading).Error
}
