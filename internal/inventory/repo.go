package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for inventory items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*ItemList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountReferences(ctx context.Context, itemID uuid.UUID) (int64, error)
	CategoryByID(ctx context.Context, id uuid.UUID) (*models.InventoryCategory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate reads an item with a row lock so read-modify-write
// quantity updates in concurrent transactions cannot lose each other.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*ItemList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if filters.LowStockOnly {
		query = query.Where("min_quantity IS NOT NULL AND quantity <= min_quantity")
	}

	var rows []models.InventoryItem
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &ItemList{Items: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Items = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int64) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{}).Error
}

func (r *repository) CountReferences(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count, err
}

func (r *repository) CategoryByID(ctx context.Context, id uuid.UUID) (*models.InventoryCategory, error) {
	var category models.InventoryCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}
