package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// Repository defines persistence operations for categories and labor services.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.InventoryCategory) (*models.InventoryCategory, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.InventoryCategory, error)
	ListCategories(ctx context.Context) ([]models.InventoryCategory, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CountCategoryItems(ctx context.Context, categoryID uuid.UUID) (int64, error)

	CreateService(ctx context.Context, svc *models.CatalogService) (*models.CatalogService, error)
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.CatalogService, error)
	ListServices(ctx context.Context, params pagination.Params, filters ServiceFilters) (*ServiceList, error)
	UpdateService(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	CountServiceReferences(ctx context.Context, serviceID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.InventoryCategory) (*models.InventoryCategory, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.InventoryCategory, error) {
	var category models.InventoryCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.InventoryCategory, error) {
	var categories []models.InventoryCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *repository) UpdateCategory(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.InventoryCategory{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryCategory{}).Error
}

func (r *repository) CountCategoryItems(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateService(ctx context.Context, svc *models.CatalogService) (*models.CatalogService, error) {
	if err := r.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *repository) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.CatalogService, error) {
	var svc models.CatalogService
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) ListServices(ctx context.Context, params pagination.Params, filters ServiceFilters) (*ServiceList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.CatalogService{})
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", like, like)
	}

	var rows []models.CatalogService
	if err := pagination.Apply(query, cursor, pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &ServiceList{Services: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Services = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) UpdateService(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CatalogService{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CatalogService{}).Error
}

func (r *repository) CountServiceReferences(ctx context.Context, serviceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("item_id = ?", serviceID).
		Count(&count).Error
	return count, err
}
