package backup

import (
	"context"

	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// Repository dumps and replaces whole tables for archive export and import.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Dump(ctx context.Context) (*Archive, error)
	ReplaceAll(ctx context.Context, archive *Archive) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a backup repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Dump(ctx context.Context) (*Archive, error) {
	archive := &Archive{Version: ArchiveVersion}
	db := r.db.WithContext(ctx)

	timestamped := []any{
		&archive.Customers,
		&archive.Vehicles,
		&archive.InventoryCategories,
		&archive.InventoryItems,
		&archive.CatalogServices,
		&archive.Quotations,
		&archive.RepairOrders,
		&archive.Invoices,
		&archive.LineItems,
		&archive.StockMovements,
	}
	for _, dest := range timestamped {
		if err := db.Order("created_at ASC").Find(dest).Error; err != nil {
			return nil, err
		}
	}
	if err := db.Order("scope ASC").Find(&archive.CodeSequences).Error; err != nil {
		return nil, err
	}
	return archive, nil
}

// ReplaceAll wipes every business table and loads the archive rows. Deletes
// run child-first and inserts parent-first so foreign keys hold throughout.
func (r *repository) ReplaceAll(ctx context.Context, archive *Archive) error {
	db := r.db.WithContext(ctx)

	deletions := []any{
		&models.StockMovement{},
		&models.LineItem{},
		&models.Invoice{},
		&models.RepairOrder{},
		&models.Quotation{},
		&models.InventoryItem{},
		&models.CatalogService{},
		&models.InventoryCategory{},
		&models.Vehicle{},
		&models.Customer{},
		&models.CodeSequence{},
	}
	for _, model := range deletions {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}

	insertions := []struct {
		rows any
		size int
	}{
		{archive.Customers, len(archive.Customers)},
		{archive.Vehicles, len(archive.Vehicles)},
		{archive.InventoryCategories, len(archive.InventoryCategories)},
		{archive.CatalogServices, len(archive.CatalogServices)},
		{archive.InventoryItems, len(archive.InventoryItems)},
		{archive.Quotations, len(archive.Quotations)},
		{archive.RepairOrders, len(archive.RepairOrders)},
		{archive.Invoices, len(archive.Invoices)},
		{archive.LineItems, len(archive.LineItems)},
		{archive.StockMovements, len(archive.StockMovements)},
		{archive.CodeSequences, len(archive.CodeSequences)},
	}
	for _, step := range insertions {
		if step.size == 0 {
			continue
		}
		if err := db.CreateInBatches(step.rows, 200).Error; err != nil {
			return err
		}
	}
	return nil
}
