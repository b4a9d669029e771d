package backup

import (
	"time"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// ArchiveVersion identifies the archive layout. Bump it when table shapes
// change incompatibly.
const ArchiveVersion = 1

// Archive is the full JSON snapshot of the business tables. Outbox rows are
// transport state, not business data, and are left out on purpose.
type Archive struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`

	Customers           []models.Customer          `json:"customers"`
	Vehicles            []models.Vehicle           `json:"vehicles"`
	InventoryCategories []models.InventoryCategory `json:"inventory_categories"`
	InventoryItems      []models.InventoryItem     `json:"inventory_items"`
	CatalogServices     []models.CatalogService    `json:"catalog_services"`
	Quotations          []models.Quotation         `json:"quotations"`
	RepairOrders        []models.RepairOrder       `json:"repair_orders"`
	Invoices            []models.Invoice           `json:"invoices"`
	LineItems           []models.LineItem          `json:"line_items"`
	StockMovements      []models.StockMovement     `json:"stock_movements"`
	CodeSequences       []models.CodeSequence      `json:"code_sequences"`
}

// RestoreSummary reports per-table row counts applied by an import.
type RestoreSummary struct {
	RestoredAt time.Time      `json:"restored_at"`
	Counts     map[string]int `json:"counts"`
}
