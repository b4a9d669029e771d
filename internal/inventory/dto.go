package inventory

import (
	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// CreateItemInput carries the fields accepted when adding an inventory item.
type CreateItemInput struct {
	Name              string
	CategoryID        uuid.UUID
	Unit              string
	InitialQuantity   int64
	CostPriceCents    int64
	SellingPriceCents int64
	MinQuantity       *int64
}

// UpdateItemInput applies partial edits. Quantity is deliberately absent;
// stock only moves through adjustments and reconciliation.
type UpdateItemInput struct {
	Name              *string
	CategoryID        *uuid.UUID
	Unit              *string
	CostPriceCents    *int64
	SellingPriceCents *int64
	MinQuantity       *int64
}

// AdjustStockInput describes a manual stock correction or a restock.
type AdjustStockInput struct {
	ItemID uuid.UUID
	Delta  int64
	Type   enums.StockMovementType
	Notes  *string
}

// Demand is one item's required quantity during reconciliation.
type Demand struct {
	ItemID uuid.UUID
	Qty    int64
}

// Shortfall reports a demand that could not be fully met.
type Shortfall struct {
	ItemID    uuid.UUID `json:"item_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Requested int64     `json:"requested"`
	Applied   int64     `json:"applied"`
}

// Filters describe the inputs supported by the item list.
type Filters struct {
	CategoryID   *uuid.UUID
	Query        string
	LowStockOnly bool
}

// ItemList wraps the paginated items plus the next page cursor.
type ItemList struct {
	Items      []models.InventoryItem `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}
