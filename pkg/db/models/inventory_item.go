package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks physical stock. Quantity never goes below zero; the
// stock ledger records the requested versus applied delta when a decrement
// is clamped.
type InventoryItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SKU               string    `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name              string    `gorm:"column:name;not null" json:"name"`
	CategoryID        uuid.UUID `gorm:"column:category_id;type:uuid;not null;index" json:"category_id"`
	Unit              string    `gorm:"column:unit;not null" json:"unit"`
	Quantity          int64     `gorm:"column:quantity;not null;default:0" json:"quantity"`
	CostPriceCents    int64     `gorm:"column:cost_price_cents;not null;default:0" json:"cost_price_cents"`
	SellingPriceCents int64     `gorm:"column:selling_price_cents;not null;default:0" json:"selling_price_cents"`
	MinQuantity       *int64    `gorm:"column:min_quantity" json:"min_quantity"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
