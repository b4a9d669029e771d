package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// LineItem is a priced, quantity-bearing reference to a part or service
// inside a quotation, repair order, or invoice. Name and unit price are
// value-copied at add time; later catalog or price changes never reprice an
// existing document.
type LineItem struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	DocumentKind   enums.DocumentKind `gorm:"column:document_kind;not null;index:idx_line_items_document" json:"document_kind"`
	DocumentID     uuid.UUID          `gorm:"column:document_id;type:uuid;not null;index:idx_line_items_document" json:"document_id"`
	Position       int                `gorm:"column:position;not null" json:"position"`
	ItemType       enums.LineItemType `gorm:"column:item_type;not null" json:"item_type"`
	ItemID         uuid.UUID          `gorm:"column:item_id;type:uuid;not null;index" json:"item_id"`
	Name           string             `gorm:"column:name;not null" json:"name"`
	Unit           string             `gorm:"column:unit;not null" json:"unit"`
	Qty            int64              `gorm:"column:qty;not null" json:"qty"`
	UnitPriceCents int64              `gorm:"column:unit_price_cents;not null" json:"unit_price_cents"`
	TotalCents     int64              `gorm:"column:total_cents;not null" json:"total_cents"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
