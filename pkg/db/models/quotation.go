package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// Quotation is an estimate offered to a customer. Once a repair order has
// been derived from it, the quotation is frozen.
type Quotation struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code          string                `gorm:"column:code;not null;uniqueIndex" json:"code"`
	CustomerID    uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	VehicleID     uuid.UUID             `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	Status        enums.QuotationStatus `gorm:"column:status;not null;default:'new'" json:"status"`
	TaxPercent    decimal.Decimal       `gorm:"column:tax_percent;type:decimal(5,2);not null;default:0" json:"tax_percent"`
	SubtotalCents int64                 `gorm:"column:subtotal_cents;not null;default:0" json:"subtotal_cents"`
	TaxCents      int64                 `gorm:"column:tax_cents;not null;default:0" json:"tax_cents"`
	TotalCents    int64                 `gorm:"column:total_cents;not null;default:0" json:"total_cents"`
	Notes         *string               `gorm:"column:notes" json:"notes"`
	Items         []LineItem            `gorm:"-" json:"items,omitempty"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
