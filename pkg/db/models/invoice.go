package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// Invoice bills exactly one repair order. Payment status is derived from
// amount paid versus total on every edit.
type Invoice struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code            string              `gorm:"column:code;not null;uniqueIndex" json:"code"`
	RepairOrderID   uuid.UUID           `gorm:"column:repair_order_id;type:uuid;not null;uniqueIndex:ux_invoices_repair_order" json:"repair_order_id"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	VehicleID       uuid.UUID           `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	Status          enums.InvoiceStatus `gorm:"column:status;not null;default:'unpaid'" json:"status"`
	DiscountPercent decimal.Decimal     `gorm:"column:discount_percent;type:decimal(5,2);not null;default:0" json:"discount_percent"`
	TaxPercent      decimal.Decimal     `gorm:"column:tax_percent;type:decimal(5,2);not null;default:0" json:"tax_percent"`
	SubtotalCents   int64               `gorm:"column:subtotal_cents;not null;default:0" json:"subtotal_cents"`
	DiscountCents   int64               `gorm:"column:discount_cents;not null;default:0" json:"discount_cents"`
	TaxCents        int64               `gorm:"column:tax_cents;not null;default:0" json:"tax_cents"`
	TotalCents      int64               `gorm:"column:total_cents;not null;default:0" json:"total_cents"`
	AmountPaidCents int64               `gorm:"column:amount_paid_cents;not null;default:0" json:"amount_paid_cents"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash'" json:"payment_method"`
	Notes           *string             `gorm:"column:notes" json:"notes"`
	Items           []LineItem          `gorm:"-" json:"items,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
