package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// RepairOrder is the working document of a job. Entering completed triggers
// the one-time stock reconciliation; the gate is the previously stored
// status, never the incoming one.
type RepairOrder struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code            string             `gorm:"column:code;not null;uniqueIndex" json:"code"`
	CustomerID      uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	VehicleID       uuid.UUID          `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	QuotationID     *uuid.UUID         `gorm:"column:quotation_id;type:uuid;index" json:"quotation_id"`
	Status          enums.RepairStatus `gorm:"column:status;not null;default:'new'" json:"status"`
	DateExpected    *time.Time         `gorm:"column:date_expected" json:"date_expected"`
	Odometer        int64              `gorm:"column:odometer;not null;default:0" json:"odometer"`
	TaxPercent      decimal.Decimal    `gorm:"column:tax_percent;type:decimal(5,2);not null;default:0" json:"tax_percent"`
	SubtotalCents   int64              `gorm:"column:subtotal_cents;not null;default:0" json:"subtotal_cents"`
	TaxCents        int64              `gorm:"column:tax_cents;not null;default:0" json:"tax_cents"`
	TotalCents      int64              `gorm:"column:total_cents;not null;default:0" json:"total_cents"`
	CustomerRequest *string            `gorm:"column:customer_request" json:"customer_request"`
	TechnicianNotes *string            `gorm:"column:technician_notes" json:"technician_notes"`
	CompletedAt     *time.Time         `gorm:"column:completed_at" json:"completed_at"`
	DeliveredAt     *time.Time         `gorm:"column:delivered_at" json:"delivered_at"`
	CancelledAt     *time.Time         `gorm:"column:cancelled_at" json:"cancelled_at"`
	Items           []LineItem         `gorm:"-" json:"items,omitempty"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
