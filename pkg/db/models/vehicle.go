package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle belongs to exactly one customer. LastOdometer is a monotonic
// watermark: writes with a smaller reading are ignored.
type Vehicle struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code         string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	CustomerID   uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	LicensePlate string    `gorm:"column:license_plate;not null;uniqueIndex" json:"license_plate"`
	Brand        string    `gorm:"column:brand;not null" json:"brand"`
	Model        string    `gorm:"column:model;not null" json:"model"`
	VIN          *string   `gorm:"column:vin" json:"vin"`
	Year         *int      `gorm:"column:year" json:"year"`
	Color        *string   `gorm:"column:color" json:"color"`
	LastOdometer int64     `gorm:"column:last_odometer;not null;default:0" json:"last_odometer"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
