package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a garage client. Vehicles and all documents reference it.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Phone     string    `gorm:"column:phone;not null" json:"phone"`
	Address   *string   `gorm:"column:address" json:"address"`
	Email     *string   `gorm:"column:email" json:"email"`
	TaxCode   *string   `gorm:"column:tax_code" json:"tax_code"`
	Notes     *string   `gorm:"column:notes" json:"notes"`
	Vehicles  []Vehicle `gorm:"foreignKey:CustomerID" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
