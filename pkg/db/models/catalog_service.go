package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogService is a labor service offered by the shop. It carries no stock.
type CatalogService struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code             string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	PriceCents       int64     `gorm:"column:price_cents;not null;default:0" json:"price_cents"`
	EstimatedMinutes *int      `gorm:"column:estimated_minutes" json:"estimated_minutes"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
