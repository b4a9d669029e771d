package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// StockMovement is one entry of the append-only stock ledger. QtyApplied can
// differ from QtyDelta when a decrement was clamped at zero, which keeps
// over-committed stock visible without letting the count go negative.
type StockMovement struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ItemID        uuid.UUID               `gorm:"column:item_id;type:uuid;not null;index" json:"item_id"`
	Type          enums.StockMovementType `gorm:"column:type;not null" json:"type"`
	QtyDelta      int64                   `gorm:"column:qty_delta;not null" json:"qty_delta"`
	QtyApplied    int64                   `gorm:"column:qty_applied;not null" json:"qty_applied"`
	QtyAfter      int64                   `gorm:"column:qty_after;not null" json:"qty_after"`
	ReferenceKind *enums.DocumentKind     `gorm:"column:reference_kind" json:"reference_kind"`
	ReferenceID   *uuid.UUID              `gorm:"column:reference_id;type:uuid;index" json:"reference_id"`
	Notes         *string                 `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
