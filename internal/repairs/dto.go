package repairs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"

	"github.com/dvthanh/garahub-backend/internal/inventory"
	"github.com/dvthanh/garahub-backend/internal/lineitems"
)

// CreateRepairInput carries the fields accepted when opening a repair order
// directly, without a source quotation.
type CreateRepairInput struct {
	CustomerID      uuid.UUID
	VehicleID       uuid.UUID
	Odometer        int64
	DateExpected    *time.Time
	TaxPercent      decimal.Decimal
	CustomerRequest *string
	TechnicianNotes *string
	Lines           []lineitems.Input
}

// UpdateRepairInput applies partial edits while the order has not yet been
// reconciled. A non-nil Lines replaces the whole line set.
type UpdateRepairInput struct {
	Odometer        *int64
	DateExpected    *time.Time
	TaxPercent      *decimal.Decimal
	CustomerRequest *string
	TechnicianNotes *string
	Lines           *[]lineitems.Input
}

// Filters describe the inputs supported by the repair order list.
type Filters struct {
	CustomerID *uuid.UUID
	VehicleID  *uuid.UUID
	Status     *enums.RepairStatus
	Query      string
}

// RepairList wraps the paginated repair orders plus the next page cursor.
type RepairList struct {
	Repairs    []models.RepairOrder `json:"repairs"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// StatusChangeOptions tunes a lifecycle transition. RequireStock turns
// shortfalls on the completion step from a warning into a refusal; the
// default keeps them advisory.
type StatusChangeOptions struct {
	RequireStock bool
}

// StatusChangeResult carries the updated order together with any stock
// shortfalls hit during reconciliation. Shortfalls are advisory; the
// transition itself has already been committed.
type StatusChangeResult struct {
	Repair     *models.RepairOrder   `json:"repair"`
	Shortfalls []inventory.Shortfall `json:"shortfalls,omitempty"`
}
