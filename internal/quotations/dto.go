package quotations

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"

	"github.com/dvthanh/garahub-backend/internal/lineitems"
)

// CreateQuotationInput carries the fields accepted when drafting a quotation.
type CreateQuotationInput struct {
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	TaxPercent decimal.Decimal
	Notes      *string
	Lines      []lineitems.Input
}

// UpdateQuotationInput applies partial edits while the quotation is still
// editable. A non-nil Lines replaces the whole line set.
type UpdateQuotationInput struct {
	TaxPercent *decimal.Decimal
	Notes      *string
	Lines      *[]lineitems.Input
}

// Filters describe the inputs supported by the quotation list.
type Filters struct {
	CustomerID *uuid.UUID
	VehicleID  *uuid.UUID
	Status     *enums.QuotationStatus
	Query      string
}

// QuotationList wraps the paginated quotations plus the next page cursor.
type QuotationList struct {
	Quotations []models.Quotation `json:"quotations"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
