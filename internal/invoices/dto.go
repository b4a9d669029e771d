package invoices

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// DeriveInvoiceInput carries the billing fields chosen when issuing an
// invoice off a completed repair order.
type DeriveInvoiceInput struct {
	DiscountPercent decimal.Decimal
	Notes           *string
}

// UpdateInvoiceInput applies partial edits while the invoice is still unpaid.
type UpdateInvoiceInput struct {
	DiscountPercent *decimal.Decimal
	TaxPercent      *decimal.Decimal
	Notes           *string
}

// RecordPaymentInput registers money received against an invoice.
type RecordPaymentInput struct {
	AmountCents int64
	Method      enums.PaymentMethod
}

// Filters describe the inputs supported by the invoice list.
type Filters struct {
	CustomerID *uuid.UUID
	VehicleID  *uuid.UUID
	Status     *enums.InvoiceStatus
	Query      string
}

// InvoiceList wraps the paginated invoices plus the next page cursor.
type InvoiceList struct {
	Invoices   []models.Invoice `json:"invoices"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// DeriveResult distinguishes a freshly issued invoice from a redirect to one
// that already billed the repair order.
type DeriveResult struct {
	Invoice  *models.Invoice `json:"invoice"`
	Existing bool            `json:"existing"`
}
