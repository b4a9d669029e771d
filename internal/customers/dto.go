package customers

import (
	"github.com/dvthanh/garahub-backend/pkg/db/models"
)

// CreateCustomerInput carries the fields accepted when registering a customer.
type CreateCustomerInput struct {
	Name    string
	Phone   string
	Address *string
	Email   *string
	TaxCode *string
	Notes   *string
}

// UpdateCustomerInput applies partial edits. Nil fields are left untouched.
type UpdateCustomerInput struct {
	Name    *string
	Phone   *string
	Address *string
	Email   *string
	TaxCode *string
	Notes   *string
}

// Filters describe the inputs supported by the customer list.
type Filters struct {
	Query string
}

// CustomerList wraps the paginated customers plus the next page cursor.
type CustomerList struct {
	Customers  []models.Customer `json:"customers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
