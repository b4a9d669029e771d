package enums

import "fmt"

// InvoiceStatus is derived from amount paid versus total; it is recomputed on
// every invoice edit rather than transitioned explicitly.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusUnpaid,
	InvoiceStatusPartial,
	InvoiceStatusPaid,
}

// String implements fmt.Stringer.
func (i InvoiceStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (i InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// InvoiceStatusFor derives the payment status from the paid amount and total.
func InvoiceStatusFor(amountPaidCents, totalCents int64) InvoiceStatus {
	switch {
	case amountPaidCents >= totalCents:
		return InvoiceStatusPaid
	case amountPaidCents > 0:
		return InvoiceStatusPartial
	default:
		return InvoiceStatusUnpaid
	}
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
