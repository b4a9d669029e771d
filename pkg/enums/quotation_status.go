package enums

import "fmt"

// QuotationStatus tracks the lifecycle of a quotation.
type QuotationStatus string

const (
	QuotationStatusNew      QuotationStatus = "new"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
)

var validQuotationStatuses = []QuotationStatus{
	QuotationStatusNew,
	QuotationStatusSent,
	QuotationStatusAccepted,
	QuotationStatusRejected,
}

// quotationTransitions lists the legal next statuses per current status.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusNew:      {QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected},
	QuotationStatusSent:     {QuotationStatusAccepted, QuotationStatusRejected},
	QuotationStatusAccepted: {QuotationStatusRejected},
	QuotationStatusRejected: {},
}

// String implements fmt.Stringer.
func (q QuotationStatus) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuotationStatus.
func (q QuotationStatus) IsValid() bool {
	for _, candidate := range validQuotationStatuses {
		if candidate == q {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is modeled from q.
func (q QuotationStatus) IsTerminal() bool {
	return q == QuotationStatusRejected
}

// CanTransitionTo reports whether moving from q to target is legal.
func (q QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	for _, candidate := range quotationTransitions[q] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseQuotationStatus converts raw input into a QuotationStatus.
func ParseQuotationStatus(value string) (QuotationStatus, error) {
	for _, candidate := range validQuotationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation status %q", value)
}
