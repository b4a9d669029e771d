package enums

import "fmt"

// RepairStatus tracks the lifecycle of a repair order. The workflow moves
// forward only; cancellation is reachable from any non-terminal status.
type RepairStatus string

const (
	RepairStatusNew          RepairStatus = "new"
	RepairStatusInProgress   RepairStatus = "in_progress"
	RepairStatusWaitingParts RepairStatus = "waiting_parts"
	RepairStatusCompleted    RepairStatus = "completed"
	RepairStatusDelivered    RepairStatus = "delivered"
	RepairStatusCancelled    RepairStatus = "cancelled"
)

var validRepairStatuses = []RepairStatus{
	RepairStatusNew,
	RepairStatusInProgress,
	RepairStatusWaitingParts,
	RepairStatusCompleted,
	RepairStatusDelivered,
	RepairStatusCancelled,
}

// repairStatusRank orders the forward chain. Cancelled sits outside the chain.
var repairStatusRank = map[RepairStatus]int{
	RepairStatusNew:          0,
	RepairStatusInProgress:   1,
	RepairStatusWaitingParts: 2,
	RepairStatusCompleted:    3,
	RepairStatusDelivered:    4,
}

// String implements fmt.Stringer.
func (r RepairStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RepairStatus.
func (r RepairStatus) IsValid() bool {
	for _, candidate := range validRepairStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is modeled from r.
func (r RepairStatus) IsTerminal() bool {
	return r == RepairStatusDelivered || r == RepairStatusCancelled
}

// CanTransitionTo reports whether moving from r to target is legal. Forward
// moves along the chain may skip intermediate working states (a quick job may
// skip waiting_parts), but delivered is only reachable from completed: the
// completion step is what reconciles stock, so handing a vehicle back without
// it would leave the order unreconciled and uninvoiceable. Moving backwards
// is not allowed.
func (r RepairStatus) CanTransitionTo(target RepairStatus) bool {
	if r.IsTerminal() {
		return false
	}
	if target == RepairStatusCancelled {
		return true
	}
	if target == RepairStatusDelivered {
		return r == RepairStatusCompleted
	}
	from, ok := repairStatusRank[r]
	if !ok {
		return false
	}
	to, ok := repairStatusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// ParseRepairStatus converts raw input into a RepairStatus.
func ParseRepairStatus(value string) (RepairStatus, error) {
	for _, candidate := range validRepairStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid repair status %q", value)
}
