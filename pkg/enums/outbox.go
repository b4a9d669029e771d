package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event refers to.
type OutboxAggregateType string

const (
	AggregateCustomer          OutboxAggregateType = "customer"
	AggregateVehicle           OutboxAggregateType = "vehicle"
	AggregateInventoryItem     OutboxAggregateType = "inventory_item"
	AggregateInventoryCategory OutboxAggregateType = "inventory_category"
	AggregateCatalogService    OutboxAggregateType = "catalog_service"
	AggregateQuotation         OutboxAggregateType = "quotation"
	AggregateRepairOrder       OutboxAggregateType = "repair_order"
	AggregateInvoice           OutboxAggregateType = "invoice"
	AggregateStockMovement     OutboxAggregateType = "stock_movement"
	AggregateBackup            OutboxAggregateType = "backup"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCustomer,
	AggregateVehicle,
	AggregateInventoryItem,
	AggregateInventoryCategory,
	AggregateCatalogService,
	AggregateQuotation,
	AggregateRepairOrder,
	AggregateInvoice,
	AggregateStockMovement,
	AggregateBackup,
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names what happened to the aggregate. The sync worker only
// needs changed/deleted to mirror snapshots, but lifecycle events carry more
// intent for downstream consumers.
type OutboxEventType string

const (
	EventEntityChanged     OutboxEventType = "entity_changed"
	EventEntityDeleted     OutboxEventType = "entity_deleted"
	EventQuotationAccepted OutboxEventType = "quotation_accepted"
	EventRepairDerived     OutboxEventType = "repair_derived"
	EventRepairCompleted   OutboxEventType = "repair_completed"
	EventStockReconciled   OutboxEventType = "stock_reconciled"
	EventInvoiceIssued     OutboxEventType = "invoice_issued"
	EventPaymentRecorded   OutboxEventType = "payment_recorded"
	EventBackupRestored    OutboxEventType = "backup_restored"
)

var validOutboxEventTypes = []OutboxEventType{
	EventEntityChanged,
	EventEntityDeleted,
	EventQuotationAccepted,
	EventRepairDerived,
	EventRepairCompleted,
	EventStockReconciled,
	EventInvoiceIssued,
	EventPaymentRecorded,
	EventBackupRestored,
}

// IsValid reports whether the value is a known OutboxEventType.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
