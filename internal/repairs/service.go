package repairs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	"github.com/dvthanh/garahub-backend/pkg/pagination"

	"github.com/dvthanh/garahub-backend/internal/inventory"
	"github.com/dvthanh/garahub-backend/internal/lineitems"
	"github.com/dvthanh/garahub-backend/internal/pricing"
	"github.com/dvthanh/garahub-backend/internal/sequence"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type codeGenerator interface {
	NextForScope(ctx context.Context, tx *gorm.DB, scope string) (string, error)
}

// stockService is the slice of the inventory service the reconciliation
// step needs.
type stockService interface {
	Consume(ctx context.Context, tx *gorm.DB, kind enums.DocumentKind, referenceID uuid.UUID, demands []inventory.Demand) ([]inventory.Shortfall, error)
	Restore(ctx context.Context, tx *gorm.DB, kind enums.DocumentKind, referenceID uuid.UUID, demands []inventory.Demand) error
}

// Service defines repair order lifecycle operations. ChangeStatus carries the
// reconciliation side effects: the transition into completed consumes part
// stock exactly once, and cancelling an already-completed order puts the
// applied quantities back.
type Service interface {
	Create(ctx context.Context, input CreateRepairInput) (*models.RepairOrder, error)
	DeriveFromQuotation(ctx context.Context, quotationID uuid.UUID) (*models.RepairOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*RepairList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRepairInput) (*models.RepairOrder, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, next enums.RepairStatus, opts StatusChangeOptions) (*StatusChangeResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	lines  lineitems.Repository
	parts  lineitems.PartSource
	labor  lineitems.LaborSource
	stock  stockService
	tx     txRunner
	outbox outboxPublisher
	codes  codeGenerator
}

// NewService builds a repair order service with the required dependencies.
func NewService(repo Repository, lines lineitems.Repository, parts lineitems.PartSource, labor lineitems.LaborSource, stock stockService, tx txRunner, publisher outboxPublisher, codes codeGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repairs repository required")
	}
	if lines == nil {
		return nil, fmt.Errorf("line item repository required")
	}
	if parts == nil || labor == nil {
		return nil, fmt.Errorf("part and labor sources required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if codes == nil {
		return nil, fmt.Errorf("code generator required")
	}
	return &service{repo: repo, lines: lines, parts: parts, labor: labor, stock: stock, tx: tx, outbox: publisher, codes: codes}, nil
}

func (s *service) Create(ctx context.Context, input CreateRepairInput) (*models.RepairOrder, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if input.Odometer < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer must not be negative")
	}

	repair := &models.RepairOrder{
		ID:              uuid.New(),
		CustomerID:      input.CustomerID,
		VehicleID:       input.VehicleID,
		Status:          enums.RepairStatusNew,
		DateExpected:    input.DateExpected,
		Odometer:        input.Odometer,
		TaxPercent:      input.TaxPercent,
		CustomerRequest: input.CustomerRequest,
		TechnicianNotes: input.TechnicianNotes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.CustomerExists(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "customer does not exist")
		}
		vehicle, err := repo.VehicleByID(ctx, input.VehicleID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeConflict, "vehicle does not exist")
			}
			return err
		}
		if vehicle.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeConflict, "vehicle belongs to a different customer")
		}

		items, priceLines, err := lineitems.Build(ctx, s.parts, s.labor, enums.DocumentKindRepairOrder, repair.ID, input.Lines)
		if err != nil {
			return err
		}
		totals, err := pricing.ComputeTotals(priceLines, decimal.Zero, input.TaxPercent)
		if err != nil {
			return err
		}

		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeRepairOrder)
		if err != nil {
			return err
		}
		repair.Code = code
		repair.SubtotalCents = totals.SubtotalCents
		repair.TaxCents = totals.TaxCents
		repair.TotalCents = totals.TotalCents

		if _, err := repo.Create(ctx, repair); err != nil {
			return err
		}
		if err := s.lines.WithTx(tx).Replace(ctx, enums.DocumentKindRepairOrder, repair.ID, items); err != nil {
			return err
		}
		repair.Items = items

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateRepairOrder,
			AggregateID:   repair.ID,
			Data:          repair,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return repair, nil
}

// DeriveFromQuotation opens a repair order off an accepted quotation, carrying
// over the customer, the vehicle, and value copies of the line items. The
// quotation itself is left untouched and becomes frozen for edits.
func (s *service) DeriveFromQuotation(ctx context.Context, quotationID uuid.UUID) (*models.RepairOrder, error) {
	if quotationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}

	var repair *models.RepairOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quotation, err := repo.QuotationByID(ctx, quotationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return err
		}
		if quotation.Status != enums.QuotationStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation must be accepted before deriving a repair order").
				WithDetails(map[string]any{"status": quotation.Status})
		}
		derived, err := repo.ExistsForQuotation(ctx, quotationID)
		if err != nil {
			return err
		}
		if derived {
			return pkgerrors.New(pkgerrors.CodeConflict, "a repair order was already derived from this quotation")
		}

		sourceItems, err := s.lines.WithTx(tx).List(ctx, enums.DocumentKindQuotation, quotationID)
		if err != nil {
			return err
		}

		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeRepairOrder)
		if err != nil {
			return err
		}

		quotationRef := quotation.ID
		repair = &models.RepairOrder{
			ID:            uuid.New(),
			Code:          code,
			CustomerID:    quotation.CustomerID,
			VehicleID:     quotation.VehicleID,
			QuotationID:   &quotationRef,
			Status:        enums.RepairStatusNew,
			TaxPercent:    quotation.TaxPercent,
			SubtotalCents: quotation.SubtotalCents,
			TaxCents:      quotation.TaxCents,
			TotalCents:    quotation.TotalCents,
		}

		items := lineitems.CopyTo(sourceItems, enums.DocumentKindRepairOrder, repair.ID)
		if _, err := repo.Create(ctx, repair); err != nil {
			return err
		}
		if err := s.lines.WithTx(tx).Replace(ctx, enums.DocumentKindRepairOrder, repair.ID, items); err != nil {
			return err
		}
		repair.Items = items

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRepairDerived,
			AggregateType: enums.AggregateRepairOrder,
			AggregateID:   repair.ID,
			Data:          repair,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return repair, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "repair order id required")
	}
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "repair order not found")
		}
		return nil, err
	}
	items, err := s.lines.List(ctx, enums.DocumentKindRepairOrder, id)
	if err != nil {
		return nil, err
	}
	repair.Items = items
	return repair, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*RepairList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.List(ctx, params, filters)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRepairInput) (*models.RepairOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "repair order id required")
	}
	if input.Odometer != nil && *input.Odometer < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "odometer must not be negative")
	}

	var updated *models.RepairOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		repair, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "repair order not found")
			}
			return err
		}
		if !isEditable(repair.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "repair order is no longer editable").
				WithDetails(map[string]any{"status": repair.Status})
		}

		linesRepo := s.lines.WithTx(tx)
		items, err := linesRepo.List(ctx, enums.DocumentKindRepairOrder, id)
		if err != nil {
			return err
		}
		if input.Lines != nil {
			items, _, err = lineitems.Build(ctx, s.parts, s.labor, enums.DocumentKindRepairOrder, id, *input.Lines)
			if err != nil {
				return err
			}
			if err := linesRepo.Replace(ctx, enums.DocumentKindRepairOrder, id, items); err != nil {
				return err
			}
		}

		taxPercent := repair.TaxPercent
		if input.TaxPercent != nil {
			taxPercent = *input.TaxPercent
		}
		totals, err := pricing.ComputeTotals(lineitems.PricingLines(items), decimal.Zero, taxPercent)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"tax_percent":    taxPercent,
			"subtotal_cents": totals.SubtotalCents,
			"tax_cents":      totals.TaxCents,
			"total_cents":    totals.TotalCents,
		}
		if input.Odometer != nil {
			updates["odometer"] = *input.Odometer
		}
		if input.DateExpected != nil {
			updates["date_expected"] = input.DateExpected
		}
		if input.CustomerRequest != nil {
			updates["customer_request"] = input.CustomerRequest
		}
		if input.TechnicianNotes != nil {
			updates["technician_notes"] = input.TechnicianNotes
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}

		repair, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		repair.Items = items
		updated = repair

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateRepairOrder,
			AggregateID:   id,
			Data:          repair,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeStatus moves the order along the forward chain. The reconciliation
// gate is the previously stored status: stock is consumed only when the
// stored status was not yet completed, so re-saving a completed order can
// never decrement twice. With opts.RequireStock the completion step refuses
// instead of clamping when stock cannot cover the part lines.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, next enums.RepairStatus, opts StatusChangeOptions) (*StatusChangeResult, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "repair order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown repair status")
	}

	result := &StatusChangeResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		repair, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "repair order not found")
			}
			return err
		}
		if repair.Status == next {
			result.Repair = repair
			return nil
		}
		prev := repair.Status
		if !prev.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid repair transition").
				WithDetails(map[string]any{"from": prev, "to": next})
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": next}
		eventType := enums.EventEntityChanged

		switch {
		case next == enums.RepairStatusCompleted:
			items, err := s.lines.WithTx(tx).List(ctx, enums.DocumentKindRepairOrder, id)
			if err != nil {
				return err
			}
			shortfalls, err := s.stock.Consume(ctx, tx, enums.DocumentKindRepairOrder, id, consumeDemands(items))
			if err != nil {
				return err
			}
			if opts.RequireStock && len(shortfalls) > 0 {
				return pkgerrors.New(pkgerrors.CodeStockShortfall, "insufficient stock to complete repair order").
					WithDetails(map[string]any{"shortfalls": shortfalls})
			}
			if err := repo.AdvanceOdometer(ctx, repair.VehicleID, repair.Odometer); err != nil {
				return err
			}
			updates["completed_at"] = now
			repair.CompletedAt = &now
			result.Shortfalls = shortfalls
			eventType = enums.EventRepairCompleted

		case next == enums.RepairStatusDelivered:
			if err := repo.AdvanceOdometer(ctx, repair.VehicleID, repair.Odometer); err != nil {
				return err
			}
			updates["delivered_at"] = now
			repair.DeliveredAt = &now

		case next == enums.RepairStatusCancelled:
			if prev == enums.RepairStatusCompleted {
				movements, err := repo.ConsumptionMovements(ctx, id)
				if err != nil {
					return err
				}
				if err := s.stock.Restore(ctx, tx, enums.DocumentKindRepairOrder, id, restoreDemands(movements)); err != nil {
					return err
				}
			}
			updates["cancelled_at"] = now
			repair.CancelledAt = &now
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}
		repair.Status = next
		result.Repair = repair

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateRepairOrder,
			AggregateID:   id,
			Data:          repair,
			Version:       1,
		}); err != nil {
			return err
		}
		if eventType == enums.EventRepairCompleted {
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventStockReconciled,
				AggregateType: enums.AggregateRepairOrder,
				AggregateID:   id,
				Data:          result.Shortfalls,
				Version:       1,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "repair order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		repair, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "repair order not found")
			}
			return err
		}
		if repair.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "terminal repair orders cannot be deleted").
				WithDetails(map[string]any{"status": repair.Status})
		}
		// Completed orders already consumed stock; deleting one would leave
		// ledger rows pointing at nothing. Cancel instead to restore stock.
		if repair.Status == enums.RepairStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reconciled repair orders cannot be deleted, cancel first").
				WithDetails(map[string]any{"status": repair.Status})
		}
		invoiced, err := repo.HasInvoice(ctx, id)
		if err != nil {
			return err
		}
		if invoiced {
			return pkgerrors.New(pkgerrors.CodeConflict, "an invoice references this repair order")
		}
		if err := s.lines.WithTx(tx).DeleteForDocument(ctx, enums.DocumentKindRepairOrder, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateRepairOrder,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}

// isEditable reports whether fields and lines may still change. Reconciled
// and terminal orders are frozen.
func isEditable(status enums.RepairStatus) bool {
	switch status {
	case enums.RepairStatusNew, enums.RepairStatusInProgress, enums.RepairStatusWaitingParts:
		return true
	default:
		return false
	}
}

func consumeDemands(items []models.LineItem) []inventory.Demand {
	var demands []inventory.Demand
	for _, demand := range lineitems.PartDemands(items) {
		demands = append(demands, inventory.Demand{ItemID: demand.ItemID, Qty: demand.Qty})
	}
	return demands
}

// restoreDemands folds consumption ledger entries back into positive demands.
// Entries whose applied quantity was fully clamped contribute nothing.
func restoreDemands(movements []models.StockMovement) []inventory.Demand {
	var demands []inventory.Demand
	for _, movement := range movements {
		applied := -movement.QtyApplied
		if applied <= 0 {
			continue
		}
		demands = append(demands, inventory.Demand{ItemID: movement.ItemID, Qty: applied})
	}
	return demands
}
