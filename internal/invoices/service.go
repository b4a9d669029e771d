package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/dvthanh/garahub-backend/pkg/db"
	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	"github.com/dvthanh/garahub-backend/pkg/pagination"

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

// Service defines invoice operations. Payment status is never set directly;
// it is derived from amount paid versus total after every mutation.
type Service interface {
	DeriveFromRepair(ctx context.Context, repairID uuid.UUID, input DeriveInvoiceInput) (*DeriveResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*InvoiceList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error)
	RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	lines  lineitems.Repository
	tx     txRunner
	outbox outboxPublisher
	codes  codeGenerator
}

// NewService builds an invoice service with the required dependencies.
func NewService(repo Repository, lines lineitems.Repository, tx txRunner, publisher outboxPublisher, codes codeGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if lines == nil {
		return nil, fmt.Errorf("line item repository required")
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
	return &service{repo: repo, lines: lines, tx: tx, outbox: publisher, codes: codes}, nil
}

// DeriveFromRepair issues the invoice for a completed repair order. The
// billing relation is one to one: a second call redirects to the invoice
// already on file instead of erroring. Issuing the first invoice also moves
// the repair order to delivered unless it is already terminal.
func (s *service) DeriveFromRepair(ctx context.Context, repairID uuid.UUID, input DeriveInvoiceInput) (*DeriveResult, error) {
	if repairID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "repair order id required")
	}

	result := &DeriveResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByRepairOrder(ctx, repairID)
		if err == nil {
			result.Invoice = existing
			result.Existing = true
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		repair, err := repo.RepairByID(ctx, repairID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "repair order not found")
			}
			return err
		}
		if repair.Status != enums.RepairStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "repair order must be completed before invoicing").
				WithDetails(map[string]any{"status": repair.Status})
		}

		sourceItems, err := s.lines.WithTx(tx).List(ctx, enums.DocumentKindRepairOrder, repairID)
		if err != nil {
			return err
		}

		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeInvoice)
		if err != nil {
			return err
		}

		invoice := &models.Invoice{
			ID:              uuid.New(),
			Code:            code,
			RepairOrderID:   repairID,
			CustomerID:      repair.CustomerID,
			VehicleID:       repair.VehicleID,
			Status:          enums.InvoiceStatusUnpaid,
			DiscountPercent: input.DiscountPercent,
			TaxPercent:      repair.TaxPercent,
			PaymentMethod:   enums.PaymentMethodCash,
			Notes:           input.Notes,
		}

		items := lineitems.CopyTo(sourceItems, enums.DocumentKindInvoice, invoice.ID)
		totals, err := pricing.ComputeTotals(lineitems.PricingLines(items), input.DiscountPercent, repair.TaxPercent)
		if err != nil {
			return err
		}
		invoice.SubtotalCents = totals.SubtotalCents
		invoice.DiscountCents = totals.DiscountCents
		invoice.TaxCents = totals.TaxCents
		invoice.TotalCents = totals.TotalCents

		// On Postgres a failed insert poisons the whole transaction, so the
		// insert runs under a savepoint we can roll back to before reading
		// the winner.
		savepointer, canSavepoint := tx.Dialector.(gorm.SavePointerDialectorInterface)
		if canSavepoint {
			if err := savepointer.SavePoint(tx, "invoice_insert"); err != nil {
				return err
			}
		}
		if _, err := repo.Create(ctx, invoice); err != nil {
			// Lost the race on the one-invoice-per-repair index; hand back
			// the winner instead.
			if dbpkg.IsUniqueViolation(err, "ux_invoices_repair_order") {
				if canSavepoint {
					if err := savepointer.RollbackTo(tx, "invoice_insert"); err != nil {
						return err
					}
				}
				winner, findErr := repo.FindByRepairOrder(ctx, repairID)
				if findErr != nil {
					return findErr
				}
				result.Invoice = winner
				result.Existing = true
				return nil
			}
			return err
		}
		if err := s.lines.WithTx(tx).Replace(ctx, enums.DocumentKindInvoice, invoice.ID, items); err != nil {
			return err
		}
		invoice.Items = items

		if err := repo.MarkRepairDelivered(ctx, repairID, time.Now().UTC()); err != nil {
			return err
		}

		result.Invoice = invoice
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvoiceIssued,
			AggregateType: enums.AggregateInvoice,
			AggregateID:   invoice.ID,
			Data:          invoice,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, err
	}
	items, err := s.lines.List(ctx, enums.DocumentKindInvoice, id)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*InvoiceList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.List(ctx, params, filters)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	var updated *models.Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return err
		}
		if invoice.AmountPaidCents > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice already carries payments").
				WithDetails(map[string]any{"amount_paid_cents": invoice.AmountPaidCents})
		}

		discount := invoice.DiscountPercent
		if input.DiscountPercent != nil {
			discount = *input.DiscountPercent
		}
		taxPercent := invoice.TaxPercent
		if input.TaxPercent != nil {
			taxPercent = *input.TaxPercent
		}

		items, err := s.lines.WithTx(tx).List(ctx, enums.DocumentKindInvoice, id)
		if err != nil {
			return err
		}
		totals, err := pricing.ComputeTotals(lineitems.PricingLines(items), discount, taxPercent)
		if err != nil {
			return err
		}

		updates := map[string]any{
			"discount_percent": discount,
			"tax_percent":      taxPercent,
			"subtotal_cents":   totals.SubtotalCents,
			"discount_cents":   totals.DiscountCents,
			"tax_cents":        totals.TaxCents,
			"total_cents":      totals.TotalCents,
			"status":           enums.InvoiceStatusFor(invoice.AmountPaidCents, totals.TotalCents),
		}
		if input.Notes != nil {
			updates["notes"] = input.Notes
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}

		invoice, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		invoice.Items = items
		updated = invoice

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateInvoice,
			AggregateID:   id,
			Data:          invoice,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	var updated *models.Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return err
		}

		paid := invoice.AmountPaidCents + input.AmountCents
		if paid > invoice.TotalCents {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds amount due").
				WithDetails(map[string]any{
					"total_cents":       invoice.TotalCents,
					"amount_paid_cents": invoice.AmountPaidCents,
				})
		}

		status := enums.InvoiceStatusFor(paid, invoice.TotalCents)
		updates := map[string]any{
			"amount_paid_cents": paid,
			"payment_method":    input.Method,
			"status":            status,
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}
		invoice.AmountPaidCents = paid
		invoice.PaymentMethod = input.Method
		invoice.Status = status
		updated = invoice

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregateInvoice,
			AggregateID:   id,
			Data:          invoice,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return err
		}
		if invoice.AmountPaidCents > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "paid invoices cannot be deleted").
				WithDetails(map[string]any{"amount_paid_cents": invoice.AmountPaidCents})
		}
		if err := s.lines.WithTx(tx).DeleteForDocument(ctx, enums.DocumentKindInvoice, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateInvoice,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}
