package quotations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

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

// Service defines quotation lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateQuotationInput) (*models.Quotation, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*QuotationList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateQuotationInput) (*models.Quotation, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, next enums.QuotationStatus) (*models.Quotation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	lines  lineitems.Repository
	parts  lineitems.PartSource
	labor  lineitems.LaborSource
	tx     txRunner
	outbox outboxPublisher
	codes  codeGenerator
}

// NewService builds a quotation service with the required dependencies.
func NewService(repo Repository, lines lineitems.Repository, parts lineitems.PartSource, labor lineitems.LaborSource, tx txRunner, publisher outboxPublisher, codes codeGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotations repository required")
	}
	if lines == nil {
		return nil, fmt.Errorf("line item repository required")
	}
	if parts == nil || labor == nil {
		return nil, fmt.Errorf("part and labor sources required")
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
	return &service{repo: repo, lines: lines, parts: parts, labor: labor, tx: tx, outbox: publisher, codes: codes}, nil
}

func (s *service) Create(ctx context.Context, input CreateQuotationInput) (*models.Quotation, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	quotation := &models.Quotation{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		VehicleID:  input.VehicleID,
		Status:     enums.QuotationStatusNew,
		TaxPercent: input.TaxPercent,
		Notes:      input.Notes,
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

		items, priceLines, err := lineitems.Build(ctx, s.parts, s.labor, enums.DocumentKindQuotation, quotation.ID, input.Lines)
		if err != nil {
			return err
		}
		totals, err := pricing.ComputeTotals(priceLines, decimal.Zero, input.TaxPercent)
		if err != nil {
			return err
		}

		code, err := s.codes.NextForScope(ctx, tx, sequence.ScopeQuotation)
		if err != nil {
			return err
		}
		quotation.Code = code
		quotation.SubtotalCents = totals.SubtotalCents
		quotation.TaxCents = totals.TaxCents
		quotation.TotalCents = totals.TotalCents

		if _, err := repo.Create(ctx, quotation); err != nil {
			return err
		}
		if err := s.lines.WithTx(tx).Replace(ctx, enums.DocumentKindQuotation, quotation.ID, items); err != nil {
			return err
		}
		quotation.Items = items

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   quotation.ID,
			Data:          quotation,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}
	quotation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, err
	}
	items, err := s.lines.List(ctx, enums.DocumentKindQuotation, id)
	if err != nil {
		return nil, err
	}
	quotation.Items = items
	return quotation, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*QuotationList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.List(ctx, params, filters)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateQuotationInput) (*models.Quotation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}

	var updated *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quotation, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return err
		}
		if !isEditable(quotation.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "quotation is no longer editable").
				WithDetails(map[string]any{"status": quotation.Status})
		}

		linesRepo := s.lines.WithTx(tx)
		items, err := linesRepo.List(ctx, enums.DocumentKindQuotation, id)
		if err != nil {
			return err
		}
		if input.Lines != nil {
			items, _, err = lineitems.Build(ctx, s.parts, s.labor, enums.DocumentKindQuotation, id, *input.Lines)
			if err != nil {
				return err
			}
			if err := linesRepo.Replace(ctx, enums.DocumentKindQuotation, id, items); err != nil {
				return err
			}
		}

		taxPercent := quotation.TaxPercent
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
		if input.Notes != nil {
			updates["notes"] = input.Notes
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return err
		}

		quotation, err = repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		quotation.Items = items
		updated = quotation

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   id,
			Data:          quotation,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, next enums.QuotationStatus) (*models.Quotation, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quotation status")
	}

	var updated *models.Quotation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quotation, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return err
		}
		if quotation.Status == next {
			updated = quotation
			return nil
		}
		if !quotation.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid quotation transition").
				WithDetails(map[string]any{"from": quotation.Status, "to": next})
		}

		if err := repo.Update(ctx, id, map[string]any{"status": next}); err != nil {
			return err
		}
		quotation.Status = next
		updated = quotation

		eventType := enums.EventEntityChanged
		if next == enums.QuotationStatusAccepted {
			eventType = enums.EventQuotationAccepted
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   id,
			Data:          quotation,
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
		return pkgerrors.New(pkgerrors.CodeValidation, "quotation id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return err
		}
		derived, err := repo.HasDerivedRepair(ctx, id)
		if err != nil {
			return err
		}
		if derived {
			return pkgerrors.New(pkgerrors.CodeConflict, "a repair order was derived from this quotation")
		}
		if err := s.lines.WithTx(tx).DeleteForDocument(ctx, enums.DocumentKindQuotation, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}

func isEditable(status enums.QuotationStatus) bool {
	return status == enums.QuotationStatusNew || status == enums.QuotationStatusSent
}
