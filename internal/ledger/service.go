package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
)

// Service records and reads the append-only stock ledger.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.StockMovement, error)
	ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error)
}

type service struct {
	repo Repository
}

// RecordMovementInput captures the immutable data a stock movement requires.
type RecordMovementInput struct {
	ItemID        uuid.UUID
	Type          enums.StockMovementType
	QtyDelta      int64
	QtyApplied    int64
	QtyAfter      int64
	ReferenceKind *enums.DocumentKind
	ReferenceID   *uuid.UUID
	Notes         *string
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*models.StockMovement, error) {
	if input.ItemID == uuid.Nil {
		return nil, fmt.Errorf("item id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid stock movement type %q", input.Type)
	}
	if input.QtyAfter < 0 {
		return nil, fmt.Errorf("qty after must not be negative")
	}

	movement := &models.StockMovement{
		ID:            uuid.New(),
		ItemID:        input.ItemID,
		Type:          input.Type,
		QtyDelta:      input.QtyDelta,
		QtyApplied:    input.QtyApplied,
		QtyAfter:      input.QtyAfter,
		ReferenceKind: input.ReferenceKind,
		ReferenceID:   input.ReferenceID,
		Notes:         input.Notes,
	}

	repo := s.repo.WithTx(tx)
	if err := repo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.StockMovement, error) {
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("item id is required")
	}
	return s.repo.ListByItem(ctx, itemID)
}

func (s *service) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error) {
	if referenceID == uuid.Nil {
		return nil, fmt.Errorf("reference id is required")
	}
	return s.repo.ListByReference(ctx, referenceID)
}
