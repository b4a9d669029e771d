package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
)

type fakeRepository struct {
	createFn         func(ctx context.Context, movement *models.StockMovement) error
	listByItemFn     func(ctx context.Context, itemID uuid.UUID) ([]models.StockMovement, error)
	listByRefFn      func(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error)
	withTxCalledWith *gorm.DB
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	f.withTxCalledWith = tx
	return f
}

func (f *fakeRepository) Create(ctx context.Context, movement *models.StockMovement) error {
	if f.createFn != nil {
		return f.createFn(ctx, movement)
	}
	return nil
}

func (f *fakeRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.StockMovement, error) {
	if f.listByItemFn != nil {
		return f.listByItemFn(ctx, itemID)
	}
	return nil, nil
}

func (f *fakeRepository) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error) {
	if f.listByRefFn != nil {
		return f.listByRefFn(ctx, referenceID)
	}
	return nil, nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	kind := enums.DocumentKindRepairOrder
	refID := uuid.New()
	input := RecordMovementInput{
		ItemID:        uuid.New(),
		Type:          enums.StockMovementRepairConsumption,
		QtyDelta:      -3,
		QtyApplied:    -2,
		QtyAfter:      0,
		ReferenceKind: &kind,
		ReferenceID:   &refID,
	}

	var created *models.StockMovement
	repo.createFn = func(ctx context.Context, movement *models.StockMovement) error {
		created = movement
		return nil
	}

	got, err := svc.Record(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created == nil {
		t.Fatalf("expected repository create call")
	}
	if got.ID == uuid.Nil {
		t.Fatalf("expected generated movement id")
	}
	if got.QtyDelta != -3 || got.QtyApplied != -2 || got.QtyAfter != 0 {
		t.Fatalf("unexpected quantities %+v", got)
	}
	if got.ReferenceKind == nil || *got.ReferenceKind != enums.DocumentKindRepairOrder {
		t.Fatalf("expected reference kind to be recorded")
	}
}

func TestService_RecordValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	cases := []struct {
		name  string
		input RecordMovementInput
	}{
		{name: "missing item", input: RecordMovementInput{Type: enums.StockMovementAdjustment}},
		{name: "bad type", input: RecordMovementInput{ItemID: uuid.New(), Type: enums.StockMovementType("mystery")}},
		{name: "negative qty after", input: RecordMovementInput{ItemID: uuid.New(), Type: enums.StockMovementRestock, QtyAfter: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Record(context.Background(), nil, tc.input); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestService_RecordPropagatesRepoError(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, movement *models.StockMovement) error {
			return errors.New("insert failed")
		},
	}
	svc, _ := NewService(repo)

	_, err := svc.Record(context.Background(), nil, RecordMovementInput{
		ItemID: uuid.New(),
		Type:   enums.StockMovementRestock,
	})
	if err == nil {
		t.Fatalf("expected repository error to surface")
	}
}

func TestService_ListByItemRequiresID(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo)

	if _, err := svc.ListByItem(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil item id")
	}
	if _, err := svc.ListByReference(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil reference id")
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatalf("expected constructor error")
	}
}
