package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	"github.com/dvthanh/garahub-backend/pkg/pagination"

	"github.com/dvthanh/garahub-backend/internal/ledger"
)

type stubRepo struct {
	items       map[uuid.UUID]*models.InventoryItem
	categories  map[uuid.UUID]*models.InventoryCategory
	references  int64
	lockedReads []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		items:      map[uuid.UUID]*models.InventoryItem{},
		categories: map[uuid.UUID]*models.InventoryCategory{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	s.items[item.ID] = item
	return item, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	s.lockedReads = append(s.lockedReads, id)
	return s.FindByID(ctx, id)
}

func (s *stubRepo) FindBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	for _, item := range s.items {
		if item.SKU == sku {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters Filters) (*ItemList, error) {
	return &ItemList{}, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	item := s.items[id]
	if name, ok := updates["name"].(string); ok {
		item.Name = name
	}
	return nil
}

func (s *stubRepo) SetQuantity(ctx context.Context, id uuid.UUID, quantity int64) error {
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func (s *stubRepo) CountReferences(ctx context.Context, itemID uuid.UUID) (int64, error) {
	return s.references, nil
}

func (s *stubRepo) CategoryByID(ctx context.Context, id uuid.UUID) (*models.InventoryCategory, error) {
	category, ok := s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubSKUs struct{ next int }

func (s *stubSKUs) NextSKU(ctx context.Context, tx *gorm.DB, categoryName string) (string, error) {
	s.next++
	return "PT000" + string(rune('0'+s.next)), nil
}

type stubMovements struct {
	recorded []ledger.RecordMovementInput
}

func (s *stubMovements) Record(ctx context.Context, tx *gorm.DB, input ledger.RecordMovementInput) (*models.StockMovement, error) {
	s.recorded = append(s.recorded, input)
	return &models.StockMovement{
		ID:         uuid.New(),
		ItemID:     input.ItemID,
		Type:       input.Type,
		QtyDelta:   input.QtyDelta,
		QtyApplied: input.QtyApplied,
		QtyAfter:   input.QtyAfter,
	}, nil
}

type fixture struct {
	repo      *stubRepo
	movements *stubMovements
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubRepo()
	movements := &stubMovements{}
	svc, err := NewService(repo, stubTx{}, &stubOutbox{}, &stubSKUs{}, movements)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &fixture{repo: repo, movements: movements, svc: svc}
}

func (f *fixture) seedCategory() uuid.UUID {
	id := uuid.New()
	f.repo.categories[id] = &models.InventoryCategory{ID: id, Name: "Parts"}
	return id
}

func (f *fixture) seedItem(t *testing.T, qty int64) *models.InventoryItem {
	t.Helper()
	item, err := f.svc.CreateItem(context.Background(), CreateItemInput{
		Name:              "Oil filter",
		CategoryID:        f.seedCategory(),
		Unit:              "pcs",
		InitialQuantity:   qty,
		CostPriceCents:    40000,
		SellingPriceCents: 65000,
	})
	if err != nil {
		t.Fatalf("seed item error: %v", err)
	}
	return item
}

func TestCreateItemAssignsSKUAndRecordsInitialStock(t *testing.T) {
	f := newFixture(t)

	item := f.seedItem(t, 10)
	if item.SKU != "PT0001" {
		t.Fatalf("expected generated sku, got %q", item.SKU)
	}
	if len(f.movements.recorded) != 1 {
		t.Fatalf("expected initial restock movement, got %d", len(f.movements.recorded))
	}
	if f.movements.recorded[0].Type != enums.StockMovementRestock {
		t.Fatalf("unexpected movement type %q", f.movements.recorded[0].Type)
	}
}

func TestCreateItemRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateItem(context.Background(), CreateItemInput{
		Name:       "Oil filter",
		CategoryID: uuid.New(),
		Unit:       "pcs",
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for unknown category, got %v", err)
	}
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 5)

	adjusted, err := f.svc.AdjustStock(context.Background(), AdjustStockInput{
		ItemID: item.ID,
		Delta:  -8,
		Type:   enums.StockMovementAdjustment,
	})
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if adjusted.Quantity != 0 {
		t.Fatalf("expected clamp at zero, got %d", adjusted.Quantity)
	}

	movement := f.movements.recorded[len(f.movements.recorded)-1]
	if movement.QtyDelta != -8 || movement.QtyApplied != -5 || movement.QtyAfter != 0 {
		t.Fatalf("expected ledger to keep requested vs applied, got %+v", movement)
	}
}

func TestAdjustStockValidation(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 5)

	cases := []AdjustStockInput{
		{ItemID: uuid.Nil, Delta: 1, Type: enums.StockMovementAdjustment},
		{ItemID: item.ID, Delta: 1, Type: enums.StockMovementRepairConsumption},
		{ItemID: item.ID, Delta: -1, Type: enums.StockMovementRestock},
		{ItemID: item.ID, Delta: 0, Type: enums.StockMovementAdjustment},
	}
	for _, input := range cases {
		if _, err := f.svc.AdjustStock(context.Background(), input); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestConsumeReportsShortfallAndClamps(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 3)
	refID := uuid.New()

	shortfalls, err := f.svc.Consume(context.Background(), &gorm.DB{}, enums.DocumentKindRepairOrder, refID, []Demand{
		{ItemID: item.ID, Qty: 5},
	})
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if len(shortfalls) != 1 {
		t.Fatalf("expected one shortfall, got %d", len(shortfalls))
	}
	if shortfalls[0].Requested != 5 || shortfalls[0].Applied != 3 {
		t.Fatalf("unexpected shortfall %+v", shortfalls[0])
	}

	stored, _ := f.repo.FindByID(context.Background(), item.ID)
	if stored.Quantity != 0 {
		t.Fatalf("expected stock clamped at zero, got %d", stored.Quantity)
	}

	movement := f.movements.recorded[len(f.movements.recorded)-1]
	if movement.Type != enums.StockMovementRepairConsumption {
		t.Fatalf("unexpected movement type %q", movement.Type)
	}
	if movement.QtyDelta != -5 || movement.QtyApplied != -3 {
		t.Fatalf("expected requested vs applied delta, got %+v", movement)
	}
	if movement.ReferenceID == nil || *movement.ReferenceID != refID {
		t.Fatalf("expected movement reference")
	}
}

func TestConsumeMergesDuplicateDemands(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 10)

	shortfalls, err := f.svc.Consume(context.Background(), &gorm.DB{}, enums.DocumentKindRepairOrder, uuid.New(), []Demand{
		{ItemID: item.ID, Qty: 2},
		{ItemID: item.ID, Qty: 3},
	})
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if len(shortfalls) != 0 {
		t.Fatalf("expected no shortfall, got %+v", shortfalls)
	}

	stored, _ := f.repo.FindByID(context.Background(), item.ID)
	if stored.Quantity != 5 {
		t.Fatalf("expected merged decrement of 5, got remaining %d", stored.Quantity)
	}
}

func TestRestoreReturnsAppliedQuantities(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 7)
	refID := uuid.New()

	if _, err := f.svc.Consume(context.Background(), &gorm.DB{}, enums.DocumentKindRepairOrder, refID, []Demand{{ItemID: item.ID, Qty: 4}}); err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if err := f.svc.Restore(context.Background(), &gorm.DB{}, enums.DocumentKindRepairOrder, refID, []Demand{{ItemID: item.ID, Qty: 4}}); err != nil {
		t.Fatalf("Restore error: %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), item.ID)
	if stored.Quantity != 7 {
		t.Fatalf("expected stock restored to 7, got %d", stored.Quantity)
	}

	movement := f.movements.recorded[len(f.movements.recorded)-1]
	if movement.Type != enums.StockMovementRestoreImport {
		t.Fatalf("unexpected movement type %q", movement.Type)
	}
}

func TestStockMutationsLockTheItemRow(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 10)
	refID := uuid.New()

	if _, err := f.svc.AdjustStock(context.Background(), AdjustStockInput{
		ItemID: item.ID,
		Delta:  -2,
		Type:   enums.StockMovementAdjustment,
	}); err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if _, err := f.svc.Consume(context.Background(), &gorm.DB{}, enums.DocumentKindRepairOrder, refID, []Demand{{ItemID: item.ID, Qty: 3}}); err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if err := f.svc.Restore(context.Background(), &gorm.DB{}, enums.DocumentKindRepairOrder, refID, []Demand{{ItemID: item.ID, Qty: 3}}); err != nil {
		t.Fatalf("Restore error: %v", err)
	}

	if len(f.repo.lockedReads) != 3 {
		t.Fatalf("expected every quantity update to read with a row lock, got %d locked reads", len(f.repo.lockedReads))
	}
	for _, id := range f.repo.lockedReads {
		if id != item.ID {
			t.Fatalf("locked read targeted wrong item %s", id)
		}
	}
}

func TestDeleteItemGuardsReferences(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 1)

	f.repo.references = 2
	err := f.svc.DeleteItem(context.Background(), item.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while referenced, got %v", err)
	}

	f.repo.references = 0
	if err := f.svc.DeleteItem(context.Background(), item.ID); err != nil {
		t.Fatalf("DeleteItem error: %v", err)
	}
}
