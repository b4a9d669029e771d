package lineitems

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
)

type stubParts struct {
	items map[uuid.UUID]*models.InventoryItem
}

func (s *stubParts) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

type stubLabor struct {
	services map[uuid.UUID]*models.CatalogService
}

func (s *stubLabor) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.CatalogService, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return svc, nil
}

func fixtureSources() (*stubParts, *stubLabor, uuid.UUID, uuid.UUID) {
	partID := uuid.New()
	serviceID := uuid.New()
	parts := &stubParts{items: map[uuid.UUID]*models.InventoryItem{
		partID: {ID: partID, SKU: "PT0001", Name: "Oil filter", Unit: "pcs", SellingPriceCents: 65000},
	}}
	labor := &stubLabor{services: map[uuid.UUID]*models.CatalogService{
		serviceID: {ID: serviceID, Code: "DV0001", Name: "Oil change", PriceCents: 150000},
	}}
	return parts, labor, partID, serviceID
}

func TestBuildSnapshotsNameAndPrice(t *testing.T) {
	parts, labor, partID, serviceID := fixtureSources()
	docID := uuid.New()

	items, lines, err := Build(context.Background(), parts, labor, enums.DocumentKindQuotation, docID, []Input{
		{Type: enums.LineItemTypePart, ItemID: partID, Qty: 2},
		{Type: enums.LineItemTypeService, ItemID: serviceID, Qty: 1},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(items) != 2 || len(lines) != 2 {
		t.Fatalf("expected two lines, got %d/%d", len(items), len(lines))
	}

	if items[0].Name != "Oil filter" || items[0].UnitPriceCents != 65000 || items[0].TotalCents != 130000 {
		t.Fatalf("unexpected part snapshot %+v", items[0])
	}
	if items[0].Position != 1 || items[1].Position != 2 {
		t.Fatalf("expected dense positions, got %d/%d", items[0].Position, items[1].Position)
	}
	if items[1].Name != "Oil change" || items[1].UnitPriceCents != 150000 {
		t.Fatalf("unexpected service snapshot %+v", items[1])
	}

	// Later catalog edits must not touch the snapshot.
	parts.items[partID].SellingPriceCents = 99000
	if items[0].UnitPriceCents != 65000 {
		t.Fatalf("snapshot should not follow the catalog")
	}
}

func TestBuildPriceOverride(t *testing.T) {
	parts, labor, partID, _ := fixtureSources()
	override := int64(50000)

	items, _, err := Build(context.Background(), parts, labor, enums.DocumentKindQuotation, uuid.New(), []Input{
		{Type: enums.LineItemTypePart, ItemID: partID, Qty: 1, UnitPriceCents: &override},
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if items[0].UnitPriceCents != 50000 {
		t.Fatalf("expected override price, got %d", items[0].UnitPriceCents)
	}
}

func TestBuildRejectsMissingReference(t *testing.T) {
	parts, labor, _, _ := fixtureSources()

	_, _, err := Build(context.Background(), parts, labor, enums.DocumentKindQuotation, uuid.New(), []Input{
		{Type: enums.LineItemTypePart, ItemID: uuid.New(), Qty: 1},
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for unknown part, got %v", err)
	}
}

func TestBuildValidation(t *testing.T) {
	parts, labor, partID, _ := fixtureSources()
	negative := int64(-1)

	cases := [][]Input{
		{{Type: enums.LineItemTypePart, Qty: 1}},
		{{Type: enums.LineItemTypePart, ItemID: partID, Qty: 0}},
		{{Type: enums.LineItemTypePart, ItemID: partID, Qty: 1, UnitPriceCents: &negative}},
		{{Type: enums.LineItemType("mystery"), ItemID: partID, Qty: 1}},
	}
	for _, inputs := range cases {
		_, _, err := Build(context.Background(), parts, labor, enums.DocumentKindQuotation, uuid.New(), inputs)
		if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", inputs, err)
		}
	}
}

func TestCopyToPreservesSnapshots(t *testing.T) {
	source := []models.LineItem{
		{ID: uuid.New(), DocumentKind: enums.DocumentKindQuotation, Position: 1, ItemType: enums.LineItemTypePart, ItemID: uuid.New(), Name: "Oil filter", Unit: "pcs", Qty: 2, UnitPriceCents: 65000, TotalCents: 130000},
	}
	target := uuid.New()

	copied := CopyTo(source, enums.DocumentKindRepairOrder, target)
	if len(copied) != 1 {
		t.Fatalf("expected one copied line")
	}
	if copied[0].ID == source[0].ID {
		t.Fatalf("copied line must get a fresh id")
	}
	if copied[0].DocumentKind != enums.DocumentKindRepairOrder || copied[0].DocumentID != target {
		t.Fatalf("copied line not re-homed: %+v", copied[0])
	}
	if copied[0].UnitPriceCents != 65000 || copied[0].TotalCents != 130000 {
		t.Fatalf("copied line lost its snapshot: %+v", copied[0])
	}
}

func TestPartDemandsSkipsServices(t *testing.T) {
	partID := uuid.New()
	items := []models.LineItem{
		{ItemType: enums.LineItemTypePart, ItemID: partID, Qty: 2},
		{ItemType: enums.LineItemTypeService, ItemID: uuid.New(), Qty: 1},
	}

	demands := PartDemands(items)
	if len(demands) != 1 {
		t.Fatalf("expected only part demand, got %d", len(demands))
	}
	if demands[0].ItemID != partID || demands[0].Qty != 2 {
		t.Fatalf("unexpected demand %+v", demands[0])
	}
}
