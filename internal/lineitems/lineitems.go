package lineitems

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"

	"github.com/dvthanh/garahub-backend/internal/pricing"
)

// Input is one requested line before snapshotting. A nil UnitPriceCents
// takes the current catalog price; a set value overrides it for this
// document only.
type Input struct {
	Type           enums.LineItemType
	ItemID         uuid.UUID
	Qty            int64
	UnitPriceCents *int64
}

// PartSource resolves part references against current inventory.
type PartSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
}

// LaborSource resolves service references against the labor catalog.
type LaborSource interface {
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.CatalogService, error)
}

// Build resolves inputs into snapshotted line items for a document. Name,
// unit, and price are value-copied; the returned pricing lines feed the
// totals calculator.
func Build(ctx context.Context, parts PartSource, labor LaborSource, kind enums.DocumentKind, documentID uuid.UUID, inputs []Input) ([]models.LineItem, []pricing.Line, error) {
	if len(inputs) == 0 {
		return nil, nil, nil
	}

	items := make([]models.LineItem, 0, len(inputs))
	lines := make([]pricing.Line, 0, len(inputs))
	for i, input := range inputs {
		if input.ItemID == uuid.Nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "line item reference required").
				WithDetails(map[string]any{"position": i + 1})
		}
		if input.Qty <= 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "line qty must be positive").
				WithDetails(map[string]any{"position": i + 1})
		}
		if input.UnitPriceCents != nil && *input.UnitPriceCents < 0 {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "line price must not be negative").
				WithDetails(map[string]any{"position": i + 1})
		}

		var name, unit string
		var price int64
		switch input.Type {
		case enums.LineItemTypePart:
			part, err := parts.FindByID(ctx, input.ItemID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "referenced part does not exist").
						WithDetails(map[string]any{"position": i + 1, "item_id": input.ItemID})
				}
				return nil, nil, err
			}
			name, unit, price = part.Name, part.Unit, part.SellingPriceCents
		case enums.LineItemTypeService:
			svc, err := labor.FindServiceByID(ctx, input.ItemID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "referenced service does not exist").
						WithDetails(map[string]any{"position": i + 1, "item_id": input.ItemID})
				}
				return nil, nil, err
			}
			name, unit, price = svc.Name, "lần", svc.PriceCents
		default:
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown line item type").
				WithDetails(map[string]any{"position": i + 1, "type": string(input.Type)})
		}

		if input.UnitPriceCents != nil {
			price = *input.UnitPriceCents
		}

		items = append(items, models.LineItem{
			ID:             uuid.New(),
			DocumentKind:   kind,
			DocumentID:     documentID,
			Position:       i + 1,
			ItemType:       input.Type,
			ItemID:         input.ItemID,
			Name:           name,
			Unit:           unit,
			Qty:            input.Qty,
			UnitPriceCents: price,
			TotalCents:     pricing.LineTotalCents(input.Qty, price),
		})
		lines = append(lines, pricing.Line{Qty: input.Qty, UnitPriceCents: price})
	}
	return items, lines, nil
}

// CopyTo re-homes existing lines onto another document, preserving snapshots
// and order. Used when a repair order is derived from a quotation and when
// an invoice is issued for a repair order.
func CopyTo(source []models.LineItem, kind enums.DocumentKind, documentID uuid.UUID) []models.LineItem {
	copied := make([]models.LineItem, 0, len(source))
	for i, item := range source {
		copied = append(copied, models.LineItem{
			ID:             uuid.New(),
			DocumentKind:   kind,
			DocumentID:     documentID,
			Position:       i + 1,
			ItemType:       item.ItemType,
			ItemID:         item.ItemID,
			Name:           item.Name,
			Unit:           item.Unit,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	return copied
}

// PricingLines extracts calculator inputs from stored lines.
func PricingLines(items []models.LineItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{Qty: item.Qty, UnitPriceCents: item.UnitPriceCents})
	}
	return lines
}

// PartDemands folds the part lines of a document into per-item quantities.
// Service lines never consume stock.
type Demand struct {
	ItemID uuid.UUID
	Qty    int64
}

func PartDemands(items []models.LineItem) []Demand {
	var demands []Demand
	for _, item := range items {
		if !item.ItemType.ConsumesStock() {
			continue
		}
		demands = append(demands, Demand{ItemID: item.ItemID, Qty: item.Qty})
	}
	return demands
}

// Repository persists document lines in the shared line_items table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Replace(ctx context.Context, kind enums.DocumentKind, documentID uuid.UUID, items []models.LineItem) error
	List(ctx context.Context, kind enums.DocumentKind, documentID uuid.UUID) ([]models.LineItem, error)
	DeleteForDocument(ctx context.Context, kind enums.DocumentKind, documentID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a line item repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Replace(ctx context.Context, kind enums.DocumentKind, documentID uuid.UUID, items []models.LineItem) error {
	if err := r.DeleteForDocument(ctx, kind, documentID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) List(ctx context.Context, kind enums.DocumentKind, documentID uuid.UUID) ([]models.LineItem, error) {
	var items []models.LineItem
	err := r.db.WithContext(ctx).
		Where("document_kind = ? AND document_id = ?", kind, documentID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) DeleteForDocument(ctx context.Context, kind enums.DocumentKind, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_kind = ? AND document_id = ?", kind, documentID).
		Delete(&models.LineItem{}).Error
}
