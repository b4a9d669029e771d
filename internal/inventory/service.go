package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dvthanh/garahub-backend/pkg/db/models"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/outbox"
	"github.com/dvthanh/garahub-backend/pkg/pagination"

	"github.com/dvthanh/garahub-backend/internal/ledger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type skuGenerator interface {
	NextSKU(ctx context.Context, tx *gorm.DB, categoryName string) (string, error)
}

type movementRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input ledger.RecordMovementInput) (*models.StockMovement, error)
}

// Service manages inventory items and every stock mutation.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context, params pagination.Params, filters Filters) (*ItemList, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.InventoryItem, error)

	Consume(ctx context.Context, tx *gorm.DB, kind enums.DocumentKind, referenceID uuid.UUID, demands []Demand) ([]Shortfall, error)
	Restore(ctx context.Context, tx *gorm.DB, kind enums.DocumentKind, referenceID uuid.UUID, demands []Demand) error
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	skus      skuGenerator
	movements movementRecorder
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, skus skuGenerator, movements movementRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if skus == nil {
		return nil, fmt.Errorf("sku generator required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement recorder required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, skus: skus, movements: movements}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if strings.TrimSpace(input.Unit) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit required")
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity must not be negative")
	}
	if input.CostPriceCents < 0 || input.SellingPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}
	if input.MinQuantity != nil && *input.MinQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min quantity must not be negative")
	}

	item := &models.InventoryItem{
		ID:                uuid.New(),
		Name:              name,
		CategoryID:        input.CategoryID,
		Unit:              strings.TrimSpace(input.Unit),
		Quantity:          input.InitialQuantity,
		CostPriceCents:    input.CostPriceCents,
		SellingPriceCents: input.SellingPriceCents,
		MinQuantity:       input.MinQuantity,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		category, err := repo.CategoryByID(ctx, input.CategoryID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeConflict, "category does not exist")
			}
			return err
		}
		sku, err := s.skus.NextSKU(ctx, tx, category.Name)
		if err != nil {
			return err
		}
		item.SKU = sku
		if _, err := repo.Create(ctx, item); err != nil {
			return err
		}
		if input.InitialQuantity > 0 {
			if _, err := s.movements.Record(ctx, tx, ledger.RecordMovementInput{
				ItemID:     item.ID,
				Type:       enums.StockMovementRestock,
				QtyDelta:   input.InitialQuantity,
				QtyApplied: input.InitialQuantity,
				QtyAfter:   input.InitialQuantity,
			}); err != nil {
				return err
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			Data:          item,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, params pagination.Params, filters Filters) (*ItemList, error) {
	filters.Query = strings.TrimSpace(filters.Query)
	return s.repo.List(ctx, params, filters)
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.InventoryItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name must not be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Unit != nil {
		if strings.TrimSpace(*input.Unit) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit must not be empty")
		}
		updates["unit"] = strings.TrimSpace(*input.Unit)
	}
	if input.CostPriceCents != nil {
		if *input.CostPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost price must not be negative")
		}
		updates["cost_price_cents"] = *input.CostPriceCents
	}
	if input.SellingPriceCents != nil {
		if *input.SellingPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "selling price must not be negative")
		}
		updates["selling_price_cents"] = *input.SellingPriceCents
	}
	if input.MinQuantity != nil {
		if *input.MinQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min quantity must not be negative")
		}
		updates["min_quantity"] = input.MinQuantity
	}

	var updated *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return err
		}
		if input.CategoryID != nil {
			if _, err := repo.CategoryByID(ctx, *input.CategoryID); err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeConflict, "category does not exist")
				}
				return err
			}
			updates["category_id"] = *input.CategoryID
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		item, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = item
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityChanged,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   id,
			Data:          item,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return err
		}
		references, err := repo.CountReferences(ctx, id)
		if err != nil {
			return err
		}
		if references > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "item is referenced by document lines").
				WithDetails(map[string]any{"reference_count": references})
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEntityDeleted,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   id,
			Data:          map[string]any{"id": id},
			Version:       1,
		})
	})
}

func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.InventoryItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Type != enums.StockMovementAdjustment && input.Type != enums.StockMovementRestock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement type must be adjustment or restock")
	}
	if input.Type == enums.StockMovementRestock && input.Delta <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock delta must be positive")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}

	var adjusted *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindByIDForUpdate(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return err
		}

		applied := input.Delta
		after := item.Quantity + input.Delta
		if after < 0 {
			applied = -item.Quantity
			after = 0
		}
		if err := repo.SetQuantity(ctx, input.ItemID, after); err != nil {
			return err
		}
		item.Quantity = after
		adjusted = item

		movement, err := s.movements.Record(ctx, tx, ledger.RecordMovementInput{
			ItemID:     input.ItemID,
			Type:       input.Type,
			QtyDelta:   input.Delta,
			QtyApplied: applied,
			QtyAfter:   after,
			Notes:      input.Notes,
		})
		if err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockReconciled,
			AggregateType: enums.AggregateStockMovement,
			AggregateID:   movement.ID,
			Data:          movement,
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// Consume decrements stock for the given demands inside the caller's
// transaction. Demands are merged per item and processed in item id order so
// concurrent reconciliations lock rows in the same sequence. Decrements clamp
// at zero; shortfalls are reported back, never treated as an error.
func (s *service) Consume(ctx context.Context, tx *gorm.DB, kind enums.DocumentKind, referenceID uuid.UUID, demands []Demand) ([]Shortfall, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	merged, err := mergeDemands(demands)
	if err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)
	var shortfalls []Shortfall
	for _, demand := range merged {
		item, err := repo.FindByIDForUpdate(ctx, demand.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "consumed item does not exist").
					WithDetails(map[string]any{"item_id": demand.ItemID})
			}
			return nil, err
		}

		applied := demand.Qty
		after := item.Quantity - demand.Qty
		if after < 0 {
			applied = item.Quantity
			after = 0
			shortfalls = append(shortfalls, Shortfall{
				ItemID:    item.ID,
				SKU:       item.SKU,
				Name:      item.Name,
				Requested: demand.Qty,
				Applied:   applied,
			})
		}
		if err := repo.SetQuantity(ctx, demand.ItemID, after); err != nil {
			return nil, err
		}
		if _, err := s.movements.Record(ctx, tx, ledger.RecordMovementInput{
			ItemID:        demand.ItemID,
			Type:          enums.StockMovementRepairConsumption,
			QtyDelta:      -demand.Qty,
			QtyApplied:    -applied,
			QtyAfter:      after,
			ReferenceKind: &kind,
			ReferenceID:   &referenceID,
		}); err != nil {
			return nil, err
		}
	}
	return shortfalls, nil
}

// Restore returns previously consumed quantities to stock. Only what was
// actually applied at consumption time is restored, so a clamped consumption
// never creates stock out of thin air.
func (s *service) Restore(ctx context.Context, tx *gorm.DB, kind enums.DocumentKind, referenceID uuid.UUID, demands []Demand) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	merged, err := mergeDemands(demands)
	if err != nil {
		return err
	}

	repo := s.repo.WithTx(tx)
	for _, demand := range merged {
		item, err := repo.FindByIDForUpdate(ctx, demand.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// Item was removed after consumption; nothing to restore onto.
				continue
			}
			return err
		}
		after := item.Quantity + demand.Qty
		if err := repo.SetQuantity(ctx, demand.ItemID, after); err != nil {
			return err
		}
		if _, err := s.movements.Record(ctx, tx, ledger.RecordMovementInput{
			ItemID:        demand.ItemID,
			Type:          enums.StockMovementRestoreImport,
			QtyDelta:      demand.Qty,
			QtyApplied:    demand.Qty,
			QtyAfter:      after,
			ReferenceKind: &kind,
			ReferenceID:   &referenceID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func mergeDemands(demands []Demand) ([]Demand, error) {
	byItem := map[uuid.UUID]int64{}
	for _, demand := range demands {
		if demand.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "demand item id required")
		}
		if demand.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "demand qty must be positive")
		}
		byItem[demand.ItemID] += demand.Qty
	}

	merged := make([]Demand, 0, len(byItem))
	for itemID, qty := range byItem {
		merged = append(merged, Demand{ItemID: itemID, Qty: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ItemID.String() < merged[j].ItemID.String()
	})
	return merged, nil
}
