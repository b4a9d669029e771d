package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/inventory"
	"github.com/dvthanh/garahub-backend/internal/ledger"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

type itemCreateRequest struct {
	Name              string `json:"name" validate:"required,max=255"`
	CategoryID        string `json:"category_id" validate:"required"`
	Unit              string `json:"unit" validate:"required,max=32"`
	InitialQuantity   int64  `json:"initial_quantity" validate:"min=0"`
	CostPriceCents    int64  `json:"cost_price_cents" validate:"min=0"`
	SellingPriceCents int64  `json:"selling_price_cents" validate:"min=0"`
	MinQuantity       *int64 `json:"min_quantity" validate:"omitempty,min=0"`
}

func (r itemCreateRequest) toInput() (inventory.CreateItemInput, error) {
	categoryID, err := uuid.Parse(strings.TrimSpace(r.CategoryID))
	if err != nil {
		return inventory.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id")
	}

	return inventory.CreateItemInput{
		Name:              strings.TrimSpace(r.Name),
		CategoryID:        categoryID,
		Unit:              strings.TrimSpace(r.Unit),
		InitialQuantity:   r.InitialQuantity,
		CostPriceCents:    r.CostPriceCents,
		SellingPriceCents: r.SellingPriceCents,
		MinQuantity:       r.MinQuantity,
	}, nil
}

type itemUpdateRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=255"`
	CategoryID        *string `json:"category_id"`
	Unit              *string `json:"unit" validate:"omitempty,min=1,max=32"`
	CostPriceCents    *int64  `json:"cost_price_cents" validate:"omitempty,min=0"`
	SellingPriceCents *int64  `json:"selling_price_cents" validate:"omitempty,min=0"`
	MinQuantity       *int64  `json:"min_quantity" validate:"omitempty,min=0"`
}

func (r itemUpdateRequest) toInput() (inventory.UpdateItemInput, error) {
	input := inventory.UpdateItemInput{
		Name:              r.Name,
		Unit:              r.Unit,
		CostPriceCents:    r.CostPriceCents,
		SellingPriceCents: r.SellingPriceCents,
		MinQuantity:       r.MinQuantity,
	}
	if r.CategoryID != nil {
		categoryID, err := uuid.Parse(strings.TrimSpace(*r.CategoryID))
		if err != nil {
			return inventory.UpdateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id")
		}
		input.CategoryID = &categoryID
	}
	return input, nil
}

type stockAdjustRequest struct {
	Delta int64   `json:"delta" validate:"required"`
	Type  string  `json:"type" validate:"required"`
	Notes *string `json:"notes"`
}

func (r stockAdjustRequest) toInput(itemID uuid.UUID) (inventory.AdjustStockInput, error) {
	movementType, err := enums.ParseStockMovementType(strings.TrimSpace(r.Type))
	if err != nil {
		return inventory.AdjustStockInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock movement type")
	}

	return inventory.AdjustStockInput{
		ItemID: itemID,
		Delta:  r.Delta,
		Type:   movementType,
		Notes:  r.Notes,
	}, nil
}

// ItemCreate adds an inventory item and records its opening stock.
func ItemCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload itemCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ItemGet returns a single inventory item by id.
func ItemGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemList returns a cursor page of items, filterable by category, free-text
// query and the low-stock flag.
func ItemList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := inventory.Filters{
			CategoryID:   categoryID,
			Query:        validators.ParseQueryString(r, "q"),
			LowStockOnly: validators.ParseQueryString(r, "low_stock") == "true",
		}

		list, err := svc.ListItems(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// ItemUpdate applies partial edits to an item. Quantity is excluded; stock
// only moves through adjustments and reconciliation.
func ItemUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// ItemDelete removes an item that no line item references.
func ItemDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ItemAdjustStock applies a manual stock correction or restock and records
// the movement in the ledger.
func ItemAdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.AdjustStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// ItemMovements lists the stock ledger for one item in chronological order.
func ItemMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.ListByItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movements)
	}
}
