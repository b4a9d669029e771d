package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dvthanh/garahub-backend/api/validators"
	"github.com/dvthanh/garahub-backend/internal/lineitems"
	"github.com/dvthanh/garahub-backend/pkg/enums"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/pagination"
)

// lineItemRequest is the wire shape shared by quotation and repair payloads.
// ItemID points at an inventory item for parts and a catalog service for
// labor lines.
type lineItemRequest struct {
	Type           string `json:"type" validate:"required"`
	ItemID         string `json:"item_id" validate:"required"`
	Qty            int64  `json:"qty" validate:"required,min=1"`
	UnitPriceCents *int64 `json:"unit_price_cents" validate:"omitempty,min=0"`
}

func lineInputs(lines []lineItemRequest) ([]lineitems.Input, error) {
	inputs := make([]lineitems.Input, 0, len(lines))
	for i, line := range lines {
		lineType, err := enums.ParseLineItemType(strings.TrimSpace(line.Type))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid line item type").WithDetails(map[string]any{"index": i})
		}
		itemID, err := uuid.Parse(strings.TrimSpace(line.ItemID))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid line item_id").WithDetails(map[string]any{"index": i})
		}
		inputs = append(inputs, lineitems.Input{
			Type:           lineType,
			ItemID:         itemID,
			Qty:            line.Qty,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return inputs, nil
}

// parsePercent accepts percentages as decimal strings ("8.5") and bounds
// them to [0, 100].
func parsePercent(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percent must be a decimal string").WithDetails(map[string]any{"field": field})
	}
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "percent out of range").WithDetails(map[string]any{"field": field, "min": 0, "max": 100})
	}
	return value, nil
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: validators.ParseQueryString(r, "cursor"),
	}, nil
}
