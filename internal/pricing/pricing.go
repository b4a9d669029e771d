package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Line is the minimal priced input the calculator needs.
type Line struct {
	Qty            int64
	UnitPriceCents int64
}

// Totals is the full monetary breakdown of a document, in minor units.
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
}

// LineTotalCents returns qty times unit price. Both factors are integers so
// no rounding happens at the line level.
func LineTotalCents(qty, unitPriceCents int64) int64 {
	return qty * unitPriceCents
}

// ComputeTotals derives the document totals from its lines. The discount
// applies to the subtotal, tax applies to the discounted base, and each
// percentage product is rounded half-up to a whole minor unit.
func ComputeTotals(lines []Line, discountPercent, taxPercent decimal.Decimal) (Totals, error) {
	if err := validatePercent("discount_percent", discountPercent); err != nil {
		return Totals{}, err
	}
	if err := validatePercent("tax_percent", taxPercent); err != nil {
		return Totals{}, err
	}

	var subtotal int64
	for i, line := range lines {
		if line.Qty <= 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: qty must be positive", i+1))
		}
		if line.UnitPriceCents < 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price must not be negative", i+1))
		}
		subtotal += LineTotalCents(line.Qty, line.UnitPriceCents)
	}

	discount := roundedShare(subtotal, discountPercent)
	taxable := subtotal - discount
	tax := roundedShare(taxable, taxPercent)

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TaxCents:      tax,
		TotalCents:    taxable + tax,
	}, nil
}

// roundedShare computes base * percent / 100 rounded half-up.
func roundedShare(baseCents int64, percent decimal.Decimal) int64 {
	if percent.IsZero() || baseCents == 0 {
		return 0
	}
	return decimal.NewFromInt(baseCents).
		Mul(percent).
		Div(oneHundred).
		Round(0).
		IntPart()
}

func validatePercent(field string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must be between 0 and 100").
			WithDetails(map[string]any{field: value.String()})
	}
	return nil
}
