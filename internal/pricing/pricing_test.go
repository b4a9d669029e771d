package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
)

func pct(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeTotals_TaxOnly(t *testing.T) {
	lines := []Line{
		{Qty: 2, UnitPriceCents: 50000},
		{Qty: 1, UnitPriceCents: 150000},
	}

	totals, err := ComputeTotals(lines, decimal.Zero, pct("10"))
	require.NoError(t, err)

	assert.Equal(t, int64(250000), totals.SubtotalCents)
	assert.Equal(t, int64(0), totals.DiscountCents)
	assert.Equal(t, int64(25000), totals.TaxCents)
	assert.Equal(t, int64(275000), totals.TotalCents)
}

func TestComputeTotals_DiscountBeforeTax(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPriceCents: 100000}}

	totals, err := ComputeTotals(lines, pct("10"), pct("8"))
	require.NoError(t, err)

	assert.Equal(t, int64(100000), totals.SubtotalCents)
	assert.Equal(t, int64(10000), totals.DiscountCents)
	assert.Equal(t, int64(7200), totals.TaxCents)
	assert.Equal(t, int64(97200), totals.TotalCents)
}

func TestComputeTotals_RoundsHalfUp(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPriceCents: 101}}

	totals, err := ComputeTotals(lines, pct("2.5"), decimal.Zero)
	require.NoError(t, err)

	// 101 * 2.5% = 2.525, rounds up to 3.
	assert.Equal(t, int64(3), totals.DiscountCents)
	assert.Equal(t, int64(98), totals.TotalCents)
}

func TestComputeTotals_EmptyLines(t *testing.T) {
	totals, err := ComputeTotals(nil, pct("10"), pct("10"))
	require.NoError(t, err)

	assert.Equal(t, Totals{}, totals)
}

func TestComputeTotals_RejectsBadInputs(t *testing.T) {
	cases := []struct {
		name     string
		lines    []Line
		discount decimal.Decimal
		tax      decimal.Decimal
	}{
		{name: "zero qty", lines: []Line{{Qty: 0, UnitPriceCents: 100}}, discount: decimal.Zero, tax: decimal.Zero},
		{name: "negative qty", lines: []Line{{Qty: -1, UnitPriceCents: 100}}, discount: decimal.Zero, tax: decimal.Zero},
		{name: "negative unit price", lines: []Line{{Qty: 1, UnitPriceCents: -100}}, discount: decimal.Zero, tax: decimal.Zero},
		{name: "negative discount", lines: nil, discount: pct("-1"), tax: decimal.Zero},
		{name: "discount above hundred", lines: nil, discount: pct("100.01"), tax: decimal.Zero},
		{name: "tax above hundred", lines: nil, discount: decimal.Zero, tax: pct("101")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotals(tc.lines, tc.discount, tc.tax)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestLineTotalCents(t *testing.T) {
	assert.Equal(t, int64(0), LineTotalCents(3, 0))
	assert.Equal(t, int64(450000), LineTotalCents(3, 150000))
}
