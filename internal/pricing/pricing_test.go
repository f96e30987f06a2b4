package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals_UnderThresholdPaysShipping(t *testing.T) {
	totals := ComputeTotals(decimal.RequireFromString("50.00"))

	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("4.00")), totals.Tax.String())
	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("10.00")), totals.Shipping.String())
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("64.00")), totals.Total.String())
}

func TestComputeTotals_ExactThresholdStillPaysShipping(t *testing.T) {
	totals := ComputeTotals(decimal.RequireFromString("100.00"))

	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("10.00")), totals.Shipping.String())
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("118.00")), totals.Total.String())
}

func TestComputeTotals_OverThresholdWaivesShipping(t *testing.T) {
	totals := ComputeTotals(decimal.RequireFromString("100.01"))

	assert.True(t, totals.Shipping.IsZero(), totals.Shipping.String())
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("108.01")), totals.Total.String())
}

func TestComputeTotals_RoundsTaxToCents(t *testing.T) {
	totals := ComputeTotals(decimal.RequireFromString("10.37"))

	// 10.37 * 0.08 = 0.8296, charged as 0.83.
	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("0.83")), totals.Tax.String())
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("21.20")), totals.Total.String())
}

func TestComputeTotals_ZeroSubtotal(t *testing.T) {
	totals := ComputeTotals(decimal.Zero)

	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("10.00")))
}
