package pricing

import "github.com/shopspring/decimal"

var (
	taxRate               = decimal.RequireFromString("0.08")
	flatShipping          = decimal.RequireFromString("10.00")
	freeShippingThreshold = decimal.RequireFromString("100.00")
)

// Totals breaks an order amount into its charged components.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals applies the 8% tax and the flat shipping fee, which is
// waived once the subtotal strictly exceeds the free shipping threshold.
// At exactly the threshold shipping is still charged.
func ComputeTotals(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero.Round(2)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping).Round(2),
	}
}
