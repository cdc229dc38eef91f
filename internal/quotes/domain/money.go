package domain

import "github.com/shopspring/decimal"

var (
	// VATRate is the flat UAE VAT rate.
	VATRate = decimal.RequireFromString("0.05")

	half    = decimal.RequireFromString("0.5")
	hundred = decimal.NewFromInt(100)
)

// Round2 rounds half up to two decimals: 0.125 -> 0.13, -0.125 -> -0.12.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// Totals is the derived money summary of a quotation.
type Totals struct {
	Subtotal      decimal.Decimal
	VAT           decimal.Decimal
	Delivery      decimal.Decimal
	GrandTotal    decimal.Decimal
	TotalCost     decimal.Decimal
	Profit        decimal.Decimal
	MarginPercent decimal.Decimal
}

// Percent returns part/whole*100 rounded to two decimals, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return Round2(part.Mul(hundred).Div(whole))
}
