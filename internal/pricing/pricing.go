// Package pricing holds the VAT arithmetic shared by the cart, checkout and
// reports. All functions return full precision; only Round is meant for
// display.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PriceWithVat returns base + base*vatPercent/100.
func PriceWithVat(base decimal.Decimal, vatPercent decimal.Decimal) decimal.Decimal {
	return base.Add(VatAmount(base, vatPercent))
}

// VatAmount returns the VAT portion of base.
func VatAmount(base decimal.Decimal, vatPercent decimal.Decimal) decimal.Decimal {
	return base.Mul(vatPercent).Div(hundred)
}

func LineTotal(base decimal.Decimal, vatPercent decimal.Decimal, qty int) decimal.Decimal {
	return PriceWithVat(base, vatPercent).Mul(decimal.NewFromInt(int64(qty)))
}

func LineSubtotal(base decimal.Decimal, qty int) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(int64(qty)))
}

func LineVat(base decimal.Decimal, vatPercent decimal.Decimal, qty int) decimal.Decimal {
	return VatAmount(LineSubtotal(base, qty), vatPercent)
}

// ChangeDue is max(0, paid-total).
func ChangeDue(paid decimal.Decimal, total decimal.Decimal) decimal.Decimal {
	change := paid.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
