package models

import "github.com/shopspring/decimal"

// MoneyScale is the number of decimal places stored for every amount.
const MoneyScale = 2

// RoundMoney rounds to currency scale.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// LineTotal is unitPrice × quantity at currency scale.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

// ClampNonNegative floors d at zero.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
