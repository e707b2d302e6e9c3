package models

import "github.com/shopspring/decimal"

// Column limits of the money fields: decimal(6,2) for prices, decimal(8,2)
// for order totals.
var (
	MaxPrice      = decimal.RequireFromString("9999.99")
	MaxOrderTotal = decimal.RequireFromString("999999.99")
)

const moneyScale = 2

// Money is a price or total. It is stored like decimal.Decimal and always
// rendered in JSON with two decimal places.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// RequireMoney parses s and panics if it is not a number.
func RequireMoney(s string) Money {
	return Money{Decimal: decimal.RequireFromString(s)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(moneyScale) + `"`), nil
}

// ValidPrice reports whether d can be stored as a menu or line price.
func ValidPrice(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(MaxPrice) && d.Exponent() >= -moneyScale
}
