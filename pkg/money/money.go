package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Paise is an amount in the smallest currency unit. All cart and order
// arithmetic happens in paise so totals never accumulate float drift; only
// the boundary with the upstream price feed converts.
type Paise int64

var hundred = decimal.NewFromInt(100)

// FromRupees converts a rupee amount from the upstream feed into paise,
// rounding half-up at the second decimal place.
func FromRupees(rupees decimal.Decimal) Paise {
	return Paise(rupees.Mul(hundred).Round(0).IntPart())
}

// FromRupeeFloat converts a raw JSON number of rupees into paise.
func FromRupeeFloat(rupees float64) Paise {
	return FromRupees(decimal.NewFromFloat(rupees))
}

// Rupees returns the decimal rupee representation for display layers.
func (p Paise) Rupees() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(hundred)
}

// Mul scales the amount by a line quantity.
func (p Paise) Mul(qty int) Paise {
	return p * Paise(qty)
}

func (p Paise) String() string {
	return fmt.Sprintf("%s INR", p.Rupees().StringFixed(2))
}
