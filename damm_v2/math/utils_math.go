package math

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

var q64 = decimal.NewFromBigInt(shared.OneQ64, 0)

// Q64ToDecimal turns a Q64.64 value into a decimal. A negative decimalPlaces
// keeps the full division precision.
func Q64ToDecimal(num *big.Int, decimalPlaces int32) decimal.Decimal {
	if num == nil {
		return decimal.Zero
	}
	out := decimal.NewFromBigInt(num, 0).Div(q64)
	if decimalPlaces >= 0 {
		return out.Round(decimalPlaces)
	}
	return out
}

// DecimalToQ64 is the inverse of Q64ToDecimal, flooring the fractional bits.
func DecimalToQ64(num decimal.Decimal) *big.Int {
	return num.Mul(q64).Floor().BigInt()
}
