package math

import (
	"fmt"
	"math/big"

	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// Price curve of the constant product pool. Every sqrt price and liquidity is
// a Q64.64 value; token amounts are raw u64 integers.

// GetNextSqrtPriceFromAmountInBRoundingDown moves the price up by amount/L.
func GetNextSqrtPriceFromAmountInBRoundingDown(sqrtPrice, liquidity, amount *big.Int) (*big.Int, error) {
	quotient, err := fp.ShlDiv(amount, liquidity, shared.LiquidityScale, shared.RoundingDown)
	if err != nil {
		return nil, err
	}
	next := new(big.Int).Add(sqrtPrice, quotient)
	return fp.ToU128(next)
}

// GetNextSqrtPriceFromAmountOutBRoundingDown moves the price down so that
// amount of token B leaves the pool.
func GetNextSqrtPriceFromAmountOutBRoundingDown(sqrtPrice, liquidity, amount *big.Int) (*big.Int, error) {
	quotient, err := fp.ShlDiv(amount, liquidity, shared.LiquidityScale, shared.RoundingUp)
	if err != nil {
		return nil, err
	}
	if quotient.Cmp(sqrtPrice) >= 0 {
		return nil, fmt.Errorf("%w: output drains token b", shared.ErrPriceOutOfBounds)
	}
	return new(big.Int).Sub(sqrtPrice, quotient), nil
}

// GetNextSqrtPriceFromAmountInARoundingUp computes L*sP / (L + amount*sP).
func GetNextSqrtPriceFromAmountInARoundingUp(sqrtPrice, liquidity, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPrice), nil
	}
	product, err := fp.CheckedMul(amount, sqrtPrice)
	if err != nil {
		return nil, err
	}
	denominator, err := fp.CheckedAdd(liquidity, product)
	if err != nil {
		return nil, err
	}
	next, err := fp.MulDiv(liquidity, sqrtPrice, denominator, shared.RoundingUp)
	if err != nil {
		return nil, err
	}
	return fp.ToU128(next)
}

// GetNextSqrtPriceFromAmountOutARoundingUp computes L*sP / (L - amount*sP).
func GetNextSqrtPriceFromAmountOutARoundingUp(sqrtPrice, liquidity, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPrice), nil
	}
	product, err := fp.CheckedMul(amount, sqrtPrice)
	if err != nil {
		return nil, err
	}
	if product.Cmp(liquidity) >= 0 {
		return nil, fmt.Errorf("%w: output drains token a", shared.ErrPriceOutOfBounds)
	}
	denominator := new(big.Int).Sub(liquidity, product)
	next, err := fp.MulDiv(liquidity, sqrtPrice, denominator, shared.RoundingUp)
	if err != nil {
		return nil, err
	}
	return fp.ToU128(next)
}

// GetNextSqrtPriceFromInput returns the sqrt price after amountIn enters the
// pool. Rounding always favors the pool.
func GetNextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn *big.Int, aForB bool) (*big.Int, error) {
	if err := checkCurveState(sqrtPrice, liquidity); err != nil {
		return nil, err
	}
	if aForB {
		return GetNextSqrtPriceFromAmountInARoundingUp(sqrtPrice, liquidity, amountIn)
	}
	return GetNextSqrtPriceFromAmountInBRoundingDown(sqrtPrice, liquidity, amountIn)
}

// GetNextSqrtPriceFromOutput returns the sqrt price after amountOut leaves the pool.
func GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut *big.Int, aForB bool) (*big.Int, error) {
	if err := checkCurveState(sqrtPrice, liquidity); err != nil {
		return nil, err
	}
	if aForB {
		return GetNextSqrtPriceFromAmountOutBRoundingDown(sqrtPrice, liquidity, amountOut)
	}
	return GetNextSqrtPriceFromAmountOutARoundingUp(sqrtPrice, liquidity, amountOut)
}

func checkCurveState(sqrtPrice, liquidity *big.Int) error {
	if sqrtPrice.Sign() <= 0 {
		return fmt.Errorf("%w: sqrt price must be positive", shared.ErrInvalidInput)
	}
	if liquidity.Sign() <= 0 {
		return shared.ErrInsufficientLiquidity
	}
	return nil
}

// GetAmountBFromLiquidityDelta is L * (upper - lower) in raw token B units.
func GetAmountBFromLiquidityDelta(lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int, rounding shared.Rounding) (*big.Int, error) {
	amount, err := getDeltaAmountBUnsigned(lowerSqrtPrice, upperSqrtPrice, liquidity, rounding)
	if err != nil {
		return nil, err
	}
	return fp.ToU64(amount)
}

func getDeltaAmountBUnsigned(lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int, rounding shared.Rounding) (*big.Int, error) {
	deltaSqrtPrice, err := fp.CheckedSub(upperSqrtPrice, lowerSqrtPrice)
	if err != nil {
		return nil, err
	}
	prod, err := fp.CheckedMul(liquidity, deltaSqrtPrice)
	if err != nil {
		return nil, err
	}
	if rounding == shared.RoundingUp {
		return fp.DivCeil(prod, new(big.Int).Lsh(big.NewInt(1), shared.LiquidityScale))
	}
	return prod.Rsh(prod, shared.LiquidityScale), nil
}

// GetAmountAFromLiquidityDelta is L * (upper - lower) / (lower * upper).
func GetAmountAFromLiquidityDelta(lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int, rounding shared.Rounding) (*big.Int, error) {
	amount, err := getDeltaAmountAUnsigned(lowerSqrtPrice, upperSqrtPrice, liquidity, rounding)
	if err != nil {
		return nil, err
	}
	return fp.ToU64(amount)
}

func getDeltaAmountAUnsigned(lowerSqrtPrice, upperSqrtPrice, liquidity *big.Int, rounding shared.Rounding) (*big.Int, error) {
	numerator, err := fp.CheckedSub(upperSqrtPrice, lowerSqrtPrice)
	if err != nil {
		return nil, err
	}
	denominator, err := fp.CheckedMul(lowerSqrtPrice, upperSqrtPrice)
	if err != nil {
		return nil, err
	}
	if denominator.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero sqrt price", shared.ErrDivisionByZero)
	}
	return fp.MulDiv(liquidity, numerator, denominator, rounding)
}

// GetLiquidityDeltaFromAmountA is amountA * lower * upper / (upper - lower),
// rounded down.
func GetLiquidityDeltaFromAmountA(amountA, lowerSqrtPrice, upperSqrtPrice *big.Int) (*big.Int, error) {
	if amountA.Sign() == 0 {
		return nil, fmt.Errorf("%w: token a", shared.ErrAmountIsZero)
	}
	denominator, err := priceRangeWidth(lowerSqrtPrice, upperSqrtPrice)
	if err != nil {
		return nil, err
	}
	product := new(big.Int).Mul(amountA, lowerSqrtPrice)
	product.Mul(product, upperSqrtPrice)
	if product.BitLen() > 512 {
		return nil, fmt.Errorf("%w: liquidity product exceeds u512", shared.ErrOverflow)
	}
	return fp.ToU128(product.Quo(product, denominator))
}

// GetLiquidityDeltaFromAmountB is (amountB << 128) / (upper - lower), rounded down.
func GetLiquidityDeltaFromAmountB(amountB, lowerSqrtPrice, upperSqrtPrice *big.Int) (*big.Int, error) {
	if amountB.Sign() == 0 {
		return nil, fmt.Errorf("%w: token b", shared.ErrAmountIsZero)
	}
	denominator, err := priceRangeWidth(lowerSqrtPrice, upperSqrtPrice)
	if err != nil {
		return nil, err
	}
	product := new(big.Int).Lsh(amountB, shared.LiquidityScale)
	if product.BitLen() > 512 {
		return nil, fmt.Errorf("%w: liquidity product exceeds u512", shared.ErrOverflow)
	}
	return fp.ToU128(product.Quo(product, denominator))
}

func priceRangeWidth(lowerSqrtPrice, upperSqrtPrice *big.Int) (*big.Int, error) {
	if lowerSqrtPrice.Cmp(upperSqrtPrice) >= 0 {
		return nil, fmt.Errorf("%w: lower sqrt price %s must be below upper %s", shared.ErrInvalidInput, lowerSqrtPrice, upperSqrtPrice)
	}
	return new(big.Int).Sub(upperSqrtPrice, lowerSqrtPrice), nil
}

// ValidateSqrtPrice rejects a price outside [sqrtMinPrice, sqrtMaxPrice].
func ValidateSqrtPrice(sqrtPrice, sqrtMinPrice, sqrtMaxPrice *big.Int) error {
	if sqrtPrice.Cmp(sqrtMinPrice) < 0 || sqrtPrice.Cmp(sqrtMaxPrice) > 0 {
		return fmt.Errorf("%w: %s not in [%s, %s]", shared.ErrPriceOutOfBounds, sqrtPrice, sqrtMinPrice, sqrtMaxPrice)
	}
	return nil
}
