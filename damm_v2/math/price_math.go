package math

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// CalculateInitSqrtPrice returns the sqrt price at which tokenAAmount and
// tokenBAmount are deposited at the same liquidity over [minSqrtPrice, maxSqrtPrice].
//
// With P = minSqrtPrice, Q = maxSqrtPrice and R = 2^128 the price s solves
//
//	a*Q*s^2 + (b*R - a*Q*P)*s - b*R*Q = 0
//
// which is the deposit equality a*s*Q/(Q-s) = b*R/(s-P). The positive root is
// taken and floored.
func CalculateInitSqrtPrice(tokenAAmount, tokenBAmount, minSqrtPrice, maxSqrtPrice *big.Int) (*big.Int, error) {
	if tokenAAmount == nil || tokenBAmount == nil || tokenAAmount.Sign() <= 0 || tokenBAmount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: deposit amounts must be positive", shared.ErrInvalidInput)
	}
	if _, err := fp.ToU64(tokenAAmount); err != nil {
		return nil, err
	}
	if _, err := fp.ToU64(tokenBAmount); err != nil {
		return nil, err
	}
	if _, err := priceRangeWidth(minSqrtPrice, maxSqrtPrice); err != nil {
		return nil, err
	}

	r := new(big.Int).Lsh(big.NewInt(1), shared.LiquidityScale)
	aq := new(big.Int).Mul(tokenAAmount, maxSqrtPrice)
	aqp := new(big.Int).Mul(aq, minSqrtPrice)
	br := new(big.Int).Mul(tokenBAmount, r)

	// b^2 - 4ac with c = -b*R*Q
	linear := new(big.Int).Sub(br, aqp)
	discriminant := new(big.Int).Mul(linear, linear)
	product := new(big.Int).Mul(aq, tokenBAmount)
	product.Mul(product, maxSqrtPrice)
	product.Mul(product, r)
	product.Lsh(product, 2)
	discriminant.Add(discriminant, product)
	if discriminant.Sign() < 0 {
		return nil, shared.ErrNegativeDiscriminant
	}
	root, err := fp.Sqrt(discriminant)
	if err != nil {
		return nil, err
	}

	numerator := new(big.Int).Neg(linear)
	numerator.Add(numerator, root)
	if numerator.Sign() <= 0 {
		return nil, fmt.Errorf("%w: no positive root", shared.ErrNegativeDiscriminant)
	}
	sqrtPrice := numerator.Quo(numerator, new(big.Int).Lsh(aq, 1))
	if err := ValidateSqrtPrice(sqrtPrice, minSqrtPrice, maxSqrtPrice); err != nil {
		return nil, err
	}
	return sqrtPrice, nil
}

// GetPriceFromSqrtPrice converts a Q64.64 sqrt price to a UI price of token A
// in token B.
func GetPriceFromSqrtPrice(sqrtPrice *big.Int, tokenADecimal, tokenBDecimal uint8) decimal.Decimal {
	s := Q64ToDecimal(sqrtPrice, -1)
	return s.Mul(s).Shift(int32(tokenADecimal) - int32(tokenBDecimal))
}

// GetSqrtPriceFromPrice converts a UI price to a Q64.64 sqrt price, flooring.
// The root is taken on integers so the result does not depend on decimal
// division precision.
func GetSqrtPriceFromPrice(price decimal.Decimal, tokenADecimal, tokenBDecimal uint8) (*big.Int, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price %s", shared.ErrInvalidInput, price)
	}
	scaled := price.Shift(int32(tokenBDecimal) - int32(tokenADecimal)).
		Mul(decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), shared.LiquidityScale), 0)).
		Floor().
		BigInt()
	sqrtPrice, err := fp.Sqrt(scaled)
	if err != nil {
		return nil, err
	}
	return fp.ToU128(sqrtPrice)
}
