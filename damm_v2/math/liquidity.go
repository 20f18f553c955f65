package math

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// GetLiquidityDelta returns the liquidity that maxAmountTokenA and
// maxAmountTokenB can both fund at sqrtPrice. Token A covers [sqrtPrice, max]
// and token B covers [min, sqrtPrice]; the smaller liquidity binds. At a
// bound only the token still in range is used.
func GetLiquidityDelta(maxAmountTokenA, maxAmountTokenB, sqrtPrice, sqrtMinPrice, sqrtMaxPrice *big.Int) (*big.Int, error) {
	if err := ValidateSqrtPrice(sqrtPrice, sqrtMinPrice, sqrtMaxPrice); err != nil {
		return nil, err
	}
	switch {
	case sqrtPrice.Cmp(sqrtMaxPrice) == 0:
		return GetLiquidityDeltaFromAmountB(maxAmountTokenB, sqrtMinPrice, sqrtPrice)
	case sqrtPrice.Cmp(sqrtMinPrice) == 0:
		return GetLiquidityDeltaFromAmountA(maxAmountTokenA, sqrtPrice, sqrtMaxPrice)
	}
	liquidityFromA, err := GetLiquidityDeltaFromAmountA(maxAmountTokenA, sqrtPrice, sqrtMaxPrice)
	if err != nil {
		return nil, err
	}
	liquidityFromB, err := GetLiquidityDeltaFromAmountB(maxAmountTokenB, sqrtMinPrice, sqrtPrice)
	if err != nil {
		return nil, err
	}
	return fp.Min(liquidityFromA, liquidityFromB), nil
}

// GetDepositQuote prices a deposit of inAmount of one token: the liquidity it
// mints and the amount of the other token that must come with it, rounded up.
func GetDepositQuote(inAmount *big.Int, isTokenA bool, sqrtPrice, sqrtMinPrice, sqrtMaxPrice *big.Int, inputTokenInfo, outputTokenInfo *helpers.TokenInfo) (shared.DepositQuote, error) {
	if inAmount == nil || inAmount.Sign() <= 0 {
		return shared.DepositQuote{}, fmt.Errorf("%w: deposit amount", shared.ErrAmountIsZero)
	}
	if err := ValidateSqrtPrice(sqrtPrice, sqrtMinPrice, sqrtMaxPrice); err != nil {
		return shared.DepositQuote{}, err
	}
	actualAmountIn := CalculateTransferFeeExcludedAmount(inAmount, inputTokenInfo).Amount

	var liquidityDelta, rawOutputAmount *big.Int
	var err error
	if isTokenA {
		liquidityDelta, err = GetLiquidityDeltaFromAmountA(actualAmountIn, sqrtPrice, sqrtMaxPrice)
		if err != nil {
			return shared.DepositQuote{}, err
		}
		rawOutputAmount, err = GetAmountBFromLiquidityDelta(sqrtMinPrice, sqrtPrice, liquidityDelta, shared.RoundingUp)
	} else {
		liquidityDelta, err = GetLiquidityDeltaFromAmountB(actualAmountIn, sqrtMinPrice, sqrtPrice)
		if err != nil {
			return shared.DepositQuote{}, err
		}
		rawOutputAmount, err = GetAmountAFromLiquidityDelta(sqrtPrice, sqrtMaxPrice, liquidityDelta, shared.RoundingUp)
	}
	if err != nil {
		return shared.DepositQuote{}, err
	}

	return shared.DepositQuote{
		ActualInputAmount:   actualAmountIn,
		ConsumedInputAmount: new(big.Int).Set(inAmount),
		LiquidityDelta:      liquidityDelta,
		OutputAmount:        CalculateTransferFeeIncludedAmount(rawOutputAmount, outputTokenInfo).Amount,
	}, nil
}

// GetWithdrawQuote returns the token amounts released by removing
// liquidityDelta, rounded down.
func GetWithdrawQuote(liquidityDelta, sqrtPrice, sqrtMinPrice, sqrtMaxPrice *big.Int, tokenAInfo, tokenBInfo *helpers.TokenInfo) (shared.WithdrawQuote, error) {
	if liquidityDelta == nil || liquidityDelta.Sign() <= 0 {
		return shared.WithdrawQuote{}, fmt.Errorf("%w: liquidity delta", shared.ErrAmountIsZero)
	}
	if err := ValidateSqrtPrice(sqrtPrice, sqrtMinPrice, sqrtMaxPrice); err != nil {
		return shared.WithdrawQuote{}, err
	}
	amountA := big.NewInt(0)
	if sqrtPrice.Cmp(sqrtMaxPrice) < 0 {
		var err error
		if amountA, err = GetAmountAFromLiquidityDelta(sqrtPrice, sqrtMaxPrice, liquidityDelta, shared.RoundingDown); err != nil {
			return shared.WithdrawQuote{}, err
		}
	}
	amountB := big.NewInt(0)
	if sqrtPrice.Cmp(sqrtMinPrice) > 0 {
		var err error
		if amountB, err = GetAmountBFromLiquidityDelta(sqrtMinPrice, sqrtPrice, liquidityDelta, shared.RoundingDown); err != nil {
			return shared.WithdrawQuote{}, err
		}
	}
	return shared.WithdrawQuote{
		LiquidityDelta: new(big.Int).Set(liquidityDelta),
		OutAmountA:     CalculateTransferFeeExcludedAmount(amountA, tokenAInfo).Amount,
		OutAmountB:     CalculateTransferFeeExcludedAmount(amountB, tokenBInfo).Amount,
	}, nil
}

// PreparePoolCreationParams solves the initial price for a two sided
// deposit and the liquidity it mints. Amounts are taken after transfer fees.
func PreparePoolCreationParams(tokenAAmount, tokenBAmount, sqrtMinPrice, sqrtMaxPrice *big.Int, tokenAInfo, tokenBInfo *helpers.TokenInfo) (shared.PreparedPoolCreation, error) {
	if tokenAAmount == nil || tokenBAmount == nil {
		return shared.PreparedPoolCreation{}, fmt.Errorf("%w: both token amounts are required", shared.ErrInvalidInput)
	}
	actualAmountA := CalculateTransferFeeExcludedAmount(tokenAAmount, tokenAInfo).Amount
	actualAmountB := CalculateTransferFeeExcludedAmount(tokenBAmount, tokenBInfo).Amount

	initSqrtPrice, err := CalculateInitSqrtPrice(actualAmountA, actualAmountB, sqrtMinPrice, sqrtMaxPrice)
	if err != nil {
		return shared.PreparedPoolCreation{}, err
	}
	liquidityDelta, err := GetLiquidityDelta(actualAmountA, actualAmountB, initSqrtPrice, sqrtMinPrice, sqrtMaxPrice)
	if err != nil {
		return shared.PreparedPoolCreation{}, err
	}
	return shared.PreparedPoolCreation{InitSqrtPrice: initSqrtPrice, LiquidityDelta: liquidityDelta}, nil
}

// PreparePoolCreationSingleSide returns the liquidity of a pool seeded with
// token A only. The initial price has to sit on the lower bound.
func PreparePoolCreationSingleSide(tokenAAmount, initSqrtPrice, sqrtMinPrice, sqrtMaxPrice *big.Int, tokenAInfo *helpers.TokenInfo) (*big.Int, error) {
	if initSqrtPrice.Cmp(sqrtMinPrice) != 0 {
		return nil, fmt.Errorf("%w: single side creation needs init sqrt price at the lower bound", shared.ErrInvalidInput)
	}
	actualAmountA := CalculateTransferFeeExcludedAmount(tokenAAmount, tokenAInfo).Amount
	return GetLiquidityDeltaFromAmountA(actualAmountA, initSqrtPrice, sqrtMaxPrice)
}
