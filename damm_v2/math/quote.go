package math

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// swapFees accumulates the fee split of one swap step.
type swapFees struct {
	numerator *big.Int
	total     *big.Int
	shared.SplitFees
}

func newSwapFees() swapFees {
	return swapFees{
		numerator: big.NewInt(0),
		total:     big.NewInt(0),
		SplitFees: shared.SplitFees{
			TradingFee:  big.NewInt(0),
			ProtocolFee: big.NewInt(0),
			ReferralFee: big.NewInt(0),
			PartnerFee:  big.NewInt(0),
		},
	}
}

func (f *swapFees) set(numerator, total *big.Int, split shared.SplitFees) {
	f.numerator = new(big.Int).Set(numerator)
	f.total = total
	f.SplitFees = split
}

func (f *swapFees) setFromResult(res shared.FeeOnAmountResult) {
	f.set(res.FeeNumerator, res.FeeAmount, shared.SplitFees{
		TradingFee:  res.TradingFee,
		ProtocolFee: res.ProtocolFee,
		ReferralFee: res.ReferralFee,
		PartnerFee:  res.PartnerFee,
	})
}

func (f swapFees) result(res shared.SwapResult) shared.SwapResult {
	res.FeeNumerator = f.numerator
	res.TotalFee = f.total
	res.TradingFee = f.TradingFee
	res.ProtocolFee = f.ProtocolFee
	res.PartnerFee = f.PartnerFee
	res.ReferralFee = f.ReferralFee
	return res
}

// GetSwapResultFromExactInput swaps the whole amountIn through the curve. The
// fee is taken from the input or the output depending on feeMode.
func GetSwapResultFromExactInput(pool *shared.PoolSnapshot, amountIn *big.Int, feeMode shared.FeeMode, tradeDirection shared.TradeDirection) (shared.SwapResult, error) {
	if err := checkCurveState(pool.SqrtPrice, pool.Liquidity); err != nil {
		return shared.SwapResult{}, err
	}
	fees := newSwapFees()

	tradeFeeNumerator, err := GetTotalTradingFeeFromIncludedFeeAmount(pool, amountIn, tradeDirection)
	if err != nil {
		return shared.SwapResult{}, err
	}

	actualAmountIn := new(big.Int).Set(amountIn)
	if feeMode.FeesOnInput {
		feeResult, err := GetFeeOnAmount(pool.PoolFees, amountIn, tradeFeeNumerator, feeMode.HasReferral, pool.HasPartner())
		if err != nil {
			return shared.SwapResult{}, err
		}
		fees.setFromResult(feeResult)
		actualAmountIn = feeResult.AmountAfterFee
	}

	var outputAmount, nextSqrtPrice *big.Int
	if tradeDirection == shared.TradeDirectionAtoB {
		outputAmount, nextSqrtPrice, err = calculateAtoBFromAmountIn(pool, actualAmountIn)
	} else {
		outputAmount, nextSqrtPrice, err = calculateBtoAFromAmountIn(pool, actualAmountIn)
	}
	if err != nil {
		return shared.SwapResult{}, err
	}

	actualAmountOut := outputAmount
	if !feeMode.FeesOnInput {
		feeResult, err := GetFeeOnAmount(pool.PoolFees, outputAmount, tradeFeeNumerator, feeMode.HasReferral, pool.HasPartner())
		if err != nil {
			return shared.SwapResult{}, err
		}
		fees.setFromResult(feeResult)
		actualAmountOut = feeResult.AmountAfterFee
	}

	return fees.result(shared.SwapResult{
		IncludedFeeInputAmount: new(big.Int).Set(amountIn),
		ExcludedFeeInputAmount: actualAmountIn,
		AmountLeft:             big.NewInt(0),
		OutputAmount:           actualAmountOut,
		NextSqrtPrice:          nextSqrtPrice,
	}), nil
}

func calculateAtoBFromAmountIn(pool *shared.PoolSnapshot, amountIn *big.Int) (*big.Int, *big.Int, error) {
	nextSqrtPrice, err := GetNextSqrtPriceFromInput(pool.SqrtPrice, pool.Liquidity, amountIn, true)
	if err != nil {
		return nil, nil, err
	}
	if nextSqrtPrice.Cmp(pool.SqrtMinPrice) < 0 {
		return nil, nil, fmt.Errorf("%w: next sqrt price %s below %s", shared.ErrPriceOutOfBounds, nextSqrtPrice, pool.SqrtMinPrice)
	}
	outputAmount, err := GetAmountBFromLiquidityDelta(nextSqrtPrice, pool.SqrtPrice, pool.Liquidity, shared.RoundingDown)
	if err != nil {
		return nil, nil, err
	}
	return outputAmount, nextSqrtPrice, nil
}

func calculateBtoAFromAmountIn(pool *shared.PoolSnapshot, amountIn *big.Int) (*big.Int, *big.Int, error) {
	nextSqrtPrice, err := GetNextSqrtPriceFromInput(pool.SqrtPrice, pool.Liquidity, amountIn, false)
	if err != nil {
		return nil, nil, err
	}
	if nextSqrtPrice.Cmp(pool.SqrtMaxPrice) > 0 {
		return nil, nil, fmt.Errorf("%w: next sqrt price %s above %s", shared.ErrPriceOutOfBounds, nextSqrtPrice, pool.SqrtMaxPrice)
	}
	outputAmount, err := GetAmountAFromLiquidityDelta(pool.SqrtPrice, nextSqrtPrice, pool.Liquidity, shared.RoundingDown)
	if err != nil {
		return nil, nil, err
	}
	return outputAmount, nextSqrtPrice, nil
}

// GetSwapResultFromPartialInput swaps at most the input that moves the price
// to its bound. AmountLeft is the fee excluded input that was not consumed.
func GetSwapResultFromPartialInput(pool *shared.PoolSnapshot, amountIn *big.Int, feeMode shared.FeeMode, tradeDirection shared.TradeDirection) (shared.SwapResult, error) {
	if err := checkCurveState(pool.SqrtPrice, pool.Liquidity); err != nil {
		return shared.SwapResult{}, err
	}
	fees := newSwapFees()

	tradeFeeNumerator, err := GetTotalTradingFeeFromIncludedFeeAmount(pool, amountIn, tradeDirection)
	if err != nil {
		return shared.SwapResult{}, err
	}

	actualAmountIn := new(big.Int).Set(amountIn)
	if feeMode.FeesOnInput {
		feeResult, err := GetFeeOnAmount(pool.PoolFees, amountIn, tradeFeeNumerator, feeMode.HasReferral, pool.HasPartner())
		if err != nil {
			return shared.SwapResult{}, err
		}
		fees.setFromResult(feeResult)
		actualAmountIn = feeResult.AmountAfterFee
	}

	var outputAmount, nextSqrtPrice, amountLeft *big.Int
	if tradeDirection == shared.TradeDirectionAtoB {
		outputAmount, nextSqrtPrice, amountLeft, err = calculateAtoBFromPartialAmountIn(pool, actualAmountIn)
	} else {
		outputAmount, nextSqrtPrice, amountLeft, err = calculateBtoAFromPartialAmountIn(pool, actualAmountIn)
	}
	if err != nil {
		return shared.SwapResult{}, err
	}

	includedFeeInputAmount := new(big.Int).Set(amountIn)
	if amountLeft.Sign() > 0 {
		actualAmountIn = new(big.Int).Sub(actualAmountIn, amountLeft)
		if feeMode.FeesOnInput {
			// the fee is charged again on the consumed part only
			consumedFeeNumerator, err := GetTotalTradingFeeFromExcludedFeeAmount(pool, actualAmountIn, tradeDirection)
			if err != nil {
				return shared.SwapResult{}, err
			}
			includedFeeAmount, feeAmount, err := GetIncludedFeeAmount(consumedFeeNumerator, actualAmountIn)
			if err != nil {
				return shared.SwapResult{}, err
			}
			fees.set(consumedFeeNumerator, feeAmount, SplitFees(pool.PoolFees, feeAmount, feeMode.HasReferral, pool.HasPartner()))
			includedFeeInputAmount = includedFeeAmount
		} else {
			includedFeeInputAmount = new(big.Int).Set(actualAmountIn)
		}
	}

	actualAmountOut := outputAmount
	if !feeMode.FeesOnInput {
		feeResult, err := GetFeeOnAmount(pool.PoolFees, outputAmount, tradeFeeNumerator, feeMode.HasReferral, pool.HasPartner())
		if err != nil {
			return shared.SwapResult{}, err
		}
		fees.setFromResult(feeResult)
		actualAmountOut = feeResult.AmountAfterFee
	}

	return fees.result(shared.SwapResult{
		IncludedFeeInputAmount: includedFeeInputAmount,
		ExcludedFeeInputAmount: actualAmountIn,
		AmountLeft:             amountLeft,
		OutputAmount:           actualAmountOut,
		NextSqrtPrice:          nextSqrtPrice,
	}), nil
}

func calculateAtoBFromPartialAmountIn(pool *shared.PoolSnapshot, amountIn *big.Int) (*big.Int, *big.Int, *big.Int, error) {
	maxAmountIn, err := getDeltaAmountAUnsigned(pool.SqrtMinPrice, pool.SqrtPrice, pool.Liquidity, shared.RoundingUp)
	if err != nil {
		return nil, nil, nil, err
	}
	if amountIn.Cmp(maxAmountIn) < 0 {
		outputAmount, nextSqrtPrice, err := calculateAtoBFromAmountIn(pool, amountIn)
		if err != nil {
			return nil, nil, nil, err
		}
		return outputAmount, nextSqrtPrice, big.NewInt(0), nil
	}
	nextSqrtPrice := new(big.Int).Set(pool.SqrtMinPrice)
	outputAmount, err := GetAmountBFromLiquidityDelta(nextSqrtPrice, pool.SqrtPrice, pool.Liquidity, shared.RoundingDown)
	if err != nil {
		return nil, nil, nil, err
	}
	return outputAmount, nextSqrtPrice, new(big.Int).Sub(amountIn, maxAmountIn), nil
}

func calculateBtoAFromPartialAmountIn(pool *shared.PoolSnapshot, amountIn *big.Int) (*big.Int, *big.Int, *big.Int, error) {
	maxAmountIn, err := getDeltaAmountBUnsigned(pool.SqrtPrice, pool.SqrtMaxPrice, pool.Liquidity, shared.RoundingUp)
	if err != nil {
		return nil, nil, nil, err
	}
	if amountIn.Cmp(maxAmountIn) < 0 {
		outputAmount, nextSqrtPrice, err := calculateBtoAFromAmountIn(pool, amountIn)
		if err != nil {
			return nil, nil, nil, err
		}
		return outputAmount, nextSqrtPrice, big.NewInt(0), nil
	}
	nextSqrtPrice := new(big.Int).Set(pool.SqrtMaxPrice)
	outputAmount, err := GetAmountAFromLiquidityDelta(pool.SqrtPrice, nextSqrtPrice, pool.Liquidity, shared.RoundingDown)
	if err != nil {
		return nil, nil, nil, err
	}
	return outputAmount, nextSqrtPrice, new(big.Int).Sub(amountIn, maxAmountIn), nil
}

// GetSwapResultFromExactOutput finds the input that delivers exactly amountOut
// after fees.
func GetSwapResultFromExactOutput(pool *shared.PoolSnapshot, amountOut *big.Int, feeMode shared.FeeMode, tradeDirection shared.TradeDirection) (shared.SwapResult, error) {
	if err := checkCurveState(pool.SqrtPrice, pool.Liquidity); err != nil {
		return shared.SwapResult{}, err
	}
	fees := newSwapFees()

	includedFeeAmountOut := new(big.Int).Set(amountOut)
	if !feeMode.FeesOnInput {
		tradeFeeNumerator, err := GetTotalTradingFeeFromExcludedFeeAmount(pool, amountOut, tradeDirection)
		if err != nil {
			return shared.SwapResult{}, err
		}
		included, feeAmount, err := GetIncludedFeeAmount(tradeFeeNumerator, amountOut)
		if err != nil {
			return shared.SwapResult{}, err
		}
		fees.set(tradeFeeNumerator, feeAmount, SplitFees(pool.PoolFees, feeAmount, feeMode.HasReferral, pool.HasPartner()))
		includedFeeAmountOut = included
	}

	var inputAmount, nextSqrtPrice *big.Int
	var err error
	if tradeDirection == shared.TradeDirectionAtoB {
		inputAmount, nextSqrtPrice, err = calculateAtoBFromAmountOut(pool, includedFeeAmountOut)
	} else {
		inputAmount, nextSqrtPrice, err = calculateBtoAFromAmountOut(pool, includedFeeAmountOut)
	}
	if err != nil {
		return shared.SwapResult{}, err
	}

	includedFeeInputAmount := new(big.Int).Set(inputAmount)
	if feeMode.FeesOnInput {
		tradeFeeNumerator, err := GetTotalTradingFeeFromExcludedFeeAmount(pool, inputAmount, tradeDirection)
		if err != nil {
			return shared.SwapResult{}, err
		}
		included, feeAmount, err := GetIncludedFeeAmount(tradeFeeNumerator, inputAmount)
		if err != nil {
			return shared.SwapResult{}, err
		}
		fees.set(tradeFeeNumerator, feeAmount, SplitFees(pool.PoolFees, feeAmount, feeMode.HasReferral, pool.HasPartner()))
		includedFeeInputAmount = included
	}

	return fees.result(shared.SwapResult{
		IncludedFeeInputAmount: includedFeeInputAmount,
		ExcludedFeeInputAmount: inputAmount,
		AmountLeft:             big.NewInt(0),
		OutputAmount:           new(big.Int).Set(amountOut),
		NextSqrtPrice:          nextSqrtPrice,
	}), nil
}

func calculateAtoBFromAmountOut(pool *shared.PoolSnapshot, amountOut *big.Int) (*big.Int, *big.Int, error) {
	nextSqrtPrice, err := GetNextSqrtPriceFromOutput(pool.SqrtPrice, pool.Liquidity, amountOut, true)
	if err != nil {
		return nil, nil, err
	}
	if nextSqrtPrice.Cmp(pool.SqrtMinPrice) < 0 {
		return nil, nil, fmt.Errorf("%w: next sqrt price %s below %s", shared.ErrPriceOutOfBounds, nextSqrtPrice, pool.SqrtMinPrice)
	}
	inputAmount, err := GetAmountAFromLiquidityDelta(nextSqrtPrice, pool.SqrtPrice, pool.Liquidity, shared.RoundingUp)
	if err != nil {
		return nil, nil, err
	}
	return inputAmount, nextSqrtPrice, nil
}

func calculateBtoAFromAmountOut(pool *shared.PoolSnapshot, amountOut *big.Int) (*big.Int, *big.Int, error) {
	nextSqrtPrice, err := GetNextSqrtPriceFromOutput(pool.SqrtPrice, pool.Liquidity, amountOut, false)
	if err != nil {
		return nil, nil, err
	}
	if nextSqrtPrice.Cmp(pool.SqrtMaxPrice) > 0 {
		return nil, nil, fmt.Errorf("%w: next sqrt price %s above %s", shared.ErrPriceOutOfBounds, nextSqrtPrice, pool.SqrtMaxPrice)
	}
	inputAmount, err := GetAmountBFromLiquidityDelta(pool.SqrtPrice, nextSqrtPrice, pool.Liquidity, shared.RoundingUp)
	if err != nil {
		return nil, nil, err
	}
	return inputAmount, nextSqrtPrice, nil
}

// prepareQuote runs the checks shared by every quote mode.
func prepareQuote(pool *shared.PoolSnapshot, amount *big.Int, slippageBps uint16, aToB, hasReferral bool) (shared.TradeDirection, shared.FeeMode, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, shared.FeeMode{}, fmt.Errorf("%w: amount must be greater than 0", shared.ErrInvalidInput)
	}
	if slippageBps > shared.BasisPointMax {
		return 0, shared.FeeMode{}, fmt.Errorf("%w: slippage %d bps", shared.ErrInvalidInput, slippageBps)
	}
	if err := pool.Validate(); err != nil {
		return 0, shared.FeeMode{}, err
	}
	if !pool.IsSwapEnabled() {
		return 0, shared.FeeMode{}, shared.ErrSwapDisabled
	}
	tradeDirection := shared.TradeDirectionFromAtoB(aToB)
	feeMode, err := GetFeeMode(pool.CollectFeeMode, tradeDirection, hasReferral)
	if err != nil {
		return 0, shared.FeeMode{}, err
	}
	return tradeDirection, feeMode, nil
}

// SwapQuoteExactInput quotes a swap of amountIn. Token-2022 transfer fees of
// the input and output mints are applied when their TokenInfo is given.
func SwapQuoteExactInput(pool *shared.PoolSnapshot, amountIn *big.Int, slippageBps uint16, aToB, hasReferral bool, inputTokenInfo, outputTokenInfo *helpers.TokenInfo) (shared.QuoteResult, error) {
	tradeDirection, feeMode, err := prepareQuote(pool, amountIn, slippageBps, aToB, hasReferral)
	if err != nil {
		return shared.QuoteResult{}, err
	}
	actualAmountIn := CalculateTransferFeeExcludedAmount(amountIn, inputTokenInfo).Amount
	swapResult, err := GetSwapResultFromExactInput(pool, actualAmountIn, feeMode, tradeDirection)
	if err != nil {
		return shared.QuoteResult{}, err
	}
	return quoteFromInput(swapResult, amountIn, slippageBps, shared.SwapModeExactIn, outputTokenInfo), nil
}

// SwapQuotePartialInput is SwapQuoteExactInput that stops at the price bound
// instead of failing.
func SwapQuotePartialInput(pool *shared.PoolSnapshot, amountIn *big.Int, slippageBps uint16, aToB, hasReferral bool, inputTokenInfo, outputTokenInfo *helpers.TokenInfo) (shared.QuoteResult, error) {
	tradeDirection, feeMode, err := prepareQuote(pool, amountIn, slippageBps, aToB, hasReferral)
	if err != nil {
		return shared.QuoteResult{}, err
	}
	actualAmountIn := CalculateTransferFeeExcludedAmount(amountIn, inputTokenInfo).Amount
	swapResult, err := GetSwapResultFromPartialInput(pool, actualAmountIn, feeMode, tradeDirection)
	if err != nil {
		return shared.QuoteResult{}, err
	}
	return quoteFromInput(swapResult, amountIn, slippageBps, shared.SwapModePartialFill, outputTokenInfo), nil
}

func quoteFromInput(swapResult shared.SwapResult, amountIn *big.Int, slippageBps uint16, swapMode shared.SwapMode, outputTokenInfo *helpers.TokenInfo) shared.QuoteResult {
	swapResult.OutputAmount = CalculateTransferFeeExcludedAmount(swapResult.OutputAmount, outputTokenInfo).Amount
	minimumAmountOut := GetAmountWithSlippage(swapResult.OutputAmount, slippageBps, swapMode)
	return shared.QuoteResult{
		SwapResult:       swapResult,
		MinimumAmountOut: minimumAmountOut,
		MaximumAmountIn:  new(big.Int).Set(amountIn),
		PriceImpact:      GetPriceImpact(swapResult.OutputAmount, minimumAmountOut),
	}
}

// SwapQuoteExactOutput quotes the input needed to receive amountOut.
func SwapQuoteExactOutput(pool *shared.PoolSnapshot, amountOut *big.Int, slippageBps uint16, aToB, hasReferral bool, inputTokenInfo, outputTokenInfo *helpers.TokenInfo) (shared.QuoteResult, error) {
	tradeDirection, feeMode, err := prepareQuote(pool, amountOut, slippageBps, aToB, hasReferral)
	if err != nil {
		return shared.QuoteResult{}, err
	}
	actualAmountOut := CalculateTransferFeeIncludedAmount(amountOut, outputTokenInfo).Amount
	swapResult, err := GetSwapResultFromExactOutput(pool, actualAmountOut, feeMode, tradeDirection)
	if err != nil {
		return shared.QuoteResult{}, err
	}
	swapResult.IncludedFeeInputAmount = CalculateTransferFeeIncludedAmount(swapResult.IncludedFeeInputAmount, inputTokenInfo).Amount
	swapResult.OutputAmount = new(big.Int).Set(amountOut)
	return shared.QuoteResult{
		SwapResult:       swapResult,
		MinimumAmountOut: new(big.Int).Set(amountOut),
		MaximumAmountIn:  GetAmountWithSlippage(swapResult.IncludedFeeInputAmount, slippageBps, shared.SwapModeExactOut),
		PriceImpact:      decimal.Zero,
	}, nil
}

// GetAmountWithSlippage widens an exact-out input by slippageBps and narrows
// any other output by the same amount, flooring both.
func GetAmountWithSlippage(amount *big.Int, slippageBps uint16, swapMode shared.SwapMode) *big.Int {
	factor := big.NewInt(shared.BasisPointMax)
	if swapMode == shared.SwapModeExactOut {
		factor.Add(factor, big.NewInt(int64(slippageBps)))
	} else {
		factor.Sub(factor, big.NewInt(int64(slippageBps)))
	}
	out := new(big.Int).Mul(amount, factor)
	return out.Quo(out, big.NewInt(shared.BasisPointMax))
}

// GetPriceImpact is (amountOut - minimumAmountOut) / amountOut * 100. It is a
// display value only.
func GetPriceImpact(amountOut, minimumAmountOut *big.Int) decimal.Decimal {
	if amountOut == nil || amountOut.Sign() == 0 {
		return decimal.Zero
	}
	out := decimal.NewFromBigInt(amountOut, 0)
	diff := out.Sub(decimal.NewFromBigInt(minimumAmountOut, 0))
	return diff.Div(out).Mul(decimal.NewFromInt(100))
}
