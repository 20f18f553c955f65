package math

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/math/pool_fees"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// GetFeeMode decides where the fee is charged. Pools collecting in both tokens
// always charge the output token; only-B pools charge token B, which is the
// input of a B to A trade and the output of an A to B trade.
func GetFeeMode(collectFeeMode shared.CollectFeeMode, tradeDirection shared.TradeDirection, hasReferral bool) (shared.FeeMode, error) {
	mode := shared.FeeMode{HasReferral: hasReferral}
	switch collectFeeMode {
	case shared.CollectFeeModeBothToken:
		mode.FeesOnTokenA = tradeDirection == shared.TradeDirectionBtoA
	case shared.CollectFeeModeOnlyB:
		mode.FeesOnInput = tradeDirection == shared.TradeDirectionBtoA
	default:
		return shared.FeeMode{}, fmt.Errorf("%w: collect fee mode %d", shared.ErrUnsupportedMode, collectFeeMode)
	}
	return mode, nil
}

// GetTotalFeeNumerator is min(base + dynamic, maxFeeNumerator).
func GetTotalFeeNumerator(poolFees shared.PoolFees, baseFeeNumerator, maxFeeNumerator *big.Int) *big.Int {
	total := new(big.Int).Add(baseFeeNumerator, pool_fees.GetDynamicFeeNumerator(poolFees.DynamicFee))
	if total.Cmp(maxFeeNumerator) > 0 {
		return new(big.Int).Set(maxFeeNumerator)
	}
	return total
}

// GetTotalTradingFeeFromIncludedFeeAmount resolves the capped fee numerator of
// a trade whose amount already contains the fee.
func GetTotalTradingFeeFromIncludedFeeAmount(pool *shared.PoolSnapshot, includedFeeAmount *big.Int, tradeDirection shared.TradeDirection) (*big.Int, error) {
	base, err := pool.PoolFees.BaseFee.GetBaseFeeNumeratorFromIncludedFeeAmount(pool.CurrentPoint, pool.ActivationPoint, tradeDirection, includedFeeAmount, pool.InitialSqrtPrice(), pool.SqrtPrice)
	if err != nil {
		return nil, err
	}
	return GetTotalFeeNumerator(pool.PoolFees, base, pool_fees.GetMaxFeeNumerator(pool.Version)), nil
}

// GetTotalTradingFeeFromExcludedFeeAmount is the same for an amount the fee is
// still to be added to.
func GetTotalTradingFeeFromExcludedFeeAmount(pool *shared.PoolSnapshot, excludedFeeAmount *big.Int, tradeDirection shared.TradeDirection) (*big.Int, error) {
	base, err := pool.PoolFees.BaseFee.GetBaseFeeNumeratorFromExcludedFeeAmount(pool.CurrentPoint, pool.ActivationPoint, tradeDirection, excludedFeeAmount, pool.InitialSqrtPrice(), pool.SqrtPrice)
	if err != nil {
		return nil, err
	}
	return GetTotalFeeNumerator(pool.PoolFees, base, pool_fees.GetMaxFeeNumerator(pool.Version)), nil
}

// SplitFees divides a fee between liquidity providers, protocol, referral and
// partner. Every share rounds down; the LP share takes the rest.
func SplitFees(poolFees shared.PoolFees, feeAmount *big.Int, hasReferral, hasPartner bool) shared.SplitFees {
	hundred := big.NewInt(100)
	protocolFee := new(big.Int).Mul(feeAmount, big.NewInt(int64(poolFees.ProtocolFeePercent)))
	protocolFee.Quo(protocolFee, hundred)
	tradingFee := new(big.Int).Sub(feeAmount, protocolFee)

	referralFee := big.NewInt(0)
	if hasReferral {
		referralFee.Mul(protocolFee, big.NewInt(int64(poolFees.ReferralFeePercent)))
		referralFee.Quo(referralFee, hundred)
	}
	protocolFee.Sub(protocolFee, referralFee)

	partnerFee := big.NewInt(0)
	if hasPartner && poolFees.PartnerFeePercent > 0 {
		partnerFee.Mul(protocolFee, big.NewInt(int64(poolFees.PartnerFeePercent)))
		partnerFee.Quo(partnerFee, hundred)
	}
	protocolFee.Sub(protocolFee, partnerFee)

	return shared.SplitFees{
		TradingFee:  tradingFee,
		ProtocolFee: protocolFee,
		ReferralFee: referralFee,
		PartnerFee:  partnerFee,
	}
}

// GetFeeOnAmount charges ceil(amount*fee/1e9) and splits it.
func GetFeeOnAmount(poolFees shared.PoolFees, amount, tradeFeeNumerator *big.Int, hasReferral, hasPartner bool) (shared.FeeOnAmountResult, error) {
	excluded, fee, err := GetExcludedFeeAmount(tradeFeeNumerator, amount)
	if err != nil {
		return shared.FeeOnAmountResult{}, err
	}
	split := SplitFees(poolFees, fee, hasReferral, hasPartner)
	return shared.FeeOnAmountResult{
		FeeNumerator:   new(big.Int).Set(tradeFeeNumerator),
		FeeAmount:      fee,
		AmountAfterFee: excluded,
		TradingFee:     split.TradingFee,
		ProtocolFee:    split.ProtocolFee,
		PartnerFee:     split.PartnerFee,
		ReferralFee:    split.ReferralFee,
	}, nil
}

// GetExcludedFeeAmount returns the amount left after the trading fee and the fee.
func GetExcludedFeeAmount(tradeFeeNumerator, includedFeeAmount *big.Int) (*big.Int, *big.Int, error) {
	return pool_fees.GetExcludedFeeAmount(tradeFeeNumerator, includedFeeAmount)
}

// GetIncludedFeeAmount returns the gross amount that nets excludedFeeAmount, and the fee.
func GetIncludedFeeAmount(tradeFeeNumerator, excludedFeeAmount *big.Int) (*big.Int, *big.Int, error) {
	return pool_fees.GetIncludedFeeAmount(tradeFeeNumerator, excludedFeeAmount)
}

// GetCurrentFeeNumerators reports the base, dynamic and capped total fee of a
// pool at its CurrentPoint for a zero sized trade.
func GetCurrentFeeNumerators(pool *shared.PoolSnapshot, tradeDirection shared.TradeDirection) (base, dynamic, total *big.Int, err error) {
	base, err = pool.PoolFees.BaseFee.GetBaseFeeNumeratorFromIncludedFeeAmount(pool.CurrentPoint, pool.ActivationPoint, tradeDirection, big.NewInt(0), pool.InitialSqrtPrice(), pool.SqrtPrice)
	if err != nil {
		return nil, nil, nil, err
	}
	dynamic = pool_fees.GetDynamicFeeNumerator(pool.PoolFees.DynamicFee)
	total = GetTotalFeeNumerator(pool.PoolFees, base, pool_fees.GetMaxFeeNumerator(pool.Version))
	return base, dynamic, total, nil
}
