package pool_fees

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// FeeMarketCapScheduler decays the base fee as the sqrt price climbs above the
// initial price, until the scheduler expires.
type FeeMarketCapScheduler struct {
	CliffFeeNumerator           *big.Int
	NumberOfPeriod              uint16
	SqrtPriceStepBps            uint16
	SchedulerExpirationDuration uint32
	ReductionFactor             *big.Int
	FeeMarketCapSchedulerMode   shared.BaseFeeMode
}

func (f FeeMarketCapScheduler) Mode() shared.BaseFeeMode {
	return f.FeeMarketCapSchedulerMode
}

func (f FeeMarketCapScheduler) Validate(_ shared.CollectFeeMode, _ shared.ActivationType, poolVersion shared.PoolVersion) error {
	return ValidateFeeMarketCapScheduler(f.CliffFeeNumerator, f.NumberOfPeriod, f.SqrtPriceStepBps, f.ReductionFactor, f.SchedulerExpirationDuration, f.FeeMarketCapSchedulerMode, poolVersion)
}

func (f FeeMarketCapScheduler) GetBaseFeeNumeratorFromIncludedFeeAmount(currentPoint, activationPoint *big.Int, _ shared.TradeDirection, _ *big.Int, initSqrtPrice, currentSqrtPrice *big.Int) (*big.Int, error) {
	return f.baseFeeNumerator(currentPoint, activationPoint, initSqrtPrice, currentSqrtPrice)
}

func (f FeeMarketCapScheduler) GetBaseFeeNumeratorFromExcludedFeeAmount(currentPoint, activationPoint *big.Int, _ shared.TradeDirection, _ *big.Int, initSqrtPrice, currentSqrtPrice *big.Int) (*big.Int, error) {
	return f.baseFeeNumerator(currentPoint, activationPoint, initSqrtPrice, currentSqrtPrice)
}

func (f FeeMarketCapScheduler) ValidateBaseFeeIsStatic(currentPoint, activationPoint *big.Int) bool {
	expiration := new(big.Int).Add(activationPoint, big.NewInt(int64(f.SchedulerExpirationDuration)))
	return currentPoint.Cmp(expiration) > 0
}

func (f FeeMarketCapScheduler) GetMinFeeNumerator() (*big.Int, error) {
	return GetFeeMarketCapBaseFeeNumeratorByPeriod(f.CliffFeeNumerator, f.NumberOfPeriod, big.NewInt(int64(f.NumberOfPeriod)), f.ReductionFactor, f.FeeMarketCapSchedulerMode)
}

func (f FeeMarketCapScheduler) GetMaxFeeNumerator() (*big.Int, error) {
	return new(big.Int).Set(f.CliffFeeNumerator), nil
}

func (f FeeMarketCapScheduler) baseFeeNumerator(currentPoint, activationPoint, initSqrtPrice, currentSqrtPrice *big.Int) (*big.Int, error) {
	period, err := f.period(currentPoint, activationPoint, initSqrtPrice, currentSqrtPrice)
	if err != nil {
		return nil, err
	}
	return GetFeeMarketCapBaseFeeNumeratorByPeriod(f.CliffFeeNumerator, f.NumberOfPeriod, period, f.ReductionFactor, f.FeeMarketCapSchedulerMode)
}

// period counts whole sqrtPriceStepBps steps the price has gained over the
// initial price.
func (f FeeMarketCapScheduler) period(currentPoint, activationPoint, initSqrtPrice, currentSqrtPrice *big.Int) (*big.Int, error) {
	expiration := new(big.Int).Add(activationPoint, big.NewInt(int64(f.SchedulerExpirationDuration)))
	if currentPoint.Cmp(expiration) > 0 || currentPoint.Cmp(activationPoint) < 0 {
		return big.NewInt(int64(f.NumberOfPeriod)), nil
	}
	if currentSqrtPrice.Cmp(initSqrtPrice) <= 0 {
		return big.NewInt(0), nil
	}
	if f.SqrtPriceStepBps == 0 || initSqrtPrice.Sign() == 0 {
		return nil, fmt.Errorf("%w: market cap scheduler step", shared.ErrDivisionByZero)
	}
	passed := new(big.Int).Sub(currentSqrtPrice, initSqrtPrice)
	passed.Mul(passed, basisPointMax)
	passed.Quo(passed, initSqrtPrice)
	passed.Quo(passed, big.NewInt(int64(f.SqrtPriceStepBps)))
	return passed, nil
}

func GetFeeMarketCapBaseFeeNumeratorByPeriod(cliffFeeNumerator *big.Int, numberOfPeriod uint16, period *big.Int, reductionFactor *big.Int, mode shared.BaseFeeMode) (*big.Int, error) {
	switch mode {
	case shared.BaseFeeModeFeeMarketCapSchedulerLinear:
		return GetFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, period, reductionFactor, true)
	case shared.BaseFeeModeFeeMarketCapSchedulerExp:
		return GetFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, period, reductionFactor, false)
	default:
		return nil, fmt.Errorf("%w: fee market cap scheduler mode %s", shared.ErrUnsupportedMode, mode)
	}
}
