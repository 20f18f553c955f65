package pool_fees

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// FeeTimeScheduler decays the base fee over periods elapsed since activation.
type FeeTimeScheduler struct {
	CliffFeeNumerator    *big.Int
	NumberOfPeriod       uint16
	PeriodFrequency      *big.Int
	ReductionFactor      *big.Int
	FeeTimeSchedulerMode shared.BaseFeeMode
}

func (f FeeTimeScheduler) Mode() shared.BaseFeeMode {
	return f.FeeTimeSchedulerMode
}

func (f FeeTimeScheduler) Validate(_ shared.CollectFeeMode, _ shared.ActivationType, poolVersion shared.PoolVersion) error {
	return ValidateFeeTimeScheduler(f.NumberOfPeriod, f.PeriodFrequency, f.ReductionFactor, f.CliffFeeNumerator, f.FeeTimeSchedulerMode, poolVersion)
}

func (f FeeTimeScheduler) GetBaseFeeNumeratorFromIncludedFeeAmount(currentPoint, activationPoint *big.Int, _ shared.TradeDirection, _ *big.Int, _, _ *big.Int) (*big.Int, error) {
	return GetFeeTimeBaseFeeNumerator(f.CliffFeeNumerator, f.NumberOfPeriod, f.PeriodFrequency, f.ReductionFactor, f.FeeTimeSchedulerMode, currentPoint, activationPoint)
}

func (f FeeTimeScheduler) GetBaseFeeNumeratorFromExcludedFeeAmount(currentPoint, activationPoint *big.Int, _ shared.TradeDirection, _ *big.Int, _, _ *big.Int) (*big.Int, error) {
	return GetFeeTimeBaseFeeNumerator(f.CliffFeeNumerator, f.NumberOfPeriod, f.PeriodFrequency, f.ReductionFactor, f.FeeTimeSchedulerMode, currentPoint, activationPoint)
}

func (f FeeTimeScheduler) ValidateBaseFeeIsStatic(currentPoint, activationPoint *big.Int) bool {
	expiration := new(big.Int).Mul(big.NewInt(int64(f.NumberOfPeriod)), f.PeriodFrequency)
	expiration.Add(expiration, activationPoint)
	return currentPoint.Cmp(expiration) > 0
}

func (f FeeTimeScheduler) GetMinFeeNumerator() (*big.Int, error) {
	return GetFeeTimeBaseFeeNumeratorByPeriod(f.CliffFeeNumerator, f.NumberOfPeriod, big.NewInt(int64(f.NumberOfPeriod)), f.ReductionFactor, f.FeeTimeSchedulerMode)
}

func (f FeeTimeScheduler) GetMaxFeeNumerator() (*big.Int, error) {
	return new(big.Int).Set(f.CliffFeeNumerator), nil
}

// GetFeeTimeBaseFeeNumeratorByPeriod evaluates the schedule at a given period.
func GetFeeTimeBaseFeeNumeratorByPeriod(cliffFeeNumerator *big.Int, numberOfPeriod uint16, period *big.Int, reductionFactor *big.Int, mode shared.BaseFeeMode) (*big.Int, error) {
	switch mode {
	case shared.BaseFeeModeFeeTimeSchedulerLinear:
		return GetFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, period, reductionFactor, true)
	case shared.BaseFeeModeFeeTimeSchedulerExponential:
		return GetFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, period, reductionFactor, false)
	default:
		return nil, fmt.Errorf("%w: fee time scheduler mode %s", shared.ErrUnsupportedMode, mode)
	}
}

// GetFeeTimeBaseFeeNumerator returns the base fee at currentPoint. Before
// activation the schedule is treated as fully elapsed.
func GetFeeTimeBaseFeeNumerator(cliffFeeNumerator *big.Int, numberOfPeriod uint16, periodFrequency *big.Int, reductionFactor *big.Int, mode shared.BaseFeeMode, currentPoint, activationPoint *big.Int) (*big.Int, error) {
	if periodFrequency.Sign() == 0 {
		return new(big.Int).Set(cliffFeeNumerator), nil
	}
	var period *big.Int
	if currentPoint.Cmp(activationPoint) < 0 {
		period = big.NewInt(int64(numberOfPeriod))
	} else {
		period = new(big.Int).Sub(currentPoint, activationPoint)
		period.Quo(period, periodFrequency)
	}
	return GetFeeTimeBaseFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, period, reductionFactor, mode)
}
