package pool_fees

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// ValidateFeeTimeScheduler checks the schedule is either fully static or fully
// set, and that its whole fee range stays inside the protocol limits.
func ValidateFeeTimeScheduler(numberOfPeriod uint16, periodFrequency, reductionFactor, cliffFeeNumerator *big.Int, mode shared.BaseFeeMode, poolVersion shared.PoolVersion) error {
	if periodFrequency.Sign() != 0 || numberOfPeriod != 0 || reductionFactor.Sign() != 0 {
		if numberOfPeriod == 0 || periodFrequency.Sign() == 0 || reductionFactor.Sign() == 0 {
			return fmt.Errorf("%w: fee time scheduler must set periods, frequency and reduction together", shared.ErrInvalidFee)
		}
	}
	minFeeNumerator, err := GetFeeTimeBaseFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, big.NewInt(int64(numberOfPeriod)), reductionFactor, mode)
	if err != nil {
		return err
	}
	return validateFeeRange(minFeeNumerator, cliffFeeNumerator, poolVersion)
}

func ValidateFeeMarketCapScheduler(cliffFeeNumerator *big.Int, numberOfPeriod uint16, sqrtPriceStepBps uint16, reductionFactor *big.Int, schedulerExpirationDuration uint32, mode shared.BaseFeeMode, poolVersion shared.PoolVersion) error {
	if reductionFactor.Sign() <= 0 || sqrtPriceStepBps == 0 || schedulerExpirationDuration == 0 || numberOfPeriod == 0 {
		return fmt.Errorf("%w: market cap scheduler parameters must be positive", shared.ErrInvalidFee)
	}
	minFeeNumerator, err := GetFeeMarketCapBaseFeeNumeratorByPeriod(cliffFeeNumerator, numberOfPeriod, big.NewInt(int64(numberOfPeriod)), reductionFactor, mode)
	if err != nil {
		return err
	}
	return validateFeeRange(minFeeNumerator, cliffFeeNumerator, poolVersion)
}

func validateFeeRange(minFeeNumerator, maxFeeNumerator *big.Int, poolVersion shared.PoolVersion) error {
	if err := ValidateFeeFraction(minFeeNumerator, feeDenominator); err != nil {
		return err
	}
	if err := ValidateFeeFraction(maxFeeNumerator, feeDenominator); err != nil {
		return err
	}
	if minFeeNumerator.Cmp(big.NewInt(shared.MinFeeNumerator)) < 0 {
		return fmt.Errorf("%w: min fee numerator %s below %d", shared.ErrInvalidFee, minFeeNumerator, shared.MinFeeNumerator)
	}
	if limit := GetMaxFeeNumerator(poolVersion); maxFeeNumerator.Cmp(limit) > 0 {
		return fmt.Errorf("%w: max fee numerator %s above %s", shared.ErrInvalidFee, maxFeeNumerator, limit)
	}
	return nil
}

// ValidateFeeFraction requires numerator < denominator and a non-zero denominator.
func ValidateFeeFraction(numerator, denominator *big.Int) error {
	if denominator.Sign() == 0 || numerator.Cmp(denominator) >= 0 {
		return fmt.Errorf("%w: fee %s/%s", shared.ErrInvalidFee, numerator, denominator)
	}
	return nil
}
