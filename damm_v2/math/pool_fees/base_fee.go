package pool_fees

import (
	"fmt"
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

var (
	_ shared.BaseFeeHandler = FeeTimeScheduler{}
	_ shared.BaseFeeHandler = FeeRateLimiter{}
	_ shared.BaseFeeHandler = FeeMarketCapScheduler{}
)

// GetBaseFeeHandler decodes the pod aligned base fee stored in a pool account.
func GetBaseFeeHandler(rawData []byte) (shared.BaseFeeHandler, error) {
	mode, err := helpers.PodAlignedBaseFeeMode(rawData)
	if err != nil {
		return nil, err
	}
	switch mode {
	case shared.BaseFeeModeFeeTimeSchedulerLinear, shared.BaseFeeModeFeeTimeSchedulerExponential:
		fee, err := helpers.DecodePodAlignedFeeTimeScheduler(rawData)
		if err != nil {
			return nil, err
		}
		return FeeTimeScheduler{
			CliffFeeNumerator:    new(big.Int).SetUint64(fee.CliffFeeNumerator),
			NumberOfPeriod:       fee.NumberOfPeriod,
			PeriodFrequency:      new(big.Int).SetUint64(fee.PeriodFrequency),
			ReductionFactor:      new(big.Int).SetUint64(fee.ReductionFactor),
			FeeTimeSchedulerMode: mode,
		}, nil
	case shared.BaseFeeModeRateLimiter:
		fee, err := helpers.DecodePodAlignedFeeRateLimiter(rawData)
		if err != nil {
			return nil, err
		}
		return FeeRateLimiter{
			CliffFeeNumerator:  new(big.Int).SetUint64(fee.CliffFeeNumerator),
			FeeIncrementBps:    fee.FeeIncrementBps,
			MaxFeeBps:          uint16(fee.MaxFeeBps),
			MaxLimiterDuration: fee.MaxLimiterDuration,
			ReferenceAmount:    new(big.Int).SetUint64(fee.ReferenceAmount),
		}, nil
	case shared.BaseFeeModeFeeMarketCapSchedulerLinear, shared.BaseFeeModeFeeMarketCapSchedulerExp:
		fee, err := helpers.DecodePodAlignedFeeMarketCapScheduler(rawData)
		if err != nil {
			return nil, err
		}
		return FeeMarketCapScheduler{
			CliffFeeNumerator:           new(big.Int).SetUint64(fee.CliffFeeNumerator),
			NumberOfPeriod:              fee.NumberOfPeriod,
			SqrtPriceStepBps:            uint16(fee.SqrtPriceStepBps),
			SchedulerExpirationDuration: fee.SchedulerExpirationDuration,
			ReductionFactor:             new(big.Int).SetUint64(fee.ReductionFactor),
			FeeMarketCapSchedulerMode:   mode,
		}, nil
	default:
		return nil, fmt.Errorf("%w: base fee mode %d", shared.ErrUnsupportedMode, mode)
	}
}

// GetBaseFeeHandlerFromParams decodes the borsh base fee parameters of a pool
// creation request.
func GetBaseFeeHandlerFromParams(params helpers.BaseFeeParameters) (shared.BaseFeeHandler, error) {
	mode := params.Mode()
	switch mode {
	case shared.BaseFeeModeFeeTimeSchedulerLinear, shared.BaseFeeModeFeeTimeSchedulerExponential:
		fee, err := helpers.DecodeFeeTimeSchedulerParams(params.Data[:])
		if err != nil {
			return nil, err
		}
		return FeeTimeScheduler{
			CliffFeeNumerator:    new(big.Int).SetUint64(fee.CliffFeeNumerator),
			NumberOfPeriod:       fee.NumberOfPeriod,
			PeriodFrequency:      new(big.Int).SetUint64(fee.PeriodFrequency),
			ReductionFactor:      new(big.Int).SetUint64(fee.ReductionFactor),
			FeeTimeSchedulerMode: mode,
		}, nil
	case shared.BaseFeeModeRateLimiter:
		fee, err := helpers.DecodeFeeRateLimiterParams(params.Data[:])
		if err != nil {
			return nil, err
		}
		return FeeRateLimiter{
			CliffFeeNumerator:  new(big.Int).SetUint64(fee.CliffFeeNumerator),
			FeeIncrementBps:    fee.FeeIncrementBps,
			MaxFeeBps:          uint16(fee.MaxFeeBps),
			MaxLimiterDuration: fee.MaxLimiterDuration,
			ReferenceAmount:    new(big.Int).SetUint64(fee.ReferenceAmount),
		}, nil
	case shared.BaseFeeModeFeeMarketCapSchedulerLinear, shared.BaseFeeModeFeeMarketCapSchedulerExp:
		fee, err := helpers.DecodeFeeMarketCapSchedulerParams(params.Data[:])
		if err != nil {
			return nil, err
		}
		return FeeMarketCapScheduler{
			CliffFeeNumerator:           new(big.Int).SetUint64(fee.CliffFeeNumerator),
			NumberOfPeriod:              fee.NumberOfPeriod,
			SqrtPriceStepBps:            uint16(fee.SqrtPriceStepBps),
			SchedulerExpirationDuration: fee.SchedulerExpirationDuration,
			ReductionFactor:             new(big.Int).SetUint64(fee.ReductionFactor),
			FeeMarketCapSchedulerMode:   mode,
		}, nil
	default:
		return nil, fmt.Errorf("%w: base fee mode %d", shared.ErrUnsupportedMode, mode)
	}
}
