package helpers

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"

	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
	"github.com/krazyTry/dammv2-quote/u128"
)

// DynamicFeeParameters configures the volatility fee of a new pool.
type DynamicFeeParameters struct {
	BinStep                  uint16
	BinStepU128              binary.Uint128
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	MaxVolatilityAccumulator uint32
	VariableFeeControl       uint32
}

// State is the dynamic fee seen by the quoter for a given accumulator value.
func (p DynamicFeeParameters) State(volatilityAccumulator *big.Int) shared.DynamicFeeState {
	if volatilityAccumulator == nil {
		volatilityAccumulator = big.NewInt(0)
	}
	return shared.DynamicFeeState{
		Initialized:           true,
		BinStep:               p.BinStep,
		VariableFeeControl:    p.VariableFeeControl,
		VolatilityAccumulator: new(big.Int).Set(volatilityAccumulator),
	}
}

func BpsToFeeNumerator(bps uint16) *big.Int {
	fee := new(big.Int).Mul(big.NewInt(int64(bps)), big.NewInt(shared.FeeDenominator))
	return fee.Quo(fee, big.NewInt(shared.BasisPointMax))
}

func FeeNumeratorToBps(feeNumerator *big.Int) uint16 {
	if feeNumerator == nil {
		return 0
	}
	val := new(big.Int).Mul(feeNumerator, big.NewInt(shared.BasisPointMax))
	val.Quo(val, big.NewInt(shared.FeeDenominator))
	return uint16(val.Uint64())
}

func GetMaxFeeBps(poolVersion shared.PoolVersion) uint16 {
	if poolVersion == shared.PoolVersionV1 {
		return shared.MaxFeeBpsV1
	}
	return shared.MaxFeeBpsV0
}

func ValidatePoolFeeBps(baseFeeBps uint16, maxFeeBps uint16, poolVersion shared.PoolVersion) error {
	if baseFeeBps < shared.MinFeeBps {
		return fmt.Errorf("%w: base fee %d bps below %d", shared.ErrInvalidFee, baseFeeBps, shared.MinFeeBps)
	}
	if limit := GetMaxFeeBps(poolVersion); maxFeeBps > limit {
		return fmt.Errorf("%w: max fee %d bps above %d", shared.ErrInvalidFee, maxFeeBps, limit)
	}
	return nil
}

// GetFeeTimeSchedulerParams builds a schedule that decays from startingBaseFeeBps
// to endingBaseFeeBps over numberOfPeriod periods spread across totalDuration.
func GetFeeTimeSchedulerParams(startingBaseFeeBps, endingBaseFeeBps uint16, mode shared.BaseFeeMode, numberOfPeriod uint16, totalDuration uint32) (BaseFeeParameters, error) {
	if mode != shared.BaseFeeModeFeeTimeSchedulerLinear && mode != shared.BaseFeeModeFeeTimeSchedulerExponential {
		return BaseFeeParameters{}, fmt.Errorf("%w: %s is not a time scheduler", shared.ErrUnsupportedMode, mode)
	}
	if startingBaseFeeBps == endingBaseFeeBps {
		if numberOfPeriod != 0 || totalDuration != 0 {
			return BaseFeeParameters{}, fmt.Errorf("%w: numberOfPeriod and totalDuration must both be zero", shared.ErrInvalidInput)
		}
		return toBaseFeeParameters(EncodeFeeTimeSchedulerParams(BpsToFeeNumerator(startingBaseFeeBps), 0, big.NewInt(0), big.NewInt(0), mode))
	}
	if startingBaseFeeBps < endingBaseFeeBps {
		return BaseFeeParameters{}, fmt.Errorf("%w: starting fee %d bps below ending fee %d bps", shared.ErrInvalidInput, startingBaseFeeBps, endingBaseFeeBps)
	}
	if numberOfPeriod == 0 || totalDuration == 0 {
		return BaseFeeParameters{}, fmt.Errorf("%w: numberOfPeriod and totalDuration must be positive", shared.ErrInvalidInput)
	}

	cliffFee := BpsToFeeNumerator(startingBaseFeeBps)
	endingFee := BpsToFeeNumerator(endingBaseFeeBps)
	periodFrequency := big.NewInt(int64(totalDuration / uint32(numberOfPeriod)))

	var reductionFactor *big.Int
	if mode == shared.BaseFeeModeFeeTimeSchedulerLinear {
		reductionFactor = new(big.Int).Sub(cliffFee, endingFee)
		reductionFactor.Quo(reductionFactor, big.NewInt(int64(numberOfPeriod)))
	} else {
		reductionFactor = exponentialReductionFactor(cliffFee, endingFee, numberOfPeriod)
	}
	return toBaseFeeParameters(EncodeFeeTimeSchedulerParams(cliffFee, numberOfPeriod, periodFrequency, reductionFactor, mode))
}

// exponentialReductionFactor returns floor(10000 * (1 - (end/start)^(1/n))).
// It searches the smallest q with q^n * start >= 10000^n * end, which is
// ceil(10000 * (end/start)^(1/n)).
func exponentialReductionFactor(startFee, endFee *big.Int, numberOfPeriod uint16) *big.Int {
	n := big.NewInt(int64(numberOfPeriod))
	target := new(big.Int).Exp(big.NewInt(shared.BasisPointMax), n, nil)
	target.Mul(target, endFee)

	lo, hi := int64(0), int64(shared.BasisPointMax)
	for lo < hi {
		mid := (lo + hi) / 2
		v := new(big.Int).Exp(big.NewInt(mid), n, nil)
		v.Mul(v, startFee)
		if v.Cmp(target) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return big.NewInt(shared.BasisPointMax - lo)
}

func GetFeeRateLimiterParams(startingBaseFeeBps uint16, feeIncrementBps uint16, maxFeeBps uint16, maxLimiterDuration uint32, referenceAmount *big.Int) (BaseFeeParameters, error) {
	if referenceAmount == nil {
		referenceAmount = big.NewInt(0)
	}
	if referenceAmount.BitLen() > 64 {
		return BaseFeeParameters{}, fmt.Errorf("%w: reference amount exceeds u64", shared.ErrOverflow)
	}
	return toBaseFeeParameters(EncodeFeeRateLimiterParams(BpsToFeeNumerator(startingBaseFeeBps), feeIncrementBps, maxLimiterDuration, maxFeeBps, referenceAmount))
}

func GetFeeMarketCapSchedulerParams(startingBaseFeeBps, endingBaseFeeBps uint16, mode shared.BaseFeeMode, numberOfPeriod uint16, sqrtPriceStepBps uint16, schedulerExpirationDuration uint32) (BaseFeeParameters, error) {
	if mode != shared.BaseFeeModeFeeMarketCapSchedulerLinear && mode != shared.BaseFeeModeFeeMarketCapSchedulerExp {
		return BaseFeeParameters{}, fmt.Errorf("%w: %s is not a market cap scheduler", shared.ErrUnsupportedMode, mode)
	}
	cliffFee := BpsToFeeNumerator(startingBaseFeeBps)
	if startingBaseFeeBps == endingBaseFeeBps {
		return toBaseFeeParameters(EncodeFeeMarketCapSchedulerParams(cliffFee, 0, 0, schedulerExpirationDuration, big.NewInt(0), mode))
	}
	if startingBaseFeeBps < endingBaseFeeBps || numberOfPeriod == 0 {
		return BaseFeeParameters{}, fmt.Errorf("%w: market cap schedule must decay over at least one period", shared.ErrInvalidInput)
	}
	endingFee := BpsToFeeNumerator(endingBaseFeeBps)
	var reductionFactor *big.Int
	if mode == shared.BaseFeeModeFeeMarketCapSchedulerLinear {
		reductionFactor = new(big.Int).Sub(cliffFee, endingFee)
		reductionFactor.Quo(reductionFactor, big.NewInt(int64(numberOfPeriod)))
	} else {
		reductionFactor = exponentialReductionFactor(cliffFee, endingFee, numberOfPeriod)
	}
	return toBaseFeeParameters(EncodeFeeMarketCapSchedulerParams(cliffFee, numberOfPeriod, sqrtPriceStepBps, schedulerExpirationDuration, reductionFactor, mode))
}

// BaseFeeConfig gathers the inputs of every base fee mode; only the fields of
// the selected mode are read.
type BaseFeeConfig struct {
	Mode                        shared.BaseFeeMode
	StartingBaseFeeBps          uint16
	EndingBaseFeeBps            uint16
	NumberOfPeriod              uint16
	TotalDuration               uint32
	SqrtPriceStepBps            uint16
	SchedulerExpirationDuration uint32
	FeeIncrementBps             uint16
	MaxLimiterDuration          uint32
	MaxFeeBps                   uint16
	ReferenceAmount             *big.Int
}

func GetBaseFeeParams(cfg BaseFeeConfig) (BaseFeeParameters, error) {
	switch cfg.Mode {
	case shared.BaseFeeModeFeeTimeSchedulerLinear, shared.BaseFeeModeFeeTimeSchedulerExponential:
		return GetFeeTimeSchedulerParams(cfg.StartingBaseFeeBps, cfg.EndingBaseFeeBps, cfg.Mode, cfg.NumberOfPeriod, cfg.TotalDuration)
	case shared.BaseFeeModeRateLimiter:
		return GetFeeRateLimiterParams(cfg.StartingBaseFeeBps, cfg.FeeIncrementBps, cfg.MaxFeeBps, cfg.MaxLimiterDuration, cfg.ReferenceAmount)
	case shared.BaseFeeModeFeeMarketCapSchedulerLinear, shared.BaseFeeModeFeeMarketCapSchedulerExp:
		return GetFeeMarketCapSchedulerParams(cfg.StartingBaseFeeBps, cfg.EndingBaseFeeBps, cfg.Mode, cfg.NumberOfPeriod, cfg.SqrtPriceStepBps, cfg.SchedulerExpirationDuration)
	default:
		return BaseFeeParameters{}, fmt.Errorf("%w: base fee mode %d", shared.ErrUnsupportedMode, cfg.Mode)
	}
}

var errMaxPriceChange = errors.New("max price change above default")

// GetDynamicFeeParams sizes the dynamic fee so that a price move of
// maxPriceChangeBps adds at most 20% of the base fee.
func GetDynamicFeeParams(baseFeeBps uint16, maxPriceChangeBps uint16) (DynamicFeeParameters, error) {
	if maxPriceChangeBps == 0 {
		maxPriceChangeBps = shared.MaxPriceChangeBpsDefault
	}
	if maxPriceChangeBps > shared.MaxPriceChangeBpsDefault {
		return DynamicFeeParameters{}, fmt.Errorf("%w: %w (%d bps)", shared.ErrInvalidInput, errMaxPriceChange, maxPriceChangeBps)
	}

	// floor(sqrt(1 + bps/10000) * 2^64) == isqrt((10000 + bps) * 2^128 / 10000)
	ratio := new(big.Int).Lsh(big.NewInt(int64(shared.BasisPointMax)+int64(maxPriceChangeBps)), 2*shared.ScaleOffset)
	ratio.Quo(ratio, big.NewInt(shared.BasisPointMax))
	sqrtPriceRatioQ64, err := fp.Sqrt(ratio)
	if err != nil {
		return DynamicFeeParameters{}, err
	}

	deltaBinId := new(big.Int).Sub(sqrtPriceRatioQ64, shared.OneQ64)
	deltaBinId.Quo(deltaBinId, shared.BinStepBpsU128Default)
	deltaBinId.Mul(deltaBinId, big.NewInt(2))

	maxVolatilityAccumulator := new(big.Int).Mul(deltaBinId, big.NewInt(shared.BasisPointMax))
	squareVfaBin := new(big.Int).Mul(maxVolatilityAccumulator, big.NewInt(shared.BinStepBpsDefault))
	squareVfaBin.Mul(squareVfaBin, squareVfaBin)
	if squareVfaBin.Sign() == 0 {
		return DynamicFeeParameters{}, fmt.Errorf("%w: zero volatility range", shared.ErrDivisionByZero)
	}

	maxDynamicFeeNumerator := BpsToFeeNumerator(baseFeeBps)
	maxDynamicFeeNumerator.Mul(maxDynamicFeeNumerator, big.NewInt(20)).Quo(maxDynamicFeeNumerator, big.NewInt(100))
	vFee := new(big.Int).Mul(maxDynamicFeeNumerator, shared.DynamicFeeScalingFactor)
	vFee.Sub(vFee, shared.DynamicFeeRoundingOffset)
	if vFee.Sign() < 0 {
		vFee.SetInt64(0)
	}
	variableFeeControl := vFee.Quo(vFee, squareVfaBin)

	binStepU128, err := u128.FromBig(shared.BinStepBpsU128Default)
	if err != nil {
		return DynamicFeeParameters{}, err
	}
	return DynamicFeeParameters{
		BinStep:                  shared.BinStepBpsDefault,
		BinStepU128:              binStepU128,
		FilterPeriod:             shared.DynamicFeeFilterPeriodDefault,
		DecayPeriod:              shared.DynamicFeeDecayPeriodDefault,
		ReductionFactor:          shared.DynamicFeeReductionFactorDefault,
		MaxVolatilityAccumulator: uint32(maxVolatilityAccumulator.Uint64()),
		VariableFeeControl:       uint32(variableFeeControl.Uint64()),
	}, nil
}

func toBaseFeeParameters(data []byte, err error) (BaseFeeParameters, error) {
	if err != nil {
		return BaseFeeParameters{}, err
	}
	if len(data) != BaseFeeDataLen {
		return BaseFeeParameters{}, fmt.Errorf("%w: base fee payload is %d bytes", shared.ErrInvalidInput, len(data))
	}
	var out BaseFeeParameters
	copy(out.Data[:], data)
	return out, nil
}
