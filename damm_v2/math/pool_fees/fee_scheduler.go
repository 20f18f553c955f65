package pool_fees

import (
	"math/big"

	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// GetFeeNumeratorOnLinearFeeScheduler is cliff - period*reduction, floored at zero.
func GetFeeNumeratorOnLinearFeeScheduler(cliffFeeNumerator, reductionFactor *big.Int, period uint16) *big.Int {
	reduction := new(big.Int).Mul(big.NewInt(int64(period)), reductionFactor)
	if reduction.Cmp(cliffFeeNumerator) >= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Sub(cliffFeeNumerator, reduction)
}

// GetFeeNumeratorOnExponentialFeeScheduler is cliff * (1 - reduction/10000)^period,
// evaluated in Q64.64 and truncated.
func GetFeeNumeratorOnExponentialFeeScheduler(cliffFeeNumerator, reductionFactor *big.Int, period uint16) (*big.Int, error) {
	if period == 0 {
		return new(big.Int).Set(cliffFeeNumerator), nil
	}
	bps := new(big.Int).Lsh(reductionFactor, shared.ScaleOffset)
	bps.Quo(bps, basisPointMax)
	base, err := fp.CheckedSub(shared.OneQ64, bps)
	if err != nil {
		return nil, err
	}
	factor, err := fp.Pow(base, big.NewInt(int64(period)))
	if err != nil {
		return nil, err
	}
	return fp.MulShr(cliffFeeNumerator, factor, shared.ScaleOffset, shared.RoundingDown)
}

// GetFeeNumeratorByPeriod evaluates a linear or exponential schedule at a
// period, capped at numberOfPeriod.
func GetFeeNumeratorByPeriod(cliffFeeNumerator *big.Int, numberOfPeriod uint16, period *big.Int, reductionFactor *big.Int, linear bool) (*big.Int, error) {
	p := cappedPeriod(period, numberOfPeriod)
	if linear {
		return GetFeeNumeratorOnLinearFeeScheduler(cliffFeeNumerator, reductionFactor, p), nil
	}
	return GetFeeNumeratorOnExponentialFeeScheduler(cliffFeeNumerator, reductionFactor, p)
}
