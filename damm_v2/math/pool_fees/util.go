package pool_fees

import (
	"fmt"
	"math/big"

	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

var (
	feeDenominator = big.NewInt(shared.FeeDenominator)
	basisPointMax  = big.NewInt(shared.BasisPointMax)
)

// ToNumerator converts basis points to a fee numerator over 1e9, rounding down.
func ToNumerator(bps *big.Int) (*big.Int, error) {
	return fp.MulDiv(bps, feeDenominator, basisPointMax, shared.RoundingDown)
}

func bpsToNumerator(bps uint16) *big.Int {
	// bps*1e9/1e4 cannot overflow for a u16 input
	return new(big.Int).Mul(big.NewInt(int64(bps)), big.NewInt(shared.FeeDenominator/shared.BasisPointMax))
}

// GetIncludedFeeAmount returns the amount a trader must send so that
// excludedFeeAmount remains after the fee, plus the fee itself.
func GetIncludedFeeAmount(tradeFeeNumerator, excludedFeeAmount *big.Int) (*big.Int, *big.Int, error) {
	if tradeFeeNumerator.Cmp(feeDenominator) >= 0 {
		return nil, nil, fmt.Errorf("%w: fee numerator %s", shared.ErrInvalidFee, tradeFeeNumerator)
	}
	denominator := new(big.Int).Sub(feeDenominator, tradeFeeNumerator)
	included, err := fp.MulDiv(excludedFeeAmount, feeDenominator, denominator, shared.RoundingUp)
	if err != nil {
		return nil, nil, err
	}
	included, err = fp.ToU64(included)
	if err != nil {
		return nil, nil, err
	}
	feeAmount := new(big.Int).Sub(included, excludedFeeAmount)
	return included, feeAmount, nil
}

// GetMaxFeeNumerator is the protocol fee cap for a pool version. Unknown
// versions get the V0 cap.
func GetMaxFeeNumerator(poolVersion shared.PoolVersion) *big.Int {
	if poolVersion == shared.PoolVersionV1 {
		return big.NewInt(shared.MaxFeeNumeratorV1)
	}
	return big.NewInt(shared.MaxFeeNumeratorV0)
}

func getMaxFeeBps(poolVersion shared.PoolVersion) uint16 {
	if poolVersion == shared.PoolVersionV1 {
		return shared.MaxFeeBpsV1
	}
	return shared.MaxFeeBpsV0
}

func cappedPeriod(period *big.Int, numberOfPeriod uint16) uint16 {
	maxPeriod := big.NewInt(int64(numberOfPeriod))
	if period.Cmp(maxPeriod) > 0 {
		return numberOfPeriod
	}
	return uint16(period.Uint64())
}

// GetExcludedFeeAmount splits includedFeeAmount into the amount left after the
// fee and the fee, which rounds up.
func GetExcludedFeeAmount(tradeFeeNumerator, includedFeeAmount *big.Int) (*big.Int, *big.Int, error) {
	tradingFee, err := fp.MulDiv(includedFeeAmount, tradeFeeNumerator, feeDenominator, shared.RoundingUp)
	if err != nil {
		return nil, nil, err
	}
	excluded, err := fp.CheckedSub(includedFeeAmount, tradingFee)
	if err != nil {
		return nil, nil, err
	}
	return excluded, tradingFee, nil
}
