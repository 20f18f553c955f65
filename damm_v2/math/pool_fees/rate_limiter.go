package pool_fees

import (
	"fmt"
	"math/big"

	fp "github.com/krazyTry/dammv2-quote/damm_v2/math/fixed_point"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// FeeRateLimiter raises the fee on B to A trades for inputs above a reference
// amount while the limiter window after activation is open.
//
// With reference amount x0, cliff fee c and increment i, an input of
// x0 + (a*x0 + b) pays x0*(c + c*a + i*a*(a+1)/2) + b*(c + i*(a+1)) while a is
// below the max index; past it every extra unit pays the max fee.
type FeeRateLimiter struct {
	CliffFeeNumerator  *big.Int
	FeeIncrementBps    uint16
	MaxFeeBps          uint16
	MaxLimiterDuration uint32
	ReferenceAmount    *big.Int
}

func (f FeeRateLimiter) Mode() shared.BaseFeeMode {
	return shared.BaseFeeModeRateLimiter
}

func (f FeeRateLimiter) Validate(collectFeeMode shared.CollectFeeMode, activationType shared.ActivationType, poolVersion shared.PoolVersion) error {
	if collectFeeMode != shared.CollectFeeModeOnlyB {
		return fmt.Errorf("%w: rate limiter requires only-b fee collection", shared.ErrInvalidFee)
	}
	if f.CliffFeeNumerator.Cmp(big.NewInt(shared.MinFeeNumerator)) < 0 || f.CliffFeeNumerator.Cmp(bpsToNumerator(f.MaxFeeBps)) > 0 {
		return fmt.Errorf("%w: rate limiter cliff fee %s", shared.ErrInvalidFee, f.CliffFeeNumerator)
	}
	if f.isZero() {
		return nil
	}
	if !f.isNonZero() {
		return fmt.Errorf("%w: rate limiter parameters must be all set or all zero", shared.ErrInvalidFee)
	}

	limit := uint32(shared.MaxRateLimiterDurationInSlots)
	if activationType == shared.ActivationTypeTimestamp {
		limit = shared.MaxRateLimiterDurationInSeconds
	}
	if f.MaxLimiterDuration > limit {
		return fmt.Errorf("%w: limiter duration %d above %d", shared.ErrInvalidFee, f.MaxLimiterDuration, limit)
	}
	if bpsToNumerator(f.FeeIncrementBps).Cmp(feeDenominator) >= 0 {
		return fmt.Errorf("%w: fee increment %d bps", shared.ErrInvalidFee, f.FeeIncrementBps)
	}
	if f.MaxFeeBps > getMaxFeeBps(poolVersion) {
		return fmt.Errorf("%w: max fee %d bps", shared.ErrInvalidFee, f.MaxFeeBps)
	}

	minFee, err := f.feeNumeratorFromIncludedFeeAmount(big.NewInt(0))
	if err != nil {
		return err
	}
	maxFee, err := f.feeNumeratorFromIncludedFeeAmount(shared.U64Max)
	if err != nil {
		return err
	}
	if minFee.Cmp(big.NewInt(shared.MinFeeNumerator)) < 0 || maxFee.Cmp(GetMaxFeeNumerator(poolVersion)) > 0 {
		return fmt.Errorf("%w: rate limiter fee range [%s, %s]", shared.ErrInvalidFee, minFee, maxFee)
	}
	return nil
}

func (f FeeRateLimiter) GetBaseFeeNumeratorFromIncludedFeeAmount(currentPoint, activationPoint *big.Int, tradeDirection shared.TradeDirection, includedFeeAmount *big.Int, _, _ *big.Int) (*big.Int, error) {
	if !f.isApplied(currentPoint, activationPoint, tradeDirection) {
		return new(big.Int).Set(f.CliffFeeNumerator), nil
	}
	return f.feeNumeratorFromIncludedFeeAmount(includedFeeAmount)
}

func (f FeeRateLimiter) GetBaseFeeNumeratorFromExcludedFeeAmount(currentPoint, activationPoint *big.Int, tradeDirection shared.TradeDirection, excludedFeeAmount *big.Int, _, _ *big.Int) (*big.Int, error) {
	if !f.isApplied(currentPoint, activationPoint, tradeDirection) {
		return new(big.Int).Set(f.CliffFeeNumerator), nil
	}
	return f.feeNumeratorFromExcludedFeeAmount(excludedFeeAmount)
}

func (f FeeRateLimiter) ValidateBaseFeeIsStatic(currentPoint, activationPoint *big.Int) bool {
	if f.isZero() {
		return true
	}
	lastEffective := new(big.Int).Add(activationPoint, big.NewInt(int64(f.MaxLimiterDuration)))
	return currentPoint.Cmp(lastEffective) > 0
}

func (f FeeRateLimiter) GetMinFeeNumerator() (*big.Int, error) {
	return new(big.Int).Set(f.CliffFeeNumerator), nil
}

func (f FeeRateLimiter) GetMaxFeeNumerator() (*big.Int, error) {
	if f.isZero() {
		return new(big.Int).Set(f.CliffFeeNumerator), nil
	}
	return f.feeNumeratorFromIncludedFeeAmount(shared.U64Max)
}

func (f FeeRateLimiter) isZero() bool {
	return (f.ReferenceAmount == nil || f.ReferenceAmount.Sign() == 0) &&
		f.MaxLimiterDuration == 0 && f.MaxFeeBps == 0 && f.FeeIncrementBps == 0
}

func (f FeeRateLimiter) isNonZero() bool {
	return f.ReferenceAmount != nil && f.ReferenceAmount.Sign() != 0 &&
		f.MaxLimiterDuration != 0 && f.MaxFeeBps != 0 && f.FeeIncrementBps != 0
}

// isApplied only holds for B to A trades inside the limiter window.
func (f FeeRateLimiter) isApplied(currentPoint, activationPoint *big.Int, tradeDirection shared.TradeDirection) bool {
	if f.isZero() || tradeDirection == shared.TradeDirectionAtoB {
		return false
	}
	if currentPoint.Cmp(activationPoint) < 0 {
		return false
	}
	lastEffective := new(big.Int).Add(activationPoint, big.NewInt(int64(f.MaxLimiterDuration)))
	return currentPoint.Cmp(lastEffective) <= 0
}

func (f FeeRateLimiter) maxIndex() (*big.Int, error) {
	maxFeeNumerator := bpsToNumerator(f.MaxFeeBps)
	if f.CliffFeeNumerator.Cmp(maxFeeNumerator) > 0 {
		return nil, fmt.Errorf("%w: cliff fee above rate limiter max fee", shared.ErrInvalidFee)
	}
	increment := bpsToNumerator(f.FeeIncrementBps)
	if increment.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero fee increment", shared.ErrInvalidFee)
	}
	delta := new(big.Int).Sub(maxFeeNumerator, f.CliffFeeNumerator)
	return delta.Quo(delta, increment), nil
}

func (f FeeRateLimiter) feeNumeratorFromIncludedFeeAmount(inputAmount *big.Int) (*big.Int, error) {
	if inputAmount.Cmp(f.ReferenceAmount) <= 0 {
		return new(big.Int).Set(f.CliffFeeNumerator), nil
	}
	if f.ReferenceAmount.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero reference amount", shared.ErrDivisionByZero)
	}
	maxIndex, err := f.maxIndex()
	if err != nil {
		return nil, err
	}

	one, two := big.NewInt(1), big.NewInt(2)
	c := f.CliffFeeNumerator
	i := bpsToNumerator(f.FeeIncrementBps)
	x0 := f.ReferenceAmount
	a, b := new(big.Int).QuoRem(new(big.Int).Sub(inputAmount, x0), x0, new(big.Int))

	var tradingFeeNumerator *big.Int
	if a.Cmp(maxIndex) < 0 {
		aPlusOne := new(big.Int).Add(a, one)
		numerator1 := new(big.Int).Mul(i, a)
		numerator1.Mul(numerator1, aPlusOne).Quo(numerator1, two)
		numerator1.Add(numerator1, c).Add(numerator1, new(big.Int).Mul(c, a))
		numerator2 := new(big.Int).Mul(i, aPlusOne)
		numerator2.Add(numerator2, c)
		tradingFeeNumerator = new(big.Int).Mul(x0, numerator1)
		tradingFeeNumerator.Add(tradingFeeNumerator, new(big.Int).Mul(b, numerator2))
	} else {
		numerator1 := new(big.Int).Mul(i, maxIndex)
		numerator1.Mul(numerator1, new(big.Int).Add(maxIndex, one)).Quo(numerator1, two)
		numerator1.Add(numerator1, c).Add(numerator1, new(big.Int).Mul(c, maxIndex))
		leftAmount := new(big.Int).Sub(a, maxIndex)
		leftAmount.Mul(leftAmount, x0).Add(leftAmount, b)
		tradingFeeNumerator = new(big.Int).Mul(x0, numerator1)
		tradingFeeNumerator.Add(tradingFeeNumerator, leftAmount.Mul(leftAmount, bpsToNumerator(f.MaxFeeBps)))
	}

	tradingFee, err := fp.DivCeil(tradingFeeNumerator, feeDenominator)
	if err != nil {
		return nil, err
	}
	numerator, err := fp.MulDiv(tradingFee, feeDenominator, inputAmount, shared.RoundingUp)
	if err != nil {
		return nil, err
	}
	return fp.ToU64(numerator)
}

func (f FeeRateLimiter) excludedFromIncluded(includedFeeAmount *big.Int) (*big.Int, error) {
	feeNumerator, err := f.feeNumeratorFromIncludedFeeAmount(includedFeeAmount)
	if err != nil {
		return nil, err
	}
	excluded, _, err := GetExcludedFeeAmount(feeNumerator, includedFeeAmount)
	return excluded, err
}

// checkedAmounts returns the largest input still on the increasing part of the
// fee curve, its fee excluded counterpart and whether it had to be capped at u64.
func (f FeeRateLimiter) checkedAmounts() (excluded, included *big.Int, capped bool, err error) {
	maxIndex, err := f.maxIndex()
	if err != nil {
		return nil, nil, false, err
	}
	included = new(big.Int).Add(maxIndex, big.NewInt(1))
	included.Mul(included, f.ReferenceAmount)
	if included.Cmp(shared.U64Max) > 0 {
		included = new(big.Int).Set(shared.U64Max)
		capped = true
	}
	excluded, err = f.excludedFromIncluded(included)
	if err != nil {
		return nil, nil, false, err
	}
	return excluded, included, capped, nil
}

func (f FeeRateLimiter) feeNumeratorFromExcludedFeeAmount(excludedFeeAmount *big.Int) (*big.Int, error) {
	excludedReference, err := f.excludedFromIncluded(f.ReferenceAmount)
	if err != nil {
		return nil, err
	}
	if excludedFeeAmount.Cmp(excludedReference) <= 0 {
		return new(big.Int).Set(f.CliffFeeNumerator), nil
	}

	checkedExcluded, checkedIncluded, capped, err := f.checkedAmounts()
	if err != nil {
		return nil, err
	}
	if excludedFeeAmount.Cmp(checkedExcluded) == 0 {
		return f.feeNumeratorFromIncludedFeeAmount(checkedIncluded)
	}

	var includedFeeAmount *big.Int
	if excludedFeeAmount.Cmp(checkedExcluded) < 0 {
		// Solve i*x^2 - y*x + z = 0 for the input x whose fee excluded part is
		// excludedFeeAmount, with y = 2*d*x0 + i*x0 - 2*c*x0 and z = 2*ex*d*x0.
		two := big.NewInt(2)
		i := bpsToNumerator(f.FeeIncrementBps)
		x0 := f.ReferenceAmount
		c := f.CliffFeeNumerator

		y := new(big.Int).Mul(two, feeDenominator)
		y.Add(y, i).Sub(y, new(big.Int).Mul(two, c)).Mul(y, x0)
		z := new(big.Int).Mul(two, excludedFeeAmount)
		z.Mul(z, feeDenominator).Mul(z, x0)

		discriminant := new(big.Int).Mul(y, y)
		discriminant.Sub(discriminant, new(big.Int).Mul(big.NewInt(4), new(big.Int).Mul(i, z)))
		if discriminant.Sign() < 0 {
			return nil, fmt.Errorf("%w: rate limiter inverse", shared.ErrNegativeDiscriminant)
		}
		sqrtDiscriminant, err := fp.Sqrt(discriminant)
		if err != nil {
			return nil, err
		}
		includedFeeAmount = new(big.Int).Sub(y, sqrtDiscriminant)
		includedFeeAmount.Quo(includedFeeAmount, new(big.Int).Mul(two, i))

		aPlusOne := new(big.Int).Quo(includedFeeAmount, x0)
		firstExcluded, err := f.excludedFromIncluded(includedFeeAmount)
		if err != nil {
			return nil, err
		}
		remaining, err := fp.CheckedSub(excludedFeeAmount, firstExcluded)
		if err != nil {
			return nil, err
		}
		remainingFeeNumerator := new(big.Int).Mul(i, aPlusOne)
		remainingFeeNumerator.Add(remainingFeeNumerator, c)
		includedRemaining, _, err := GetIncludedFeeAmount(remainingFeeNumerator, remaining)
		if err != nil {
			return nil, err
		}
		includedFeeAmount.Add(includedFeeAmount, includedRemaining)
	} else {
		if capped {
			return nil, fmt.Errorf("%w: rate limiter input above u64", shared.ErrOverflow)
		}
		remaining := new(big.Int).Sub(excludedFeeAmount, checkedExcluded)
		includedRemaining, _, err := GetIncludedFeeAmount(bpsToNumerator(f.MaxFeeBps), remaining)
		if err != nil {
			return nil, err
		}
		includedFeeAmount = includedRemaining.Add(includedRemaining, checkedIncluded)
	}

	tradingFee := new(big.Int).Sub(includedFeeAmount, excludedFeeAmount)
	feeNumerator, err := fp.MulDiv(tradingFee, feeDenominator, includedFeeAmount, shared.RoundingUp)
	if err != nil {
		return nil, err
	}
	if feeNumerator.Cmp(f.CliffFeeNumerator) < 0 {
		return nil, fmt.Errorf("%w: rate limiter fee below cliff", shared.ErrInvalidFee)
	}
	return feeNumerator, nil
}
