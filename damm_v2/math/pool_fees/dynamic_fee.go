package pool_fees

import (
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// GetDynamicFeeNumerator is ceil((volatilityAccumulator*binStep)^2 * variableFeeControl / 1e11).
// A pool without an initialized dynamic fee pays zero.
func GetDynamicFeeNumerator(dynamicFee shared.DynamicFeeState) *big.Int {
	if !dynamicFee.Initialized || dynamicFee.VolatilityAccumulator == nil {
		return big.NewInt(0)
	}
	squareVfaBin := new(big.Int).Mul(dynamicFee.VolatilityAccumulator, big.NewInt(int64(dynamicFee.BinStep)))
	squareVfaBin.Mul(squareVfaBin, squareVfaBin)
	vFee := new(big.Int).Mul(big.NewInt(int64(dynamicFee.VariableFeeControl)), squareVfaBin)
	vFee.Add(vFee, shared.DynamicFeeRoundingOffset)
	return vFee.Quo(vFee, shared.DynamicFeeScalingFactor)
}
