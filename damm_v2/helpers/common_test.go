package helpers

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

func TestBpsConversions(t *testing.T) {
	assert.Equal(t, "2500000", BpsToFeeNumerator(25).String())
	assert.Equal(t, uint16(25), FeeNumeratorToBps(big.NewInt(2_500_000)))
	assert.Equal(t, uint16(0), FeeNumeratorToBps(nil))

	assert.NoError(t, ValidatePoolFeeBps(25, 5000, shared.PoolVersionV0))
	assert.ErrorIs(t, ValidatePoolFeeBps(0, 5000, shared.PoolVersionV0), shared.ErrInvalidFee)
	assert.ErrorIs(t, ValidatePoolFeeBps(25, 9000, shared.PoolVersionV0), shared.ErrInvalidFee)
	assert.NoError(t, ValidatePoolFeeBps(25, 9000, shared.PoolVersionV1))
}

func TestFeeTimeSchedulerParams(t *testing.T) {
	params, err := GetFeeTimeSchedulerParams(5000, 100, shared.BaseFeeModeFeeTimeSchedulerLinear, 10, 600)
	require.NoError(t, err)
	assert.Equal(t, shared.BaseFeeModeFeeTimeSchedulerLinear, params.Mode())

	fee, err := DecodeFeeTimeSchedulerParams(params.Data[:])
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000_000), fee.CliffFeeNumerator)
	assert.Equal(t, uint16(10), fee.NumberOfPeriod)
	assert.Equal(t, uint64(60), fee.PeriodFrequency)
	assert.Equal(t, uint64(49_000_000), fee.ReductionFactor)

	// halving in one period is a 50% reduction
	params, err = GetFeeTimeSchedulerParams(5000, 2500, shared.BaseFeeModeFeeTimeSchedulerExponential, 1, 10)
	require.NoError(t, err)
	fee, err = DecodeFeeTimeSchedulerParams(params.Data[:])
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), fee.ReductionFactor)

	params, err = GetFeeTimeSchedulerParams(25, 25, shared.BaseFeeModeFeeTimeSchedulerLinear, 0, 0)
	require.NoError(t, err)
	fee, err = DecodeFeeTimeSchedulerParams(params.Data[:])
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000), fee.CliffFeeNumerator)
	assert.Equal(t, uint64(0), fee.ReductionFactor)
}

func TestFeeTimeSchedulerParamsRejects(t *testing.T) {
	_, err := GetFeeTimeSchedulerParams(25, 25, shared.BaseFeeModeFeeTimeSchedulerLinear, 1, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = GetFeeTimeSchedulerParams(25, 50, shared.BaseFeeModeFeeTimeSchedulerLinear, 1, 10)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = GetFeeTimeSchedulerParams(50, 25, shared.BaseFeeModeFeeTimeSchedulerLinear, 0, 10)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = GetFeeTimeSchedulerParams(50, 25, shared.BaseFeeModeRateLimiter, 1, 10)
	assert.ErrorIs(t, err, shared.ErrUnsupportedMode)
}

func TestBaseFeeParamsModes(t *testing.T) {
	params, err := GetBaseFeeParams(BaseFeeConfig{
		Mode:               shared.BaseFeeModeRateLimiter,
		StartingBaseFeeBps: 100,
		FeeIncrementBps:    10,
		MaxFeeBps:          5000,
		MaxLimiterDuration: 10,
		ReferenceAmount:    big.NewInt(1_000_000),
	})
	require.NoError(t, err)
	assert.Equal(t, shared.BaseFeeModeRateLimiter, params.Mode())
	limiter, err := DecodeFeeRateLimiterParams(params.Data[:])
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), limiter.CliffFeeNumerator)
	assert.Equal(t, uint32(5000), limiter.MaxFeeBps)
	assert.Equal(t, uint64(1_000_000), limiter.ReferenceAmount)

	params, err = GetBaseFeeParams(BaseFeeConfig{
		Mode:                        shared.BaseFeeModeFeeMarketCapSchedulerLinear,
		StartingBaseFeeBps:          5000,
		EndingBaseFeeBps:            1000,
		NumberOfPeriod:              100,
		SqrtPriceStepBps:            100,
		SchedulerExpirationDuration: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, shared.BaseFeeModeFeeMarketCapSchedulerLinear, params.Mode())
	scheduler, err := DecodeFeeMarketCapSchedulerParams(params.Data[:])
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000_000), scheduler.ReductionFactor)
	assert.Equal(t, uint32(100), scheduler.SqrtPriceStepBps)

	_, err = GetBaseFeeParams(BaseFeeConfig{Mode: shared.BaseFeeMode(9)})
	assert.ErrorIs(t, err, shared.ErrUnsupportedMode)

	_, err = GetFeeRateLimiterParams(100, 10, 5000, 10, new(big.Int).Lsh(big.NewInt(1), 64))
	assert.ErrorIs(t, err, shared.ErrOverflow)
}

func TestPodAlignedMode(t *testing.T) {
	data := make([]byte, PodAlignedFeeLen)
	data[8] = byte(shared.BaseFeeModeRateLimiter)
	mode, err := PodAlignedBaseFeeMode(data)
	require.NoError(t, err)
	assert.Equal(t, shared.BaseFeeModeRateLimiter, mode)

	_, err = PodAlignedBaseFeeMode(data[:8])
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = DecodePodAlignedFeeRateLimiter(data[:16])
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestDynamicFeeParams(t *testing.T) {
	params, err := GetDynamicFeeParams(25, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(14_460_000), params.MaxVolatilityAccumulator)
	assert.Equal(t, uint32(239), params.VariableFeeControl)
	assert.Equal(t, uint16(shared.BinStepBpsDefault), params.BinStep)

	state := params.State(nil)
	assert.True(t, state.Initialized)
	assert.Equal(t, "0", state.VolatilityAccumulator.String())

	_, err = GetDynamicFeeParams(25, shared.MaxPriceChangeBpsDefault+1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
