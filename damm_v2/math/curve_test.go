package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// 1e12 units of liquidity at price 1.
func testLiquidity() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1_000_000_000_000), shared.ScaleOffset)
}

func TestSwapAtoBAtUnitPrice(t *testing.T) {
	sqrtPrice := new(big.Int).Set(shared.OneQ64)
	liquidity := testLiquidity()

	next, err := GetNextSqrtPriceFromInput(sqrtPrice, liquidity, big.NewInt(1000), true)
	require.NoError(t, err)
	assert.Equal(t, -1, next.Cmp(sqrtPrice))

	out, err := GetAmountBFromLiquidityDelta(next, sqrtPrice, liquidity, shared.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, "999", out.String())
}

func TestSwapBtoAAtUnitPrice(t *testing.T) {
	sqrtPrice := new(big.Int).Set(shared.OneQ64)
	liquidity := testLiquidity()

	next, err := GetNextSqrtPriceFromInput(sqrtPrice, liquidity, big.NewInt(1000), false)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Cmp(sqrtPrice))

	out, err := GetAmountAFromLiquidityDelta(sqrtPrice, next, liquidity, shared.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, "999", out.String())
}

func TestZeroInputKeepsPrice(t *testing.T) {
	sqrtPrice := new(big.Int).Set(shared.OneQ64)
	for _, aToB := range []bool{true, false} {
		next, err := GetNextSqrtPriceFromInput(sqrtPrice, testLiquidity(), big.NewInt(0), aToB)
		require.NoError(t, err)
		assert.Equal(t, 0, next.Cmp(sqrtPrice))
	}
}

func TestExactOutputRoundTrip(t *testing.T) {
	sqrtPrice := new(big.Int).Set(shared.OneQ64)
	liquidity := testLiquidity()
	amountOut := big.NewInt(999)

	next, err := GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, amountOut, true)
	require.NoError(t, err)
	in, err := GetAmountAFromLiquidityDelta(next, sqrtPrice, liquidity, shared.RoundingUp)
	require.NoError(t, err)
	assert.InDelta(t, 1000, in.Int64(), 1)

	// feeding the quoted input back must deliver at least amountOut
	next2, err := GetNextSqrtPriceFromInput(sqrtPrice, liquidity, in, true)
	require.NoError(t, err)
	out, err := GetAmountBFromLiquidityDelta(next2, sqrtPrice, liquidity, shared.RoundingDown)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.Int64(), amountOut.Int64())
}

func TestOutputDrainingReserveFails(t *testing.T) {
	sqrtPrice := new(big.Int).Set(shared.OneQ64)
	liquidity := testLiquidity()

	_, err := GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, big.NewInt(1_000_000_000_000), false)
	assert.ErrorIs(t, err, shared.ErrPriceOutOfBounds)

	_, err = GetNextSqrtPriceFromOutput(sqrtPrice, liquidity, big.NewInt(2_000_000_000_000), true)
	assert.ErrorIs(t, err, shared.ErrPriceOutOfBounds)
}

func TestCurveNeedsLiquidity(t *testing.T) {
	_, err := GetNextSqrtPriceFromInput(shared.OneQ64, big.NewInt(0), big.NewInt(10), true)
	assert.ErrorIs(t, err, shared.ErrInsufficientLiquidity)

	_, err = GetNextSqrtPriceFromOutput(big.NewInt(0), testLiquidity(), big.NewInt(10), true)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRoundingUpNeverBelowDown(t *testing.T) {
	lower := new(big.Int).Rsh(shared.OneQ64, 1)
	upper := new(big.Int).Mul(shared.OneQ64, big.NewInt(3))
	for _, l := range []int64{1, 7, 12345, 999_999_937} {
		liquidity := new(big.Int).Lsh(big.NewInt(l), 40)

		aUp, err := GetAmountAFromLiquidityDelta(lower, upper, liquidity, shared.RoundingUp)
		require.NoError(t, err)
		aDown, err := GetAmountAFromLiquidityDelta(lower, upper, liquidity, shared.RoundingDown)
		require.NoError(t, err)
		assert.True(t, aUp.Cmp(aDown) >= 0)
		assert.True(t, new(big.Int).Sub(aUp, aDown).Cmp(big.NewInt(1)) <= 0)

		bUp, err := GetAmountBFromLiquidityDelta(lower, upper, liquidity, shared.RoundingUp)
		require.NoError(t, err)
		bDown, err := GetAmountBFromLiquidityDelta(lower, upper, liquidity, shared.RoundingDown)
		require.NoError(t, err)
		assert.True(t, bUp.Cmp(bDown) >= 0)
		assert.True(t, new(big.Int).Sub(bUp, bDown).Cmp(big.NewInt(1)) <= 0)
	}
}

func TestAmountOverflowsU64(t *testing.T) {
	_, err := GetAmountBFromLiquidityDelta(shared.MinSqrtPrice, shared.MaxSqrtPrice, shared.U128Max, shared.RoundingDown)
	assert.ErrorIs(t, err, shared.ErrOverflow)
}

func TestLiquidityFromAmounts(t *testing.T) {
	lower := new(big.Int).Rsh(shared.OneQ64, 1)
	sqrtPrice := new(big.Int).Set(shared.OneQ64)
	upper := new(big.Int).Lsh(shared.OneQ64, 1)

	fromA, err := GetLiquidityDeltaFromAmountA(big.NewInt(1_000_000), sqrtPrice, upper)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(2_000_000), shared.ScaleOffset).String(), fromA.String())

	fromB, err := GetLiquidityDeltaFromAmountB(big.NewInt(1_000_000), lower, sqrtPrice)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(2_000_000), shared.ScaleOffset).String(), fromB.String())

	_, err = GetLiquidityDeltaFromAmountA(big.NewInt(0), sqrtPrice, upper)
	assert.ErrorIs(t, err, shared.ErrAmountIsZero)

	_, err = GetLiquidityDeltaFromAmountB(big.NewInt(5), upper, lower)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestValidateSqrtPrice(t *testing.T) {
	assert.NoError(t, ValidateSqrtPrice(shared.OneQ64, shared.MinSqrtPrice, shared.MaxSqrtPrice))
	assert.NoError(t, ValidateSqrtPrice(shared.MinSqrtPrice, shared.MinSqrtPrice, shared.MaxSqrtPrice))
	assert.ErrorIs(t, ValidateSqrtPrice(big.NewInt(1), shared.MinSqrtPrice, shared.MaxSqrtPrice), shared.ErrPriceOutOfBounds)
}
