package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// price 1 inside [0.25, 4], so the range is [0.5, 2] in sqrt price.
func testRange() (sqrtPrice, sqrtMinPrice, sqrtMaxPrice *big.Int) {
	return new(big.Int).Set(shared.OneQ64), new(big.Int).Rsh(shared.OneQ64, 1), new(big.Int).Lsh(shared.OneQ64, 1)
}

func TestGetLiquidityDeltaTakesSmallerSide(t *testing.T) {
	sqrtPrice, sqrtMinPrice, sqrtMaxPrice := testRange()

	balanced, err := GetLiquidityDelta(big.NewInt(1_000_000), big.NewInt(1_000_000), sqrtPrice, sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(2_000_000), shared.ScaleOffset).String(), balanced.String())

	lessB, err := GetLiquidityDelta(big.NewInt(1_000_000), big.NewInt(500_000), sqrtPrice, sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1_000_000), shared.ScaleOffset).String(), lessB.String())
}

func TestGetLiquidityDeltaAtBounds(t *testing.T) {
	_, sqrtMinPrice, sqrtMaxPrice := testRange()

	// only token B is in range at the upper bound
	atMax, err := GetLiquidityDelta(big.NewInt(0), big.NewInt(1_000_000), sqrtMaxPrice, sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	expected, err := GetLiquidityDeltaFromAmountB(big.NewInt(1_000_000), sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	assert.Equal(t, expected.String(), atMax.String())

	atMin, err := GetLiquidityDelta(big.NewInt(1_000_000), big.NewInt(0), sqrtMinPrice, sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	expected, err = GetLiquidityDeltaFromAmountA(big.NewInt(1_000_000), sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	assert.Equal(t, expected.String(), atMin.String())

	_, err = GetLiquidityDelta(big.NewInt(1), big.NewInt(1), new(big.Int).Add(sqrtMaxPrice, big.NewInt(1)), sqrtMinPrice, sqrtMaxPrice)
	assert.ErrorIs(t, err, shared.ErrPriceOutOfBounds)
}

func TestDepositQuote(t *testing.T) {
	sqrtPrice, sqrtMinPrice, sqrtMaxPrice := testRange()

	quote, err := GetDepositQuote(big.NewInt(1_000_000), true, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(2_000_000), shared.ScaleOffset).String(), quote.LiquidityDelta.String())
	assert.Equal(t, "1000000", quote.OutputAmount.String())
	assert.Equal(t, "1000000", quote.ActualInputAmount.String())
	assert.Equal(t, "1000000", quote.ConsumedInputAmount.String())

	quote, err = GetDepositQuote(big.NewInt(1_000_000), false, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000000", quote.OutputAmount.String())

	_, err = GetDepositQuote(big.NewInt(0), true, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	assert.ErrorIs(t, err, shared.ErrAmountIsZero)
}

func TestDepositQuoteWithTransferFee(t *testing.T) {
	sqrtPrice, sqrtMinPrice, sqrtMaxPrice := testRange()
	feeToken := &helpers.TokenInfo{HasTransferFee: true, BasisPoints: 100, MaximumFee: shared.U64Max}

	quote, err := GetDepositQuote(big.NewInt(1_000_000), true, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, feeToken)
	require.NoError(t, err)
	// 1010102 sent, 10102 withheld, 1000000 arrives
	assert.Equal(t, "1010102", quote.OutputAmount.String())

	quote, err = GetDepositQuote(big.NewInt(1_000_000), true, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, feeToken, nil)
	require.NoError(t, err)
	assert.Equal(t, "990000", quote.ActualInputAmount.String())
	assert.Equal(t, "1000000", quote.ConsumedInputAmount.String())
}

func TestWithdrawQuote(t *testing.T) {
	sqrtPrice, sqrtMinPrice, sqrtMaxPrice := testRange()
	liquidity := new(big.Int).Lsh(big.NewInt(2_000_000), shared.ScaleOffset)

	quote, err := GetWithdrawQuote(liquidity, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000000", quote.OutAmountA.String())
	assert.Equal(t, "1000000", quote.OutAmountB.String())

	quote, err = GetWithdrawQuote(liquidity, sqrtMinPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, quote.OutAmountA.Sign())
	assert.Equal(t, "0", quote.OutAmountB.String())

	quote, err = GetWithdrawQuote(liquidity, sqrtMaxPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "0", quote.OutAmountA.String())
	assert.Equal(t, 1, quote.OutAmountB.Sign())

	feeToken := &helpers.TokenInfo{HasTransferFee: true, BasisPoints: 100, MaximumFee: shared.U64Max}
	quote, err = GetWithdrawQuote(liquidity, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, feeToken, nil)
	require.NoError(t, err)
	assert.Equal(t, "990000", quote.OutAmountA.String())
	assert.Equal(t, "1000000", quote.OutAmountB.String())

	_, err = GetWithdrawQuote(big.NewInt(0), sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	assert.ErrorIs(t, err, shared.ErrAmountIsZero)
}

func TestDepositThenWithdrawNeverGains(t *testing.T) {
	sqrtPrice := new(big.Int).Mul(shared.OneQ64, big.NewInt(3))
	sqrtMinPrice := new(big.Int).Set(shared.OneQ64)
	sqrtMaxPrice := new(big.Int).Mul(shared.OneQ64, big.NewInt(7))

	deposit, err := GetDepositQuote(big.NewInt(123_456_789), true, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)
	withdraw, err := GetWithdrawQuote(deposit.LiquidityDelta, sqrtPrice, sqrtMinPrice, sqrtMaxPrice, nil, nil)
	require.NoError(t, err)

	assert.True(t, withdraw.OutAmountA.Cmp(deposit.ActualInputAmount) <= 0)
	assert.True(t, withdraw.OutAmountB.Cmp(deposit.OutputAmount) <= 0)
}

func TestPreparePoolCreationSingleSide(t *testing.T) {
	_, sqrtMinPrice, sqrtMaxPrice := testRange()

	liquidity, err := PreparePoolCreationSingleSide(big.NewInt(1_000_000), sqrtMinPrice, sqrtMinPrice, sqrtMaxPrice, nil)
	require.NoError(t, err)
	expected, err := GetLiquidityDeltaFromAmountA(big.NewInt(1_000_000), sqrtMinPrice, sqrtMaxPrice)
	require.NoError(t, err)
	assert.Equal(t, expected.String(), liquidity.String())

	_, err = PreparePoolCreationSingleSide(big.NewInt(1_000_000), shared.OneQ64, sqrtMinPrice, sqrtMaxPrice, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLiquidityRoundTrip(t *testing.T) {
	q64 := shared.OneQ64
	ranges := []struct {
		name         string
		lower, upper *big.Int
	}{
		{"half to double", new(big.Int).Rsh(q64, 1), new(big.Int).Lsh(q64, 1)},
		{"narrow", q64, new(big.Int).Add(q64, new(big.Int).Quo(q64, big.NewInt(10_000)))},
		{"full", shared.MinSqrtPrice, shared.MaxSqrtPrice},
		{"high", new(big.Int).Mul(q64, big.NewInt(10)), new(big.Int).Mul(q64, big.NewInt(1000))},
		{"low", new(big.Int).Rsh(q64, 20), new(big.Int).Rsh(q64, 10)},
	}
	liquidities := []*big.Int{
		new(big.Int).Lsh(big.NewInt(1_000_000), shared.ScaleOffset),
		new(big.Int).Lsh(big.NewInt(1_000_000_000_000), shared.ScaleOffset),
		new(big.Int).Add(new(big.Int).Lsh(big.NewInt(123_456_789), shared.ScaleOffset), big.NewInt(987_654_321)),
		new(big.Int).Lsh(big.NewInt(1), 100),
	}

	for _, r := range ranges {
		t.Run(r.name, func(t *testing.T) {
			// liquidity worth one unit of each token bounds the rounding loss
			unitA, err := GetLiquidityDeltaFromAmountA(big.NewInt(1), r.lower, r.upper)
			require.NoError(t, err)
			unitB, err := GetLiquidityDeltaFromAmountB(big.NewInt(1), r.lower, r.upper)
			require.NoError(t, err)

			for _, liquidity := range liquidities {
				amountA, err := GetAmountAFromLiquidityDelta(r.lower, r.upper, liquidity, shared.RoundingDown)
				if err != nil {
					require.ErrorIs(t, err, shared.ErrOverflow)
				} else {
					recovered, err := GetLiquidityDeltaFromAmountA(amountA, r.lower, r.upper)
					require.NoError(t, err)
					assertRecovered(t, liquidity, recovered, unitA)
				}

				amountB, err := GetAmountBFromLiquidityDelta(r.lower, r.upper, liquidity, shared.RoundingDown)
				if err != nil {
					require.ErrorIs(t, err, shared.ErrOverflow)
				} else {
					recovered, err := GetLiquidityDeltaFromAmountB(amountB, r.lower, r.upper)
					require.NoError(t, err)
					assertRecovered(t, liquidity, recovered, unitB)
				}
			}
		})
	}
}

func assertRecovered(t *testing.T, liquidity, recovered, unit *big.Int) {
	t.Helper()
	assert.True(t, recovered.Cmp(liquidity) <= 0, "recovered %s above %s", recovered, liquidity)
	loss := new(big.Int).Sub(liquidity, recovered)
	limit := new(big.Int).Add(unit, big.NewInt(2))
	assert.True(t, loss.Cmp(limit) <= 0, "lost %s, one unit is %s", loss, unit)
}
