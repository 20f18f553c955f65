package fixed_point

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

func TestMulDivRounding(t *testing.T) {
	up, err := MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2), shared.RoundingUp)
	require.NoError(t, err)
	assert.Equal(t, "11", up.String())

	down, err := MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2), shared.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, "10", down.String())

	exact, err := MulDiv(big.NewInt(6), big.NewInt(4), big.NewInt(3), shared.RoundingUp)
	require.NoError(t, err)
	assert.Equal(t, "8", exact.String())
}

func TestMulDivErrors(t *testing.T) {
	_, err := MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0), shared.RoundingDown)
	assert.ErrorIs(t, err, shared.ErrDivisionByZero)

	_, err = MulDiv(big.NewInt(-1), big.NewInt(1), big.NewInt(1), shared.RoundingDown)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = MulDiv(shared.U256Max, shared.U256Max, big.NewInt(1), shared.RoundingDown)
	assert.ErrorIs(t, err, shared.ErrOverflow)

	// the U512 intermediate keeps this in range
	v, err := MulDiv(shared.U256Max, shared.U256Max, shared.U256Max, shared.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(shared.U256Max))
}

func TestShifts(t *testing.T) {
	v, err := MulShr(shared.OneQ64, big.NewInt(5), shared.ScaleOffset, shared.RoundingDown)
	require.NoError(t, err)
	assert.Equal(t, "5", v.String())

	v, err = ShlDiv(big.NewInt(1), big.NewInt(3), shared.ScaleOffset, shared.RoundingUp)
	require.NoError(t, err)
	want := new(big.Int).Quo(shared.OneQ64, big.NewInt(3))
	want.Add(want, big.NewInt(1))
	assert.Equal(t, want.String(), v.String())
}

func TestDivCeil(t *testing.T) {
	v, err := DivCeil(big.NewInt(7), big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, "4", v.String())

	v, err = DivCeil(big.NewInt(0), big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())

	_, err = DivCeil(big.NewInt(4), big.NewInt(0))
	assert.ErrorIs(t, err, shared.ErrDivisionByZero)
}

func TestPow(t *testing.T) {
	v, err := Pow(big.NewInt(12345), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(shared.OneQ64))

	half := new(big.Int).Rsh(shared.OneQ64, 1)
	v, err = Pow(half, big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Rsh(shared.OneQ64, 2).String(), v.String())

	_, err = Pow(half, shared.MaxExponential)
	assert.ErrorIs(t, err, shared.ErrOverflow)
}

func TestPowDecreasesBelowOne(t *testing.T) {
	// 0.99 in Q64.64
	base := new(big.Int).Mul(shared.OneQ64, big.NewInt(99))
	base.Quo(base, big.NewInt(100))

	prev := new(big.Int).Set(shared.OneQ64)
	for _, n := range []int64{1, 2, 5, 10, 50} {
		v, err := Pow(base, big.NewInt(n))
		require.NoError(t, err)
		assert.Equal(t, -1, v.Cmp(prev), "0.99^%d", n)
		prev = v
	}
}

func TestSqrt(t *testing.T) {
	for in, want := range map[int64]int64{0: 0, 1: 1, 2: 1, 15: 3, 16: 4, 17: 4, 1_000_000: 1000} {
		v, err := Sqrt(big.NewInt(in))
		require.NoError(t, err)
		assert.Equal(t, want, v.Int64(), "sqrt(%d)", in)
	}

	sq := new(big.Int).Mul(shared.U128Max, shared.U128Max)
	v, err := Sqrt(sq)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(shared.U128Max))

	_, err = Sqrt(big.NewInt(-4))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCheckedArithmetic(t *testing.T) {
	v, err := CheckedMul(big.NewInt(6), big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	top := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err = CheckedMul(top, big.NewInt(2))
	assert.ErrorIs(t, err, shared.ErrOverflow)

	_, err = CheckedAdd(shared.U256Max, big.NewInt(1))
	assert.ErrorIs(t, err, shared.ErrOverflow)

	_, err = CheckedSub(big.NewInt(1), big.NewInt(2))
	assert.ErrorIs(t, err, shared.ErrOverflow)

	_, err = ToU64(new(big.Int).Lsh(big.NewInt(1), 64))
	assert.ErrorIs(t, err, shared.ErrOverflow)

	_, err = ToU128(shared.U128Max)
	assert.NoError(t, err)
}
