package fixed_point

import (
	"fmt"
	"math/big"

	cosmath "cosmossdk.io/math"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

var one = big.NewInt(1)

// MulDiv returns x*y/denominator rounded in the given direction. Operands are
// U256 values and the product is held at U512, so only the quotient can overflow.
func MulDiv(x, y, denominator *big.Int, rounding shared.Rounding) (*big.Int, error) {
	if denominator == nil || denominator.Sign() == 0 {
		return nil, fmt.Errorf("%w: mul div denominator", shared.ErrDivisionByZero)
	}
	if err := checkU256(x, y, denominator); err != nil {
		return nil, err
	}
	prod := new(big.Int).Mul(x, y)
	div, mod := new(big.Int).QuoRem(prod, denominator, new(big.Int))
	if rounding == shared.RoundingUp && mod.Sign() != 0 {
		div.Add(div, one)
	}
	if div.BitLen() > 256 {
		return nil, fmt.Errorf("%w: mul div result exceeds u256", shared.ErrOverflow)
	}
	return div, nil
}

// MulShr returns x*y >> offset.
func MulShr(x, y *big.Int, offset uint, rounding shared.Rounding) (*big.Int, error) {
	return MulDiv(x, y, new(big.Int).Lsh(one, offset), rounding)
}

// ShlDiv returns (x << offset) / y.
func ShlDiv(x, y *big.Int, offset uint, rounding shared.Rounding) (*big.Int, error) {
	return MulDiv(x, new(big.Int).Lsh(one, offset), y, rounding)
}

// DivCeil returns ceil(a/b); it is zero when a is zero.
func DivCeil(a, b *big.Int) (*big.Int, error) {
	if b == nil || b.Sign() == 0 {
		return nil, fmt.Errorf("%w: div ceil", shared.ErrDivisionByZero)
	}
	if a.Sign() == 0 {
		return big.NewInt(0), nil
	}
	out := new(big.Int).Add(a, b)
	out.Sub(out, one)
	return out.Quo(out, b), nil
}

// Pow raises a Q64.64 base to an integer power by repeated squaring. A base
// above one is inverted first so every intermediate stays below 2^128.
func Pow(base, exp *big.Int) (*big.Int, error) {
	if exp == nil || exp.Sign() == 0 {
		return new(big.Int).Set(shared.OneQ64), nil
	}
	invert := exp.Sign() < 0
	absExp := new(big.Int).Abs(exp)
	if absExp.Cmp(shared.MaxExponential) >= 0 {
		return nil, fmt.Errorf("%w: exponent %s", shared.ErrOverflow, exp)
	}
	if base.Sign() <= 0 {
		return nil, fmt.Errorf("%w: pow base must be positive", shared.ErrInvalidInput)
	}

	squaredBase := new(big.Int).Set(base)
	result := new(big.Int).Set(shared.OneQ64)
	if squaredBase.Cmp(result) >= 0 {
		squaredBase.Quo(shared.U128Max, squaredBase)
		invert = !invert
	}

	for bit := 0; bit <= 18; bit++ {
		if absExp.Bit(bit) == 1 {
			result.Mul(result, squaredBase)
			if result.BitLen() > 128 {
				return nil, fmt.Errorf("%w: pow", shared.ErrOverflow)
			}
			result.Rsh(result, shared.ScaleOffset)
		}
		squaredBase.Mul(squaredBase, squaredBase)
		if squaredBase.BitLen() > 128 {
			return nil, fmt.Errorf("%w: pow", shared.ErrOverflow)
		}
		squaredBase.Rsh(squaredBase, shared.ScaleOffset)
	}

	if result.Sign() == 0 {
		return nil, fmt.Errorf("%w: pow underflow", shared.ErrOverflow)
	}
	if invert {
		result.Quo(shared.U128Max, result)
	}
	return result, nil
}

// Sqrt is the integer square root, floor(sqrt(value)), by Newton iteration.
func Sqrt(value *big.Int) (*big.Int, error) {
	if value == nil || value.Sign() < 0 {
		return nil, fmt.Errorf("%w: sqrt of negative value", shared.ErrInvalidInput)
	}
	if value.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if value.Cmp(one) == 0 {
		return big.NewInt(1), nil
	}

	x := new(big.Int).Set(value)
	y := new(big.Int).Add(value, one)
	y.Rsh(y, 1)
	for y.Cmp(x) < 0 {
		x.Set(y)
		y.Quo(value, x)
		y.Add(y, x)
		y.Rsh(y, 1)
	}
	return x, nil
}

// CheckedMul multiplies two U256 values and fails when the product leaves U256.
func CheckedMul(a, b *big.Int) (*big.Int, error) {
	x, y, err := toInt256(a, b)
	if err != nil {
		return nil, err
	}
	res, err := x.SafeMul(y)
	if err != nil {
		return nil, fmt.Errorf("%w: %s * %s", shared.ErrOverflow, a, b)
	}
	return res.BigInt(), nil
}

// CheckedAdd adds two U256 values and fails when the sum leaves U256.
func CheckedAdd(a, b *big.Int) (*big.Int, error) {
	x, y, err := toInt256(a, b)
	if err != nil {
		return nil, err
	}
	res, err := x.SafeAdd(y)
	if err != nil {
		return nil, fmt.Errorf("%w: %s + %s", shared.ErrOverflow, a, b)
	}
	return res.BigInt(), nil
}

// CheckedSub fails instead of going below zero.
func CheckedSub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, fmt.Errorf("%w: %s - %s underflows", shared.ErrOverflow, a, b)
	}
	return new(big.Int).Sub(a, b), nil
}

// ToU64 narrows v to a token amount.
func ToU64(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || v.BitLen() > 64 {
		return nil, fmt.Errorf("%w: %s does not fit u64", shared.ErrOverflow, v)
	}
	return v, nil
}

// ToU128 narrows v to a price or liquidity value.
func ToU128(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return nil, fmt.Errorf("%w: %s does not fit u128", shared.ErrOverflow, v)
	}
	return v, nil
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

func checkU256(values ...*big.Int) error {
	for _, v := range values {
		if v == nil {
			return fmt.Errorf("%w: nil operand", shared.ErrInvalidInput)
		}
		if v.Sign() < 0 {
			return fmt.Errorf("%w: negative operand %s", shared.ErrInvalidInput, v)
		}
		if v.BitLen() > 256 {
			return fmt.Errorf("%w: operand exceeds u256", shared.ErrOverflow)
		}
	}
	return nil
}

func toInt256(a, b *big.Int) (cosmath.Int, cosmath.Int, error) {
	if err := checkU256(a, b); err != nil {
		return cosmath.Int{}, cosmath.Int{}, err
	}
	return cosmath.NewIntFromBigInt(a), cosmath.NewIntFromBigInt(b), nil
}
