package u128

import (
	"errors"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
)

var (
	ErrNegative = errors.New("value cannot be negative")
	ErrOverflow = errors.New("value overflows Uint128")
)

type Uint128 binary.Uint128

func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	}
	v, err := FromBig(i)
	if err != nil {
		return err
	}
	*u = Uint128(v)
	return nil
}

// Parse reads a base 10 string into a little endian Uint128.
func Parse(num string) (binary.Uint128, error) {
	u := binary.NewUint128LittleEndian()
	if _, err := fmt.Sscan(num, (*Uint128)(u)); err != nil {
		return binary.Uint128{}, fmt.Errorf("parse %q: %w", num, err)
	}
	return *u, nil
}

func FromBig(v *big.Int) (binary.Uint128, error) {
	if v == nil {
		return binary.Uint128{}, nil
	}
	if v.Sign() < 0 {
		return binary.Uint128{}, ErrNegative
	}
	if v.BitLen() > 128 {
		return binary.Uint128{}, ErrOverflow
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return binary.Uint128{Lo: lo, Hi: hi, Endianness: binary.LE}, nil
}

func MustFromBig(v *big.Int) binary.Uint128 {
	out, err := FromBig(v)
	if err != nil {
		panic(err)
	}
	return out
}
