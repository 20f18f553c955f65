package helpers

import (
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
)

// TokenInfo carries the Token-2022 transfer fee settings of a mint for the
// current epoch. HasTransferFee is false for classic SPL mints.
type TokenInfo struct {
	Mint           solanago.PublicKey
	Owner          solanago.PublicKey
	CurrentEpoch   uint64
	Decimals       uint8
	BasisPoints    uint16
	MaximumFee     *big.Int
	HasTransferFee bool
}
