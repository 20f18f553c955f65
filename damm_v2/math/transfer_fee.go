package math

import (
	"math/big"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
)

type TransferFeeIncludedAmount struct {
	Amount      *big.Int
	TransferFee *big.Int
}

type TransferFeeExcludedAmount struct {
	Amount      *big.Int
	TransferFee *big.Int
}

// CalculateTransferFeeIncludedAmount returns what has to be sent so that
// transferFeeExcludedAmount arrives. A nil tokenInfo means no transfer fee.
func CalculateTransferFeeIncludedAmount(transferFeeExcludedAmount *big.Int, tokenInfo *helpers.TokenInfo) TransferFeeIncludedAmount {
	fee := tokenInfo.InverseTransferFee(transferFeeExcludedAmount)
	return TransferFeeIncludedAmount{
		Amount:      new(big.Int).Add(transferFeeExcludedAmount, fee),
		TransferFee: fee,
	}
}

// CalculateTransferFeeExcludedAmount returns what arrives when
// transferFeeIncludedAmount is sent.
func CalculateTransferFeeExcludedAmount(transferFeeIncludedAmount *big.Int, tokenInfo *helpers.TokenInfo) TransferFeeExcludedAmount {
	fee := tokenInfo.TransferFee(transferFeeIncludedAmount)
	return TransferFeeExcludedAmount{
		Amount:      new(big.Int).Sub(transferFeeIncludedAmount, fee),
		TransferFee: fee,
	}
}
