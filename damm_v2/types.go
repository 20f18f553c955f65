package dammv2

import (
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// Enums.
type Rounding = shared.Rounding

const (
	RoundingUp   = shared.RoundingUp
	RoundingDown = shared.RoundingDown
)

type BaseFeeMode = shared.BaseFeeMode

const (
	BaseFeeModeFeeTimeSchedulerLinear      = shared.BaseFeeModeFeeTimeSchedulerLinear
	BaseFeeModeFeeTimeSchedulerExponential = shared.BaseFeeModeFeeTimeSchedulerExponential
	BaseFeeModeRateLimiter                 = shared.BaseFeeModeRateLimiter
	BaseFeeModeFeeMarketCapSchedulerLinear = shared.BaseFeeModeFeeMarketCapSchedulerLinear
	BaseFeeModeFeeMarketCapSchedulerExp    = shared.BaseFeeModeFeeMarketCapSchedulerExp
)

type CollectFeeMode = shared.CollectFeeMode

const (
	CollectFeeModeBothToken = shared.CollectFeeModeBothToken
	CollectFeeModeOnlyB     = shared.CollectFeeModeOnlyB
)

type ActivationType = shared.ActivationType

const (
	ActivationTypeSlot      = shared.ActivationTypeSlot
	ActivationTypeTimestamp = shared.ActivationTypeTimestamp
)

type PoolVersion = shared.PoolVersion

const (
	PoolVersionV0 = shared.PoolVersionV0
	PoolVersionV1 = shared.PoolVersionV1
)

type SwapMode = shared.SwapMode

const (
	SwapModeExactIn     = shared.SwapModeExactIn
	SwapModePartialFill = shared.SwapModePartialFill
	SwapModeExactOut    = shared.SwapModeExactOut
)

type TokenInfo = helpers.TokenInfo

type (
	Quote2Result         = shared.QuoteResult
	DepositQuote         = shared.DepositQuote
	WithdrawQuote        = shared.WithdrawQuote
	PreparedPoolCreation = shared.PreparedPoolCreation
)

// GetQuoteParams quotes an exact input swap. CurrentPoint overrides the
// snapshot's slot or timestamp when set.
type GetQuoteParams struct {
	Pool           solanago.PublicKey
	InAmount       *big.Int
	InputTokenMint solanago.PublicKey
	Slippage       uint16
	HasReferral    bool
	CurrentPoint   *big.Int
}

type QuoteResult struct {
	SwapInAmount     *big.Int
	ConsumedInAmount *big.Int
	SwapOutAmount    *big.Int
	MinSwapOutAmount *big.Int
	TotalFee         *big.Int
	PriceImpact      decimal.Decimal
}

type GetQuote2Params struct {
	Pool           solanago.PublicKey
	InputTokenMint solanago.PublicKey
	Slippage       uint16
	HasReferral    bool
	CurrentPoint   *big.Int
	SwapMode       SwapMode
	AmountIn       *big.Int
	AmountOut      *big.Int
}

type LiquidityDeltaParams struct {
	MaxAmountTokenA *big.Int
	MaxAmountTokenB *big.Int
	SqrtPrice       *big.Int
	SqrtMinPrice    *big.Int
	SqrtMaxPrice    *big.Int
}

type GetDepositQuoteParams struct {
	Pool     solanago.PublicKey
	InAmount *big.Int
	IsTokenA bool
}

type GetWithdrawQuoteParams struct {
	Pool           solanago.PublicKey
	LiquidityDelta *big.Int
}

type PreparePoolCreationParams struct {
	TokenAAmount *big.Int
	TokenBAmount *big.Int
	MinSqrtPrice *big.Int
	MaxSqrtPrice *big.Int
	TokenAInfo   *TokenInfo
	TokenBInfo   *TokenInfo
}

type PreparePoolCreationSingleSide struct {
	TokenAAmount  *big.Int
	MinSqrtPrice  *big.Int
	MaxSqrtPrice  *big.Int
	InitSqrtPrice *big.Int
	TokenAInfo    *TokenInfo
}

// FeeInfo is the fee of a pool at its current point, as numerators over
// FeeDenominator.
type FeeInfo struct {
	Mode    BaseFeeMode
	Base    *big.Int
	Dynamic *big.Int
	Total   *big.Int
}
