package shared

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Enums and common types shared by math, math/pool_fees and dammv2.
type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

func (r Rounding) String() string {
	switch r {
	case RoundingUp:
		return "up"
	case RoundingDown:
		return "down"
	default:
		return "unknown"
	}
}

type BaseFeeMode uint8

const (
	BaseFeeModeFeeTimeSchedulerLinear      BaseFeeMode = 0
	BaseFeeModeFeeTimeSchedulerExponential BaseFeeMode = 1
	BaseFeeModeRateLimiter                 BaseFeeMode = 2
	BaseFeeModeFeeMarketCapSchedulerLinear BaseFeeMode = 3
	BaseFeeModeFeeMarketCapSchedulerExp    BaseFeeMode = 4
)

func (m BaseFeeMode) String() string {
	switch m {
	case BaseFeeModeFeeTimeSchedulerLinear:
		return "time-linear"
	case BaseFeeModeFeeTimeSchedulerExponential:
		return "time-exponential"
	case BaseFeeModeRateLimiter:
		return "rate-limiter"
	case BaseFeeModeFeeMarketCapSchedulerLinear:
		return "market-cap-linear"
	case BaseFeeModeFeeMarketCapSchedulerExp:
		return "market-cap-exponential"
	default:
		return "unknown"
	}
}

// CollectFeeMode selects which token the pool collects trading fees in.
type CollectFeeMode uint8

const (
	CollectFeeModeBothToken CollectFeeMode = 0
	CollectFeeModeOnlyB     CollectFeeMode = 1
)

func (m CollectFeeMode) Valid() bool {
	return m == CollectFeeModeBothToken || m == CollectFeeModeOnlyB
}

type TradeDirection uint8

const (
	TradeDirectionAtoB TradeDirection = 0
	TradeDirectionBtoA TradeDirection = 1
)

func TradeDirectionFromAtoB(aToB bool) TradeDirection {
	if aToB {
		return TradeDirectionAtoB
	}
	return TradeDirectionBtoA
}

type ActivationType uint8

const (
	ActivationTypeSlot      ActivationType = 0
	ActivationTypeTimestamp ActivationType = 1
)

type PoolVersion uint8

const (
	PoolVersionV0 PoolVersion = 0
	PoolVersionV1 PoolVersion = 1
)

type PoolStatus uint8

const (
	PoolStatusEnable  PoolStatus = 0
	PoolStatusDisable PoolStatus = 1
)

type SwapMode uint8

const (
	SwapModeExactIn     SwapMode = 0
	SwapModePartialFill SwapMode = 1
	SwapModeExactOut    SwapMode = 2
)

func (m SwapMode) String() string {
	switch m {
	case SwapModeExactIn:
		return "exact-in"
	case SwapModePartialFill:
		return "partial"
	case SwapModeExactOut:
		return "exact-out"
	default:
		return "unknown"
	}
}

// FeeMode tells the quoter on which side of the swap the fee is charged.
type FeeMode struct {
	FeesOnInput  bool
	FeesOnTokenA bool
	HasReferral  bool
}

type FeeOnAmountResult struct {
	FeeNumerator   *big.Int
	FeeAmount      *big.Int
	AmountAfterFee *big.Int
	TradingFee     *big.Int
	ProtocolFee    *big.Int
	PartnerFee     *big.Int
	ReferralFee    *big.Int
}

type SplitFees struct {
	TradingFee  *big.Int
	ProtocolFee *big.Int
	ReferralFee *big.Int
	PartnerFee  *big.Int
}

type SwapResult struct {
	IncludedFeeInputAmount *big.Int
	ExcludedFeeInputAmount *big.Int
	AmountLeft             *big.Int
	OutputAmount           *big.Int
	NextSqrtPrice          *big.Int
	FeeNumerator           *big.Int
	TotalFee               *big.Int
	TradingFee             *big.Int
	ProtocolFee            *big.Int
	PartnerFee             *big.Int
	ReferralFee            *big.Int
}

type QuoteResult struct {
	SwapResult
	MinimumAmountOut *big.Int
	MaximumAmountIn  *big.Int
	// PriceImpact is a display-only percentage.
	PriceImpact decimal.Decimal
}

// BaseFeeHandler computes the base fee numerator for one base fee mode.
type BaseFeeHandler interface {
	Mode() BaseFeeMode
	Validate(collectFeeMode CollectFeeMode, activationType ActivationType, poolVersion PoolVersion) error
	GetBaseFeeNumeratorFromIncludedFeeAmount(currentPoint, activationPoint *big.Int, tradeDirection TradeDirection, includedFeeAmount *big.Int, initSqrtPrice, currentSqrtPrice *big.Int) (*big.Int, error)
	GetBaseFeeNumeratorFromExcludedFeeAmount(currentPoint, activationPoint *big.Int, tradeDirection TradeDirection, excludedFeeAmount *big.Int, initSqrtPrice, currentSqrtPrice *big.Int) (*big.Int, error)
	ValidateBaseFeeIsStatic(currentPoint, activationPoint *big.Int) bool
	GetMinFeeNumerator() (*big.Int, error)
	GetMaxFeeNumerator() (*big.Int, error)
}

const (
	BasisPointMax  = 10_000
	FeeDenominator = 1_000_000_000

	MinFeeBps       = 1
	MinFeeNumerator = 100_000

	MaxFeeBpsV0       = 5000
	MaxFeeNumeratorV0 = 500_000_000

	MaxFeeBpsV1       = 9900
	MaxFeeNumeratorV1 = 990_000_000

	ScaleOffset    = 64
	LiquidityScale = 128
	U16Max         = 65535

	MaxRateLimiterDurationInSeconds = 43_200
	MaxRateLimiterDurationInSlots   = 108_000

	DynamicFeeFilterPeriodDefault    = 10
	DynamicFeeDecayPeriodDefault     = 120
	DynamicFeeReductionFactorDefault = 5000
	BinStepBpsDefault                = 1
	MaxPriceChangeBpsDefault         = 1500
)

var (
	OneQ64         = new(big.Int).Lsh(big.NewInt(1), ScaleOffset)
	MaxExponential = big.NewInt(0x80000)

	U64Max  = new(big.Int).SetUint64(^uint64(0))
	U128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	U256Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	MinSqrtPrice = bigIntFromString("4295048016")
	MaxSqrtPrice = bigIntFromString("79226673521066979257578248091")

	DynamicFeeScalingFactor  = big.NewInt(100_000_000_000)
	DynamicFeeRoundingOffset = big.NewInt(99_999_999_999)

	BinStepBpsU128Default = bigIntFromString("1844674407370955")
)

func bigIntFromString(v string) *big.Int {
	out, ok := new(big.Int).SetString(v, 10)
	if !ok {
		panic("invalid big integer literal")
	}
	return out
}

type DepositQuote struct {
	ActualInputAmount   *big.Int
	ConsumedInputAmount *big.Int
	OutputAmount        *big.Int
	LiquidityDelta      *big.Int
}

type WithdrawQuote struct {
	LiquidityDelta *big.Int
	OutAmountA     *big.Int
	OutAmountB     *big.Int
}

// PreparedPoolCreation is the initial state of a new pool.
type PreparedPoolCreation struct {
	InitSqrtPrice  *big.Int
	LiquidityDelta *big.Int
}
