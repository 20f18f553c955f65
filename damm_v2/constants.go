package dammv2

import (
	solanago "github.com/gagliardetto/solana-go"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

const (
	LiquidityScale = shared.LiquidityScale
	ScaleOffset    = shared.ScaleOffset

	BasisPointMax  = shared.BasisPointMax
	FeeDenominator = shared.FeeDenominator

	MinFeeBps       = shared.MinFeeBps       // 0.01%
	MinFeeNumerator = shared.MinFeeNumerator // 0.01%

	MaxFeeBpsV0       = shared.MaxFeeBpsV0       // 50%
	MaxFeeNumeratorV0 = shared.MaxFeeNumeratorV0 // 50%

	MaxFeeBpsV1       = shared.MaxFeeBpsV1       // 99%
	MaxFeeNumeratorV1 = shared.MaxFeeNumeratorV1 // 99%

	DynamicFeeFilterPeriodDefault    = shared.DynamicFeeFilterPeriodDefault
	DynamicFeeDecayPeriodDefault     = shared.DynamicFeeDecayPeriodDefault
	DynamicFeeReductionFactorDefault = shared.DynamicFeeReductionFactorDefault // 50%
	BinStepBpsDefault                = shared.BinStepBpsDefault
	MaxPriceChangeBpsDefault         = shared.MaxPriceChangeBpsDefault // 15%

	MaxRateLimiterDurationInSeconds = shared.MaxRateLimiterDurationInSeconds
	MaxRateLimiterDurationInSlots   = shared.MaxRateLimiterDurationInSlots
)

var (
	// CpAmmProgramID is the program whose arithmetic the quotes reproduce.
	CpAmmProgramID = solanago.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")

	OneQ64       = shared.OneQ64
	MinSqrtPrice = shared.MinSqrtPrice
	MaxSqrtPrice = shared.MaxSqrtPrice
	U64Max       = shared.U64Max
	U128Max      = shared.U128Max
)
