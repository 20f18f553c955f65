package shared

import (
	"fmt"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
)

// DynamicFeeState is the volatility driven part of the pool fee. It is only
// charged when Initialized is set.
type DynamicFeeState struct {
	Initialized           bool
	BinStep               uint16
	VariableFeeControl    uint32
	VolatilityAccumulator *big.Int
}

type PoolFees struct {
	BaseFee            BaseFeeHandler
	DynamicFee         DynamicFeeState
	ProtocolFeePercent uint8
	PartnerFeePercent  uint8
	ReferralFeePercent uint8
}

// PoolSnapshot is the immutable pool state a quote is computed against.
// The engine never mutates it.
type PoolSnapshot struct {
	Pool       solanago.PublicKey
	TokenAMint solanago.PublicKey
	TokenBMint solanago.PublicKey
	Partner    solanago.PublicKey

	SqrtPrice     *big.Int
	SqrtMinPrice  *big.Int
	SqrtMaxPrice  *big.Int
	InitSqrtPrice *big.Int
	Liquidity     *big.Int

	PoolFees        PoolFees
	CollectFeeMode  CollectFeeMode
	ActivationType  ActivationType
	ActivationPoint *big.Int
	CurrentPoint    *big.Int
	Version         PoolVersion
	Status          PoolStatus
}

func (p *PoolSnapshot) HasPartner() bool {
	return !p.Partner.IsZero()
}

// IsSwapEnabled reports whether the pool is enabled and activated at CurrentPoint.
func (p *PoolSnapshot) IsSwapEnabled() bool {
	return p.Status == PoolStatusEnable && p.CurrentPoint.Cmp(p.ActivationPoint) >= 0
}

// TradeDirection resolves the swap direction from the input mint.
func (p *PoolSnapshot) TradeDirection(inputMint solanago.PublicKey) (TradeDirection, error) {
	switch {
	case inputMint.Equals(p.TokenAMint):
		return TradeDirectionAtoB, nil
	case inputMint.Equals(p.TokenBMint):
		return TradeDirectionBtoA, nil
	default:
		return 0, fmt.Errorf("%w: token %s does not exist in the pool", ErrInvalidInput, inputMint)
	}
}

// Validate checks the snapshot is complete and its prices are inside the
// protocol bounds.
func (p *PoolSnapshot) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	}
	fields := []struct {
		name  string
		value *big.Int
	}{
		{"sqrtPrice", p.SqrtPrice},
		{"sqrtMinPrice", p.SqrtMinPrice},
		{"sqrtMaxPrice", p.SqrtMaxPrice},
		{"liquidity", p.Liquidity},
		{"activationPoint", p.ActivationPoint},
		{"currentPoint", p.CurrentPoint},
	}
	for _, f := range fields {
		if f.value == nil {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
		if f.value.Sign() < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidInput, f.name)
		}
	}
	if p.PoolFees.BaseFee == nil {
		return fmt.Errorf("%w: base fee is required", ErrInvalidInput)
	}
	if !p.CollectFeeMode.Valid() {
		return fmt.Errorf("%w: collect fee mode %d", ErrUnsupportedMode, p.CollectFeeMode)
	}
	if p.Liquidity.BitLen() > 128 {
		return fmt.Errorf("%w: liquidity exceeds u128", ErrOverflow)
	}
	if p.SqrtMinPrice.Cmp(MinSqrtPrice) < 0 || p.SqrtMaxPrice.Cmp(MaxSqrtPrice) > 0 || p.SqrtMinPrice.Cmp(p.SqrtMaxPrice) >= 0 {
		return fmt.Errorf("%w: invalid price range [%s, %s]", ErrInvalidInput, p.SqrtMinPrice, p.SqrtMaxPrice)
	}
	if p.SqrtPrice.Cmp(p.SqrtMinPrice) < 0 || p.SqrtPrice.Cmp(p.SqrtMaxPrice) > 0 {
		return fmt.Errorf("%w: sqrt price %s", ErrPriceOutOfBounds, p.SqrtPrice)
	}
	return nil
}

// InitialSqrtPrice falls back to the current price when the pool did not
// record its initial price.
func (p *PoolSnapshot) InitialSqrtPrice() *big.Int {
	if p.InitSqrtPrice == nil || p.InitSqrtPrice.Sign() == 0 {
		return p.SqrtPrice
	}
	return p.InitSqrtPrice
}
