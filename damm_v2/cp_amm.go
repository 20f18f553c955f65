package dammv2

import (
	"context"
	"fmt"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/krazyTry/dammv2-quote/damm_v2/math"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
	"github.com/krazyTry/dammv2-quote/damm_v2/snapshot"
)

// CpAmm quotes DAMM-V2 pools from snapshots. It holds no pool state itself
// and is safe for concurrent use when its Provider is.
type CpAmm struct {
	provider snapshot.Provider
	logger   *zap.Logger
}

type Option func(*CpAmm)

func WithLogger(logger *zap.Logger) Option {
	return func(c *CpAmm) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCpAmm(provider snapshot.Provider, opts ...Option) *CpAmm {
	c := &CpAmm{
		provider: provider,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// loadPool fetches a snapshot and applies a current point override without
// touching the provider's copy.
func (c *CpAmm) loadPool(ctx context.Context, pool solanago.PublicKey, currentPoint *big.Int) (*snapshot.Snapshot, error) {
	s, err := c.provider.Snapshot(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load pool %s: %w", pool, err)
	}
	if currentPoint == nil {
		return s, nil
	}
	state := *s.Pool
	state.CurrentPoint = new(big.Int).Set(currentPoint)
	return &snapshot.Snapshot{Pool: &state, TokenA: s.TokenA, TokenB: s.TokenB}, nil
}

// GetQuote calculates an exact input swap quote.
func (c *CpAmm) GetQuote(ctx context.Context, params GetQuoteParams) (QuoteResult, error) {
	s, err := c.loadPool(ctx, params.Pool, params.CurrentPoint)
	if err != nil {
		return QuoteResult{}, err
	}
	tradeDirection, err := s.Pool.TradeDirection(params.InputTokenMint)
	if err != nil {
		return QuoteResult{}, err
	}
	aToB := tradeDirection == shared.TradeDirectionAtoB
	inputTokenInfo, outputTokenInfo := s.TokenInfos(aToB)

	quote, err := math.SwapQuoteExactInput(s.Pool, params.InAmount, params.Slippage, aToB, params.HasReferral, inputTokenInfo, outputTokenInfo)
	if err != nil {
		c.logger.Warn("quote failed",
			zap.Stringer("pool", s.Pool.Pool),
			zap.Stringer("amount_in", params.InAmount),
			zap.Bool("a_to_b", aToB),
			zap.Error(err),
		)
		return QuoteResult{}, err
	}
	c.logger.Debug("quote",
		zap.Stringer("pool", s.Pool.Pool),
		zap.Stringer("amount_in", params.InAmount),
		zap.Bool("a_to_b", aToB),
		zap.Stringer("fee_numerator", quote.FeeNumerator),
		zap.Stringer("output", quote.OutputAmount),
	)

	return QuoteResult{
		SwapInAmount:     new(big.Int).Set(params.InAmount),
		ConsumedInAmount: quote.IncludedFeeInputAmount,
		SwapOutAmount:    quote.OutputAmount,
		MinSwapOutAmount: quote.MinimumAmountOut,
		TotalFee:         quote.TotalFee,
		PriceImpact:      quote.PriceImpact,
	}, nil
}

// GetQuote2 quotes any swap mode.
func (c *CpAmm) GetQuote2(ctx context.Context, params GetQuote2Params) (Quote2Result, error) {
	s, err := c.loadPool(ctx, params.Pool, params.CurrentPoint)
	if err != nil {
		return Quote2Result{}, err
	}
	tradeDirection, err := s.Pool.TradeDirection(params.InputTokenMint)
	if err != nil {
		return Quote2Result{}, err
	}
	aToB := tradeDirection == shared.TradeDirectionAtoB
	inputTokenInfo, outputTokenInfo := s.TokenInfos(aToB)

	var quote Quote2Result
	amount := params.AmountIn
	switch params.SwapMode {
	case SwapModeExactIn:
		quote, err = math.SwapQuoteExactInput(s.Pool, params.AmountIn, params.Slippage, aToB, params.HasReferral, inputTokenInfo, outputTokenInfo)
	case SwapModePartialFill:
		quote, err = math.SwapQuotePartialInput(s.Pool, params.AmountIn, params.Slippage, aToB, params.HasReferral, inputTokenInfo, outputTokenInfo)
	case SwapModeExactOut:
		amount = params.AmountOut
		quote, err = math.SwapQuoteExactOutput(s.Pool, params.AmountOut, params.Slippage, aToB, params.HasReferral, inputTokenInfo, outputTokenInfo)
	default:
		return Quote2Result{}, fmt.Errorf("%w: swap mode %d", shared.ErrUnsupportedMode, params.SwapMode)
	}
	if err != nil {
		c.logger.Warn("quote failed",
			zap.Stringer("pool", s.Pool.Pool),
			zap.Stringer("mode", params.SwapMode),
			zap.Stringer("amount", amount),
			zap.Bool("a_to_b", aToB),
			zap.Error(err),
		)
		return Quote2Result{}, err
	}
	c.logger.Debug("quote",
		zap.Stringer("pool", s.Pool.Pool),
		zap.Stringer("mode", params.SwapMode),
		zap.Stringer("amount", amount),
		zap.Bool("a_to_b", aToB),
		zap.Stringer("fee_numerator", quote.FeeNumerator),
		zap.Stringer("output", quote.OutputAmount),
	)
	return quote, nil
}

// GetLiquidityDelta computes the liquidity funded by both token maximums.
func (c *CpAmm) GetLiquidityDelta(params LiquidityDeltaParams) (*big.Int, error) {
	return math.GetLiquidityDelta(params.MaxAmountTokenA, params.MaxAmountTokenB, params.SqrtPrice, params.SqrtMinPrice, params.SqrtMaxPrice)
}

// GetDepositQuote prices a one sided deposit into a pool.
func (c *CpAmm) GetDepositQuote(ctx context.Context, params GetDepositQuoteParams) (DepositQuote, error) {
	s, err := c.loadPool(ctx, params.Pool, nil)
	if err != nil {
		return DepositQuote{}, err
	}
	inputTokenInfo, outputTokenInfo := s.TokenInfos(params.IsTokenA)
	return math.GetDepositQuote(params.InAmount, params.IsTokenA, s.Pool.SqrtPrice, s.Pool.SqrtMinPrice, s.Pool.SqrtMaxPrice, inputTokenInfo, outputTokenInfo)
}

// GetWithdrawQuote prices removing liquidity from a pool.
func (c *CpAmm) GetWithdrawQuote(ctx context.Context, params GetWithdrawQuoteParams) (WithdrawQuote, error) {
	s, err := c.loadPool(ctx, params.Pool, nil)
	if err != nil {
		return WithdrawQuote{}, err
	}
	return math.GetWithdrawQuote(params.LiquidityDelta, s.Pool.SqrtPrice, s.Pool.SqrtMinPrice, s.Pool.SqrtMaxPrice, s.TokenA, s.TokenB)
}

// PreparePoolCreationParams computes init price and liquidity.
func (c *CpAmm) PreparePoolCreationParams(params PreparePoolCreationParams) (PreparedPoolCreation, error) {
	prepared, err := math.PreparePoolCreationParams(params.TokenAAmount, params.TokenBAmount, params.MinSqrtPrice, params.MaxSqrtPrice, params.TokenAInfo, params.TokenBInfo)
	if err != nil {
		return PreparedPoolCreation{}, err
	}
	c.logger.Debug("prepared pool creation",
		zap.Stringer("init_sqrt_price", prepared.InitSqrtPrice),
		zap.Stringer("liquidity", prepared.LiquidityDelta),
	)
	return prepared, nil
}

// PreparePoolCreationSingleSide calculates liquidity for single-sided creation.
func (c *CpAmm) PreparePoolCreationSingleSide(params PreparePoolCreationSingleSide) (*big.Int, error) {
	return math.PreparePoolCreationSingleSide(params.TokenAAmount, params.InitSqrtPrice, params.MinSqrtPrice, params.MaxSqrtPrice, params.TokenAInfo)
}

// GetFeeInfo reports the fee of a pool for a trade in tradeDirection.
func (c *CpAmm) GetFeeInfo(ctx context.Context, pool solanago.PublicKey, tradeDirection shared.TradeDirection, currentPoint *big.Int) (FeeInfo, error) {
	s, err := c.loadPool(ctx, pool, currentPoint)
	if err != nil {
		return FeeInfo{}, err
	}
	base, dynamic, total, err := math.GetCurrentFeeNumerators(s.Pool, tradeDirection)
	if err != nil {
		return FeeInfo{}, err
	}
	return FeeInfo{Mode: s.Pool.PoolFees.BaseFee.Mode(), Base: base, Dynamic: dynamic, Total: total}, nil
}
