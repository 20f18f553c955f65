package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dammv2 "github.com/krazyTry/dammv2-quote/damm_v2"
	"github.com/krazyTry/dammv2-quote/damm_v2/math"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
	"github.com/krazyTry/dammv2-quote/damm_v2/snapshot"
	"github.com/krazyTry/dammv2-quote/internal/config"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
	amm    *dammv2.CpAmm
	pool   solanago.PublicKey
}

func setup(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	var pool solanago.PublicKey
	if cfg.Pool != "" {
		if pool, err = solanago.PublicKeyFromBase58(cfg.Pool); err != nil {
			return nil, fmt.Errorf("pool: %w", err)
		}
	}
	return &app{
		cfg:    cfg,
		logger: logger,
		amm:    dammv2.NewCpAmm(snapshot.FileProvider{Path: cfg.Snapshot}, dammv2.WithLogger(logger)),
		pool:   pool,
	}, nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	amount, err := bigFlag(cmd, "amount", true)
	if err != nil {
		return err
	}
	currentPoint, err := optionalBig(a.cfg.CurrentPoint)
	if err != nil {
		return fmt.Errorf("current-point: %w", err)
	}
	mode, err := parseSwapMode(a.cfg.Mode)
	if err != nil {
		return err
	}
	aToB, _ := cmd.Flags().GetBool("a-to-b")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := snapshot.FileProvider{Path: a.cfg.Snapshot}.Snapshot(ctx, a.pool)
	if err != nil {
		return err
	}
	inputMint := s.Pool.TokenBMint
	if aToB {
		inputMint = s.Pool.TokenAMint
	}
	params := dammv2.GetQuote2Params{
		Pool:           s.Pool.Pool,
		InputTokenMint: inputMint,
		Slippage:       a.cfg.SlippageBps,
		HasReferral:    a.cfg.HasReferral,
		CurrentPoint:   currentPoint,
		SwapMode:       mode,
	}
	if mode == shared.SwapModeExactOut {
		params.AmountOut = amount
	} else {
		params.AmountIn = amount
	}
	quote, err := a.amm.GetQuote2(ctx, params)
	if err != nil {
		return err
	}

	decA, decB := s.Decimals()
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"mode":                   mode.String(),
		"aToB":                   aToB,
		"includedFeeInputAmount": quote.IncludedFeeInputAmount.String(),
		"excludedFeeInputAmount": quote.ExcludedFeeInputAmount.String(),
		"amountLeft":             quote.AmountLeft.String(),
		"outputAmount":           quote.OutputAmount.String(),
		"minimumAmountOut":       quote.MinimumAmountOut.String(),
		"maximumAmountIn":        quote.MaximumAmountIn.String(),
		"nextSqrtPrice":          quote.NextSqrtPrice.String(),
		"nextPrice":              math.GetPriceFromSqrtPrice(quote.NextSqrtPrice, decA, decB).String(),
		"feeNumerator":           quote.FeeNumerator.String(),
		"totalFee":               quote.TotalFee.String(),
		"tradingFee":             quote.TradingFee.String(),
		"protocolFee":            quote.ProtocolFee.String(),
		"partnerFee":             quote.PartnerFee.String(),
		"referralFee":            quote.ReferralFee.String(),
		"priceImpact":            quote.PriceImpact.String(),
	})
}

func runLiquidity(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	amountA, err := bigFlag(cmd, "amount-a", true)
	if err != nil {
		return err
	}
	amountB, err := bigFlag(cmd, "amount-b", true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := snapshot.FileProvider{Path: a.cfg.Snapshot}.Snapshot(ctx, a.pool)
	if err != nil {
		return err
	}
	liquidity, err := a.amm.GetLiquidityDelta(dammv2.LiquidityDeltaParams{
		MaxAmountTokenA: amountA,
		MaxAmountTokenB: amountB,
		SqrtPrice:       s.Pool.SqrtPrice,
		SqrtMinPrice:    s.Pool.SqrtMinPrice,
		SqrtMaxPrice:    s.Pool.SqrtMaxPrice,
	})
	if err != nil {
		return err
	}
	withdraw, err := a.amm.GetWithdrawQuote(ctx, dammv2.GetWithdrawQuoteParams{Pool: s.Pool.Pool, LiquidityDelta: liquidity})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"liquidityDelta":  liquidity.String(),
		"withdrawAmountA": withdraw.OutAmountA.String(),
		"withdrawAmountB": withdraw.OutAmountB.String(),
	})
}

func runInitPrice(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	amountA, err := bigFlag(cmd, "amount-a", true)
	if err != nil {
		return err
	}
	amountB, err := bigFlag(cmd, "amount-b", true)
	if err != nil {
		return err
	}
	minSqrtPrice, err := bigFlag(cmd, "min-sqrt-price", false)
	if err != nil {
		return err
	}
	if minSqrtPrice == nil {
		minSqrtPrice = new(big.Int).Set(dammv2.MinSqrtPrice)
	}
	maxSqrtPrice, err := bigFlag(cmd, "max-sqrt-price", false)
	if err != nil {
		return err
	}
	if maxSqrtPrice == nil {
		maxSqrtPrice = new(big.Int).Set(dammv2.MaxSqrtPrice)
	}

	prepared, err := a.amm.PreparePoolCreationParams(dammv2.PreparePoolCreationParams{
		TokenAAmount: amountA,
		TokenBAmount: amountB,
		MinSqrtPrice: minSqrtPrice,
		MaxSqrtPrice: maxSqrtPrice,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"initSqrtPrice":  prepared.InitSqrtPrice.String(),
		"initPrice":      math.GetPriceFromSqrtPrice(prepared.InitSqrtPrice, 0, 0).String(),
		"liquidityDelta": prepared.LiquidityDelta.String(),
	})
}

func runFee(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	currentPoint, err := optionalBig(a.cfg.CurrentPoint)
	if err != nil {
		return fmt.Errorf("current-point: %w", err)
	}
	aToB, _ := cmd.Flags().GetBool("a-to-b")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := a.amm.GetFeeInfo(ctx, a.pool, shared.TradeDirectionFromAtoB(aToB), currentPoint)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"baseFeeMode":         info.Mode.String(),
		"baseFeeNumerator":    info.Base.String(),
		"dynamicFeeNumerator": info.Dynamic.String(),
		"totalFeeNumerator":   info.Total.String(),
		"feeDenominator":      dammv2.FeeDenominator,
	})
}

func parseSwapMode(mode string) (shared.SwapMode, error) {
	switch mode {
	case "exact-in", "":
		return shared.SwapModeExactIn, nil
	case "partial":
		return shared.SwapModePartialFill, nil
	case "exact-out":
		return shared.SwapModeExactOut, nil
	default:
		return 0, fmt.Errorf("unknown swap mode %q", mode)
	}
}

func bigFlag(cmd *cobra.Command, name string, required bool) (*big.Int, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		if required {
			return nil, fmt.Errorf("--%s is required", name)
		}
		return nil, nil
	}
	v, err := optionalBig(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func optionalBig(raw string) (*big.Int, error) {
	if raw == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%q is not a non-negative integer", raw)
	}
	return v, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
