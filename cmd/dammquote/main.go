package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dammquote",
		Short:        "Off-chain DAMM-V2 quotes",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against a pool snapshot",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("snapshot", "./snapshot.json", "pool snapshot JSON path")
	quoteCmd.Flags().String("pool", "", "pool address, optional when the snapshot holds one pool")
	quoteCmd.Flags().String("amount", "", "amount in (exact-in, partial) or out (exact-out), raw units")
	quoteCmd.Flags().Bool("a-to-b", true, "swap token A for token B")
	quoteCmd.Flags().Uint16("slippage-bps", 100, "slippage tolerance in bps")
	quoteCmd.Flags().String("mode", "exact-in", "swap mode (exact-in, partial, exact-out)")
	quoteCmd.Flags().String("current-point", "", "slot or timestamp overriding the snapshot")
	quoteCmd.Flags().Bool("referral", false, "quote with a referral account")
	root.AddCommand(quoteCmd)

	liquidityCmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Liquidity delta and deposit quotes for maximum token amounts",
		RunE:  runLiquidity,
	}
	liquidityCmd.Flags().String("snapshot", "./snapshot.json", "pool snapshot JSON path")
	liquidityCmd.Flags().String("pool", "", "pool address, optional when the snapshot holds one pool")
	liquidityCmd.Flags().String("amount-a", "", "maximum token A amount")
	liquidityCmd.Flags().String("amount-b", "", "maximum token B amount")
	root.AddCommand(liquidityCmd)

	initPriceCmd := &cobra.Command{
		Use:   "init-price",
		Short: "Solve the initial sqrt price and liquidity of a new pool",
		RunE:  runInitPrice,
	}
	initPriceCmd.Flags().String("amount-a", "", "token A deposit")
	initPriceCmd.Flags().String("amount-b", "", "token B deposit")
	initPriceCmd.Flags().String("min-sqrt-price", "", "lower sqrt price bound, Q64.64 (default protocol minimum)")
	initPriceCmd.Flags().String("max-sqrt-price", "", "upper sqrt price bound, Q64.64 (default protocol maximum)")
	root.AddCommand(initPriceCmd)

	feeCmd := &cobra.Command{
		Use:   "fee",
		Short: "Print the current fee numerators of a pool",
		RunE:  runFee,
	}
	feeCmd.Flags().String("snapshot", "./snapshot.json", "pool snapshot JSON path")
	feeCmd.Flags().String("pool", "", "pool address, optional when the snapshot holds one pool")
	feeCmd.Flags().Bool("a-to-b", true, "trade direction the fee applies to")
	feeCmd.Flags().String("current-point", "", "slot or timestamp overriding the snapshot")
	root.AddCommand(feeCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
