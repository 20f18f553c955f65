package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Snapshot     string
	Pool         string
	SlippageBps  uint16
	Mode         string
	CurrentPoint string
	HasReferral  bool
	LogLevel     string
}

// Load merges config file, DAMMQUOTE_* environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DAMMQUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("snapshot", "./snapshot.json")
	v.SetDefault("slippage-bps", 100)
	v.SetDefault("mode", "exact-in")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("dammquote")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	slippage := v.GetInt("slippage-bps")
	if slippage < 0 || slippage > 10_000 {
		return Config{}, fmt.Errorf("slippage-bps %d out of range [0, 10000]", slippage)
	}

	cfg := Config{
		Snapshot:     v.GetString("snapshot"),
		Pool:         v.GetString("pool"),
		SlippageBps:  uint16(slippage),
		Mode:         v.GetString("mode"),
		CurrentPoint: v.GetString("current-point"),
		HasReferral:  v.GetBool("referral"),
		LogLevel:     v.GetString("log-level"),
	}
	return cfg, nil
}
