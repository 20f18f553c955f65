package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "./snapshot.json", cfg.Snapshot)
	assert.Equal(t, uint16(100), cfg.SlippageBps)
	assert.Equal(t, "exact-in", cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Pool)
	assert.False(t, cfg.HasReferral)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DAMMQUOTE_SLIPPAGE_BPS", "50")
	t.Setenv("DAMMQUOTE_CURRENT_POINT", "12345")
	t.Setenv("DAMMQUOTE_REFERRAL", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(50), cfg.SlippageBps)
	assert.Equal(t, "12345", cfg.CurrentPoint)
	assert.True(t, cfg.HasReferral)
}

func TestLoadFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dammquote.yaml")
	require.NoError(t, os.WriteFile(path, []byte("snapshot: pools.json\npool: abc\nslippage-bps: 30\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("slippage-bps", 100, "")
	flags.String("mode", "exact-in", "")
	require.NoError(t, flags.Parse([]string{"--mode", "exact-out"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "pools.json", cfg.Snapshot)
	assert.Equal(t, "abc", cfg.Pool)
	// unset flags do not shadow the file
	assert.Equal(t, uint16(30), cfg.SlippageBps)
	assert.Equal(t, "exact-out", cfg.Mode)
}

func TestLoadRejects(t *testing.T) {
	t.Setenv("DAMMQUOTE_SLIPPAGE_BPS", "10001")
	_, err := Load("", nil)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
