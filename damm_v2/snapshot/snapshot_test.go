package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krazyTry/dammv2-quote/damm_v2/math/pool_fees"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

type fixtureKeys struct {
	pool, mintA, mintB solanago.PublicKey
}

func newFixtureKeys() fixtureKeys {
	return fixtureKeys{
		pool:  solanago.NewWallet().PublicKey(),
		mintA: solanago.NewWallet().PublicKey(),
		mintB: solanago.NewWallet().PublicKey(),
	}
}

// poolJSON is a pool at price 1 with a static 0.25% fee.
func poolJSON(k fixtureKeys, baseFee string) string {
	return fmt.Sprintf(`{
  "pool": %q,
  "tokenAMint": %q,
  "tokenBMint": %q,
  "sqrtPrice": "18446744073709551616",
  "liquidity": "18446744073709551616000000000000",
  "collectFeeMode": 0,
  "activationPoint": 10,
  "currentPoint": 100,
  "poolFees": {
    "protocolFeePercent": 20,
    "referralFeePercent": 20,
    "dynamicFee": {"initialized": true, "binStep": 1, "variableFeeControl": 100000, "volatilityAccumulator": "10000"},
    "baseFee": %s
  },
  "tokenA": {"decimals": 9},
  "tokenB": {"decimals": 6, "transferFeeBps": 100, "maximumFee": "5000"}
}`, k.pool, k.mintA, k.mintB, baseFee)
}

const staticBaseFee = `{"mode": 0, "cliffFeeNumerator": 2500000}`

func TestDecode(t *testing.T) {
	k := newFixtureKeys()
	s, err := Decode([]byte(poolJSON(k, staticBaseFee)))
	require.NoError(t, err)

	pool := s.Pool
	assert.Equal(t, k.pool, pool.Pool)
	assert.Equal(t, k.mintA, pool.TokenAMint)
	assert.Equal(t, shared.OneQ64.String(), pool.SqrtPrice.String())
	assert.Equal(t, shared.MinSqrtPrice.String(), pool.SqrtMinPrice.String())
	assert.Equal(t, shared.MaxSqrtPrice.String(), pool.SqrtMaxPrice.String())
	assert.Equal(t, "10", pool.ActivationPoint.String())
	assert.Equal(t, "100", pool.CurrentPoint.String())
	assert.Equal(t, shared.PoolStatusEnable, pool.Status)
	assert.False(t, pool.HasPartner())
	assert.True(t, pool.IsSwapEnabled())

	assert.Equal(t, uint8(20), pool.PoolFees.ProtocolFeePercent)
	assert.Equal(t, uint8(20), pool.PoolFees.ReferralFeePercent)
	assert.True(t, pool.PoolFees.DynamicFee.Initialized)
	assert.Equal(t, "10000", pool.PoolFees.DynamicFee.VolatilityAccumulator.String())

	base, ok := pool.PoolFees.BaseFee.(pool_fees.FeeTimeScheduler)
	require.True(t, ok)
	assert.Equal(t, "2500000", base.CliffFeeNumerator.String())
	assert.Equal(t, "0", base.PeriodFrequency.String())

	decimalsA, decimalsB := s.Decimals()
	assert.Equal(t, uint8(9), decimalsA)
	assert.Equal(t, uint8(6), decimalsB)
	assert.False(t, s.TokenA.HasTransferFee)
	assert.True(t, s.TokenB.HasTransferFee)
	assert.Equal(t, "5000", s.TokenB.MaximumFee.String())

	input, output := s.TokenInfos(false)
	assert.Same(t, s.TokenB, input)
	assert.Same(t, s.TokenA, output)
}

func TestDecodeEncodedBaseFee(t *testing.T) {
	k := newFixtureKeys()
	// pod aligned fee time scheduler with a 2_500_000 cliff
	s, err := Decode([]byte(poolJSON(k, `{"data": "oCUmAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="}`)))
	require.NoError(t, err)
	base, ok := s.Pool.PoolFees.BaseFee.(pool_fees.FeeTimeScheduler)
	require.True(t, ok)
	assert.Equal(t, "2500000", base.CliffFeeNumerator.String())

	_, err = Decode([]byte(poolJSON(k, `{"params": "AAAA"}`)))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestDecodeRejects(t *testing.T) {
	k := newFixtureKeys()
	cases := map[string]string{
		"malformed":      `{"pool": `,
		"missing price":  fmt.Sprintf(`{"pool": %q, "liquidity": "1", "poolFees": {"baseFee": %s}}`, k.pool, staticBaseFee),
		"bad key":        `{"pool": "not-a-key", "sqrtPrice": "1", "liquidity": "1"}`,
		"no fees":        fmt.Sprintf(`{"pool": %q, "sqrtPrice": "18446744073709551616", "liquidity": "1"}`, k.pool),
		"percent":        fmt.Sprintf(`{"pool": %q, "sqrtPrice": "18446744073709551616", "liquidity": "1", "poolFees": {"protocolFeePercent": 101, "baseFee": %s}}`, k.pool, staticBaseFee),
		"u128 overflow":  fmt.Sprintf(`{"pool": %q, "sqrtPrice": "18446744073709551616", "liquidity": "340282366920938463463374607431768211456", "poolFees": {"baseFee": %s}}`, k.pool, staticBaseFee),
		"out of range":   fmt.Sprintf(`{"pool": %q, "sqrtPrice": "1", "liquidity": "1", "poolFees": {"baseFee": %s}}`, k.pool, staticBaseFee),
		"fee collection": fmt.Sprintf(`{"pool": %q, "sqrtPrice": "18446744073709551616", "liquidity": "1", "collectFeeMode": 5, "poolFees": {"baseFee": %s}}`, k.pool, staticBaseFee),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			assert.Error(t, err)
		})
	}

	_, err := Decode([]byte(poolJSON(k, `{"mode": 9, "cliffFeeNumerator": 1}`)))
	assert.ErrorIs(t, err, shared.ErrUnsupportedMode)
}

func TestDecodeRejectsOutOfRangeIntegers(t *testing.T) {
	k := newFixtureKeys()
	base := poolJSON(k, staticBaseFee)
	cases := map[string]string{
		"bin step":         strings.Replace(base, `"binStep": 1`, `"binStep": 65537`, 1),
		"fee control":      strings.Replace(base, `"variableFeeControl": 100000`, `"variableFeeControl": 4294967296`, 1),
		"transfer fee bps": strings.Replace(base, `"transferFeeBps": 100`, `"transferFeeBps": 20000`, 1),
		"decimals":         strings.Replace(base, `{"decimals": 9}`, `{"decimals": 256}`, 1),
		"negative":         strings.Replace(base, `"binStep": 1`, `"binStep": -1`, 1),
		"collect mode":     strings.Replace(base, `"collectFeeMode": 0`, `"collectFeeMode": 257`, 1),
		"number of period": poolJSON(k, `{"mode": 0, "cliffFeeNumerator": 2500000, "numberOfPeriod": 65537, "periodFrequency": 1, "reductionFactor": 1}`),
		"limiter duration": poolJSON(k, `{"mode": 2, "cliffFeeNumerator": 2500000, "maxLimiterDuration": 4294967296}`),
		"price step":       poolJSON(k, `{"mode": 3, "cliffFeeNumerator": 2500000, "sqrtPriceStepBps": 70000}`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotEqual(t, base, data)
			_, err := Decode([]byte(data))
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}

	// the full transfer fee range is still accepted
	s, err := Decode([]byte(strings.Replace(base, `"transferFeeBps": 100`, `"transferFeeBps": 10000`, 1)))
	require.NoError(t, err)
	assert.Equal(t, uint16(10000), s.TokenB.BasisPoints)
}

func TestDecodeValidatesBaseFee(t *testing.T) {
	k := newFixtureKeys()
	cases := map[string]string{
		"cliff above v0 cap":  poolJSON(k, `{"mode": 0, "cliffFeeNumerator": 999999999}`),
		"cliff below minimum": poolJSON(k, `{"mode": 0, "cliffFeeNumerator": 1000}`),
		"partial schedule":    poolJSON(k, `{"mode": 0, "cliffFeeNumerator": 2500000, "numberOfPeriod": 10}`),
		"limiter fee mode":    poolJSON(k, `{"mode": 2, "cliffFeeNumerator": 10000000, "feeIncrementBps": 10, "maxFeeBps": 5000, "maxLimiterDuration": 10, "referenceAmount": "1000000"}`),
		"market cap unset":    poolJSON(k, `{"mode": 3, "cliffFeeNumerator": 2500000}`),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.ErrorIs(t, err, shared.ErrInvalidFee)
		})
	}

	// a decaying schedule that ends above the minimum fee
	s, err := Decode([]byte(poolJSON(k, `{"mode": 0, "cliffFeeNumerator": 500000000, "numberOfPeriod": 10, "periodFrequency": 60, "reductionFactor": 49000000}`)))
	require.NoError(t, err)
	assert.Equal(t, uint16(10), s.Pool.PoolFees.BaseFee.(pool_fees.FeeTimeScheduler).NumberOfPeriod)

	// v1 pools allow a higher cliff fee
	v1 := strings.Replace(poolJSON(k, `{"mode": 0, "cliffFeeNumerator": 900000000}`), `"collectFeeMode": 0,`, `"collectFeeMode": 0, "version": 1,`, 1)
	s, err = Decode([]byte(v1))
	require.NoError(t, err)
	assert.Equal(t, shared.PoolVersionV1, s.Pool.Version)
}

func TestDecodeAll(t *testing.T) {
	k1, k2 := newFixtureKeys(), newFixtureKeys()
	all, err := DecodeAll([]byte("[" + poolJSON(k1, staticBaseFee) + "," + poolJSON(k2, staticBaseFee) + "]"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, k2.pool, all[1].Pool.Pool)

	single, err := DecodeAll([]byte(poolJSON(k1, staticBaseFee)))
	require.NoError(t, err)
	require.Len(t, single, 1)
}

func TestMemoryProvider(t *testing.T) {
	k := newFixtureKeys()
	s, err := Decode([]byte(poolJSON(k, staticBaseFee)))
	require.NoError(t, err)

	p := NewMemoryProvider(s)
	got, err := p.Snapshot(context.Background(), k.pool)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = p.Snapshot(context.Background(), solanago.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrPoolNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Snapshot(ctx, k.pool)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileProvider(t *testing.T) {
	k1, k2 := newFixtureKeys(), newFixtureKeys()
	dir := t.TempDir()

	single := filepath.Join(dir, "single.json")
	require.NoError(t, os.WriteFile(single, []byte(poolJSON(k1, staticBaseFee)), 0o600))
	s, err := FileProvider{Path: single}.Snapshot(context.Background(), solanago.PublicKey{})
	require.NoError(t, err)
	assert.Equal(t, k1.pool, s.Pool.Pool)

	many := filepath.Join(dir, "many.json")
	require.NoError(t, os.WriteFile(many, []byte("["+poolJSON(k1, staticBaseFee)+","+poolJSON(k2, staticBaseFee)+"]"), 0o600))
	p := FileProvider{Path: many}
	s, err = p.Snapshot(context.Background(), k2.pool)
	require.NoError(t, err)
	assert.Equal(t, k2.pool, s.Pool.Pool)

	_, err = p.Snapshot(context.Background(), solanago.PublicKey{})
	assert.Error(t, err)
	_, err = p.Snapshot(context.Background(), solanago.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrPoolNotFound)

	_, err = FileProvider{Path: filepath.Join(dir, "missing.json")}.Snapshot(context.Background(), k1.pool)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
