package snapshot

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/big"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"

	"github.com/krazyTry/dammv2-quote/damm_v2/helpers"
	"github.com/krazyTry/dammv2-quote/damm_v2/math/pool_fees"
	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
	"github.com/krazyTry/dammv2-quote/u128"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is one decoded pool together with the transfer fee settings of
// its mints. A nil TokenInfo means the mint charges no transfer fee.
type Snapshot struct {
	Pool   *shared.PoolSnapshot
	TokenA *helpers.TokenInfo
	TokenB *helpers.TokenInfo
}

// TokenInfos returns the input and output token of a swap.
func (s *Snapshot) TokenInfos(aToB bool) (input, output *helpers.TokenInfo) {
	if aToB {
		return s.TokenA, s.TokenB
	}
	return s.TokenB, s.TokenA
}

// Decimals falls back to 0 for a mint without TokenInfo.
func (s *Snapshot) Decimals() (tokenA, tokenB uint8) {
	if s.TokenA != nil {
		tokenA = s.TokenA.Decimals
	}
	if s.TokenB != nil {
		tokenB = s.TokenB.Decimals
	}
	return
}

// Decode reads a JSON pool snapshot. Big integers are decimal strings (or
// plain JSON integers); keys are base58.
func Decode(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidSnapshot)
	}
	return decodeResult(gjson.ParseBytes(data))
}

// DecodeAll reads either a single snapshot object or an array of them.
func DecodeAll(data []byte) ([]*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidSnapshot)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		s, err := decodeResult(root)
		if err != nil {
			return nil, err
		}
		return []*Snapshot{s}, nil
	}
	var out []*Snapshot
	for i, item := range root.Array() {
		s, err := decodeResult(item)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeResult(r gjson.Result) (*Snapshot, error) {
	d := decoder{r: r}
	pool := &shared.PoolSnapshot{
		Pool:       d.pubkey("pool", false),
		TokenAMint: d.pubkey("tokenAMint", false),
		TokenBMint: d.pubkey("tokenBMint", false),
		Partner:    d.pubkey("partner", false),

		SqrtPrice:     d.u128("sqrtPrice", true),
		SqrtMinPrice:  d.u128("sqrtMinPrice", false),
		SqrtMaxPrice:  d.u128("sqrtMaxPrice", false),
		InitSqrtPrice: d.u128("initSqrtPrice", false),
		Liquidity:     d.u128("liquidity", true),

		CollectFeeMode:  shared.CollectFeeMode(d.uint("collectFeeMode", math.MaxUint8)),
		ActivationType:  shared.ActivationType(d.uint("activationType", math.MaxUint8)),
		ActivationPoint: d.u64("activationPoint", false),
		CurrentPoint:    d.u64("currentPoint", false),
		Version:         shared.PoolVersion(d.uint("version", math.MaxUint8)),
		Status:          shared.PoolStatus(d.uint("status", math.MaxUint8)),
	}
	if pool.SqrtMinPrice == nil {
		pool.SqrtMinPrice = new(big.Int).Set(shared.MinSqrtPrice)
	}
	if pool.SqrtMaxPrice == nil {
		pool.SqrtMaxPrice = new(big.Int).Set(shared.MaxSqrtPrice)
	}
	if pool.ActivationPoint == nil {
		pool.ActivationPoint = big.NewInt(0)
	}
	if pool.CurrentPoint == nil {
		pool.CurrentPoint = new(big.Int).Set(pool.ActivationPoint)
	}
	if d.err != nil {
		return nil, d.err
	}

	poolFees, err := decodePoolFees(r.Get("poolFees"))
	if err != nil {
		return nil, err
	}
	pool.PoolFees = poolFees
	if err := pool.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := poolFees.BaseFee.Validate(pool.CollectFeeMode, pool.ActivationType, pool.Version); err != nil {
		return nil, fmt.Errorf("%w: baseFee: %w", ErrInvalidSnapshot, err)
	}

	tokenA, err := decodeTokenInfo(r.Get("tokenA"), pool.TokenAMint)
	if err != nil {
		return nil, fmt.Errorf("token a: %w", err)
	}
	tokenB, err := decodeTokenInfo(r.Get("tokenB"), pool.TokenBMint)
	if err != nil {
		return nil, fmt.Errorf("token b: %w", err)
	}
	return &Snapshot{Pool: pool, TokenA: tokenA, TokenB: tokenB}, nil
}

func decodePoolFees(r gjson.Result) (shared.PoolFees, error) {
	if !r.Exists() {
		return shared.PoolFees{}, fmt.Errorf("%w: poolFees is required", ErrInvalidSnapshot)
	}
	d := decoder{r: r}
	fees := shared.PoolFees{
		ProtocolFeePercent: d.percent("protocolFeePercent"),
		PartnerFeePercent:  d.percent("partnerFeePercent"),
		ReferralFeePercent: d.percent("referralFeePercent"),
	}
	if dyn := r.Get("dynamicFee"); dyn.Exists() {
		dd := decoder{r: dyn}
		fees.DynamicFee = shared.DynamicFeeState{
			Initialized:           dyn.Get("initialized").Bool(),
			BinStep:               uint16(dd.uint("binStep", math.MaxUint16)),
			VariableFeeControl:    uint32(dd.uint("variableFeeControl", math.MaxUint32)),
			VolatilityAccumulator: dd.u128("volatilityAccumulator", false),
		}
		if fees.DynamicFee.VolatilityAccumulator == nil {
			fees.DynamicFee.VolatilityAccumulator = big.NewInt(0)
		}
		if dd.err != nil {
			return shared.PoolFees{}, dd.err
		}
	}
	if d.err != nil {
		return shared.PoolFees{}, d.err
	}

	handler, err := decodeBaseFee(r.Get("baseFee"))
	if err != nil {
		return shared.PoolFees{}, err
	}
	fees.BaseFee = handler
	return fees, nil
}

// decodeBaseFee accepts the pod aligned bytes of a pool account ("data"),
// the borsh creation parameters ("params"), or explicit fields.
func decodeBaseFee(r gjson.Result) (shared.BaseFeeHandler, error) {
	if !r.Exists() {
		return nil, fmt.Errorf("%w: baseFee is required", ErrInvalidSnapshot)
	}
	if raw := r.Get("data"); raw.Exists() {
		data, err := base64.StdEncoding.DecodeString(raw.String())
		if err != nil {
			return nil, fmt.Errorf("%w: baseFee.data: %w", ErrInvalidSnapshot, err)
		}
		return pool_fees.GetBaseFeeHandler(data)
	}
	if raw := r.Get("params"); raw.Exists() {
		data, err := base64.StdEncoding.DecodeString(raw.String())
		if err != nil {
			return nil, fmt.Errorf("%w: baseFee.params: %w", ErrInvalidSnapshot, err)
		}
		if len(data) != helpers.BaseFeeDataLen {
			return nil, fmt.Errorf("%w: baseFee.params has %d bytes", ErrInvalidSnapshot, len(data))
		}
		var params helpers.BaseFeeParameters
		copy(params.Data[:], data)
		return pool_fees.GetBaseFeeHandlerFromParams(params)
	}

	d := decoder{r: r}
	mode := shared.BaseFeeMode(d.uint("mode", math.MaxUint8))
	var handler shared.BaseFeeHandler
	switch mode {
	case shared.BaseFeeModeFeeTimeSchedulerLinear, shared.BaseFeeModeFeeTimeSchedulerExponential:
		handler = pool_fees.FeeTimeScheduler{
			CliffFeeNumerator:    d.u64("cliffFeeNumerator", true),
			NumberOfPeriod:       uint16(d.uint("numberOfPeriod", math.MaxUint16)),
			PeriodFrequency:      d.u64OrZero("periodFrequency"),
			ReductionFactor:      d.u64OrZero("reductionFactor"),
			FeeTimeSchedulerMode: mode,
		}
	case shared.BaseFeeModeRateLimiter:
		handler = pool_fees.FeeRateLimiter{
			CliffFeeNumerator:  d.u64("cliffFeeNumerator", true),
			FeeIncrementBps:    uint16(d.uint("feeIncrementBps", math.MaxUint16)),
			MaxFeeBps:          uint16(d.uint("maxFeeBps", math.MaxUint16)),
			MaxLimiterDuration: uint32(d.uint("maxLimiterDuration", math.MaxUint32)),
			ReferenceAmount:    d.u64OrZero("referenceAmount"),
		}
	case shared.BaseFeeModeFeeMarketCapSchedulerLinear, shared.BaseFeeModeFeeMarketCapSchedulerExp:
		handler = pool_fees.FeeMarketCapScheduler{
			CliffFeeNumerator:           d.u64("cliffFeeNumerator", true),
			NumberOfPeriod:              uint16(d.uint("numberOfPeriod", math.MaxUint16)),
			SqrtPriceStepBps:            uint16(d.uint("sqrtPriceStepBps", math.MaxUint16)),
			SchedulerExpirationDuration: uint32(d.uint("schedulerExpirationDuration", math.MaxUint32)),
			ReductionFactor:             d.u64OrZero("reductionFactor"),
			FeeMarketCapSchedulerMode:   mode,
		}
	default:
		return nil, fmt.Errorf("%w: base fee mode %d", shared.ErrUnsupportedMode, mode)
	}
	if d.err != nil {
		return nil, d.err
	}
	return handler, nil
}

func decodeTokenInfo(r gjson.Result, mint solanago.PublicKey) (*helpers.TokenInfo, error) {
	if !r.Exists() {
		return nil, nil
	}
	d := decoder{r: r}
	if raw := r.Get("data"); raw.Exists() {
		data, err := base64.StdEncoding.DecodeString(raw.String())
		if err != nil {
			return nil, fmt.Errorf("%w: mint data: %w", ErrInvalidSnapshot, err)
		}
		owner := d.pubkey("owner", true)
		epoch := d.uint("epoch", math.MaxUint64)
		if d.err != nil {
			return nil, d.err
		}
		return helpers.ParseMintTokenInfo(mint, owner, data, epoch)
	}
	info := &helpers.TokenInfo{
		Mint:        mint,
		Owner:       d.pubkey("owner", false),
		Decimals:    uint8(d.uint("decimals", math.MaxUint8)),
		BasisPoints: uint16(d.uint("transferFeeBps", shared.BasisPointMax)),
		MaximumFee:  d.u64("maximumFee", false),
	}
	if d.err != nil {
		return nil, d.err
	}
	info.HasTransferFee = info.BasisPoints > 0
	if info.MaximumFee == nil {
		info.MaximumFee = new(big.Int).Set(shared.U64Max)
	}
	return info, nil
}

// decoder keeps the first field error so a snapshot is read in one pass.
type decoder struct {
	r   gjson.Result
	err error
}

func (d *decoder) fail(path string, err error) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s: %w", ErrInvalidSnapshot, path, err)
	}
}

func (d *decoder) field(path string, required bool) (gjson.Result, bool) {
	v := d.r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		if required {
			d.fail(path, errors.New("field is required"))
		}
		return v, false
	}
	return v, true
}

func (d *decoder) u128(path string, required bool) *big.Int {
	v, ok := d.field(path, required)
	if !ok {
		return nil
	}
	out, err := u128.Parse(v.String())
	if err != nil {
		d.fail(path, err)
		return nil
	}
	return out.BigInt()
}

func (d *decoder) u64(path string, required bool) *big.Int {
	v, ok := d.field(path, required)
	if !ok {
		return nil
	}
	out, ok := new(big.Int).SetString(v.String(), 10)
	if !ok || out.Sign() < 0 || out.BitLen() > 64 {
		d.fail(path, fmt.Errorf("%q is not a u64", v.String()))
		return nil
	}
	return out
}

func (d *decoder) u64OrZero(path string) *big.Int {
	if v := d.u64(path, false); v != nil {
		return v
	}
	return big.NewInt(0)
}

func (d *decoder) percent(path string) uint8 {
	return uint8(d.uint(path, 100))
}

// uint reads an optional integer no larger than limit.
func (d *decoder) uint(path string, limit uint64) uint64 {
	v, ok := d.field(path, false)
	if !ok {
		return 0
	}
	out, ok := new(big.Int).SetString(v.String(), 10)
	if !ok || out.Sign() < 0 || !out.IsUint64() || out.Uint64() > limit {
		d.fail(path, fmt.Errorf("%w: %q is not in [0, %d]", shared.ErrInvalidInput, v.String(), limit))
		return 0
	}
	return out.Uint64()
}

func (d *decoder) pubkey(path string, required bool) solanago.PublicKey {
	v, ok := d.field(path, required)
	if !ok {
		return solanago.PublicKey{}
	}
	key, err := solanago.PublicKeyFromBase58(v.String())
	if err != nil {
		d.fail(path, err)
		return solanago.PublicKey{}
	}
	return key
}
