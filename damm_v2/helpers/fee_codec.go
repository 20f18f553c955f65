package helpers

import (
	"bytes"
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"

	"github.com/krazyTry/dammv2-quote/damm_v2/shared"
)

// BaseFeeDataLen is the size of the base fee payload passed to pool creation.
// Pool accounts store the pod aligned form, which is 32 bytes.
const (
	BaseFeeDataLen    = 30
	PodAlignedFeeLen  = 32
	baseFeeModeOffset = 8
)

var FeePadding = [3]uint8{0, 0, 0}

// Borsh layouts used as instruction parameters.

type BorshFeeTimeScheduler struct {
	CliffFeeNumerator uint64
	NumberOfPeriod    uint16
	PeriodFrequency   uint64
	ReductionFactor   uint64
	BaseFeeMode       uint8
	Padding           [3]uint8
}

type BorshFeeRateLimiter struct {
	CliffFeeNumerator  uint64
	FeeIncrementBps    uint16
	MaxLimiterDuration uint32
	MaxFeeBps          uint32
	ReferenceAmount    uint64
	BaseFeeMode        uint8
	Padding            [3]uint8
}

type BorshFeeMarketCapScheduler struct {
	CliffFeeNumerator           uint64
	NumberOfPeriod              uint16
	SqrtPriceStepBps            uint32
	SchedulerExpirationDuration uint32
	ReductionFactor             uint64
	BaseFeeMode                 uint8
	Padding                     [3]uint8
}

// Pod aligned layouts as stored in the pool account. The mode byte always
// sits right after the cliff fee numerator.

type PodAlignedFeeTimeScheduler struct {
	CliffFeeNumerator uint64
	BaseFeeMode       uint8
	Padding           [5]uint8
	NumberOfPeriod    uint16
	PeriodFrequency   uint64
	ReductionFactor   uint64
}

type PodAlignedFeeRateLimiter struct {
	CliffFeeNumerator  uint64
	BaseFeeMode        uint8
	Padding            [5]uint8
	FeeIncrementBps    uint16
	MaxLimiterDuration uint32
	MaxFeeBps          uint32
	ReferenceAmount    uint64
}

type PodAlignedFeeMarketCapScheduler struct {
	CliffFeeNumerator           uint64
	BaseFeeMode                 uint8
	Padding                     [5]uint8
	NumberOfPeriod              uint16
	SqrtPriceStepBps            uint32
	SchedulerExpirationDuration uint32
	ReductionFactor             uint64
}

// BaseFeeParameters is the opaque base fee payload of a pool creation request.
type BaseFeeParameters struct {
	Data [BaseFeeDataLen]uint8
}

// Mode reads the base fee mode out of the encoded payload.
func (p BaseFeeParameters) Mode() shared.BaseFeeMode {
	return shared.BaseFeeMode(p.Data[BaseFeeDataLen-4])
}

func EncodeFeeTimeSchedulerParams(cliffFeeNumerator *big.Int, numberOfPeriod uint16, periodFrequency *big.Int, reductionFactor *big.Int, baseFeeMode shared.BaseFeeMode) ([]byte, error) {
	return encodeBorsh(&BorshFeeTimeScheduler{
		CliffFeeNumerator: toU64(cliffFeeNumerator),
		NumberOfPeriod:    numberOfPeriod,
		PeriodFrequency:   toU64(periodFrequency),
		ReductionFactor:   toU64(reductionFactor),
		BaseFeeMode:       uint8(baseFeeMode),
		Padding:           FeePadding,
	})
}

func DecodeFeeTimeSchedulerParams(data []byte) (BorshFeeTimeScheduler, error) {
	var out BorshFeeTimeScheduler
	err := decodeBorsh(data, BaseFeeDataLen, &out)
	return out, err
}

func EncodeFeeRateLimiterParams(cliffFeeNumerator *big.Int, feeIncrementBps uint16, maxLimiterDuration uint32, maxFeeBps uint16, referenceAmount *big.Int) ([]byte, error) {
	return encodeBorsh(&BorshFeeRateLimiter{
		CliffFeeNumerator:  toU64(cliffFeeNumerator),
		FeeIncrementBps:    feeIncrementBps,
		MaxLimiterDuration: maxLimiterDuration,
		MaxFeeBps:          uint32(maxFeeBps),
		ReferenceAmount:    toU64(referenceAmount),
		BaseFeeMode:        uint8(shared.BaseFeeModeRateLimiter),
		Padding:            FeePadding,
	})
}

func DecodeFeeRateLimiterParams(data []byte) (BorshFeeRateLimiter, error) {
	var out BorshFeeRateLimiter
	err := decodeBorsh(data, BaseFeeDataLen, &out)
	return out, err
}

func EncodeFeeMarketCapSchedulerParams(cliffFeeNumerator *big.Int, numberOfPeriod uint16, sqrtPriceStepBps uint16, schedulerExpirationDuration uint32, reductionFactor *big.Int, baseFeeMode shared.BaseFeeMode) ([]byte, error) {
	return encodeBorsh(&BorshFeeMarketCapScheduler{
		CliffFeeNumerator:           toU64(cliffFeeNumerator),
		NumberOfPeriod:              numberOfPeriod,
		SqrtPriceStepBps:            uint32(sqrtPriceStepBps),
		SchedulerExpirationDuration: schedulerExpirationDuration,
		ReductionFactor:             toU64(reductionFactor),
		BaseFeeMode:                 uint8(baseFeeMode),
		Padding:                     FeePadding,
	})
}

func DecodeFeeMarketCapSchedulerParams(data []byte) (BorshFeeMarketCapScheduler, error) {
	var out BorshFeeMarketCapScheduler
	err := decodeBorsh(data, BaseFeeDataLen, &out)
	return out, err
}

func DecodePodAlignedFeeTimeScheduler(data []byte) (PodAlignedFeeTimeScheduler, error) {
	var out PodAlignedFeeTimeScheduler
	err := decodeBorsh(data, PodAlignedFeeLen, &out)
	return out, err
}

func DecodePodAlignedFeeRateLimiter(data []byte) (PodAlignedFeeRateLimiter, error) {
	var out PodAlignedFeeRateLimiter
	err := decodeBorsh(data, PodAlignedFeeLen, &out)
	return out, err
}

func DecodePodAlignedFeeMarketCapScheduler(data []byte) (PodAlignedFeeMarketCapScheduler, error) {
	var out PodAlignedFeeMarketCapScheduler
	err := decodeBorsh(data, PodAlignedFeeLen, &out)
	return out, err
}

// PodAlignedBaseFeeMode returns the mode byte of a stored base fee.
func PodAlignedBaseFeeMode(data []byte) (shared.BaseFeeMode, error) {
	if len(data) <= baseFeeModeOffset {
		return 0, fmt.Errorf("%w: base fee data too short (%d bytes)", shared.ErrInvalidInput, len(data))
	}
	return shared.BaseFeeMode(data[baseFeeModeOffset]), nil
}

func encodeBorsh(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

func decodeBorsh(data []byte, size int, v any) error {
	if len(data) < size {
		return fmt.Errorf("%w: %T needs %d bytes, got %d", shared.ErrInvalidInput, v, size, len(data))
	}
	if err := binary.NewBorshDecoder(data).Decode(v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func toU64(v *big.Int) uint64 {
	if v == nil {
		return 0
	}
	return v.Uint64()
}
