package helpers

import (
	"fmt"
	"math/big"

	binary "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

const (
	maxTransferFeeBasisPoints = 10_000

	// mintBaseSize is the classic SPL mint layout. Token-2022 pads a mint to
	// the account size and writes the account type byte before its TLV area.
	mintBaseSize         = 82
	token2022ExtStart    = 166
	extTransferFeeConfig = uint16(1)
)

type TransferFee struct {
	Epoch                  uint64
	MaximumFee             uint64
	TransferFeeBasisPoints uint16
}

// TransferFeeConfig is the Token-2022 transfer fee extension. A zero
// authority means none.
type TransferFeeConfig struct {
	TransferFeeConfigAuthority solanago.PublicKey
	WithdrawWithheldAuthority  solanago.PublicKey
	WithheldAmount             uint64
	OlderTransferFee           TransferFee
	NewerTransferFee           TransferFee
}

// FeeForEpoch uses the older fee until the newer one takes effect.
func (c *TransferFeeConfig) FeeForEpoch(epoch uint64) TransferFee {
	if epoch < c.NewerTransferFee.Epoch {
		return c.OlderTransferFee
	}
	return c.NewerTransferFee
}

// ParseMintTokenInfo decodes a mint account owned by owner into the
// TokenInfo used for transfer fees at currentEpoch.
func ParseMintTokenInfo(mint, owner solanago.PublicKey, data []byte, currentEpoch uint64) (*TokenInfo, error) {
	if len(data) < mintBaseSize {
		return nil, fmt.Errorf("mint %s: data too short: %d", mint, len(data))
	}
	var mintAcc token.Mint
	if err := mintAcc.UnmarshalWithDecoder(binary.NewBinDecoder(data[:mintBaseSize])); err != nil {
		return nil, fmt.Errorf("mint %s: %w", mint, err)
	}
	info := &TokenInfo{
		Mint:         mint,
		Owner:        owner,
		CurrentEpoch: currentEpoch,
		Decimals:     mintAcc.Decimals,
	}
	if !owner.Equals(solanago.Token2022ProgramID) || len(data) <= token2022ExtStart {
		return info, nil
	}

	cfg, err := findTransferFeeConfig(data[token2022ExtStart:])
	if err != nil {
		return nil, fmt.Errorf("mint %s: %w", mint, err)
	}
	if cfg == nil {
		return info, nil
	}
	fee := cfg.FeeForEpoch(currentEpoch)
	info.HasTransferFee = true
	info.BasisPoints = fee.TransferFeeBasisPoints
	info.MaximumFee = new(big.Int).SetUint64(fee.MaximumFee)
	return info, nil
}

// findTransferFeeConfig walks the u16 type, u16 length TLV entries.
func findTransferFeeConfig(tlv []byte) (*TransferFeeConfig, error) {
	dec := binary.NewBinDecoder(tlv)
	for dec.Remaining() >= 4 {
		typ, err := dec.ReadUint16(binary.LE)
		if err != nil {
			return nil, err
		}
		length, err := dec.ReadUint16(binary.LE)
		if err != nil {
			return nil, err
		}
		if typ == 0 && length == 0 {
			return nil, nil
		}
		value, err := dec.ReadNBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("extension %d: %w", typ, err)
		}
		if typ != extTransferFeeConfig {
			continue
		}
		var cfg TransferFeeConfig
		if err := binary.NewBinDecoder(value).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("transfer fee config: %w", err)
		}
		return &cfg, nil
	}
	return nil, nil
}

// TransferFee is the fee withheld when amount is sent.
func (t *TokenInfo) TransferFee(amount *big.Int) *big.Int {
	if t == nil || !t.HasTransferFee || t.BasisPoints == 0 || amount.Sign() == 0 {
		return big.NewInt(0)
	}
	maxFee := t.maximumFee()
	if t.BasisPoints == maxTransferFeeBasisPoints {
		return maxFee
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(t.BasisPoints)))
	fee.Add(fee, big.NewInt(maxTransferFeeBasisPoints-1))
	fee.Quo(fee, big.NewInt(maxTransferFeeBasisPoints))
	if fee.Cmp(maxFee) > 0 {
		return maxFee
	}
	return fee
}

// InverseTransferFee is the fee on the smallest pre-fee amount that still
// delivers postFeeAmount.
func (t *TokenInfo) InverseTransferFee(postFeeAmount *big.Int) *big.Int {
	if t == nil || !t.HasTransferFee || postFeeAmount.Sign() == 0 {
		return big.NewInt(0)
	}
	return t.TransferFee(t.preFeeAmount(postFeeAmount))
}

func (t *TokenInfo) preFeeAmount(postFeeAmount *big.Int) *big.Int {
	maxFee := t.maximumFee()
	switch t.BasisPoints {
	case 0:
		return new(big.Int).Set(postFeeAmount)
	case maxTransferFeeBasisPoints:
		return new(big.Int).Add(postFeeAmount, maxFee)
	}
	denominator := big.NewInt(int64(maxTransferFeeBasisPoints - int(t.BasisPoints)))
	preFee := new(big.Int).Mul(postFeeAmount, big.NewInt(maxTransferFeeBasisPoints))
	preFee.Add(preFee, denominator)
	preFee.Sub(preFee, big.NewInt(1))
	preFee.Quo(preFee, denominator)
	if new(big.Int).Sub(preFee, postFeeAmount).Cmp(maxFee) >= 0 {
		return new(big.Int).Add(postFeeAmount, maxFee)
	}
	return preFee
}

func (t *TokenInfo) maximumFee() *big.Int {
	if t.MaximumFee == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(t.MaximumFee)
}
