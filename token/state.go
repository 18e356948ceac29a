package token

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Account state sentinels written by the on-chain program.
const (
	stateToken        uint8 = 1
	stateTokenAccount uint8 = 2
)

// On-chain account sizes. The layouts are flat and fixed-width; the program
// relies on them byte for byte.
const (
	TokenInfoSize        = 1 + AmountSize + 1
	TokenAccountInfoSize = 1 + 32 + 32 + AmountSize + 8 + 32 + AmountSize
)

// TokenInfo describes a token type. It is an immutable snapshot decoded
// from the token's own account; re-fetch to observe changes.
type TokenInfo struct {
	Supply   *big.Int
	Decimals uint8
}

// TokenAccountInfo is a point-in-time snapshot of a holding account.
// Source is set only for delegate (allowance) accounts; for direct holdings
// it is nil and OriginalAmount is zero. For delegates, Amount is the
// remaining allowance and OriginalAmount the allowance as granted.
type TokenAccountInfo struct {
	Token          solana.PublicKey
	Owner          solana.PublicKey
	Amount         *big.Int
	Source         *solana.PublicKey
	OriginalAmount *big.Int
}

// DecodeTokenInfo parses a token account's data.
func DecodeTokenInfo(data []byte) (*TokenInfo, error) {
	if len(data) < TokenInfoSize {
		return nil, fmt.Errorf("token data is %d bytes, layout needs %d", len(data), TokenInfoSize)
	}
	dec := bin.NewBinDecoder(data)

	state, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if state != stateToken {
		return nil, fmt.Errorf("account is not an initialized token (state %d)", state)
	}

	raw, err := dec.ReadNBytes(AmountSize)
	if err != nil {
		return nil, err
	}
	supply, err := DecodeAmount(raw)
	if err != nil {
		return nil, err
	}

	decimals, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	return &TokenInfo{Supply: supply, Decimals: decimals}, nil
}

// Encode renders the TokenInfo layout.
func (info *TokenInfo) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(stateToken); err != nil {
		return nil, err
	}
	raw, err := EncodeAmount(info.Supply)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(raw, false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(info.Decimals); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTokenAccountInfo parses a holding account's data. The source flag
// gates the trailing delegate fields: when it is clear they are padding and
// are never read, leaving Source nil and OriginalAmount zero.
func DecodeTokenAccountInfo(data []byte) (*TokenAccountInfo, error) {
	if len(data) < TokenAccountInfoSize {
		return nil, fmt.Errorf("token account data is %d bytes, layout needs %d", len(data), TokenAccountInfoSize)
	}
	dec := bin.NewBinDecoder(data)

	state, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if state != stateTokenAccount {
		return nil, fmt.Errorf("account is not an initialized token account (state %d)", state)
	}

	tok, err := readPublicKey(dec)
	if err != nil {
		return nil, err
	}
	owner, err := readPublicKey(dec)
	if err != nil {
		return nil, err
	}
	raw, err := dec.ReadNBytes(AmountSize)
	if err != nil {
		return nil, err
	}
	amount, err := DecodeAmount(raw)
	if err != nil {
		return nil, err
	}
	sourceOption, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	info := &TokenAccountInfo{
		Token:          tok,
		Owner:          owner,
		Amount:         amount,
		OriginalAmount: new(big.Int),
	}
	if sourceOption != 0 {
		source, err := readPublicKey(dec)
		if err != nil {
			return nil, err
		}
		raw, err := dec.ReadNBytes(AmountSize)
		if err != nil {
			return nil, err
		}
		original, err := DecodeAmount(raw)
		if err != nil {
			return nil, err
		}
		info.Source = &source
		info.OriginalAmount = original
	}
	return info, nil
}

// Encode renders the full fixed-width TokenAccountInfo layout; the delegate
// fields are zero padding when Source is nil.
func (info *TokenAccountInfo) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(stateTokenAccount); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(info.Token[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(info.Owner[:], false); err != nil {
		return nil, err
	}
	raw, err := EncodeAmount(info.Amount)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(raw, false); err != nil {
		return nil, err
	}

	var sourceOption uint64
	source := solana.PublicKey{}
	original := new(big.Int)
	if info.Source != nil {
		sourceOption = 1
		source = *info.Source
		original = info.OriginalAmount
	}
	if err := enc.WriteUint64(sourceOption, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(source[:], false); err != nil {
		return nil, err
	}
	raw, err = EncodeAmount(original)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(raw, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}
