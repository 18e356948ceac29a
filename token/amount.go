package token

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountSize is the wire width of a token amount.
const AmountSize = 8

// EncodeAmount renders v in the token program's amount layout: the bytes of
// the big-endian magnitude reversed and zero-padded to AmountSize. A value
// needing more than AmountSize bytes does not fit the layout and is a hard
// error, never a truncation.
func EncodeAmount(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("token amount must be a non-negative integer")
	}
	be := v.Bytes()
	if len(be) > AmountSize {
		return nil, fmt.Errorf("token amount %s does not fit in %d bytes", v, AmountSize)
	}
	out := make([]byte, AmountSize)
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out, nil
}

// DecodeAmount is the inverse of EncodeAmount. The input must be exactly
// AmountSize bytes.
func DecodeAmount(data []byte) (*big.Int, error) {
	if len(data) != AmountSize {
		return nil, fmt.Errorf("token amount must be %d bytes, got %d", AmountSize, len(data))
	}
	be := make([]byte, AmountSize)
	for i, b := range data {
		be[AmountSize-1-i] = b
	}
	return new(big.Int).SetBytes(be), nil
}

// UIAmount converts a raw amount to its user-facing value given the token's
// configured decimals.
func UIAmount(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
