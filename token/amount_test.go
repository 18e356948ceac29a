package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountRoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(255),
		big.NewInt(256),
		big.NewInt(10000),
		new(big.Int).Lsh(big.NewInt(1), 32),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1)), // 2^64-1
	}
	for _, v := range values {
		raw, err := EncodeAmount(v)
		require.NoError(t, err, "encode %s", v)
		require.Len(t, raw, AmountSize)

		got, err := DecodeAmount(raw)
		require.NoError(t, err, "decode %s", v)
		assert.Zero(t, got.Cmp(v), "round trip %s, got %s", v, got)
	}
}

func TestEncodeAmountWireBytes(t *testing.T) {
	// 10000 = 0x2710 big-endian, stored byte-reversed and padded low.
	raw, err := EncodeAmount(big.NewInt(10000))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x27, 0, 0, 0, 0, 0, 0}, raw)
}

func TestEncodeAmountOverflow(t *testing.T) {
	over := new(big.Int).Lsh(big.NewInt(1), 64) // 2^64
	_, err := EncodeAmount(over)
	require.Error(t, err)
	assert.ErrorContains(t, err, "does not fit")

	_, err = EncodeAmount(big.NewInt(-1))
	require.Error(t, err)

	_, err = EncodeAmount(nil)
	require.Error(t, err)
}

func TestDecodeAmountLength(t *testing.T) {
	_, err := DecodeAmount(make([]byte, AmountSize-1))
	require.Error(t, err)

	_, err = DecodeAmount(make([]byte, AmountSize+1))
	require.Error(t, err)
}

func TestUIAmount(t *testing.T) {
	ui := UIAmount(big.NewInt(10000), 2)
	assert.Equal(t, "100", ui.String())

	ui = UIAmount(big.NewInt(12345), 3)
	assert.Equal(t, "12.345", ui.String())
}
