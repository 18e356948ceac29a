package token

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTokenInfoFromNewTokenPayload(t *testing.T) {
	// The NewToken payload and the TokenInfo layout share the supply field;
	// a freshly created token's account mirrors the instruction contents.
	data, err := EncodeNewTokenData(big.NewInt(10000), 2)
	require.NoError(t, err)

	buf := append([]byte{stateToken}, data[1:1+AmountSize]...)
	buf = append(buf, data[1+AmountSize]) // low byte of the widened decimals

	info, err := DecodeTokenInfo(buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), info.Supply.Uint64())
	assert.Equal(t, uint8(2), info.Decimals)
}

func TestTokenInfoEncodeDecode(t *testing.T) {
	info := &TokenInfo{Supply: big.NewInt(987654321), Decimals: 9}
	data, err := info.Encode()
	require.NoError(t, err)
	require.Len(t, data, TokenInfoSize)

	got, err := DecodeTokenInfo(data)
	require.NoError(t, err)
	assert.Zero(t, got.Supply.Cmp(info.Supply))
	assert.Equal(t, info.Decimals, got.Decimals)
}

func TestDecodeTokenInfoRejectsBadState(t *testing.T) {
	info := &TokenInfo{Supply: big.NewInt(1), Decimals: 0}
	data, err := info.Encode()
	require.NoError(t, err)
	data[0] = stateTokenAccount

	_, err = DecodeTokenInfo(data)
	require.Error(t, err)
	assert.ErrorContains(t, err, "state")
}

func TestDecodeTokenInfoRejectsShortBuffer(t *testing.T) {
	_, err := DecodeTokenInfo(make([]byte, TokenInfoSize-1))
	require.Error(t, err)
}

func tokenAccountBytes(t *testing.T, info *TokenAccountInfo) []byte {
	t.Helper()
	data, err := info.Encode()
	require.NoError(t, err)
	require.Len(t, data, TokenAccountInfoSize)
	return data
}

func TestDecodeTokenAccountInfoDirect(t *testing.T) {
	tok := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	data := tokenAccountBytes(t, &TokenAccountInfo{
		Token:          tok,
		Owner:          owner,
		Amount:         big.NewInt(42),
		OriginalAmount: new(big.Int),
	})
	// Trailing delegate bytes are padding when the flag is clear; garbage
	// there must not leak into the decoded record.
	for i := 1 + 32 + 32 + AmountSize + 8; i < len(data); i++ {
		data[i] = 0xFF
	}

	info, err := DecodeTokenAccountInfo(data)
	require.NoError(t, err)
	assert.Equal(t, tok, info.Token)
	assert.Equal(t, owner, info.Owner)
	assert.Equal(t, uint64(42), info.Amount.Uint64())
	assert.Nil(t, info.Source)
	assert.Zero(t, info.OriginalAmount.Sign())
}

func TestDecodeTokenAccountInfoDelegate(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	want := &TokenAccountInfo{
		Token:          solana.NewWallet().PublicKey(),
		Owner:          solana.NewWallet().PublicKey(),
		Amount:         big.NewInt(7),
		Source:         &source,
		OriginalAmount: big.NewInt(9),
	}
	data := tokenAccountBytes(t, want)

	info, err := DecodeTokenAccountInfo(data)
	require.NoError(t, err)
	assert.Equal(t, want.Token, info.Token)
	assert.Equal(t, want.Owner, info.Owner)
	assert.Equal(t, uint64(7), info.Amount.Uint64())
	require.NotNil(t, info.Source)
	assert.Equal(t, source, *info.Source)
	assert.Equal(t, uint64(9), info.OriginalAmount.Uint64())
}

func TestDecodeTokenAccountInfoAnyNonzeroFlag(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	data := tokenAccountBytes(t, &TokenAccountInfo{
		Token:          solana.NewWallet().PublicKey(),
		Owner:          solana.NewWallet().PublicKey(),
		Amount:         big.NewInt(1),
		Source:         &source,
		OriginalAmount: big.NewInt(3),
	})
	// The flag is a 0/nonzero discriminator, not strictly 1.
	flagOffset := 1 + 32 + 32 + AmountSize
	for i := 0; i < 8; i++ {
		data[flagOffset+i] = 0xAB
	}

	info, err := DecodeTokenAccountInfo(data)
	require.NoError(t, err)
	require.NotNil(t, info.Source)
	assert.Equal(t, source, *info.Source)
	assert.Equal(t, uint64(3), info.OriginalAmount.Uint64())
}

func TestDecodeTokenAccountInfoRejectsBadState(t *testing.T) {
	data := tokenAccountBytes(t, &TokenAccountInfo{
		Token:          solana.NewWallet().PublicKey(),
		Owner:          solana.NewWallet().PublicKey(),
		Amount:         big.NewInt(1),
		OriginalAmount: new(big.Int),
	})
	data[0] = stateToken

	_, err := DecodeTokenAccountInfo(data)
	require.Error(t, err)
	assert.ErrorContains(t, err, "state")
}

func TestDecodeTokenAccountInfoRejectsShortBuffer(t *testing.T) {
	_, err := DecodeTokenAccountInfo(make([]byte, TokenAccountInfoSize-1))
	require.Error(t, err)
	assert.ErrorContains(t, err, "layout needs")
}
