package solana_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	solanago "github.com/tokenplay/tokenplay-go/solana"
	"github.com/tokenplay/tokenplay-go/solana/stub"
)

func testConfirmer(t *testing.T, c *stub.Client, opts ...solanago.Option) *solanago.Confirmer {
	base := []solanago.Option{
		solanago.WithConfirmationBudget(time.Second),
		solanago.WithPollInterval(2 * time.Millisecond),
		solanago.WithSendRetryDelay(time.Millisecond),
		solanago.WithLogger(zaptest.NewLogger(t)),
	}
	return solanago.NewConfirmer(c, append(base, opts...)...)
}

func transferIx(payer *solana.Wallet) []solana.Instruction {
	dest := solana.NewWallet()
	return []solana.Instruction{
		system.NewTransferInstruction(1, payer.PublicKey(), dest.PublicKey()).Build(),
	}
}

func TestSendAndConfirm_ConfirmedOnFirstPoll(t *testing.T) {
	c := stub.New()
	cf := testConfirmer(t, c)
	payer := solana.NewWallet()

	sig, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.NoError(t, err)

	sent := c.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].Signatures[0], sig)
	assert.Equal(t, 1, c.Sends())
}

func TestSendAndConfirm_PendingThenConfirmed(t *testing.T) {
	c := stub.New()
	c.PendingPolls = 3
	cf := testConfirmer(t, c)
	payer := solana.NewWallet()

	_, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.NoError(t, err)
}

func TestSendAndConfirm_TransportErrorsRetried(t *testing.T) {
	c := stub.New()
	c.SendErrs = []error{errors.New("connection reset"), errors.New("connection reset")}
	cf := testConfirmer(t, c)
	payer := solana.NewWallet()

	_, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Sends())
}

func TestSendAndConfirm_TransportErrorsExhausted(t *testing.T) {
	netErr := errors.New("connection reset")
	c := stub.New()
	c.SendErrs = []error{netErr, netErr, netErr}
	cf := testConfirmer(t, c)
	payer := solana.NewWallet()

	_, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.Error(t, err)
	assert.ErrorIs(t, err, netErr)
	assert.ErrorContains(t, err, "send transaction")
	assert.Empty(t, c.Sent())
}

func TestSendAndConfirm_OnChainRejection(t *testing.T) {
	c := stub.New()
	c.Execute = func(*solana.Transaction) error {
		return errors.New("insufficient allowance")
	}
	cf := testConfirmer(t, c)
	payer := solana.NewWallet()

	_, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.Error(t, err)

	var txErr *solanago.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.ErrorContains(t, err, "insufficient allowance")
	assert.NotErrorIs(t, err, solanago.ErrConfirmationTimeout)
}

func TestSendAndConfirm_Timeout(t *testing.T) {
	c := stub.New()
	c.PendingPolls = -1 // never resolves
	cf := testConfirmer(t, c, solanago.WithConfirmationBudget(20*time.Millisecond))
	payer := solana.NewWallet()

	_, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.Error(t, err)
	assert.ErrorIs(t, err, solanago.ErrConfirmationTimeout)

	var txErr *solanago.TransactionError
	assert.False(t, errors.As(err, &txErr), "timeout must stay distinct from on-chain rejection")
}

func TestWaitForConfirmation_StatusLookupErrorsKeepPolling(t *testing.T) {
	c := stub.New()
	c.StatusErrs = []error{errors.New("rate limited"), errors.New("rate limited")}
	cf := testConfirmer(t, c)
	payer := solana.NewWallet()

	_, err := cf.SendAndConfirm(context.Background(), transferIx(payer), payer.PublicKey(), solanago.SignerFor(payer))
	require.NoError(t, err)
}

func TestTransactionError_RendersInstructionError(t *testing.T) {
	err := &solanago.TransactionError{
		Cause: map[string]interface{}{
			"InstructionError": []interface{}{2, map[string]interface{}{"Custom": 1}},
		},
	}
	assert.Contains(t, err.Error(), "instruction 2")
	assert.Contains(t, err.Error(), "Custom")
}

func TestNewAccountWithAirdrop(t *testing.T) {
	c := stub.New()
	cf := testConfirmer(t, c)

	wallet, err := solanago.NewAccountWithAirdrop(context.Background(), cf, 5_000_000)
	require.NoError(t, err)

	acc, ok := c.Account(wallet.PublicKey())
	require.True(t, ok)
	assert.Equal(t, uint64(5_000_000), acc.Lamports)
}
