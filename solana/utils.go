package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

func GetLatestBlockhash(ctx context.Context, c Client) (solana.Hash, error) {
	recent, err := c.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, err
	}
	return recent.Value.Blockhash, nil
}

// GetAccountInfo fetches account state at finalized commitment.
// rpc.ErrNotFound is surfaced when the account does not exist.
func GetAccountInfo(ctx context.Context, c Client, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return c.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{Commitment: rpc.CommitmentFinalized})
}

func MinimumBalanceForRentExemption(ctx context.Context, c Client, dataSize uint64) (uint64, error) {
	return c.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentFinalized)
}

// NewAccountWithAirdrop generates a keypair and funds it from the cluster
// faucet, waiting for the airdrop transaction to land before returning.
func NewAccountWithAirdrop(ctx context.Context, cf *Confirmer, lamports uint64) (*solana.Wallet, error) {
	wallet := solana.NewWallet()
	sig, err := cf.client.RequestAirdrop(ctx, wallet.PublicKey(), lamports, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("request airdrop: %w", err)
	}
	if _, err := cf.WaitForConfirmation(ctx, sig); err != nil {
		return nil, err
	}
	return wallet, nil
}

// SignerFor builds the key getter passed to Transaction.Sign from a set of
// wallets. Keys outside the set resolve to nil.
func SignerFor(wallets ...*solana.Wallet) func(solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		for _, w := range wallets {
			if key.Equals(w.PublicKey()) {
				return &w.PrivateKey
			}
		}
		return nil
	}
}
