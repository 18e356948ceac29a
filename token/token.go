// Package token is a client for the demo token program: it encodes the
// program's account layouts and instruction payloads and submits the
// corresponding transactions through the shared confirmation machinery.
package token

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	solanago "github.com/tokenplay/tokenplay-go/solana"
)

// Token is a client bound to one token of the token program.
type Token struct {
	client    solanago.Client
	confirmer *solanago.Confirmer
	programID solana.PublicKey
	pubkey    solana.PublicKey
}

// New binds a client to an existing token.
func New(c solanago.Client, cf *solanago.Confirmer, programID, token solana.PublicKey) *Token {
	return &Token{client: c, confirmer: cf, programID: programID, pubkey: token}
}

// Pubkey returns the token's own account address.
func (t *Token) Pubkey() solana.PublicKey { return t.pubkey }

// CreateToken allocates the token account and an initial holding account,
// then initializes the token with the full supply credited to the holding
// account. Both allocations are funded rent-exempt by owner.
func CreateToken(
	ctx context.Context,
	c solanago.Client,
	cf *solanago.Confirmer,
	programID solana.PublicKey,
	owner *solana.Wallet,
	supply *big.Int,
	decimals uint8,
) (*Token, solana.PublicKey, error) {
	tokenWallet := solana.NewWallet()
	initialWallet := solana.NewWallet()

	tokenRent, err := solanago.MinimumBalanceForRentExemption(ctx, c, TokenInfoSize)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("rent for token account: %w", err)
	}
	accountRent, err := solanago.MinimumBalanceForRentExemption(ctx, c, TokenAccountInfoSize)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("rent for holding account: %w", err)
	}

	newTokenIx, err := NewTokenInstruction(programID, tokenWallet.PublicKey(), initialWallet.PublicKey(), supply, decimals)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			tokenRent, TokenInfoSize, programID,
			owner.PublicKey(), tokenWallet.PublicKey(),
		).Build(),
		system.NewCreateAccountInstruction(
			accountRent, TokenAccountInfoSize, programID,
			owner.PublicKey(), initialWallet.PublicKey(),
		).Build(),
		NewTokenAccountInstruction(programID, initialWallet.PublicKey(), owner.PublicKey(), tokenWallet.PublicKey(), nil),
		newTokenIx,
	}

	_, err = cf.SendAndConfirm(ctx, instructions, owner.PublicKey(),
		solanago.SignerFor(owner, tokenWallet, initialWallet))
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	return New(c, cf, programID, tokenWallet.PublicKey()), initialWallet.PublicKey(), nil
}

// NewAccount creates an empty holding account for this token.
func (t *Token) NewAccount(ctx context.Context, owner *solana.Wallet) (solana.PublicKey, error) {
	return t.newAccount(ctx, owner, nil)
}

// NewDelegateAccount creates an allowance account spending from source. Its
// balance is the remaining allowance, granted later via Approve.
func (t *Token) NewDelegateAccount(ctx context.Context, owner *solana.Wallet, source solana.PublicKey) (solana.PublicKey, error) {
	return t.newAccount(ctx, owner, &source)
}

func (t *Token) newAccount(ctx context.Context, owner *solana.Wallet, source *solana.PublicKey) (solana.PublicKey, error) {
	account := solana.NewWallet()
	rent, err := solanago.MinimumBalanceForRentExemption(ctx, t.client, TokenAccountInfoSize)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("rent for holding account: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent, TokenAccountInfoSize, t.programID,
			owner.PublicKey(), account.PublicKey(),
		).Build(),
		NewTokenAccountInstruction(t.programID, account.PublicKey(), owner.PublicKey(), t.pubkey, source),
	}
	_, err = t.confirmer.SendAndConfirm(ctx, instructions, owner.PublicKey(),
		solanago.SignerFor(owner, account))
	if err != nil {
		return solana.PublicKey{}, err
	}
	return account.PublicKey(), nil
}

// Info fetches and decodes the token's own account state.
func (t *Token) Info(ctx context.Context) (*TokenInfo, error) {
	data, err := t.fetchProgramAccount(ctx, t.pubkey)
	if err != nil {
		return nil, err
	}
	return DecodeTokenInfo(data)
}

// AccountInfo fetches and decodes a holding account, cross-checking that it
// belongs to this token.
func (t *Token) AccountInfo(ctx context.Context, account solana.PublicKey) (*TokenAccountInfo, error) {
	data, err := t.fetchProgramAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	info, err := DecodeTokenAccountInfo(data)
	if err != nil {
		return nil, err
	}
	if !info.Token.Equals(t.pubkey) {
		return nil, fmt.Errorf("account %s belongs to token %s, not %s", account, info.Token, t.pubkey)
	}
	return info, nil
}

func (t *Token) fetchProgramAccount(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	res, err := solanago.GetAccountInfo(ctx, t.client, account)
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", account, err)
	}
	if !res.Value.Owner.Equals(t.programID) {
		return nil, fmt.Errorf("account %s is owned by %s, not the token program %s",
			account, res.Value.Owner, t.programID)
	}
	return res.Value.Data.GetBinary(), nil
}

// Transfer moves amount tokens from source to destination. The current
// source state is read first: a delegate account needs its funding account
// appended to the instruction.
func (t *Token) Transfer(ctx context.Context, owner *solana.Wallet, source, destination solana.PublicKey, amount *big.Int) (solana.Signature, error) {
	info, err := t.AccountInfo(ctx, source)
	if err != nil {
		return solana.Signature{}, err
	}
	ix, err := TransferInstruction(t.programID, owner.PublicKey(), source, destination, amount, info.Source)
	if err != nil {
		return solana.Signature{}, err
	}
	return t.confirmer.SendAndConfirm(ctx, []solana.Instruction{ix}, owner.PublicKey(), solanago.SignerFor(owner))
}

// Approve grants delegate an allowance of amount tokens from account.
func (t *Token) Approve(ctx context.Context, owner *solana.Wallet, account, delegate solana.PublicKey, amount *big.Int) (solana.Signature, error) {
	ix, err := ApproveInstruction(t.programID, owner.PublicKey(), account, delegate, amount)
	if err != nil {
		return solana.Signature{}, err
	}
	return t.confirmer.SendAndConfirm(ctx, []solana.Instruction{ix}, owner.PublicKey(), solanago.SignerFor(owner))
}

// Revoke clears a previously granted allowance. The program has no separate
// revoke instruction; an approval of zero is the defined way to revoke.
func (t *Token) Revoke(ctx context.Context, owner *solana.Wallet, account, delegate solana.PublicKey) (solana.Signature, error) {
	return t.Approve(ctx, owner, account, delegate, new(big.Int))
}

// SetOwner hands control of account to newOwner.
func (t *Token) SetOwner(ctx context.Context, owner *solana.Wallet, account, newOwner solana.PublicKey) (solana.Signature, error) {
	ix := SetOwnerInstruction(t.programID, owner.PublicKey(), account, newOwner)
	return t.confirmer.SendAndConfirm(ctx, []solana.Instruction{ix}, owner.PublicKey(), solanago.SignerFor(owner))
}
