// Package stub provides an in-memory implementation of the module's RPC
// client surface for tests. Program semantics are supplied by an Execute
// hook so each test wires only the behavior it needs.
package stub

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	solanago "github.com/tokenplay/tokenplay-go/solana"
)

// Account is the stub's view of an on-chain account.
type Account struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Client implements solanago.Client against in-memory state.
type Client struct {
	// Execute applies a submitted transaction to the account map. Its
	// error becomes the on-chain rejection reported by the status query.
	// nil means every transaction succeeds without side effects.
	Execute func(tx *solana.Transaction) error

	// SendErrs is consumed one element per send call before sends start
	// succeeding, simulating transport failures.
	SendErrs []error

	// StatusErrs is consumed one element per status query, simulating
	// transport failures during polling.
	StatusErrs []error

	// PendingPolls makes the first n status queries report "not yet
	// observed"; a negative value means the status never resolves.
	PendingPolls int

	// RentPerByte prices getMinimumBalanceForRentExemption.
	RentPerByte uint64

	mu       sync.Mutex
	accounts map[solana.PublicKey]*Account
	results  map[solana.Signature]interface{}
	sent     []*solana.Transaction
	sends    int
	airdrops uint64
}

var _ solanago.Client = (*Client)(nil)

func New() *Client {
	return &Client{
		RentPerByte: 10,
		accounts:    make(map[solana.PublicKey]*Account),
		results:     make(map[solana.Signature]interface{}),
	}
}

// SetAccount seeds or replaces an account.
func (c *Client) SetAccount(key solana.PublicKey, acc *Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[key] = acc
}

// Account returns the stub's current view of an account.
func (c *Client) Account(key solana.PublicKey) (*Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acc, ok := c.accounts[key]
	return acc, ok
}

// Accounts exposes the account map to Execute hooks.
func (c *Client) Accounts() map[solana.PublicKey]*Account {
	return c.accounts
}

// Sent returns every transaction accepted by the send step.
func (c *Client) Sent() []*solana.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Sends counts send attempts, including ones failed via SendErrs.
func (c *Client) Sends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

func (c *Client) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	if len(c.SendErrs) > 0 {
		err := c.SendErrs[0]
		c.SendErrs = c.SendErrs[1:]
		return solana.Signature{}, err
	}

	sig := tx.Signatures[0]
	c.sent = append(c.sent, tx)
	if c.Execute != nil {
		if err := c.Execute(tx); err != nil {
			// Mimic the node's rejection shape.
			c.results[sig] = map[string]interface{}{
				"InstructionError": []interface{}{0, err.Error()},
			}
			return sig, nil
		}
	}
	c.results[sig] = nil
	return sig, nil
}

func (c *Client) GetSignatureStatuses(_ context.Context, _ bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.StatusErrs) > 0 {
		err := c.StatusErrs[0]
		c.StatusErrs = c.StatusErrs[1:]
		return nil, err
	}
	if c.PendingPolls != 0 {
		if c.PendingPolls > 0 {
			c.PendingPolls--
		}
		return &rpc.GetSignatureStatusesResult{Value: make([]*rpc.SignatureStatusesResult, len(sigs))}, nil
	}

	out := &rpc.GetSignatureStatusesResult{}
	for _, sig := range sigs {
		errVal, ok := c.results[sig]
		if !ok {
			out.Value = append(out.Value, nil)
			continue
		}
		out.Value = append(out.Value, &rpc.SignatureStatusesResult{
			Slot:               1,
			Err:                errVal,
			ConfirmationStatus: rpc.ConfirmationStatusFinalized,
		})
	}
	return out, nil
}

func (c *Client) GetAccountInfoWithOpts(_ context.Context, account solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acc, ok := c.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Lamports: acc.Lamports,
			Owner:    acc.Owner,
			Data:     rpc.DataBytesOrJSONFromBytes(acc.Data),
		},
	}, nil
}

func (c *Client) GetMinimumBalanceForRentExemption(_ context.Context, dataSize uint64, _ rpc.CommitmentType) (uint64, error) {
	return c.RentPerByte * dataSize, nil
}

func (c *Client) GetLatestBlockhash(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	var h solana.Hash
	h[0] = 1
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: h},
	}, nil
}

func (c *Client) RequestAirdrop(_ context.Context, account solana.PublicKey, lamports uint64, _ rpc.CommitmentType) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	acc, ok := c.accounts[account]
	if !ok {
		acc = &Account{Owner: solana.SystemProgramID}
		c.accounts[account] = acc
	}
	acc.Lamports += lamports

	c.airdrops++
	var raw [64]byte
	binary.LittleEndian.PutUint64(raw[:], c.airdrops)
	raw[63] = 0xAD
	sig := solana.SignatureFromBytes(raw[:])
	c.results[sig] = nil
	return sig, nil
}
