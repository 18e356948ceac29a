package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Default confirmation policy. Finality usually lands within a few seconds;
// the budget leaves headroom for congested clusters while keeping callers
// bounded.
const (
	DefaultConfirmationBudget = 30 * time.Second
	DefaultPollInterval       = 500 * time.Millisecond
	DefaultSendAttempts       = 3
	DefaultSendRetryDelay     = 1 * time.Second
)

// ErrConfirmationTimeout reports that the confirmation budget elapsed with
// the transaction still unresolved. The transaction may yet land; callers
// can keep the signature and poll again later.
var ErrConfirmationTimeout = errors.New("transaction confirmation timed out")

// TransactionError is an explicit on-chain rejection reported by the
// signature status query. It is terminal: the transaction executed and
// failed.
type TransactionError struct {
	Signature solana.Signature
	Cause     interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.Signature, rejectionReason(e.Cause))
}

// rejectionReason renders the raw status error. The node reports it as
// free-form JSON; the common shape is {"InstructionError":[index, reason]}.
func rejectionReason(cause interface{}) string {
	raw, err := json.Marshal(cause)
	if err != nil {
		return fmt.Sprintf("%v", cause)
	}
	if ie := gjson.GetBytes(raw, "InstructionError"); ie.Exists() {
		return fmt.Sprintf("instruction %s: %s", ie.Get("0").Raw, ie.Get("1").Raw)
	}
	return string(raw)
}

// Confirmer submits signed transactions and blocks until their outcome is
// known: confirmed, rejected on chain, or timed out.
type Confirmer struct {
	client         Client
	budget         time.Duration
	pollInterval   time.Duration
	sendAttempts   uint
	sendRetryDelay time.Duration
	commitment     rpc.CommitmentType
	log            *zap.Logger
}

// Option configures a Confirmer.
type Option func(*Confirmer)

// WithConfirmationBudget bounds the total time spent polling for a status.
func WithConfirmationBudget(d time.Duration) Option {
	return func(cf *Confirmer) { cf.budget = d }
}

// WithPollInterval sets the sleep between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(cf *Confirmer) { cf.pollInterval = d }
}

// WithSendAttempts sets how many times the send step is tried before the
// transport error is surfaced.
func WithSendAttempts(n uint) Option {
	return func(cf *Confirmer) { cf.sendAttempts = n }
}

// WithSendRetryDelay sets the fixed delay between send attempts.
func WithSendRetryDelay(d time.Duration) Option {
	return func(cf *Confirmer) { cf.sendRetryDelay = d }
}

// WithCommitment sets the preflight commitment used when sending.
func WithCommitment(c rpc.CommitmentType) Option {
	return func(cf *Confirmer) { cf.commitment = c }
}

// WithLogger attaches a logger; the default is a nop.
func WithLogger(log *zap.Logger) Option {
	return func(cf *Confirmer) { cf.log = log }
}

func NewConfirmer(c Client, opts ...Option) *Confirmer {
	cf := &Confirmer{
		client:         c,
		budget:         DefaultConfirmationBudget,
		pollInterval:   DefaultPollInterval,
		sendAttempts:   DefaultSendAttempts,
		sendRetryDelay: DefaultSendRetryDelay,
		commitment:     rpc.CommitmentFinalized,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cf)
	}
	return cf
}

// SendAndConfirm builds a transaction from instructions, signs it with the
// keys provided by sign, submits it and waits for the outcome. The returned
// signature is valid even on failure so callers can investigate further.
func (cf *Confirmer) SendAndConfirm(
	ctx context.Context,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	sign func(solana.PublicKey) *solana.PrivateKey,
) (solana.Signature, error) {
	blockhash, err := GetLatestBlockhash(ctx, cf.client)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, err
	}
	if _, err = tx.Sign(sign); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := cf.send(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	return cf.WaitForConfirmation(ctx, sig)
}

// send submits the signed transaction, retrying transport failures a bounded
// number of times with a fixed delay.
func (cf *Confirmer) send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := retry.Do(
		func() error {
			var err error
			sig, err = cf.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
				PreflightCommitment: cf.commitment,
			})
			if err != nil {
				cf.log.Warn("send transaction attempt failed", zap.Error(err))
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(cf.sendAttempts),
		retry.Delay(cf.sendRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

// WaitForConfirmation polls the signature status at a fixed interval until
// the transaction is confirmed, rejected on chain, or the confirmation
// budget elapses. A null status past the budget is reported as
// ErrConfirmationTimeout, distinct from an on-chain rejection.
func (cf *Confirmer) WaitForConfirmation(ctx context.Context, sig solana.Signature) (solana.Signature, error) {
	deadline := time.Now().Add(cf.budget)
	for {
		out, err := cf.client.GetSignatureStatuses(ctx, true, sig)
		switch {
		case err != nil:
			// Lookup failures are not terminal; the loop keeps polling
			// until the deadline.
			cf.log.Warn("signature status lookup failed",
				zap.Stringer("signature", sig), zap.Error(err))
		case out != nil && len(out.Value) > 0 && out.Value[0] != nil:
			status := out.Value[0]
			if status.Err != nil {
				return sig, &TransactionError{Signature: sig, Cause: status.Err}
			}
			cf.log.Debug("transaction confirmed",
				zap.Stringer("signature", sig), zap.Uint64("slot", status.Slot))
			return sig, nil
		default:
			cf.log.Debug("transaction pending", zap.Stringer("signature", sig))
		}

		if time.Now().After(deadline) {
			return sig, fmt.Errorf("confirm %s: %w", sig, ErrConfirmationTimeout)
		}
		select {
		case <-ctx.Done():
			return sig, ctx.Err()
		case <-time.After(cf.pollInterval):
		}
	}
}
