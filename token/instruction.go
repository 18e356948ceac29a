package token

import (
	"bytes"
	"encoding/binary"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction tags understood by the on-chain token program. The set is
// closed and the values are part of the wire contract; the program does not
// validate layout identity, so any renumbering fails silently on chain.
const (
	TagNewToken        uint8 = 0
	TagNewTokenAccount uint8 = 1
	TagTransfer        uint8 = 2
	TagApprove         uint8 = 3
	TagSetOwner        uint8 = 4
)

// Instruction is a ready-to-submit token program instruction.
type Instruction struct {
	programID solana.PublicKey
	accounts  []*solana.AccountMeta
	data      []byte
}

func (ix *Instruction) ProgramID() solana.PublicKey     { return ix.programID }
func (ix *Instruction) Accounts() []*solana.AccountMeta { return ix.accounts }
func (ix *Instruction) Data() ([]byte, error)           { return ix.data, nil }

// EncodeNewTokenData builds the NewToken payload: tag, supply, and decimals
// widened to a native 8-byte little-endian integer.
func EncodeNewTokenData(supply *big.Int, decimals uint8) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(TagNewToken); err != nil {
		return nil, err
	}
	raw, err := EncodeAmount(supply)
	if err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(raw, false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(uint64(decimals), binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeNewTokenAccountData builds the NewTokenAccount payload.
func EncodeNewTokenAccountData() []byte { return []byte{TagNewTokenAccount} }

// EncodeTransferData builds the Transfer payload.
func EncodeTransferData(amount *big.Int) ([]byte, error) {
	return encodeTagAmount(TagTransfer, amount)
}

// EncodeApproveData builds the Approve payload.
func EncodeApproveData(amount *big.Int) ([]byte, error) {
	return encodeTagAmount(TagApprove, amount)
}

// EncodeSetOwnerData builds the SetOwner payload.
func EncodeSetOwnerData() []byte { return []byte{TagSetOwner} }

func encodeTagAmount(tag uint8, amount *big.Int) ([]byte, error) {
	raw, err := EncodeAmount(amount)
	if err != nil {
		return nil, err
	}
	return append([]byte{tag}, raw...), nil
}

// NewTokenInstruction initializes the token type itself, crediting the whole
// supply to initialAccount.
func NewTokenInstruction(programID, token, initialAccount solana.PublicKey, supply *big.Int, decimals uint8) (solana.Instruction, error) {
	data, err := EncodeNewTokenData(supply, decimals)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(token).WRITE().SIGNER(),
			solana.Meta(initialAccount).WRITE(),
		},
		data: data,
	}, nil
}

// NewTokenAccountInstruction initializes a holding account. A non-nil source
// makes it a delegate account spending from source.
func NewTokenAccountInstruction(programID, account, owner, token solana.PublicKey, source *solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		solana.Meta(account).WRITE().SIGNER(),
		solana.Meta(owner),
		solana.Meta(token),
	}
	if source != nil {
		accounts = append(accounts, solana.Meta(*source))
	}
	return &Instruction{
		programID: programID,
		accounts:  accounts,
		data:      EncodeNewTokenAccountData(),
	}
}

// TransferInstruction moves tokens from source to destination. When source
// is a delegate account the program also needs the account it spends from,
// passed as delegateSource.
func TransferInstruction(programID, owner, source, destination solana.PublicKey, amount *big.Int, delegateSource *solana.PublicKey) (solana.Instruction, error) {
	data, err := EncodeTransferData(amount)
	if err != nil {
		return nil, err
	}
	accounts := []*solana.AccountMeta{
		solana.Meta(owner).SIGNER(),
		solana.Meta(source).WRITE(),
		solana.Meta(destination).WRITE(),
	}
	if delegateSource != nil {
		accounts = append(accounts, solana.Meta(*delegateSource).WRITE())
	}
	return &Instruction{programID: programID, accounts: accounts, data: data}, nil
}

// ApproveInstruction grants delegate an allowance from account.
func ApproveInstruction(programID, owner, account, delegate solana.PublicKey, amount *big.Int) (solana.Instruction, error) {
	data, err := EncodeApproveData(amount)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(owner).SIGNER(),
			solana.Meta(account),
			solana.Meta(delegate).WRITE(),
		},
		data: data,
	}, nil
}

// SetOwnerInstruction hands control of account to newOwner.
func SetOwnerInstruction(programID, owner, account, newOwner solana.PublicKey) solana.Instruction {
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(owner).SIGNER(),
			solana.Meta(account).WRITE(),
			solana.Meta(newOwner),
		},
		data: EncodeSetOwnerData(),
	}
}
