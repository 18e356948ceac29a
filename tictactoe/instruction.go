package tictactoe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction tags understood by the on-chain game program. Closed set,
// values fixed by the wire contract.
const (
	TagInitGame  uint8 = 0
	TagJoin      uint8 = 1
	TagMove      uint8 = 2
	TagKeepAlive uint8 = 3
)

// Instruction is a ready-to-submit game program instruction.
type Instruction struct {
	programID solana.PublicKey
	accounts  []*solana.AccountMeta
	data      []byte
}

func (ix *Instruction) ProgramID() solana.PublicKey     { return ix.programID }
func (ix *Instruction) Accounts() []*solana.AccountMeta { return ix.accounts }
func (ix *Instruction) Data() ([]byte, error)           { return ix.data, nil }

// EncodeInitGameData builds the InitGame payload.
func EncodeInitGameData() []byte { return []byte{TagInitGame} }

// EncodeJoinData builds the Join payload with the joining player's initial
// keep-alive timestamp.
func EncodeJoinData(timestampMs int64) ([]byte, error) {
	return encodeTagTimestamp(TagJoin, timestampMs)
}

// EncodeMoveData builds the Move payload for column x, row y.
func EncodeMoveData(x, y uint8) ([]byte, error) {
	if x >= BoardWidth || y >= BoardWidth {
		return nil, fmt.Errorf("move (%d,%d) is off the %dx%d board", x, y, BoardWidth, BoardWidth)
	}
	return []byte{TagMove, x, y}, nil
}

// EncodeKeepAliveData builds the KeepAlive payload.
func EncodeKeepAliveData(timestampMs int64) ([]byte, error) {
	return encodeTagTimestamp(TagKeepAlive, timestampMs)
}

func encodeTagTimestamp(tag uint8, timestampMs int64) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(tag); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(timestampMs, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InitGameInstruction initializes game with playerX as the first player.
func InitGameInstruction(programID, game, playerX solana.PublicKey) solana.Instruction {
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(game).WRITE().SIGNER(),
			solana.Meta(playerX).SIGNER(),
		},
		data: EncodeInitGameData(),
	}
}

// JoinInstruction enrolls playerO into game and starts play.
func JoinInstruction(programID, game, playerO solana.PublicKey, timestampMs int64) (solana.Instruction, error) {
	data, err := EncodeJoinData(timestampMs)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(game).WRITE(),
			solana.Meta(playerO).SIGNER(),
		},
		data: data,
	}, nil
}

// MoveInstruction plays the cell at column x, row y for player.
func MoveInstruction(programID, game, player solana.PublicKey, x, y uint8) (solana.Instruction, error) {
	data, err := EncodeMoveData(x, y)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(game).WRITE(),
			solana.Meta(player).SIGNER(),
		},
		data: data,
	}, nil
}

// KeepAliveInstruction refreshes player's liveness timestamp.
func KeepAliveInstruction(programID, game, player solana.PublicKey, timestampMs int64) (solana.Instruction, error) {
	data, err := EncodeKeepAliveData(timestampMs)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		programID: programID,
		accounts: []*solana.AccountMeta{
			solana.Meta(game).WRITE(),
			solana.Meta(player).SIGNER(),
		},
		data: data,
	}, nil
}
