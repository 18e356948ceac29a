package tictactoe

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// stateGame is the account state sentinel written by the game program.
// It shares a namespace with the token program's sentinels.
const stateGame uint8 = 4

// GameStateSize is the fixed on-chain size of a game account.
const GameStateSize = 1 + 32 + 32 + 1 + BoardCells + 1 + 2*8

// Board geometry.
const (
	BoardWidth = 3
	BoardCells = BoardWidth * BoardWidth
)

// Cell is one board position.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellX
	CellO
)

// Result is the game's lifecycle state.
type Result uint8

const (
	ResultWaiting Result = iota
	ResultInProgress
	ResultXWon
	ResultOWon
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWaiting:
		return "waiting for player O"
	case ResultInProgress:
		return "in progress"
	case ResultXWon:
		return "X won"
	case ResultOWon:
		return "O won"
	case ResultDraw:
		return "draw"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// GameInfo is a point-in-time snapshot of a game account. Turn holds the
// cell value of the side to move (CellX or CellO); KeepAliveX/O are the
// players' last liveness timestamps in unix milliseconds.
type GameInfo struct {
	PlayerX    solana.PublicKey
	PlayerO    solana.PublicKey
	Turn       Cell
	Board      [BoardCells]Cell
	Result     Result
	KeepAliveX int64
	KeepAliveO int64
}

// Cell returns the board cell at column x, row y.
func (g *GameInfo) Cell(x, y int) Cell {
	return g.Board[y*BoardWidth+x]
}

// DecodeGameInfo parses a game account's data.
func DecodeGameInfo(data []byte) (*GameInfo, error) {
	if len(data) < GameStateSize {
		return nil, fmt.Errorf("game data is %d bytes, layout needs %d", len(data), GameStateSize)
	}
	dec := bin.NewBinDecoder(data)

	state, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	if state != stateGame {
		return nil, fmt.Errorf("account is not an initialized game (state %d)", state)
	}

	info := &GameInfo{}
	if info.PlayerX, err = readPublicKey(dec); err != nil {
		return nil, err
	}
	if info.PlayerO, err = readPublicKey(dec); err != nil {
		return nil, err
	}
	turn, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	info.Turn = Cell(turn)

	rawBoard, err := dec.ReadNBytes(BoardCells)
	if err != nil {
		return nil, err
	}
	for i, b := range rawBoard {
		info.Board[i] = Cell(b)
	}

	result, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}
	info.Result = Result(result)

	if info.KeepAliveX, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return nil, err
	}
	if info.KeepAliveO, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return nil, err
	}
	return info, nil
}

// Encode renders the game account layout.
func (g *GameInfo) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(stateGame); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(g.PlayerX[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(g.PlayerO[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(g.Turn)); err != nil {
		return nil, err
	}
	rawBoard := make([]byte, BoardCells)
	for i, c := range g.Board {
		rawBoard[i] = uint8(c)
	}
	if err := enc.WriteBytes(rawBoard, false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(g.Result)); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(g.KeepAliveX, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(g.KeepAliveO, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(32)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(raw), nil
}
