// Package tictactoe is a client for the demo tic-tac-toe program. It rides
// the same transaction submission and account decoding machinery as the
// token client; the game itself is arbitrated on chain.
package tictactoe

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	solanago "github.com/tokenplay/tokenplay-go/solana"
)

// Game is a client bound to one game account.
type Game struct {
	client    solanago.Client
	confirmer *solanago.Confirmer
	programID solana.PublicKey
	pubkey    solana.PublicKey

	now func() time.Time
}

// Attach binds a client to an existing game account.
func Attach(c solanago.Client, cf *solanago.Confirmer, programID, game solana.PublicKey) *Game {
	return &Game{
		client:    c,
		confirmer: cf,
		programID: programID,
		pubkey:    game,
		now:       time.Now,
	}
}

// Pubkey returns the game's account address.
func (g *Game) Pubkey() solana.PublicKey { return g.pubkey }

// CreateGame allocates a game account funded by playerX and initializes it.
// The game waits for an opponent until Join.
func CreateGame(
	ctx context.Context,
	c solanago.Client,
	cf *solanago.Confirmer,
	programID solana.PublicKey,
	playerX *solana.Wallet,
) (*Game, error) {
	gameWallet := solana.NewWallet()

	rent, err := solanago.MinimumBalanceForRentExemption(ctx, c, GameStateSize)
	if err != nil {
		return nil, fmt.Errorf("rent for game account: %w", err)
	}

	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent, GameStateSize, programID,
			playerX.PublicKey(), gameWallet.PublicKey(),
		).Build(),
		InitGameInstruction(programID, gameWallet.PublicKey(), playerX.PublicKey()),
	}
	_, err = cf.SendAndConfirm(ctx, instructions, playerX.PublicKey(),
		solanago.SignerFor(playerX, gameWallet))
	if err != nil {
		return nil, err
	}
	return Attach(c, cf, programID, gameWallet.PublicKey()), nil
}

// Join enrolls playerO, moving the game to in-progress with X to move.
func (g *Game) Join(ctx context.Context, playerO *solana.Wallet) (solana.Signature, error) {
	ix, err := JoinInstruction(g.programID, g.pubkey, playerO.PublicKey(), g.now().UnixMilli())
	if err != nil {
		return solana.Signature{}, err
	}
	return g.confirmer.SendAndConfirm(ctx, []solana.Instruction{ix}, playerO.PublicKey(), solanago.SignerFor(playerO))
}

// Move plays the cell at column x, row y for player. The program rejects
// moves out of turn, onto occupied cells, or after the game is decided.
func (g *Game) Move(ctx context.Context, player *solana.Wallet, x, y uint8) (solana.Signature, error) {
	ix, err := MoveInstruction(g.programID, g.pubkey, player.PublicKey(), x, y)
	if err != nil {
		return solana.Signature{}, err
	}
	return g.confirmer.SendAndConfirm(ctx, []solana.Instruction{ix}, player.PublicKey(), solanago.SignerFor(player))
}

// KeepAlive refreshes player's liveness timestamp so the opponent cannot
// claim abandonment.
func (g *Game) KeepAlive(ctx context.Context, player *solana.Wallet) (solana.Signature, error) {
	ix, err := KeepAliveInstruction(g.programID, g.pubkey, player.PublicKey(), g.now().UnixMilli())
	if err != nil {
		return solana.Signature{}, err
	}
	return g.confirmer.SendAndConfirm(ctx, []solana.Instruction{ix}, player.PublicKey(), solanago.SignerFor(player))
}

// Info fetches and decodes the game's current state.
func (g *Game) Info(ctx context.Context) (*GameInfo, error) {
	res, err := solanago.GetAccountInfo(ctx, g.client, g.pubkey)
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", g.pubkey, err)
	}
	if !res.Value.Owner.Equals(g.programID) {
		return nil, fmt.Errorf("account %s is owned by %s, not the game program %s",
			g.pubkey, res.Value.Owner, g.programID)
	}
	return DecodeGameInfo(res.Value.Data.GetBinary())
}
