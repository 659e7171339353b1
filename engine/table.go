package engine

import (
	"auction/game"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/rand"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// Update records one applied move and the state it led to, after any reveal.
type Update struct {
	Turn   int
	Round  int
	Phase  game.Phase
	Player int           // Bidder, or -1 for a sale
	Moves  []game.Action // The bid, or one offer per seat
	State  *game.GameState
}

// Table holds the authoritative state of one game. It validates every move,
// reveals the next pool when a round ends and keeps the update history.
type Table struct {
	state   *game.GameState
	history []Update
}

func NewTable(players, startingPlayer int, rng *rand.Rand) *Table {
	return NewTableFromState(game.NewGameState(players, startingPlayer, rng))
}

// NewTableFromState starts a table at state, revealing a pool first if none
// is live.
func NewTableFromState(state *game.GameState) *Table {
	t := &Table{state: state.Copy()}
	t.advance()
	return t
}

// State returns a copy of the current state.
func (t *Table) State() *game.GameState {
	return t.state.Copy()
}

func (t *Table) GameOver() bool {
	return t.state.GameOver()
}

func (t *Table) Updates() []Update {
	return slices.Clone(t.history)
}

func (t *Table) Bid(player int, amount game.Action) error {
	if t.GameOver() {
		return ErrGameOver
	}
	if t.state.Phase != game.BidPhase {
		return fmt.Errorf("%w: bid during the %s phase", ErrIllegalMove, t.state.Phase)
	}
	if player != t.state.CurrentPlayer {
		return fmt.Errorf("%w: player %d bid out of turn, waiting on %d", ErrIllegalMove, player, t.state.CurrentPlayer)
	}
	if !slices.Contains(t.state.LegalMovesBid(player), amount) {
		return fmt.Errorf("%w: player %d cannot bid %d", ErrIllegalMove, player, amount)
	}

	turn, round := t.state.TurnNo, t.state.RoundNo
	t.state = t.state.TransitionBid(player, amount)
	t.record(turn, round, game.BidPhase, player, []game.Action{amount})
	return nil
}

// Sell resolves a sale with one offer per seat.
func (t *Table) Sell(choices []game.Action) error {
	if t.GameOver() {
		return ErrGameOver
	}
	if t.state.Phase != game.SellPhase {
		return fmt.Errorf("%w: sale during the %s phase", ErrIllegalMove, t.state.Phase)
	}
	if len(choices) != t.state.NumPlayers() {
		return fmt.Errorf("%w: %d offers for %d seats", ErrIllegalMove, len(choices), t.state.NumPlayers())
	}
	for p, c := range choices {
		if !slices.Contains(t.state.LegalMovesSell(p), c) {
			return fmt.Errorf("%w: player %d does not hold property %d", ErrIllegalMove, p, c)
		}
	}

	turn, round := t.state.TurnNo, t.state.RoundNo
	t.state = t.state.TransitionSell(choices)
	t.record(turn, round, game.SellPhase, -1, slices.Clone(choices))
	return nil
}

func (t *Table) record(turn, round int, phase game.Phase, player int, moves []game.Action) {
	t.advance()
	t.history = append(t.history, Update{
		Turn:   turn,
		Round:  round,
		Phase:  phase,
		Player: player,
		Moves:  moves,
		State:  t.state.Copy(),
	})
}

func (t *Table) advance() {
	if t.state.RoundOver() && !t.state.GameOver() {
		t.state = t.state.Reveal()
	}
}
