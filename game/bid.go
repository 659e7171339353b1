package game

import (
	"fmt"

	"github.com/samber/lo"
)

// LegalMovesBid lists the bid increments open to player in ascending order.
// Fold is always legal; raises start just above the live high bid and run up
// to the player's uncommitted coins.
func (gs *GameState) LegalMovesBid(player int) []Action {
	gs.checkPlayer(player)
	lowest, ok := gs.raiseRange(player)
	if !ok {
		return []Action{Fold}
	}
	wealth := gs.Coins[player]
	moves := make([]Action, 0, wealth-lowest+2)
	moves = append(moves, Fold)
	for a := lowest; a <= wealth; a++ {
		moves = append(moves, Action(a))
	}
	return moves
}

// raiseRange returns the smallest legal raise for player, or false if the
// player cannot outbid the table.
func (gs *GameState) raiseRange(player int) (int, bool) {
	highest := lo.Max(gs.ActiveBids)
	committed := gs.ActiveBids[player]
	if gs.Coins[player]+committed <= highest {
		return 0, false
	}
	return max(1, highest+1-committed), true
}

func (gs *GameState) legalBid(player int, amount Action) bool {
	if amount == Fold {
		return true
	}
	lowest, ok := gs.raiseRange(player)
	return ok && int(amount) >= lowest && int(amount) <= gs.Coins[player]
}

// TransitionBid returns the state after player bids amount. A fold refunds
// half the committed bid (rounded down) and hands the player the lowest item
// of the pool. When a fold leaves a single bidder, that bidder takes the last
// item and the next round is set up around them.
func (gs *GameState) TransitionBid(player int, amount Action) *GameState {
	gs.checkPlayer(player)
	if gs.Phase != BidPhase {
		panic("bid outside the bid phase")
	}
	if gs.RoundOver() {
		panic("bid without a revealed auction pool")
	}
	if player != gs.CurrentPlayer {
		panic(fmt.Sprintf("player %d bid out of turn, player %d to move", player, gs.CurrentPlayer))
	}
	if !gs.legalBid(player, amount) {
		panic(fmt.Sprintf("illegal bid %d for player %d", amount, player))
	}

	next := gs.Copy()
	if amount == Fold {
		next.fold(player)
		if len(next.AuctionPool) == 1 {
			next.winAuction(gs.nextActive(player))
		} else {
			next.PreviousPlayer = player
			next.CurrentPlayer = next.nextActive(player)
		}
	} else {
		next.Coins[player] -= int(amount)
		next.ActiveBids[player] += int(amount)
		next.PreviousPlayer = player
		next.CurrentPlayer = next.nextActive(player)
	}

	next.TurnNo++
	if next.RoundOver() {
		next.RoundNo++
		if len(next.RemainingProperties) == 0 {
			next.Phase = SellPhase
		}
	}
	next.PathEncoding += fmt.Sprintf("%s%dP%d", separator, amount, player)
	return next
}

func (gs *GameState) fold(player int) {
	gs.Coins[player] += gs.ActiveBids[player] / 2
	gs.ActiveBids[player] = 0
	gs.ActivePlayers[player] = false
	gs.Properties[player] = insertSorted(gs.Properties[player], gs.takeLowest())
}

// winAuction awards the last pool item to winner, whose committed coins are
// spent, and resets the table for the next round.
func (gs *GameState) winAuction(winner int) {
	gs.Properties[winner] = insertSorted(gs.Properties[winner], gs.takeLowest())
	for p := range gs.ActiveBids {
		gs.ActiveBids[p] = 0
		gs.ActivePlayers[p] = true
	}
	gs.PreviousPlayer = gs.CurrentPlayer
	gs.CurrentPlayer = winner
}

func (gs *GameState) takeLowest() int {
	last := len(gs.AuctionPool) - 1
	item := gs.AuctionPool[last]
	gs.AuctionPool = gs.AuctionPool[:last]
	return item
}
