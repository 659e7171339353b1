package game

import (
	"cmp"
	"fmt"
	"slices"
)

func (gs *GameState) LegalMovesSell(player int) []Action {
	gs.checkPlayer(player)
	moves := make([]Action, len(gs.Properties[player]))
	for i, p := range gs.Properties[player] {
		moves[i] = Action(p)
	}
	return moves
}

// TransitionSell resolves one simultaneous sale. choices holds the property
// each player offers. Offers are ranked ascending, ties kept in seating
// order, and each player in turn takes the smallest check left in the pool.
func (gs *GameState) TransitionSell(choices []Action) *GameState {
	if gs.Phase != SellPhase {
		panic("sale outside the sell phase")
	}
	if gs.RoundOver() {
		panic("sale without a revealed check pool")
	}
	if len(choices) != gs.NumPlayers() {
		panic(fmt.Sprintf("%d offers for %d players", len(choices), gs.NumPlayers()))
	}
	for p, c := range choices {
		if !slices.Contains(gs.Properties[p], int(c)) {
			panic(fmt.Sprintf("player %d does not hold property %d", p, c))
		}
	}

	next := gs.Copy()
	order := make([]int, len(choices))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(choices[a], choices[b])
	})
	for _, p := range order {
		next.Checks[p] = insertSorted(next.Checks[p], next.takeLowest())
		next.Properties[p] = removeValue(next.Properties[p], int(choices[p]))
	}

	next.TurnNo++
	next.RoundNo++
	next.PathEncoding += separator + "S" + joinValues(choices)
	return next
}
