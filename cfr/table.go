package cfr

import (
	"auction/game"
	"slices"
)

// Table holds the regret matching state of one sale position, one row per
// player. Row entries line up with the player's action index.
type Table struct {
	actions    [][]game.Action
	index      []map[game.Action]int
	strategy   [][]float64
	regret     [][]float64
	average    [][]float64
	iterations int
}

func newTable(root *game.GameState) *Table {
	players := root.NumPlayers()
	t := &Table{
		actions:  make([][]game.Action, players),
		index:    make([]map[game.Action]int, players),
		strategy: make([][]float64, players),
		regret:   make([][]float64, players),
		average:  make([][]float64, players),
	}
	for p := 0; p < players; p++ {
		moves := root.LegalMovesSell(p)
		t.actions[p] = moves
		t.index[p] = make(map[game.Action]int, len(moves))
		for i, m := range moves {
			t.index[p][m] = i
		}
		t.strategy[p] = uniform(len(moves))
		t.regret[p] = make([]float64, len(moves))
		t.average[p] = make([]float64, len(moves))
	}
	return t
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}

func (t *Table) Players() int {
	return len(t.actions)
}

func (t *Table) Iterations() int {
	return t.iterations
}

func (t *Table) Actions(player int) []game.Action {
	return slices.Clone(t.actions[player])
}

func (t *Table) Action(player, index int) game.Action {
	return t.actions[player][index]
}

func (t *Table) Index(player int, action game.Action) (int, bool) {
	i, ok := t.index[player][action]
	return i, ok
}

// Strategy is the player's current regret matched strategy.
func (t *Table) Strategy(player int) []float64 {
	return slices.Clone(t.strategy[player])
}

func (t *Table) Regret(player int) []float64 {
	return slices.Clone(t.regret[player])
}

// Policy is the time averaged strategy, the solver's answer. Before any
// iteration it is uniform.
func (t *Table) Policy(player int) []float64 {
	if t.iterations == 0 {
		return uniform(len(t.actions[player]))
	}
	return slices.Clone(t.average[player])
}

// renormalize sets the player's strategy proportional to accumulated regret,
// or uniform when there is none.
func (t *Table) renormalize(player int) {
	total := 0.0
	for _, r := range t.regret[player] {
		total += r
	}
	if total <= 0 {
		t.strategy[player] = uniform(len(t.regret[player]))
		return
	}
	for i, r := range t.regret[player] {
		t.strategy[player][i] = r / total
	}
}
