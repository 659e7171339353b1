package cfr

import (
	"auction/game"

	"golang.org/x/exp/rand"
)

// Sample inverts the cumulative distribution of probs at r in [0, 1). When
// rounding leaves the total short of r the last index is returned.
func Sample(probs []float64, r float64) int {
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if r < cumulative {
			return i
		}
	}
	return len(probs) - 1
}

// SampleAction draws one action for player from the table's policy.
func SampleAction(t *Table, player int, rng *rand.Rand) game.Action {
	return t.Action(player, Sample(t.Policy(player), rng.Float64()))
}

// SampleAll draws one action per player.
func (t *Table) SampleAll(rng *rand.Rand) []game.Action {
	choices := make([]game.Action, t.Players())
	for p := range choices {
		choices[p] = SampleAction(t, p, rng)
	}
	return choices
}
