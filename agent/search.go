package agent

import (
	"auction/experiments/metrics"
	"auction/game"
	"context"
	"fmt"

	"golang.org/x/exp/rand"
)

func errNothingToSell(player int) error {
	return fmt.Errorf("player %d has no property to offer", player)
}

type searchAgent struct {
	name     string
	searcher Searcher
	rng      *rand.Rand
	samples  int
	evaluate game.Evaluate
}

// NewSearch returns an agent bidding with s. Offers are the best response to
// samples draws of uniformly random opposing offers.
func NewSearch(name string, s Searcher, rng *rand.Rand, samples int) Agent {
	if samples <= 0 {
		panic("Must specify a positive number of sale samples")
	}
	return &searchAgent{
		name:     name,
		searcher: s,
		rng:      rng,
		samples:  samples,
		evaluate: game.EvaluateRound,
	}
}

func (a *searchAgent) Name() string {
	return a.name
}

func (a *searchAgent) Bid(ctx context.Context, state *game.GameState) (game.Action, metrics.SearchMetric, error) {
	return search(ctx, a.searcher, state)
}

func (a *searchAgent) Sell(state *game.GameState, player int) (game.Action, error) {
	offers := state.LegalMovesSell(player)
	if len(offers) == 0 {
		return game.Fold, errNothingToSell(player)
	}

	totals := make([]float64, len(offers))
	choices := make([]game.Action, state.NumPlayers())
	for i := 0; i < a.samples; i++ {
		for q := range choices {
			if q == player {
				continue
			}
			others := state.LegalMovesSell(q)
			choices[q] = others[a.rng.Intn(len(others))]
		}
		for o, offer := range offers {
			choices[player] = offer
			totals[o] += a.evaluate(state.TransitionSell(choices))[player]
		}
	}

	best := 0
	for o := range totals {
		if totals[o] > totals[best] {
			best = o
		}
	}
	return offers[best], nil
}
