package agent

import (
	"auction/cfr"
	"auction/experiments/metrics"
	"auction/game"
	"context"
	"fmt"

	"golang.org/x/exp/rand"
)

type equilibriumAgent struct {
	name       string
	searcher   Searcher
	solver     *cfr.Solver
	iterations int
	rng        *rand.Rand
}

// NewEquilibrium returns an agent bidding with s and selling by sampling the
// CFR+ average strategy of each sale. A sale already solved to iterations is
// not solved again, so one solver can be shared by the seats of one game
// loop.
func NewEquilibrium(name string, s Searcher, solver *cfr.Solver, iterations int, rng *rand.Rand) Agent {
	if iterations <= 0 {
		panic("Must specify a positive number of CFR iterations")
	}
	return &equilibriumAgent{
		name:       name,
		searcher:   s,
		solver:     solver,
		iterations: iterations,
		rng:        rng,
	}
}

func (a *equilibriumAgent) Name() string {
	return a.name
}

func (a *equilibriumAgent) Bid(ctx context.Context, state *game.GameState) (game.Action, metrics.SearchMetric, error) {
	return search(ctx, a.searcher, state)
}

func (a *equilibriumAgent) Sell(state *game.GameState, player int) (game.Action, error) {
	table, ok := a.solver.Table(state.Encoding())
	if !ok || table.Iterations() < a.iterations {
		var err error
		table, err = a.solver.Solve(state, a.iterations)
		if err != nil {
			return game.Fold, fmt.Errorf("failed to solve sale: %w", err)
		}
	}
	return cfr.SampleAction(table, player, a.rng), nil
}
