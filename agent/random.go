package agent

import (
	"auction/experiments/metrics"
	"auction/game"
	"context"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandom returns an agent playing uniformly among legal moves.
func NewRandom(rng *rand.Rand) Agent {
	return &randomAgent{rng: rng}
}

func (a *randomAgent) Name() string {
	return "random"
}

func (a *randomAgent) Bid(ctx context.Context, state *game.GameState) (game.Action, metrics.SearchMetric, error) {
	moves := state.LegalMoves()
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}, nil
}

func (a *randomAgent) Sell(state *game.GameState, player int) (game.Action, error) {
	offers := state.LegalMovesSell(player)
	if len(offers) == 0 {
		return game.Fold, errNothingToSell(player)
	}
	return offers[a.rng.Intn(len(offers))], nil
}
