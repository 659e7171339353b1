package agent

import (
	"auction/experiments/metrics"
	"auction/game"
	"auction/searcher"
	"context"
)

// Agent controls one seat. Bid is called on the seat's turn in the bid phase,
// Sell once per sale with the seat's index.
type Agent interface {
	Name() string
	// Bid returns the move for the state's current player and the metrics of
	// the search behind it, if any.
	Bid(ctx context.Context, state *game.GameState) (game.Action, metrics.SearchMetric, error)
	Sell(state *game.GameState, player int) (game.Action, error)
}

// Searcher is a bid search engine. *searcher.Parallel satisfies it directly,
// Sequential wraps a *searcher.MaxN.
type Searcher interface {
	Search(ctx context.Context, root game.State) (searcher.Result, error)
}

type sequential struct {
	maxN *searcher.MaxN
}

func Sequential(m *searcher.MaxN) Searcher {
	return sequential{maxN: m}
}

func (s sequential) Search(ctx context.Context, root game.State) (searcher.Result, error) {
	if err := ctx.Err(); err != nil {
		return searcher.Result{}, err
	}
	return s.maxN.Search(root)
}

func search(ctx context.Context, s Searcher, state *game.GameState) (game.Action, metrics.SearchMetric, error) {
	result, err := s.Search(ctx, state)
	if err != nil {
		return game.Fold, metrics.SearchMetric{}, err
	}
	return result.Action, result.Metric, nil
}
