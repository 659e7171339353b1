package cfr

import (
	"auction/game"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// newSale builds a three player sale with checks 15, 10 and 0 on the table.
func newSale() *game.GameState {
	gs := game.NewGameStateFromDecks(3, 0, []int{}, game.CheckDeck())
	gs.Phase = game.SellPhase
	gs.Properties = [][]int{{1, 30}, {2, 29}, {3, 28}}
	gs.AuctionPool = []int{15, 10, 0}
	gs.RemainingChecks = nil
	return gs
}

// checksOnly scores players by the checks they have collected.
func checksOnly(s game.State) []float64 {
	gs := s.(*game.GameState)
	return lo.Map(gs.Checks, func(checks []int, _ int) float64 {
		return float64(lo.Sum(checks))
	})
}

func TestSolve(t *testing.T) {
	t.Run("regret stays non-negative and strategies stay normalized", func(t *testing.T) {
		root := newSale()
		root.Properties = [][]int{{1, 12, 30}, {2, 20, 29}, {3, 17, 28}}
		solver := NewSolver(rand.New(rand.NewSource(3)))

		for i := 0; i < 30; i++ {
			table, err := solver.Solve(root, 1)
			require.NoError(t, err)
			for p := 0; p < table.Players(); p++ {
				for _, r := range table.Regret(p) {
					require.GreaterOrEqual(t, r, 0.0)
				}
				require.InDelta(t, 1.0, lo.Sum(table.Strategy(p)), 1e-9)
				require.InDelta(t, 1.0, lo.Sum(table.Policy(p)), 1e-9)
			}
		}
	})

	t.Run("dominant offer", func(t *testing.T) {
		solver := NewSolver(rand.New(rand.NewSource(1)), WithEvaluationFn(checksOnly))

		table, err := solver.Solve(newSale(), 50)

		require.NoError(t, err)
		top, ok := table.Index(0, 30)
		require.True(t, ok)
		bottom, _ := table.Index(0, 1)
		require.Zero(t, table.Regret(0)[bottom], "Offering 1 always takes the empty check")
		require.Equal(t, 1.0, table.Strategy(0)[top])
		require.Greater(t, table.Policy(0)[top], 0.95)
	})

	t.Run("indifference falls back to uniform", func(t *testing.T) {
		zeros := func(s game.State) []float64 { return make([]float64, s.NumPlayers()) }
		solver := NewSolver(rand.New(rand.NewSource(1)), WithEvaluationFn(zeros))

		table, err := solver.Solve(newSale(), 10)

		require.NoError(t, err)
		for p := 0; p < 3; p++ {
			require.Equal(t, []float64{0.5, 0.5}, table.Strategy(p))
			require.Equal(t, []float64{0.5, 0.5}, table.Policy(p))
		}
	})

	t.Run("alternating updates", func(t *testing.T) {
		solver := NewSolver(rand.New(rand.NewSource(1)), WithEvaluationFn(checksOnly), WithAlternating())

		table, err := solver.Solve(newSale(), 50)

		require.NoError(t, err)
		top, _ := table.Index(0, 30)
		require.Greater(t, table.Policy(0)[top], 0.95)
	})

	t.Run("seeded solves agree", func(t *testing.T) {
		first, err := NewSolver(rand.New(rand.NewSource(9))).Solve(newSale(), 25)
		require.NoError(t, err)
		second, err := NewSolver(rand.New(rand.NewSource(9))).Solve(newSale(), 25)
		require.NoError(t, err)

		for p := 0; p < 3; p++ {
			require.Equal(t, first.Policy(p), second.Policy(p))
			require.Equal(t, first.Regret(p), second.Regret(p))
		}
	})

	t.Run("tables persist per position", func(t *testing.T) {
		root := newSale()
		solver := NewSolver(rand.New(rand.NewSource(1)))

		first, err := solver.Solve(root, 5)
		require.NoError(t, err)
		second, err := solver.Solve(root, 5)
		require.NoError(t, err)

		require.Same(t, first, second)
		require.Equal(t, 10, second.Iterations())
		kept, ok := solver.Table(root.Encoding())
		require.True(t, ok)
		require.Same(t, first, kept)
	})

	t.Run("action index is a bijection", func(t *testing.T) {
		table, err := NewSolver(rand.New(rand.NewSource(1))).Solve(newSale(), 1)
		require.NoError(t, err)

		for p := 0; p < 3; p++ {
			for i, a := range table.Actions(p) {
				j, ok := table.Index(p, a)
				require.True(t, ok)
				require.Equal(t, i, j)
				require.Equal(t, a, table.Action(p, i))
			}
		}
		_, ok := table.Index(0, 29)
		require.False(t, ok, "29 belongs to player 1")
	})

	t.Run("rejects positions that are not sales", func(t *testing.T) {
		solver := NewSolver(rand.New(rand.NewSource(1)))

		bid := game.NewGameStateFromDecks(3, 0, game.PropertyDeck(), game.CheckDeck()).Reveal()
		_, err := solver.Solve(bid, 1)
		require.ErrorIs(t, err, ErrNotSale)

		unrevealed := newSale()
		unrevealed.AuctionPool = nil
		_, err = solver.Solve(unrevealed, 1)
		require.ErrorIs(t, err, ErrNotSale)

		_, err = solver.Solve(newSale(), 0)
		require.Error(t, err)
	})
}

func TestSample(t *testing.T) {
	require.Equal(t, 0, Sample([]float64{0.5, 0.5}, 0))
	require.Equal(t, 1, Sample([]float64{0.5, 0.5}, 0.5))
	require.Equal(t, 2, Sample([]float64{0, 0, 1}, 0.3))
	require.Equal(t, 2, Sample([]float64{0.3, 0.3, 0.3}, 0.95), "Short totals fall back to the last index")

	t.Run("policy draws", func(t *testing.T) {
		table, err := NewSolver(rand.New(rand.NewSource(1)), WithEvaluationFn(checksOnly)).Solve(newSale(), 50)
		require.NoError(t, err)

		choices := table.SampleAll(rand.New(rand.NewSource(2)))
		require.Len(t, choices, 3)
		for p, c := range choices {
			_, ok := table.Index(p, c)
			require.True(t, ok)
		}
	})
}
