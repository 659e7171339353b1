package searcher

import (
	"auction/game"
	"context"
	"testing"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestParallelSearch(t *testing.T) {
	t.Run("two ply tree", func(t *testing.T) {
		p := NewParallel(4, WithEvaluationFn(mockEvaluate))

		result, err := p.Search(context.Background(), twoPlyTree())

		require.NoError(t, err)
		require.Equal(t, game.Action(1), result.Action)
		require.Equal(t, []float64{1, 5, 0}, result.Outcomes[0].Scores)
		require.Equal(t, []float64{2, 2, 0}, result.Outcomes[1].Scores)
	})

	t.Run("agrees with the sequential search", func(t *testing.T) {
		rng := rand.New(rand.NewSource(23))
		for _, goroutines := range []int{1, 2, 4, 8} {
			for i := 0; i < 10; i++ {
				root := randomTree(rng, 4, 6)

				want, err := NewMaxN(WithEvaluationFn(mockEvaluate)).Search(root)
				require.NoError(t, err)
				got, err := NewParallel(goroutines, WithEvaluationFn(mockEvaluate)).Search(context.Background(), root)
				require.NoError(t, err)

				require.Equal(t, want.Action, got.Action, "Engines should pick the same move")
				require.InDeltaSlice(t, want.Scores, got.Scores, 1e-9)
				for o := range want.Outcomes {
					require.InDeltaSlice(t, want.Outcomes[o].Scores, got.Outcomes[o].Scores, 1e-9)
				}
			}
		}
	})

	t.Run("seeded sampled searches are reproducible", func(t *testing.T) {
		root := shortStacked(3, 2, 4)
		options := []Option{
			WithHorizon(2),
			WithSampling(game.Sampling{Mode: game.Sampled, Samples: 3}),
			WithSeed(11),
		}

		want, err := NewMaxN(options...).Search(root)
		require.NoError(t, err)
		first, err := NewParallel(8, options...).Search(context.Background(), root)
		require.NoError(t, err)

		for i := 0; i < 10; i++ {
			got, err := NewParallel(8, options...).Search(context.Background(), root)
			require.NoError(t, err)

			require.Equal(t, first.Action, got.Action)
			require.Equal(t, want.Action, got.Action, "Sampled reveals should not depend on the engine")
			require.Len(t, got.Outcomes, len(want.Outcomes))
			for o := range want.Outcomes {
				require.Equal(t, want.Outcomes[o].Action, got.Outcomes[o].Action)
				require.InDeltaSlice(t, first.Outcomes[o].Scores, got.Outcomes[o].Scores, 1e-9)
				require.InDeltaSlice(t, want.Outcomes[o].Scores, got.Outcomes[o].Scores, 1e-9)
			}
		}
	})

	t.Run("tiny leaf buffer", func(t *testing.T) {
		root := randomTree(rand.New(rand.NewSource(5)), 3, 6)
		want := referenceMaxN(root)

		got, err := NewParallel(8, WithEvaluationFn(mockEvaluate), WithLeafBuffer(1)).Search(context.Background(), root)

		require.NoError(t, err)
		require.InDeltaSlice(t, want, got.Scores, 1e-9)
	})

	t.Run("metrics", func(t *testing.T) {
		p := NewParallel(2, WithEvaluationFn(mockEvaluate), WithMetrics())

		result, err := p.Search(context.Background(), twoPlyTree())

		require.NoError(t, err)
		require.Equal(t, 2, result.Metric.Workers)
		require.Equal(t, 4, result.Metric.Leaves)
		require.Equal(t, 3, result.Metric.Expansions)
		require.Equal(t, 6, result.Metric.Propagations)
	})

	t.Run("root must be a decision", func(t *testing.T) {
		_, err := NewParallel(2, WithEvaluationFn(mockEvaluate)).Search(context.Background(), leafState("|O", 1, 1))

		require.ErrorIs(t, err, ErrNotDecision)
	})

	t.Run("no goroutines", func(t *testing.T) {
		require.Panics(t, func() { NewParallel(0) })
	})
}

func TestParallelControl(t *testing.T) {
	search := func(p *Parallel, ctx context.Context) chan error {
		results := make(chan error, 1)
		go func() {
			_, err := p.Search(ctx, twoPlyTree())
			results <- err
		}()
		return results
	}

	t.Run("pause holds work until resumed", func(t *testing.T) {
		p := NewParallel(2, WithEvaluationFn(mockEvaluate))
		p.Pause()

		results := search(p, context.Background())
		select {
		case <-results:
			t.Fatal("Search should not finish while paused")
		case <-time.After(50 * time.Millisecond):
		}
		p.Resume()

		require.NoError(t, <-results)
	})

	t.Run("abort", func(t *testing.T) {
		p := NewParallel(2, WithEvaluationFn(mockEvaluate))
		p.Pause()

		results := search(p, context.Background())
		time.Sleep(50 * time.Millisecond)
		p.Abort()

		require.ErrorIs(t, <-results, ErrAborted)
	})

	t.Run("context cancellation", func(t *testing.T) {
		p := NewParallel(2, WithEvaluationFn(mockEvaluate))
		p.Pause()
		ctx, cancel := context.WithCancel(context.Background())

		results := search(p, ctx)
		cancel()

		err := <-results
		require.ErrorIs(t, err, ErrAborted)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("search after an abort", func(t *testing.T) {
		p := NewParallel(2, WithEvaluationFn(mockEvaluate))
		p.Abort()

		result, err := p.Search(context.Background(), twoPlyTree())

		require.NoError(t, err, "A new search should clear an earlier abort")
		require.Equal(t, game.Action(1), result.Action)
	})
}

func TestParallelFold(t *testing.T) {
	p := NewParallel(1)
	s := &parallelSearch{Parallel: p, table: xsync.NewMapOf[int, *scoreNode]()}

	_, _, err := s.fold(propagation{parent: 42, scores: []float64{1, 1, 1}})

	require.ErrorIs(t, err, ErrOrphaned)
}
