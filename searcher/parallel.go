package searcher

import (
	"auction/game"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Parallel runs the maxN search on a pool of work stealing goroutines. Leaves
// are scored by a single consumer fed through a channel. One search runs at a
// time; Pause, Resume and Abort may be called from any goroutine.
type Parallel struct {
	settings
	goroutines int
	paused     atomic.Bool
	aborted    atomic.Bool
}

func NewParallel(goroutines int, options ...Option) *Parallel {
	if goroutines <= 0 {
		panic("Must specify a positive number of goroutines")
	}
	return &Parallel{
		settings:   newSettings(options),
		goroutines: goroutines,
	}
}

// Pause suspends the workers without dropping queued work.
func (p *Parallel) Pause() {
	p.paused.Store(true)
}

func (p *Parallel) Resume() {
	p.paused.Store(false)
}

// Abort stops the running search. Workers empty their queues and the search
// returns ErrAborted.
func (p *Parallel) Abort() {
	p.aborted.Store(true)
}

type parallelSearch struct {
	*Parallel
	table    *xsync.MapOf[int, *scoreNode]
	ids      atomic.Int64
	live     atomic.Int64
	root     int
	children []int // Table id of each root child, by move ordinal
	workers  []*worker
	leaves   chan leaf
	done     atomic.Bool
	halted   atomic.Bool
}

func (p *Parallel) BestMove(ctx context.Context, root game.State) (game.Action, error) {
	result, err := p.Search(ctx, root)
	if err != nil {
		return game.Fold, err
	}
	return result.Action, nil
}

func (p *Parallel) Search(ctx context.Context, root game.State) (Result, error) {
	if err := checkRoot(root); err != nil {
		return Result{}, err
	}
	p.aborted.Store(false)
	p.metrics.Start(p.goroutines, p.horizon, p.sampling)

	s := &parallelSearch{
		Parallel: p,
		table:    xsync.NewMapOf[int, *scoreNode](),
		leaves:   make(chan leaf, p.leafBuffer),
	}
	s.workers = make([]*worker, p.goroutines)
	for i := range s.workers {
		s.workers[i] = &worker{
			id:     i,
			search: s,
			rng:    rand.New(rand.NewSource(p.seed + uint64(i))),
		}
	}

	// Expand the root here and deal its children out round robin
	moves := root.LegalMoves()
	s.children = make([]int, len(moves))
	for i := range s.children {
		s.children[i] = -1
	}
	end := terminal{Round: root.Round() + p.horizon}
	s.root = s.insert(traversal{state: root, parent: -1, terminal: end}, false, len(moves))
	for o, child := range play(root, moves) {
		s.workers[o%len(s.workers)].traversals.push(traversal{
			state:    child,
			parent:   s.root,
			ordinal:  o,
			ply:      1,
			terminal: end,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	var workers sync.WaitGroup
	for _, w := range s.workers {
		w := w
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			err := w.run(gctx)
			if err != nil {
				s.halted.Store(true)
			}
			return err
		})
	}
	g.Go(func() error {
		return s.consume(gctx)
	})
	go func() {
		workers.Wait()
		close(s.leaves)
	}()

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if !s.done.Load() {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
		}
		return Result{}, ErrAborted
	}
	return s.result(root, moves)
}

func (s *parallelSearch) stopped(ctx context.Context) bool {
	return s.aborted.Load() || s.halted.Load() || ctx.Err() != nil
}

func (s *parallelSearch) insert(t traversal, chance bool, children int) int {
	if chance {
		s.metrics.AddChance()
	} else {
		s.metrics.AddExpansion()
	}
	id := int(s.ids.Add(1))
	s.table.Store(id, newScoreNode(t.state, t.parent, t.ordinal, t.ply, chance, children))
	s.metrics.ObserveTable(int(s.live.Add(1)))
	if t.ply == 1 {
		s.children[t.ordinal] = id
	}
	return id
}

func (s *parallelSearch) sendLeaf(l leaf) {
	select {
	case s.leaves <- l:
	default:
		log.Warn().Msgf("leaf channel full at %d, worker %d waiting on the scorer", cap(s.leaves), l.worker)
		s.leaves <- l
	}
}

// consume scores leaves and folds them into their parents. A parent resolved
// here continues upward on the propagation queue of the worker that found the
// leaf. The channel is drained until closed even after a failure so that no
// worker blocks on a send.
func (s *parallelSearch) consume(ctx context.Context) error {
	var failure error
	for l := range s.leaves {
		if failure != nil || s.stopped(ctx) {
			continue
		}
		s.metrics.AddLeaf()
		scores := s.evaluate(l.state)
		if l.ply == 1 {
			id := int(s.ids.Add(1))
			s.table.Store(id, newResolved(l.state, l.parent, l.ordinal, l.ply, scores))
			s.live.Add(1)
			s.children[l.ordinal] = id
		}

		next, resolved, err := s.fold(propagation{parent: l.parent, ordinal: l.ordinal, scores: scores})
		if err != nil {
			failure = err
			s.halted.Store(true)
			continue
		}
		if resolved && l.parent != s.root {
			s.workers[l.worker].propagations.push(next)
		}
	}
	return failure
}

// fold absorbs a child's scores into its parent as one transaction on the
// parent's key. Only the caller that sees the last child resolve the parent
// gets resolved == true, and only that caller evicts it.
func (s *parallelSearch) fold(p propagation) (next propagation, resolved bool, err error) {
	missing := false
	s.table.Compute(p.parent, func(n *scoreNode, loaded bool) (*scoreNode, bool) {
		if !loaded {
			missing = true
			return n, true
		}
		s.metrics.AddPropagation()
		if !n.absorb(p.ordinal, p.scores) {
			return n, false
		}
		resolved = true
		next = propagation{parent: n.parent, ordinal: n.ordinal, scores: slices.Clone(n.scores)}
		evict := p.parent != s.root && n.ply > retainedPlies
		if evict {
			s.live.Add(-1)
		}
		return n, evict
	})
	if missing {
		return next, false, fmt.Errorf("%w: node %d", ErrOrphaned, p.parent)
	}
	if resolved && p.parent == s.root {
		s.done.Store(true)
	}
	return next, resolved, nil
}

func (s *parallelSearch) result(root game.State, moves []game.Action) (Result, error) {
	rootNode, ok := s.table.Load(s.root)
	if !ok {
		return Result{}, fmt.Errorf("%w: root", ErrOrphaned)
	}
	outcomes := make([]Outcome, len(moves))
	for i, move := range moves {
		child, ok := s.table.Load(s.children[i])
		if !ok {
			return Result{}, fmt.Errorf("%w: root child %d", ErrOrphaned, i)
		}
		outcomes[i] = Outcome{Action: move, Scores: slices.Clone(child.scores)}
	}
	metric := s.metrics.Complete()
	log.Debug().Str("search", metric.ID).Msgf("parallel maxn on %d goroutines resolved %s leaves with %s steals in %s",
		s.goroutines, humanize.Comma(int64(metric.Leaves)), humanize.Comma(int64(metric.Steals)), metric.Duration)

	return Result{
		Action:   bestOutcome(root.Player(), outcomes),
		Scores:   slices.Clone(rootNode.scores),
		Outcomes: outcomes,
		Metric:   metric,
	}, nil
}
