package searcher

import (
	"auction/game"
	"context"
	"runtime"
	"sync"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// queue is a worker owned deque. The owner works from the back, thieves take
// from the front where the oldest and largest subtrees wait.
type queue[T any] struct {
	mu    sync.Mutex
	items deque.Deque[T]
}

func (q *queue[T]) push(v T) {
	q.mu.Lock()
	q.items.PushBack(v)
	q.mu.Unlock()
}

func (q *queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.items.PopBack(), true
}

func (q *queue[T]) steal() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.items.PopFront(), true
}

func (q *queue[T]) drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.items.Len()
	q.items.Clear()
	return n
}

type traversal struct {
	state    game.State
	parent   int
	ordinal  int
	ply      int
	terminal terminal
}

type propagation struct {
	parent  int
	ordinal int
	scores  []float64
}

type leaf struct {
	traversal
	worker int
}

type worker struct {
	id           int
	search       *parallelSearch
	traversals   queue[traversal]
	propagations queue[propagation]
	rng          *rand.Rand
}

func (w *worker) run(ctx context.Context) error {
	s := w.search
	for {
		if s.stopped(ctx) {
			w.drain()
			return nil
		}
		if s.paused.Load() {
			runtime.Gosched()
			continue
		}

		if p, ok := w.propagations.pop(); ok {
			if err := w.propagate(p); err != nil {
				return err
			}
			continue
		}
		if t, ok := w.traversals.pop(); ok {
			w.expand(t)
			continue
		}
		if t, ok := w.stealTraversal(); ok {
			w.expand(t)
			continue
		}
		if p, ok := w.stealPropagation(); ok {
			if err := w.propagate(p); err != nil {
				return err
			}
			continue
		}

		if s.done.Load() {
			return nil
		}
		runtime.Gosched()
	}
}

func (w *worker) drain() {
	traversals, propagations := w.traversals.drain(), w.propagations.drain()
	if traversals+propagations > 0 {
		log.Debug().Msgf("worker %d dropped %d traversals and %d propagations", w.id, traversals, propagations)
	}
}

func (w *worker) expand(t traversal) {
	s := w.search
	if t.terminal.leaf(t.state) {
		s.sendLeaf(leaf{traversal: t, worker: w.id})
		return
	}

	var children []game.State
	chance := t.state.RoundOver()
	if chance {
		children = t.state.Outcomes(s.sampling, chanceRNG(s.seed, t.state))
	} else {
		children = play(t.state, t.state.LegalMoves())
	}
	if len(children) == 0 {
		s.sendLeaf(leaf{traversal: t, worker: w.id})
		return
	}

	id := s.insert(t, chance, len(children))
	for o := len(children) - 1; o >= 0; o-- {
		w.traversals.push(traversal{
			state:    children[o],
			parent:   id,
			ordinal:  o,
			ply:      t.ply + 1,
			terminal: t.terminal,
		})
	}
}

func (w *worker) propagate(p propagation) error {
	next, resolved, err := w.search.fold(p)
	if err != nil {
		return err
	}
	if resolved && p.parent != w.search.root {
		w.propagations.push(next)
	}
	return nil
}

func (w *worker) stealTraversal() (traversal, bool) {
	for _, v := range w.rng.Perm(len(w.search.workers)) {
		if v == w.id {
			continue
		}
		if t, ok := w.search.workers[v].traversals.steal(); ok {
			w.search.metrics.AddSteal()
			return t, true
		}
	}
	return traversal{}, false
}

func (w *worker) stealPropagation() (propagation, bool) {
	for _, v := range w.rng.Perm(len(w.search.workers)) {
		if v == w.id {
			continue
		}
		if p, ok := w.search.workers[v].propagations.steal(); ok {
			w.search.metrics.AddSteal()
			return p, true
		}
	}
	return propagation{}, false
}
