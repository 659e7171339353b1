package searcher

import (
	"auction/game"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// MaxN is the single goroutine search: depth first over an explicit stack,
// with every expanded position held in a score table until its children are
// resolved. A MaxN must not be shared between goroutines.
type MaxN struct {
	settings
}

func NewMaxN(options ...Option) *MaxN {
	return &MaxN{settings: newSettings(options)}
}

type job struct {
	state   game.State
	parent  int
	ordinal int
	ply     int
}

type maxnSearch struct {
	*MaxN
	table    table
	frontier []job
	root     int
	children []int // Table index of each root child, by move ordinal
	terminal terminal
}

// BestMove returns the root player's maxN move.
func (m *MaxN) BestMove(root game.State) (game.Action, error) {
	result, err := m.Search(root)
	if err != nil {
		return game.Fold, err
	}
	return result.Action, nil
}

func (m *MaxN) Search(root game.State) (Result, error) {
	if err := checkRoot(root); err != nil {
		return Result{}, err
	}

	m.metrics.Start(1, m.horizon, m.sampling)
	s := &maxnSearch{
		MaxN:     m,
		terminal: terminal{Round: root.Round() + m.horizon},
	}
	moves := root.LegalMoves()
	s.children = make([]int, len(moves))
	for i := range s.children {
		s.children[i] = -1
	}
	s.root = s.expand(job{state: root, parent: -1}, false, play(root, moves))

	if err := s.run(); err != nil {
		return Result{}, err
	}
	rootNode := s.table.get(s.root)
	if rootNode == nil || rootNode.remaining != 0 {
		return Result{}, fmt.Errorf("%w: root left unresolved", ErrOrphaned)
	}

	outcomes := make([]Outcome, len(moves))
	for i, move := range moves {
		child := s.table.get(s.children[i])
		if child == nil {
			return Result{}, fmt.Errorf("%w: root child %d", ErrOrphaned, i)
		}
		outcomes[i] = Outcome{Action: move, Scores: slices.Clone(child.scores)}
	}
	metric := m.metrics.Complete()
	log.Debug().Str("search", metric.ID).Msgf("maxn resolved %s leaves over %s nodes in %s",
		humanize.Comma(int64(metric.Leaves)), humanize.Comma(int64(metric.Expansions+metric.ChanceNodes)), metric.Duration)

	return Result{
		Action:   bestOutcome(root.Player(), outcomes),
		Scores:   slices.Clone(rootNode.scores),
		Outcomes: outcomes,
		Metric:   metric,
	}, nil
}

func play(state game.State, moves []game.Action) []game.State {
	children := make([]game.State, len(moves))
	for i, move := range moves {
		children[i] = state.Play(move)
	}
	return children
}

func (s *maxnSearch) run() error {
	for len(s.frontier) > 0 {
		last := len(s.frontier) - 1
		j := s.frontier[last]
		s.frontier = s.frontier[:last]

		switch {
		case s.terminal.leaf(j.state):
			if err := s.score(j); err != nil {
				return err
			}
		case j.state.RoundOver():
			outcomes := j.state.Outcomes(s.sampling, chanceRNG(s.seed, j.state))
			if len(outcomes) == 0 {
				if err := s.score(j); err != nil {
					return err
				}
				continue
			}
			s.expand(j, true, outcomes)
		default:
			s.expand(j, false, play(j.state, j.state.LegalMoves()))
		}
	}
	return nil
}

// expand registers j in the table and pushes its children so the first one
// is popped next.
func (s *maxnSearch) expand(j job, chance bool, children []game.State) int {
	if chance {
		s.metrics.AddChance()
	} else {
		s.metrics.AddExpansion()
	}
	i := s.table.insert(newScoreNode(j.state, j.parent, j.ordinal, j.ply, chance, len(children)))
	s.metrics.ObserveTable(s.table.size())
	if j.ply == 1 {
		s.children[j.ordinal] = i
	}
	for o := len(children) - 1; o >= 0; o-- {
		s.frontier = append(s.frontier, job{state: children[o], parent: i, ordinal: o, ply: j.ply + 1})
	}
	return i
}

func (s *maxnSearch) score(j job) error {
	s.metrics.AddLeaf()
	scores := s.evaluate(j.state)
	if j.ply == 1 {
		s.children[j.ordinal] = s.table.insert(newResolved(j.state, j.parent, j.ordinal, j.ply, scores))
	}
	return s.propagate(j.parent, j.ordinal, scores)
}

// propagate folds a resolved child into its parent and keeps walking up for
// as long as that resolves the parent too.
func (s *maxnSearch) propagate(parent, ordinal int, scores []float64) error {
	for {
		n := s.table.get(parent)
		if n == nil {
			return fmt.Errorf("%w: node %d", ErrOrphaned, parent)
		}
		s.metrics.AddPropagation()
		if !n.absorb(ordinal, scores) || parent == s.root {
			return nil
		}
		next := n.parent
		scores, ordinal = n.scores, n.ordinal
		if n.ply > retainedPlies {
			s.table.evict(parent)
		}
		parent = next
	}
}
