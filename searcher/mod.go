package searcher

import (
	"auction/experiments/metrics"
	"auction/game"
	"errors"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

var (
	ErrNotDecision = errors.New("search root is not a bid decision")
	ErrOrphaned    = errors.New("score table entry missing for parent")
	ErrAborted     = errors.New("search aborted")
)

// Entries this close to the root survive resolution so the per-action
// outcomes can be read after the search.
const retainedPlies = 2

// Scores closer than this are treated as equal when picking a child.
const tolerance = 1e-9

type Option func(s *settings)

type settings struct {
	horizon    int
	sampling   game.Sampling
	evaluate   game.Evaluate
	metrics    metrics.Collector
	seed       uint64
	leafBuffer int
}

// WithHorizon stops the search at the end of the given number of rounds past
// the root's.
func WithHorizon(rounds int) Option {
	return func(s *settings) {
		if rounds > 0 {
			s.horizon = rounds
		}
	}
}

func WithSampling(sampling game.Sampling) Option {
	return func(s *settings) {
		s.sampling = sampling
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *settings) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(s *settings) {
		s.metrics = metrics.NewCollector()
	}
}

func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithLeafBuffer sizes the channel between parallel workers and the leaf
// scorer.
func WithLeafBuffer(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.leafBuffer = size
		}
	}
}

func newSettings(options []Option) settings {
	s := settings{ // Default values
		horizon:    1,
		sampling:   game.Sampling{Mode: game.Exhaustive},
		evaluate:   game.EvaluateRound,
		metrics:    metrics.NewDummyCollector(),
		leafBuffer: 1024,
	}
	for _, option := range options {
		option(&s)
	}
	if s.sampling.Mode == game.Sampled && s.sampling.Samples <= 0 {
		panic("Must specify a positive sample count for sampled reveals")
	}
	return s
}

type Outcome struct {
	Action game.Action
	Scores []float64
}

// Result of one search. Outcomes follow the root's legal move order.
type Result struct {
	Action   game.Action
	Scores   []float64
	Outcomes []Outcome
	Metric   metrics.SearchMetric
}

// terminal marks where expansion stops: the end of round Round, or the
// transition into the sell phase.
type terminal struct {
	Round int
}

func (t terminal) leaf(s game.State) bool {
	return s.RoundOver() && (s.Round() >= t.Round || s.Final())
}

func checkRoot(root game.State) error {
	if root.RoundOver() || root.Final() {
		return ErrNotDecision
	}
	return nil
}

// bestOutcome picks the action whose outcome is highest for player, keeping
// the earliest on ties.
func bestOutcome(player int, outcomes []Outcome) game.Action {
	best := 0
	for i, o := range outcomes {
		if o.Scores[player] > outcomes[best].Scores[player]+tolerance {
			best = i
		}
	}
	return outcomes[best].Action
}

// chanceRNG seeds the reveal draws of a chance node from its encoding, so a
// node draws the same reveals whichever engine or goroutine expands it.
func chanceRNG(seed uint64, s game.State) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(s.Encoding()))
	return rand.New(rand.NewSource(seed ^ h.Sum64()))
}
