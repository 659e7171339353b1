package cfr

import (
	"auction/game"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var ErrNotSale = errors.New("equilibrium root is not a revealed sale")

type Option func(s *Solver)

// WithAlternating renormalizes each player's strategy as soon as their
// regrets are updated, so later players in the same iteration respond to it.
func WithAlternating() Option {
	return func(s *Solver) {
		s.alternating = true
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *Solver) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

// Solver approximates an equilibrium of the simultaneous sale with CFR+.
// Tables persist per position, so solving the same position again continues
// from where the last call stopped. A Solver must not be shared between
// goroutines.
type Solver struct {
	rng         *rand.Rand
	evaluate    game.Evaluate
	alternating bool
	tables      map[string]*Table
}

func NewSolver(rng *rand.Rand, options ...Option) *Solver {
	s := &Solver{
		rng:      rng,
		evaluate: game.EvaluateRound,
		tables:   map[string]*Table{},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Table returns the table kept for an encoding, if any.
func (s *Solver) Table(encoding string) (*Table, bool) {
	t, ok := s.tables[encoding]
	return t, ok
}

func (s *Solver) Solve(root *game.GameState, iterations int) (*Table, error) {
	if root.Phase != game.SellPhase || root.RoundOver() {
		return nil, ErrNotSale
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	for p := 0; p < root.NumPlayers(); p++ {
		if len(root.Properties[p]) == 0 {
			return nil, fmt.Errorf("%w: player %d has nothing to sell", ErrNotSale, p)
		}
	}

	t, ok := s.tables[root.Encoding()]
	if !ok {
		t = newTable(root)
		s.tables[root.Encoding()] = t
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		s.iterate(root, t)
	}
	log.Debug().Msgf("cfr+ ran %d iterations (%d total) in %s", iterations, t.iterations, time.Since(start))
	return t, nil
}

func (s *Solver) iterate(root *game.GameState, t *Table) {
	players := root.NumPlayers()
	choices := make([]game.Action, players)
	for p := 0; p < players; p++ {
		payoffs := make([]float64, len(t.actions[p]))
		for a, action := range t.actions[p] {
			for q := range choices {
				if q == p {
					choices[q] = action
				} else {
					choices[q] = t.actions[q][Sample(t.strategy[q], s.rng.Float64())]
				}
			}
			payoffs[a] = s.evaluate(root.TransitionSell(choices))[p]
		}

		mixed := 0.0
		for a, v := range payoffs {
			mixed += t.strategy[p][a] * v
		}
		k := float64(t.iterations + 1)
		for a, v := range payoffs {
			t.regret[p][a] = max(t.regret[p][a]+max(v-mixed, 0), 0)
			t.average[p][a] += (t.strategy[p][a] - t.average[p][a]) / k
		}
		if s.alternating {
			t.renormalize(p)
		}
	}
	if !s.alternating {
		for p := 0; p < players; p++ {
			t.renormalize(p)
		}
	}
	t.iterations++
}
