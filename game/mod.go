package game

import "golang.org/x/exp/rand"

// Action is a bid increment during the bid phase (0 folds) or the face value
// of a property offered during the sell phase.
type Action int

const Fold Action = 0

type RevealMode int

const (
	Exhaustive RevealMode = iota
	Sampled
)

func (m RevealMode) String() string {
	switch m {
	case Exhaustive:
		return "exhaustive"
	case Sampled:
		return "sampled"
	default:
		return "unknown"
	}
}

// Sampling selects how chance outcomes are enumerated. Samples is ignored for
// exhaustive enumeration.
type Sampling struct {
	Mode    RevealMode
	Samples int
}

// State is the view of a position the search engines need. Implementations
// must be immutable: Play and Outcomes always return new states.
type State interface {
	Player() int
	NumPlayers() int
	Round() int
	// RoundOver reports that the auction pool is exhausted and the next
	// position is decided by a reveal.
	RoundOver() bool
	// Final reports that no bidding remains under any horizon.
	Final() bool
	LegalMoves() []Action
	Play(Action) State
	Outcomes(sampling Sampling, rng *rand.Rand) []State
	Encoding() string
}

// Evaluate scores a position with one value per player. Values are relative:
// higher is better for that player.
type Evaluate func(State) []float64
