package searcher

import (
	"auction/game"
	"math"
	"slices"
)

// scoreNode is a score table entry for an expanded position.
type scoreNode struct {
	state     game.State
	parent    int // -1 at the root
	ordinal   int // Position among the parent's children
	ply       int
	player    int
	chance    bool
	scores    []float64
	best      int // Ordinal of the child the scores were taken from
	remaining int
	averaged  int
}

func newScoreNode(state game.State, parent, ordinal, ply int, chance bool, children int) *scoreNode {
	scores := make([]float64, state.NumPlayers())
	if !chance {
		for i := range scores {
			scores[i] = math.Inf(-1)
		}
	}
	return &scoreNode{
		state:     state,
		parent:    parent,
		ordinal:   ordinal,
		ply:       ply,
		player:    state.Player(),
		chance:    chance,
		scores:    scores,
		best:      -1,
		remaining: children,
	}
}

// newResolved registers a node whose score is already known.
func newResolved(state game.State, parent, ordinal, ply int, scores []float64) *scoreNode {
	return &scoreNode{
		state:   state,
		parent:  parent,
		ordinal: ordinal,
		ply:     ply,
		player:  state.Player(),
		scores:  slices.Clone(scores),
		best:    -1,
	}
}

// absorb folds a resolved child into the node and reports whether that was
// the last child outstanding.
func (n *scoreNode) absorb(ordinal int, scores []float64) bool {
	if n.remaining <= 0 {
		panic("score folded into a resolved node")
	}
	if n.chance {
		n.averaged++
		k := float64(n.averaged)
		for i, v := range scores {
			n.scores[i] += (v - n.scores[i]) / k
		}
	} else if n.improves(ordinal, scores) {
		copy(n.scores, scores)
		n.best = ordinal
	}
	n.remaining--
	return n.remaining == 0
}

// improves reports whether a child beats the stored scores for the player to
// move. Equal scores go to the child enumerated first.
func (n *scoreNode) improves(ordinal int, scores []float64) bool {
	if n.best < 0 {
		return true
	}
	current, v := n.scores[n.player], scores[n.player]
	if v > current+tolerance {
		return true
	}
	return v >= current-tolerance && ordinal < n.best
}
