package game

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/combin"
)

func (gs *GameState) deck() []int {
	if gs.Phase == BidPhase {
		return gs.RemainingProperties
	}
	return gs.RemainingChecks
}

// Reveal draws the top batch of the current phase's deck into the auction
// pool.
func (gs *GameState) Reveal() *GameState {
	gs.checkRevealable()
	n := gs.NumPlayers()
	top := len(gs.deck()) - n
	indices := make([]int, n)
	for i := range indices {
		indices[i] = top + i
	}
	return gs.reveal(indices)
}

// RevealPermutations enumerates chance outcomes of the next reveal: every
// batch the deck can produce, or sampling.Samples independently drawn
// batches. rng is only used when sampling.
func (gs *GameState) RevealPermutations(sampling Sampling, rng *rand.Rand) []*GameState {
	gs.checkRevealable()
	n := gs.NumPlayers()
	size := len(gs.deck())

	if sampling.Mode == Sampled {
		if sampling.Samples <= 0 {
			panic(fmt.Sprintf("sampled reveal needs a positive sample count, got %d", sampling.Samples))
		}
		outcomes := make([]*GameState, 0, sampling.Samples)
		for i := 0; i < sampling.Samples; i++ {
			outcomes = append(outcomes, gs.reveal(rng.Perm(size)[:n]))
		}
		return outcomes
	}

	// Batches follow the lexicographic order of their deck indices.
	gen := combin.NewCombinationGenerator(size, n)
	indices := make([]int, n)
	outcomes := make([]*GameState, 0, combin.Binomial(size, n))
	for gen.Next() {
		outcomes = append(outcomes, gs.reveal(gen.Combination(indices)))
	}
	return outcomes
}

func (gs *GameState) checkRevealable() {
	if !gs.RoundOver() {
		panic("reveal with a live auction pool")
	}
	if len(gs.deck()) < gs.NumPlayers() {
		panic(fmt.Sprintf("%s deck exhausted", gs.Phase))
	}
}

// reveal moves the deck cards at indices into the pool.
func (gs *GameState) reveal(indices []int) *GameState {
	next := gs.Copy()
	deck := next.deck()
	taken := make([]bool, len(deck))
	pool := make([]int, 0, len(indices))
	for _, i := range indices {
		taken[i] = true
		pool = append(pool, deck[i])
	}
	rest := make([]int, 0, len(deck)-len(indices))
	for i, card := range deck {
		if !taken[i] {
			rest = append(rest, card)
		}
	}
	slices.SortFunc(pool, func(a, b int) int { return cmp.Compare(b, a) })

	if next.Phase == BidPhase {
		next.RemainingProperties = rest
	} else {
		next.RemainingChecks = rest
		clear(next.ActiveBids)
	}
	next.AuctionPool = pool
	next.PathEncoding += separator + "R" + joinValues(pool)
	return next
}
