package game

import (
	"math"

	"github.com/samber/lo"
)

// ValuePerProperty weighs a held property against a coin during bidding.
const ValuePerProperty = 0.5

// EvaluateRound scores a position at a round boundary. Bid phase values
// holdings plus coins priced against the properties still to come; sell phase
// values checks plus properties priced against the checks still to come.
// Scores are relative to the leader: trailing players get their (negative)
// gap over the table total and the leader gets the sum of those gaps negated.
// A finished game scores each player's share of the table.
func EvaluateRound(s State) []float64 {
	gs, ok := s.(*GameState)
	if !ok {
		panic("unexpected state type")
	}

	if gs.GameOver() {
		return share(lo.Map(gs.Tally(), func(v int, _ int) float64 { return float64(v) }))
	}

	var raw []float64
	if gs.Phase == BidPhase {
		raw = gs.bidScores()
	} else {
		raw = gs.sellScores()
	}
	return relative(raw)
}

func (gs *GameState) bidScores() []float64 {
	totalCoins := float64(lo.Sum(gs.Coins))
	valuePerCoin := 0.0
	if totalCoins > 0 {
		valuePerCoin = math.Max(ValuePerProperty*float64(lo.Sum(gs.RemainingProperties))/totalCoins, 1)
	}

	scores := make([]float64, gs.NumPlayers())
	for p := range scores {
		scores[p] = ValuePerProperty*float64(lo.Sum(gs.Properties[p])) + valuePerCoin*float64(gs.Coins[p])
	}
	return scores
}

func (gs *GameState) sellScores() []float64 {
	held := 0
	for _, props := range gs.Properties {
		held += lo.Sum(props)
	}
	checksPerProperty := 0.0
	if held > 0 {
		checksPerProperty = float64(lo.Sum(gs.RemainingChecks)) / float64(held)
	}

	scores := make([]float64, gs.NumPlayers())
	for p := range scores {
		scores[p] = float64(lo.Sum(gs.Checks[p])) +
			checksPerProperty*float64(lo.Sum(gs.Properties[p])) +
			float64(gs.Coins[p])
	}
	return scores
}

func share(scores []float64) []float64 {
	total := lo.Sum(scores)
	out := make([]float64, len(scores))
	if total == 0 {
		return out
	}
	for i, v := range scores {
		out[i] = v / total
	}
	return out
}

func relative(scores []float64) []float64 {
	total := lo.Sum(scores)
	out := make([]float64, len(scores))
	if total == 0 {
		return out
	}
	best := lo.Max(scores)
	advantage := 0.0
	for i, v := range scores {
		out[i] = (v - best) / total
		advantage -= out[i]
	}
	for i, v := range scores {
		if v == best {
			out[i] += advantage
		}
	}
	return out
}
