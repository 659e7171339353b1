package engine

import (
	"auction/agent"
	"auction/experiments/metrics"
	"auction/game"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// MaxMoves bounds a single game. A full game takes far fewer.
const MaxMoves = 10000

// Engine plays one game with one agent per seat.
type Engine struct {
	table  *Table
	agents []agent.Agent
}

func New(agents []agent.Agent, startingPlayer int, rng *rand.Rand) *Engine {
	return NewFromState(agents, game.NewGameState(len(agents), startingPlayer, rng))
}

func NewFromState(agents []agent.Agent, state *game.GameState) *Engine {
	if len(agents) != state.NumPlayers() {
		panic("number of agents does not match number of players")
	}
	return &Engine{
		table:  NewTableFromState(state),
		agents: agents,
	}
}

func (e *Engine) Table() *Table {
	return e.table
}

// Run plays the game to the end and returns its metrics. The game stops early
// with an error if ctx is cancelled or an agent fails.
func (e *Engine) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		ID:             uuid.NewString(),
		StartingPlayer: e.table.state.CurrentPlayer,
		StartTime:      time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	log.Info().Msgf("game %s: player %d is starting", gameMetric.ID, gameMetric.StartingPlayer)

	step := 1
	for !e.table.GameOver() {
		if err := ctx.Err(); err != nil {
			return gameMetric, moveMetrics, err
		}
		if step > MaxMoves {
			return gameMetric, moveMetrics, fmt.Errorf("game %s exceeded %d moves", gameMetric.ID, MaxMoves)
		}

		state := e.table.State()
		switch state.Phase {
		case game.BidPhase:
			player := state.CurrentPlayer
			a := e.agents[player]
			move, searchMetric, err := a.Bid(ctx, state)
			if err != nil {
				return gameMetric, moveMetrics, fmt.Errorf("agent %s failed to bid: %w", a.Name(), err)
			}
			if err := e.table.Bid(player, move); err != nil {
				return gameMetric, moveMetrics, fmt.Errorf("agent %s: %w", a.Name(), err)
			}
			moveMetrics = append(moveMetrics, metrics.MoveMetric{
				Step:         step,
				Round:        state.RoundNo,
				Player:       player,
				Phase:        game.BidPhase,
				Action:       move,
				SearchMetric: searchMetric,
			})
		case game.SellPhase:
			choices := make([]game.Action, len(e.agents))
			for p, a := range e.agents {
				offer, err := a.Sell(state, p)
				if err != nil {
					return gameMetric, moveMetrics, fmt.Errorf("agent %s failed to sell: %w", a.Name(), err)
				}
				choices[p] = offer
				moveMetrics = append(moveMetrics, metrics.MoveMetric{
					Step:   step,
					Round:  state.RoundNo,
					Player: p,
					Phase:  game.SellPhase,
					Action: offer,
				})
			}
			if err := e.table.Sell(choices); err != nil {
				return gameMetric, moveMetrics, err
			}
		}
		log.Debug().Msgf("game %s: step %d %s", gameMetric.ID, step, e.table.state.Encoding())
		step++
	}

	final := e.table.State()
	gameMetric.Winners = final.Winners()
	gameMetric.Tally = final.Tally()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step - 1

	log.Info().Msgf("game %s: winners %v with tally %v", gameMetric.ID, gameMetric.Winners, gameMetric.Tally)
	return gameMetric, moveMetrics, nil
}
