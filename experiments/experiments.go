package experiments

import (
	"auction/agent"
	"auction/cfr"
	"auction/engine"
	"auction/experiments/metrics"
	"auction/game"
	"auction/meta"
	"auction/searcher"
	"context"
	"fmt"
	"io"

	"github.com/idsulik/go-collections/v3/queue"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/exp/rand"
)

const (
	KindRandom   = "random"
	KindMaxN     = "maxn"
	KindParallel = "parallel"
	KindCFR      = "cfr"
)

// Experiment is a set of matchups, each listing one agent config per seat.
type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	Matchups [][]metrics.AgentConfig
}

// ByName builds the experiment cfg.Experiment names.
func ByName(cfg *meta.Config) (Experiment, error) {
	switch cfg.Experiment {
	case "strength":
		return Strength(cfg)
	case "throughput":
		return Throughput(cfg)
	case "equilibrium":
		return Equilibrium(cfg)
	}
	return Experiment{}, fmt.Errorf("unknown experiment %q", cfg.Experiment)
}

// Strength seats each search agent against random baselines.
func Strength(cfg *meta.Config) (Experiment, error) {
	sampling, err := cfg.RevealSampling()
	if err != nil {
		return Experiment{}, err
	}
	baseline := metrics.AgentConfig{ID: 0, Kind: KindRandom}
	configs := []metrics.AgentConfig{
		baseline,
		{ID: 1, Kind: KindMaxN, Workers: 1, Horizon: cfg.Horizon, Sampling: sampling, Samples: cfg.Samples},
	}
	for _, w := range cfg.Workers {
		configs = append(configs, metrics.AgentConfig{
			ID:       len(configs),
			Kind:     KindParallel,
			Workers:  w,
			Horizon:  cfg.Horizon,
			Sampling: sampling,
			Samples:  cfg.Samples,
		})
	}

	matchUps := [][]metrics.AgentConfig{}
	for _, config := range configs[1:] {
		seats := []metrics.AgentConfig{config}
		for len(seats) < cfg.Players {
			seats = append(seats, baseline)
		}
		matchUps = append(matchUps, seats)
	}
	return Experiment{Name: "strength", Configs: configs, Matchups: matchUps}, nil
}

// Equilibrium seats a CFR+ seller against sampled best response sellers, and
// the other way round. Both bid with the sequential search.
func Equilibrium(cfg *meta.Config) (Experiment, error) {
	sampling, err := cfg.RevealSampling()
	if err != nil {
		return Experiment{}, err
	}
	greedy := metrics.AgentConfig{ID: 0, Kind: KindMaxN, Workers: 1, Horizon: cfg.Horizon, Sampling: sampling, Samples: cfg.Samples}
	solver := metrics.AgentConfig{ID: 1, Kind: KindCFR, Workers: 1, Horizon: cfg.Horizon, Sampling: sampling, Iterations: cfg.Iterations}

	matchUps := [][]metrics.AgentConfig{}
	for _, pair := range [][2]metrics.AgentConfig{{solver, greedy}, {greedy, solver}} {
		seats := []metrics.AgentConfig{pair[0]}
		for len(seats) < cfg.Players {
			seats = append(seats, pair[1])
		}
		matchUps = append(matchUps, seats)
	}
	return Experiment{Name: "equilibrium", Configs: []metrics.AgentConfig{greedy, solver}, Matchups: matchUps}, nil
}

// Run plays every matchup cfg.Games times and writes the records under
// cfg.OutputDir. The starting seat rotates between games. It returns the
// directory holding the records.
func Run(ctx context.Context, cfg *meta.Config, exp Experiment, progress io.Writer) (string, error) {
	writer, err := metrics.NewWriter(cfg.OutputDir, exp.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	err = writer.WriteAgentConfigs(exp.Configs)
	if err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}

	log.Info().Msgf("starting %s experiment...", exp.Name)
	bar := progressbar.NewOptions(len(exp.Matchups)*cfg.Games,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(exp.Name),
		progressbar.OptionShowCount(),
	)

	schedule := queue.New[scheduledGame](len(exp.Matchups) * cfg.Games)
	for mi := range exp.Matchups {
		for i := 0; i < cfg.Games; i++ {
			schedule.Enqueue(scheduledGame{matchup: mi, game: i})
		}
	}

	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	for {
		g, ok := schedule.Dequeue()
		if !ok {
			break
		}
		matchup := exp.Matchups[g.matchup]
		seed := cfg.Seed + uint64(len(gameRecords))
		gameMetric, moveMetrics, err := runGame(ctx, cfg, matchup, g.game%len(matchup), seed)
		if err != nil {
			return "", fmt.Errorf("matchup %d game %d: %w", g.matchup+1, g.game+1, err)
		}

		gameRecords = append(gameRecords, metrics.GameRecord{
			Matchup:    g.matchup + 1,
			Agents:     configIDs(matchup),
			GameMetric: gameMetric,
		})
		for _, mm := range moveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       gameMetric.ID,
				MoveMetric: mm,
			})
		}
		_ = bar.Add(1)
		if g.game == cfg.Games-1 {
			log.Info().Msgf("completed matchup %d of %d", g.matchup+1, len(exp.Matchups))
		}
	}
	_ = bar.Finish()
	log.Info().Msgf("completed %s experiment", exp.Name)

	err = writer.WriteGameRecords(gameRecords)
	if err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	err = writer.WriteMoveRecords(moveRecords)
	if err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored records in %s", writer.Dir())
	return writer.Dir(), nil
}

type scheduledGame struct {
	matchup int
	game    int
}

func configIDs(matchup []metrics.AgentConfig) []int {
	ids := make([]int, len(matchup))
	for i, c := range matchup {
		ids[i] = c.ID
	}
	return ids
}

func runGame(ctx context.Context, cfg *meta.Config, matchup []metrics.AgentConfig, startingPlayer int, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	state := game.NewGameState(len(matchup), startingPlayer, rand.New(rand.NewSource(seed)))
	if cfg.Coins > 0 {
		for p := range state.Coins {
			state.Coins[p] = cfg.Coins
		}
	}
	agents := newAgents(cfg, matchup, seed, newSolver(cfg, seed))
	return engine.NewFromState(agents, state).Run(ctx)
}

// newSolver returns the CFR+ solver shared by every CFR seat of one game, so
// a sale solved for one seat is reused by the others.
func newSolver(cfg *meta.Config, seed uint64) *cfr.Solver {
	options := []cfr.Option{}
	if cfg.Alternating {
		options = append(options, cfr.WithAlternating())
	}
	return cfr.NewSolver(rand.New(rand.NewSource(seed)), options...)
}

func newAgents(cfg *meta.Config, matchup []metrics.AgentConfig, seed uint64, solver *cfr.Solver) []agent.Agent {
	agents := make([]agent.Agent, len(matchup))
	for p, config := range matchup {
		agents[p] = newAgent(cfg, config, seed+uint64(p)+1, solver)
	}
	return agents
}

func newAgent(cfg *meta.Config, config metrics.AgentConfig, seed uint64, solver *cfr.Solver) agent.Agent {
	rng := rand.New(rand.NewSource(seed))
	name := fmt.Sprintf("%s-%d", config.Kind, config.ID)
	options := []searcher.Option{
		searcher.WithHorizon(config.Horizon),
		searcher.WithSampling(config.Sampling),
		searcher.WithSeed(seed),
		searcher.WithLeafBuffer(cfg.LeafBuffer),
		searcher.WithMetrics(),
	}

	switch config.Kind {
	case KindRandom:
		return agent.NewRandom(rng)
	case KindMaxN:
		return agent.NewSearch(name, agent.Sequential(searcher.NewMaxN(options...)), rng, config.Samples)
	case KindParallel:
		return agent.NewSearch(name, searcher.NewParallel(config.Workers, options...), rng, config.Samples)
	case KindCFR:
		return agent.NewEquilibrium(name, agent.Sequential(searcher.NewMaxN(options...)), solver, config.Iterations, rng)
	}
	panic(fmt.Sprintf("unknown agent kind %q", config.Kind))
}
