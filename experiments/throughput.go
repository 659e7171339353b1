package experiments

import (
	"auction/experiments/metrics"
	"auction/meta"
)

// Throughput seats copies of one parallel agent at the table, one matchup per
// worker count, so move records compare search rates at equal strength.
func Throughput(cfg *meta.Config) (Experiment, error) {
	sampling, err := cfg.RevealSampling()
	if err != nil {
		return Experiment{}, err
	}
	configs := []metrics.AgentConfig{}
	matchUps := [][]metrics.AgentConfig{}
	for _, w := range cfg.Workers {
		config := metrics.AgentConfig{
			ID:       len(configs) + 1,
			Kind:     KindParallel,
			Workers:  w,
			Horizon:  cfg.Horizon,
			Sampling: sampling,
			Samples:  cfg.Samples,
		}
		configs = append(configs, config)

		seats := make([]metrics.AgentConfig, cfg.Players)
		for i := range seats {
			seats[i] = config
		}
		matchUps = append(matchUps, seats)
	}
	return Experiment{Name: "throughput", Configs: configs, Matchups: matchUps}, nil
}
