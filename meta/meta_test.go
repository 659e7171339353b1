package meta

import (
	"auction/game"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(missing)

		require.NoError(t, err)
		require.Equal(t, 3, cfg.Players)
		require.Equal(t, []int{1, 2, 4, 8}, cfg.Workers)
		require.Equal(t, "strength", cfg.Experiment)
		sampling, err := cfg.RevealSampling()
		require.NoError(t, err)
		require.Equal(t, game.Exhaustive, sampling.Mode)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("PLAYERS", "5")
		t.Setenv("WORKERS", "2,16")
		t.Setenv("SAMPLING", "sampled")
		t.Setenv("SAMPLES", "4")

		cfg, err := Load(missing)

		require.NoError(t, err)
		require.Equal(t, 5, cfg.Players)
		require.Equal(t, []int{2, 16}, cfg.Workers)
		sampling, err := cfg.RevealSampling()
		require.NoError(t, err)
		require.Equal(t, game.Sampling{Mode: game.Sampled, Samples: 4}, sampling)
	})

	t.Run("env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("GAMES=2\nCFR_ALTERNATING=true\n"), 0644))
		t.Cleanup(func() {
			os.Unsetenv("GAMES")
			os.Unsetenv("CFR_ALTERNATING")
		})

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 2, cfg.Games)
		require.True(t, cfg.Alternating)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("PLAYERS", "7")

		_, err := Load(missing)

		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Players:    4,
			Games:      1,
			Workers:    []int{1},
			Horizon:    1,
			Sampling:   "exhaustive",
			Samples:    1,
			Iterations: 1,
			LeafBuffer: 1,
		}
	}
	require.NoError(t, valid().Validate())

	for name, mutate := range map[string]func(c *Config){
		"players":    func(c *Config) { c.Players = 2 },
		"games":      func(c *Config) { c.Games = 0 },
		"coins":      func(c *Config) { c.Coins = -1 },
		"no workers": func(c *Config) { c.Workers = nil },
		"workers":    func(c *Config) { c.Workers = []int{4, 0} },
		"horizon":    func(c *Config) { c.Horizon = 0 },
		"sampling":   func(c *Config) { c.Sampling = "all" },
		"samples":    func(c *Config) { c.Samples = 0 },
		"iterations": func(c *Config) { c.Iterations = 0 },
		"leaf":       func(c *Config) { c.LeafBuffer = 0 },
	} {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			require.Error(t, c.Validate())
		})
	}
}
