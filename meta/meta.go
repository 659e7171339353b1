package meta

import (
	"auction/game"
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Experiment  string `env:"EXPERIMENT" env-default:"strength" env-description:"Experiment to run"`
	Players     int    `env:"PLAYERS" env-default:"3"`
	Games       int    `env:"GAMES" env-default:"10" env-description:"Games per matchup"`
	Coins       int    `env:"COINS" env-default:"0" env-description:"Starting coins per seat, 0 for the rule book amount"`
	Seed        uint64 `env:"SEED" env-default:"1"`
	Workers     []int  `env:"WORKERS" env-default:"1,2,4,8" env-separator:","`
	Horizon     int    `env:"HORIZON" env-default:"1" env-description:"Search depth in rounds"`
	Sampling    string `env:"SAMPLING" env-default:"exhaustive" env-description:"exhaustive or sampled"`
	Samples     int    `env:"SAMPLES" env-default:"8" env-description:"Reveals per chance node, and opposing offers per sale"`
	Iterations  int    `env:"CFR_ITERATIONS" env-default:"200"`
	Alternating bool   `env:"CFR_ALTERNATING" env-default:"false"`
	LeafBuffer  int    `env:"LEAF_BUFFER" env-default:"1024"`
	OutputDir   string `env:"OUTPUT_DIR" env-default:"experiments"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the config. A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Players < game.MinPlayers || c.Players > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d, got %d", game.MinPlayers, game.MaxPlayers, c.Players)
	}
	if c.Games <= 0 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.Coins < 0 {
		return fmt.Errorf("coins must not be negative, got %d", c.Coins)
	}
	if len(c.Workers) == 0 {
		return errors.New("at least one worker count is required")
	}
	for _, w := range c.Workers {
		if w <= 0 {
			return fmt.Errorf("worker counts must be positive, got %d", w)
		}
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	if _, err := c.RevealSampling(); err != nil {
		return err
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", c.Samples)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("cfr iterations must be positive, got %d", c.Iterations)
	}
	if c.LeafBuffer <= 0 {
		return fmt.Errorf("leaf buffer must be positive, got %d", c.LeafBuffer)
	}
	return nil
}

// RevealSampling maps the sampling setting to a game.Sampling.
func (c *Config) RevealSampling() (game.Sampling, error) {
	switch c.Sampling {
	case "exhaustive":
		return game.Sampling{Mode: game.Exhaustive}, nil
	case "sampled":
		return game.Sampling{Mode: game.Sampled, Samples: c.Samples}, nil
	}
	return game.Sampling{}, fmt.Errorf("unknown sampling mode %q", c.Sampling)
}
