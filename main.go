package main

import (
	"auction/experiments"
	"auction/meta"
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := meta.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msgf("invalid log level %q", cfg.LogLevel)
	}
	zerolog.SetGlobalLevel(level)

	exp, err := experiments.ByName(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build experiment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir, err := experiments.Run(ctx, cfg, exp, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msgf("%s experiment failed", exp.Name)
	}
	log.Info().Msgf("records written to %s", dir)
}
