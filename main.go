// main.go
//
// Terminal driver for StudyWordle.
// Responsibilities:
//   - Load .env and configuration.
//   - Configure the global zerolog logger.
//   - Open the configured store and start a game session.
//   - Run the line-oriented console until EOF or :quit.
package main

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/studywordle/internal/config"
	"github.com/robalobadob/studywordle/internal/session"
	"github.com/robalobadob/studywordle/internal/store"
	"github.com/robalobadob/studywordle/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	setupLogging(cfg.Logging)

	if _, err := words.Defaults(); err != nil {
		log.Fatal().Err(err).Msg("failed to load default word list")
	}

	st, err := store.Open(cfg.Store.Driver, cfg.StoreTarget())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	if c, ok := st.(io.Closer); ok {
		defer c.Close()
	}

	opts := []session.Option{session.WithMaxAttempts(cfg.Game.MaxAttempts)}
	if cfg.Game.Seed != 0 {
		opts = append(opts, session.WithRand(rand.New(rand.NewPCG(cfg.Game.Seed, cfg.Game.Seed))))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(st, opts...)
	log.Info().Str("driver", cfg.Store.Driver).Msg("starting studywordle")
	if err := runConsole(ctx, s, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("console exited")
	}
}

// setupLogging writes logs to stderr so they never mix with the board.
func setupLogging(cfg config.LoggingConfig) {
	if lvl, err := zerolog.ParseLevel(cfg.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
