package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/fogchess/internal/chess"
	"github.com/justinabrahms/fogchess/internal/config"
	"github.com/justinabrahms/fogchess/internal/duel"
)

func main() {
	var showHelp bool
	var configPath string
	var games int
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to a config file")
	flag.IntVar(&games, "games", 1, "Number of games to referee before exiting (0 for no limit)")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(level)
	if cfg.Development.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rule, err := cfg.FogRule()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid fog rule")
	}
	startFEN := cfg.Game.StartFEN
	if startFEN == "" {
		startFEN = chess.StartingFEN
	}

	srv := &duel.Server{
		WhiteAddr: cfg.Duel.WhiteAddr,
		BlackAddr: cfg.Duel.BlackAddr,
		MaxGames:  games,
		NewGame: func() (*chess.Game, error) {
			return chess.NewGameFromFEN(startFEN, chess.WithLineOfSight(rule))
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("white", srv.WhiteAddr).
		Str("black", srv.BlackAddr).
		Str("fogRule", rule.String()).
		Msg("Starting duel server")

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatal().Err(err).Msg("Duel server failed")
	}
	log.Info().Msg("Duel server exited")
}

func showHelpMessage() {
	fmt.Println(`FogChess Duel

DESCRIPTION:
    Referees fog of war chess between two plain TCP clients. White connects
    to the white address, Black to the black address. Each player is sent
    their fogged board ('#' marks squares they cannot see) and types moves
    such as e2e4. Capturing the king wins.

USAGE:
    fogchess-duel [OPTIONS]

OPTIONS:
    -h, --help       Show this help message
    -config PATH     Read configuration from PATH
    -games N         Games to referee before exiting, 0 for no limit (default 1)

CONFIGURATION:
    duel:
      white_addr: ":8001"
      black_addr: ":8002"
    game:
      fog_rule: lichess   # or strict

EXAMPLES:
    fogchess-duel &
    nc localhost 8001   # White
    nc localhost 8002   # Black`)
}
