package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/fogchess/internal/auth"
	"github.com/justinabrahms/fogchess/internal/config"
	"github.com/justinabrahms/fogchess/internal/web"
)

func main() {
	var showHelp bool
	var configPath string
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.StringVar(&configPath, "config", "", "Path to a config file (default: ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg)

	if cfg.Auth.Secret == "" {
		log.Warn().Msg("auth.secret is empty; using a random secret, seat tokens will not survive a restart")
	}
	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token issuer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub()
	go hub.Run(ctx)

	service := web.NewService(cfg, issuer, hub)
	go pruneFinishedGames(ctx, service.Registry())

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      service.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("fogRule", cfg.Game.FogRule).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func setupLogging(cfg *config.Config) {
	level, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(level)
	if cfg.Development.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// finished games are kept for an hour so both players can fetch the result
func pruneFinishedGames(ctx context.Context, registry *web.Registry) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Prune(time.Now().Add(-time.Hour)); n > 0 {
				log.Info().Int("pruned", n).Msg("Pruned finished games")
			}
		}
	}
}

func showHelpMessage() {
	fmt.Println(`FogChess Server

DESCRIPTION:
    HTTP and WebSocket server for fog of war chess. Each player only sees
    the squares their own pieces can see; there is no check, and the game
    ends when a king is captured.

USAGE:
    fogchess-server [OPTIONS]

OPTIONS:
    -h, --help       Show this help message
    -config PATH     Read configuration from PATH

CONFIGURATION:
    Configured via config.yaml in the current directory or ./config, with
    FOGCHESS_* environment overrides (e.g. FOGCHESS_SERVER_PORT=9000).

    Example config.yaml:
        server:
          host: localhost
          port: 8080

        game:
          fog_rule: lichess   # or strict
          start_fen: ""       # empty means the standard start

        auth:
          secret: "change-me"
          token_ttl: 24h

        development:
          debug: true
          log_level: debug

API ENDPOINTS:
    GET  /api/health                 - Service health check
    POST /api/games                  - Create a game, returns one token per side
    GET  /api/games/{id}/view        - Fogged view for the token's side
    POST /api/games/{id}/moves       - Submit a move such as {"move": "e2e4"}
    GET  /api/games/{id}/ws?token=   - Live view updates over WebSocket

EXAMPLES:
    # Create a game with strict line of sight
    curl -X POST http://localhost:8080/api/games \
      -H "Content-Type: application/json" \
      -d '{"fogRule": "strict"}'

    # Move as White
    curl -X POST http://localhost:8080/api/games/$GAME/moves \
      -H "Authorization: Bearer $WHITE_TOKEN" \
      -d '{"move": "e2e4"}'

SEE ALSO:
    fogchess-duel(1), config.yaml(5)`)
}
