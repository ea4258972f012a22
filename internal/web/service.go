package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/fogchess/internal/auth"
	"github.com/justinabrahms/fogchess/internal/chess"
	"github.com/justinabrahms/fogchess/internal/config"
)

type Service struct {
	registry *Registry
	issuer   *auth.Issuer
	hub      *Hub
	config   *config.Config
}

func NewService(cfg *config.Config, issuer *auth.Issuer, hub *Hub) *Service {
	return &Service{
		registry: NewRegistry(),
		issuer:   issuer,
		hub:      hub,
		config:   cfg,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Router builds the HTTP API with permissive CORS.
func (s *Service) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/games/{id}/view", s.GetViewHandler).Methods("GET", "OPTIONS")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST", "OPTIONS")
	api.HandleFunc("/games/{id}/ws", s.WebSocketHandler).Methods("GET")
	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  s.registry.Len(),
	})
}

type CreateGameRequest struct {
	FEN     string `json:"fen,omitempty"`
	FogRule string `json:"fogRule,omitempty"`
}

type CreateGameResponse struct {
	GameID     string `json:"gameId"`
	WhiteToken string `json:"whiteToken"`
	BlackToken string `json:"blackToken"`
	FogRule    string `json:"fogRule"`
	FEN        string `json:"fen"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rule, err := s.config.FogRule()
	if req.FogRule != "" {
		rule, err = chess.ParseLineOfSight(req.FogRule)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fen := req.FEN
	if fen == "" {
		fen = s.config.Game.StartFEN
	}
	if fen == "" {
		fen = chess.StartingFEN
	}

	game, err := chess.NewGameFromFEN(fen, chess.WithLineOfSight(rule))
	if err != nil {
		log.Debug().Err(err).Str("fen", fen).Msg("Rejected starting position")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table := s.registry.Add(game)
	resp := CreateGameResponse{
		GameID:  table.ID,
		FogRule: rule.String(),
		FEN:     fen,
	}
	if resp.WhiteToken, err = s.issuer.Issue(table.ID, chess.White); err == nil {
		resp.BlackToken, err = s.issuer.Issue(table.ID, chess.Black)
	}
	if err != nil {
		s.registry.Remove(table.ID)
		log.Error().Err(err).Str("gameID", table.ID).Msg("Failed to issue seat tokens")
		writeError(w, http.StatusInternalServerError, "Failed to create game")
		return
	}

	log.Info().Str("gameID", table.ID).Str("fogRule", rule.String()).Msg("Game created")
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) GetViewHandler(w http.ResponseWriter, r *http.Request) {
	table, seat, ok := s.seat(w, r, bearerToken(r))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, table.View(seat.Side))
}

type MakeMoveRequest struct {
	Move string `json:"move"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	table, seat, ok := s.seat(w, r, bearerToken(r))
	if !ok {
		return
	}

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := table.Play(seat.Side, req.Move)
	if err != nil {
		log.Debug().Err(err).Str("gameID", table.ID).Str("side", seat.Side.String()).Str("move", req.Move).Msg("Move rejected")
		writeError(w, moveErrorStatus(err), err.Error())
		return
	}

	event := log.Info().
		Str("gameID", table.ID).
		Str("side", seat.Side.String()).
		Str("move", out.Result.From+out.Result.To)
	if out.Result.Captured != "" {
		event = event.Str("captured", out.Result.Captured)
	}
	if out.Result.GameOver {
		event = event.Str("winner", out.Result.Winner)
	}
	event.Msg("Move played")

	s.hub.PublishMove(table.ID, out)
	writeJSON(w, http.StatusOK, out.Result)
}

// seat resolves the game in the route and the seat the token grants at it,
// writing the error response itself when either is missing.
func (s *Service) seat(w http.ResponseWriter, r *http.Request, token string) (*Table, auth.Seat, bool) {
	gameID := mux.Vars(r)["id"]
	table, err := s.registry.Get(gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found")
		return nil, auth.Seat{}, false
	}

	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing seat token")
		return nil, auth.Seat{}, false
	}
	seat, err := s.issuer.VerifyFor(token, gameID)
	switch {
	case errors.Is(err, auth.ErrWrongGame):
		writeError(w, http.StatusForbidden, err.Error())
		return nil, auth.Seat{}, false
	case err != nil:
		log.Debug().Err(err).Str("gameID", gameID).Msg("Rejected seat token")
		writeError(w, http.StatusUnauthorized, "Invalid seat token")
		return nil, auth.Seat{}, false
	}
	return table, seat, true
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func moveErrorStatus(err error) int {
	switch {
	case errors.Is(err, chess.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, chess.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, chess.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
