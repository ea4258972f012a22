package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/justinabrahms/fogchess/internal/chess"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// seats are authenticated by token, not origin
		return true
	},
}

// GameUpdate is a message pushed to websocket clients.
type GameUpdate struct {
	GameID string      `json:"gameId"`
	Type   string      `json:"type"` // "view", "game_over"
	Data   interface{} `json:"data"`
}

// delivery targets an update at one side of a game, or both when side is
// chess.NoColor.
type delivery struct {
	update GameUpdate
	side   chess.Color
}

// Hub fans game updates out to the websocket clients seated at each game.
// A client only ever receives updates addressed to its own side.
type Hub struct {
	gameClients map[string]map[*Client]bool

	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// Client is one websocket connection bound to a seat.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	side   chess.Color
}

func NewHub() *Hub {
	return &Hub{
		gameClients: make(map[string]map[*Client]bool),
		broadcast:   make(chan delivery, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for gameID, clients := range h.gameClients {
				for client := range clients {
					close(client.send)
				}
				delete(h.gameClients, gameID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.gameClients[client.gameID] == nil {
				h.gameClients[client.gameID] = make(map[*Client]bool)
			}
			h.gameClients[client.gameID][client] = true
			h.mu.Unlock()

			log.Info().
				Str("gameID", client.gameID).
				Str("side", client.side.String()).
				Msg("Client connected to game")

		case client := <-h.unregister:
			if h.drop(client) {
				log.Info().
					Str("gameID", client.gameID).
					Str("side", client.side.String()).
					Msg("Client disconnected from game")
			}

		case d := <-h.broadcast:
			message, err := json.Marshal(d.update)
			if err != nil {
				log.Error().Err(err).Msg("Failed to marshal game update")
				continue
			}

			h.mu.RLock()
			var slow []*Client
			for client := range h.gameClients[d.update.GameID] {
				if d.side != chess.NoColor && client.side != d.side {
					continue
				}
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				log.Warn().Str("gameID", client.gameID).Str("side", client.side.String()).Msg("Client send buffer full, disconnecting")
				h.drop(client)
			}
		}
	}
}

// drop removes client and closes its send channel once.
func (h *Hub) drop(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.gameClients[client.gameID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.gameClients, client.gameID)
	}
	return true
}

// SendToSide queues an update for the clients seated as side.
func (h *Hub) SendToSide(gameID string, side chess.Color, update GameUpdate) {
	update.GameID = gameID
	h.enqueue(delivery{update: update, side: side})
}

// BroadcastToGame queues an update for every client of the game.
func (h *Hub) BroadcastToGame(gameID string, update GameUpdate) {
	update.GameID = gameID
	h.enqueue(delivery{update: update, side: chess.NoColor})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	default:
		log.Warn().Str("gameID", d.update.GameID).Msg("Broadcast channel full, dropping update")
	}
}

// Clients reports how many connections are seated at a game.
func (h *Hub) Clients(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gameClients[gameID])
}

// PublishMove pushes each side its own view after a move, then the result
// to everyone if the game ended.
func (h *Hub) PublishMove(gameID string, out MoveOutcome) {
	h.SendToSide(gameID, chess.White, GameUpdate{Type: "view", Data: out.White})
	h.SendToSide(gameID, chess.Black, GameUpdate{Type: "view", Data: out.Black})

	if out.Result != nil && out.Result.GameOver {
		h.BroadcastToGame(gameID, GameUpdate{
			Type: "game_over",
			Data: map[string]interface{}{
				"winner": out.Result.Winner,
				"status": out.Result.Status,
			},
		})
	}
}

// WebSocketHandler upgrades a seated player's connection. The seat token
// comes from the token query parameter since browsers cannot set headers
// on websocket requests.
func (s *Service) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	table, seat, ok := s.seat(w, r, r.URL.Query().Get("token"))
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: table.ID,
		side:   seat.Side,
	}

	// the current view goes out first so the client never starts blind
	initial, err := json.Marshal(GameUpdate{GameID: table.ID, Type: "view", Data: table.View(seat.Side)})
	if err == nil {
		client.send <- initial
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// moves go through the HTTP API; inbound frames only keep the
	// connection alive
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("gameID", c.gameID).Msg("WebSocket error")
			}
			break
		}
	}
}

// writePump sends one frame per update so each frame is a complete JSON
// document.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
