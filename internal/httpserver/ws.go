// internal/httpserver/ws.go
//
// Live play over a WebSocket, one connection per game.
// Inbound frames are game.Event JSON ({"type":"letter","letter":"a"}) or
// {"type":"ping"}. Every event is answered with either a "state" frame
// carrying the updated view or an "error" frame with the same codes the
// HTTP routes use.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wordle/apps/grid-server/internal/game"
	"github.com/robalobadob/wordle/apps/grid-server/internal/validity"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	sendBufferSize = 16

	// per-event store deadline
	eventTimeout = 5 * time.Second
)

const msgPing game.EventKind = "ping"

// Outbound frame types.
const (
	msgState = "state"
	msgError = "error"
	msgPong  = "pong"
)

type serverMsg struct {
	Type    string           `json:"type"`
	Classes []validity.Class `json:"classes,omitempty"`
	Game    *game.View       `json:"game,omitempty"`
	Code    string           `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// non-browser clients send no Origin
			o := r.Header.Get("Origin")
			return o == "" || o == s.opts.ClientOrigin
		},
	}
}

// handleWS upgrades GET /game/{id}/ws and runs the client until it disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		hlog.FromRequest(r).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	logger := hlog.FromRequest(r).With().Str("gameId", id).Logger()
	c := &wsClient{
		srv:    s,
		conn:   conn,
		gameID: id,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	logger.Info().Msg("websocket connected")

	view := g.Snapshot()
	c.push(serverMsg{Type: msgState, Game: &view})
	c.run()
	logger.Info().Msg("websocket closed")
}

// wsClient is one live connection.
type wsClient struct {
	srv    *Server
	conn   *websocket.Conn
	gameID string
	send   chan []byte
	done   chan struct{}
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

func (c *wsClient) run() {
	go c.writePump()
	c.readPump()
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
}

// push queues msg; a full buffer drops it.
func (c *wsClient) push(msg serverMsg) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("encode frame")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn().Msg("send buffer full, frame dropped")
	}
}

func (c *wsClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		c.handle(data)
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) handle(data []byte) {
	var ev game.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		c.push(serverMsg{Type: msgError, Code: "bad_json", Message: err.Error()})
		return
	}
	if ev.Kind == msgPing {
		c.push(serverMsg{Type: msgPong})
		return
	}

	ctx, cancel := context.WithTimeout(c.logger.WithContext(context.Background()), eventTimeout)
	defer cancel()

	res, err := c.srv.apply(ctx, c.gameID, ev)
	if err != nil {
		status, code := classify(err)
		msg := serverMsg{Type: msgError, Code: code, Message: err.Error()}
		if status == http.StatusInternalServerError {
			c.logger.Error().Err(err).Msg("websocket event failed")
			msg.Message = ""
		}
		c.push(msg)
		return
	}
	c.push(serverMsg{Type: msgState, Classes: res.Classes, Game: &res.Game})
}
