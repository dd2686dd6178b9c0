package server

import (
	"encoding/json"
	"net/http"
	"time"

	"emittr/connect4/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

type wsClient struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
	server    *Server
}

type inbound struct {
	Type   string `json:"type"`
	Column *int   `json:"column"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS streams a session's events to a renderer and accepts moves for
// the side to move.
func (s *Server) handleWS(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.manager.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrSessionNotFound.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	client := &wsClient{
		sessionID: id,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		server:    s,
	}
	// The snapshot and the registration happen under the manager lock, so
	// the first frame is the state and every later event is newer.
	attached := s.manager.With(id, func(view game.SessionView) {
		client.sendJSON(gin.H{"type": "state", "game": view})
		s.register(client)
	})
	if !attached {
		client.sendJSON(gin.H{"type": "error", "message": game.ErrSessionNotFound.Error()})
		close(client.send)
		client.writePump()
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) register(c *wsClient) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	set, ok := s.clients[c.sessionID]
	if !ok {
		set = make(map[*wsClient]struct{})
		s.clients[c.sessionID] = set
	}
	set[c] = struct{}{}
}

func (s *Server) unregister(c *wsClient) {
	s.connMu.Lock()
	if set, ok := s.clients[c.sessionID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(s.clients, c.sessionID)
		}
	}
	close(c.send)
	s.connMu.Unlock()
	c.conn.Close()
}

// broadcast never blocks: a client whose buffer is full misses the event.
func (s *Server) broadcast(sessionID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("encode event", "err", err)
		return
	}
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	for c := range s.clients[sessionID] {
		select {
		case c.send <- data:
		default:
			s.logger.Warn("websocket client lagging, event dropped", "session", sessionID)
		}
	}
}

func (c *wsClient) writePump() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *wsClient) readPump() {
	defer c.server.unregister(c)
	s := c.server

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(gin.H{"type": "error", "message": "malformed message"})
			continue
		}
		switch msg.Type {
		case "move":
			if msg.Column == nil {
				c.sendJSON(gin.H{"type": "error", "message": "column required"})
				continue
			}
			if _, err := s.manager.HandleMove(c.sessionID, *msg.Column); err != nil {
				c.sendJSON(gin.H{"type": "error", "message": err.Error()})
			}
		case "state":
			if view, ok := s.manager.Get(c.sessionID); ok {
				c.sendJSON(gin.H{"type": "state", "game": view})
			}
		default:
			c.sendJSON(gin.H{"type": "error", "message": "unknown message type " + msg.Type})
		}
	}
}

func (c *wsClient) sendJSON(v any) {
	data, _ := json.Marshal(v)
	select {
	case c.send <- data:
	default:
	}
}
