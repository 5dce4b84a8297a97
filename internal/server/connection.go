package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/toptrumps/internal/game"
)

// Connection represents a WebSocket connection to a client. It carries its
// own identity plus an optional player binding; the binding is transport
// state and is never required for game logic.
type Connection struct {
	id        uuid.UUID
	conn      *websocket.Conn
	send      chan *Message
	playerID  int
	roomCode  string
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:     uuid.New(),
		conn:   conn,
		send:   make(chan *Message, 256),
		server: server,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the connection's identity, distinct from any player binding.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer binds this connection to a player within a room
func (c *Connection) SetPlayer(roomCode string, playerID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = roomCode
	c.playerID = playerID
}

// GetPlayer returns the bound player id, 0 when unbound
func (c *Connection) GetPlayer() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetRoom returns the bound room code
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client. Undecodable
// payloads and unknown room codes are dropped without a reply.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Debug("Dropping malformed join-room", "error", err)
			return
		}
		c.handleJoinRoom(data)

	case MessageTypePlayRound:
		var data PlayRoundData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Debug("Dropping malformed play-round", "error", err)
			return
		}
		c.handlePlayRound(data)

	case MessageTypeNextRound:
		var data NextRoundData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.logger.Debug("Dropping malformed next-round", "error", err)
			return
		}
		c.handleNextRound(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	}, c.server.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// handleJoinRoom binds the connection to an already-seated player and
// rebroadcasts the room so every client sees the current seating.
func (c *Connection) handleJoinRoom(data JoinRoomData) {
	room, ok := c.server.rooms.GetRoom(data.Code)
	if !ok {
		c.logger.Debug("Dropping join-room for unknown room", "code", data.Code)
		return
	}
	if !room.HasPlayer(data.PlayerID) {
		c.logger.Debug("Dropping join-room for unseated player", "code", data.Code, "player", data.PlayerID)
		return
	}

	c.SetPlayer(room.Code(), data.PlayerID)
	room.RenamePlayer(data.PlayerID, data.Name)
	c.server.rooms.Touch(room)

	c.logger.Info("Connection bound to player", "room", room.Code(), "player", data.PlayerID)

	c.server.broadcastEvent(room.Code(), room.Snapshot())
	c.server.broadcastEvent(room.Code(), room.PlayerList())
}

func (c *Connection) handlePlayRound(data PlayRoundData) {
	room, ok := c.server.rooms.GetRoom(data.Code)
	if !ok {
		c.logger.Debug("Dropping play-round for unknown room", "code", data.Code)
		return
	}

	events := room.SelectStat(data.Stat)
	c.server.rooms.Touch(room)
	for _, event := range events {
		c.server.broadcastEvent(room.Code(), event)
	}
}

func (c *Connection) handleNextRound(data NextRoundData) {
	room, ok := c.server.rooms.GetRoom(data.Code)
	if !ok {
		c.logger.Debug("Dropping next-round for unknown room", "code", data.Code)
		return
	}

	events := room.Commit()
	c.server.rooms.Touch(room)
	for _, event := range events {
		c.server.broadcastEvent(room.Code(), event)
	}
}

// broadcastEvent wraps a game event in the wire envelope and fans it out to
// every connection in the room. Delivery happens strictly after the state
// transition that produced the event.
func (s *Server) broadcastEvent(code string, event game.Event) {
	msg, err := NewMessage(MessageType(event.EventType()), event, s.clock.Now())
	if err != nil {
		s.logger.Error("Failed to create event message", "error", err, "type", event.EventType())
		return
	}
	s.BroadcastToRoom(code, msg)
}
