package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/cjquines/cfish/internal/room"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outgoing messages buffered per connection before it is dropped
	sendBufferSize = 256

	// Time allowed for the room to accept a departing user
	leaveTimeout = 5 * time.Second

	maxNameLength = 32
)

var ErrConnectionClosed = errors.New("connection closed")

// connSettings are the transport knobs shared by every connection
type connSettings struct {
	maxMessageSize int64
	pingPeriod     time.Duration
	clock          quartz.Clock
}

// pongWait is how long the peer has to answer a ping
func (s connSettings) pongWait() time.Duration {
	return s.pingPeriod * 10 / 9
}

// Connection represents a WebSocket connection to one user
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	id        fish.UserID
	settings  connSettings
	router    *Router
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu   sync.RWMutex
	room *room.Room
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, id fish.UserID, router *Router, settings connSettings, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *protocol.Message, sendBufferSize),
		id:       id,
		settings: settings,
		router:   router,
		logger:   logger.WithPrefix("conn").With("user", id),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the user id assigned to the connection
func (c *Connection) ID() fish.UserID {
	return c.id
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection and leaves the joined room
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()

		if rm := c.Room(); rm != nil {
			ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
			defer cancel()
			if leaveErr := rm.Leave(ctx, c.id); leaveErr != nil && !errors.Is(leaveErr, room.ErrRoomClosed) {
				c.logger.Warn("Failed to leave room", "room", rm.ID(), "error", leaveErr)
			}
		}
	})
	return err
}

// Send queues a message for the client without blocking. A client whose
// buffer is full is disconnected.
func (c *Connection) Send(msg *protocol.Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		// Close blocks on the room, which may be the caller.
		go func() { _ = c.Close() }()
		return ErrConnectionClosed
	}
}

// Room returns the joined room, if any
func (c *Connection) Room() *room.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Connection) setRoom(rm *room.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = rm
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	pongWait := c.settings.pongWait()
	c.conn.SetReadLimit(c.settings.maxMessageSize)
	// Socket deadlines are checked against the wall clock by the net
	// poller, so they stay on time.Now; the injected clock only drives pings.
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(protocol.CodeInvalidMessage, "Malformed message")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := c.settings.clock.NewTicker(c.settings.pingPeriod, "conn", "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case protocol.TypeJoin:
		var data protocol.JoinData
		if err := msg.Decode(&data); err != nil {
			c.sendError(protocol.CodeInvalidMessage, "Failed to parse join data")
			return
		}
		c.handleJoin(data)

	case protocol.TypeRename:
		var data protocol.RenameData
		if err := msg.Decode(&data); err != nil {
			c.sendError(protocol.CodeInvalidMessage, "Failed to parse rename data")
			return
		}
		c.handleRename(data)

	case protocol.TypeReset:
		rm := c.Room()
		if rm == nil {
			c.sendError(protocol.CodeNotJoined, "Must join a room first")
			return
		}
		c.forward(rm.Reset(c.ctx, c.id))

	case protocol.TypeEvent:
		rm := c.Room()
		if rm == nil {
			c.sendError(protocol.CodeNotJoined, "Must join a room first")
			return
		}
		ev, err := msg.Event()
		if err != nil {
			c.sendError(protocol.CodeInvalidMessage, err.Error())
			return
		}
		if ev.Kind().ServerOnly() {
			c.sendError(protocol.CodeForbidden, string(ev.Kind())+" is sent by the server")
			return
		}
		c.forward(rm.Event(c.ctx, c.id, ev))

	default:
		c.sendError(protocol.CodeInvalidMessage, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleJoin(data protocol.JoinData) {
	if c.Room() != nil {
		c.sendError(protocol.CodeAlreadyJoined, "Already in a room")
		return
	}
	name := cleanName(data.Name)
	if name == "" {
		c.sendError(protocol.CodeInvalidMessage, "Name required")
		return
	}

	c.logger.Info("Join request", "room", data.Room, "name", name)
	rm, err := c.router.Join(c.ctx, data.Room, protocol.User{ID: c.id, Name: name}, c)
	switch {
	case errors.Is(err, ErrInvalidRoomID):
		c.sendError(protocol.CodeInvalidMessage, err.Error())
		return
	case errors.Is(err, ErrTooManyRooms):
		c.sendError(protocol.CodeRoomLimit, err.Error())
		return
	case errors.Is(err, room.ErrAlreadyJoined):
		c.sendError(protocol.CodeAlreadyJoined, err.Error())
		return
	case err != nil:
		c.sendError(protocol.CodeUnavailable, err.Error())
		return
	}

	c.setRoom(rm)
}

func (c *Connection) handleRename(data protocol.RenameData) {
	rm := c.Room()
	if rm == nil {
		c.sendError(protocol.CodeNotJoined, "Must join a room first")
		return
	}
	name := cleanName(data.Name)
	if name == "" {
		c.sendError(protocol.CodeInvalidMessage, "Name required")
		return
	}
	c.forward(rm.Rename(c.ctx, c.id, name))
}

// forward reports a failure to reach the room
func (c *Connection) forward(err error) {
	switch {
	case err == nil:
	case errors.Is(err, room.ErrRoomClosed):
		c.setRoom(nil)
		c.sendError(protocol.CodeUnavailable, "Room closed")
	default:
		c.sendError(protocol.CodeUnavailable, err.Error())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	_ = c.Send(protocol.NewErrorMessage(code, message))
}

// cleanName trims a display name and caps its length
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}
