package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 54 * time.Second
	dialTimeout  = 10 * time.Second
)

var ErrNotConnected = errors.New("not connected")

// Client connects one user to a room and keeps a mirror of it
type Client struct {
	serverURL string
	room      string
	name      string
	clock     quartz.Clock
	logger    *log.Logger

	mu       sync.RWMutex
	onUpdate func()
	mirror   *Mirror
	sess     *session
}

// session is one websocket connection
type session struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Option configures a Client
type Option func(*Client)

// WithClock sets the clock driving keepalive pings
func WithClock(clock quartz.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// OnUpdate registers fn to run after every change to the mirror
func OnUpdate(fn func()) Option {
	return func(c *Client) {
		c.onUpdate = fn
	}
}

// NewClient creates a client for the given server, room and display name
func NewClient(serverURL, room, name string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		serverURL: serverURL,
		room:      room,
		name:      name,
		clock:     quartz.NewReal(),
		logger:    logger.WithPrefix("client"),
		mirror:    NewMirror(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Room returns the room the client joins
func (c *Client) Room() string {
	return c.room
}

// Name returns the current display name
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetOnUpdate replaces the update callback
func (c *Client) SetOnUpdate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// WebSocketURL converts a server address into its /ws endpoint
func WebSocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect dials the server and joins the room. Every connection starts
// from a fresh mirror.
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info("Connecting to server", "url", wsURL, "room", c.room)

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	sess := &session{
		conn: conn,
		send: make(chan *protocol.Message, 256),
	}
	sess.ctx, sess.cancel = context.WithCancel(context.Background())

	c.mu.Lock()
	if c.sess != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return errors.New("already connected")
	}
	c.sess = sess
	c.mirror = NewMirror(c.logger)
	c.mu.Unlock()

	go c.readPump(sess)
	go c.writePump(sess)

	c.mu.RLock()
	data := protocol.JoinData{Room: c.room, Name: c.name}
	c.mu.RUnlock()
	join, err := protocol.NewMessage(protocol.TypeJoin, data)
	if err != nil {
		return err
	}
	c.logger.Info("Connected to server")
	return c.SendMessage(join)
}

// Disconnect closes the connection
func (c *Client) Disconnect() error {
	c.mu.RLock()
	sess := c.sess
	c.mu.RUnlock()
	if sess != nil {
		c.close(sess)
	}
	return nil
}

func (c *Client) close(sess *session) {
	sess.closeOnce.Do(func() {
		sess.cancel()
		_ = sess.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		_ = sess.conn.Close()

		c.mu.Lock()
		if c.sess == sess {
			c.sess = nil
		}
		c.mu.Unlock()
		c.logger.Info("Disconnected from server")
		c.notify()
	})
}

// Done is closed when the current connection ends
func (c *Client) Done() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.sess.ctx.Done()
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess != nil
}

// View runs fn with the mirror. fn must not keep the mirror.
func (c *Client) View(fn func(*Mirror)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.mirror)
}

// Modify runs fn with exclusive access to the mirror, for local-only
// changes such as hand order
func (c *Client) Modify(fn func(*Mirror)) {
	c.mu.Lock()
	fn(c.mirror)
	c.mu.Unlock()
	c.notify()
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	sess := c.sess
	c.mu.RUnlock()
	if sess == nil {
		return ErrNotConnected
	}

	select {
	case sess.send <- msg:
		return nil
	case <-sess.ctx.Done():
		return ErrNotConnected
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Act builds an event from the mirror, checks it locally and sends it
func (c *Client) Act(build func(*Mirror) (protocol.Event, error)) error {
	var ev protocol.Event
	var err error
	c.View(func(m *Mirror) {
		ev, err = build(m)
		if err == nil {
			err = m.Check(ev)
		}
	})
	if err != nil {
		return err
	}
	return c.SendEvent(ev)
}

// SendEvent sends an event without checking it first
func (c *Client) SendEvent(ev protocol.Event) error {
	msg, err := protocol.NewEventMessage(ev)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Rename changes the display name
func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name required")
	}
	msg, err := protocol.NewMessage(protocol.TypeRename, protocol.RenameData{Name: name})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
	return c.SendMessage(msg)
}

// RequestReset asks the server for a fresh snapshot
func (c *Client) RequestReset() error {
	msg, err := protocol.NewMessage(protocol.TypeReset, nil)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

func (c *Client) notify() {
	c.mu.RLock()
	fn := c.onUpdate
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump(sess *session) {
	defer c.close(sess)

	for {
		var msg protocol.Message
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if sess.ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.logger.Debug("Received message", "type", msg.Type)

		c.mu.Lock()
		err := c.mirror.Handle(&msg)
		c.mu.Unlock()
		if err != nil {
			c.logger.Warn("Mirror out of sync, requesting reset", "type", msg.Type, "error", err)
			_ = c.RequestReset()
		}
		c.notify()
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump(sess *session) {
	ticker := c.clock.NewTicker(pingInterval, "client", "ping")
	defer ticker.Stop()

	for {
		select {
		case message := <-sess.send:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				_ = sess.conn.Close()
				return
			}

		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-sess.ctx.Done():
			return
		}
	}
}
