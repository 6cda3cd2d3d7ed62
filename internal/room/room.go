// Package room runs one game room: an authoritative engine plus the users
// connected to it. A single goroutine owns both, and everything else talks
// to it through its inbox.
package room

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
)

var (
	ErrRoomClosed    = errors.New("room closed")
	ErrAlreadyJoined = errors.New("user already joined")
)

const defaultInboxSize = 64

// Outbox delivers messages to one connected user. Send must not block.
type Outbox interface {
	Send(msg *protocol.Message) error
}

// Config holds the settings a room is created with
type Config struct {
	Rules     fish.Rules
	Rand      *rand.Rand
	InboxSize int
}

// Summary is a point-in-time description of a room
type Summary struct {
	ID         string     `json:"id"`
	Users      int        `json:"users"`
	Seated     int        `json:"seated"`
	NumPlayers int        `json:"num_players"`
	Phase      fish.Phase `json:"phase"`
	Host       string     `json:"host,omitempty"`
	GameOver   bool       `json:"game_over"`
}

type member struct {
	user protocol.User
	out  Outbox
}

// Room serializes every change to its engine and roster
type Room struct {
	id      string
	logger  *log.Logger
	engine  *fish.Engine
	members map[fish.UserID]*member
	order   []fish.UserID
	onClose func(*Room)
	// closing is set once the roster empties
	closing bool

	inbox    chan func()
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a room and starts its goroutine. onClose runs on the room
// goroutine once the last user has left or Stop was called.
func New(id string, cfg Config, logger *log.Logger, onClose func(*Room)) *Room {
	size := cfg.InboxSize
	if size <= 0 {
		size = defaultInboxSize
	}
	var opts []fish.Option
	if cfg.Rand != nil {
		opts = append(opts, fish.WithRand(cfg.Rand))
	}
	r := &Room{
		id:      id,
		logger:  logger.WithPrefix("room").With("room", id),
		engine:  fish.New(cfg.Rules, opts...),
		members: make(map[fish.UserID]*member),
		onClose: onClose,
		inbox:   make(chan func(), size),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	go r.run()
	return r
}

// ID returns the room identifier
func (r *Room) ID() string {
	return r.id
}

// Done is closed when the room has shut down
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Stop shuts the room down without waiting for users to leave
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Room) run() {
	defer func() {
		close(r.done)
		if r.onClose != nil {
			r.onClose(r)
		}
		r.logger.Info("Room closed")
	}()
	r.logger.Info("Room opened", "rules", r.engine.Rules())

	for {
		select {
		case fn := <-r.inbox:
			fn()
			if r.closing {
				return
			}
		case <-r.stop:
			return
		}
	}
}

// submit queues fn on the room goroutine
func (r *Room) submit(ctx context.Context, fn func()) error {
	select {
	case <-r.done:
		return ErrRoomClosed
	default:
	}
	select {
	case r.inbox <- fn:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn on the room goroutine and waits for its result
func call[T any](ctx context.Context, r *Room, fn func() (T, error)) (T, error) {
	var zero T
	type result struct {
		v   T
		err error
	}
	reply := make(chan result, 1)
	if err := r.submit(ctx, func() {
		v, err := fn()
		reply <- result{v, err}
	}); err != nil {
		return zero, err
	}
	select {
	case res := <-reply:
		return res.v, res.err
	case <-r.done:
		// The room may have answered just before closing.
		select {
		case res := <-reply:
			return res.v, res.err
		default:
			return zero, ErrRoomClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Join adds a user to the room. The user receives the roster, their own
// join and a redacted snapshot on out.
func (r *Room) Join(ctx context.Context, user protocol.User, out Outbox) error {
	_, err := call(ctx, r, func() (struct{}, error) {
		return struct{}{}, r.handleJoin(user, out)
	})
	return err
}

// Rename changes a user's display name
func (r *Room) Rename(ctx context.Context, id fish.UserID, name string) error {
	return r.submit(ctx, func() { r.handleRename(id, name) })
}

// Leave removes a user. The room closes once nobody is left.
func (r *Room) Leave(ctx context.Context, id fish.UserID) error {
	return r.submit(ctx, func() { r.handleLeave(id) })
}

// Event submits an event from a user. Rejections are reported to that
// user's outbox.
func (r *Room) Event(ctx context.Context, from fish.UserID, ev protocol.Event) error {
	return r.submit(ctx, func() { r.handleEvent(from, ev) })
}

// Reset sends the user a fresh redacted snapshot
func (r *Room) Reset(ctx context.Context, id fish.UserID) error {
	return r.submit(ctx, func() { r.sendReset(id) })
}

// Summary describes the room. It also acts as a barrier: every request
// submitted before it has been handled when it returns.
func (r *Room) Summary(ctx context.Context) (Summary, error) {
	return call(ctx, r, func() (Summary, error) {
		return r.summary(), nil
	})
}

// Snapshot returns the unredacted state
func (r *Room) Snapshot(ctx context.Context) (fish.State, error) {
	return call(ctx, r, func() (fish.State, error) {
		return r.engine.State(), nil
	})
}

func (r *Room) summary() Summary {
	host, _ := r.engine.Host()
	return Summary{
		ID:         r.id,
		Users:      len(r.members),
		Seated:     r.engine.NumSeated(),
		NumPlayers: r.engine.Rules().NumPlayers,
		Phase:      r.engine.Phase(),
		Host:       string(host),
		GameOver:   r.engine.GameOver(),
	}
}

func (r *Room) handleJoin(user protocol.User, out Outbox) error {
	if _, ok := r.members[user.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyJoined, user.ID)
	}
	if err := r.engine.AddUser(user.ID); err != nil {
		r.closing = len(r.members) == 0
		return err
	}

	roster := make([]protocol.User, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, r.members[id].user)
	}
	r.sendTo(out, protocol.TypeUsers, protocol.UsersData{Users: roster})

	r.members[user.ID] = &member{user: user, out: out}
	r.order = append(r.order, user.ID)
	r.broadcast(protocol.TypeJoin, protocol.JoinedData{User: user})
	// The joiner's snapshot already includes them.
	r.broadcastEventTo(protocol.AddUser{User: user.ID}, func(id fish.UserID) bool { return id != user.ID })
	r.sendReset(user.ID)

	r.logger.Info("User joined", "user", user.ID, "name", user.Name, "users", len(r.members))
	return nil
}

func (r *Room) handleRename(id fish.UserID, name string) {
	m, ok := r.members[id]
	if !ok {
		return
	}
	old := m.user.Name
	m.user.Name = name
	r.broadcast(protocol.TypeRename, protocol.RenamedData{User: id, Name: name})
	r.logger.Debug("User renamed", "user", id, "from", old, "to", name)
}

func (r *Room) handleLeave(id fish.UserID) {
	if _, ok := r.members[id]; !ok {
		return
	}
	delete(r.members, id)
	for i, u := range r.order {
		if u == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if err := r.engine.RemoveUser(id); err != nil {
		r.logger.Error("Engine refused departing user", "user", id, "error", err)
	}
	r.broadcast(protocol.TypeLeave, protocol.LeaveData{User: id})
	r.broadcastEvent(protocol.RemoveUser{User: id})
	r.logger.Info("User left", "user", id, "users", len(r.members))
	r.closing = len(r.members) == 0
}

func (r *Room) sendReset(id fish.UserID) {
	m, ok := r.members[id]
	if !ok {
		return
	}
	r.sendTo(m.out, protocol.TypeReset, protocol.ResetData{State: r.engine.RedactFor(id)})
}

func (r *Room) sendTo(out Outbox, typ protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		r.logger.Error("Failed to encode message", "type", typ, "error", err)
		return
	}
	r.deliver(out, msg)
}

func (r *Room) deliver(out Outbox, msg *protocol.Message) {
	if err := out.Send(msg); err != nil {
		r.logger.Debug("Dropped message", "type", msg.Type, "error", err)
	}
}

func (r *Room) broadcast(typ protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		r.logger.Error("Failed to encode message", "type", typ, "error", err)
		return
	}
	for _, id := range r.order {
		r.deliver(r.members[id].out, msg)
	}
}

func (r *Room) broadcastEvent(ev protocol.Event) {
	r.broadcastEventTo(ev, func(fish.UserID) bool { return true })
}

func (r *Room) broadcastEventTo(ev protocol.Event, include func(fish.UserID) bool) {
	msg, err := protocol.NewEventMessage(ev)
	if err != nil {
		r.logger.Error("Failed to encode event", "kind", ev.Kind(), "error", err)
		return
	}
	for _, id := range r.order {
		if include(id) {
			r.deliver(r.members[id].out, msg)
		}
	}
}

func (r *Room) sendError(id fish.UserID, code string, err error) {
	m, ok := r.members[id]
	if !ok {
		return
	}
	r.deliver(m.out, protocol.NewErrorMessage(code, err.Error()))
}
