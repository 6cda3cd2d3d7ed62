package client

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/cjquines/cfish/internal/replay"
)

var (
	ErrNoState       = errors.New("no snapshot received yet")
	ErrNotSeated     = errors.New("you are not seated")
	ErrNoDeclaration = errors.New("no declaration in progress")
)

// maxNotices bounds the roster and error log
const maxNotices = 50

// Mirror is one user's view of a room, built purely from server messages.
// It is not safe for concurrent use; Client guards its own mirror.
type Mirror struct {
	users   []protocol.User
	engine  *fish.Engine
	history []string
	notices []string
	tray    map[deck.Card]fish.Seat
	lastErr *protocol.ErrorData
	sorted  bool
	logger  *log.Logger
}

// NewMirror creates an empty mirror awaiting its first snapshot
func NewMirror(logger *log.Logger) *Mirror {
	return &Mirror{
		tray:   make(map[deck.Card]fish.Seat),
		logger: logger.WithPrefix("mirror"),
	}
}

// Ready reports whether a snapshot has arrived
func (m *Mirror) Ready() bool {
	return m.engine != nil
}

// Engine returns the mirror engine. It is nil until the first reset.
func (m *Mirror) Engine() *fish.Engine {
	return m.engine
}

// Self returns the viewer's user id
func (m *Mirror) Self() (fish.UserID, bool) {
	if m.engine == nil {
		return "", false
	}
	return m.engine.State().Viewer.Get()
}

// Users returns the roster in join order
func (m *Mirror) Users() []protocol.User {
	return slices.Clone(m.users)
}

// NameOf returns a user's display name, falling back to the id
func (m *Mirror) NameOf(id fish.UserID) string {
	for _, u := range m.users {
		if u.ID == id {
			return u.Name
		}
	}
	return string(id)
}

// SeatName names the user at seat, or the seat number when it is empty
func (m *Mirror) SeatName(seat fish.Seat) string {
	if m.engine != nil {
		if id, ok := m.engine.UserAt(seat); ok {
			return m.NameOf(id)
		}
	}
	return fmt.Sprintf("seat %d", seat)
}

// History returns game narration, trimmed by the room's log rule
func (m *Mirror) History() []string {
	return slices.Clone(m.history)
}

// Notices returns roster changes and errors, oldest first
func (m *Mirror) Notices() []string {
	return slices.Clone(m.notices)
}

// Tray returns the declaring team's in-progress owner assignment
func (m *Mirror) Tray() map[deck.Card]fish.Seat {
	return maps.Clone(m.tray)
}

// LastError returns the most recent error sent by the server
func (m *Mirror) LastError() *protocol.ErrorData {
	return m.lastErr
}

// Handle advances the mirror by one server message
func (m *Mirror) Handle(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.TypeUsers:
		var data protocol.UsersData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		m.users = slices.Clone(data.Users)

	case protocol.TypeJoin:
		var data protocol.JoinedData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		if !slices.ContainsFunc(m.users, func(u protocol.User) bool { return u.ID == data.User.ID }) {
			m.users = append(m.users, data.User)
		}
		m.notice("%s joined", data.User.Name)

	case protocol.TypeRename:
		var data protocol.RenamedData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		old := m.NameOf(data.User)
		for i := range m.users {
			if m.users[i].ID == data.User {
				m.users[i].Name = data.Name
			}
		}
		m.notice("%s is now %s", old, data.Name)

	case protocol.TypeLeave:
		var data protocol.LeaveData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		m.notice("%s left", m.NameOf(data.User))
		m.users = slices.DeleteFunc(m.users, func(u protocol.User) bool { return u.ID == data.User })

	case protocol.TypeReset:
		var data protocol.ResetData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		return m.reset(data.State)

	case protocol.TypeEvent:
		ev, err := msg.Event()
		if err != nil {
			return err
		}
		return m.apply(ev)

	case protocol.TypeError:
		var data protocol.ErrorData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		m.lastErr = &data
		m.notice("error: %s", data.Message)

	default:
		m.logger.Debug("Ignoring message", "type", msg.Type)
	}
	return nil
}

func (m *Mirror) reset(s fish.State) error {
	e, err := fish.Restore(s)
	if err != nil {
		return fmt.Errorf("bad snapshot: %w", err)
	}
	m.engine = e
	clear(m.tray)
	m.trimHistory()
	m.applySorted()
	return nil
}

// KeepSorted reports whether the viewer's hand is kept in card order
func (m *Mirror) KeepSorted() bool {
	return m.sorted
}

// SetKeepSorted toggles keeping the viewer's hand in card order. The choice
// survives resets and new deals.
func (m *Mirror) SetKeepSorted(sorted bool) {
	m.sorted = sorted
	m.applySorted()
}

// Reorder moves a card within the viewer's hand. It never reaches the
// server and clears keep-sorted.
func (m *Mirror) Reorder(from, to int) error {
	seat, err := m.ownSeat()
	if err != nil {
		return err
	}
	if err := m.engine.ReorderHand(seat, from, to); err != nil {
		return err
	}
	m.sorted = false
	return nil
}

func (m *Mirror) applySorted() {
	if m.engine == nil {
		return
	}
	if seat, ok := m.engine.OwnSeat(); ok {
		_ = m.engine.SetHandSorted(seat, m.sorted)
	}
}

func (m *Mirror) apply(ev protocol.Event) error {
	if m.engine == nil {
		return ErrNoState
	}

	if move, ok := ev.(protocol.DeclareMove); ok {
		if owner, ok := move.Owner.Get(); ok {
			m.tray[move.Card] = owner
		} else {
			delete(m.tray, move.Card)
		}
		return nil
	}

	// Narration needs the pre-transition state, e.g. who held the turn.
	line := narrate(m, ev)
	res, err := replay.Apply(m.engine, ev)
	if err != nil {
		// A mirror diverging from the server can only be fixed by a reset.
		m.logger.Error("Event did not apply", "kind", ev.Kind(), "error", err)
		return fmt.Errorf("apply %s: %w", ev.Kind(), err)
	}
	if res.Declare != nil && res.Declare.Resolved {
		line = narrateVerdict(m, *res.Declare)
	}

	switch ev.(type) {
	case protocol.InitDeclare, protocol.DeclareResponse, protocol.StartGame:
		clear(m.tray)
	case protocol.StartGameResponse:
		m.applySorted()
	}
	if line != "" {
		m.history = append(m.history, line)
		m.trimHistory()
	}
	m.lastErr = nil
	return nil
}

func (m *Mirror) trimHistory() {
	if m.engine == nil {
		return
	}
	if n := m.engine.Rules().Log.Entries(); n > 0 && len(m.history) > n {
		m.history = slices.Clone(m.history[len(m.history)-n:])
	}
}

func (m *Mirror) notice(format string, args ...any) {
	m.notices = append(m.notices, fmt.Sprintf(format, args...))
	if len(m.notices) > maxNotices {
		m.notices = slices.Clone(m.notices[len(m.notices)-maxNotices:])
	}
}

// Check reports whether the server would accept ev, judged on a copy of
// the mirror. Hidden information means a pass here can still be rejected.
func (m *Mirror) Check(ev protocol.Event) error {
	if m.engine == nil {
		return ErrNoState
	}
	if ev.Kind().ServerOnly() {
		return fmt.Errorf("%s is sent by the server", ev.Kind())
	}
	if move, ok := ev.(protocol.DeclareMove); ok {
		declarer, ok := m.engine.Declarer()
		if m.engine.Phase() != fish.PhaseDeclare || !ok || declarer != move.Declarer {
			return ErrNoDeclaration
		}
		seat, ok := m.engine.OwnSeat()
		if !ok || fish.TeamOf(seat) != fish.TeamOf(declarer) {
			return fish.ErrWrongTeam
		}
		return nil
	}
	probe, err := fish.Restore(m.engine.State())
	if err != nil {
		return err
	}
	_, err = replay.Apply(probe, ev)
	return err
}

func (m *Mirror) self() (fish.UserID, error) {
	id, ok := m.Self()
	if !ok {
		return "", ErrNoState
	}
	return id, nil
}

func (m *Mirror) ownSeat() (fish.Seat, error) {
	if m.engine == nil {
		return 0, ErrNoState
	}
	seat, ok := m.engine.OwnSeat()
	if !ok {
		return 0, ErrNotSeated
	}
	return seat, nil
}

// SeatAt builds the event that sits the viewer at seat
func (m *Mirror) SeatAt(seat fish.Seat) (protocol.Event, error) {
	id, err := m.self()
	if err != nil {
		return nil, err
	}
	return protocol.SeatAt{User: id, Seat: seat}, nil
}

// Unseat frees the viewer's own seat
func (m *Mirror) Unseat() (protocol.Event, error) {
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	return protocol.UnseatAt{Seat: seat}, nil
}

// UnseatAt frees any seat; only the host may free another user's seat
func (m *Mirror) UnseatAt(seat fish.Seat) (protocol.Event, error) {
	if m.engine == nil {
		return nil, ErrNoState
	}
	return protocol.UnseatAt{Seat: seat}, nil
}

func (m *Mirror) SetRules(rules fish.Rules) (protocol.Event, error) {
	id, err := m.self()
	if err != nil {
		return nil, err
	}
	return protocol.SetRules{User: id, Rules: rules}, nil
}

func (m *Mirror) StartGame(shuffle bool) (protocol.Event, error) {
	id, err := m.self()
	if err != nil {
		return nil, err
	}
	return protocol.StartGame{User: id, Shuffle: shuffle}, nil
}

func (m *Mirror) Ask(askee fish.Seat, card deck.Card) (protocol.Event, error) {
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	return protocol.Ask{Asker: seat, Askee: askee, Card: card}, nil
}

func (m *Mirror) Answer(response bool) (protocol.Event, error) {
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	return protocol.Answer{Askee: seat, Response: response}, nil
}

// HonestAnswer answers the pending ask truthfully from the viewer's hand
func (m *Mirror) HonestAnswer() (protocol.Event, error) {
	if m.engine == nil {
		return nil, ErrNoState
	}
	card, ok := m.engine.State().AskedCard.Get()
	if !ok {
		return nil, fish.ErrWrongPhase
	}
	hand := m.engine.OwnHand()
	return m.Answer(hand != nil && hand.Contains(card))
}

func (m *Mirror) InitDeclare(group deck.Group) (protocol.Event, error) {
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	return protocol.InitDeclare{Declarer: seat, Group: group}, nil
}

// MoveCard shares a tentative owner for one card with the viewer's team.
// A none owner clears the card.
func (m *Mirror) MoveCard(card deck.Card, owner fish.Opt[fish.Seat]) (protocol.Event, error) {
	if m.engine == nil {
		return nil, ErrNoState
	}
	declarer, ok := m.engine.Declarer()
	if !ok {
		return nil, ErrNoDeclaration
	}
	return protocol.DeclareMove{Declarer: declarer, Card: card, Owner: owner}, nil
}

func (m *Mirror) Declare(owners map[deck.Card]fish.Seat) (protocol.Event, error) {
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	return protocol.Declare{Declarer: seat, Owners: maps.Clone(owners)}, nil
}

// DeclareTray declares with the team's shared tray, filling the viewer's
// own cards
func (m *Mirror) DeclareTray() (protocol.Event, error) {
	if m.engine == nil {
		return nil, ErrNoState
	}
	group, ok := m.engine.State().DeclaredGroup.Get()
	if !ok {
		return nil, ErrNoDeclaration
	}
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	owners := maps.Clone(m.tray)
	if hand := m.engine.OwnHand(); hand != nil {
		for _, c := range hand.Cards() {
			if c.Group() == group {
				owners[c] = seat
			}
		}
	}
	return m.Declare(owners)
}

func (m *Mirror) Pass(next fish.Seat) (protocol.Event, error) {
	seat, err := m.ownSeat()
	if err != nil {
		return nil, err
	}
	return protocol.Pass{Passer: seat, Next: next}, nil
}
