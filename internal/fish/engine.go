package fish

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/randutil"
)

// Engine owns one game state and applies transitions to it. An Engine is
// not safe for concurrent use; the room that owns it serializes access.
type Engine struct {
	state         State
	authoritative bool
	rng           *rand.Rand

	// pending holds a mirror's copy of declared owners until the server
	// reports whether they were correct.
	pending map[deck.Card]Seat
}

// Option configures an Engine during creation
type Option func(*Engine)

// WithRand sets the generator used to shuffle deals
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// New creates an authoritative engine in the waiting phase
func New(rules Rules, opts ...Option) *Engine {
	e := &Engine{
		state:         newState(rules),
		authoritative: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = randutil.NewSeeds(nil).Next()
	}
	return e
}

// Restore creates a mirror engine from a (usually redacted) snapshot
func Restore(s State, opts ...Option) (*Engine, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	e := New(s.Rules, opts...)
	e.state = s.Clone()
	e.authoritative = false
	return e, nil
}

// Authoritative reports whether the engine holds every hand
func (e *Engine) Authoritative() bool {
	return e.authoritative
}

// State returns a deep copy of the current state
func (e *Engine) State() State {
	return e.state.Clone()
}

func (e *Engine) Phase() Phase {
	return e.state.Phase
}

func (e *Engine) Rules() Rules {
	return e.state.Rules
}

func (e *Engine) Host() (UserID, bool) {
	return e.state.Host.Get()
}

func (e *Engine) Asker() (Seat, bool) {
	return e.state.Asker.Get()
}

func (e *Engine) Askee() (Seat, bool) {
	return e.state.Askee.Get()
}

func (e *Engine) Declarer() (Seat, bool) {
	return e.state.Declarer.Get()
}

func (e *Engine) Winner() (Team, bool) {
	return e.state.Winner.Get()
}

// GameOver reports whether the last game ended with a winner
func (e *Engine) GameOver() bool {
	return e.state.Winner.IsSome()
}

// HasUser reports whether the user is on the engine's roster
func (e *Engine) HasUser(u UserID) bool {
	return slices.Contains(e.state.Users, u)
}

// SeatOf returns the seat the user occupies
func (e *Engine) SeatOf(u UserID) (Seat, bool) {
	for seat, occupant := range e.state.UserOf {
		if occupant.Is(u) {
			return Seat(seat), true
		}
	}
	return 0, false
}

// UserAt returns the user seated at seat
func (e *Engine) UserAt(seat Seat) (UserID, bool) {
	if !e.validSeat(seat) {
		return "", false
	}
	return e.state.UserOf[seat].Get()
}

// NumSeated counts occupied seats
func (e *Engine) NumSeated() int {
	n := 0
	for _, occupant := range e.state.UserOf {
		if occupant.IsSome() {
			n++
		}
	}
	return n
}

// ScoreOf counts the groups scored by a team
func (e *Engine) ScoreOf(t Team) int {
	n := 0
	for _, scorer := range e.state.DeclarerOf {
		if scorer.Is(t) {
			n++
		}
	}
	return n
}

// HandSize returns a seat's hand size when it is visible
func (e *Engine) HandSize(seat Seat) (int, bool) {
	if !e.validSeat(seat) {
		return 0, false
	}
	return e.state.HandSize[seat].Get()
}

// Hand returns a copy of a seat's hand when it is visible
func (e *Engine) Hand(seat Seat) *deck.Hand {
	if !e.validSeat(seat) {
		return nil
	}
	return e.state.HandOf[seat].Clone()
}

// OwnSeat returns the viewer's seat on a redacted engine
func (e *Engine) OwnSeat() (Seat, bool) {
	viewer, ok := e.state.Viewer.Get()
	if !ok {
		return 0, false
	}
	return e.SeatOf(viewer)
}

// OwnHand returns a copy of the viewer's hand on a redacted engine
func (e *Engine) OwnHand() *deck.Hand {
	seat, ok := e.OwnSeat()
	if !ok {
		return nil
	}
	return e.Hand(seat)
}

func (e *Engine) validSeat(seat Seat) bool {
	return seat >= 0 && int(seat) < len(e.state.UserOf)
}

func (e *Engine) checkSeat(seat Seat) error {
	if !e.validSeat(seat) {
		return fmt.Errorf("%w: %d", ErrBadSeat, seat)
	}
	return nil
}

// knownEmpty reports whether a seat's hand size is visible and zero
func (e *Engine) knownEmpty(seat Seat) bool {
	return e.state.HandSize[seat].Is(0)
}

// AddUser adds a user to the roster. The first user, or any user joining a
// room without a host, becomes host.
func (e *Engine) AddUser(u UserID) error {
	if e.HasUser(u) {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, u)
	}
	e.state.Users = append(e.state.Users, u)
	if !e.state.Host.IsSome() {
		e.setHost(Some(u))
	}
	return nil
}

// RemoveUser drops a user and frees their seat. A departing host hands over
// to the lowest seated user, or to nobody.
func (e *Engine) RemoveUser(u UserID) error {
	if !e.HasUser(u) {
		return fmt.Errorf("%w: %s", ErrUnknownUser, u)
	}
	e.state.Users = slices.DeleteFunc(e.state.Users, func(x UserID) bool { return x == u })
	if seat, ok := e.SeatOf(u); ok {
		e.state.UserOf[seat] = None[UserID]()
	}
	if e.state.Host.Is(u) {
		next := None[UserID]()
		for _, occupant := range e.state.UserOf {
			if occupant.IsSome() {
				next = occupant
				break
			}
		}
		e.setHost(next)
	}
	return nil
}

// SeatAt sits a user down at an empty seat. It is allowed in any phase.
func (e *Engine) SeatAt(u UserID, seat Seat) error {
	if !e.HasUser(u) {
		return fmt.Errorf("%w: %s", ErrUnknownUser, u)
	}
	if err := e.checkSeat(seat); err != nil {
		return err
	}
	if occupant, ok := e.state.UserOf[seat].Get(); ok {
		return fmt.Errorf("%w: seat %d held by %s", ErrSeatTaken, seat, occupant)
	}
	if current, ok := e.SeatOf(u); ok {
		return fmt.Errorf("%w: %s at seat %d", ErrAlreadySeated, u, current)
	}
	e.state.UserOf[seat] = Some(u)
	if !e.state.Host.IsSome() {
		e.state.Host = Some(u)
	}
	e.rotateSeats()
	return nil
}

// UnseatAt empties a seat
func (e *Engine) UnseatAt(seat Seat) error {
	if err := e.checkSeat(seat); err != nil {
		return err
	}
	if !e.state.UserOf[seat].IsSome() {
		return fmt.Errorf("%w: %d", ErrSeatEmpty, seat)
	}
	e.state.UserOf[seat] = None[UserID]()
	return nil
}

// SetRules replaces the rules between games
func (e *Engine) SetRules(u UserID, rules Rules) error {
	if e.state.Phase != PhaseWait {
		return fmt.Errorf("%w: rules change during %s", ErrWrongPhase, e.state.Phase)
	}
	if err := e.checkHost(u); err != nil {
		return err
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	for seat := rules.NumPlayers; seat < len(e.state.UserOf); seat++ {
		if occupant, ok := e.state.UserOf[seat].Get(); ok {
			return fmt.Errorf("%w: %s still seated at %d", ErrInvalidRules, occupant, seat)
		}
	}

	if rules.NumPlayers != e.state.Rules.NumPlayers {
		// A new table size starts from a clean table.
		resized := newState(rules)
		resized.Users = e.state.Users
		resized.Host = e.state.Host
		resized.Viewer = e.state.Viewer
		copy(resized.UserOf, e.state.UserOf)
		e.state = resized
		e.pending = nil
		e.rotateSeats()
		return nil
	}
	e.state.Rules = rules
	return nil
}

func (e *Engine) checkHost(u UserID) error {
	if !e.state.Host.Is(u) {
		return fmt.Errorf("%w: %s", ErrNotHost, u)
	}
	return nil
}

func (e *Engine) setHost(host Opt[UserID]) {
	e.state.Host = host
	e.rotateSeats()
}

// rotateSeats reorders Seats to start at the host's seat. Without a seated
// host the previous order stands.
func (e *Engine) rotateSeats() {
	n := len(e.state.UserOf)
	host, ok := e.state.Host.Get()
	if !ok {
		return
	}
	start, seated := e.SeatOf(host)
	if !seated {
		return
	}
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat((int(start) + i) % n)
	}
	e.state.Seats = seats
}
