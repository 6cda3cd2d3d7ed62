package fish

import (
	"fmt"
	"slices"

	"github.com/cjquines/cfish/internal/deck"
)

// State is the complete, serialisable snapshot of a game. Per-seat fields
// are slices indexed by seat; per-group fields are arrays indexed by group.
type State struct {
	Phase Phase `json:"phase"`
	Rules Rules `json:"rules"`

	Users  []UserID      `json:"users"`
	Host   Opt[UserID]   `json:"host"`
	Seats  []Seat        `json:"seats"`
	UserOf []Opt[UserID] `json:"userOf"`

	// HandOf holds nil for hands the viewer cannot see. HandSize is
	// absent when hidden by the hand size rule.
	HandOf   []*deck.Hand `json:"handOf"`
	HandSize []Opt[int]   `json:"handSize"`

	Asker        Opt[Seat]      `json:"asker"`
	Askee        Opt[Seat]      `json:"askee"`
	AskedCard    Opt[deck.Card] `json:"askedCard"`
	LastResponse Response       `json:"lastResponse"`

	Declarer      Opt[Seat]                 `json:"declarer"`
	DeclaredGroup Opt[deck.Group]           `json:"declaredGroup"`
	DeclarerOf    [deck.NumGroups]Opt[Team] `json:"declarerOf"`
	Winner        Opt[Team]                 `json:"winner"`
	Viewer        Opt[UserID]               `json:"viewer"`
}

// newState builds the empty waiting state for the given rules
func newState(rules Rules) State {
	n := max(rules.NumPlayers, 0)
	s := State{
		Phase:    PhaseWait,
		Rules:    rules,
		Users:    []UserID{},
		UserOf:   make([]Opt[UserID], n),
		HandOf:   make([]*deck.Hand, n),
		HandSize: make([]Opt[int], n),
	}
	s.Seats = identitySeats(n)
	return s
}

func identitySeats(n int) []Seat {
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat(i)
	}
	return seats
}

// Clone returns a deep copy sharing no memory with s
func (s State) Clone() State {
	c := s
	c.Users = slices.Clone(s.Users)
	c.Seats = slices.Clone(s.Seats)
	c.UserOf = slices.Clone(s.UserOf)
	c.HandSize = slices.Clone(s.HandSize)
	c.HandOf = make([]*deck.Hand, len(s.HandOf))
	for i, h := range s.HandOf {
		c.HandOf[i] = h.Clone()
	}
	return c
}

// validate checks the structural shape of a snapshot
func (s State) validate() error {
	n := s.Rules.NumPlayers
	switch {
	case len(s.UserOf) != n, len(s.HandOf) != n, len(s.HandSize) != n, len(s.Seats) != n:
		return malformed("per-seat fields must have %d entries", n)
	case s.Phase < PhaseWait || s.Phase > PhasePass:
		return malformed("phase %d", s.Phase)
	}
	seen := make(map[Seat]bool, n)
	for _, seat := range s.Seats {
		if seat < 0 || int(seat) >= n || seen[seat] {
			return malformed("seat order %v", s.Seats)
		}
		seen[seat] = true
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedState}, args...)...)
}
