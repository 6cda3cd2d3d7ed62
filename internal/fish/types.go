package fish

import (
	"fmt"
)

// UserID identifies a connected user within a room
type UserID string

// Seat is an index into the table, 0 through NumPlayers-1
type Seat int

// Team is one of the two sides. Even seats are team A and odd seats team B.
type Team int

const (
	TeamA Team = iota
	TeamB
)

// TeamOf returns the team a seat plays for
func TeamOf(s Seat) Team {
	return Team(s % 2)
}

// Other returns the opposing team
func (t Team) Other() Team {
	return 1 - t
}

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	default:
		return fmt.Sprintf("Team(%d)", int(t))
	}
}

// Phase is the current step of the game state machine
type Phase int

const (
	PhaseWait Phase = iota
	PhaseAsk
	PhaseAnswer
	PhaseDeclare
	PhasePass
)

var phaseNames = []string{"wait", "ask", "answer", "declare", "pass"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return enumText("phase", phaseNames, int(p))
}

func (p *Phase) UnmarshalText(text []byte) error {
	v, err := enumParse("phase", phaseNames, text)
	if err != nil {
		return err
	}
	*p = Phase(v)
	return nil
}

// Response records the outcome of the most recent ask or declare
type Response int

const (
	ResponseNone Response = iota
	ResponseGoodAsk
	ResponseBadAsk
	ResponseGoodDeclare
	ResponseBadDeclare
)

var responseNames = []string{"none", "good_ask", "bad_ask", "good_declare", "bad_declare"}

func (r Response) String() string {
	if r < 0 || int(r) >= len(responseNames) {
		return fmt.Sprintf("Response(%d)", int(r))
	}
	return responseNames[r]
}

func (r Response) MarshalText() ([]byte, error) {
	return enumText("response", responseNames, int(r))
}

func (r *Response) UnmarshalText(text []byte) error {
	v, err := enumParse("response", responseNames, text)
	if err != nil {
		return err
	}
	*r = Response(v)
	return nil
}

func enumText(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s %d", kind, v)
	}
	return []byte(names[v]), nil
}

func enumParse(kind string, names []string, text []byte) (int, error) {
	for i, name := range names {
		if name == string(text) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, text)
}
