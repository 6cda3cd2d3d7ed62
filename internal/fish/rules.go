package fish

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cjquines/cfish/internal/deck"
)

// MaxPlayers bounds the table size. The deck must split evenly, which leaves
// 2, 6 and 18 as the legal player counts.
const MaxPlayers = 18

// BluffRule controls whether a player may ask for a card they already hold
type BluffRule int

const (
	BluffNo BluffRule = iota
	BluffYes
)

// DeclareRule controls when a declaration may be started
type DeclareRule int

const (
	// DeclareDuringAsk allows any seated player to declare at any ask
	DeclareDuringAsk DeclareRule = iota
	// DeclareDuringTurn reserves declaring for the asker, unless the
	// asker has run out of cards
	DeclareDuringTurn
)

// HandSizeRule controls how much of other seats' hand sizes is visible
type HandSizeRule int

const (
	HandSizePublic HandSizeRule = iota
	// HandSizeSecret only reveals whether a hand is empty
	HandSizeSecret
)

// LogRule controls how much of the action history clients show
type LogRule int

const (
	LogLastAction LogRule = iota
	LogLastTwo
	LogEverything
)

var (
	bluffNames    = []string{"no", "yes"}
	declareNames  = []string{"during_ask", "during_turn"}
	handSizeNames = []string{"public", "secret"}
	logNames      = []string{"last_action", "last_two", "everything"}
)

func (r BluffRule) String() string    { return lookupName(bluffNames, int(r)) }
func (r DeclareRule) String() string  { return lookupName(declareNames, int(r)) }
func (r HandSizeRule) String() string { return lookupName(handSizeNames, int(r)) }
func (r LogRule) String() string      { return lookupName(logNames, int(r)) }

func (r BluffRule) MarshalText() ([]byte, error)    { return enumText("bluff rule", bluffNames, int(r)) }
func (r DeclareRule) MarshalText() ([]byte, error)  { return enumText("declare rule", declareNames, int(r)) }
func (r HandSizeRule) MarshalText() ([]byte, error) { return enumText("hand size rule", handSizeNames, int(r)) }
func (r LogRule) MarshalText() ([]byte, error)      { return enumText("log rule", logNames, int(r)) }

func (r *BluffRule) UnmarshalText(text []byte) error {
	v, err := enumParse("bluff rule", bluffNames, text)
	if err != nil {
		return err
	}
	*r = BluffRule(v)
	return nil
}

func (r *DeclareRule) UnmarshalText(text []byte) error {
	v, err := enumParse("declare rule", declareNames, text)
	if err != nil {
		return err
	}
	*r = DeclareRule(v)
	return nil
}

func (r *HandSizeRule) UnmarshalText(text []byte) error {
	v, err := enumParse("hand size rule", handSizeNames, text)
	if err != nil {
		return err
	}
	*r = HandSizeRule(v)
	return nil
}

func (r *LogRule) UnmarshalText(text []byte) error {
	v, err := enumParse("log rule", logNames, text)
	if err != nil {
		return err
	}
	*r = LogRule(v)
	return nil
}

// Entries returns how many log entries the rule shows, or -1 for all
func (r LogRule) Entries() int {
	switch r {
	case LogLastAction:
		return 1
	case LogLastTwo:
		return 2
	default:
		return -1
	}
}

func lookupName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return strconv.Itoa(v)
	}
	return names[v]
}

// Rules parameterizes one game
type Rules struct {
	NumPlayers int          `json:"numPlayers"`
	Bluff      BluffRule    `json:"bluff"`
	Declare    DeclareRule  `json:"declare"`
	HandSize   HandSizeRule `json:"handSize"`
	Log        LogRule      `json:"log"`
}

// DefaultRules returns the rules a new room starts with
func DefaultRules() Rules {
	return Rules{
		NumPlayers: 6,
		Bluff:      BluffNo,
		Declare:    DeclareDuringAsk,
		HandSize:   HandSizePublic,
		Log:        LogLastAction,
	}
}

// Validate checks the player count and that every enum is in range
func (r Rules) Validate() error {
	switch {
	case r.NumPlayers < 2 || r.NumPlayers > MaxPlayers:
		return fmt.Errorf("%w: numPlayers %d must be between 2 and %d", ErrInvalidRules, r.NumPlayers, MaxPlayers)
	case r.NumPlayers%2 != 0:
		return fmt.Errorf("%w: numPlayers %d must be even", ErrInvalidRules, r.NumPlayers)
	case deck.DeckSize%r.NumPlayers != 0:
		return fmt.Errorf("%w: %d cards cannot be dealt evenly to %d players", ErrInvalidRules, deck.DeckSize, r.NumPlayers)
	case r.Bluff < BluffNo || r.Bluff > BluffYes:
		return fmt.Errorf("%w: bluff rule %d", ErrInvalidRules, r.Bluff)
	case r.Declare < DeclareDuringAsk || r.Declare > DeclareDuringTurn:
		return fmt.Errorf("%w: declare rule %d", ErrInvalidRules, r.Declare)
	case r.HandSize < HandSizePublic || r.HandSize > HandSizeSecret:
		return fmt.Errorf("%w: hand size rule %d", ErrInvalidRules, r.HandSize)
	case r.Log < LogLastAction || r.Log > LogEverything:
		return fmt.Errorf("%w: log rule %d", ErrInvalidRules, r.Log)
	}
	return nil
}

// Set updates one rule from its textual key and value, as used by config
// files and the client command line. Keys are num_players, bluff, declare,
// hand_size and log.
func (r *Rules) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "num_players", "players":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: num_players %q", ErrUnknownRuleValue, value)
		}
		r.NumPlayers = n
		return nil
	case "bluff":
		return wrapRuleValue(r.Bluff.UnmarshalText([]byte(value)))
	case "declare":
		return wrapRuleValue(r.Declare.UnmarshalText([]byte(value)))
	case "hand_size":
		return wrapRuleValue(r.HandSize.UnmarshalText([]byte(value)))
	case "log":
		return wrapRuleValue(r.Log.UnmarshalText([]byte(value)))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRule, key)
	}
}

func wrapRuleValue(err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownRuleValue, err)
	}
	return nil
}

func (r Rules) String() string {
	return fmt.Sprintf("players=%d bluff=%s declare=%s hand_size=%s log=%s",
		r.NumPlayers, r.Bluff, r.Declare, r.HandSize, r.Log)
}
