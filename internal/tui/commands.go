package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cjquines/cfish/internal/client"
	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
)

var ErrUsage = errors.New("usage")

// Verb names a command typed at the prompt
type Verb string

const (
	VerbSeat    Verb = "seat"
	VerbUnseat  Verb = "unseat"
	VerbStart   Verb = "start"
	VerbRules   Verb = "rules"
	VerbAsk     Verb = "ask"
	VerbAnswer  Verb = "answer"
	VerbInit    Verb = "init"
	VerbAssign  Verb = "assign"
	VerbDeclare Verb = "declare"
	VerbPass    Verb = "pass"
	VerbSort    Verb = "sort"
	VerbMove    Verb = "move"
	VerbName    Verb = "name"
	VerbReset   Verb = "reset"
	VerbHelp    Verb = "help"
	VerbQuit    Verb = "quit"
)

// Setting is one key=value pair of a rules command
type Setting struct {
	Key   string
	Value string
}

// Command is a parsed prompt line
type Command struct {
	Verb     Verb
	Seat     fish.Opt[fish.Seat]
	Card     deck.Card
	Group    deck.Group
	Owner    fish.Opt[fish.Seat]
	Owners   map[deck.Card]fish.Seat
	Settings []Setting
	Shuffle  bool
	// Response is nil for an answer left to the hand
	Response *bool
	From, To int
	Text     string
}

var usages = map[Verb]string{
	VerbSeat:    "seat N",
	VerbUnseat:  "unseat [N]",
	VerbStart:   "start [noshuffle]",
	VerbRules:   "rules key=value ...",
	VerbAsk:     "ask SEAT CARD",
	VerbAnswer:  "answer [yes|no]",
	VerbInit:    "init GROUP",
	VerbAssign:  "assign CARD SEAT|none",
	VerbDeclare: "declare [CARD=SEAT ...]",
	VerbPass:    "pass SEAT",
	VerbSort:    "sort [on|off]",
	VerbMove:    "move FROM TO",
	VerbName:    "name NAME",
	VerbReset:   "reset",
	VerbHelp:    "help",
	VerbQuit:    "quit",
}

var verbOrder = []Verb{
	VerbSeat, VerbUnseat, VerbStart, VerbRules, VerbAsk, VerbAnswer, VerbInit,
	VerbAssign, VerbDeclare, VerbPass, VerbSort, VerbMove, VerbName, VerbReset,
	VerbHelp, VerbQuit,
}

var aliases = map[string]Verb{
	"sit":   VerbSeat,
	"stand": VerbUnseat,
	"y":     VerbAnswer,
	"n":     VerbAnswer,
	"q":     VerbQuit,
	"exit":  VerbQuit,
	"?":     VerbHelp,
}

// Usage returns the syntax of a verb
func Usage(v Verb) string {
	return usages[v]
}

// HelpText lists every command
func HelpText() string {
	lines := make([]string, 0, len(verbOrder))
	for _, v := range verbOrder {
		lines = append(lines, usages[v])
	}
	return strings.Join(lines, " | ")
}

func usage(v Verb) error {
	return fmt.Errorf("%w: %s", ErrUsage, usages[v])
}

// ParseCommand parses one prompt line
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: type help for commands", ErrUsage)
	}
	word := strings.ToLower(fields[0])
	args := fields[1:]

	verb, ok := aliases[word]
	if !ok {
		verb = Verb(word)
	}
	if _, known := usages[verb]; !known {
		return Command{}, fmt.Errorf("unknown command %q: type help for commands", fields[0])
	}
	cmd := Command{Verb: verb}

	// y and n are shorthand answers
	switch word {
	case "y":
		args = []string{"yes"}
	case "n":
		args = []string{"no"}
	}

	switch verb {
	case VerbSeat, VerbPass:
		if len(args) != 1 {
			return cmd, usage(verb)
		}
		seat, err := parseSeat(args[0])
		if err != nil {
			return cmd, err
		}
		cmd.Seat = fish.Some(seat)

	case VerbUnseat:
		switch len(args) {
		case 0:
		case 1:
			seat, err := parseSeat(args[0])
			if err != nil {
				return cmd, err
			}
			cmd.Seat = fish.Some(seat)
		default:
			return cmd, usage(verb)
		}

	case VerbStart:
		cmd.Shuffle = true
		switch {
		case len(args) == 0:
		case len(args) == 1 && strings.EqualFold(args[0], "noshuffle"):
			cmd.Shuffle = false
		default:
			return cmd, usage(verb)
		}

	case VerbRules:
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok || key == "" || value == "" {
				return cmd, usage(verb)
			}
			cmd.Settings = append(cmd.Settings, Setting{Key: strings.ToLower(key), Value: strings.ToLower(value)})
		}

	case VerbAsk:
		if len(args) != 2 {
			return cmd, usage(verb)
		}
		seat, err := parseSeat(args[0])
		if err != nil {
			return cmd, err
		}
		card, err := deck.ParseCard(args[1])
		if err != nil {
			return cmd, err
		}
		cmd.Seat, cmd.Card = fish.Some(seat), card

	case VerbAnswer:
		switch len(args) {
		case 0:
		case 1:
			resp, err := parseYesNo(args[0])
			if err != nil {
				return cmd, usage(verb)
			}
			cmd.Response = &resp
		default:
			return cmd, usage(verb)
		}

	case VerbInit:
		if len(args) != 1 {
			return cmd, usage(verb)
		}
		group, err := deck.ParseGroup(strings.ToLower(args[0]))
		if err != nil {
			return cmd, err
		}
		cmd.Group = group

	case VerbAssign:
		if len(args) != 2 {
			return cmd, usage(verb)
		}
		card, err := deck.ParseCard(args[0])
		if err != nil {
			return cmd, err
		}
		cmd.Card = card
		if !strings.EqualFold(args[1], "none") {
			seat, err := parseSeat(args[1])
			if err != nil {
				return cmd, err
			}
			cmd.Owner = fish.Some(seat)
		}

	case VerbDeclare:
		if len(args) == 0 {
			break
		}
		cmd.Owners = make(map[deck.Card]fish.Seat, len(args))
		for _, arg := range args {
			cardText, seatText, ok := strings.Cut(arg, "=")
			if !ok {
				return cmd, usage(verb)
			}
			card, err := deck.ParseCard(cardText)
			if err != nil {
				return cmd, err
			}
			seat, err := parseSeat(seatText)
			if err != nil {
				return cmd, err
			}
			if _, dup := cmd.Owners[card]; dup {
				return cmd, fmt.Errorf("%s assigned twice", card)
			}
			cmd.Owners[card] = seat
		}

	case VerbSort:
		switch len(args) {
		case 0:
		case 1:
			on, err := parseOnOff(args[0])
			if err != nil {
				return cmd, usage(verb)
			}
			cmd.Response = &on
		default:
			return cmd, usage(verb)
		}

	case VerbMove:
		if len(args) != 2 {
			return cmd, usage(verb)
		}
		from, err1 := strconv.Atoi(args[0])
		to, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || from < 1 || to < 1 {
			return cmd, usage(verb)
		}
		// Positions are shown from 1.
		cmd.From, cmd.To = from-1, to-1

	case VerbName:
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if name == "" {
			return cmd, usage(verb)
		}
		cmd.Text = name

	case VerbReset, VerbHelp, VerbQuit:
		if len(args) != 0 {
			return cmd, usage(verb)
		}
	}
	return cmd, nil
}

func parseSeat(s string) (fish.Seat, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= fish.MaxPlayers {
		return 0, fmt.Errorf("invalid seat %q", s)
	}
	return fish.Seat(n), nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", s)
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// Intent turns a game command into an event using the mirror's view of the
// viewer. Commands that never reach the server return a nil event.
func (cmd Command) Intent(m *client.Mirror) (protocol.Event, error) {
	switch cmd.Verb {
	case VerbSeat:
		seat, _ := cmd.Seat.Get()
		return m.SeatAt(seat)
	case VerbUnseat:
		if seat, ok := cmd.Seat.Get(); ok {
			return m.UnseatAt(seat)
		}
		return m.Unseat()
	case VerbStart:
		return m.StartGame(cmd.Shuffle)
	case VerbRules:
		e := m.Engine()
		if e == nil {
			return nil, client.ErrNoState
		}
		rules := e.Rules()
		for _, s := range cmd.Settings {
			if err := rules.Set(s.Key, s.Value); err != nil {
				return nil, err
			}
		}
		return m.SetRules(rules)
	case VerbAsk:
		seat, _ := cmd.Seat.Get()
		return m.Ask(seat, cmd.Card)
	case VerbAnswer:
		if cmd.Response == nil {
			return m.HonestAnswer()
		}
		return m.Answer(*cmd.Response)
	case VerbInit:
		return m.InitDeclare(cmd.Group)
	case VerbAssign:
		return m.MoveCard(cmd.Card, cmd.Owner)
	case VerbDeclare:
		if cmd.Owners == nil {
			return m.DeclareTray()
		}
		return m.Declare(cmd.Owners)
	case VerbPass:
		seat, _ := cmd.Seat.Get()
		return m.Pass(seat)
	}
	return nil, nil
}

// IsGameAction reports whether the command produces an event
func (cmd Command) IsGameAction() bool {
	switch cmd.Verb {
	case VerbSeat, VerbUnseat, VerbStart, VerbRules, VerbAsk, VerbAnswer,
		VerbInit, VerbAssign, VerbDeclare, VerbPass:
		return true
	}
	return false
}
