package tui

import (
	"testing"

	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		input string
		want  Command
	}{
		{name: "seat", input: "seat 3", want: Command{Verb: VerbSeat, Seat: fish.Some[fish.Seat](3)}},
		{name: "sit alias", input: "sit 0", want: Command{Verb: VerbSeat, Seat: fish.Some[fish.Seat](0)}},
		{name: "unseat self", input: "unseat", want: Command{Verb: VerbUnseat}},
		{name: "unseat other", input: "UNSEAT 4", want: Command{Verb: VerbUnseat, Seat: fish.Some[fish.Seat](4)}},
		{name: "start", input: "start", want: Command{Verb: VerbStart, Shuffle: true}},
		{name: "start fixed", input: "start noshuffle", want: Command{Verb: VerbStart}},
		{name: "rules", input: "rules bluff=yes players=2", want: Command{Verb: VerbRules, Settings: []Setting{
			{Key: "bluff", Value: "yes"}, {Key: "players", Value: "2"},
		}}},
		{name: "ask", input: "ask 1 10h", want: Command{Verb: VerbAsk, Seat: fish.Some[fish.Seat](1), Card: deck.MustCard(deck.Hearts, deck.Ten)}},
		{name: "honest answer", input: "answer", want: Command{Verb: VerbAnswer}},
		{name: "answer yes", input: "answer yes", want: Command{Verb: VerbAnswer, Response: &yes}},
		{name: "answer n", input: "n", want: Command{Verb: VerbAnswer, Response: &no}},
		{name: "init", input: "init High_Clubs", want: Command{Verb: VerbInit, Group: deck.HighClubs}},
		{name: "assign", input: "assign BJ 2", want: Command{Verb: VerbAssign, Card: deck.MustCard(deck.Joker, deck.Black), Owner: fish.Some[fish.Seat](2)}},
		{name: "unassign", input: "assign 8h none", want: Command{Verb: VerbAssign, Card: deck.MustCard(deck.Hearts, deck.Eight)}},
		{name: "declare tray", input: "declare", want: Command{Verb: VerbDeclare}},
		{name: "declare owners", input: "declare 2c=0 3c=2", want: Command{Verb: VerbDeclare, Owners: map[deck.Card]fish.Seat{
			deck.MustCard(deck.Clubs, deck.Two):   0,
			deck.MustCard(deck.Clubs, deck.Three): 2,
		}}},
		{name: "pass", input: "pass 4", want: Command{Verb: VerbPass, Seat: fish.Some[fish.Seat](4)}},
		{name: "sort toggle", input: "sort", want: Command{Verb: VerbSort}},
		{name: "sort off", input: "sort off", want: Command{Verb: VerbSort, Response: &no}},
		{name: "move", input: "move 1 5", want: Command{Verb: VerbMove, From: 0, To: 4}},
		{name: "name keeps spaces", input: "name  Ada   Lovelace ", want: Command{Verb: VerbName, Text: "Ada   Lovelace"}},
		{name: "reset", input: "reset", want: Command{Verb: VerbReset}},
		{name: "quit alias", input: "q", want: Command{Verb: VerbQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		usage bool
	}{
		{name: "empty", input: "   ", usage: true},
		{name: "unknown verb", input: "fold"},
		{name: "seat missing", input: "seat", usage: true},
		{name: "seat not a number", input: "seat x"},
		{name: "seat out of range", input: "seat 18"},
		{name: "negative seat", input: "pass -1"},
		{name: "start junk", input: "start now", usage: true},
		{name: "rules without value", input: "rules bluff", usage: true},
		{name: "ask bad card", input: "ask 1 1Z"},
		{name: "ask missing card", input: "ask 1", usage: true},
		{name: "answer maybe", input: "answer maybe", usage: true},
		{name: "init unknown group", input: "init middle_clubs"},
		{name: "declare bad pair", input: "declare 2c", usage: true},
		{name: "declare twice", input: "declare 2c=0 2C=2"},
		{name: "move zero", input: "move 0 1", usage: true},
		{name: "name blank", input: "name", usage: true},
		{name: "quit args", input: "quit now", usage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.input)
			require.Error(t, err)
			if tt.usage {
				assert.ErrorIs(t, err, ErrUsage)
			}
		})
	}
}

func TestHelpTextListsEveryVerb(t *testing.T) {
	help := HelpText()
	for _, v := range verbOrder {
		assert.Contains(t, help, Usage(v))
	}
}
