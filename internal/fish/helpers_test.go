package fish

import (
	"fmt"
	"testing"

	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/randutil"
	"github.com/stretchr/testify/require"
)

func user(i int) UserID {
	return UserID(fmt.Sprintf("u%d", i))
}

// newTable returns an engine with users u0..uN-1 seated at their own index
func newTable(t *testing.T, rules Rules) *Engine {
	t.Helper()
	e := New(rules, WithRand(randutil.New(42)))
	for i := range rules.NumPlayers {
		require.NoError(t, e.AddUser(user(i)))
		require.NoError(t, e.SeatAt(user(i), Seat(i)))
	}
	return e
}

// startedTable deals the fixed deck order to a full six seat table
func startedTable(t *testing.T, rules Rules) *Engine {
	t.Helper()
	e := newTable(t, rules)
	_, err := e.StartGame(user(0), false)
	require.NoError(t, err)
	return e
}

func cards(s string) []deck.Card {
	return deck.MustParseCards(s)
}

func card(s string) deck.Card {
	return cards(s)[0]
}

// trueOwners reads the owner of every card in a group from the real hands
func trueOwners(e *Engine, g deck.Group) map[deck.Card]Seat {
	owners := make(map[deck.Card]Seat)
	for seat, hand := range e.state.HandOf {
		for _, c := range hand.Cards() {
			if c.Group() == g {
				owners[c] = Seat(seat)
			}
		}
	}
	return owners
}

// requireDeckIntact checks hands plus resolved groups form one full deck
func requireDeckIntact(t *testing.T, e *Engine) {
	t.Helper()
	seen := make(map[deck.Card]int)
	for _, hand := range e.state.HandOf {
		for _, c := range hand.Cards() {
			seen[c]++
		}
	}
	for g, scorer := range e.state.DeclarerOf {
		if scorer.IsSome() {
			for _, c := range deck.Group(g).Cards() {
				seen[c]++
			}
		}
	}
	require.Len(t, seen, deck.DeckSize)
	for c, n := range seen {
		require.Equal(t, 1, n, "card %s appears %d times", c, n)
	}
	for seat, hand := range e.state.HandOf {
		require.True(t, e.state.HandSize[seat].Is(hand.Len()), "seat %d size out of sync", seat)
	}
}
