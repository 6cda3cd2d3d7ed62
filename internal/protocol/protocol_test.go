package protocol

import (
	"encoding/json"
	"testing"

	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEnvelope(t *testing.T) {
	t.Parallel()
	data, err := MarshalEvent(Ask{Asker: 0, Askee: 1, Card: deck.MustCard(deck.Clubs, deck.Three)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"ask","data":{"asker":0,"askee":1,"card":{"suit":"clubs","rank":3}}}`, string(data))

	ev, err := UnmarshalEvent(data)
	require.NoError(t, err)
	ask, ok := ev.(Ask)
	require.True(t, ok, "decoded %T", ev)
	assert.Equal(t, fish.Seat(1), ask.Askee)
}

func TestEventRoundTripEveryKind(t *testing.T) {
	t.Parallel()
	owners := make(map[deck.Card]fish.Seat)
	for _, c := range deck.HighClubs.Cards() {
		owners[c] = 3
	}
	sizes := []fish.Opt[int]{fish.Some(9), fish.None[int](), fish.Some(0)}
	rules := fish.DefaultRules()
	rules.HandSize = fish.HandSizeSecret

	events := []Event{
		AddUser{User: "ann"},
		RemoveUser{User: "ann"},
		SeatAt{User: "ann", Seat: 4},
		UnseatAt{Seat: 4},
		SetRules{User: "ann", Rules: rules},
		StartGame{User: "ann", Shuffle: true},
		StartGameResponse{Hand: deck.NewHand(deck.MustParseCards("2C BJ")...), Sizes: sizes},
		StartGameResponse{Sizes: sizes},
		Ask{Asker: 0, Askee: 3, Card: deck.MustCard(deck.Joker, deck.Red)},
		Answer{Askee: 3, Response: true},
		HandSizes{Sizes: sizes},
		InitDeclare{Declarer: 3, Group: deck.HighClubs},
		DeclareMove{Declarer: 3, Card: deck.MustCard(deck.Clubs, deck.Nine), Owner: fish.Some(fish.Seat(5))},
		DeclareMove{Declarer: 3, Card: deck.MustCard(deck.Clubs, deck.Nine)},
		Declare{Declarer: 3, Owners: owners},
		DeclareResponse{Correct: true, Sizes: sizes},
		Pass{Passer: 0, Next: 2},
	}
	seen := make(map[Kind]bool)
	for _, ev := range events {
		data, err := MarshalEvent(ev)
		require.NoError(t, err, "%T", ev)
		decoded, err := UnmarshalEvent(data)
		require.NoError(t, err, "%T", ev)
		assert.Equal(t, ev, decoded)
		seen[ev.Kind()] = true
	}
	assert.Len(t, seen, len(decoders), "every kind is covered")
}

func TestDeclareOverTheWire(t *testing.T) {
	t.Parallel()
	owners := map[deck.Card]fish.Seat{}
	for _, c := range deck.Eights.Cards() {
		owners[c] = 2
	}
	owners[deck.MustCard(deck.Clubs, deck.Eight)] = 4
	msg, err := NewEventMessage(Declare{Declarer: 0, Owners: owners})
	require.NoError(t, err)
	wire, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(wire), `"BJ":2`)

	var decoded Message
	require.NoError(t, json.Unmarshal(wire, &decoded))
	ev, err := decoded.Event()
	require.NoError(t, err)
	declare, ok := ev.(Declare)
	require.True(t, ok, "decoded %T", ev)
	assert.Equal(t, owners, declare.Owners)
}

func TestUnmarshalEventErrors(t *testing.T) {
	t.Parallel()
	_, err := UnmarshalEvent([]byte(`{"kind":"shuffle","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = UnmarshalEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = UnmarshalEvent([]byte(`{"kind":"ask","data":{"card":{"suit":"joker","rank":4}}}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	ev, err := UnmarshalEvent([]byte(`{"kind":"unseat_at"}`))
	require.NoError(t, err)
	assert.Equal(t, UnseatAt{}, ev)
}

func TestServerOnlyKinds(t *testing.T) {
	t.Parallel()
	assert.True(t, KindAddUser.ServerOnly())
	assert.True(t, KindStartGameResponse.ServerOnly())
	assert.True(t, KindDeclareResponse.ServerOnly())
	assert.True(t, KindHandSizes.ServerOnly())
	assert.False(t, KindAsk.ServerOnly())
	assert.False(t, KindDeclareMove.ServerOnly())
}

func TestMessages(t *testing.T) {
	t.Parallel()
	msg, err := NewMessage(TypeJoin, JoinData{Room: "lobby", Name: "ann"})
	require.NoError(t, err)
	wire, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(wire, &decoded))
	assert.Equal(t, TypeJoin, decoded.Type)
	var join JoinData
	require.NoError(t, decoded.Decode(&join))
	assert.Equal(t, JoinData{Room: "lobby", Name: "ann"}, join)

	evMsg, err := NewEventMessage(Pass{Passer: 2, Next: 4})
	require.NoError(t, err)
	ev, err := evMsg.Event()
	require.NoError(t, err)
	assert.Equal(t, Pass{Passer: 2, Next: 4}, ev)

	errMsg := NewErrorMessage(CodeRejected, "not your turn")
	var data ErrorData
	require.NoError(t, errMsg.Decode(&data))
	assert.Equal(t, ErrorData{Code: CodeRejected, Message: "not your turn"}, data)

	reset, err := NewMessage(TypeReset, nil)
	require.NoError(t, err)
	assert.Empty(t, reset.Data)
}
