package fish

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		players int
		valid   bool
	}{
		{2, true}, {6, true}, {18, true},
		{0, false}, {3, false}, {4, false}, {8, false}, {54, false},
	}
	for _, tt := range tests {
		r := DefaultRules()
		r.NumPlayers = tt.players
		err := r.Validate()
		if tt.valid {
			assert.NoError(t, err, "players=%d", tt.players)
		} else {
			assert.ErrorIs(t, err, ErrInvalidRules, "players=%d", tt.players)
		}
	}

	r := DefaultRules()
	r.Log = LogRule(7)
	assert.ErrorIs(t, r.Validate(), ErrInvalidRules)
}

func TestRulesSet(t *testing.T) {
	t.Parallel()
	r := DefaultRules()
	require.NoError(t, r.Set("bluff", "yes"))
	require.NoError(t, r.Set("declare", "during_turn"))
	require.NoError(t, r.Set("hand_size", "secret"))
	require.NoError(t, r.Set("log", "everything"))
	require.NoError(t, r.Set("num_players", "2"))

	assert.Equal(t, Rules{
		NumPlayers: 2,
		Bluff:      BluffYes,
		Declare:    DeclareDuringTurn,
		HandSize:   HandSizeSecret,
		Log:        LogEverything,
	}, r)

	assert.ErrorIs(t, r.Set("colour", "red"), ErrUnknownRule)
	assert.ErrorIs(t, r.Set("bluff", "maybe"), ErrUnknownRuleValue)
	assert.ErrorIs(t, r.Set("num_players", "six"), ErrUnknownRuleValue)
	assert.Equal(t, BluffYes, r.Bluff, "failed sets leave the rule alone")
}

func TestRulesJSON(t *testing.T) {
	t.Parallel()
	r := DefaultRules()
	r.Declare = DeclareDuringTurn
	r.Log = LogLastTwo

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"numPlayers":6,"bluff":"no","declare":"during_turn","handSize":"public","log":"last_two"}`, string(data))

	var decoded Rules
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"bluff":"sometimes"}`), &decoded))
}

func TestLogRuleEntries(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, LogLastAction.Entries())
	assert.Equal(t, 2, LogLastTwo.Entries())
	assert.Equal(t, -1, LogEverything.Entries())
}

func TestOptJSON(t *testing.T) {
	t.Parallel()
	type payload struct {
		Seat Opt[Seat] `json:"seat"`
		Size Opt[int]  `json:"size"`
	}
	data, err := json.Marshal(payload{Seat: Some(Seat(0)), Size: None[int]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"seat":0,"size":null}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Seat.Is(0))
	assert.False(t, decoded.Size.IsSome())
	assert.Equal(t, 5, decoded.Size.Or(5))
}
