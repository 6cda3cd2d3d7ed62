package fish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUserHost(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())

	require.NoError(t, e.AddUser("a"))
	require.NoError(t, e.AddUser("b"))
	host, ok := e.Host()
	require.True(t, ok)
	assert.Equal(t, UserID("a"), host)

	assert.ErrorIs(t, e.AddUser("a"), ErrDuplicateUser)
	assert.Equal(t, []UserID{"a", "b"}, e.State().Users)
}

func TestSeating(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())
	require.NoError(t, e.AddUser("a"))
	require.NoError(t, e.AddUser("b"))

	assert.ErrorIs(t, e.SeatAt("zed", 0), ErrUnknownUser)
	assert.ErrorIs(t, e.SeatAt("a", 6), ErrBadSeat)
	assert.ErrorIs(t, e.SeatAt("a", -1), ErrBadSeat)

	require.NoError(t, e.SeatAt("a", 2))
	assert.ErrorIs(t, e.SeatAt("b", 2), ErrSeatTaken)
	assert.ErrorIs(t, e.SeatAt("a", 3), ErrAlreadySeated)

	seat, ok := e.SeatOf("a")
	require.True(t, ok)
	assert.Equal(t, Seat(2), seat)
	assert.Equal(t, []Seat{2, 3, 4, 5, 0, 1}, e.State().Seats, "seat order starts at the host")

	require.NoError(t, e.UnseatAt(2))
	assert.ErrorIs(t, e.UnseatAt(2), ErrSeatEmpty)
	assert.ErrorIs(t, e.UnseatAt(9), ErrBadSeat)
	_, ok = e.SeatOf("a")
	assert.False(t, ok)
}

func TestHostFailover(t *testing.T) {
	t.Parallel()
	e := newTable(t, DefaultRules())
	assert.Equal(t, []Seat{0, 1, 2, 3, 4, 5}, e.State().Seats)

	require.NoError(t, e.RemoveUser(user(0)))
	require.NoError(t, e.RemoveUser(user(1)))

	host, ok := e.Host()
	require.True(t, ok)
	assert.Equal(t, user(2), host)
	assert.Equal(t, []Seat{2, 3, 4, 5, 0, 1}, e.State().Seats)
	assert.Equal(t, 4, e.NumSeated())
	assert.ErrorIs(t, e.RemoveUser(user(0)), ErrUnknownUser)
}

func TestHostFailoverSkipsUnseated(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())
	require.NoError(t, e.AddUser("host"))
	require.NoError(t, e.AddUser("watcher"))
	require.NoError(t, e.AddUser("player"))
	require.NoError(t, e.SeatAt("host", 0))
	require.NoError(t, e.SeatAt("player", 4))

	require.NoError(t, e.RemoveUser("host"))
	host, _ := e.Host()
	assert.Equal(t, UserID("player"), host, "promotion prefers the lowest seated user")
}

func TestLastSeatedUserLeavingClearsHost(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())
	require.NoError(t, e.AddUser("a"))
	require.NoError(t, e.AddUser("b"))
	require.NoError(t, e.SeatAt("a", 0))

	require.NoError(t, e.RemoveUser("a"))
	_, ok := e.Host()
	assert.False(t, ok)

	// The next user to sit down takes over.
	require.NoError(t, e.SeatAt("b", 3))
	host, ok := e.Host()
	require.True(t, ok)
	assert.Equal(t, UserID("b"), host)
	assert.Equal(t, Seat(3), e.State().Seats[0])
}

func TestSetRules(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())
	require.NoError(t, e.AddUser("a"))
	require.NoError(t, e.AddUser("b"))

	rules := DefaultRules()
	rules.Bluff = BluffYes
	assert.ErrorIs(t, e.SetRules("b", rules), ErrNotHost)
	require.NoError(t, e.SetRules("a", rules))
	assert.Equal(t, BluffYes, e.Rules().Bluff)

	rules.NumPlayers = 4
	assert.ErrorIs(t, e.SetRules("a", rules), ErrInvalidRules)

	require.NoError(t, e.SeatAt("b", 5))
	rules.NumPlayers = 2
	assert.ErrorIs(t, e.SetRules("a", rules), ErrInvalidRules, "seat 5 is still occupied")

	require.NoError(t, e.UnseatAt(5))
	require.NoError(t, e.SeatAt("b", 1))
	require.NoError(t, e.SetRules("a", rules))
	s := e.State()
	assert.Len(t, s.UserOf, 2)
	assert.Len(t, s.HandOf, 2)
	assert.True(t, s.UserOf[1].Is("b"))
}

func TestSetRulesOnlyWhileWaiting(t *testing.T) {
	t.Parallel()
	e := startedTable(t, DefaultRules())
	assert.ErrorIs(t, e.SetRules(user(0), DefaultRules()), ErrWrongPhase)
}

func TestStartGameRequirements(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())
	for i := range 5 {
		require.NoError(t, e.AddUser(user(i)))
		require.NoError(t, e.SeatAt(user(i), Seat(i)))
	}

	_, err := e.StartGame(user(0), true)
	assert.ErrorIs(t, err, ErrTableNotFull)

	require.NoError(t, e.AddUser(user(5)))
	require.NoError(t, e.SeatAt(user(5), 5))
	_, err = e.StartGame(user(1), true)
	assert.ErrorIs(t, err, ErrNotHost)

	deal, err := e.StartGame(user(0), true)
	require.NoError(t, err)
	require.NotNil(t, deal)
	assert.Equal(t, PhaseAsk, e.Phase())
	asker, _ := e.Asker()
	assert.Equal(t, Seat(0), asker)
	for seat, hand := range deal.Hands {
		assert.Equal(t, 9, hand.Len(), "seat %d", seat)
		assert.True(t, deal.Sizes[seat].Is(9))
	}
	requireDeckIntact(t, e)

	_, err = e.StartGame(user(0), true)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestStartGameHostSeatAsksFirst(t *testing.T) {
	t.Parallel()
	e := New(DefaultRules())
	for i := range 6 {
		require.NoError(t, e.AddUser(user(i)))
	}
	// Host u0 sits at seat 3, everybody else fills in around.
	require.NoError(t, e.SeatAt(user(0), 3))
	for i, seat := range []Seat{0, 1, 2, 4, 5} {
		require.NoError(t, e.SeatAt(user(i+1), seat))
	}

	deal, err := e.StartGame(user(0), false)
	require.NoError(t, err)
	asker, _ := e.Asker()
	assert.Equal(t, Seat(3), asker)
	assert.Equal(t, cards("2C 8C AC"), deal.Hands[3].Cards()[:3], "the host seat gets the first card")
}

func TestShuffledDealsAreReproducible(t *testing.T) {
	t.Parallel()
	a := newTable(t, DefaultRules())
	b := newTable(t, DefaultRules())

	dealA, err := a.StartGame(user(0), true)
	require.NoError(t, err)
	dealB, err := b.StartGame(user(0), true)
	require.NoError(t, err)

	for seat := range dealA.Hands {
		assert.Equal(t, dealA.Hands[seat].Cards(), dealB.Hands[seat].Cards())
	}
}

func TestRestoreRejectsMalformedState(t *testing.T) {
	t.Parallel()
	s := New(DefaultRules()).State()
	s.HandOf = s.HandOf[:3]
	_, err := Restore(s)
	assert.ErrorIs(t, err, ErrMalformedState)

	s = New(DefaultRules()).State()
	s.Seats[1] = 0
	_, err = Restore(s)
	assert.ErrorIs(t, err, ErrMalformedState)
}

func TestStateCloneIsDeep(t *testing.T) {
	t.Parallel()
	e := startedTable(t, DefaultRules())
	s := e.State()
	require.NoError(t, s.HandOf[0].Remove(card("2C")))
	s.UserOf[0] = None[UserID]()

	assert.True(t, e.Hand(0).Contains(card("2C")))
	user0, _ := e.UserAt(0)
	assert.Equal(t, user(0), user0)
}
