package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/cjquines/cfish/internal/server"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

func startServer(t *testing.T) string {
	t.Helper()
	srv, err := server.NewServer(server.DefaultServerConfig(), testLogger())
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		srv.Router().Close()
	})
	return hs.URL
}

func connect(t *testing.T, url, room, name string) *Client {
	t.Helper()
	c := NewClient(url, room, name, testLogger(), WithClock(quartz.NewMock(t)))
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Disconnect() })
	require.Eventually(t, func() bool {
		ready := false
		c.View(func(m *Mirror) { ready = m.Ready() })
		return ready
	}, waitFor, tick)
	return c
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8080", want: "ws://localhost:8080/ws"},
		{in: "https://fish.example.com/", want: "wss://fish.example.com/ws"},
		{in: "ws://host:1/custom", want: "ws://host:1/custom"},
		{in: "ftp://host", wantErr: true},
		{in: "://nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := WebSocketURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientJoinsAndPlays(t *testing.T) {
	url := startServer(t)

	updates := make(chan struct{}, 64)
	alice := NewClient(url, "table", "Alice", testLogger(), WithClock(quartz.NewMock(t)), OnUpdate(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}))
	require.NoError(t, alice.Connect(context.Background()))
	t.Cleanup(func() { _ = alice.Disconnect() })
	assert.True(t, alice.IsConnected())
	assert.Equal(t, "table", alice.Room())

	select {
	case <-updates:
	case <-time.After(waitFor):
		t.Fatal("no update after connecting")
	}

	bob := connect(t, url, "table", "Bob")

	require.Eventually(t, func() bool {
		n := 0
		alice.View(func(m *Mirror) { n = len(m.Users()) })
		return n == 2
	}, waitFor, tick)

	require.NoError(t, alice.Act(func(m *Mirror) (protocol.Event, error) { return m.SeatAt(0) }))
	require.NoError(t, bob.Act(func(m *Mirror) (protocol.Event, error) { return m.SeatAt(3) }))

	require.Eventually(t, func() bool {
		seated := 0
		bob.View(func(m *Mirror) { seated = m.Engine().NumSeated() })
		return seated == 2
	}, waitFor, tick)

	err := alice.Act(func(m *Mirror) (protocol.Event, error) { return m.StartGame(true) })
	assert.ErrorIs(t, err, fish.ErrTableNotFull, "checked before sending")

	err = bob.Act(func(m *Mirror) (protocol.Event, error) {
		rules := m.Engine().Rules()
		rules.NumPlayers = 2
		return m.SetRules(rules)
	})
	assert.ErrorIs(t, err, fish.ErrNotHost)

	var bobID fish.UserID
	bob.View(func(m *Mirror) { bobID, _ = m.Self() })
	require.NoError(t, bob.Rename("Robert"))
	assert.Equal(t, "Robert", bob.Name())
	require.Eventually(t, func() bool {
		name := ""
		alice.View(func(m *Mirror) { name = m.NameOf(bobID) })
		return name == "Robert"
	}, waitFor, tick)
}

func TestClientSurvivesBadEvents(t *testing.T) {
	url := startServer(t)
	c := connect(t, url, "lobby", "Carol")

	// Skip the local check to see the server's answer.
	require.NoError(t, c.SendEvent(protocol.Pass{Passer: 0, Next: 2}))
	require.Eventually(t, func() bool {
		var last *protocol.ErrorData
		c.View(func(m *Mirror) { last = m.LastError() })
		return last != nil && last.Code == protocol.CodeForbidden
	}, waitFor, tick)

	require.NoError(t, c.RequestReset())
	assert.True(t, c.IsConnected())
}

func TestClientDisconnect(t *testing.T) {
	url := startServer(t)
	c := connect(t, url, "lobby", "Dave")

	require.NoError(t, c.Disconnect())
	select {
	case <-c.Done():
	case <-time.After(waitFor):
		t.Fatal("Done not closed")
	}
	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.RequestReset(), ErrNotConnected)
	assert.ErrorIs(t, c.Act(func(m *Mirror) (protocol.Event, error) { return m.SeatAt(0) }), ErrNotConnected)

	// A new connection starts from a fresh mirror.
	require.NoError(t, c.Connect(context.Background()))
	require.Eventually(t, func() bool {
		ready := false
		c.View(func(m *Mirror) { ready = m.Ready() })
		return ready
	}, waitFor, tick)
}

func TestConnectFailsWithoutServer(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "lobby", "Eve", testLogger())
	assert.Error(t, c.Connect(context.Background()))
	assert.False(t, c.IsConnected())
}
