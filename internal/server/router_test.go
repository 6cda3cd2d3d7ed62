package server

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/cjquines/cfish/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type discard struct {
	mu   sync.Mutex
	msgs int
}

func (d *discard) Send(*protocol.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs++
	return nil
}

func newTestRouter(maxRooms int) *Router {
	seed := int64(1)
	return NewRouter(RouterConfig{Rules: fish.DefaultRules(), MaxRooms: maxRooms}, randutil.NewSeeds(&seed), testLogger())
}

func TestRouterCreatesRoomsLazily(t *testing.T) {
	r := newTestRouter(0)
	defer r.Close()
	ctx := context.Background()

	a, err := r.Join(ctx, "alpha", protocol.User{ID: "u1", Name: "Ann"}, &discard{})
	require.NoError(t, err)
	b, err := r.Join(ctx, "alpha", protocol.User{ID: "u2", Name: "Bo"}, &discard{})
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = r.Join(ctx, "beta", protocol.User{ID: "u3", Name: "Cy"}, &discard{})
	require.NoError(t, err)

	rooms := r.Rooms(ctx)
	require.Len(t, rooms, 2)
	assert.Equal(t, "alpha", rooms[0].ID)
	assert.Equal(t, 2, rooms[0].Users)
	assert.Equal(t, "beta", rooms[1].ID)
	assert.Equal(t, "u3", rooms[1].Host)
}

func TestRouterRejectsBadRoomIDs(t *testing.T) {
	r := newTestRouter(0)
	defer r.Close()

	for _, id := range []string{"", "has space", "slash/room", strings.Repeat("a", 65)} {
		_, err := r.Join(context.Background(), id, protocol.User{ID: "u1", Name: "Ann"}, &discard{})
		assert.ErrorIs(t, err, ErrInvalidRoomID, "room id %q", id)
	}
	assert.Zero(t, r.Len())
}

func TestRouterRoomLimit(t *testing.T) {
	r := newTestRouter(1)
	defer r.Close()
	ctx := context.Background()

	_, err := r.Join(ctx, "one", protocol.User{ID: "u1", Name: "Ann"}, &discard{})
	require.NoError(t, err)
	_, err = r.Join(ctx, "two", protocol.User{ID: "u2", Name: "Bo"}, &discard{})
	assert.ErrorIs(t, err, ErrTooManyRooms)

	_, err = r.Join(ctx, "one", protocol.User{ID: "u2", Name: "Bo"}, &discard{})
	assert.NoError(t, err, "joining an existing room ignores the limit")
}

func TestRouterForgetsEmptyRooms(t *testing.T) {
	r := newTestRouter(1)
	defer r.Close()
	ctx := context.Background()

	rm, err := r.Join(ctx, "one", protocol.User{ID: "u1", Name: "Ann"}, &discard{})
	require.NoError(t, err)
	require.NoError(t, rm.Leave(ctx, "u1"))

	select {
	case <-rm.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room did not close after its last user left")
	}
	require.Eventually(t, func() bool { return r.Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	// A closed room frees its slot and a new one takes the id.
	again, err := r.Join(ctx, "one", protocol.User{ID: "u2", Name: "Bo"}, &discard{})
	require.NoError(t, err)
	assert.NotSame(t, rm, again)
}

func TestRouterDuplicateUser(t *testing.T) {
	r := newTestRouter(0)
	defer r.Close()
	ctx := context.Background()

	_, err := r.Join(ctx, "one", protocol.User{ID: "u1", Name: "Ann"}, &discard{})
	require.NoError(t, err)
	_, err = r.Join(ctx, "one", protocol.User{ID: "u1", Name: "Ann"}, &discard{})
	assert.Error(t, err)
}

func TestRouterClose(t *testing.T) {
	r := newTestRouter(0)
	ctx := context.Background()

	rm, err := r.Join(ctx, "one", protocol.User{ID: "u1", Name: "Ann"}, &discard{})
	require.NoError(t, err)

	r.Close()
	select {
	case <-rm.Done():
	default:
		t.Fatal("Close should wait for rooms to stop")
	}
	assert.Eventually(t, func() bool { return r.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
