package server

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/cjquines/cfish/internal/randutil"
	"github.com/cjquines/cfish/internal/room"
)

var (
	ErrTooManyRooms  = errors.New("room limit reached")
	ErrInvalidRoomID = errors.New("invalid room id")
)

var roomIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// joinAttempts bounds retries when a join races with the room closing
const joinAttempts = 3

// RouterConfig controls how rooms are created
type RouterConfig struct {
	Rules    fish.Rules
	MaxRooms int
}

// Router maps room ids to live rooms. Rooms are created on first join and
// forgotten when they close.
type Router struct {
	mu     sync.Mutex
	rooms  map[string]*room.Room
	cfg    RouterConfig
	seeds  *randutil.Seeds
	logger *log.Logger
}

// NewRouter creates an empty router
func NewRouter(cfg RouterConfig, seeds *randutil.Seeds, logger *log.Logger) *Router {
	if seeds == nil {
		seeds = randutil.NewSeeds(nil)
	}
	return &Router{
		rooms:  make(map[string]*room.Room),
		cfg:    cfg,
		seeds:  seeds,
		logger: logger.WithPrefix("router"),
	}
}

// Join places the user in the named room, creating it if needed
func (r *Router) Join(ctx context.Context, roomID string, user protocol.User, out room.Outbox) (*room.Room, error) {
	roomID = strings.TrimSpace(roomID)
	if !roomIDPattern.MatchString(roomID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}

	var err error
	for range joinAttempts {
		var rm *room.Room
		rm, err = r.lookup(roomID)
		if err != nil {
			return nil, err
		}
		err = rm.Join(ctx, user, out)
		if !errors.Is(err, room.ErrRoomClosed) {
			if err != nil {
				return nil, err
			}
			return rm, nil
		}
		// The room closed between lookup and join; drop it and retry.
		r.forget(rm)
	}
	return nil, err
}

func (r *Router) lookup(roomID string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.rooms[roomID]; ok {
		return rm, nil
	}
	if r.cfg.MaxRooms > 0 && len(r.rooms) >= r.cfg.MaxRooms {
		return nil, fmt.Errorf("%w: %d rooms open", ErrTooManyRooms, len(r.rooms))
	}
	rm := room.New(roomID, room.Config{
		Rules: r.cfg.Rules,
		Rand:  r.seeds.Next(),
	}, r.logger, r.forget)
	r.rooms[roomID] = rm
	r.logger.Debug("Created room", "room", roomID, "rooms", len(r.rooms))
	return rm, nil
}

// forget removes rm if the map still points at it
func (r *Router) forget(rm *room.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.rooms[rm.ID()]; ok && cur == rm {
		delete(r.rooms, rm.ID())
		r.logger.Debug("Forgot room", "room", rm.ID(), "rooms", len(r.rooms))
	}
}

// Rooms summarizes every open room, sorted by id
func (r *Router) Rooms(ctx context.Context) []room.Summary {
	r.mu.Lock()
	rooms := make([]*room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.Unlock()

	summaries := make([]room.Summary, 0, len(rooms))
	for _, rm := range rooms {
		s, err := rm.Summary(ctx)
		if err != nil {
			continue
		}
		summaries = append(summaries, s)
	}
	slices.SortFunc(summaries, func(a, b room.Summary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return summaries
}

// Len returns the number of open rooms
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Close stops every room and waits for them to finish
func (r *Router) Close() {
	r.mu.Lock()
	rooms := make([]*room.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.Unlock()

	for _, rm := range rooms {
		rm.Stop()
	}
	for _, rm := range rooms {
		<-rm.Done()
	}
}
