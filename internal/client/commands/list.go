package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cjquines/cfish/internal/room"
)

// ListRoomsCommand lists the rooms open on the server
type ListRoomsCommand struct {
	Timeout time.Duration `default:"5s" help:"Request timeout"`
}

func (cmd *ListRoomsCommand) Run(flags *GlobalFlags) error {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	rooms, err := FetchRooms(ctx, http.DefaultClient, cfg.Server.URL)
	if err != nil {
		return err
	}
	PrintRooms(os.Stdout, rooms)
	return nil
}

// FetchRooms reads the /rooms listing of a server
func FetchRooms(ctx context.Context, hc *http.Client, serverURL string) ([]room.Summary, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = "/rooms"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list rooms: %s", resp.Status)
	}

	var rooms []room.Summary
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("failed to decode room list: %w", err)
	}
	return rooms, nil
}

// PrintRooms writes one line per room
func PrintRooms(w io.Writer, rooms []room.Summary) {
	if len(rooms) == 0 {
		_, _ = fmt.Fprintln(w, "No rooms open")
		return
	}
	_, _ = fmt.Fprintln(w, "Open rooms:")
	for _, r := range rooms {
		status := r.Phase.String()
		if r.GameOver {
			status = "game over"
		}
		_, _ = fmt.Fprintf(w, "  %s: %d users, %d/%d seated, %s\n",
			r.ID, r.Users, r.Seated, r.NumPlayers, status)
	}
}
