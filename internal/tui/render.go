package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cjquines/cfish/internal/client"
	"github.com/cjquines/cfish/internal/deck"
	"github.com/cjquines/cfish/internal/fish"
)

// turnSeat returns the seat expected to act next
func turnSeat(e *fish.Engine) (fish.Seat, bool) {
	switch e.Phase() {
	case fish.PhaseAsk, fish.PhasePass:
		return e.Asker()
	case fish.PhaseAnswer:
		return e.Askee()
	case fish.PhaseDeclare:
		return e.Declarer()
	}
	return 0, false
}

// renderCards formats cards with suit colours
func renderCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return InfoStyle.Render("(none)")
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = cardStyle(c).Render(c.String())
	}
	return strings.Join(formatted, " ")
}

// renderStatus summarizes the room: phase, turn and scores
func renderStatus(m *client.Mirror, room string) string {
	e := m.Engine()
	if e == nil {
		return HeaderStyle.Render(" " + room + " ") + " " + InfoStyle.Render("waiting for the server...")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" " + room + " "))
	b.WriteString(" ")

	if winner, ok := e.Winner(); ok {
		b.WriteString(teamStyle(winner).Render(fmt.Sprintf("Team %s wins", winner)))
	} else {
		b.WriteString(e.Phase().String())
		if seat, ok := turnSeat(e); ok {
			b.WriteString(": ")
			b.WriteString(TurnStyle.Render(m.SeatName(seat)))
		}
	}

	fmt.Fprintf(&b, "  %s %d  %s %d",
		TeamAStyle.Render("A"), e.ScoreOf(fish.TeamA),
		TeamBStyle.Render("B"), e.ScoreOf(fish.TeamB))
	return b.String()
}

// renderSidebar lists seats in table order, the declared groups and the
// rules
func renderSidebar(m *client.Mirror) string {
	e := m.Engine()
	if e == nil {
		return InfoStyle.Render("No snapshot yet")
	}
	s := e.State()

	var b strings.Builder
	b.WriteString(InfoStyle.Render("Seats:"))
	b.WriteString("\n")
	turn, hasTurn := turnSeat(e)
	host, _ := e.Host()
	own, seated := e.OwnSeat()
	for _, seat := range s.Seats {
		marker := "  "
		if hasTurn && seat == turn {
			marker = TurnStyle.Render("▶ ")
		}

		name := InfoStyle.Render("(empty)")
		if id, ok := e.UserAt(seat); ok {
			name = m.NameOf(id)
			if id == host {
				name += " *"
			}
			if seated && seat == own {
				name += " (you)"
			}
		}

		size := ""
		if n, ok := e.HandSize(seat); ok && e.Phase() != fish.PhaseWait {
			size = fmt.Sprintf(" [%d]", n)
		}
		team := fish.TeamOf(seat)
		fmt.Fprintf(&b, "%s%s %s%s\n", marker, teamStyle(team).Render(fmt.Sprintf("%d%s", seat, team)), name, size)
	}

	if unseated := unseatedUsers(m); len(unseated) > 0 {
		b.WriteString(InfoStyle.Render("Unseated:"))
		b.WriteString("\n")
		for _, name := range unseated {
			b.WriteString("  ")
			b.WriteString(name)
			b.WriteString("\n")
		}
	}

	var declared []string
	for _, g := range deck.Groups() {
		if t, ok := s.DeclarerOf[g].Get(); ok {
			declared = append(declared, teamStyle(t).Render(fmt.Sprintf("%s:%s", g, t)))
		}
	}
	if len(declared) > 0 {
		b.WriteString(InfoStyle.Render("Declared:"))
		b.WriteString("\n  ")
		b.WriteString(strings.Join(declared, " "))
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render("Rules:"))
	b.WriteString("\n")
	r := e.Rules()
	fmt.Fprintf(&b, "  players %d\n  bluff %s\n  declare %s\n  hand_size %s\n  log %s\n",
		r.NumPlayers, r.Bluff, r.Declare, r.HandSize, r.Log)
	return b.String()
}

func unseatedUsers(m *client.Mirror) []string {
	e := m.Engine()
	var names []string
	for _, u := range m.Users() {
		if _, ok := e.SeatOf(u.ID); !ok {
			names = append(names, u.Name)
		}
	}
	return names
}

// renderLog merges notices and game history, newest last
func renderLog(m *client.Mirror) string {
	var lines []string
	for _, n := range m.Notices() {
		lines = append(lines, NoticeStyle.Render(n))
	}
	lines = append(lines, m.History()...)
	return strings.Join(lines, "\n")
}

// renderHand shows the viewer's hand with positions for the move command,
// the pending ask and the declaring team's tray
func renderHand(m *client.Mirror) string {
	e := m.Engine()
	if e == nil {
		return ""
	}
	var b strings.Builder

	if hand := e.OwnHand(); hand != nil {
		b.WriteString("Hand: ")
		b.WriteString(renderCards(hand.Cards()))
		if m.KeepSorted() {
			b.WriteString(InfoStyle.Render(" (sorted)"))
		}
		b.WriteString("\n")
	} else if _, ok := e.OwnSeat(); !ok {
		b.WriteString(InfoStyle.Render("You are not seated. Use seat N to sit down."))
		b.WriteString("\n")
	}

	s := e.State()
	if card, ok := s.AskedCard.Get(); ok && e.Phase() == fish.PhaseAnswer {
		asker, _ := e.Asker()
		askee, _ := e.Askee()
		fmt.Fprintf(&b, "%s asks %s for the %s\n",
			m.SeatName(asker), m.SeatName(askee), cardStyle(card).Render(card.String()))
	}

	if group, ok := s.DeclaredGroup.Get(); ok && e.Phase() == fish.PhaseDeclare {
		declarer, _ := e.Declarer()
		fmt.Fprintf(&b, "%s is declaring %s\n", m.SeatName(declarer), group)
		if tray := renderTray(m, group); tray != "" {
			b.WriteString(tray)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTray(m *client.Mirror, group deck.Group) string {
	tray := m.Tray()
	if len(tray) == 0 {
		return ""
	}
	cards := make([]deck.Card, 0, len(tray))
	for c := range tray {
		cards = append(cards, c)
	}
	slices.SortFunc(cards, deck.Compare)

	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		if c.Group() != group {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s→%s", cardStyle(c).Render(c.String()), m.SeatName(tray[c])))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Tray: " + strings.Join(parts, ", ")
}
