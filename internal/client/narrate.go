package client

import (
	"fmt"

	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
)

// narrate describes ev in terms of the mirror's state before it applies.
// Events with nothing to say for the table return "".
func narrate(m *Mirror, ev protocol.Event) string {
	e := m.engine
	switch ev := ev.(type) {
	case protocol.SeatAt:
		return fmt.Sprintf("%s sat at seat %d", m.NameOf(ev.User), ev.Seat)
	case protocol.UnseatAt:
		return fmt.Sprintf("%s left seat %d", m.SeatName(ev.Seat), ev.Seat)
	case protocol.SetRules:
		return fmt.Sprintf("%s changed the rules: %s", m.NameOf(ev.User), ev.Rules)
	case protocol.StartGame:
		return fmt.Sprintf("%s started a game", m.NameOf(ev.User))
	case protocol.StartGameResponse:
		if ev.Hand != nil {
			return ""
		}
		asker, _ := e.Asker()
		return fmt.Sprintf("The cards are dealt; %s asks first", m.SeatName(asker))
	case protocol.Ask:
		return fmt.Sprintf("%s asked %s for the %s", m.SeatName(ev.Asker), m.SeatName(ev.Askee), ev.Card)
	case protocol.Answer:
		card, _ := e.State().AskedCard.Get()
		if ev.Response {
			return fmt.Sprintf("%s handed over the %s", m.SeatName(ev.Askee), card)
		}
		return fmt.Sprintf("%s does not have the %s", m.SeatName(ev.Askee), card)
	case protocol.InitDeclare:
		return fmt.Sprintf("%s is declaring %s", m.SeatName(ev.Declarer), ev.Group)
	case protocol.Declare:
		group, _ := e.State().DeclaredGroup.Get()
		return fmt.Sprintf("%s declared %s", m.SeatName(ev.Declarer), group)
	case protocol.Pass:
		return fmt.Sprintf("%s passed the turn to %s", m.SeatName(ev.Passer), m.SeatName(ev.Next))
	}
	return ""
}

// narrateVerdict describes a resolved declaration
func narrateVerdict(m *Mirror, res fish.DeclareResult) string {
	verdict := "incorrectly"
	if res.Correct {
		verdict = "correctly"
	}
	line := fmt.Sprintf("%s was declared %s; team %s scores (%d-%d)", res.Group, verdict, res.Scorer,
		m.engine.ScoreOf(fish.TeamA), m.engine.ScoreOf(fish.TeamB))
	if winner, ok := m.engine.Winner(); ok {
		line += fmt.Sprintf(". Team %s wins!", winner)
	}
	return line
}
