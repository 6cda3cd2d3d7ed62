package room

import (
	"errors"
	"fmt"

	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
	"github.com/cjquines/cfish/internal/replay"
)

// ErrForbidden is returned when an event names a seat or user other than
// the sender's own
var ErrForbidden = errors.New("not allowed for this user")

func (r *Room) handleEvent(from fish.UserID, ev protocol.Event) {
	if _, ok := r.members[from]; !ok {
		r.logger.Warn("Event from unknown user", "user", from)
		return
	}
	if ev == nil {
		r.sendError(from, protocol.CodeInvalidMessage, protocol.ErrMalformedEvent)
		return
	}
	if err := r.authorize(from, ev); err != nil {
		r.logger.Debug("Event refused", "user", from, "kind", ev.Kind(), "error", err)
		r.sendError(from, protocol.CodeForbidden, err)
		return
	}

	if move, ok := ev.(protocol.DeclareMove); ok {
		team := fish.TeamOf(move.Declarer)
		r.broadcastEventTo(move, func(id fish.UserID) bool {
			seat, seated := r.engine.SeatOf(id)
			return seated && fish.TeamOf(seat) == team
		})
		return
	}

	var unseated fish.UserID
	if ev, ok := ev.(protocol.UnseatAt); ok {
		unseated, _ = r.engine.UserAt(ev.Seat)
	}

	res, err := replay.Apply(r.engine, ev)
	if err != nil {
		r.logger.Debug("Event rejected", "user", from, "kind", ev.Kind(), "error", err)
		r.sendError(from, protocol.CodeRejected, err)
		return
	}
	r.broadcastEvent(ev)
	r.followUp(ev, res, unseated)

	r.logger.Info("Event applied", "user", from, "kind", ev.Kind(), "phase", r.engine.Phase())
	if winner, ok := r.engine.Winner(); ok && ev.Kind() == protocol.KindDeclare {
		r.logger.Info("Game over", "winner", winner,
			"team_a", r.engine.ScoreOf(fish.TeamA), "team_b", r.engine.ScoreOf(fish.TeamB))
	}
}

// followUp sends the server-computed messages some events require
func (r *Room) followUp(ev protocol.Event, res replay.Result, unseated fish.UserID) {
	switch ev := ev.(type) {
	case protocol.SeatAt:
		r.sendReset(ev.User)
	case protocol.UnseatAt:
		r.sendReset(unseated)
	case protocol.StartGame:
		deal := res.Deal
		r.broadcastEvent(protocol.StartGameResponse{Sizes: deal.Sizes})
		for seat, hand := range deal.Hands {
			id, ok := r.engine.UserAt(fish.Seat(seat))
			if !ok {
				continue
			}
			r.broadcastEventTo(protocol.StartGameResponse{Hand: hand, Sizes: deal.Sizes}, func(u fish.UserID) bool {
				return u == id
			})
		}
	case protocol.Answer:
		if r.engine.Rules().HandSize == fish.HandSizeSecret {
			r.broadcastEvent(protocol.HandSizes{Sizes: r.engine.PublicHandSizes()})
		}
	case protocol.Declare:
		r.broadcastEvent(protocol.DeclareResponse{Correct: res.Declare.Correct, Sizes: res.Declare.Sizes})
	}
}

// authorize checks that the sender may speak for the seat or user an
// event names
func (r *Room) authorize(from fish.UserID, ev protocol.Event) error {
	if ev.Kind().ServerOnly() {
		return fmt.Errorf("%w: %s is sent by the server", ErrForbidden, ev.Kind())
	}
	switch ev := ev.(type) {
	case protocol.SeatAt:
		return r.requireUser(from, ev.User)
	case protocol.SetRules:
		return r.requireUser(from, ev.User)
	case protocol.StartGame:
		return r.requireUser(from, ev.User)
	case protocol.UnseatAt:
		occupant, _ := r.engine.UserAt(ev.Seat)
		host, _ := r.engine.Host()
		if from != occupant && from != host {
			return fmt.Errorf("%w: only the occupant or the host may free seat %d", ErrForbidden, ev.Seat)
		}
		return nil
	case protocol.Ask:
		return r.requireSeat(from, ev.Asker)
	case protocol.Answer:
		return r.requireSeat(from, ev.Askee)
	case protocol.InitDeclare:
		return r.requireSeat(from, ev.Declarer)
	case protocol.Declare:
		return r.requireSeat(from, ev.Declarer)
	case protocol.Pass:
		return r.requireSeat(from, ev.Passer)
	case protocol.DeclareMove:
		declarer, ok := r.engine.Declarer()
		if r.engine.Phase() != fish.PhaseDeclare || !ok || declarer != ev.Declarer {
			return fmt.Errorf("%w: no declaration by seat %d in progress", ErrForbidden, ev.Declarer)
		}
		seat, seated := r.engine.SeatOf(from)
		if !seated || fish.TeamOf(seat) != fish.TeamOf(declarer) {
			return fmt.Errorf("%w: only the declaring team may arrange the declaration", ErrForbidden)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", protocol.ErrUnknownKind, ev.Kind())
}

func (r *Room) requireUser(from, named fish.UserID) error {
	if from != named {
		return fmt.Errorf("%w: event names %s", ErrForbidden, named)
	}
	return nil
}

func (r *Room) requireSeat(from fish.UserID, seat fish.Seat) error {
	own, ok := r.engine.SeatOf(from)
	if !ok || own != seat {
		return fmt.Errorf("%w: seat %d belongs to someone else", ErrForbidden, seat)
	}
	return nil
}
