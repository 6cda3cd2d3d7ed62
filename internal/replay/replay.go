// Package replay maps protocol events onto engine transitions. The server
// room and the client mirror both go through Apply, so every event runs the
// same transition code on both sides.
package replay

import (
	"errors"
	"fmt"

	"github.com/cjquines/cfish/internal/fish"
	"github.com/cjquines/cfish/internal/protocol"
)

// ErrNotApplicable is returned for events that never touch the engine
var ErrNotApplicable = errors.New("event does not apply to the engine")

// Result carries what a transition produced beyond the state change
type Result struct {
	// Deal is set after start_game on an authoritative engine
	Deal *fish.Deal
	// Declare is set after declare, and after declare_response on a mirror
	Declare *fish.DeclareResult
}

// Apply runs the transition for ev against e
func Apply(e *fish.Engine, ev protocol.Event) (Result, error) {
	switch ev := ev.(type) {
	case protocol.AddUser:
		return Result{}, e.AddUser(ev.User)
	case protocol.RemoveUser:
		return Result{}, e.RemoveUser(ev.User)
	case protocol.SeatAt:
		return Result{}, e.SeatAt(ev.User, ev.Seat)
	case protocol.UnseatAt:
		return Result{}, e.UnseatAt(ev.Seat)
	case protocol.SetRules:
		return Result{}, e.SetRules(ev.User, ev.Rules)
	case protocol.StartGame:
		deal, err := e.StartGame(ev.User, ev.Shuffle)
		return Result{Deal: deal}, err
	case protocol.StartGameResponse:
		return Result{}, e.ApplyDeal(ev.Hand, ev.Sizes)
	case protocol.Ask:
		return Result{}, e.Ask(ev.Asker, ev.Askee, ev.Card)
	case protocol.Answer:
		return Result{}, e.Answer(ev.Askee, ev.Response)
	case protocol.HandSizes:
		return Result{}, e.ApplyHandSizes(ev.Sizes)
	case protocol.InitDeclare:
		return Result{}, e.InitDeclare(ev.Declarer, ev.Group)
	case protocol.Declare:
		res, err := e.Declare(ev.Declarer, ev.Owners)
		if err != nil {
			return Result{}, err
		}
		return Result{Declare: &res}, nil
	case protocol.DeclareResponse:
		res, err := e.ApplyDeclare(ev.Correct, ev.Sizes)
		if err != nil {
			return Result{}, err
		}
		return Result{Declare: &res}, nil
	case protocol.Pass:
		return Result{}, e.Pass(ev.Passer, ev.Next)
	case protocol.DeclareMove:
		return Result{}, ErrNotApplicable
	case nil:
		return Result{}, fmt.Errorf("%w: nil event", protocol.ErrMalformedEvent)
	default:
		return Result{}, fmt.Errorf("%w: %T", protocol.ErrUnknownKind, ev)
	}
}
