package fish

import (
	"fmt"
	"maps"

	"github.com/cjquines/cfish/internal/deck"
)

// winningScore is a strict majority of the nine groups
const winningScore = deck.NumGroups/2 + 1

// Deal is the result of starting a game on an authoritative engine
type Deal struct {
	// Hands is indexed by seat
	Hands []*deck.Hand
	// Sizes is the public hand size view, redacted by the hand size rule
	Sizes []Opt[int]
}

// DeclareResult describes a resolved (or, on a mirror, pending) declaration
type DeclareResult struct {
	Group    deck.Group
	Resolved bool
	Correct  bool
	Scorer   Team
	// Sizes is the public hand size view after the group was removed
	Sizes []Opt[int]
}

// StartGame deals a new game. shuffle=false deals the deck in its fixed
// order, for tests. A mirror engine clears hands and returns a nil Deal;
// its hand arrives through ApplyDeal.
func (e *Engine) StartGame(u UserID, shuffle bool) (*Deal, error) {
	if e.state.Phase != PhaseWait {
		return nil, fmt.Errorf("%w: game already running", ErrWrongPhase)
	}
	if err := e.checkHost(u); err != nil {
		return nil, err
	}
	if err := e.state.Rules.Validate(); err != nil {
		return nil, err
	}
	if seated := e.NumSeated(); seated != e.state.Rules.NumPlayers {
		return nil, fmt.Errorf("%w: %d of %d seats filled", ErrTableNotFull, seated, e.state.Rules.NumPlayers)
	}

	e.rotateSeats()
	e.state.DeclarerOf = [deck.NumGroups]Opt[Team]{}
	e.state.Winner = None[Team]()
	e.state.Askee = None[Seat]()
	e.state.AskedCard = None[deck.Card]()
	e.state.Declarer = None[Seat]()
	e.state.DeclaredGroup = None[deck.Group]()
	e.state.LastResponse = ResponseNone
	e.state.Asker = Some(e.state.Seats[0])
	e.state.Phase = PhaseAsk
	e.pending = nil

	for seat := range e.state.HandOf {
		e.state.HandOf[seat] = nil
		e.state.HandSize[seat] = None[int]()
	}
	if !e.authoritative {
		return nil, nil
	}

	cards := deck.FullDeck()
	if shuffle {
		deck.Shuffle(cards, e.rng)
	}
	// Card i goes to the i-th seat in turn order.
	for i, hand := range deck.Deal(cards, len(e.state.Seats)) {
		seat := e.state.Seats[i]
		e.state.HandOf[seat] = hand
		e.state.HandSize[seat] = Some(hand.Len())
	}

	deal := &Deal{
		Hands: make([]*deck.Hand, len(e.state.HandOf)),
		Sizes: e.PublicHandSizes(),
	}
	for seat, hand := range e.state.HandOf {
		deal.Hands[seat] = hand.Clone()
	}
	return deal, nil
}

// ApplyDeal installs the viewer's dealt hand and the public sizes on a
// mirror engine. hand may be nil for an unseated viewer.
func (e *Engine) ApplyDeal(hand *deck.Hand, sizes []Opt[int]) error {
	if e.authoritative {
		return ErrAuthoritative
	}
	if e.state.Phase != PhaseAsk {
		return fmt.Errorf("%w: deal outside a fresh game", ErrWrongPhase)
	}
	if err := e.checkSizes(sizes); err != nil {
		return err
	}
	if hand != nil {
		seat, ok := e.OwnSeat()
		if !ok {
			return fmt.Errorf("%w: viewer has no seat for a dealt hand", ErrNotSeated)
		}
		e.state.HandOf[seat] = hand.Clone()
	}
	e.applySizes(sizes)
	return nil
}

// ApplyHandSizes resyncs a mirror's sizes from a server broadcast
func (e *Engine) ApplyHandSizes(sizes []Opt[int]) error {
	if e.authoritative {
		return ErrAuthoritative
	}
	if err := e.checkSizes(sizes); err != nil {
		return err
	}
	e.applySizes(sizes)
	return nil
}

func (e *Engine) checkSizes(sizes []Opt[int]) error {
	if len(sizes) != len(e.state.HandSize) {
		return fmt.Errorf("%w: %d hand sizes for %d seats", ErrMalformedState, len(sizes), len(e.state.HandSize))
	}
	return nil
}

// applySizes copies sizes, keeping the size of any visible hand exact
func (e *Engine) applySizes(sizes []Opt[int]) {
	copy(e.state.HandSize, sizes)
	e.syncVisibleSizes()
}

func (e *Engine) syncVisibleSizes() {
	for seat, hand := range e.state.HandOf {
		if hand != nil {
			e.state.HandSize[seat] = Some(hand.Len())
		}
	}
}

// Ask requests card from askee on behalf of the current asker
func (e *Engine) Ask(asker, askee Seat, card deck.Card) error {
	if e.state.Phase != PhaseAsk {
		return fmt.Errorf("%w: ask during %s", ErrWrongPhase, e.state.Phase)
	}
	if err := e.checkSeat(asker); err != nil {
		return err
	}
	if err := e.checkSeat(askee); err != nil {
		return err
	}
	if !e.state.Asker.Is(asker) {
		return fmt.Errorf("%w: seat %d is not asking", ErrNotYourTurn, asker)
	}
	if TeamOf(asker) == TeamOf(askee) {
		return fmt.Errorf("%w: seat %d", ErrSameTeam, askee)
	}
	if !deck.Valid(card.Suit, card.Rank) {
		return fmt.Errorf("%w: invalid card", ErrIllegalAsk)
	}
	group := card.Group()
	if e.state.DeclarerOf[group].IsSome() {
		return fmt.Errorf("%w: %s", ErrAlreadyDeclared, group)
	}
	if e.knownEmpty(askee) {
		return fmt.Errorf("%w: seat %d has no cards", ErrEmptyHand, askee)
	}
	if hand := e.state.HandOf[asker]; hand != nil {
		if !hand.HasGroup(group) {
			return fmt.Errorf("%w: asker holds no card of %s", ErrIllegalAsk, group)
		}
		if e.state.Rules.Bluff == BluffNo && hand.Contains(card) {
			return fmt.Errorf("%w: asker already holds %s", ErrIllegalAsk, card)
		}
	}

	e.state.Askee = Some(askee)
	e.state.AskedCard = Some(card)
	e.state.Phase = PhaseAnswer
	return nil
}

// Answer responds to the pending ask. A yes moves the card to the asker,
// who keeps asking; a no hands the turn to the askee.
func (e *Engine) Answer(askee Seat, response bool) error {
	if e.state.Phase != PhaseAnswer {
		return fmt.Errorf("%w: answer during %s", ErrWrongPhase, e.state.Phase)
	}
	if !e.state.Askee.Is(askee) {
		return fmt.Errorf("%w: seat %d was not asked", ErrNotYourTurn, askee)
	}
	asker, _ := e.state.Asker.Get()
	card, _ := e.state.AskedCard.Get()
	from, to := e.state.HandOf[askee], e.state.HandOf[asker]
	if from != nil && from.Contains(card) != response {
		return fmt.Errorf("%w: seat %d answering %t for %s", ErrDishonestAnswer, askee, response, card)
	}
	if response && to != nil && to.Contains(card) {
		return fmt.Errorf("%w: asker already holds %s", ErrDishonestAnswer, card)
	}

	if response {
		if from != nil {
			_ = from.Remove(card)
		}
		if to != nil {
			_ = to.Insert(card)
		}
		if n, ok := e.state.HandSize[askee].Get(); ok {
			e.state.HandSize[askee] = Some(n - 1)
		}
		if n, ok := e.state.HandSize[asker].Get(); ok {
			e.state.HandSize[asker] = Some(n + 1)
		}
		e.state.LastResponse = ResponseGoodAsk
	} else {
		e.state.Asker = Some(askee)
		e.state.LastResponse = ResponseBadAsk
	}
	e.state.Askee = None[Seat]()
	e.state.AskedCard = None[deck.Card]()
	e.state.Phase = PhaseAsk
	return nil
}

// InitDeclare begins a declaration of group by declarer
func (e *Engine) InitDeclare(declarer Seat, group deck.Group) error {
	if e.state.Phase != PhaseAsk && e.state.Phase != PhasePass {
		return fmt.Errorf("%w: declare during %s", ErrWrongPhase, e.state.Phase)
	}
	if err := e.checkSeat(declarer); err != nil {
		return err
	}
	if !e.state.UserOf[declarer].IsSome() {
		return fmt.Errorf("%w: %d", ErrSeatEmpty, declarer)
	}
	if !group.Valid() {
		return fmt.Errorf("%w: group %d", ErrIncompleteClaim, group)
	}
	if e.state.DeclarerOf[group].IsSome() {
		return fmt.Errorf("%w: %s", ErrAlreadyDeclared, group)
	}
	if e.state.Rules.Declare == DeclareDuringTurn {
		asker, _ := e.state.Asker.Get()
		if asker != declarer && !e.knownEmpty(asker) {
			return fmt.Errorf("%w: only seat %d may declare", ErrNotYourTurn, asker)
		}
	}

	e.state.Declarer = Some(declarer)
	e.state.DeclaredGroup = Some(group)
	e.state.Phase = PhaseDeclare
	return nil
}

// Declare submits the owner of every card in the declared group. An
// authoritative engine resolves it at once. A mirror keeps the owners and
// waits for ApplyDeclare.
func (e *Engine) Declare(declarer Seat, owners map[deck.Card]Seat) (DeclareResult, error) {
	if e.state.Phase != PhaseDeclare {
		return DeclareResult{}, fmt.Errorf("%w: declare during %s", ErrWrongPhase, e.state.Phase)
	}
	if !e.state.Declarer.Is(declarer) {
		return DeclareResult{}, fmt.Errorf("%w: seat %d is not declaring", ErrNotYourTurn, declarer)
	}
	group, _ := e.state.DeclaredGroup.Get()
	cards := group.Cards()
	if len(owners) != len(cards) {
		return DeclareResult{}, fmt.Errorf("%w: %d of %d cards assigned", ErrIncompleteClaim, len(owners), len(cards))
	}
	for _, card := range cards {
		seat, ok := owners[card]
		if !ok {
			return DeclareResult{}, fmt.Errorf("%w: no owner for %s", ErrIncompleteClaim, card)
		}
		if err := e.checkSeat(seat); err != nil {
			return DeclareResult{}, err
		}
		if TeamOf(seat) != TeamOf(declarer) {
			return DeclareResult{}, fmt.Errorf("%w: %s assigned to seat %d", ErrWrongTeam, card, seat)
		}
	}

	if !e.authoritative {
		e.pending = maps.Clone(owners)
		return DeclareResult{Group: group}, nil
	}
	correct := true
	for card, seat := range owners {
		if !e.state.HandOf[seat].Contains(card) {
			correct = false
			break
		}
	}
	return e.resolveDeclare(correct, nil), nil
}

// ApplyDeclare resolves a mirror's pending declaration with the server's
// verdict and public hand sizes
func (e *Engine) ApplyDeclare(correct bool, sizes []Opt[int]) (DeclareResult, error) {
	if e.authoritative {
		return DeclareResult{}, ErrAuthoritative
	}
	if e.state.Phase != PhaseDeclare {
		return DeclareResult{}, fmt.Errorf("%w: no declaration pending", ErrWrongPhase)
	}
	if err := e.checkSizes(sizes); err != nil {
		return DeclareResult{}, err
	}
	return e.resolveDeclare(correct, sizes), nil
}

// PendingOwners returns the owners of a declaration awaiting its verdict
func (e *Engine) PendingOwners() map[deck.Card]Seat {
	return maps.Clone(e.pending)
}

func (e *Engine) resolveDeclare(correct bool, sizes []Opt[int]) DeclareResult {
	group, _ := e.state.DeclaredGroup.Get()
	declarer, _ := e.state.Declarer.Get()

	for _, hand := range e.state.HandOf {
		if hand != nil {
			hand.RemoveGroup(group)
		}
	}
	if sizes != nil {
		e.applySizes(sizes)
	} else {
		e.syncVisibleSizes()
	}

	scorer := TeamOf(declarer)
	e.state.LastResponse = ResponseGoodDeclare
	if !correct {
		scorer = scorer.Other()
		e.state.LastResponse = ResponseBadDeclare
	}
	e.state.DeclarerOf[group] = Some(scorer)
	e.state.Declarer = None[Seat]()
	e.state.DeclaredGroup = None[deck.Group]()
	e.pending = nil

	asker, _ := e.state.Asker.Get()
	switch {
	case e.ScoreOf(scorer) >= winningScore:
		e.state.Winner = Some(scorer)
		e.state.Asker = None[Seat]()
		e.state.Phase = PhaseWait
	case e.knownEmpty(asker):
		e.state.Phase = PhasePass
	default:
		e.state.Phase = PhaseAsk
	}

	return DeclareResult{
		Group:    group,
		Resolved: true,
		Correct:  correct,
		Scorer:   scorer,
		Sizes:    e.PublicHandSizes(),
	}
}

// Pass hands the turn from an asker with no cards to a teammate
func (e *Engine) Pass(passer, next Seat) error {
	if e.state.Phase != PhasePass {
		return fmt.Errorf("%w: pass during %s", ErrWrongPhase, e.state.Phase)
	}
	if err := e.checkSeat(passer); err != nil {
		return err
	}
	if err := e.checkSeat(next); err != nil {
		return err
	}
	if !e.state.Asker.Is(passer) {
		return fmt.Errorf("%w: seat %d is not asking", ErrNotYourTurn, passer)
	}
	if !e.knownEmpty(passer) {
		return fmt.Errorf("%w: seat %d", ErrHandNotEmpty, passer)
	}
	if next == passer || TeamOf(next) != TeamOf(passer) {
		return fmt.Errorf("%w: cannot pass to seat %d", ErrWrongTeam, next)
	}
	if e.knownEmpty(next) {
		return fmt.Errorf("%w: seat %d has no cards", ErrEmptyHand, next)
	}

	e.state.Asker = Some(next)
	e.state.Phase = PhaseAsk
	return nil
}

// ReorderHand moves a card within a visible hand. It only changes display
// order and is not part of the shared game.
func (e *Engine) ReorderHand(seat Seat, from, to int) error {
	if err := e.checkSeat(seat); err != nil {
		return err
	}
	hand := e.state.HandOf[seat]
	if hand == nil {
		return fmt.Errorf("%w: seat %d hand is hidden", ErrBadSeat, seat)
	}
	return hand.Move(from, to)
}

// SetHandSorted toggles keep-sorted on a visible hand
func (e *Engine) SetHandSorted(seat Seat, sorted bool) error {
	if err := e.checkSeat(seat); err != nil {
		return err
	}
	hand := e.state.HandOf[seat]
	if hand == nil {
		return fmt.Errorf("%w: seat %d hand is hidden", ErrBadSeat, seat)
	}
	hand.SetSorted(sorted)
	return nil
}
