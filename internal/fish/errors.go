package fish

import "errors"

// Every rejected transition wraps one of these, so callers can match with
// errors.Is while still getting a specific message.
var (
	ErrUnknownUser      = errors.New("unknown user")
	ErrDuplicateUser    = errors.New("user already in room")
	ErrBadSeat          = errors.New("no such seat")
	ErrSeatTaken        = errors.New("seat is taken")
	ErrSeatEmpty        = errors.New("seat is empty")
	ErrAlreadySeated    = errors.New("user is already seated")
	ErrNotSeated        = errors.New("user is not seated")
	ErrWrongPhase       = errors.New("not allowed in this phase")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrSameTeam         = errors.New("seat is on your team")
	ErrWrongTeam        = errors.New("seat is not on your team")
	ErrInvalidRules     = errors.New("invalid rules")
	ErrTableNotFull     = errors.New("table is not full")
	ErrIllegalAsk       = errors.New("illegal ask")
	ErrEmptyHand        = errors.New("hand is empty")
	ErrHandNotEmpty     = errors.New("hand is not empty")
	ErrAlreadyDeclared  = errors.New("group already declared")
	ErrDishonestAnswer  = errors.New("answer does not match hand")
	ErrIncompleteClaim  = errors.New("declare must assign every card of the group")
	ErrAuthoritative    = errors.New("only a mirror accepts server results")
	ErrMalformedState   = errors.New("malformed state")
	ErrUnknownRule      = errors.New("unknown rule")
	ErrUnknownRuleValue = errors.New("unknown rule value")
)
