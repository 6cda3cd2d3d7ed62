package fish

// RedactFor returns the state as seen by user u: every hand except u's own
// is hidden, and under the secret hand size rule only zero sizes and u's own
// size remain. Redacting an already redacted state for the same viewer
// returns it unchanged.
func (e *Engine) RedactFor(u UserID) State {
	s := e.state.Clone()
	s.Viewer = Some(u)
	own, seated := e.SeatOf(u)
	for seat := range s.HandOf {
		if seated && Seat(seat) == own {
			continue
		}
		s.HandOf[seat] = nil
		s.HandSize[seat] = redactSize(s.Rules.HandSize, s.HandSize[seat])
	}
	return s
}

// PublicHandSizes returns the sizes any viewer may see for seats other than
// their own
func (e *Engine) PublicHandSizes() []Opt[int] {
	sizes := make([]Opt[int], len(e.state.HandSize))
	for seat, size := range e.state.HandSize {
		sizes[seat] = redactSize(e.state.Rules.HandSize, size)
	}
	return sizes
}

func redactSize(rule HandSizeRule, size Opt[int]) Opt[int] {
	if rule == HandSizePublic {
		return size
	}
	if n, ok := size.Get(); ok && n == 0 {
		return size
	}
	return None[int]()
}
