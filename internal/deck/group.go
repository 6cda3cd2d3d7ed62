package deck

import (
	"fmt"
	"slices"
)

// Group is one of the nine six-card sets that can be declared
type Group int

const (
	LowClubs Group = iota
	HighClubs
	LowDiamonds
	HighDiamonds
	LowSpades
	HighSpades
	LowHearts
	HighHearts
	Eights
)

// NumGroups is the number of declarable groups in a deck
const NumGroups = 9

// GroupSize is the number of cards in every group
const GroupSize = 6

// Groups lists every group in order
func Groups() []Group {
	groups := make([]Group, NumGroups)
	for i := range groups {
		groups[i] = Group(i)
	}
	return groups
}

// Valid reports whether g is a real group
func (g Group) Valid() bool {
	return g >= LowClubs && g <= Eights
}

// String returns the display name of a group (e.g. "High ♣")
func (g Group) String() string {
	switch g {
	case LowClubs:
		return "Low " + Clubs.String()
	case HighClubs:
		return "High " + Clubs.String()
	case LowDiamonds:
		return "Low " + Diamonds.String()
	case HighDiamonds:
		return "High " + Diamonds.String()
	case LowSpades:
		return "Low " + Spades.String()
	case HighSpades:
		return "High " + Spades.String()
	case LowHearts:
		return "Low " + Hearts.String()
	case HighHearts:
		return "High " + Hearts.String()
	case Eights:
		return "Eights"
	default:
		return "?"
	}
}

var groupNames = [NumGroups]string{
	"low_clubs", "high_clubs",
	"low_diamonds", "high_diamonds",
	"low_spades", "high_spades",
	"low_hearts", "high_hearts",
	"eights",
}

// Name returns the wire name of a group (e.g. "high_clubs")
func (g Group) Name() string {
	if !g.Valid() {
		return ""
	}
	return groupNames[g]
}

// ParseGroup parses a wire name
func ParseGroup(s string) (Group, error) {
	for i, name := range groupNames {
		if name == s {
			return Group(i), nil
		}
	}
	return 0, fmt.Errorf("invalid group: %q", s)
}

// MarshalText encodes a group by wire name
func (g Group) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid group: %d", int(g))
	}
	return []byte(g.Name()), nil
}

// UnmarshalText decodes a group wire name
func (g *Group) UnmarshalText(text []byte) error {
	group, err := ParseGroup(string(text))
	if err != nil {
		return err
	}
	*g = group
	return nil
}

// Cards returns the six cards of the group in sort order
func (g Group) Cards() []Card {
	var cards []Card
	for _, c := range FullDeck() {
		if c.Group() == g {
			cards = append(cards, c)
		}
	}
	slices.SortFunc(cards, Compare)
	return cards
}
