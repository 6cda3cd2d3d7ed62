package deck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Suit represents a card suit. The enumeration order is the deck order.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Spades
	Hearts
	Joker
)

// String returns the display symbol of a suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Joker:
		return "Joker"
	default:
		return "?"
	}
}

// Name returns the wire name of a suit
func (s Suit) Name() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Joker:
		return "joker"
	default:
		return ""
	}
}

// letter is the single-letter code used in short card codes
func (s Suit) letter() string {
	switch s {
	case Clubs:
		return "C"
	case Diamonds:
		return "D"
	case Spades:
		return "S"
	case Hearts:
		return "H"
	default:
		return ""
	}
}

// IsRed returns true for diamonds and hearts
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// MarshalText encodes a suit by name
func (s Suit) MarshalText() ([]byte, error) {
	name := s.Name()
	if name == "" {
		return nil, fmt.Errorf("invalid suit: %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a suit name
func (s *Suit) UnmarshalText(text []byte) error {
	for suit := Clubs; suit <= Joker; suit++ {
		if suit.Name() == strings.ToLower(string(text)) {
			*s = suit
			return nil
		}
	}
	return fmt.Errorf("invalid suit: %q", string(text))
}

// Rank represents a card rank. Jokers use Black and Red.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Black
	Red
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return strconv.Itoa(int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == Black:
		return "Black"
	case r == Red:
		return "Red"
	default:
		return "?"
	}
}

// Card is an immutable playing card value
type Card struct {
	Suit Suit
	Rank Rank
}

// Valid reports whether the suit and rank form a real card
func Valid(suit Suit, rank Rank) bool {
	switch {
	case suit == Joker:
		return rank == Black || rank == Red
	case suit >= Clubs && suit <= Hearts:
		return rank >= Two && rank <= Ace
	default:
		return false
	}
}

// NewCard creates a card, rejecting pairs that are not in the deck
func NewCard(suit Suit, rank Rank) (Card, error) {
	if !Valid(suit, rank) {
		return Card{}, fmt.Errorf("invalid card: suit %d rank %d", int(suit), int(rank))
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// MustCard is NewCard that panics, for tables and tests
func MustCard(suit Suit, rank Rank) Card {
	c, err := NewCard(suit, rank)
	if err != nil {
		panic(err)
	}
	return c
}

// Group returns the fish group the card belongs to
func (c Card) Group() Group {
	if c.Rank == Eight || c.Suit == Joker {
		return Eights
	}
	high := c.Rank > Eight
	switch c.Suit {
	case Clubs:
		if high {
			return HighClubs
		}
		return LowClubs
	case Diamonds:
		if high {
			return HighDiamonds
		}
		return LowDiamonds
	case Spades:
		if high {
			return HighSpades
		}
		return LowSpades
	default:
		if high {
			return HighHearts
		}
		return LowHearts
	}
}

// String returns the display form of a card (e.g. "10♣", "Red Joker")
func (c Card) String() string {
	if c.Suit == Joker {
		return c.Rank.String() + " " + c.Suit.String()
	}
	return c.Rank.String() + c.Suit.String()
}

// Code returns the short code of a card (e.g. "10C", "QH", "BJ")
func (c Card) Code() string {
	switch {
	case c.Suit == Joker && c.Rank == Black:
		return "BJ"
	case c.Suit == Joker:
		return "RJ"
	default:
		return c.Rank.String() + c.Suit.letter()
	}
}

// ParseCard parses a short code such as "2C", "10d", "TD" or "BJ"
func ParseCard(s string) (Card, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	switch code {
	case "BJ":
		return Card{Suit: Joker, Rank: Black}, nil
	case "RJ":
		return Card{Suit: Joker, Rank: Red}, nil
	}
	if len(code) < 2 {
		return Card{}, fmt.Errorf("invalid card: %q", s)
	}

	var suit Suit
	switch code[len(code)-1] {
	case 'C':
		suit = Clubs
	case 'D':
		suit = Diamonds
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	default:
		return Card{}, fmt.Errorf("invalid suit in card: %q", s)
	}

	var rank Rank
	switch r := code[:len(code)-1]; r {
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	case "T":
		rank = Ten
	default:
		n, err := strconv.Atoi(r)
		if err != nil {
			return Card{}, fmt.Errorf("invalid rank in card: %q", s)
		}
		rank = Rank(n)
	}

	return NewCard(suit, rank)
}

// ParseCards parses a whitespace or comma separated list of short codes
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards or panics, useful for tests
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// Compare orders cards by group, then suit, then rank
func Compare(a, b Card) int {
	if d := int(a.Group()) - int(b.Group()); d != 0 {
		return d
	}
	if d := int(a.Suit) - int(b.Suit); d != 0 {
		return d
	}
	return int(a.Rank) - int(b.Rank)
}

// Less reports whether a sorts before b
func Less(a, b Card) bool {
	return Compare(a, b) < 0
}

type cardJSON struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// MarshalJSON encodes a card as a (suit, rank) pair
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: c.Suit, Rank: c.Rank})
}

// UnmarshalJSON decodes a (suit, rank) pair and validates it. A quoted
// short code is accepted too, since encoding/json hands map keys to
// UnmarshalJSON rather than UnmarshalText.
func (c *Card) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var code string
		if err := json.Unmarshal(data, &code); err != nil {
			return err
		}
		return c.UnmarshalText([]byte(code))
	}
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	card, err := NewCard(raw.Suit, raw.Rank)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// MarshalText encodes a card as its short code; encoding/json uses this for map keys
func (c Card) MarshalText() ([]byte, error) {
	if !Valid(c.Suit, c.Rank) {
		return nil, fmt.Errorf("invalid card: %v", c)
	}
	return []byte(c.Code()), nil
}

// UnmarshalText decodes a short code
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}
