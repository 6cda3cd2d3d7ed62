package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrDuplicateCard = errors.New("card already in hand")
	ErrCardNotInHand = errors.New("card not in hand")
	ErrBadIndex      = errors.New("index out of range")
)

// Hand is an ordered collection of unique cards held by one seat
type Hand struct {
	cards  []Card
	sorted bool
}

// NewHand creates a hand holding the given cards in order
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, 0, len(cards))}
	for _, c := range cards {
		if !h.Contains(c) {
			h.cards = append(h.cards, c)
		}
	}
	return h
}

// Len returns the number of cards in the hand
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the cards in hand order
func (h *Hand) Cards() []Card {
	return slices.Clone(h.cards)
}

// IsSorted reports whether the keep-sorted flag is set
func (h *Hand) IsSorted() bool {
	return h.sorted
}

// Contains reports whether the hand holds the card
func (h *Hand) Contains(c Card) bool {
	return slices.Contains(h.cards, c)
}

// HasGroup reports whether the hand holds any card of the group
func (h *Hand) HasGroup(g Group) bool {
	return slices.ContainsFunc(h.cards, func(c Card) bool { return c.Group() == g })
}

// Insert adds a card, keeping sort order when the hand is sorted
func (h *Hand) Insert(c Card) error {
	if h.Contains(c) {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
	}
	if !h.sorted {
		h.cards = append(h.cards, c)
		return nil
	}
	i, _ := slices.BinarySearchFunc(h.cards, c, Compare)
	h.cards = slices.Insert(h.cards, i, c)
	return nil
}

// Remove takes a card out of the hand
func (h *Hand) Remove(c Card) error {
	i := slices.Index(h.cards, c)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, c)
	}
	h.cards = slices.Delete(h.cards, i, i+1)
	return nil
}

// RemoveGroup strips every card of the group and returns them
func (h *Hand) RemoveGroup(g Group) []Card {
	var removed []Card
	h.cards = slices.DeleteFunc(h.cards, func(c Card) bool {
		if c.Group() == g {
			removed = append(removed, c)
			return true
		}
		return false
	})
	return removed
}

// Move repositions the card at index from to index to
func (h *Hand) Move(from, to int) error {
	if from < 0 || from >= len(h.cards) || to < 0 || to >= len(h.cards) {
		return fmt.Errorf("%w: move %d to %d with %d cards", ErrBadIndex, from, to, len(h.cards))
	}
	c := h.cards[from]
	h.cards = slices.Delete(h.cards, from, from+1)
	h.cards = slices.Insert(h.cards, to, c)
	// A manual reorder drops the keep-sorted guarantee.
	h.sorted = false
	return nil
}

// Sort stably orders the hand by card comparison order
func (h *Hand) Sort() {
	slices.SortStableFunc(h.cards, Compare)
}

// SetSorted sets the keep-sorted flag, sorting immediately when enabled
func (h *Hand) SetSorted(sorted bool) {
	h.sorted = sorted
	if sorted {
		h.Sort()
	}
}

// Clone returns an independent copy of the hand
func (h *Hand) Clone() *Hand {
	if h == nil {
		return nil
	}
	return &Hand{cards: slices.Clone(h.cards), sorted: h.sorted}
}

// String lists the cards for logging
func (h *Hand) String() string {
	return fmt.Sprint(h.cards)
}

type handJSON struct {
	Cards  []Card `json:"cards"`
	Sorted bool   `json:"sorted"`
}

// MarshalJSON encodes the hand as its card list and sort flag
func (h *Hand) MarshalJSON() ([]byte, error) {
	cards := h.cards
	if cards == nil {
		cards = []Card{}
	}
	return json.Marshal(handJSON{Cards: cards, Sorted: h.sorted})
}

// UnmarshalJSON decodes a hand, rejecting duplicate cards
func (h *Hand) UnmarshalJSON(data []byte) error {
	var raw handJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := NewHand(raw.Cards...)
	if decoded.Len() != len(raw.Cards) {
		return ErrDuplicateCard
	}
	decoded.sorted = raw.Sorted
	*h = *decoded
	return nil
}
