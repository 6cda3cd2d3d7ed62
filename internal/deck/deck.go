package deck

import (
	rand "math/rand/v2"
)

// DeckSize is the number of cards in a full fish deck
const DeckSize = 54

// FullDeck enumerates every card: the four suits in order with ranks
// ascending, followed by the black and red jokers
func FullDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for suit := Clubs; suit <= Hearts; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{Suit: suit, Rank: rank})
		}
	}
	return append(cards, Card{Suit: Joker, Rank: Black}, Card{Suit: Joker, Rank: Red})
}

// Shuffle randomizes the order of cards in place
func Shuffle(cards []Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Deal splits cards round-robin into n hands: card i goes to hand i mod n
func Deal(cards []Card, n int) []*Hand {
	hands := make([]*Hand, n)
	for i := range hands {
		hands[i] = NewHand()
	}
	for i, c := range cards {
		// Cards come from a single deck so Insert cannot fail.
		_ = hands[i%n].Insert(c)
	}
	return hands
}
