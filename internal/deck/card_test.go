package deck

import (
	"encoding/json"
	"testing"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Card
		wantErr  bool
	}{
		{name: "two of clubs", input: "2C", expected: Card{Suit: Clubs, Rank: Two}},
		{name: "ten digits", input: "10d", expected: Card{Suit: Diamonds, Rank: Ten}},
		{name: "ten letter", input: "TD", expected: Card{Suit: Diamonds, Rank: Ten}},
		{name: "queen of hearts", input: "qh", expected: Card{Suit: Hearts, Rank: Queen}},
		{name: "black joker", input: "BJ", expected: Card{Suit: Joker, Rank: Black}},
		{name: "red joker", input: "rj", expected: Card{Suit: Joker, Rank: Red}},
		{name: "invalid rank", input: "1S", wantErr: true},
		{name: "rank too high", input: "15S", wantErr: true},
		{name: "invalid suit", input: "AX", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCard() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseCard() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCodeRoundTrip(t *testing.T) {
	for _, c := range FullDeck() {
		parsed, err := ParseCard(c.Code())
		if err != nil {
			t.Fatalf("ParseCard(%q) failed: %v", c.Code(), err)
		}
		if parsed != c {
			t.Errorf("ParseCard(%q) = %v, want %v", c.Code(), parsed, c)
		}
	}
}

func TestNewCardRejectsInvalid(t *testing.T) {
	if _, err := NewCard(Joker, Ace); err == nil {
		t.Error("joker with a standard rank should be rejected")
	}
	if _, err := NewCard(Hearts, Red); err == nil {
		t.Error("hearts with a joker rank should be rejected")
	}
	if _, err := NewCard(Suit(9), Two); err == nil {
		t.Error("unknown suit should be rejected")
	}
}

func TestGroupClassification(t *testing.T) {
	tests := []struct {
		card Card
		want Group
	}{
		{Card{Suit: Clubs, Rank: Two}, LowClubs},
		{Card{Suit: Clubs, Rank: Seven}, LowClubs},
		{Card{Suit: Clubs, Rank: Eight}, Eights},
		{Card{Suit: Clubs, Rank: Nine}, HighClubs},
		{Card{Suit: Diamonds, Rank: Ace}, HighDiamonds},
		{Card{Suit: Spades, Rank: Three}, LowSpades},
		{Card{Suit: Hearts, Rank: King}, HighHearts},
		{Card{Suit: Hearts, Rank: Eight}, Eights},
		{Card{Suit: Joker, Rank: Black}, Eights},
		{Card{Suit: Joker, Rank: Red}, Eights},
	}

	for _, tt := range tests {
		if got := tt.card.Group(); got != tt.want {
			t.Errorf("%v.Group() = %v, want %v", tt.card, got, tt.want)
		}
	}
}

func TestFullDeck(t *testing.T) {
	cards := FullDeck()
	if len(cards) != DeckSize {
		t.Fatalf("FullDeck() has %d cards, want %d", len(cards), DeckSize)
	}

	seen := make(map[Card]bool)
	perGroup := make(map[Group]int)
	for _, c := range cards {
		if seen[c] {
			t.Errorf("duplicate card %v", c)
		}
		seen[c] = true
		perGroup[c.Group()]++
	}
	for _, g := range Groups() {
		if perGroup[g] != GroupSize {
			t.Errorf("group %v has %d cards, want %d", g, perGroup[g], GroupSize)
		}
	}

	if cards[0] != (Card{Suit: Clubs, Rank: Two}) {
		t.Errorf("first card = %v, want 2♣", cards[0])
	}
	if cards[DeckSize-1] != (Card{Suit: Joker, Rank: Red}) {
		t.Errorf("last card = %v, want Red Joker", cards[DeckSize-1])
	}
}

func TestCompare(t *testing.T) {
	lowClub := Card{Suit: Clubs, Rank: Seven}
	highClub := Card{Suit: Clubs, Rank: Nine}
	eight := Card{Suit: Clubs, Rank: Eight}
	lowDiamond := Card{Suit: Diamonds, Rank: Two}

	if !Less(lowClub, highClub) {
		t.Error("low clubs should sort before high clubs")
	}
	if !Less(highClub, lowDiamond) {
		t.Error("high clubs should sort before low diamonds")
	}
	if !Less(lowDiamond, eight) {
		t.Error("eights should sort last")
	}
	if Compare(eight, eight) != 0 {
		t.Error("a card should compare equal to itself")
	}
}

func TestGroupCards(t *testing.T) {
	got := HighClubs.Cards()
	want := MustParseCards("9C 10C JC QC KC AC")
	if len(got) != len(want) {
		t.Fatalf("HighClubs.Cards() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("HighClubs.Cards()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	eights := Eights.Cards()
	if len(eights) != GroupSize {
		t.Fatalf("Eights.Cards() has %d cards", len(eights))
	}
	if eights[4] != (Card{Suit: Joker, Rank: Black}) || eights[5] != (Card{Suit: Joker, Rank: Red}) {
		t.Errorf("jokers should close the eights group, got %v", eights)
	}
}

func TestCardJSON(t *testing.T) {
	c := Card{Suit: Hearts, Rank: Ten}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"suit":"hearts","rank":10}` {
		t.Errorf("json.Marshal(card) = %s", data)
	}

	owners := map[Card]int{c: 3}
	data, err = json.Marshal(owners)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"10H":3}` {
		t.Errorf("json.Marshal(map) = %s", data)
	}

	var decoded map[Card]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded[c] != 3 {
		t.Errorf("decoded map = %v", decoded)
	}

	var quoted Card
	if err := json.Unmarshal([]byte(`"RJ"`), &quoted); err != nil || quoted != (Card{Suit: Joker, Rank: Red}) {
		t.Errorf("json.Unmarshal(short code) = %v, %v", quoted, err)
	}

	var bad Card
	if err := json.Unmarshal([]byte(`"1S"`), &bad); err == nil {
		t.Error("decoding an invalid short code should fail")
	}
	if err := json.Unmarshal([]byte(`{"suit":"joker","rank":3}`), &bad); err == nil {
		t.Error("decoding an invalid card should fail")
	}
}

func TestParseGroup(t *testing.T) {
	for _, g := range Groups() {
		parsed, err := ParseGroup(g.Name())
		if err != nil || parsed != g {
			t.Errorf("ParseGroup(%q) = %v, %v", g.Name(), parsed, err)
		}
	}
	if _, err := ParseGroup("middle_clubs"); err == nil {
		t.Error("unknown group name should fail")
	}
}
