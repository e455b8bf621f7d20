package card

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type Suit string

const (
	Clubs    Suit = "♣"
	Diamonds Suit = "♦"
	Hearts   Suit = "♥"
	Spades   Suit = "♠"
)

type Rank string

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Wire tokens with special meaning.
const (
	TwoOfClubs    string = "2♣"
	QueenOfSpades string = "Q♠"
)

var ErrEmptyToken = errors.New("empty card token")

var rankValues = map[Rank]int{
	Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7, Eight: 8,
	Nine: 9, Ten: 10, Jack: 11, Queen: 12, King: 13, Ace: 14,
}

var suitNames = map[string]Suit{
	"clubs":    Clubs,
	"diamonds": Diamonds,
	"hearts":   Hearts,
	"spades":   Spades,
}

// Card is an immutable playing card. ID is the wire token and the identity.
type Card struct {
	Rank Rank
	Suit Suit
	ID   string
}

// Parse splits a wire token into rank (everything but the last character)
// and suit (the last character). Anything non-empty is accepted verbatim.
func Parse(token string) (Card, error) {
	if token == "" {
		return Card{}, ErrEmptyToken
	}
	suit, size := utf8.DecodeLastRuneInString(token)
	return Card{
		Rank: Rank(token[:len(token)-size]),
		Suit: Suit(string(suit)),
		ID:   token,
	}, nil
}

// ParseAll parses a list of tokens, skipping empty ones.
func ParseAll(tokens []string) []Card {
	cards := make([]Card, 0, len(tokens))
	for _, t := range tokens {
		c, err := Parse(t)
		if err != nil {
			continue
		}
		cards = append(cards, c)
	}
	return cards
}

// ParseSuit accepts a suit glyph or a suit name ("Hearts", "clubs").
func ParseSuit(s string) (Suit, bool) {
	switch Suit(s) {
	case Clubs, Diamonds, Hearts, Spades:
		return Suit(s), true
	}
	suit, ok := suitNames[strings.ToLower(strings.TrimSpace(s))]
	return suit, ok
}

func (c Card) String() string {
	return c.ID
}

func (c Card) Equal(o Card) bool {
	return c.ID == o.ID
}

func (c Card) IsTwoOfClubs() bool {
	return c.ID == TwoOfClubs
}

func (c Card) IsQueenOfSpades() bool {
	return c.ID == QueenOfSpades
}

func (c Card) IsHeart() bool {
	return c.Suit == Hearts
}

// IsPointCard is true for every heart and the queen of spades.
func (c Card) IsPointCard() bool {
	return c.IsHeart() || c.IsQueenOfSpades()
}

// Points is the penalty value of the card.
func (c Card) Points() int {
	switch {
	case c.IsHeart():
		return 1
	case c.IsQueenOfSpades():
		return 13
	}
	return 0
}

// Value orders ranks 2..A as 2..14. Unknown ranks are 0.
func (c Card) Value() int {
	return rankValues[c.Rank]
}

// IndexOf returns the position of the card id, or -1.
func IndexOf(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the wire tokens of cards.
func IDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
