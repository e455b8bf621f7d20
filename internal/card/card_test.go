package card

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRoundTrip(t *testing.T) {
	ranks := []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
	suits := []Suit{Clubs, Diamonds, Hearts, Spades}
	for _, r := range ranks {
		for _, s := range suits {
			token := string(r) + string(s)
			c, err := Parse(token)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", token, err)
			}
			if c.ID != token {
				t.Errorf("Parse(%q).ID = %q", token, c.ID)
			}
			if c.Rank != r || c.Suit != s {
				t.Errorf("Parse(%q) = (%q, %q), expected (%q, %q)", token, c.Rank, c.Suit, r, s)
			}
		}
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		token    string
		expected Card
	}{
		{token: "10♥", expected: Card{Rank: Ten, Suit: Hearts, ID: "10♥"}},
		{token: "2♣", expected: Card{Rank: Two, Suit: Clubs, ID: "2♣"}},
		{token: "♠", expected: Card{Rank: "", Suit: Spades, ID: "♠"}},
		{token: "Zx", expected: Card{Rank: "Z", Suit: "x", ID: "Zx"}},
	}
	for _, tc := range testCases {
		c, err := Parse(tc.token)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tc.token, err)
		}
		if diff := cmp.Diff(tc.expected, c); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.token, diff)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	if err != ErrEmptyToken {
		t.Errorf("Parse(\"\") error = %v, expected %v", err, ErrEmptyToken)
	}
}

func TestParseSuit(t *testing.T) {
	testCases := []struct {
		in       string
		expected Suit
		ok       bool
	}{
		{"♥", Hearts, true},
		{"Hearts", Hearts, true},
		{"clubs", Clubs, true},
		{"Spades", Spades, true},
		{"Diamonds", Diamonds, true},
		{"Trumps", "", false},
	}
	for _, tc := range testCases {
		s, ok := ParseSuit(tc.in)
		if s != tc.expected || ok != tc.ok {
			t.Errorf("ParseSuit(%q) = (%q, %v), expected (%q, %v)", tc.in, s, ok, tc.expected, tc.ok)
		}
	}
}

func TestPoints(t *testing.T) {
	if p := MustParse("Q♠").Points(); p != 13 {
		t.Errorf("Q♠ points = %d", p)
	}
	if p := MustParse("A♥").Points(); p != 1 {
		t.Errorf("A♥ points = %d", p)
	}
	if p := MustParse("K♠").Points(); p != 0 {
		t.Errorf("K♠ points = %d", p)
	}
	if !MustParse("2♣").IsTwoOfClubs() {
		t.Error("2♣ is not recognized as the two of clubs")
	}
}

func TestParseAllSkipsEmpty(t *testing.T) {
	cards := ParseAll([]string{"2♣", "", "A♠"})
	if diff := cmp.Diff([]string{"2♣", "A♠"}, IDs(cards)); diff != "" {
		t.Errorf("ParseAll mismatch (-want +got):\n%s", diff)
	}
}
