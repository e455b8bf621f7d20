package player

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/rules"
)

func TestChoosePlay(t *testing.T) {
	tests := []struct {
		name string
		s    rules.Situation
		want string
	}{
		{
			name: "opening lead",
			s: rules.Situation{
				Hand:       card.MustParseAll("A♣", "2♣", "3♦", "4♦", "5♦", "6♦", "7♦", "8♦", "9♦", "10♦", "J♦", "Q♦", "K♦"),
				FirstTrick: true,
			},
			want: "2♣",
		},
		{
			name: "follow low",
			s: rules.Situation{
				Hand:     card.MustParseAll("K♦", "5♦", "2♠"),
				LeadSuit: card.Diamonds,
			},
			want: "5♦",
		},
		{
			name: "void dumps queen",
			s: rules.Situation{
				Hand:     card.MustParseAll("3♣", "Q♠", "A♥"),
				LeadSuit: card.Diamonds,
			},
			want: "Q♠",
		},
		{
			name: "lead avoids unbroken hearts",
			s: rules.Situation{
				Hand:     card.MustParseAll("2♥", "9♣"),
				LeadSuit: "",
			},
			want: "9♣",
		},
		{
			name: "only hearts falls back to lowest",
			s: rules.Situation{
				Hand: card.MustParseAll("9♥", "4♥"),
			},
			want: "4♥",
		},
	}
	for _, test := range tests {
		got, ok := ChoosePlay(test.s)
		if !ok || got.ID != test.want {
			t.Errorf("%s: ChoosePlay = %s, %v; want %s", test.name, got.ID, ok, test.want)
		}
	}

	if _, ok := ChoosePlay(rules.Situation{}); ok {
		t.Errorf("ChoosePlay with an empty hand should not pick a card")
	}
}

func TestChoosePass(t *testing.T) {
	hand := card.MustParseAll("2♣", "Q♠", "3♦", "A♥", "4♣", "K♠", "5♦")
	got := ChoosePass(hand)
	want := []string{"Q♠", "A♥", "K♠"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChoosePass mismatch (-want +got):\n%s", diff)
	}
}
