package player

import (
	"sort"

	mapset "github.com/deckarep/golang-set"
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/game"
	"voyager.com/hearts/internal/rules"
)

// ChoosePlay picks the card a bot plays. It follows with the lowest legal
// card and, when void in the lead suit, dumps its most dangerous card. If the
// checker allows nothing the lowest card is offered and the server decides.
func ChoosePlay(s rules.Situation) (card.Card, bool) {
	if len(s.Hand) == 0 {
		return card.Card{}, false
	}
	legal := rules.LegalCards(s)
	if len(legal) == 0 {
		return lowest(s.Hand), true
	}

	leading := s.LeadSuit == ""
	void := !leading && !hasSuit(s.Hand, s.LeadSuit)
	if void {
		return mostDangerous(legal), true
	}
	return lowest(legal), true
}

// ChoosePass returns the three cards a bot passes, in hand order.
func ChoosePass(hand []card.Card) []string {
	ranked := append([]card.Card(nil), hand...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return danger(ranked[i]) > danger(ranked[j])
	})

	chosen := mapset.NewSet()
	for _, c := range ranked {
		if chosen.Cardinality() == rules.PassCount {
			break
		}
		chosen.Add(c.ID)
	}

	ids := make([]string, 0, rules.PassCount)
	for _, c := range hand {
		if chosen.Contains(c.ID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// danger ranks how much a card is worth getting rid of.
func danger(c card.Card) int {
	switch {
	case c.IsQueenOfSpades():
		return 100
	case c.Suit == card.Spades && c.Value() > 12:
		return 50 + c.Value()
	case c.IsHeart():
		return 20 + c.Value()
	}
	return c.Value()
}

func mostDangerous(cards []card.Card) card.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if danger(c) > danger(best) {
			best = c
		}
	}
	return best
}

func lowest(cards []card.Card) card.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Value() < best.Value() {
			best = c
		}
	}
	return best
}

func hasSuit(cards []card.Card, suit card.Suit) bool {
	for _, c := range cards {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

func handCards(v game.View) []card.Card {
	cards := make([]card.Card, 0, len(v.MyHand))
	for _, hc := range v.MyHand {
		cards = append(cards, hc.Card)
	}
	return cards
}
