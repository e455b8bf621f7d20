package rules

import (
	"voyager.com/hearts/internal/card"
)

// FullHand is the number of cards dealt to each player.
const FullHand = 13

// Rejection reasons shown to the player.
const (
	ReasonMustLeadTwoOfClubs string = "must lead 2♣"
	ReasonMustFollowSuit     string = "must follow suit"
	ReasonHeartsNotBroken    string = "hearts not broken"
	ReasonNoPointsFirstTrick string = "no point cards on first trick"
)

// Situation is the part of the table the checker looks at. LeadSuit is
// empty while nobody has played to the current trick.
type Situation struct {
	Hand         []card.Card
	LeadSuit     card.Suit
	HeartsBroken bool
	FirstTrick   bool
}

// Verdict is the outcome of a check. Reason is empty when Legal is true.
type Verdict struct {
	Legal  bool
	Reason string
}

var legal = Verdict{Legal: true}

func reject(reason string) Verdict {
	return Verdict{Legal: false, Reason: reason}
}

// IsFirstTrick is true while the viewer still holds a full hand and no trick
// of the round has been resolved.
func IsFirstTrick(handSize int, tricksCompleted int) bool {
	return handSize == FullHand && tricksCompleted == 0
}

// Check decides whether candidate may be played. Rules are evaluated in order
// and the first failing rule wins.
//
// Leading hearts before they are broken is rejected even when the hand holds
// nothing but hearts; the server's decision governs that case.
func Check(candidate card.Card, s Situation) Verdict {
	leading := s.LeadSuit == ""

	if s.FirstTrick && leading && !candidate.IsTwoOfClubs() {
		return reject(ReasonMustLeadTwoOfClubs)
	}

	if !leading && candidate.Suit != s.LeadSuit && hasSuit(s.Hand, s.LeadSuit) {
		return reject(ReasonMustFollowSuit)
	}

	if leading && candidate.IsHeart() && !s.HeartsBroken {
		return reject(ReasonHeartsNotBroken)
	}

	if s.FirstTrick && !leading && candidate.IsPointCard() && hasSafeFollow(s.Hand, s.LeadSuit) {
		return reject(ReasonNoPointsFirstTrick)
	}

	return legal
}

// LegalCards returns the cards of the hand that pass Check, in hand order.
func LegalCards(s Situation) []card.Card {
	cards := make([]card.Card, 0, len(s.Hand))
	for _, c := range s.Hand {
		if Check(c, s).Legal {
			cards = append(cards, c)
		}
	}
	return cards
}

func hasSuit(hand []card.Card, suit card.Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// hasSafeFollow is true when the hand can follow the lead with a card that
// carries no points.
func hasSafeFollow(hand []card.Card, suit card.Suit) bool {
	for _, c := range hand {
		if c.Suit == suit && !c.IsPointCard() {
			return true
		}
	}
	return false
}
