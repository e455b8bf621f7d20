package game

import (
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/seat"
)

type Phase string

const (
	PhaseConnecting Phase = "connecting"
	PhaseWaiting    Phase = "waiting"
	PhasePassing    Phase = "passing"
	PhasePlaying    Phase = "playing"
	PhaseRoundEnd   Phase = "round_end"
	PhaseFinished   Phase = "finished"
)

func parsePhase(s string) (Phase, bool) {
	switch Phase(s) {
	case PhaseConnecting, PhaseWaiting, PhasePassing, PhasePlaying, PhaseRoundEnd, PhaseFinished:
		return Phase(s), true
	}
	return "", false
}

// LoadStatus tracks the initial snapshot fetch.
type LoadStatus string

const (
	LoadPending  LoadStatus = "loading"
	LoadDone     LoadStatus = "loaded"
	LoadNotFound LoadStatus = "not_found"
	LoadFailed   LoadStatus = "failed"
)

type HandCard struct {
	card.Card
	Selected bool
}

type TrickEntry struct {
	PlayerID int
	Card     card.Card
}

type Prompt struct {
	Visible bool
	Message string
}

// GameState is the client's shadow of one table as seen by one viewer.
// It is mutated only by the reducer and the intent dispatcher, both under
// the owning Store's lock.
type GameState struct {
	GameID          int
	ViewerID        int
	Phase           Phase
	Players         []seat.Seat // rotated so the viewer is first
	Ready           bool        // viewer is seated
	MyHand          []HandCard
	Trick           []TrickEntry
	TurnUserID      int
	MyTurn          bool
	LeadSuit        card.Suit
	HeartsBroken    bool
	RoundNumber     int
	TricksCompleted int
	PassDirection   string
	Passed          bool
	Prompt          Prompt
	LoadStatus      LoadStatus
	Winner          string

	phases    *phaseMachine
	trickGen  int
	promptGen int
}

func newGameState(gameID, viewerID int, phases *phaseMachine) *GameState {
	return &GameState{
		GameID:     gameID,
		ViewerID:   viewerID,
		Phase:      PhaseConnecting,
		LoadStatus: LoadPending,
		phases:     phases,
	}
}

func (s *GameState) setPhase(p Phase) {
	s.Phase = s.phases.moveTo(p)
}

// showPrompt makes a message visible until something replaces or hides it.
// The returned generation identifies this message for delayed clears.
func (s *GameState) showPrompt(message string) int {
	s.promptGen++
	s.Prompt = Prompt{Visible: true, Message: message}
	return s.promptGen
}

func (s *GameState) hidePrompt() {
	s.promptGen++
	s.Prompt = Prompt{}
}

// hidePromptIf hides the prompt only if it is still the one shown at gen.
func (s *GameState) hidePromptIf(gen int) {
	if s.promptGen == gen {
		s.hidePrompt()
	}
}

func (s *GameState) setTrick(trick []TrickEntry) {
	if sameTrick(s.Trick, trick) {
		return
	}
	s.trickGen++
	s.Trick = trick
}

// resetRound clears the per-round bookkeeping.
func (s *GameState) resetRound() {
	s.TricksCompleted = 0
	s.HeartsBroken = false
	s.Passed = false
	s.PassDirection = ""
	for i := range s.MyHand {
		s.MyHand[i].Selected = false
	}
}

func (s *GameState) handCards() []card.Card {
	cards := make([]card.Card, 0, len(s.MyHand))
	for _, hc := range s.MyHand {
		cards = append(cards, hc.Card)
	}
	return cards
}

func (s *GameState) selectedIDs() []string {
	var ids []string
	for _, hc := range s.MyHand {
		if hc.Selected {
			ids = append(ids, hc.ID)
		}
	}
	return ids
}

func (s *GameState) removeFromHand(cardID string) bool {
	for i, hc := range s.MyHand {
		if hc.ID == cardID {
			s.MyHand = append(s.MyHand[:i:i], s.MyHand[i+1:]...)
			return true
		}
	}
	return false
}

func (s *GameState) username(userID int) string {
	if p, ok := seat.Find(s.Players, userID); ok {
		return p.Username
	}
	return ""
}

func sameTrick(a, b []TrickEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].PlayerID != b[i].PlayerID || !a[i].Card.Equal(b[i].Card) {
			return false
		}
	}
	return true
}

// View is an immutable copy of the state handed to consumers.
type View struct {
	GameID          int
	ViewerID        int
	Phase           Phase
	Players         []seat.Seat
	Ready           bool
	MyHand          []HandCard
	Trick           []TrickEntry
	TurnUserID      int
	MyTurn          bool
	LeadSuit        card.Suit
	HeartsBroken    bool
	RoundNumber     int
	TricksCompleted int
	PassDirection   string
	Passed          bool
	Prompt          Prompt
	LoadStatus      LoadStatus
	Winner          string
}

func (s *GameState) view() View {
	v := View{
		GameID:          s.GameID,
		ViewerID:        s.ViewerID,
		Phase:           s.Phase,
		Ready:           s.Ready,
		TurnUserID:      s.TurnUserID,
		MyTurn:          s.MyTurn,
		LeadSuit:        s.LeadSuit,
		HeartsBroken:    s.HeartsBroken,
		RoundNumber:     s.RoundNumber,
		TricksCompleted: s.TricksCompleted,
		PassDirection:   s.PassDirection,
		Passed:          s.Passed,
		Prompt:          s.Prompt,
		LoadStatus:      s.LoadStatus,
		Winner:          s.Winner,
	}
	v.Players = append([]seat.Seat(nil), s.Players...)
	v.MyHand = append([]HandCard(nil), s.MyHand...)
	v.Trick = append([]TrickEntry(nil), s.Trick...)
	return v
}

// IsViewerTurn reports whether the viewer may act in the playing phase.
func (v View) IsViewerTurn() bool {
	return v.Phase == PhasePlaying && v.MyTurn
}

func (v View) SelectedCount() int {
	n := 0
	for _, hc := range v.MyHand {
		if hc.Selected {
			n++
		}
	}
	return n
}

// TrickCardOf returns the card a player contributed to the visible trick.
func (v View) TrickCardOf(userID int) (card.Card, bool) {
	for _, e := range v.Trick {
		if e.PlayerID == userID {
			return e.Card, true
		}
	}
	return card.Card{}, false
}
