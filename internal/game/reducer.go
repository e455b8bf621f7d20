package game

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"voyager.com/hearts/internal/caches"
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/metrics"
	"voyager.com/hearts/internal/rules"
	"voyager.com/hearts/internal/seat"
)

// Game record statuses returned by the api server.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// Delays controls how long transient table elements stay visible.
type Delays struct {
	TrickEnd time.Duration
	Prompt   time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		TrickEnd: 2 * time.Second,
		Prompt:   3 * time.Second,
	}
}

// deferred is a state change that runs after a delay.
type deferred struct {
	after time.Duration
	apply func(s *GameState)
}

type reducer struct {
	logger *zerolog.Logger
	names  *caches.UsernameCache
	delays Delays
}

// apply folds one message into the state. It never fails: unreadable input
// is dropped and unknown events only contribute their snapshot. The returned
// effects must be scheduled by the caller.
func (r *reducer) apply(s *GameState, msg *Message) []deferred {
	if msg == nil || msg.Event == nil {
		return nil
	}
	ev := msg.Event

	switch ev.(type) {
	case StartPassing, StartPlaying:
		s.resetRound()
	}

	if msg.State != nil {
		_, preserveTrick := ev.(TrickEnd)
		r.mergeSnapshot(s, msg.State, preserveTrick)
	}

	if u, ok := ev.(Unknown); ok {
		metrics.Metrics.EventIgnored()
		r.logger.Debug().Str(logging.EventKey, u.Name).Msg("Ignoring unknown event")
		return nil
	}

	var effects []deferred
	switch ev := ev.(type) {
	case StartPassing:
		s.setPhase(PhasePassing)
		direction := ev.Direction
		if direction == "" {
			direction = rules.PassDirection(s.RoundNumber)
		}
		s.PassDirection = direction
		s.MyTurn = false
		s.showPrompt(r.passPrompt(s, direction))

	case CardsPassedUpdate:
		s.setPhase(PhasePlaying)
		s.Passed = false
		effects = append(effects, r.flash(s, "Cards passed. The game begins!"))

	case YourTurn:
		s.TurnUserID = ev.UserID
		if ev.UserID == s.ViewerID {
			s.MyTurn = true
			s.showPrompt("Your turn")
		} else {
			s.MyTurn = false
			s.showPrompt(fmt.Sprintf("Waiting for %s", r.nameOf(s, ev.UserID)))
		}

	case CardPlayed:
		if ev.PlayerID == s.ViewerID {
			s.removeFromHand(ev.Card)
			s.MyTurn = false
		}
		if ev.Trick != nil {
			s.setTrick(*ev.Trick)
		} else if c, err := card.Parse(ev.Card); err == nil {
			var trick []TrickEntry
			// a completed trick still on display is replaced, not extended
			if len(s.Trick) < seat.TableSize {
				trick = append(trick, s.Trick...)
			}
			s.setTrick(append(trick, TrickEntry{PlayerID: ev.PlayerID, Card: c}))
		}
		if (msg.State == nil || msg.State.LeadSuit == nil) && len(s.Trick) > 0 {
			s.LeadSuit = s.Trick[0].Card.Suit
		}

	case TrickEnd:
		s.TricksCompleted++
		message := fmt.Sprintf("%s takes the trick", r.winnerName(s, ev))
		if ev.WinnerID != 0 && ev.WinnerID == s.ViewerID {
			message = "You take the trick"
		}
		points := trickPoints(s.Trick)
		if ev.Points != nil {
			points = *ev.Points
		}
		if points > 0 {
			message = fmt.Sprintf("%s (%d points)", message, points)
		}
		effects = append(effects, r.clearTrick(s, s.showPrompt(message)))

	case ErrorEvent:
		effects = append(effects, r.flash(s, ev.Message))

	case InitialState:
		s.MyTurn = s.Phase == PhasePlaying && s.TurnUserID != 0 && s.TurnUserID == s.ViewerID

	case StartPlaying:
		s.setPhase(PhasePlaying)
		s.PassDirection = rules.PassHold
		effects = append(effects, r.flash(s, "No passing this round"))

	case GameStarting:
		r.mergeSummary(s, ev.Game)
		if s.Phase == PhaseConnecting {
			s.setPhase(PhaseWaiting)
		}

	case PlayerUpdate:
		r.mergeSummary(s, ev.Game)

	case GameOver:
		s.Winner = ev.Winner
		s.MyTurn = false
		s.setPhase(PhaseFinished)
		s.showPrompt(fmt.Sprintf("Game over. %s wins!", ev.Winner))
	}
	metrics.Metrics.EventApplied(ev.Tag())
	return effects
}

func (r *reducer) mergeSnapshot(s *GameState, snap *Snapshot, preserveTrick bool) {
	if snap.Players != nil {
		r.setRoster(s, *snap.Players)
	}
	if snap.RoundNumber != nil && *snap.RoundNumber != s.RoundNumber {
		if s.RoundNumber != 0 {
			s.resetRound()
		}
		s.RoundNumber = *snap.RoundNumber
	}
	if snap.Phase != nil {
		s.setPhase(*snap.Phase)
	}
	if tokens, ok := snap.Hands[strconv.Itoa(s.ViewerID)]; ok {
		s.MyHand = mergeHand(s.MyHand, card.ParseAll(tokens))
	}
	if snap.TurnUserID != nil {
		s.TurnUserID = *snap.TurnUserID
	}
	if !preserveTrick {
		if snap.Trick != nil {
			s.setTrick(*snap.Trick)
		}
		if snap.LeadSuit != nil {
			s.LeadSuit = *snap.LeadSuit
		}
	}
	if snap.HeartsBroken != nil {
		s.HeartsBroken = *snap.HeartsBroken
	}
	if snap.Players != nil {
		r.checkRoster(s)
	}
}

func (r *reducer) mergeSummary(s *GameState, summary *GameSummary) {
	if summary == nil {
		return
	}
	r.setRoster(s, summary.Seats())
	if summary.Status == StatusFinished {
		s.setPhase(PhaseFinished)
	}
	if summary.Status == StatusInProgress {
		r.checkRoster(s)
	}
}

// checkRoster warns about a roster that cannot describe an active table.
func (r *reducer) checkRoster(s *GameState) {
	switch s.Phase {
	case PhaseConnecting, PhaseWaiting, PhaseFinished:
		return
	}
	if !seat.IsComplete(s.Players) {
		r.logger.Warn().Str(logging.PhaseKey, string(s.Phase)).
			Msgf("Incomplete roster of %d players in an active game", len(s.Players))
	}
}

func (r *reducer) passPrompt(s *GameState, direction string) string {
	if direction == "" || direction == rules.PassHold {
		return "No passing this round"
	}
	message := fmt.Sprintf("Select 3 cards to pass %s", direction)
	if to, ok := rules.PassRecipient(s.Players, s.ViewerID, direction); ok {
		message = fmt.Sprintf("%s to %s", message, to.Username)
	}
	return message
}

func trickPoints(trick []TrickEntry) int {
	points := 0
	for _, e := range trick {
		points += e.Card.Points()
	}
	return points
}

func (r *reducer) setRoster(s *GameState, players []seat.Seat) {
	for _, p := range players {
		r.names.Add(p.UserID, p.Username)
	}
	s.Players, s.Ready = seat.Rotate(players, s.ViewerID)
}

// mergeHand replaces the hand, keeping the selection of cards that remain.
func mergeHand(old []HandCard, cards []card.Card) []HandCard {
	selected := make(map[string]bool)
	for _, hc := range old {
		if hc.Selected {
			selected[hc.ID] = true
		}
	}
	hand := make([]HandCard, 0, len(cards))
	for _, c := range cards {
		hand = append(hand, HandCard{Card: c, Selected: selected[c.ID]})
	}
	return hand
}

// flash shows a prompt that hides itself after the prompt delay.
func (r *reducer) flash(s *GameState, message string) deferred {
	gen := s.showPrompt(message)
	return deferred{
		after: r.delays.Prompt,
		apply: func(s *GameState) { s.hidePromptIf(gen) },
	}
}

// clearTrick keeps the completed trick on the table for the trick-end delay.
// The clear is skipped if a newer trick has replaced it in the meantime.
func (r *reducer) clearTrick(s *GameState, promptGen int) deferred {
	trickGen := s.trickGen
	return deferred{
		after: r.delays.TrickEnd,
		apply: func(s *GameState) {
			if s.trickGen == trickGen {
				s.setTrick(nil)
				s.LeadSuit = ""
			}
			s.hidePromptIf(promptGen)
			if s.Phase == PhasePlaying && len(s.MyHand) == 0 {
				s.setPhase(PhaseRoundEnd)
			}
		},
	}
}

func (r *reducer) winnerName(s *GameState, ev TrickEnd) string {
	if ev.WinnerUsername != "" {
		return ev.WinnerUsername
	}
	return r.nameOf(s, ev.WinnerID)
}

func (r *reducer) nameOf(s *GameState, userID int) string {
	if userID == s.ViewerID {
		return "you"
	}
	if name := s.username(userID); name != "" {
		return name
	}
	if name, ok := r.names.Get(userID); ok {
		return name
	}
	return fmt.Sprintf("player %d", userID)
}
