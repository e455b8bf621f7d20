package game

import (
	"context"

	mapset "github.com/deckarep/golang-set"
	"github.com/rs/zerolog"
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/metrics"
	"voyager.com/hearts/internal/rules"
	"voyager.com/hearts/internal/seat"
)

const (
	PromptSelectThree   = "must select exactly 3"
	PromptWaitingOnPass = "Cards passed. Waiting for the other players"
)

// Sender delivers an outbound intent over the game channel.
type Sender interface {
	Send(ctx context.Context, v interface{}) error
}

// Dispatcher turns player actions into intents. Actions are checked against
// the store's current state first; only actions that pass are sent.
type Dispatcher struct {
	store  *Store
	sender Sender
	logger *zerolog.Logger
}

func NewDispatcher(store *Store, sender Sender) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sender: sender,
		logger: store.logger,
	}
}

// Situation describes the table for the legality checker from the viewer's
// point of view. A completed trick still on display counts as no trick.
func (s *GameState) Situation() rules.Situation {
	lead := s.LeadSuit
	if len(s.Trick) >= seat.TableSize {
		lead = ""
	}
	return rules.Situation{
		Hand:         s.handCards(),
		LeadSuit:     lead,
		HeartsBroken: s.HeartsBroken,
		FirstTrick:   rules.IsFirstTrick(len(s.MyHand), s.TricksCompleted),
	}
}

// Situation returns the legality situation for the current state.
func (st *Store) Situation() rules.Situation {
	st.lock.Lock()
	defer st.lock.Unlock()
	return st.state.Situation()
}

// PlayCard sends a play_card intent if it is the viewer's turn and the card
// is legal. An illegal card only sets the prompt to the reason. It returns
// whether an intent was sent.
func (d *Dispatcher) PlayCard(ctx context.Context, cardID string) (bool, error) {
	sent := false
	d.store.update(func(s *GameState) []deferred {
		if s.Phase != PhasePlaying || !s.MyTurn {
			return nil
		}
		hand := s.handCards()
		idx := card.IndexOf(hand, cardID)
		if idx < 0 {
			d.logger.Warn().Msgf("Card [%s] is not in hand", cardID)
			return nil
		}
		verdict := rules.Check(hand[idx], s.Situation())
		if !verdict.Legal {
			metrics.Metrics.IntentRejected(verdict.Reason)
			return []deferred{d.store.reducer.flash(s, verdict.Reason)}
		}
		s.MyTurn = false
		s.hidePrompt()
		sent = true
		return nil
	})
	if !sent {
		return false, nil
	}

	err := d.send(ctx, PlayCard(cardID))
	if err != nil {
		d.store.update(func(s *GameState) []deferred {
			if s.Phase == PhasePlaying && s.TurnUserID == s.ViewerID {
				s.MyTurn = true
			}
			return nil
		})
		d.sendFailed(err)
		return false, err
	}
	return true, nil
}

// PassCards sends the three selected cards. With any other number selected
// it only sets the prompt.
func (d *Dispatcher) PassCards(ctx context.Context) (bool, error) {
	var ids []string
	d.store.update(func(s *GameState) []deferred {
		if s.Phase != PhasePassing || s.Passed {
			return nil
		}
		selected := mapset.NewSet()
		for _, id := range s.selectedIDs() {
			selected.Add(id)
		}
		if selected.Cardinality() != rules.PassCount {
			metrics.Metrics.IntentRejected(PromptSelectThree)
			return []deferred{d.store.reducer.flash(s, PromptSelectThree)}
		}
		var picked []card.Card
		for _, hc := range s.MyHand {
			if selected.Contains(hc.ID) {
				picked = append(picked, hc.Card)
			}
		}
		ids = card.IDs(picked)
		s.Passed = true
		s.showPrompt(PromptWaitingOnPass)
		return nil
	})
	if ids == nil {
		return false, nil
	}

	err := d.send(ctx, PassCards(ids))
	if err != nil {
		d.store.update(func(s *GameState) []deferred {
			s.Passed = false
			return nil
		})
		d.sendFailed(err)
		return false, err
	}
	return true, nil
}

// ToggleSelect flips the pass selection of a card. Selecting a fourth card
// is refused. It returns whether the selection changed.
func (d *Dispatcher) ToggleSelect(cardID string) bool {
	changed := false
	d.store.update(func(s *GameState) []deferred {
		if s.Phase != PhasePassing || s.Passed {
			return nil
		}
		idx := -1
		for i, hc := range s.MyHand {
			if hc.ID == cardID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		if s.MyHand[idx].Selected {
			s.MyHand[idx].Selected = false
			changed = true
			return nil
		}
		if len(s.selectedIDs()) >= rules.PassCount {
			return nil
		}
		s.MyHand[idx].Selected = true
		changed = true
		return nil
	})
	return changed
}

// RequestInitialState asks the server to resend the full state.
func (d *Dispatcher) RequestInitialState(ctx context.Context) error {
	err := d.send(ctx, RequestInitialState())
	if err != nil {
		d.sendFailed(err)
	}
	return err
}

func (d *Dispatcher) send(ctx context.Context, intent Intent) error {
	d.logger.Debug().Str(logging.EventKey, intent.Event).Msg("Sending intent")
	err := d.sender.Send(ctx, intent)
	if err == nil {
		metrics.Metrics.IntentSent(intent.Event)
	}
	return err
}

// sendFailed surfaces a failed send the same way a server error is shown.
func (d *Dispatcher) sendFailed(err error) {
	d.logger.Error().Err(err).Msg("Unable to send intent")
	d.store.Apply(&Message{Event: ErrorEvent{Message: "Connection problem: " + err.Error()}})
}
