package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyager.com/hearts/internal/rules"
)

type fakeSender struct {
	sent []Intent
	err  error
}

func (f *fakeSender) Send(ctx context.Context, v interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, v.(Intent))
	return nil
}

func startPassing(st *Store, tokens ...string) {
	send(st, fmt.Sprintf(`{"event":"start_passing","direction":"left","state":{"hands":%s,"phase":"passing","round_number":1,"players":%s}}`,
		handJSON(tokens...), rosterJSON))
}

func TestPassCardsNeedsThreeSelected(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	startPassing(st, "2♣", "3♣", "4♣", "5♣")

	require.True(t, d.ToggleSelect("2♣"))
	require.True(t, d.ToggleSelect("3♣"))

	sent, err := d.PassCards(context.Background())
	assert.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, sender.sent)
	assert.Equal(t, Prompt{Visible: true, Message: PromptSelectThree}, st.View().Prompt)
}

func TestToggleSelectRefusesFourth(t *testing.T) {
	st, _ := newTestStore(t)
	d := NewDispatcher(st, &fakeSender{})
	startPassing(st, "2♣", "3♣", "4♣", "5♣")

	assert.True(t, d.ToggleSelect("2♣"))
	assert.True(t, d.ToggleSelect("3♣"))
	assert.True(t, d.ToggleSelect("4♣"))
	assert.False(t, d.ToggleSelect("5♣"))
	assert.Equal(t, 3, st.View().SelectedCount())

	assert.True(t, d.ToggleSelect("2♣"))
	assert.Equal(t, 2, st.View().SelectedCount())
	assert.True(t, d.ToggleSelect("5♣"))
	assert.Equal(t, 3, st.View().SelectedCount())

	assert.False(t, d.ToggleSelect("A♠"), "card not in hand")
}

func TestToggleSelectOutsidePassing(t *testing.T) {
	st, _ := newTestStore(t)
	d := NewDispatcher(st, &fakeSender{})
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`,
		playingState(handJSON("2♣", "K♦"), viewerID, "[]", "null")))

	assert.False(t, d.ToggleSelect("2♣"))
	assert.Equal(t, 0, st.View().SelectedCount())
}

func TestPassCardsSendsSelection(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	startPassing(st, "2♣", "3♣", "4♣", "5♣")

	d.ToggleSelect("5♣")
	d.ToggleSelect("2♣")
	d.ToggleSelect("4♣")

	sent, err := d.PassCards(context.Background())
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, PassCards([]string{"2♣", "4♣", "5♣"}), sender.sent[0])

	v := st.View()
	assert.True(t, v.Passed)
	assert.Equal(t, PromptWaitingOnPass, v.Prompt.Message)

	// A second pass in the same round is not sent.
	sent, _ = d.PassCards(context.Background())
	assert.False(t, sent)
	assert.Len(t, sender.sent, 1)
}

func TestPlayCardNotMyTurn(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`,
		playingState(handJSON("2♣", "K♦"), 3, "[]", "null")))

	sent, err := d.PlayCard(context.Background(), "K♦")
	assert.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, sender.sent)
}

func TestPlayCardIllegalSetsReason(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`,
		playingState(handJSON("3♥", "5♦"), viewerID, `[{"player_id":3,"card":"9♦"}]`, `"Diamonds"`)))

	sent, err := d.PlayCard(context.Background(), "3♥")
	assert.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, sender.sent)

	v := st.View()
	assert.Equal(t, rules.ReasonMustFollowSuit, v.Prompt.Message)
	assert.True(t, v.MyTurn)
}

func TestPlayCardLegal(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`,
		playingState(handJSON("3♥", "5♦"), viewerID, `[{"player_id":3,"card":"9♦"}]`, `"Diamonds"`)))
	send(st, `{"event":"your_turn","user_id":1}`)

	sent, err := d.PlayCard(context.Background(), "5♦")
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []Intent{PlayCard("5♦")}, sender.sent)

	v := st.View()
	assert.False(t, v.MyTurn)
	assert.False(t, v.Prompt.Visible)
	// Removal waits for the server echo.
	assert.Equal(t, []string{"3♥", "5♦"}, handIDs(v))
}

func TestPlayCardLeadsAfterCompletedTrick(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`,
		playingState(handJSON("K♦", "3♠"), 2, fullTrick(), `"Clubs"`)))
	send(st, `{"event":"trick_end","winner_id":1,"winner_username":"alice","points":1,"state":{"hearts_broken":true}}`)
	send(st, `{"event":"your_turn","user_id":1}`)

	// The finished clubs trick is still on display but the viewer is leading.
	sent, err := d.PlayCard(context.Background(), "K♦")
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestPlayCardSendFailure(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{err: errors.New("socket closed")}
	d := NewDispatcher(st, sender)
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`,
		playingState(handJSON("K♦"), viewerID, "[]", "null")))

	sent, err := d.PlayCard(context.Background(), "K♦")
	assert.Error(t, err)
	assert.False(t, sent)

	v := st.View()
	assert.True(t, v.MyTurn)
	assert.Equal(t, "Connection problem: socket closed", v.Prompt.Message)
}

func TestFirstTrickMustLeadTwoOfClubs(t *testing.T) {
	st, _ := newTestStore(t)
	sender := &fakeSender{}
	d := NewDispatcher(st, sender)
	hand := handJSON("2♣", "3♣", "4♣", "5♣", "6♣", "7♣", "8♣", "9♣", "10♣", "J♣", "Q♣", "K♣", "A♣")
	send(st, fmt.Sprintf(`{"event":"initial_state","state":%s}`, playingState(hand, viewerID, "[]", "null")))

	sent, _ := d.PlayCard(context.Background(), "A♣")
	assert.False(t, sent)
	assert.Equal(t, rules.ReasonMustLeadTwoOfClubs, st.View().Prompt.Message)

	sent, _ = d.PlayCard(context.Background(), "2♣")
	assert.True(t, sent)
}
