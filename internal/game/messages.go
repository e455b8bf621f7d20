package game

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/seat"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Inbound event tags.
const (
	EventStartPassing      string = "start_passing"
	EventCardsPassedUpdate string = "cards_passed_update"
	EventYourTurn          string = "your_turn"
	EventCardPlayed        string = "card_played"
	EventTrickEnd          string = "trick_end"
	EventError             string = "error"
	EventInitialState      string = "initial_state"
	EventStartPlaying      string = "start_playing"
	EventGameStarting      string = "game_starting"
	EventPlayerUpdate      string = "player_update"
	EventGameOver          string = "game_over"
)

// Outbound intent tags.
const (
	IntentRequestInitialState string = "request_initial_state"
	IntentPlayCard            string = "play_card"
	IntentPassCards           string = "pass_cards"
)

// Intent is a player action sent to the server.
type Intent struct {
	Event string   `json:"event"`
	Card  string   `json:"card,omitempty"`
	Cards []string `json:"cards,omitempty"`
}

func RequestInitialState() Intent {
	return Intent{Event: IntentRequestInitialState}
}

func PlayCard(cardID string) Intent {
	return Intent{Event: IntentPlayCard, Card: cardID}
}

func PassCards(cardIDs []string) Intent {
	return Intent{Event: IntentPassCards, Cards: cardIDs}
}

// Event is one inbound message kind. The set of implementations is closed;
// tags this client does not know decode to Unknown.
type Event interface {
	Tag() string
	event()
}

type StartPassing struct{ Direction string }
type CardsPassedUpdate struct{}
type YourTurn struct{ UserID int }
type CardPlayed struct {
	PlayerID int
	Card     string
	Trick    *[]TrickEntry
}
type TrickEnd struct {
	WinnerID       int
	WinnerUsername string
	Points         *int // nil when the server did not score the trick
}
type ErrorEvent struct{ Message string }
type InitialState struct{}
type StartPlaying struct{}
type GameStarting struct{ Game *GameSummary }
type PlayerUpdate struct{ Game *GameSummary }
type GameOver struct{ Winner string }
type Unknown struct{ Name string }

func (StartPassing) Tag() string      { return EventStartPassing }
func (CardsPassedUpdate) Tag() string { return EventCardsPassedUpdate }
func (YourTurn) Tag() string          { return EventYourTurn }
func (CardPlayed) Tag() string        { return EventCardPlayed }
func (TrickEnd) Tag() string          { return EventTrickEnd }
func (ErrorEvent) Tag() string        { return EventError }
func (InitialState) Tag() string      { return EventInitialState }
func (StartPlaying) Tag() string      { return EventStartPlaying }
func (GameStarting) Tag() string      { return EventGameStarting }
func (PlayerUpdate) Tag() string      { return EventPlayerUpdate }
func (GameOver) Tag() string          { return EventGameOver }
func (u Unknown) Tag() string         { return u.Name }

func (StartPassing) event()      {}
func (CardsPassedUpdate) event() {}
func (YourTurn) event()          {}
func (CardPlayed) event()        {}
func (TrickEnd) event()          {}
func (ErrorEvent) event()        {}
func (InitialState) event()      {}
func (StartPlaying) event()      {}
func (GameStarting) event()      {}
func (PlayerUpdate) event()      {}
func (GameOver) event()          {}
func (Unknown) event()           {}

// Message is a decoded inbound channel message: an event plus the optional
// snapshot that is merged before the event is handled.
type Message struct {
	Event Event
	State *Snapshot
}

// Snapshot holds the fields present in a `state` payload. A nil field was
// absent (or unreadable) and must not be applied.
type Snapshot struct {
	Hands        map[string][]string
	Phase        *Phase
	TurnUserID   *int // 0 when the server sent null
	Trick        *[]TrickEntry
	LeadSuit     *card.Suit // "" when the server sent null
	HeartsBroken *bool
	RoundNumber  *int
	Players      *[]seat.Seat
}

// GameSummary is the game record returned by the snapshot fetch and carried
// by roster events.
type GameSummary struct {
	ID      int          `json:"id"`
	Status  string       `json:"status"`
	Players []PlayerWire `json:"players"`
}

type PlayerWire struct {
	User struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	SeatNumber int `json:"seat_number"`
	TotalScore int `json:"total_score"`
	CardCount  int `json:"card_count"`
}

func (p PlayerWire) toSeat() seat.Seat {
	return seat.Seat{
		UserID:     p.User.ID,
		Username:   p.User.Username,
		SeatNumber: p.SeatNumber,
		TotalScore: p.TotalScore,
		CardCount:  p.CardCount,
	}
}

// Seats converts the wire roster.
func (g *GameSummary) Seats() []seat.Seat {
	seats := make([]seat.Seat, 0, len(g.Players))
	for _, p := range g.Players {
		seats = append(seats, p.toSeat())
	}
	return seats
}

type trickEntryWire struct {
	PlayerID int    `json:"player_id"`
	Card     string `json:"card"`
}

type envelope struct {
	Event          string              `json:"event"`
	State          jsoniter.RawMessage `json:"state"`
	Game           jsoniter.RawMessage `json:"game"`
	Direction      string              `json:"direction"`
	UserID         jsoniter.RawMessage `json:"user_id"`
	PlayerID       jsoniter.RawMessage `json:"player_id"`
	Card           string              `json:"card"`
	CurrentTrick   jsoniter.RawMessage `json:"current_trick"`
	WinnerID       jsoniter.RawMessage `json:"winner_id"`
	WinnerUsername string              `json:"winner_username"`
	Points         jsoniter.RawMessage `json:"points"`
	Message        string              `json:"message"`
	Winner         string              `json:"winner"`
}

// DecodeMessage parses one inbound channel frame. Only a frame that is not a
// JSON object with an `event` tag is an error; unreadable snapshot fields are
// dropped individually.
func DecodeMessage(data []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "Unable to decode channel message")
	}
	if env.Event == "" {
		return nil, errors.New("Channel message has no event tag")
	}

	msg := &Message{}
	if isPresent(env.State) {
		msg.State = decodeSnapshot(env.State)
	}

	switch env.Event {
	case EventStartPassing:
		msg.Event = StartPassing{Direction: env.Direction}
	case EventCardsPassedUpdate:
		msg.Event = CardsPassedUpdate{}
	case EventYourTurn:
		userID, _ := decodeInt(env.UserID)
		msg.Event = YourTurn{UserID: userID}
	case EventCardPlayed:
		playerID, _ := decodeInt(env.PlayerID)
		ev := CardPlayed{PlayerID: playerID, Card: env.Card}
		if trick, ok := decodeTrick(env.CurrentTrick); ok {
			ev.Trick = &trick
		}
		msg.Event = ev
	case EventTrickEnd:
		winnerID, _ := decodeInt(env.WinnerID)
		ev := TrickEnd{WinnerID: winnerID, WinnerUsername: env.WinnerUsername}
		if isPresent(env.Points) {
			if points, ok := decodeInt(env.Points); ok {
				ev.Points = &points
			}
		}
		msg.Event = ev
	case EventError:
		msg.Event = ErrorEvent{Message: env.Message}
	case EventInitialState:
		msg.Event = InitialState{}
	case EventStartPlaying:
		msg.Event = StartPlaying{}
	case EventGameStarting:
		msg.Event = GameStarting{Game: decodeSummary(env.Game)}
	case EventPlayerUpdate:
		msg.Event = PlayerUpdate{Game: decodeSummary(env.Game)}
	case EventGameOver:
		msg.Event = GameOver{Winner: env.Winner}
	default:
		msg.Event = Unknown{Name: env.Event}
	}
	return msg, nil
}

func decodeSnapshot(raw jsoniter.RawMessage) *Snapshot {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	snap := &Snapshot{}

	if v, ok := fields["hands"]; ok {
		var hands map[string][]string
		if json.Unmarshal(v, &hands) == nil && hands != nil {
			snap.Hands = hands
		}
	}
	if v, ok := fields["phase"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			if p, known := parsePhase(s); known {
				snap.Phase = &p
			}
		}
	}
	if v, ok := fields["turn_user_id"]; ok {
		if id, ok := decodeInt(v); ok {
			snap.TurnUserID = &id
		}
	}
	if v, ok := fields["current_trick"]; ok {
		if trick, ok := decodeTrick(v); ok {
			snap.Trick = &trick
		}
	}
	if v, ok := fields["lead_suit"]; ok {
		if isNull(v) {
			none := card.Suit("")
			snap.LeadSuit = &none
		} else {
			var s string
			if json.Unmarshal(v, &s) == nil {
				if suit, known := card.ParseSuit(s); known {
					snap.LeadSuit = &suit
				}
			}
		}
	}
	if v, ok := fields["hearts_broken"]; ok {
		if b, ok := decodeBool(v); ok {
			snap.HeartsBroken = &b
		}
	}
	if v, ok := fields["round_number"]; ok {
		if n, ok := decodeInt(v); ok && !isNull(v) {
			snap.RoundNumber = &n
		}
	}
	if v, ok := fields["players"]; ok {
		if seats, ok := decodePlayers(v); ok {
			snap.Players = &seats
		}
	}
	return snap
}

func decodeSummary(raw jsoniter.RawMessage) *GameSummary {
	if !isPresent(raw) {
		return nil
	}
	var fields struct {
		ID      int                 `json:"id"`
		Status  string              `json:"status"`
		Players jsoniter.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	summary := &GameSummary{ID: fields.ID, Status: fields.Status}
	var players []PlayerWire
	for _, p := range decodeList(fields.Players) {
		var pw PlayerWire
		if json.Unmarshal(p, &pw) == nil {
			players = append(players, pw)
		}
	}
	summary.Players = players
	return summary
}

func decodePlayers(raw jsoniter.RawMessage) ([]seat.Seat, bool) {
	if !isPresent(raw) {
		return nil, false
	}
	items := decodeList(raw)
	if items == nil {
		return nil, false
	}
	seats := make([]seat.Seat, 0, len(items))
	for _, item := range items {
		var pw PlayerWire
		if json.Unmarshal(item, &pw) != nil {
			continue
		}
		seats = append(seats, pw.toSeat())
	}
	return seats, true
}

func decodeTrick(raw jsoniter.RawMessage) ([]TrickEntry, bool) {
	if !isPresent(raw) {
		return nil, false
	}
	items := decodeList(raw)
	if items == nil {
		return nil, false
	}
	trick := make([]TrickEntry, 0, len(items))
	for _, item := range items {
		var w trickEntryWire
		if json.Unmarshal(item, &w) != nil {
			continue
		}
		c, err := card.Parse(w.Card)
		if err != nil {
			continue
		}
		trick = append(trick, TrickEntry{PlayerID: w.PlayerID, Card: c})
	}
	return trick, true
}

func decodeList(raw jsoniter.RawMessage) []jsoniter.RawMessage {
	var items []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	if items == nil {
		items = []jsoniter.RawMessage{}
	}
	return items
}

// decodeInt accepts a JSON number, a numeric string or null (as 0).
func decodeInt(raw jsoniter.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	if isNull(raw) {
		return 0, true
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}

// decodeBool accepts a JSON bool or the strings "true"/"false" in any case.
func decodeBool(raw jsoniter.RawMessage) (bool, bool) {
	if !isPresent(raw) {
		return false, false
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		switch strings.ToLower(s) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func isNull(raw jsoniter.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func isPresent(raw jsoniter.RawMessage) bool {
	return len(raw) > 0 && !isNull(raw)
}
