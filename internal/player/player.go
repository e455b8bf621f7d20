package player

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/hearts/internal/caches"
	"voyager.com/hearts/internal/channel"
	"voyager.com/hearts/internal/game"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/rest"
	"voyager.com/hearts/internal/util"
)

// Config holds the configuration for a player session.
type Config struct {
	Name           string
	Email          string
	Password       string
	Register       bool
	AutoPlay       bool
	MinActionDelay uint32
	MaxActionDelay uint32
	Delays         game.Delays
	APIServerURL   string
	TimeoutSec     uint32
}

// Player is one logged-in account and, while seated, its view of a game.
type Player struct {
	logger *zerolog.Logger
	config Config

	restHelper *rest.RestClient
	manager    *channel.Manager
	scheduler  game.Scheduler

	SessionID string
	UserID    int
	GameID    int

	// state of the session
	sm *fsm.FSM

	lock        sync.Mutex
	store       *game.Store
	dispatcher  *game.Dispatcher
	unsubscribe func()
	unlisten    func()

	// auto-play wake-ups
	chWake chan bool
	end    chan bool

	printStateMsg bool
}

// NewPlayer creates a session. The dialer decides the channel transport.
func NewPlayer(config Config, dialer channel.Dialer, logOut io.Writer) *Player {
	sessionID := uuid.New().String()
	logger := logging.GetZeroLogger("Player", logOut).With().
		Str(logging.PlayerNameKey, config.Name).
		Logger()
	if config.TimeoutSec == 0 {
		config.TimeoutSec = 10
	}

	p := &Player{
		logger:        &logger,
		config:        config,
		restHelper:    rest.NewRestClient(config.APIServerURL, config.TimeoutSec, ""),
		manager:       channel.NewManager(dialer, &logger, util.Env.ShouldPrintGameMsg()),
		scheduler:     game.RealScheduler,
		SessionID:     sessionID,
		printStateMsg: util.Env.ShouldPrintStateMsg(),
	}

	p.sm = fsm.NewFSM(
		PlayerState__NOT_LOGGED_IN,
		fsm.Events{
			{
				Name: PlayerEvent__LOGIN,
				Src:  []string{PlayerState__NOT_LOGGED_IN},
				Dst:  PlayerState__LOGGED_IN,
			},
			{
				Name: PlayerEvent__JOIN,
				Src:  []string{PlayerState__LOGGED_IN},
				Dst:  PlayerState__JOINING,
			},
			{
				Name: PlayerEvent__JOINED,
				Src:  []string{PlayerState__JOINING},
				Dst:  PlayerState__IN_GAME,
			},
			{
				Name: PlayerEvent__FAIL,
				Src:  []string{PlayerState__JOINING},
				Dst:  PlayerState__ERROR,
			},
			{
				Name: PlayerEvent__LEAVE,
				Src:  []string{PlayerState__JOINING, PlayerState__IN_GAME, PlayerState__ERROR},
				Dst:  PlayerState__LOGGED_IN,
			},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { p.enterState(e) },
		},
	)
	return p
}

func (p *Player) enterState(e *fsm.Event) {
	if p.printStateMsg {
		p.logger.Info().Msgf("[%s] ===> [%s]", e.Src, e.Dst)
	}
}

func (p *Player) event(event string) error {
	err := p.sm.Event(event)
	if err != nil {
		p.logger.Warn().Msgf("Error from state machine: %s", err.Error())
	}
	return err
}

// State returns the session state.
func (p *Player) State() string {
	return p.sm.Current()
}

func (p *Player) Name() string {
	return p.config.Name
}

// SetScheduler replaces the timer source of stores created afterwards.
func (p *Player) SetScheduler(s game.Scheduler) {
	p.scheduler = s
}

// Login authenticates the account and learns its user id. With Register set
// the account is created first if it does not exist.
func (p *Player) Login(ctx context.Context) error {
	if p.config.Register {
		err := p.restHelper.Register(ctx, p.config.Name, p.config.Email, p.config.Password)
		if err != nil && err != rest.ErrUserExists {
			return errors.Wrap(err, "Unable to register")
		}
	}
	err := p.restHelper.Login(ctx, p.config.Name, p.config.Password)
	if err != nil {
		return errors.Wrap(err, "Unable to log in")
	}
	user, err := p.restHelper.Me(ctx)
	if err != nil {
		return errors.Wrap(err, "Unable to get the user")
	}
	p.UserID = user.ID
	caches.Usernames.Add(user.ID, user.Username)
	p.updateLogger()
	p.logger.Info().Msgf("Successfully logged in.")
	return p.event(PlayerEvent__LOGIN)
}

// FindGame asks the matchmaker for a seat and returns the game id.
func (p *Player) FindGame(ctx context.Context) (int, error) {
	summary, err := p.restHelper.FindOrCreateGame(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "Unable to find a game")
	}
	p.logger.Info().Msgf("Matched to game %d (%s, %d players)", summary.ID, summary.Status, len(summary.Players))
	return summary.ID, nil
}

// JoinGame fetches the game record, opens the channel and requests the full
// state. A failed fetch is recorded on the store and not retried.
func (p *Player) JoinGame(ctx context.Context, gameID int) error {
	if err := p.event(PlayerEvent__JOIN); err != nil {
		return errors.Wrap(err, "Unable to join")
	}

	p.lock.Lock()
	p.GameID = gameID
	p.updateLogger()
	store := game.NewStore(game.StoreConfig{
		GameID:        gameID,
		ViewerID:      p.UserID,
		Delays:        p.config.Delays,
		Scheduler:     p.scheduler,
		Logger:        p.logger,
		PrintStateMsg: p.printStateMsg,
	})
	dispatcher := game.NewDispatcher(store, p.manager)
	p.store = store
	p.dispatcher = dispatcher
	p.lock.Unlock()

	summary, err := p.restHelper.GetGame(ctx, gameID)
	if err != nil {
		if errors.Cause(err) == rest.ErrGameNotFound {
			store.SetLoadStatus(game.LoadNotFound)
		} else {
			store.SetLoadStatus(game.LoadFailed)
		}
		p.event(PlayerEvent__FAIL)
		return errors.Wrapf(err, "Unable to load game %d", gameID)
	}
	store.LoadSummary(summary)

	p.lock.Lock()
	p.unsubscribe = p.manager.Subscribe(store.HandleFrame)
	p.lock.Unlock()

	err = p.manager.Connect(ctx, gameID, p.UserID, p.restHelper.AuthToken())
	if err != nil {
		p.logger.Error().Err(err).Msg("Unable to open the game channel")
		p.event(PlayerEvent__FAIL)
		return err
	}

	if p.config.AutoPlay {
		p.startAutoPlay(store)
	}
	if err := dispatcher.RequestInitialState(ctx); err != nil {
		p.event(PlayerEvent__FAIL)
		return err
	}
	return p.event(PlayerEvent__JOINED)
}

// Leave closes the channel and drops the game view.
func (p *Player) Leave() {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
	if p.unlisten != nil {
		p.unlisten()
		p.unlisten = nil
	}
	if p.end != nil {
		close(p.end)
		p.end = nil
	}
	p.manager.Close()
	if p.store != nil {
		p.store.Close()
	}
	if p.sm.Can(PlayerEvent__LEAVE) {
		p.event(PlayerEvent__LEAVE)
	}
	p.logger.Info().Msgf("Left game %d", p.GameID)
}

// View returns the current game view. ok is false if no game was joined.
func (p *Player) View() (game.View, bool) {
	store := p.currentStore()
	if store == nil {
		return game.View{}, false
	}
	return store.View(), true
}

// RecentEvents returns the tags of the last events of the joined game.
func (p *Player) RecentEvents() []string {
	store := p.currentStore()
	if store == nil {
		return nil
	}
	return store.RecentEvents()
}

func (p *Player) PlayCard(ctx context.Context, cardID string) (bool, error) {
	d := p.currentDispatcher()
	if d == nil {
		return false, channel.ErrNotConnected
	}
	return d.PlayCard(ctx, cardID)
}

func (p *Player) ToggleSelect(cardID string) bool {
	d := p.currentDispatcher()
	if d == nil {
		return false
	}
	return d.ToggleSelect(cardID)
}

func (p *Player) PassCards(ctx context.Context) (bool, error) {
	d := p.currentDispatcher()
	if d == nil {
		return false, channel.ErrNotConnected
	}
	return d.PassCards(ctx)
}

func (p *Player) currentStore() *game.Store {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.store
}

func (p *Player) currentDispatcher() *game.Dispatcher {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.dispatcher
}

func (p *Player) updateLogger() {
	newLogger := p.logger.With().
		Int(logging.UserIDKey, p.UserID).
		Int(logging.GameIDKey, p.GameID).
		Logger()
	p.logger = &newLogger
}

// startAutoPlay makes the session act on its own whenever the view changes.
func (p *Player) startAutoPlay(store *game.Store) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.chWake = make(chan bool, 1)
	p.end = make(chan bool)
	wake := p.chWake
	p.unlisten = store.OnChange(func(game.View) {
		select {
		case wake <- true:
		default:
		}
	})
	go p.playLoop(store, p.dispatcher, wake, p.end)
}

func (p *Player) playLoop(store *game.Store, d *game.Dispatcher, wake chan bool, end chan bool) {
	for {
		select {
		case <-end:
			return
		case <-wake:
		}

		v := store.View()
		switch {
		case v.Phase == game.PhasePassing && !v.Passed:
			p.think(end)
			p.autoPass(store, d)
		case v.IsViewerTurn():
			p.think(end)
			p.autoPlay(store, d)
		}
	}
}

func (p *Player) think(end chan bool) {
	delay := util.GetRandomMilliseconds(int(p.config.MinActionDelay), int(p.config.MaxActionDelay))
	if delay <= 0 {
		return
	}
	select {
	case <-end:
	case <-time.After(delay):
	}
}

func (p *Player) autoPass(store *game.Store, d *game.Dispatcher) {
	v := store.View()
	if v.Phase != game.PhasePassing || v.Passed {
		return
	}
	chosen := make(map[string]bool)
	for _, id := range ChoosePass(handCards(v)) {
		chosen[id] = true
	}
	for _, hc := range v.MyHand {
		if hc.Selected && !chosen[hc.ID] {
			d.ToggleSelect(hc.ID)
		}
	}
	for _, hc := range v.MyHand {
		if !hc.Selected && chosen[hc.ID] {
			d.ToggleSelect(hc.ID)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.config.TimeoutSec)*time.Second)
	defer cancel()
	if _, err := d.PassCards(ctx); err != nil {
		p.logger.Error().Err(err).Msg("Unable to pass cards")
	}
}

func (p *Player) autoPlay(store *game.Store, d *game.Dispatcher) {
	if !store.View().IsViewerTurn() {
		return
	}
	c, ok := ChoosePlay(store.Situation())
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.config.TimeoutSec)*time.Second)
	defer cancel()
	sent, err := d.PlayCard(ctx, c.ID)
	if err != nil {
		p.logger.Error().Err(err).Msgf("Unable to play %s", c.ID)
		return
	}
	if sent {
		p.logger.Info().Msgf("Played %s", c.ID)
	}
}
