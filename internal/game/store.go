package game

import (
	"sync"

	"github.com/rs/zerolog"
	"voyager.com/hearts/internal/caches"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/util"
)

// StoreConfig holds the configuration for a Store.
type StoreConfig struct {
	GameID        int
	ViewerID      int
	Delays        Delays // zero delays clear immediately
	Scheduler     Scheduler
	Names         *caches.UsernameCache
	Logger        *zerolog.Logger
	PrintGameMsg  bool
	PrintStateMsg bool
}

// Store owns the GameState of one table. Channel messages, timer callbacks
// and intents are applied one at a time under its lock; consumers only ever
// see View copies.
type Store struct {
	lock      sync.Mutex
	state     *GameState
	reducer   *reducer
	scheduler Scheduler
	logger    *zerolog.Logger

	printGameMsg bool

	// Tags of the most recently applied events, oldest first.
	recentEvents *util.Queue

	timers    map[int]Timer
	nextTimer int
	closed    bool

	listenerLock sync.Mutex
	listeners    map[int]func(View)
	nextListener int

	// version counts mutations; views reach listeners in version order and
	// a view older than one already delivered is dropped.
	version      uint64
	deliverLock  sync.Mutex
	deliveredVer uint64
}

func NewStore(config StoreConfig) *Store {
	if config.Scheduler == nil {
		config.Scheduler = RealScheduler
	}
	if config.Names == nil {
		config.Names = caches.Usernames
	}
	if config.Logger == nil {
		config.Logger = logging.Nop()
	}
	logger := config.Logger.With().
		Int(logging.GameIDKey, config.GameID).
		Int(logging.UserIDKey, config.ViewerID).
		Logger()

	phases := newPhaseMachine(&logger, config.PrintStateMsg)
	return &Store{
		state: newGameState(config.GameID, config.ViewerID, phases),
		reducer: &reducer{
			logger: &logger,
			names:  config.Names,
			delays: config.Delays,
		},
		scheduler:    config.Scheduler,
		logger:       &logger,
		printGameMsg: config.PrintGameMsg,
		recentEvents: util.NewQueue(20),
		timers:       make(map[int]Timer),
		listeners:    make(map[int]func(View)),
	}
}

// HandleFrame decodes a raw channel frame and applies it. Frames that cannot
// be decoded are logged and dropped.
func (st *Store) HandleFrame(data []byte) {
	if st.printGameMsg {
		st.logger.Info().Msgf("Received game message %s", string(data))
	}
	msg, err := DecodeMessage(data)
	if err != nil {
		st.logger.Warn().Err(err).Msgf("Dropping unreadable game message [%s]", string(data))
		return
	}
	st.Apply(msg)
}

// Apply folds one message into the state and notifies listeners.
func (st *Store) Apply(msg *Message) {
	st.update(func(s *GameState) []deferred {
		if msg != nil && msg.Event != nil {
			st.recentEvents.Push(msg.Event.Tag())
		}
		return st.reducer.apply(s, msg)
	})
}

// LoadSummary seeds the roster from the snapshot fetch.
func (st *Store) LoadSummary(summary *GameSummary) {
	st.update(func(s *GameState) []deferred {
		st.reducer.mergeSummary(s, summary)
		s.LoadStatus = LoadDone
		if summary != nil && summary.Status == StatusWaiting && s.Phase == PhaseConnecting {
			s.setPhase(PhaseWaiting)
		}
		return nil
	})
}

// SetLoadStatus records the outcome of a failed snapshot fetch.
func (st *Store) SetLoadStatus(status LoadStatus) {
	st.update(func(s *GameState) []deferred {
		s.LoadStatus = status
		return nil
	})
}

func (st *Store) View() View {
	st.lock.Lock()
	defer st.lock.Unlock()
	return st.state.view()
}

// RecentEvents returns the tags of the last applied events.
func (st *Store) RecentEvents() []string {
	return st.recentEvents.Items()
}

// OnChange registers a listener called with a fresh View after every change.
// Listeners run one at a time and must not call back into the Store. The
// returned function removes it.
func (st *Store) OnChange(listener func(View)) func() {
	st.listenerLock.Lock()
	defer st.listenerLock.Unlock()
	id := st.nextListener
	st.nextListener++
	st.listeners[id] = listener
	return func() {
		st.listenerLock.Lock()
		defer st.listenerLock.Unlock()
		delete(st.listeners, id)
	}
}

// Close cancels pending timers. Messages applied afterwards are ignored.
func (st *Store) Close() {
	st.lock.Lock()
	defer st.lock.Unlock()
	st.closed = true
	for id, t := range st.timers {
		t.Stop()
		delete(st.timers, id)
	}
}

// update runs f under the lock, schedules its effects and notifies
// listeners with the resulting view.
func (st *Store) update(f func(s *GameState) []deferred) {
	st.lock.Lock()
	if st.closed {
		st.lock.Unlock()
		return
	}
	effects := f(st.state)
	for _, e := range effects {
		st.schedule(e)
	}
	st.version++
	ver := st.version
	v := st.state.view()
	st.lock.Unlock()

	st.notify(ver, v)
}

// schedule must be called with the lock held.
func (st *Store) schedule(e deferred) {
	id := st.nextTimer
	st.nextTimer++
	st.timers[id] = st.scheduler.AfterFunc(e.after, func() {
		st.update(func(s *GameState) []deferred {
			delete(st.timers, id)
			e.apply(s)
			return nil
		})
	})
}

func (st *Store) notify(ver uint64, v View) {
	st.deliverLock.Lock()
	defer st.deliverLock.Unlock()
	if ver <= st.deliveredVer {
		return
	}
	st.deliveredVer = ver

	st.listenerLock.Lock()
	listeners := make([]func(View), 0, len(st.listeners))
	for _, l := range st.listeners {
		listeners = append(listeners, l)
	}
	st.listenerLock.Unlock()

	for _, l := range listeners {
		l(v)
	}
}
