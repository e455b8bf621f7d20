package channel

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNotConnected = errors.New("channel is not connected")
	ErrClosed       = errors.New("channel is closed")
)

const keepAliveInterval = 20 * time.Second

// Manager owns at most one open game channel. Frames read from it are handed
// to every subscriber, one frame at a time and in arrival order.
type Manager struct {
	dialer       Dialer
	logger       *zerolog.Logger
	printGameMsg bool

	lock      sync.Mutex
	conn      Conn
	connID    string
	gameID    int
	cancel    context.CancelFunc
	keepAlive *KeepAlive

	// subscription id -> func([]byte)
	listeners cmap.ConcurrentMap
}

func NewManager(dialer Dialer, logger *zerolog.Logger, printGameMsg bool) *Manager {
	return &Manager{
		dialer:       dialer,
		logger:       logger,
		printGameMsg: printGameMsg,
		listeners:    cmap.New(),
	}
}

// Connect opens the channel for a game. It is a no-op if the channel of that
// game is already open; a channel to any other game is closed first.
func (m *Manager) Connect(ctx context.Context, gameID int, userID int, token string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.conn != nil {
		if m.gameID == gameID {
			return nil
		}
		m.logger.Info().Msgf("Closing stale channel of game %d", m.gameID)
		m.closeLocked()
	}

	conn, err := m.dialer.Dial(ctx, gameID, userID, token)
	if err != nil {
		metrics.Metrics.ConnectFailed()
		return errors.Wrapf(err, "Unable to connect to game %d", gameID)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	m.conn = conn
	m.connID = uuid.New().String()
	m.gameID = gameID
	m.cancel = cancel
	m.keepAlive = NewKeepAlive(m.logger, conn, keepAliveInterval)
	m.keepAlive.Run()
	metrics.Metrics.ChannelOpened()

	m.logger.Info().Str(logging.ConnIDKey, m.connID).Msgf("Connected to game %d", gameID)
	go m.readLoop(readCtx, conn, m.connID)
	return nil
}

// IsOpen reports whether a channel is currently open.
func (m *Manager) IsOpen() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.conn != nil
}

// Subscribe registers a frame listener. The returned function removes it.
func (m *Manager) Subscribe(listener func(data []byte)) func() {
	id := uuid.New().String()
	m.listeners.Set(id, listener)
	return func() {
		m.listeners.Remove(id)
	}
}

// Send encodes v as JSON and writes it to the open channel.
func (m *Manager) Send(ctx context.Context, v interface{}) error {
	m.lock.Lock()
	conn := m.conn
	m.lock.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "Unable to encode intent")
	}
	if m.printGameMsg {
		m.logger.Info().Msgf("Sending game message %s", string(data))
	}
	if err := conn.Write(ctx, data); err != nil {
		return errors.Wrap(err, "Unable to write to game channel")
	}
	return nil
}

// Close closes the open channel, if any.
func (m *Manager) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.conn == nil {
		return
	}
	m.cancel()
	m.keepAlive.Destroy()
	if err := m.conn.Close(); err != nil {
		m.logger.Debug().Err(err).Str(logging.ConnIDKey, m.connID).Msg("Error while closing channel")
	}
	m.conn = nil
	m.connID = ""
	m.gameID = 0
	metrics.Metrics.ChannelClosed()
}

func (m *Manager) readLoop(ctx context.Context, conn Conn, connID string) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Warn().Err(err).Str(logging.ConnIDKey, connID).Msg("Game channel closed by peer")
				m.lock.Lock()
				if m.connID == connID {
					m.closeLocked()
				}
				m.lock.Unlock()
			}
			return
		}
		for _, v := range m.listeners.Items() {
			v.(func([]byte))(data)
		}
	}
}
