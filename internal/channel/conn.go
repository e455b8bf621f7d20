package channel

import (
	"context"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"
	"voyager.com/hearts/internal/util"
)

// Conn is an open game channel carrying JSON text frames.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Dialer opens the channel of one game for one player.
type Dialer interface {
	Dial(ctx context.Context, gameID int, userID int, token string) (Conn, error)
}

// NewDialer returns the dialer for the configured transport.
func NewDialer(transport string, apiServerURL string, natsURL string) Dialer {
	if transport == util.TransportNats {
		return &NatsDialer{URL: natsURL}
	}
	return &WebsocketDialer{APIServerURL: apiServerURL}
}

// WebsocketDialer connects to the api server's game websocket.
type WebsocketDialer struct {
	APIServerURL string
}

const maxFrameSize = 1 << 20

func (d *WebsocketDialer) Dial(ctx context.Context, gameID int, userID int, token string) (Conn, error) {
	url := util.GetGameChannelURL(d.APIServerURL, gameID, token)
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open websocket for game %d", gameID)
	}
	c.SetReadLimit(maxFrameSize)
	return &wsConn{conn: c}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		if typ == websocket.MessageText {
			return data, nil
		}
	}
}

func (c *wsConn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *wsConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// NatsDialer reaches the game through a NATS bridge. Events arrive on the
// player's subject and intents are published on the game's subject.
type NatsDialer struct {
	URL string
}

func (d *NatsDialer) Dial(ctx context.Context, gameID int, userID int, token string) (Conn, error) {
	nc, err := natsgo.Connect(d.URL, natsgo.Token(token))
	if err != nil {
		return nil, errors.Wrapf(err, "Error connecting to NATS server [%s]", d.URL)
	}
	ch := make(chan *natsgo.Msg, 64)
	sub, err := nc.ChanSubscribe(util.GetServerToPlayerSubject(gameID, userID), ch)
	if err != nil {
		nc.Close()
		return nil, errors.Wrapf(err, "Unable to subscribe to game %d", gameID)
	}
	return &natsConn{
		nc:      nc,
		sub:     sub,
		ch:      ch,
		subject: util.GetPlayerToServerSubject(gameID),
		closed:  make(chan struct{}),
	}, nil
}

type natsConn struct {
	nc      *natsgo.Conn
	sub     *natsgo.Subscription
	ch      chan *natsgo.Msg
	subject string
	closed  chan struct{}
}

func (c *natsConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, ErrClosed
	case msg := <-c.ch:
		return msg.Data, nil
	}
}

func (c *natsConn) Write(ctx context.Context, data []byte) error {
	return c.nc.Publish(c.subject, data)
}

func (c *natsConn) Ping(ctx context.Context) error {
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return c.nc.FlushTimeout(timeout)
}

func (c *natsConn) Close() error {
	select {
	case <-c.closed:
		return nil
	default:
	}
	close(c.closed)
	err := c.sub.Unsubscribe()
	c.nc.Close()
	return err
}
