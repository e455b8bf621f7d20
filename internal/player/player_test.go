package player

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyager.com/hearts/internal/channel"
	"voyager.com/hearts/internal/game"
)

type fakeConn struct {
	inbound chan []byte
	closed  chan struct{}
	once    sync.Once

	lock    sync.Mutex
	written []string
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, channel.ErrClosed
	case data := <-c.inbound:
		return data, nil
	}
}

func (c *fakeConn) Write(ctx context.Context, data []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.written = append(c.written, string(data))
	return nil
}

func (c *fakeConn) Ping(ctx context.Context) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) writes() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.written...)
}

type fakeDialer struct {
	lock  sync.Mutex
	conns []*fakeConn
}

func (d *fakeDialer) Dial(ctx context.Context, gameID int, userID int, token string) (channel.Conn, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	c := &fakeConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.lock.Lock()
	defer d.lock.Unlock()
	if i >= len(d.conns) {
		return nil
	}
	return d.conns[i]
}

func newAPIServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/auth/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"username":"alice","email":"alice@example.com"}`))
	})
	mux.HandleFunc("/games/find-or-create", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"status":"waiting","players":[]}`))
	})
	mux.HandleFunc("/games/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"status":"in_progress","players":[
			{"user":{"id":1,"username":"alice"},"seat_number":1,"total_score":0},
			{"user":{"id":2,"username":"bob"},"seat_number":2,"total_score":0},
			{"user":{"id":3,"username":"carol"},"seat_number":3,"total_score":0},
			{"user":{"id":4,"username":"dave"},"seat_number":4,"total_score":0}]}`))
	})
	mux.HandleFunc("/games/8", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func newTestPlayer(t *testing.T, apiURL string, autoPlay bool) (*Player, *fakeDialer) {
	dialer := &fakeDialer{}
	p := NewPlayer(Config{
		Name:         "alice",
		Password:     "secret",
		AutoPlay:     autoPlay,
		APIServerURL: apiURL,
	}, dialer, ioutil.Discard)
	p.SetScheduler(game.NewManualScheduler())
	require.NoError(t, p.Login(context.Background()))
	return p, dialer
}

func TestJoinGame(t *testing.T) {
	server := newAPIServer()
	defer server.Close()
	p, dialer := newTestPlayer(t, server.URL, false)
	assert.Equal(t, 1, p.UserID)
	assert.Equal(t, PlayerState__LOGGED_IN, p.State())

	gameID, err := p.FindGame(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.JoinGame(context.Background(), gameID))
	assert.Equal(t, PlayerState__IN_GAME, p.State())

	conn := dialer.conn(0)
	require.NotNil(t, conn)
	assert.Equal(t, []string{`{"event":"request_initial_state"}`}, conn.writes())

	v, ok := p.View()
	require.True(t, ok)
	assert.Equal(t, game.LoadDone, v.LoadStatus)
	assert.True(t, v.Ready)

	conn.inbound <- []byte(`{"event":"initial_state","state":{"phase":"passing","hands":{"1":["2♣","3♣","4♣"]}}}`)
	assert.Eventually(t, func() bool {
		v, _ := p.View()
		return v.Phase == game.PhasePassing && len(v.MyHand) == 3
	}, time.Second, 5*time.Millisecond)

	assert.True(t, p.ToggleSelect("2♣"))
	sent, err := p.PassCards(context.Background())
	assert.NoError(t, err)
	assert.False(t, sent)

	p.Leave()
	assert.Equal(t, PlayerState__LOGGED_IN, p.State())
	_, err = p.PlayCard(context.Background(), "3♣")
	assert.NoError(t, err)
}

func TestJoinGameNotFound(t *testing.T) {
	server := newAPIServer()
	defer server.Close()
	p, dialer := newTestPlayer(t, server.URL, false)

	err := p.JoinGame(context.Background(), 8)
	assert.Error(t, err)
	assert.Equal(t, PlayerState__ERROR, p.State())
	assert.Nil(t, dialer.conn(0))

	v, ok := p.View()
	require.True(t, ok)
	assert.Equal(t, game.LoadNotFound, v.LoadStatus)
}

func TestAutoPlayActsOnTurn(t *testing.T) {
	server := newAPIServer()
	defer server.Close()
	p, dialer := newTestPlayer(t, server.URL, true)
	defer p.Leave()

	require.NoError(t, p.JoinGame(context.Background(), 7))
	conn := dialer.conn(0)
	conn.inbound <- []byte(`{"event":"initial_state","state":{"phase":"playing","turn_user_id":1,"current_trick":[{"player_id":4,"card":"9♦"}],"lead_suit":"Diamonds","hands":{"1":["K♦","5♦","2♠"]}}}`)

	assert.Eventually(t, func() bool {
		for _, w := range conn.writes() {
			if strings.Contains(w, `"play_card"`) {
				return w == `{"event":"play_card","card":"5♦"}`
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestAutoPassSendsThree(t *testing.T) {
	server := newAPIServer()
	defer server.Close()
	p, dialer := newTestPlayer(t, server.URL, true)
	defer p.Leave()

	require.NoError(t, p.JoinGame(context.Background(), 7))
	conn := dialer.conn(0)
	conn.inbound <- []byte(`{"event":"start_passing","direction":"left","state":{"phase":"passing","round_number":1,"hands":{"1":["2♣","Q♠","3♦","A♥","4♣","K♠"]}}}`)

	assert.Eventually(t, func() bool {
		for _, w := range conn.writes() {
			if w == `{"event":"pass_cards","cards":["Q♠","A♥","K♠"]}` {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}
