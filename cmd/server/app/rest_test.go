package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyager.com/hearts/internal/card"
	"voyager.com/hearts/internal/channel"
	"voyager.com/hearts/internal/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fakeConn struct {
	closed chan struct{}
	once   sync.Once
}

func (c *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, channel.ErrClosed
	}
}

func (c *fakeConn) Write(ctx context.Context, data []byte) error { return nil }
func (c *fakeConn) Ping(ctx context.Context) error               { return nil }
func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

type fakeDialer struct{}

func (fakeDialer) Dial(ctx context.Context, gameID int, userID int, token string) (channel.Conn, error) {
	return &fakeConn{closed: make(chan struct{})}, nil
}

func newAPIServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/auth/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"username":"alice"}`))
	})
	mux.HandleFunc("/games/find-or-create", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"status":"waiting","players":[{"user":{"id":1,"username":"alice"},"seat_number":1,"total_score":0}]}`))
	})
	mux.HandleFunc("/games/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"status":"waiting","players":[{"user":{"id":1,"username":"alice"},"seat_number":1,"total_score":0}]}`))
	})
	return httptest.NewServer(mux)
}

func doRequest(r http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUnknownPlayer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewLauncher(fakeDialer{}))

	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/players/bob/view", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodPost, "/players/bob/play", `{"card":"2♣"}`).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodPost, "/players/bob/pass", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodDelete, "/players/bob", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodPost, "/players", `{}`).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewLauncher(fakeDialer{}))
	w := doRequest(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLaunchAndView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := newAPIServer()
	defer server.Close()
	os.Setenv("API_SERVER_URL", server.URL)
	defer os.Unsetenv("API_SERVER_URL")
	baseLogDir = t.TempDir()
	playersConfig = "testdata/players.yaml"

	l := NewLauncher(fakeDialer{})
	defer l.StopAll()
	r := NewRouter(l)

	w := doRequest(r, http.MethodPost, "/players", `{"name":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodGet, "/players/alice/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 7, view.GameID)
	assert.Equal(t, "waiting", view.Phase)
	assert.Equal(t, "loaded", view.LoadStatus)
	assert.True(t, view.Ready)

	w = doRequest(r, http.MethodPost, "/players/alice/pass", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Sent bool `json:"sent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Sent)

	w = doRequest(r, http.MethodPost, "/players", `{"name":"alice"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodDelete, "/players/alice", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/players/alice/view", "").Code)
}

func TestRenderViewCountsSelection(t *testing.T) {
	v := game.View{
		Phase: game.PhasePassing,
		MyHand: []game.HandCard{
			{Card: card.MustParse("2♣"), Selected: true},
			{Card: card.MustParse("Q♠"), Selected: true},
			{Card: card.MustParse("5♦")},
		},
	}
	resp := renderView(v, nil)
	assert.Equal(t, 2, resp.SelectedCount)
	assert.Equal(t, []HandCardView{{"2♣", true}, {"Q♠", true}, {"5♦", false}}, resp.Hand)
}
