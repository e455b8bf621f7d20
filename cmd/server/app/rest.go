package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"voyager.com/hearts/internal/config"
	"voyager.com/hearts/internal/game"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/player"
)

var (
	restLogger    = logging.GetZeroLogger("app::rest", nil)
	baseLogDir    = "log"
	playersConfig = "players.yaml"
)

const requestTimeout = 30 * time.Second

// RunRestServer registers http endpoints and handlers and runs the server.
func RunRestServer(portNo uint, logDir string, playersFile string) {
	if logDir != "" {
		baseLogDir = logDir
	}
	if playersFile != "" {
		playersConfig = playersFile
	}
	r := NewRouter(GetLauncher())
	r.Run(fmt.Sprintf(":%d", portNo))
}

// NewRouter builds the control surface on top of a launcher.
func NewRouter(l *Launcher) *gin.Engine {
	h := &handlers{launcher: l}
	r := gin.Default()
	r.POST("/players", h.launch)
	r.GET("/players/:name/view", h.view)
	r.POST("/players/:name/play", h.play)
	r.POST("/players/:name/select", h.toggleSelect)
	r.POST("/players/:name/pass", h.pass)
	r.DELETE("/players/:name", h.stop)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

type handlers struct {
	launcher *Launcher
}

// CardPayload is the body of the play and select endpoints.
type CardPayload struct {
	Card string `json:"card"`
}

// ViewResponse is the JSON rendering of a game view.
type ViewResponse struct {
	GameID          int            `json:"gameId"`
	Phase           string         `json:"phase"`
	LoadStatus      string         `json:"loadStatus"`
	Ready           bool           `json:"ready"`
	Players         []PlayerView   `json:"players"`
	Hand            []HandCardView `json:"hand"`
	Trick           []TrickView    `json:"trick"`
	TurnUserID      int            `json:"turnUserId"`
	MyTurn          bool           `json:"myTurn"`
	LeadSuit        string         `json:"leadSuit,omitempty"`
	HeartsBroken    bool           `json:"heartsBroken"`
	RoundNumber     int            `json:"roundNumber"`
	TricksCompleted int            `json:"tricksCompleted"`
	PassDirection   string         `json:"passDirection,omitempty"`
	Passed          bool           `json:"passed"`
	SelectedCount   int            `json:"selectedCount"`
	Prompt          string         `json:"prompt,omitempty"`
	Winner          string         `json:"winner,omitempty"`
	RecentEvents    []string       `json:"recentEvents"`
}

type PlayerView struct {
	UserID     int    `json:"userId"`
	Username   string `json:"username"`
	SeatNumber int    `json:"seatNumber"`
	TotalScore int    `json:"totalScore"`
	CardCount  int    `json:"cardCount"`
}

type HandCardView struct {
	Card     string `json:"card"`
	Selected bool   `json:"selected"`
}

type TrickView struct {
	PlayerID int    `json:"playerId"`
	Card     string `json:"card"`
}

func renderView(v game.View, recent []string) ViewResponse {
	resp := ViewResponse{
		GameID:          v.GameID,
		Phase:           string(v.Phase),
		LoadStatus:      string(v.LoadStatus),
		Ready:           v.Ready,
		TurnUserID:      v.TurnUserID,
		MyTurn:          v.MyTurn,
		LeadSuit:        string(v.LeadSuit),
		HeartsBroken:    v.HeartsBroken,
		RoundNumber:     v.RoundNumber,
		TricksCompleted: v.TricksCompleted,
		PassDirection:   v.PassDirection,
		Passed:          v.Passed,
		SelectedCount:   v.SelectedCount(),
		Winner:          v.Winner,
		RecentEvents:    recent,
		Players:         make([]PlayerView, 0, len(v.Players)),
		Hand:            make([]HandCardView, 0, len(v.MyHand)),
		Trick:           make([]TrickView, 0, len(v.Trick)),
	}
	if v.Prompt.Visible {
		resp.Prompt = v.Prompt.Message
	}
	for _, p := range v.Players {
		resp.Players = append(resp.Players, PlayerView{
			UserID:     p.UserID,
			Username:   p.Username,
			SeatNumber: p.SeatNumber,
			TotalScore: p.TotalScore,
			CardCount:  p.CardCount,
		})
	}
	for _, hc := range v.MyHand {
		resp.Hand = append(resp.Hand, HandCardView{Card: hc.ID, Selected: hc.Selected})
	}
	for _, e := range v.Trick {
		resp.Trick = append(resp.Trick, TrickView{PlayerID: e.PlayerID, Card: e.Card.ID})
	}
	return resp
}

func (h *handlers) launch(c *gin.Context) {
	var payload LaunchRequest
	err := c.BindJSON(&payload)
	if err != nil {
		errMsg := fmt.Sprintf("Failed to parse payload. Error: %s", err)
		restLogger.Error().Msg(errMsg)
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}
	if payload.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A player name must be provided."})
		return
	}

	players, err := config.ReadPlayersConfig(playersConfig)
	if err != nil {
		errMsg := fmt.Sprintf("Error while parsing players file. Error: %s", err)
		restLogger.Error().Msg(errMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMsg})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	p, err := h.launcher.Launch(ctx, players, payload)
	if err != nil {
		errMsg := fmt.Sprintf("Error while launching player. Error: %s", err)
		restLogger.Error().Msg(errMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMsg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Accepted", "gameId": p.GameID, "userId": p.UserID, "sessionId": p.SessionID})
}

func (h *handlers) view(c *gin.Context) {
	p, ok := h.launcher.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player is not running"})
		return
	}
	v, ok := p.View()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player has not joined a game"})
		return
	}
	c.JSON(http.StatusOK, renderView(v, p.RecentEvents()))
}

func (h *handlers) play(c *gin.Context) {
	p, ok := h.launcher.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player is not running"})
		return
	}
	var payload CardPayload
	if err := c.BindJSON(&payload); err != nil || payload.Card == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A card must be provided."})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	sent, err := p.PlayCard(ctx, payload.Card)
	h.intentResult(c, p, sent, err)
}

func (h *handlers) toggleSelect(c *gin.Context) {
	p, ok := h.launcher.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player is not running"})
		return
	}
	var payload CardPayload
	if err := c.BindJSON(&payload); err != nil || payload.Card == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A card must be provided."})
		return
	}
	changed := p.ToggleSelect(payload.Card)
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *handlers) pass(c *gin.Context) {
	p, ok := h.launcher.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player is not running"})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	sent, err := p.PassCards(ctx)
	h.intentResult(c, p, sent, err)
}

func (h *handlers) intentResult(c *gin.Context, p *player.Player, sent bool, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	prompt := ""
	if v, ok := p.View(); ok && v.Prompt.Visible {
		prompt = v.Prompt.Message
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent, "prompt": prompt})
}

func (h *handlers) stop(c *gin.Context) {
	err := h.launcher.Stop(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Accepted"})
}
