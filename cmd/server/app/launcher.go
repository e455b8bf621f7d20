package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"voyager.com/hearts/internal/channel"
	"voyager.com/hearts/internal/config"
	"voyager.com/hearts/internal/player"
	"voyager.com/hearts/internal/util"
)

var launcherLogger = log.With().Str("logger_name", "app::launcher").Logger()
var launcherOnce sync.Once
var launcher *Launcher

// GetLauncher returns the single instance of the Launcher.
func GetLauncher() *Launcher {
	launcherOnce.Do(func() {
		launcher = NewLauncher(nil)
	})
	return launcher
}

// NewLauncher creates an instance of Launcher. A nil dialer selects the
// transport from the environment.
func NewLauncher(dialer channel.Dialer) *Launcher {
	return &Launcher{
		dialer:  dialer,
		players: make(map[string]*player.Player),
	}
}

// Launcher manages the player sessions started through the control surface.
type Launcher struct {
	dialer channel.Dialer

	lock sync.Mutex
	// Key: player name
	players map[string]*player.Player
}

// LaunchRequest is the payload of POST /players.
type LaunchRequest struct {
	Name     string `json:"name"`
	GameID   int    `json:"gameId"`
	AutoPlay bool   `json:"autoPlay"`
	Register bool   `json:"register"`
}

// Launch logs a configured player in and seats it at a game. Without a game
// id the matchmaker picks one.
func (l *Launcher) Launch(ctx context.Context, players *config.Players, req LaunchRequest) (*player.Player, error) {
	l.lock.Lock()
	_, exists := l.players[req.Name]
	l.lock.Unlock()
	if exists {
		return nil, fmt.Errorf("Player [%s] is already running", req.Name)
	}

	p, ok := players.Find(req.Name)
	if !ok {
		return nil, fmt.Errorf("Player [%s] is not in the players config", req.Name)
	}

	logFile, err := l.logFile(req.Name)
	if err != nil {
		return nil, err
	}
	disableDelays := util.Env.ShouldDisableDelays()
	minDelay, maxDelay := players.Delays.ActionDelayRange(disableDelays)
	session := player.NewPlayer(player.Config{
		Name:           p.Name,
		Email:          p.Email,
		Password:       p.Password,
		Register:       req.Register,
		AutoPlay:       req.AutoPlay,
		MinActionDelay: minDelay,
		MaxActionDelay: maxDelay,
		Delays:         players.Delays.GameDelays(disableDelays),
		APIServerURL:   util.Env.GetAPIServerURL(),
	}, l.getDialer(), logFile)

	err = session.Login(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "Player [%s] could not log in", req.Name)
	}
	gameID := req.GameID
	if gameID == 0 {
		gameID, err = session.FindGame(ctx)
		if err != nil {
			return nil, err
		}
	}
	err = session.JoinGame(ctx, gameID)
	if err != nil {
		session.Leave()
		return nil, errors.Wrapf(err, "Player [%s] could not join game %d", req.Name, gameID)
	}

	l.lock.Lock()
	l.players[req.Name] = session
	l.lock.Unlock()
	launcherLogger.Info().Msgf("Player [%s] joined game %d", req.Name, gameID)
	return session, nil
}

// Get returns a running player.
func (l *Launcher) Get(name string) (*player.Player, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	p, ok := l.players[name]
	return p, ok
}

// Stop makes a player leave its game.
func (l *Launcher) Stop(name string) error {
	l.lock.Lock()
	p, ok := l.players[name]
	delete(l.players, name)
	l.lock.Unlock()
	if !ok {
		return fmt.Errorf("Player [%s] is not running", name)
	}
	launcherLogger.Info().Msgf("Stopping player [%s]", name)
	p.Leave()
	return nil
}

// StopAll makes every player leave.
func (l *Launcher) StopAll() {
	l.lock.Lock()
	names := make([]string, 0, len(l.players))
	for name := range l.players {
		names = append(names, name)
	}
	l.lock.Unlock()
	for _, name := range names {
		l.Stop(name)
	}
}

func (l *Launcher) getDialer() channel.Dialer {
	if l.dialer != nil {
		return l.dialer
	}
	transport := util.Env.GetChannelTransport()
	natsURL := ""
	if transport == util.TransportNats {
		natsURL = util.Env.GetNatsURL()
	}
	return channel.NewDialer(transport, util.Env.GetAPIServerURL(), natsURL)
}

func (l *Launcher) logFile(name string) (*os.File, error) {
	err := os.MkdirAll(baseLogDir, os.ModePerm)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Unable to create log directory %s", baseLogDir))
	}
	logFileName := filepath.Join(baseLogDir, fmt.Sprintf("%s.log", name))
	f, err := os.Create(logFileName)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Unable to create log file %s", logFileName))
	}
	return f, nil
}
