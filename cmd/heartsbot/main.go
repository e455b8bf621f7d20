package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"voyager.com/hearts/internal/channel"
	"voyager.com/hearts/internal/config"
	"voyager.com/hearts/internal/game"
	"voyager.com/hearts/internal/player"
	"voyager.com/hearts/internal/util"
)

var (
	cmdArgs    arg
	mainLogger = log.With().Str("logger_name", "main::main").Logger()
)

type arg struct {
	playersFile string
	names       string
	gameID      int
	register    bool
}

func init() {
	flag.StringVar(&cmdArgs.playersFile, "players", "players.yaml", "Players YAML file")
	flag.StringVar(&cmdArgs.names, "names", "", "Comma separated players to run. All players in the file if empty.")
	flag.IntVar(&cmdArgs.gameID, "game-id", 0, "Game to join. If not provided, the matchmaker picks one.")
	flag.BoolVar(&cmdArgs.register, "register", false, "Register the accounts before logging in")
}

func main() {
	flag.Parse()
	os.Exit(heartsbot())
}

func heartsbot() int {
	zerolog.SetGlobalLevel(util.Env.GetZeroLogLogLevel())
	mainLogger.Info().Msgf("API server url: %s", util.Env.GetAPIServerURL())
	mainLogger.Info().Msgf("Players Config File: %s", cmdArgs.playersFile)
	if cmdArgs.playersFile == "" {
		mainLogger.Error().Msg("No players config file is provided.")
		return 1
	}
	players, err := config.ReadPlayersConfig(cmdArgs.playersFile)
	if err != nil {
		mainLogger.Error().Msgf("Error while parsing players file: %+v", err)
		return 1
	}

	selected, err := selectPlayers(players, cmdArgs.names)
	if err != nil {
		mainLogger.Error().Msgf("%s", err)
		return 1
	}

	transport := util.Env.GetChannelTransport()
	natsURL := ""
	if transport == util.TransportNats {
		natsURL = util.Env.GetNatsURL()
	}
	dialer := channel.NewDialer(transport, util.Env.GetAPIServerURL(), natsURL)
	disableDelays := util.Env.ShouldDisableDelays()
	minDelay, maxDelay := players.Delays.ActionDelayRange(disableDelays)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	failed := false
	var failedLock sync.Mutex
	for _, p := range selected {
		session := player.NewPlayer(player.Config{
			Name:           p.Name,
			Email:          p.Email,
			Password:       p.Password,
			Register:       cmdArgs.register,
			AutoPlay:       true,
			MinActionDelay: minDelay,
			MaxActionDelay: maxDelay,
			Delays:         players.Delays.GameDelays(disableDelays),
			APIServerURL:   util.Env.GetAPIServerURL(),
		}, dialer, nil)

		wg.Add(1)
		go func(session *player.Player) {
			defer wg.Done()
			err := play(ctx, session)
			if err != nil {
				mainLogger.Error().Msgf("Player [%s]: %+v", session.Name(), err)
				failedLock.Lock()
				failed = true
				failedLock.Unlock()
			}
		}(session)
	}
	wg.Wait()

	if failed {
		return 1
	}
	return 0
}

// play seats one bot and waits until the game is over or ctx is done.
func play(ctx context.Context, session *player.Player) error {
	err := session.Login(ctx)
	if err != nil {
		return err
	}
	gameID := cmdArgs.gameID
	if gameID == 0 {
		gameID, err = session.FindGame(ctx)
		if err != nil {
			return err
		}
	}
	err = session.JoinGame(ctx, gameID)
	if err != nil {
		session.Leave()
		return err
	}
	defer session.Leave()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v, ok := session.View()
			if ok && v.Phase == game.PhaseFinished {
				mainLogger.Info().Msgf("Player [%s]: game %d is over. Winner: %s", session.Name(), gameID, v.Winner)
				return nil
			}
		}
	}
}

func selectPlayers(players *config.Players, names string) ([]config.Player, error) {
	if names == "" {
		return players.Players, nil
	}
	var selected []config.Player
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		p, ok := players.Find(name)
		if !ok {
			return nil, errors.Errorf("Player [%s] is not in the players config", name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
