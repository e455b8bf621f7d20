package main

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog"
	"voyager.com/hearts/cmd/server/app"
	"voyager.com/hearts/internal/logging"
	"voyager.com/hearts/internal/util"
)

var (
	cmdArgs    arg
	mainLogger = logging.GetZeroLogger("main::main", nil)
)

type arg struct {
	logDir      string
	playersFile string
	port        uint
}

func init() {
	flag.StringVar(&cmdArgs.logDir, "log-dir", "", "Directory to write player logs")
	flag.StringVar(&cmdArgs.playersFile, "players", "players.yaml", "Players YAML file")
	flag.UintVar(&cmdArgs.port, "port", 8081, "Listen port")
	flag.Parse()
}

func main() {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)
	mainLogger.Info().Msg("Log Dir:" + cmdArgs.logDir)
	mainLogger.Info().Msgf("Players Config File: %s", cmdArgs.playersFile)
	app.RunRestServer(cmdArgs.port, cmdArgs.logDir, cmdArgs.playersFile)
}
