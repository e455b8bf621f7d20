package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

const (
	TransportWebsocket string = "websocket"
	TransportNats      string = "nats"
)

type environment struct {
	APIServerURL     string
	ChannelTransport string
	NatsURL          string
	PrintGameMsg     string
	PrintStateMsg    string
	DisableDelays    string
	LogLevel         string
}

// Env is a helper object for accessing environment variables.
var Env = &environment{
	APIServerURL:     "API_SERVER_URL",
	ChannelTransport: "CHANNEL_TRANSPORT",
	NatsURL:          "NATS_URL",
	PrintGameMsg:     "PRINT_GAME_MSG",
	PrintStateMsg:    "PRINT_STATE_MSG",
	DisableDelays:    "DISABLE_DELAYS",
	LogLevel:         "LOG_LEVEL",
}

func (e *environment) GetAPIServerURL() string {
	url := os.Getenv(e.APIServerURL)
	if url == "" {
		defaultVal := "http://localhost:8000"
		environmentLogger.Warn().Msgf("%s is not defined. Using default %s", e.APIServerURL, defaultVal)
		return defaultVal
	}
	return url
}

func (e *environment) GetChannelTransport() string {
	v := strings.ToLower(os.Getenv(e.ChannelTransport))
	switch v {
	case "":
		return TransportWebsocket
	case TransportWebsocket, TransportNats:
		return v
	default:
		panic(fmt.Sprintf("Unsupported %s: %s", e.ChannelTransport, v))
	}
}

func (e *environment) GetNatsURL() string {
	v := os.Getenv(e.NatsURL)
	if v == "" {
		msg := fmt.Sprintf("%s is not defined", e.NatsURL)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return v
}

func (e *environment) ShouldPrintGameMsg() bool {
	return isTrue(os.Getenv(e.PrintGameMsg))
}

func (e *environment) ShouldPrintStateMsg() bool {
	return isTrue(os.Getenv(e.PrintStateMsg))
}

func (e *environment) ShouldDisableDelays() bool {
	return isTrue(os.Getenv(e.DisableDelays))
}

func (e *environment) GetLogLevel() string {
	v := os.Getenv(e.LogLevel)
	if v == "" {
		defaultVal := "info"
		environmentLogger.Warn().Msgf("%s is not defined. Using default %s", e.LogLevel, defaultVal)
		return defaultVal
	}
	return v
}

func (e *environment) GetZeroLogLogLevel() zerolog.Level {
	l := e.GetLogLevel()
	switch strings.ToLower(l) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		fallthrough
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		panic(fmt.Sprintf("Unsupported %s: %s", e.LogLevel, l))
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.ToLower(v) == "true"
}
