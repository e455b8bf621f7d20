package util

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// GetLoginURL returns the form-login endpoint of the auth service.
func GetLoginURL(apiServerURL string) string {
	return joinURL(apiServerURL, "/auth/login")
}

// GetRegisterURL returns the account registration endpoint.
func GetRegisterURL(apiServerURL string) string {
	return joinURL(apiServerURL, "/auth/register")
}

// GetMeURL returns the endpoint describing the authenticated user.
func GetMeURL(apiServerURL string) string {
	return joinURL(apiServerURL, "/auth/users/me")
}

// GetMatchURL returns the matchmaking endpoint.
func GetMatchURL(apiServerURL string) string {
	return joinURL(apiServerURL, "/games/find-or-create")
}

// GetGameURL returns the snapshot endpoint for a game.
func GetGameURL(apiServerURL string, gameID int) string {
	return joinURL(apiServerURL, "/games", fmt.Sprintf("%d", gameID))
}

// GetGameChannelURL returns the websocket URL of a game's channel. The
// session token travels as a query parameter.
func GetGameChannelURL(apiServerURL string, gameID int, token string) string {
	base := joinURL(apiServerURL, "/games", fmt.Sprintf("%d", gameID), "ws")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("%s?token=%s", base, url.QueryEscape(token))
}

// GetServerToPlayerSubject is the NATS subject carrying game events to one player.
func GetServerToPlayerSubject(gameID int, userID int) string {
	return fmt.Sprintf("game.%d.player.%d", gameID, userID)
}

// GetPlayerToServerSubject is the NATS subject carrying player intents for a game.
func GetPlayerToServerSubject(gameID int) string {
	return fmt.Sprintf("player.%d.game", gameID)
}

func joinURL(base string, paths ...string) string {
	p := path.Join(paths...)
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(p, "/"))
}
