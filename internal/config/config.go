package config

import (
	"fmt"
	"io/ioutil"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"voyager.com/hearts/internal/game"
)

// Players is the content of a players file.
type Players struct {
	Players []Player `yaml:"players"`
	Delays  Delays   `yaml:"delays"`
}

// Player contains the account a bot logs in with.
type Player struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Delays in milliseconds. Zero means the default.
type Delays struct {
	TrickEndMs  uint32 `yaml:"trick-end-ms"`
	PromptMs    uint32 `yaml:"prompt-ms"`
	MinActionMs uint32 `yaml:"min-action-ms"`
	MaxActionMs uint32 `yaml:"max-action-ms"`
}

const (
	defaultMinActionMs = 500
	defaultMaxActionMs = 1500
)

func ReadPlayersConfig(fileName string) (*Players, error) {
	bytes, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading players config file [%s]", fileName)
	}

	var players Players
	err = yaml.Unmarshal(bytes, &players)
	if err != nil {
		return nil, errors.Wrapf(err, "Error parsing YAML file [%s]", fileName)
	}

	err = players.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "Error validating players config [%s]", fileName)
	}
	return &players, nil
}

func (p *Players) Validate() error {
	names := mapset.NewSet()
	for i, player := range p.Players {
		if player.Name == "" {
			return fmt.Errorf("Player %d has no name", i+1)
		}
		if names.Contains(player.Name) {
			return fmt.Errorf("Duplicate player name [%s]", player.Name)
		}
		names.Add(player.Name)
	}
	if p.Delays.MaxActionMs != 0 && p.Delays.MaxActionMs < p.Delays.MinActionMs {
		return fmt.Errorf("max-action-ms [%d] is less than min-action-ms [%d]", p.Delays.MaxActionMs, p.Delays.MinActionMs)
	}
	return nil
}

// Find returns the player with the given name.
func (p *Players) Find(name string) (Player, bool) {
	for _, player := range p.Players {
		if player.Name == name {
			return player, true
		}
	}
	return Player{}, false
}

// GameDelays converts the display delays, falling back to the defaults.
// With disabled set every delay is zero.
func (d Delays) GameDelays(disabled bool) game.Delays {
	if disabled {
		return game.Delays{TrickEnd: 0, Prompt: 0}
	}
	delays := game.DefaultDelays()
	if d.TrickEndMs != 0 {
		delays.TrickEnd = time.Duration(d.TrickEndMs) * time.Millisecond
	}
	if d.PromptMs != 0 {
		delays.Prompt = time.Duration(d.PromptMs) * time.Millisecond
	}
	return delays
}

// ActionDelayRange returns the bot think time bounds in milliseconds.
func (d Delays) ActionDelayRange(disabled bool) (uint32, uint32) {
	if disabled {
		return 0, 0
	}
	min, max := d.MinActionMs, d.MaxActionMs
	if min == 0 && max == 0 {
		return defaultMinActionMs, defaultMaxActionMs
	}
	if max < min {
		max = min
	}
	return min, max
}
