package caches

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// UsernameCache remembers user id -> username for every roster seen, so a
// turn prompt can still name a player the current roster does not carry.
type UsernameCache struct {
	names *lru.Cache
}

func NewUsernameCache(size int) (*UsernameCache, error) {
	names, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize username cache")
	}
	return &UsernameCache{names: names}, nil
}

func (c *UsernameCache) Add(userID int, username string) {
	if userID == 0 || username == "" {
		return
	}
	c.names.Add(userID, username)
}

func (c *UsernameCache) Get(userID int) (string, bool) {
	v, exists := c.names.Get(userID)
	if !exists {
		return "", false
	}
	return v.(string), true
}

// Usernames is the process-wide cache shared by every game view.
var Usernames = createCache()

func createCache() *UsernameCache {
	c, err := NewUsernameCache(1000)
	if err != nil {
		panic("Cannot initialize username cache")
	}
	return c
}
