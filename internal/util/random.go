package util

import (
	"math/rand"
	"time"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

// GetRandomInt returns a random integer in range [min, max].
func GetRandomInt(min int, max int) int {
	if max <= min {
		return min
	}
	return rand.Intn(max-min+1) + min
}

// GetRandomMilliseconds returns random time.Duration milliseconds.
func GetRandomMilliseconds(min int, max int) time.Duration {
	ri := GetRandomInt(min, max)
	return time.Duration(ri) * time.Millisecond
}
