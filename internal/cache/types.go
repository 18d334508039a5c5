// Package cache stores synthesized audio so repeated lines are not
// re-synthesized. A small memory tier fronts a compressed disk tier.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Common errors for cache operations.
var (
	// ErrItemTooLarge is returned when a clip exceeds the cache
	// capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheClosed is returned when the cache has been shut down.
	ErrCacheClosed = errors.New("cache is closed")
)

// Stats holds cache performance counters.
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int   // Number of items held
	Hits      int64
	Misses    int64
	Evictions int64
}

// Key derives the cache key for one utterance. Identical text spoken
// with the same voice always lands on the same clip.
func Key(text, voice string) string {
	sum := sha256.Sum256([]byte(voice + "\x00" + text))
	return hex.EncodeToString(sum[:16])
}
