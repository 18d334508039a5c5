package cache

import (
	"bytes"
	"testing"
)

// TestMemoryCachePutGet tests basic storage.
func TestMemoryCachePutGet(t *testing.T) {
	c := NewMemoryCache(1024)

	if err := c.Put("a", []byte("clip-a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Expected a hit")
	}
	if !bytes.Equal(got, []byte("clip-a")) {
		t.Errorf("Got %q", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected a miss")
	}
}

// TestMemoryCacheEviction tests LRU eviction by size.
func TestMemoryCacheEviction(t *testing.T) {
	c := NewMemoryCache(10)

	if err := c.Put("a", []byte("aaaa")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put("b", []byte("bbbb")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Touch "a" so "b" is the eviction candidate.
	c.Get("a")

	if err := c.Put("c", []byte("cccc")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, ok := c.Get("b"); ok {
		t.Error("Expected least recently used entry evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Expected recently used entry kept")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("Expected new entry present")
	}
}

// TestMemoryCacheTooLarge tests the oversize edge.
func TestMemoryCacheTooLarge(t *testing.T) {
	c := NewMemoryCache(4)

	if err := c.Put("big", []byte("too big to fit")); err != ErrItemTooLarge {
		t.Errorf("Expected ErrItemTooLarge, got %v", err)
	}
}

// TestMemoryCacheUpdate tests overwriting a key.
func TestMemoryCacheUpdate(t *testing.T) {
	c := NewMemoryCache(100)

	c.Put("a", []byte("one"))
	c.Put("a", []byte("longer value"))

	got, ok := c.Get("a")
	if !ok || !bytes.Equal(got, []byte("longer value")) {
		t.Errorf("Expected updated value, got %q (hit=%v)", got, ok)
	}
	if s := c.Stats(); s.Size != int64(len("longer value")) {
		t.Errorf("Expected size tracked through update, got %d", s.Size)
	}
}

// TestMemoryCacheStats tests counters.
func TestMemoryCacheStats(t *testing.T) {
	c := NewMemoryCache(100)
	c.Put("a", []byte("xx"))
	c.Get("a")
	c.Get("nope")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.ItemCount != 1 || s.Size != 2 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

// TestMemoryCacheClear tests Clear.
func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(100)
	c.Put("a", []byte("xx"))
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Error("Expected empty cache after Clear")
	}
	if s := c.Stats(); s.Size != 0 || s.ItemCount != 0 {
		t.Errorf("Expected zeroed stats, got %+v", s)
	}
}
