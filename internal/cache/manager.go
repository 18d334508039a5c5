package cache

import (
	"fmt"
	"path/filepath"
	"sync"

	homedir "github.com/mitchellh/go-homedir"
)

// Config sizes the two cache tiers.
type Config struct {
	MemoryCapacity int64  // bytes held in memory
	DiskCapacity   int64  // compressed bytes held on disk
	DiskPath       string // empty means a per-user default
}

// DefaultConfig returns tier sizes suited to per-line speech clips.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity: 16 << 20,
		DiskCapacity:   100 << 20,
	}
}

// Manager fronts the memory tier with the disk tier behind it. Disk
// hits are promoted into memory so a re-read note warms up quickly.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache

	mu     sync.Mutex
	closed bool
}

// NewManager builds both tiers.
func NewManager(config Config) (*Manager, error) {
	if config.MemoryCapacity <= 0 || config.DiskCapacity <= 0 {
		return nil, fmt.Errorf("cache capacities must be positive, got %d/%d",
			config.MemoryCapacity, config.DiskCapacity)
	}

	if config.DiskPath == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		config.DiskPath = filepath.Join(home, ".cache", "notevox", "audio")
	}

	disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity)
	if err != nil {
		return nil, err
	}

	return &Manager{
		memory: NewMemoryCache(config.MemoryCapacity),
		disk:   disk,
	}, nil
}

// Get looks a clip up in memory first, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, false
	}
	m.mu.Unlock()

	if data, ok := m.memory.Get(key); ok {
		return data, true
	}
	if data, ok := m.disk.Get(key); ok {
		// Promote; a too-large clip just stays disk-only.
		_ = m.memory.Put(key, data)
		return data, true
	}
	return nil, false
}

// Put stores a clip in both tiers.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrCacheClosed
	}
	m.mu.Unlock()

	if err := m.disk.Put(key, value); err != nil && err != ErrItemTooLarge {
		return err
	}
	_ = m.memory.Put(key, value)
	return nil
}

// Delete removes a clip from both tiers.
func (m *Manager) Delete(key string) {
	m.memory.Delete(key)
	m.disk.Delete(key)
}

// Clear empties both tiers.
func (m *Manager) Clear() {
	m.memory.Clear()
	m.disk.Clear()
}

// Stats returns per-tier snapshots.
func (m *Manager) Stats() (memory, disk Stats) {
	return m.memory.Stats(), m.disk.Stats()
}

// Close shuts the cache down.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.disk.Close()
}
