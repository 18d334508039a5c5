package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const diskFileExt = ".zst"

// DiskCache is the persistent tier. Clips are zstd-compressed files
// named by their key; the index is rebuilt from the directory on
// startup so no separate manifest can drift out of sync.
type DiskCache struct {
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

type diskEntry struct {
	path       string
	size       int64 // compressed size on disk
	lastAccess time.Time
}

// NewDiskCache opens (creating if needed) a disk cache rooted at
// basePath holding at most capacity compressed bytes.
func NewDiskCache(basePath string, capacity int64) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		encoder:  encoder,
		decoder:  decoder,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}
	dc.loadIndex()
	return dc, nil
}

// loadIndex scans the cache directory for existing clips.
func (dc *DiskCache) loadIndex() {
	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), diskFileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(e.Name(), diskFileExt)
		dc.index[key] = &diskEntry{
			path:       filepath.Join(dc.basePath, e.Name()),
			size:       info.Size(),
			lastAccess: info.ModTime(),
		}
		dc.size += info.Size()
	}
	dc.stats.Size = dc.size
	dc.stats.ItemCount = len(dc.index)
}

// Get reads and decompresses a clip.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	compressed, err := os.ReadFile(entry.path)
	if err != nil {
		dc.dropLocked(key, entry)
		dc.stats.Misses++
		return nil, false
	}
	data, err := dc.decoder.DecodeAll(compressed, nil)
	if err != nil {
		// Corrupted file; evict it rather than serve garbage.
		os.Remove(entry.path)
		dc.dropLocked(key, entry)
		dc.stats.Misses++
		return nil, false
	}

	entry.lastAccess = time.Now()
	dc.stats.Hits++
	return data, true
}

// Put compresses and stores a clip, evicting the least recently used
// files to stay under capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	compressed := dc.encoder.EncodeAll(value, nil)
	size := int64(len(compressed))

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if size > dc.capacity {
		return ErrItemTooLarge
	}

	if old, ok := dc.index[key]; ok {
		dc.dropLocked(key, old)
	}
	for dc.size+size > dc.capacity && len(dc.index) > 0 {
		dc.evictOldestLocked()
	}

	path := filepath.Join(dc.basePath, key+diskFileExt)
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	dc.index[key] = &diskEntry{path: path, size: size, lastAccess: time.Now()}
	dc.size += size
	dc.stats.Size = dc.size
	dc.stats.ItemCount = len(dc.index)
	return nil
}

// Delete removes a clip if present.
func (dc *DiskCache) Delete(key string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		return
	}
	os.Remove(entry.path)
	dc.dropLocked(key, entry)
}

// Clear removes every cached clip.
func (dc *DiskCache) Clear() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for key, entry := range dc.index {
		os.Remove(entry.path)
		delete(dc.index, key)
	}
	dc.size = 0
	dc.stats.Size = 0
	dc.stats.ItemCount = 0
}

// Stats returns a snapshot of the counters.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Size = dc.size
	s.ItemCount = len(dc.index)
	return s
}

// Close releases the compressor resources.
func (dc *DiskCache) Close() error {
	dc.encoder.Close()
	dc.decoder.Close()
	return nil
}

func (dc *DiskCache) dropLocked(key string, entry *diskEntry) {
	delete(dc.index, key)
	dc.size -= entry.size
	dc.stats.Size = dc.size
	dc.stats.ItemCount = len(dc.index)
}

func (dc *DiskCache) evictOldestLocked() {
	keys := make([]string, 0, len(dc.index))
	for k := range dc.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return dc.index[keys[i]].lastAccess.Before(dc.index[keys[j]].lastAccess)
	})
	if len(keys) == 0 {
		return
	}
	oldest := keys[0]
	entry := dc.index[oldest]
	os.Remove(entry.path)
	dc.dropLocked(oldest, entry)
	dc.stats.Evictions++
}
