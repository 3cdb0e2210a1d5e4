package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) computeHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Config holds configuration for the cache manager
type Config struct {
	MemoryCapacity int64 // Bytes

	DiskCapacity     int64  // Bytes
	DiskPath         string // Directory for cache files
	CompressionLevel int    // Zstd compression level (1-22, 0 disables)

	TTL             time.Duration // Age before entries expire, 0 keeps them
	CleanupInterval time.Duration // How often to run cleanup, 0 disables
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   32 * 1024 * 1024,  // 32MB
		DiskCapacity:     256 * 1024 * 1024, // 256MB
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Cache is implemented by both cache levels.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Contains(key string) bool
	Size() int64
	Stats() Stats
}

// GenerateCacheKey derives a key from the spoken text and how it is spoken.
func GenerateCacheKey(text, voice string, rate float64) string {
	data := fmt.Sprintf("%s|%s|%.2f", text, voice, rate)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}
