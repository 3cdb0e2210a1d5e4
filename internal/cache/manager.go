package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager layers the memory cache over the disk cache. Hits on disk are
// promoted to memory; writes reach memory at once and disk in the background.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
	config Config

	cleanupStop chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once

	mu    sync.Mutex
	stats ManagerStats
}

// ManagerStats aggregates both levels.
type ManagerStats struct {
	Hits        int64
	Misses      int64
	MemoryHits  int64
	DiskHits    int64
	CleanupRuns int64
	LastCleanup time.Time
	HitRate     float64

	Memory Stats
	Disk   Stats
}

// NewManager opens the disk cache and starts the cleanup routine.
func NewManager(config Config) (*Manager, error) {
	if config.DiskPath == "" {
		return nil, errors.New("cache directory is required")
	}

	disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	m := &Manager{
		memory:      NewMemoryCache(config.MemoryCapacity),
		disk:        disk,
		config:      config,
		cleanupStop: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	return m, nil
}

// Get looks in memory, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		m.record(func(s *ManagerStats) { s.Hits++; s.MemoryHits++ })
		return data, true
	}

	if data, ok := m.disk.Get(key); ok {
		m.record(func(s *ManagerStats) { s.Hits++; s.DiskHits++ })
		_ = m.memory.Put(key, data)
		return data, true
	}

	m.record(func(s *ManagerStats) { s.Misses++ })
	return nil, false
}

// Put stores a value in memory and schedules the disk write.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.disk.Put(key, value); err != nil {
			log.Warn("Could not write audio to disk cache", "key", key, "err", err)
		}
	}()
	return nil
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	var errs []error
	if err := m.memory.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("memory clear: %w", err))
	}
	if err := m.disk.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("disk clear: %w", err))
	}
	return errors.Join(errs...)
}

// Stats returns aggregated statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	stats := m.stats
	m.mu.Unlock()

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	stats.Memory = m.memory.Stats()
	stats.Disk = m.disk.Stats()
	return stats
}

// Cleanup expires old entries. It runs on the cleanup interval and can be
// called directly.
func (m *Manager) Cleanup() int {
	m.record(func(s *ManagerStats) {
		s.CleanupRuns++
		s.LastCleanup = time.Now()
	})

	if m.config.TTL <= 0 {
		return 0
	}
	removed := m.disk.RemoveOlderThan(time.Now().Add(-m.config.TTL))
	removed += m.memory.Prune(m.config.TTL)
	if removed > 0 {
		log.Debug("Expired cached audio", "entries", removed)
	}
	return removed
}

// Close stops cleanup, waits for pending disk writes and saves the index.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.cleanupStop)
		m.wg.Wait()
		if cerr := m.disk.Close(); cerr != nil {
			err = fmt.Errorf("failed to close disk cache: %w", cerr)
		}
	})
	return err
}

func (m *Manager) record(fn func(*ManagerStats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.stats)
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.cleanupStop:
			return
		}
	}
}
