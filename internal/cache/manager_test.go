package cache

import (
	"bytes"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := DefaultConfig()
	cfg.DiskPath = t.TempDir()
	cfg.CleanupInterval = 0

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestNewManager_RequiresDir(t *testing.T) {
	if _, err := NewManager(DefaultConfig()); err == nil {
		t.Fatal("expected error without a cache directory")
	}
}

func TestManager_PutGet(t *testing.T) {
	m := newTestManager(t)

	key := GenerateCacheKey("Number 3", "mock-en", 1.0)
	value := bytes.Repeat([]byte{0, 1}, 2048)

	if _, ok := m.Get(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	if err := m.Put(key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := m.Get(key)
	if !ok || !bytes.Equal(got, value) {
		t.Fatal("Get did not return stored value")
	}

	stats := m.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.MemoryHits != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("HitRate = %f, want 0.5", stats.HitRate)
	}
}

func TestManager_PromotesFromDisk(t *testing.T) {
	m := newTestManager(t)

	value := []byte("spoken")
	if err := m.disk.Put("k", value); err != nil {
		t.Fatalf("disk Put failed: %v", err)
	}

	if _, ok := m.Get("k"); !ok {
		t.Fatal("expected disk hit")
	}
	if !m.memory.Contains("k") {
		t.Error("disk hit was not promoted to memory")
	}
	if got := m.Stats().DiskHits; got != 1 {
		t.Errorf("DiskHits = %d, want 1", got)
	}
}

func TestManager_CloseFlushesDisk(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DiskPath = dir
	cfg.CleanupInterval = 0

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if err := m.Put("k", []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close is a no-op.
	if err := m.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	dc, err := NewDiskCache(dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer dc.Close() //nolint:errcheck
	if !dc.Contains("k") {
		t.Error("background write lost on Close")
	}
}

func TestManager_Cleanup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiskPath = t.TempDir()
	cfg.CleanupInterval = 0
	cfg.TTL = 10 * time.Millisecond

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer m.Close() //nolint:errcheck

	_ = m.memory.Put("k", []byte("v"))
	_ = m.disk.Put("k", []byte("v"))
	time.Sleep(30 * time.Millisecond)

	if removed := m.Cleanup(); removed != 2 {
		t.Errorf("Cleanup removed %d, want 2", removed)
	}
	if m.Stats().CleanupRuns != 1 {
		t.Error("cleanup run not recorded")
	}
}
