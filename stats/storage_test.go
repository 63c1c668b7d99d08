package stats

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	t.Run("IncrementStats", func(t *testing.T) {
		storage.IncrementStats(Delta{ForecastRuns: 1, ForecastFailures: 2, SweepRuns: 3, CacheHits: 4, CacheMisses: 5})
		stats := storage.GetCurrentStats()

		if stats.ForecastRuns != 1 {
			t.Errorf("Expected 1 forecast run, got %d", stats.ForecastRuns)
		}
		if stats.ForecastFailures != 2 {
			t.Errorf("Expected 2 forecast failures, got %d", stats.ForecastFailures)
		}
		if stats.SweepRuns != 3 {
			t.Errorf("Expected 3 sweep runs, got %d", stats.SweepRuns)
		}
		if stats.CacheHits != 4 {
			t.Errorf("Expected 4 cache hits, got %d", stats.CacheHits)
		}
		if stats.CacheMisses != 5 {
			t.Errorf("Expected 5 cache misses, got %d", stats.CacheMisses)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.Flush(); err != nil {
			t.Fatalf("Failed to flush: %v", err)
		}

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}
		defer storage2.Close()

		stats := storage2.GetCurrentStats()
		if stats.ForecastRuns != 1 {
			t.Errorf("Expected 1 forecast run after reload, got %d", stats.ForecastRuns)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		now := time.Now()
		oldMonth := time.Date(now.Year(), now.Month()-2, 1, 0, 0, 0, 0, now.Location()).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{ForecastRuns: 100}
		storage.mutex.Unlock()

		storage.Cleanup(1)

		if _, exists := storage.GetMonthlyStats(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if months := storage.GetAllMonths(); len(months) != 1 {
			t.Errorf("Expected only the current month to remain, got %v", months)
		}
	})

	t.Run("FileSize", func(t *testing.T) {
		if err := storage.Flush(); err != nil {
			t.Fatalf("Failed to flush: %v", err)
		}

		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Size() > 1024 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					storage.IncrementStats(Delta{ForecastRuns: 1, CacheHits: 1})
					storage.GetCurrentStats()
				}
			}()
		}
		wg.Wait()

		stats := storage.GetCurrentStats()
		if got := stats.ForecastRuns - before.ForecastRuns; got != 1000 {
			t.Errorf("Expected 1000 additional forecast runs, got %d", got)
		}
		if got := stats.CacheHits - before.CacheHits; got != 1000 {
			t.Errorf("Expected 1000 additional cache hits, got %d", got)
		}
	})
}

func TestGetAllMonthsOrder(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	storage.mutex.Lock()
	for _, m := range []string{"2025-01", "2025-11", "2024-12"} {
		storage.stats[m] = &MonthlyStats{}
	}
	storage.mutex.Unlock()
	months := storage.GetAllMonths()
	expected := []string{"2025-11", "2025-01", "2024-12"}
	for i, m := range expected {
		if months[i] != m {
			t.Errorf("Expected %s at index %d, got %s", m, i, months[i])
		}
	}
}

func TestCleanupAtMonthEnd(t *testing.T) {
	storage, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	storage.mutex.Lock()
	for _, m := range []string{"2026-01", "2026-02", "2026-03"} {
		storage.stats[m] = &MonthlyStats{ForecastRuns: 1}
	}
	storage.mutex.Unlock()

	storage.now = func() time.Time { return time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC) }
	storage.Cleanup(2)

	months := storage.GetAllMonths()
	expected := []string{"2026-03", "2026-02"}
	if len(months) != len(expected) {
		t.Fatalf("Expected months %v, got %v", expected, months)
	}
	for i, m := range expected {
		if months[i] != m {
			t.Errorf("Expected %s at index %d, got %s", m, i, months[i])
		}
	}
}

func TestLoadNullFile(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "stats.json"), []byte("null"), 0644); err != nil {
		t.Fatalf("Failed to write stats file: %v", err)
	}

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer storage.Close()

	storage.IncrementStats(Delta{ForecastRuns: 1})
	if stats := storage.GetCurrentStats(); stats.ForecastRuns != 1 {
		t.Errorf("Expected 1 forecast run, got %d", stats.ForecastRuns)
	}
}
