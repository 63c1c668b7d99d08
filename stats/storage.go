package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// MonthlyStats represents forecasting statistics for a specific month
type MonthlyStats struct {
	ForecastRuns     int       `json:"forecast_runs"`
	ForecastFailures int       `json:"forecast_failures"`
	SweepRuns        int       `json:"sweep_runs"`
	CacheHits        int       `json:"cache_hits"`
	CacheMisses      int       `json:"cache_misses"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Delta is a set of increments applied by IncrementStats
type Delta struct {
	ForecastRuns     int
	ForecastFailures int
	SweepRuns        int
	CacheHits        int
	CacheMisses      int
}

// Storage handles persistent storage of statistics
type Storage struct {
	mutex       sync.RWMutex
	saveMu      sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	now         func() time.Time
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string) (*Storage, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1), // Buffer for write requests
		done:        make(chan struct{}),
		now:         time.Now,
	}

	// Load existing stats if file exists
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	// Start background writer
	go s.backgroundWriter()

	return s, nil
}

// load reads statistics from file
func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := json.Unmarshal(data, &s.stats); err != nil {
		return err
	}
	// A literal null decodes to a nil map
	if s.stats == nil {
		s.stats = make(map[string]*MonthlyStats)
	}
	return nil
}

// save writes statistics to file
func (s *Storage) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write to temporary file first
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	// Rename temporary file to actual file (atomic operation)
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile) // Clean up temp file if rename fails
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// backgroundWriter handles periodic writes to disk
func (s *Storage) backgroundWriter() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			// Immediate write requested
		case <-ticker.C:
			// Periodic write
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			log.Error().Err(err).Str("path", s.filePath).Msg("failed to persist stats")
		}
	}
}

// Flush writes the current statistics to disk synchronously
func (s *Storage) Flush() error {
	return s.save()
}

// Close stops the background writer and persists a final snapshot
func (s *Storage) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.save()
}

func (s *Storage) monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
		// Write requested
	default:
		// Buffer full, write already pending
	}
}

// IncrementStats adds d to the current month's counters
func (s *Storage) IncrementStats(d Delta) {
	now := s.now()
	month := s.monthKey(now)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}

	stats.ForecastRuns += d.ForecastRuns
	stats.ForecastFailures += d.ForecastFailures
	stats.SweepRuns += d.SweepRuns
	stats.CacheHits += d.CacheHits
	stats.CacheMisses += d.CacheMisses
	stats.LastUpdated = now

	// Request a write if enough time has passed
	if now.Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = now
	}
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	month := s.monthKey(s.now())

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// Cleanup removes statistics older than the given number of months, counting the current one
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	current := s.now()
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		// Step from the first of the month so day overflow cannot skip a month
		first := time.Date(current.Year(), current.Month()-time.Month(i), 1, 0, 0, 0, 0, current.Location())
		keep[s.monthKey(first)] = true
	}

	s.mutex.Lock()
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
		}
	}
	s.mutex.Unlock()

	// Request a write to persist changes
	s.requestWrite()

	log.Debug().Int("retain_months", retainMonths).Msg("cleaned up statistics")
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns a sorted list of all months that have statistics
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}

	// newest first
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}
