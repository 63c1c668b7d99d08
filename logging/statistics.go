package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Statistics represents service usage collected across requests
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`   // IP -> last visit
	ForecastRequests int                  `json:"forecastRequests"` // forecast and what-if requests
	ErrorCount       int                  `json:"errorCount"`
	Categories       map[string]int       `json:"categories"`       // industry category -> requests
	AverageLoadTime  float64              `json:"averageLoadTime"`  // milliseconds
	TotalLoadTime    float64              `json:"totalLoadTime"`
	RequestCount     int                  `json:"requestCount"`
	LastPersisted    time.Time            `json:"lastPersisted"`

	path  string
	mutex sync.RWMutex
}

// NewStatistics creates statistics persisted at path, loading any previous snapshot
func NewStatistics(path string) (*Statistics, error) {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		Categories:     make(map[string]int),
		LastPersisted:  time.Now(),
		path:           path,
	}
	if err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// TrackForecast records a forecast or what-if request
func (s *Statistics) TrackForecast(category string, loadTime float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ForecastRequests++
	if category != "" {
		s.Categories[category]++
	}
	if hasError {
		s.ErrorCount++
	}

	s.TotalLoadTime += loadTime
	s.RequestCount++
	s.AverageLoadTime = s.TotalLoadTime / float64(s.RequestCount)
}

// Requests returns the number of tracked forecast requests
func (s *Statistics) Requests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.ForecastRequests
}

func (s *Statistics) uniqueVisitors24h() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

func (s *Statistics) errorRate() float64 {
	if s.ForecastRequests == 0 {
		return 0
	}
	return (float64(s.ErrorCount) / float64(s.ForecastRequests)) * 100
}

// topCategories returns up to n categories ordered by request count
func (s *Statistics) topCategories(n int) map[string]int {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Categories[names[i]] == s.Categories[names[j]] {
			return names[i] < names[j]
		}
		return s.Categories[names[i]] > s.Categories[names[j]]
	})

	result := make(map[string]int, n)
	for i := 0; i < len(names) && i < n; i++ {
		result[names[i]] = s.Categories[names[i]]
	}
	return result
}

// Save persists the statistics to disk
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("could not create statistics file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}
	return nil
}

// Load reads the statistics from disk. A missing file is not an error.
func (s *Statistics) Load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}
	defer file.Close()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := json.NewDecoder(file).Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.Categories == nil {
		s.Categories = make(map[string]int)
	}
	return nil
}

// GetStatistics returns a snapshot of the statistics. Category popularity is only included in dev mode.
func (s *Statistics) GetStatistics(devMode bool) map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitors24h(),
		"totalRequests":     s.ForecastRequests,
		"errorRate":         s.errorRate(),
		"averageLoadTime":   s.AverageLoadTime,
	}
	if devMode {
		out["popularCategories"] = s.topCategories(5)
	}
	return out
}
