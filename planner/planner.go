package planner

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/seo-optimizer/forecaster/forecast"
	"github.com/seo-optimizer/forecaster/metrics"
	"github.com/seo-optimizer/forecaster/stats"
)

// Request is the snapshot of inputs for one forecast run
type Request struct {
	Keywords  []forecast.Keyword `json:"keywords"`
	Settings  forecast.Settings  `json:"settings"`
	CustomCTR map[int]float64    `json:"customCtr,omitempty"`
}

// WhatIfRequest adds the swept parameter and its range to a Request
type WhatIfRequest struct {
	Request
	Variable   forecast.SweepVariable `json:"variable"`
	RangeStart float64                `json:"rangeStart"`
	RangeEnd   float64                `json:"rangeEnd"`
}

// Result is a completed forecast
type Result struct {
	Projections []forecast.Projection `json:"projections"`
	Summary     forecast.Summary      `json:"summary"`
}

// CacheStats provides statistics about the planner's result cache
type CacheStats struct {
	Entries     int           `json:"entries"`
	CacheHits   int           `json:"cacheHits"`
	CacheMisses int           `json:"cacheMisses"`
	CacheTTL    time.Duration `json:"cacheTTL"`
}

type cacheEntry struct {
	result    *Result
	timestamp time.Time
}

// Planner runs forecasts and sweeps, serving repeated identical forecasts from a TTL cache
type Planner struct {
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	cleanupInterval time.Duration
	stats           *stats.Storage
	metrics         *metrics.Recorder
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

// Option configures a Planner
type Option func(*Planner)

// WithCacheTTL sets how long a forecast result stays cached
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Planner) { p.cacheTTL = ttl }
}

// WithMaxCacheSize bounds the number of cached results
func WithMaxCacheSize(n int) Option {
	return func(p *Planner) { p.maxCacheSize = n }
}

// WithCleanupInterval sets how often expired entries are purged
func WithCleanupInterval(d time.Duration) Option {
	return func(p *Planner) { p.cleanupInterval = d }
}

// WithStats records run statistics in storage
func WithStats(storage *stats.Storage) Option {
	return func(p *Planner) { p.stats = storage }
}

// WithMetrics records Prometheus metrics on rec
func WithMetrics(rec *metrics.Recorder) Option {
	return func(p *Planner) { p.metrics = rec }
}

// New creates a Planner and starts its cleanup loop
func New(opts ...Option) *Planner {
	p := &Planner{
		cache:           make(map[string]cacheEntry),
		cacheTTL:        30 * time.Minute,
		maxCacheSize:    1000,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.periodicCleanup()

	return p
}

// Close stops the cleanup loop
func (p *Planner) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Planner) periodicCleanup() {
	ticker := time.NewTicker(p.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cleanup()
		case <-p.stop:
			return
		}
	}
}

// cleanup removes expired entries and enforces the size limit, oldest first
func (p *Planner) cleanup() {
	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	p.cleanupLocked()
}

func (p *Planner) cleanupLocked() {
	now := p.now()
	for key, entry := range p.cache {
		if now.Sub(entry.timestamp) > p.cacheTTL {
			delete(p.cache, key)
		}
	}

	if len(p.cache) <= p.maxCacheSize {
		return
	}

	type keyed struct {
		key       string
		timestamp time.Time
	}
	entries := make([]keyed, 0, len(p.cache))
	for key, entry := range p.cache {
		entries = append(entries, keyed{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < len(entries)-p.maxCacheSize; i++ {
		delete(p.cache, entries[i].key)
	}
}

// ClearCache drops every cached result
func (p *Planner) ClearCache() {
	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	p.cache = make(map[string]cacheEntry)
}

// GetCacheStats returns statistics about the cache
func (p *Planner) GetCacheStats() CacheStats {
	var current stats.MonthlyStats
	if p.stats != nil {
		current = p.stats.GetCurrentStats()
	}

	p.cacheMutex.RLock()
	defer p.cacheMutex.RUnlock()

	return CacheStats{
		Entries:     len(p.cache),
		CacheHits:   current.CacheHits,
		CacheMisses: current.CacheMisses,
		CacheTTL:    p.cacheTTL,
	}
}

// IsCached reports whether req has an unexpired cached result
func (p *Planner) IsCached(req Request) bool {
	key, ok := cacheKey(req)
	if !ok {
		return false
	}
	p.cacheMutex.RLock()
	defer p.cacheMutex.RUnlock()

	entry, found := p.cache[key]
	return found && p.now().Sub(entry.timestamp) < p.cacheTTL
}

// Forecast runs the projection for req, or returns a copy of the cached result
func (p *Planner) Forecast(req Request) (*Result, error) {
	key, cacheable := cacheKey(req)
	if cacheable {
		p.cacheMutex.RLock()
		entry, found := p.cache[key]
		p.cacheMutex.RUnlock()
		if found && p.now().Sub(entry.timestamp) < p.cacheTTL {
			p.record(stats.Delta{CacheHits: 1})
			if p.metrics != nil {
				p.metrics.RecordCache(true)
			}
			return cloneResult(entry.result), nil
		}
		p.record(stats.Delta{CacheMisses: 1})
		if p.metrics != nil {
			p.metrics.RecordCache(false)
		}
	}

	result, err := run(req)
	if p.metrics != nil {
		p.metrics.RecordForecast(Outcome(err), len(req.Keywords))
	}
	if err != nil {
		p.record(stats.Delta{ForecastRuns: 1, ForecastFailures: 1})
		return nil, err
	}
	p.record(stats.Delta{ForecastRuns: 1})

	if cacheable {
		p.cacheMutex.Lock()
		p.cache[key] = cacheEntry{result: result, timestamp: p.now()}
		if len(p.cache) > p.maxCacheSize {
			p.cleanupLocked()
		}
		p.cacheMutex.Unlock()
	}

	return cloneResult(result), nil
}

// WhatIf runs a sensitivity sweep for req
func (p *Planner) WhatIf(req WhatIfRequest) ([]forecast.SensitivityPoint, error) {
	model, err := forecast.ParseCTRModel(req.Settings.CTRModel, req.CustomCTR)
	if err == nil {
		var points []forecast.SensitivityPoint
		points, err = forecast.Sweep(req.Keywords, req.Settings, model, req.Variable, req.RangeStart, req.RangeEnd)
		if err == nil {
			p.record(stats.Delta{SweepRuns: 1})
			if p.metrics != nil {
				p.metrics.RecordSweep(string(req.Variable), Outcome(nil))
			}
			return points, nil
		}
	}

	p.record(stats.Delta{SweepRuns: 1, ForecastFailures: 1})
	if p.metrics != nil {
		p.metrics.RecordSweep(string(req.Variable), Outcome(err))
	}
	return nil, err
}

func run(req Request) (*Result, error) {
	model, err := forecast.ParseCTRModel(req.Settings.CTRModel, req.CustomCTR)
	if err != nil {
		return nil, err
	}
	projections, err := forecast.Forecast(req.Keywords, req.Settings, model)
	if err != nil {
		return nil, err
	}
	return &Result{
		Projections: projections,
		Summary:     forecast.Summarize(projections, req.Settings),
	}, nil
}

func (p *Planner) record(d stats.Delta) {
	if p.stats != nil {
		p.stats.IncrementStats(d)
	}
}

// Outcome maps a run error to a low-cardinality metric label
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, forecast.ErrInvalidPeriod):
		return "invalid_period"
	case errors.Is(err, forecast.ErrMalformedKeyword):
		return "malformed_keyword"
	case errors.Is(err, forecast.ErrNoKeywords):
		return "no_keywords"
	case errors.Is(err, forecast.ErrUnknownCTRModel), errors.Is(err, forecast.ErrInvalidCTRRate):
		return "invalid_ctr_model"
	case errors.Is(err, forecast.ErrUnknownSweepVariable):
		return "invalid_variable"
	default:
		return "error"
	}
}

// cacheKey hashes the canonical JSON form of req. Inputs that cannot be
// encoded, such as NaN positions, are not cached.
func cacheKey(req Request) (string, bool) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", false
	}
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:]), true
}

func cloneResult(r *Result) *Result {
	out := &Result{
		Projections: make([]forecast.Projection, len(r.Projections)),
		Summary:     r.Summary,
	}
	for i, p := range r.Projections {
		p.KeywordBreakdown = append([]forecast.KeywordContribution(nil), p.KeywordBreakdown...)
		out.Projections[i] = p
	}
	return out
}
