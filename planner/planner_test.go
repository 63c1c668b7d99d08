package planner

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/seo-optimizer/forecaster/forecast"
	"github.com/seo-optimizer/forecaster/metrics"
	"github.com/seo-optimizer/forecaster/stats"
)

func testRequest() Request {
	return Request{
		Keywords: []forecast.Keyword{
			{Text: "gas bbq", SearchVolume: 8000, Position: 8, TargetPosition: 3, Difficulty: 50},
			{Text: "bbq grill", SearchVolume: 5000, Position: 9, TargetPosition: 4, Difficulty: 55},
		},
		Settings: forecast.Settings{
			Category:          forecast.CategoryBBQ,
			ProjectionPeriod:  6,
			Currency:          "GBP (£)",
			ConversionRate:    3,
			Investment:        5000,
			AverageOrderValue: 250,
			CTRModel:          "Default",
		},
	}
}

func newTestPlanner(t *testing.T, opts ...Option) (*Planner, *stats.Storage) {
	t.Helper()
	storage, err := stats.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create stats storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	opts = append([]Option{WithStats(storage), WithMetrics(metrics.New(prometheus.NewRegistry()))}, opts...)
	p := New(opts...)
	t.Cleanup(p.Close)
	return p, storage
}

func TestForecastCaching(t *testing.T) {
	p, storage := newTestPlanner(t)
	req := testRequest()

	if p.IsCached(req) {
		t.Fatal("Request should not be cached before the first run")
	}

	first, err := p.Forecast(req)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if len(first.Projections) != 6 {
		t.Fatalf("Expected 6 projections, got %d", len(first.Projections))
	}
	if !p.IsCached(req) {
		t.Error("Request should be cached after the first run")
	}

	// Mutating a returned result must not leak into the cache
	first.Projections[0].Traffic = -1
	first.Projections[0].KeywordBreakdown[0].Keyword = "mutated"

	second, err := p.Forecast(req)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if second.Projections[0].Traffic == -1 || second.Projections[0].KeywordBreakdown[0].Keyword == "mutated" {
		t.Error("Cached result was mutated through a returned copy")
	}

	current := storage.GetCurrentStats()
	if current.CacheHits != 1 || current.CacheMisses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d and %d", current.CacheHits, current.CacheMisses)
	}
	if current.ForecastRuns != 1 {
		t.Errorf("Expected 1 forecast run, got %d", current.ForecastRuns)
	}

	changed := testRequest()
	changed.Settings.ConversionRate = 4
	if p.IsCached(changed) {
		t.Error("A different request should not hit the cache")
	}
}

func TestCacheExpiry(t *testing.T) {
	p, _ := newTestPlanner(t, WithCacheTTL(time.Minute))
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }

	req := testRequest()
	if _, err := p.Forecast(req); err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if !p.IsCached(req) {
		t.Fatal("Expected request to be cached")
	}

	clock = clock.Add(2 * time.Minute)
	if p.IsCached(req) {
		t.Error("Expected cached result to expire")
	}

	p.cleanup()
	if got := p.GetCacheStats().Entries; got != 0 {
		t.Errorf("Expected cleanup to purge expired entries, got %d", got)
	}
}

func TestCacheSizeLimit(t *testing.T) {
	p, _ := newTestPlanner(t, WithMaxCacheSize(2))
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	reqs := make([]Request, 3)
	for i := range reqs {
		reqs[i] = testRequest()
		reqs[i].Settings.ProjectionPeriod = i + 1
		if _, err := p.Forecast(reqs[i]); err != nil {
			t.Fatalf("Forecast failed: %v", err)
		}
	}

	if got := p.GetCacheStats().Entries; got != 2 {
		t.Errorf("Expected 2 cached entries, got %d", got)
	}
	if p.IsCached(reqs[0]) {
		t.Error("Expected the oldest entry to be evicted")
	}
	if !p.IsCached(reqs[2]) {
		t.Error("Expected the newest entry to be cached")
	}
}

func TestForecastErrors(t *testing.T) {
	p, storage := newTestPlanner(t)

	bad := testRequest()
	bad.Settings.ProjectionPeriod = 13
	if _, err := p.Forecast(bad); !errors.Is(err, forecast.ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod, got %v", err)
	}
	if p.IsCached(bad) {
		t.Error("Failed runs should not be cached")
	}

	unknown := testRequest()
	unknown.Settings.CTRModel = "Voice"
	if _, err := p.Forecast(unknown); !errors.Is(err, forecast.ErrUnknownCTRModel) {
		t.Errorf("Expected ErrUnknownCTRModel, got %v", err)
	}

	nan := testRequest()
	nan.Keywords[0].Position = math.NaN()
	if _, err := p.Forecast(nan); !errors.Is(err, forecast.ErrMalformedKeyword) {
		t.Errorf("Expected ErrMalformedKeyword, got %v", err)
	}

	if got := storage.GetCurrentStats().ForecastFailures; got != 3 {
		t.Errorf("Expected 3 failures, got %d", got)
	}
}

func TestWhatIf(t *testing.T) {
	p, storage := newTestPlanner(t)

	req := WhatIfRequest{
		Request:    testRequest(),
		Variable:   forecast.SweepAverageOrderValue,
		RangeStart: 200,
		RangeEnd:   300,
	}
	points, err := p.WhatIf(req)
	if err != nil {
		t.Fatalf("WhatIf failed: %v", err)
	}
	if len(points) != forecast.SweepPoints {
		t.Errorf("Expected %d points, got %d", forecast.SweepPoints, len(points))
	}

	req.RangeStart, req.RangeEnd = 300, 200
	points, err = p.WhatIf(req)
	if err != nil || len(points) != 0 {
		t.Errorf("Expected an empty sweep, got %d points (%v)", len(points), err)
	}

	if got := storage.GetCurrentStats().SweepRuns; got != 2 {
		t.Errorf("Expected 2 sweep runs, got %d", got)
	}
}

func TestConcurrentForecasts(t *testing.T) {
	p, _ := newTestPlanner(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testRequest()
			req.Settings.ProjectionPeriod = i%12 + 1
			if _, err := p.Forecast(req); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent forecast error: %v", err)
	}
	if got := p.GetCacheStats().Entries; got != 12 {
		t.Errorf("Expected 12 cached entries, got %d", got)
	}
}

func TestOutcome(t *testing.T) {
	tests := map[error]string{
		nil:                              "ok",
		forecast.ErrInvalidPeriod:        "invalid_period",
		forecast.ErrNoKeywords:           "no_keywords",
		&forecast.KeywordError{}:         "malformed_keyword",
		forecast.ErrInvalidCTRRate:       "invalid_ctr_model",
		forecast.ErrUnknownSweepVariable: "invalid_variable",
		errors.New("boom"):               "error",
	}
	for err, want := range tests {
		if got := Outcome(err); got != want {
			t.Errorf("Outcome(%v): expected %s, got %s", err, want, got)
		}
	}
}
