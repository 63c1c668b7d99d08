package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/seo-optimizer/forecaster/forecast"
	"github.com/seo-optimizer/forecaster/keywords"
	"github.com/seo-optimizer/forecaster/logging"
	"github.com/seo-optimizer/forecaster/middleware"
	"github.com/seo-optimizer/forecaster/planner"
	"github.com/seo-optimizer/forecaster/report"
	"github.com/seo-optimizer/forecaster/settings"
	"github.com/seo-optimizer/forecaster/stats"
)

const (
	// maxUploadSize bounds keyword file uploads
	maxUploadSize = 10 << 20
	// cacheHeader reports whether a forecast came from the planner cache
	cacheHeader = "X-Cache"
)

// Handler serves the forecasting API
type Handler struct {
	planner *planner.Planner
	store   *settings.Store
	stats   *logging.Statistics
	usage   *stats.Storage
	devMode bool
	logger  zerolog.Logger
}

// New creates a Handler
func New(p *planner.Planner, store *settings.Store, visitors *logging.Statistics, usage *stats.Storage, devMode bool, logger zerolog.Logger) *Handler {
	return &Handler{
		planner: p,
		store:   store,
		stats:   visitors,
		usage:   usage,
		devMode: devMode,
		logger:  logger,
	}
}

// Register mounts the API routes under /api
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/ctr-models", h.ctrModels)

		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.putSettings)
		api.DELETE("/settings", h.resetSettings)

		api.GET("/keywords/sample", h.sampleCSV)
		api.GET("/keywords/defaults", h.defaultKeywords)
		api.POST("/keywords/import", h.importKeywords)

		api.POST("/forecast", h.forecast)
		api.POST("/forecast/export", h.exportCSV)
		api.POST("/forecast/report", h.printReport)
		api.POST("/whatif", h.whatIf)

		api.GET("/statistics", h.statistics)
	}
}

type forecastRequest struct {
	Keywords  []forecast.Keyword `json:"keywords"`
	Settings  *forecast.Settings `json:"settings"`
	CustomCTR map[int]float64    `json:"customCtr"`
}

type whatIfRequest struct {
	forecastRequest
	Variable   forecast.SweepVariable `json:"variable" binding:"required"`
	RangeStart *float64               `json:"rangeStart"`
	RangeEnd   *float64               `json:"rangeEnd"`
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ctrModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":     forecast.CTRModels(),
		"custom":     h.store.Load().CustomCTR,
		"categories": forecast.Categories(),
	})
}

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Load())
}

func (h *Handler) putSettings(c *gin.Context) {
	var st settings.State
	if err := c.ShouldBindJSON(&st); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload"})
		return
	}
	if err := h.store.Save(st); err != nil {
		h.logger.Warn().Err(err).Str("request_id", middleware.RequestID(c)).Msg("rejected settings")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.store.Load())
}

func (h *Handler) resetSettings(c *gin.Context) {
	st, err := h.store.Reset()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to reset settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset settings"})
		return
	}
	h.planner.ClearCache()
	c.JSON(http.StatusOK, st)
}

func (h *Handler) sampleCSV(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="sample_keywords.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(keywords.SampleCSV))
}

func (h *Handler) defaultKeywords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"keywords": settings.DefaultKeywords()})
}

func (h *Handler) importKeywords(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	parsed, err := keywords.Parse(header.Filename, file)
	if err != nil {
		h.logger.Warn().Err(err).Str("file", header.Filename).Str("request_id", middleware.RequestID(c)).Msg("keyword import failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": importMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": parsed})
}

// resolve fills omitted settings and custom CTR from the store and validates the period and keyword set
func (h *Handler) resolve(c *gin.Context, req forecastRequest) (planner.Request, bool) {
	stored := h.store.Load()
	out := planner.Request{
		Keywords:  req.Keywords,
		Settings:  stored.Settings,
		CustomCTR: stored.CustomCTR,
	}
	if req.Settings != nil {
		out.Settings = *req.Settings
	}
	if req.CustomCTR != nil {
		out.CustomCTR = req.CustomCTR
	}

	c.Set(middleware.CategoryKey, out.Settings.Category)

	// The horizon is checked before any keyword
	if err := forecast.ValidatePeriod(out.Settings.ProjectionPeriod); err != nil {
		h.writeError(c, err)
		return planner.Request{}, false
	}
	if err := keywords.Validate(out.Keywords); err != nil {
		h.writeError(c, err)
		return planner.Request{}, false
	}
	return out, true
}

func (h *Handler) runForecast(c *gin.Context) (*planner.Result, forecast.Settings, bool) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return nil, forecast.Settings{}, false
	}
	resolved, ok := h.resolve(c, req)
	if !ok {
		return nil, forecast.Settings{}, false
	}

	cached := h.planner.IsCached(resolved)
	result, err := h.planner.Forecast(resolved)
	if err != nil {
		h.writeError(c, err)
		return nil, forecast.Settings{}, false
	}

	cacheStatus := "MISS"
	if cached {
		cacheStatus = "HIT"
	}
	c.Header(cacheHeader, cacheStatus)
	return result, resolved.Settings, true
}

func (h *Handler) forecast(c *gin.Context) {
	result, _, ok := h.runForecast(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) exportCSV(c *gin.Context) {
	result, _, ok := h.runForecast(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="seo_projections.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(forecast.ExportCSV(result.Projections)))
}

func (h *Handler) printReport(c *gin.Context) {
	result, s, ok := h.runForecast(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, result.Projections, s); err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) whatIf(c *gin.Context) {
	var req whatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	resolved, ok := h.resolve(c, req.forecastRequest)
	if !ok {
		return
	}

	start, end := sweepRange(req, resolved.Settings)
	points, err := h.planner.WhatIf(planner.WhatIfRequest{
		Request:    resolved,
		Variable:   req.Variable,
		RangeStart: start,
		RangeEnd:   end,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variable":   req.Variable,
		"rangeStart": start,
		"rangeEnd":   end,
		"points":     points,
	})
}

// sweepRange defaults an omitted bound to one unit either side of the current value
func sweepRange(req whatIfRequest, s forecast.Settings) (float64, float64) {
	current := s.ConversionRate
	if req.Variable == forecast.SweepAverageOrderValue {
		current = s.AverageOrderValue
	}
	start, end := current-1, current+1
	if req.RangeStart != nil {
		start = *req.RangeStart
	}
	if req.RangeEnd != nil {
		end = *req.RangeEnd
	}
	return start, end
}

func (h *Handler) statistics(c *gin.Context) {
	out := h.stats.GetStatistics(h.devMode)
	if h.devMode {
		out["cache"] = h.planner.GetCacheStats()
		out["usage"] = h.monthlyUsage()
	}
	c.JSON(http.StatusOK, out)
}

// monthlyUsage lists the retained months, newest first
func (h *Handler) monthlyUsage() gin.H {
	if h.usage == nil {
		return gin.H{}
	}
	months := h.usage.GetAllMonths()
	byMonth := make(map[string]stats.MonthlyStats, len(months))
	for _, m := range months {
		if ms, ok := h.usage.GetMonthlyStats(m); ok {
			byMonth[m] = ms
		}
	}
	return gin.H{
		"current": h.usage.GetCurrentStats(),
		"months":  months,
		"byMonth": byMonth,
	}
}

func importMessage(err error) string {
	switch {
	case errors.Is(err, keywords.ErrUnsupportedFormat),
		errors.Is(err, keywords.ErrMissingColumns),
		errors.Is(err, keywords.ErrInvalidRows),
		errors.Is(err, keywords.ErrEmptyFile):
		return err.Error()
	default:
		return "Error parsing file. Please check the format."
	}
}
