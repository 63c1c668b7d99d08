package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/forecaster/forecast"
	"github.com/seo-optimizer/forecaster/keywords"
	"github.com/seo-optimizer/forecaster/middleware"
)

const (
	msgInvalidPeriod = "Projection period must be between 1 and 12 months."
	msgForecastError = "An error occurred while calculating the forecast."
)

// writeError maps forecasting errors to responses. Malformed-keyword detail is logged, not returned.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *keywords.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid keyword data", "fields": verr.Fields})
	case errors.Is(err, forecast.ErrNoKeywords):
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one keyword is required."})
	case errors.Is(err, forecast.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidPeriod})
	case errors.Is(err, forecast.ErrUnknownCTRModel),
		errors.Is(err, forecast.ErrInvalidCTRRate),
		errors.Is(err, forecast.ErrUnknownSweepVariable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, forecast.ErrMalformedKeyword):
		h.logger.Warn().Err(err).Str("request_id", middleware.RequestID(c)).Msg("forecast aborted on malformed keyword")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgForecastError})
	default:
		h.logger.Error().Err(err).Str("request_id", middleware.RequestID(c)).Msg("forecast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgForecastError})
	}
}
