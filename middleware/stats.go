package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/seo-optimizer/forecaster/logging"
)

// CategoryKey is the context key handlers set to the industry category of a forecast
const CategoryKey = "forecast.category"

// forecastRoutes are the requests counted as forecast usage
var forecastRoutes = map[string]bool{
	"/api/forecast":        true,
	"/api/forecast/export": true,
	"/api/forecast/report": true,
	"/api/whatif":          true,
}

// StatsMiddleware tracks visitors and forecast requests, saving every saveEvery requests
func StatsMiddleware(stats *logging.Statistics, saveEvery int, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if !forecastRoutes[c.FullPath()] {
			return
		}

		loadTime := float64(time.Since(start).Milliseconds())
		stats.TrackForecast(c.GetString(CategoryKey), loadTime, c.Writer.Status() >= 400)

		if saveEvery > 0 && stats.Requests()%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					logger.Error().Err(err).Msg("failed to save statistics")
				}
			}()
		}
	}
}
