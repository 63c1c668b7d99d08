package forecast

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	// MinPeriod and MaxPeriod bound Settings.ProjectionPeriod
	MinPeriod = 1
	MaxPeriod = 12

	// rangeSpread is the relative width of the confidence band around each monthly estimate
	rangeSpread = 0.10

	labelYear = 2025
)

// ValidatePeriod checks the forecast horizon
func ValidatePeriod(period int) error {
	if period < MinPeriod || period > MaxPeriod {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	return nil
}

// Forecast projects traffic, conversions, revenue and cumulative ROI for each
// month of the horizon. It is a pure function of its inputs; the result has
// exactly s.ProjectionPeriod entries in month order, or an error and no output.
func Forecast(keywords []Keyword, s Settings, model CTRModel) ([]Projection, error) {
	if err := ValidatePeriod(s.ProjectionPeriod); err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	projections := make([]Projection, 0, s.ProjectionPeriod)
	var totalRevenue float64

	for month := 1; month <= s.ProjectionPeriod; month++ {
		m, err := AggregateMonth(keywords, s, model, month)
		if err != nil {
			return nil, fmt.Errorf("month %d: %w", month, err)
		}

		totalRevenue += m.Revenue

		projections = append(projections, Projection{
			Month:             MonthLabel(month),
			Traffic:           roundInt(m.Traffic),
			Conversions:       roundInt(m.Conversions),
			Revenue:           formatMoney(m.Revenue),
			ROI:               formatPercent(roi(totalRevenue, s.Investment)),
			CumulativeRevenue: round2(totalRevenue),
			TrafficRange:      [2]int{roundInt(m.Traffic * (1 - rangeSpread)), roundInt(m.Traffic * (1 + rangeSpread))},
			ConversionsRange:  [2]int{roundInt(m.Conversions * (1 - rangeSpread)), roundInt(m.Conversions * (1 + rangeSpread))},
			RevenueRange:      [2]float64{round2(m.Revenue * (1 - rangeSpread)), round2(m.Revenue * (1 + rangeSpread))},
			KeywordBreakdown:  m.Breakdown,
		})
	}

	return projections, nil
}

// MonthLabel returns the short month name for a 1-based forecast month
func MonthLabel(month int) string {
	return time.Date(labelYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan")
}

func roi(cumulativeRevenue, investment float64) float64 {
	return (cumulativeRevenue - investment) / investment * 100
}

// roundInt rounds half up, matching how the display values have always been produced
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// FormatFloat alone rounds exact ties to even; round first so display strings agree with round2
func formatMoney(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', 1, 64)
}
