package forecast

import "math"

// MonthTotals holds unrounded totals for one forecast month
type MonthTotals struct {
	Traffic     float64
	Conversions float64
	Revenue     float64
	Breakdown   []KeywordContribution
}

// AggregateMonth sums traffic, conversions and revenue across all keywords for
// a month. Any keyword with a non-positive volume, position or target aborts
// the whole month with a *KeywordError.
func AggregateMonth(keywords []Keyword, s Settings, model CTRModel, month int) (MonthTotals, error) {
	totals := MonthTotals{Breakdown: make([]KeywordContribution, 0, len(keywords))}
	season := SeasonalityMultiplier(month, s.Category)

	for i, k := range keywords {
		if err := checkKeyword(i, k); err != nil {
			return MonthTotals{}, err
		}

		position := PositionAtMonth(k, month, s.ProjectionPeriod)
		traffic := float64(k.SearchVolume) * LookupCTR(position, model) * season
		conversions := traffic * (s.ConversionRate / 100)
		revenue := conversions * s.AverageOrderValue

		totals.Traffic += traffic
		totals.Conversions += conversions
		totals.Revenue += revenue
		totals.Breakdown = append(totals.Breakdown, KeywordContribution{
			Keyword:     k.Text,
			Traffic:     traffic,
			Conversions: conversions,
			Revenue:     revenue,
		})
	}

	return totals, nil
}

func checkKeyword(i int, k Keyword) error {
	switch {
	case k.SearchVolume <= 0:
		return &KeywordError{Index: i, Keyword: k.Text, Field: "searchVolume", Value: float64(k.SearchVolume)}
	case !(k.Position > 0) || math.IsInf(k.Position, 0):
		return &KeywordError{Index: i, Keyword: k.Text, Field: "position", Value: k.Position}
	case !(k.TargetPosition > 0) || math.IsInf(k.TargetPosition, 0):
		return &KeywordError{Index: i, Keyword: k.Text, Field: "targetPosition", Value: k.TargetPosition}
	}
	return nil
}
