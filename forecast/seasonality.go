package forecast

// Industry categories with a seasonal profile
const (
	CategoryBBQ       = "BBQ & Outdoor Cooking"
	CategoryChristmas = "Christmas & Seasonal"
	CategoryFashion   = "Fashion & Apparel"
)

var seasonality = map[string]map[int]float64{
	CategoryBBQ: {
		1: 0.8, 2: 0.9, 3: 1.0, 4: 1.1, 5: 1.2, 6: 1.3,
		7: 1.3, 8: 1.2, 9: 1.1, 10: 1.0, 11: 0.9, 12: 0.8,
	},
	CategoryChristmas: {
		1: 0.8, 2: 0.7, 3: 0.6, 4: 0.5, 5: 0.5, 6: 0.6,
		7: 0.7, 8: 0.8, 9: 0.9, 10: 1.0, 11: 1.2, 12: 1.5,
	},
	CategoryFashion: {
		1: 1.0, 2: 1.1, 3: 1.0, 4: 0.9, 5: 1.0, 6: 1.1,
		7: 1.0, 8: 1.0, 9: 1.1, 10: 1.2, 11: 1.3, 12: 1.2,
	},
}

// Categories returns the categories that carry a seasonal profile
func Categories() []string {
	return []string{CategoryBBQ, CategoryChristmas, CategoryFashion}
}

// SeasonalityMultiplier scales baseline demand for a calendar month.
// Unknown categories and months are neutral (1.0).
func SeasonalityMultiplier(month int, category string) float64 {
	byMonth, ok := seasonality[category]
	if !ok {
		return 1.0
	}
	m, ok := byMonth[month]
	if !ok {
		return 1.0
	}
	return m
}
