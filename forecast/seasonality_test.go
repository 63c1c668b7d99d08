package forecast

import "testing"

func TestSeasonalityMultiplier(t *testing.T) {
	tests := []struct {
		month    int
		category string
		want     float64
	}{
		{1, CategoryBBQ, 0.8},
		{6, CategoryBBQ, 1.3},
		{12, CategoryChristmas, 1.5},
		{4, CategoryChristmas, 0.5},
		{11, CategoryFashion, 1.3},
		{1, "Unknown Category", 1.0},
		{7, "Unknown Category", 1.0},
		{13, CategoryBBQ, 1.0},
		{0, CategoryFashion, 1.0},
	}
	for _, tt := range tests {
		if got := SeasonalityMultiplier(tt.month, tt.category); got != tt.want {
			t.Errorf("SeasonalityMultiplier(%d, %q): expected %v, got %v", tt.month, tt.category, tt.want, got)
		}
	}
}

func TestCategoriesHaveFullYear(t *testing.T) {
	for _, c := range Categories() {
		for month := 1; month <= 12; month++ {
			if _, ok := seasonality[c][month]; !ok {
				t.Errorf("Category %q is missing month %d", c, month)
			}
		}
	}
}
