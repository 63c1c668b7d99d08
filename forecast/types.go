// Package forecast projects SEO traffic, conversions and revenue for a set of
// tracked keywords from ranking, click-through and seasonality assumptions.
package forecast

// Keyword represents a tracked search term and its ranking goals
type Keyword struct {
	Text           string  `json:"keyword" yaml:"keyword" validate:"required"`
	SearchVolume   int     `json:"searchVolume" yaml:"searchVolume" validate:"gt=0"`
	Position       float64 `json:"position" yaml:"position" validate:"gte=1,lte=100"`
	TargetPosition float64 `json:"targetPosition" yaml:"targetPosition" validate:"gte=1,lte=100"`
	Difficulty     int     `json:"difficulty" yaml:"difficulty" validate:"gte=1,lte=100"`
}

// Settings holds the forecast-wide business parameters
type Settings struct {
	Category          string  `json:"category" yaml:"category" default:"BBQ & Outdoor Cooking" validate:"required"`
	ProjectionPeriod  int     `json:"projectionPeriod" yaml:"projectionPeriod" default:"6" validate:"min=1,max=12"`
	Currency          string  `json:"currency" yaml:"currency" default:"GBP (£)"`
	ConversionRate    float64 `json:"conversionRate" yaml:"conversionRate" default:"3.0" validate:"gte=0,lte=100"`
	Investment        float64 `json:"investment" yaml:"investment" default:"5000" validate:"gt=0"`
	AverageOrderValue float64 `json:"averageOrderValue" yaml:"averageOrderValue" default:"250" validate:"gte=0"`
	CTRModel          string  `json:"ctrModel" yaml:"ctrModel" default:"Default" validate:"oneof=Default E-commerce Informational Custom"`
}

// KeywordContribution is one keyword's share of a month's totals
type KeywordContribution struct {
	Keyword     string  `json:"keyword"`
	Traffic     float64 `json:"traffic"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// Projection is the forecast for a single month
type Projection struct {
	Month             string                `json:"month"`
	Traffic           int                   `json:"traffic"`
	Conversions       int                   `json:"conversions"`
	Revenue           string                `json:"revenue"`
	ROI               string                `json:"roi"`
	CumulativeRevenue float64               `json:"cumulativeRevenue"`
	TrafficRange      [2]int                `json:"trafficRange"`
	ConversionsRange  [2]int                `json:"conversionsRange"`
	RevenueRange      [2]float64            `json:"revenueRange"`
	KeywordBreakdown  []KeywordContribution `json:"keywordBreakdown"`
}

// SensitivityPoint is one row of a what-if sweep
type SensitivityPoint struct {
	Value       float64 `json:"value"`
	Traffic     int     `json:"traffic"`
	Conversions int     `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// Summary aggregates a projection series for the break-even panel
type Summary struct {
	TotalTraffic     int     `json:"totalTraffic"`
	TotalConversions int     `json:"totalConversions"`
	TotalRevenue     float64 `json:"totalRevenue"`
	FinalROI         string  `json:"finalRoi"`
	BreakEvenMonth   string  `json:"breakEvenMonth"`
	BreakEven        bool    `json:"breakEven"`
}
