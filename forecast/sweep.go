package forecast

import "fmt"

// SweepVariable names the monetization parameter perturbed by a what-if sweep
type SweepVariable string

const (
	SweepConversionRate    SweepVariable = "conversionRate"
	SweepAverageOrderValue SweepVariable = "averageOrderValue"
)

// SweepPoints is the number of evenly spaced values evaluated by Sweep
const SweepPoints = 5

// Sweep re-runs the monthly aggregation over the whole horizon for five
// values of one parameter, evenly spaced from rangeStart to rangeEnd. A
// reversed range yields no points.
func Sweep(keywords []Keyword, s Settings, model CTRModel, variable SweepVariable, rangeStart, rangeEnd float64) ([]SensitivityPoint, error) {
	if variable != SweepConversionRate && variable != SweepAverageOrderValue {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSweepVariable, variable)
	}
	if err := ValidatePeriod(s.ProjectionPeriod); err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	if rangeEnd < rangeStart {
		return []SensitivityPoint{}, nil
	}

	step := (rangeEnd - rangeStart) / (SweepPoints - 1)
	points := make([]SensitivityPoint, 0, SweepPoints)

	for i := 0; i < SweepPoints; i++ {
		value := rangeStart + step*float64(i)
		if i == SweepPoints-1 {
			value = rangeEnd
		}

		perturbed := s
		switch variable {
		case SweepConversionRate:
			perturbed.ConversionRate = value
		case SweepAverageOrderValue:
			perturbed.AverageOrderValue = value
		}

		var traffic, conversions, revenue float64
		for month := 1; month <= s.ProjectionPeriod; month++ {
			m, err := AggregateMonth(keywords, perturbed, model, month)
			if err != nil {
				return nil, fmt.Errorf("sweep value %v, month %d: %w", value, month, err)
			}
			traffic += m.Traffic
			conversions += m.Conversions
			revenue += m.Revenue
		}

		points = append(points, SensitivityPoint{
			Value:       round2(value),
			Traffic:     roundInt(traffic),
			Conversions: roundInt(conversions),
			Revenue:     round2(revenue),
		})
	}

	return points, nil
}
