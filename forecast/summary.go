package forecast

import "strings"

// NotReached is the break-even label when the investment is never recovered
const NotReached = "N/A"

// Summarize totals a projection series and finds the break-even month: the
// first month whose cumulative revenue meets or exceeds the investment.
func Summarize(projections []Projection, s Settings) Summary {
	sum := Summary{BreakEvenMonth: NotReached, FinalROI: formatPercent(roi(0, s.Investment))}

	for _, p := range projections {
		sum.TotalTraffic += p.Traffic
		sum.TotalConversions += p.Conversions
		if !sum.BreakEven && p.CumulativeRevenue >= s.Investment {
			sum.BreakEven = true
			sum.BreakEvenMonth = p.Month
		}
	}
	if n := len(projections); n > 0 {
		sum.TotalRevenue = projections[n-1].CumulativeRevenue
		sum.FinalROI = projections[n-1].ROI
	}

	return sum
}

// CurrencySymbol extracts the symbol from a label such as "GBP (£)"
func CurrencySymbol(label string) string {
	fields := strings.Fields(label)
	if len(fields) < 2 {
		return ""
	}
	return strings.Trim(fields[1], "()")
}
