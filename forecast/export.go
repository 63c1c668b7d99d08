package forecast

import (
	"io"
	"strconv"
	"strings"
)

// CSVHeader is the first line of an exported forecast
const CSVHeader = "Month,Traffic,Conversions,Revenue,ROI"

// ExportCSV renders projections using their display values, one row per
// month joined by newlines with no trailing newline.
func ExportCSV(projections []Projection) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')
	for i, p := range projections {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join([]string{
			p.Month,
			strconv.Itoa(p.Traffic),
			strconv.Itoa(p.Conversions),
			p.Revenue,
			p.ROI,
		}, ","))
	}
	return b.String()
}

// WriteCSV writes the ExportCSV rendering to w
func WriteCSV(w io.Writer, projections []Projection) error {
	_, err := io.WriteString(w, ExportCSV(projections))
	return err
}
