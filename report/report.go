package report

import (
	"html/template"
	"io"
	"strconv"

	"github.com/seo-optimizer/forecaster/forecast"
)

var page = template.Must(template.New("report").Funcs(template.FuncMap{"money": money}).Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>SEO Forecast</title>
    <style>
      body { font-family: Arial, sans-serif; padding: 20px; }
      table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
      th, td { border: 1px solid #ddd; padding: 8px; text-align: right; }
      th { background-color: #f2f2f2; text-align: left; }
      h2 { text-align: center; }
      .break-even { background-color: #e6ffe6; padding: 10px; border-radius: 5px; }
    </style>
  </head>
  <body>
    <h2>SEO Forecast</h2>
    <table id="projections">
      <thead>
        <tr>
          <th>Month</th>
          <th>Traffic (±10%)</th>
          <th>Conversions (±10%)</th>
          <th>Revenue ({{.Symbol}}) (±10%)</th>
          <th>ROI</th>
        </tr>
      </thead>
      <tbody>
        {{- range .Projections}}
        <tr>
          <td>{{.Month}}</td>
          <td>{{.Traffic}} ({{index .TrafficRange 0}} - {{index .TrafficRange 1}})</td>
          <td>{{.Conversions}} ({{index .ConversionsRange 0}} - {{index .ConversionsRange 1}})</td>
          <td>{{.Revenue}} ({{money (index .RevenueRange 0)}} - {{money (index .RevenueRange 1)}})</td>
          <td>{{.ROI}}%</td>
        </tr>
        {{- end}}
      </tbody>
    </table>
    <div class="break-even">
      <strong>Break-Even Analysis:</strong> You will recover your {{.Symbol}}{{money .Investment}} investment by {{.BreakEven}}.
    </div>
  </body>
</html>
`))

type view struct {
	Symbol      string
	Investment  float64
	BreakEven   string
	Projections []forecast.Projection
}

// Render writes the printable forecast view
func Render(w io.Writer, projections []forecast.Projection, s forecast.Settings) error {
	return page.Execute(w, view{
		Symbol:      forecast.CurrencySymbol(s.Currency),
		Investment:  s.Investment,
		BreakEven:   forecast.Summarize(projections, s).BreakEvenMonth,
		Projections: projections,
	})
}

// money trims trailing zeros the way the range columns have always been shown
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
