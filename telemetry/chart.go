package telemetry

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series colors of the comparison chart.
const (
	currentColor    = "rgba(54, 162, 235, 0.7)"
	comparisonColor = "rgba(255, 99, 132, 0.7)"
)

// ComparisonChart builds a grouped bar chart of the four metrics for both fans.
func (c Comparison) ComparisonChart() *charts.Bar {
	cur, cmp := metricValues(c.Current), metricValues(c.Compared)
	curData := make([]opts.BarData, len(cur))
	cmpData := make([]opts.BarData, len(cmp))
	for i := range cur {
		curData[i] = opts.BarData{Value: round2(cur[i])}
		cmpData[i] = opts.BarData{Value: round2(cmp[i])}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Fan Comparison", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s vs %s", c.CurrentName, c.ComparisonName),
			Subtitle: fmt.Sprintf("run=%s %s", c.RunID, c.Generated.Format(time.RFC3339)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(metricLabels[:]).
		AddSeries(c.CurrentName, curData,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: currentColor}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries(c.ComparisonName, cmpData,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: comparisonColor}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// RenderComparison writes the comparison chart as a standalone HTML page.
func RenderComparison(w io.Writer, c Comparison) error {
	page := components.NewPage()
	page.AddCharts(c.ComparisonChart())
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering comparison chart: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
