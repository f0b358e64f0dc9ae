package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/siunits"
)

// ScatterReporter renders an HTML page with two scatter charts per group:
// mean throughput and mean per-round time across the group's runs.
type ScatterReporter struct{}

var _ Reporter = ScatterReporter{}

func (ScatterReporter) Report(w io.Writer, results []*model.Results) error {
	page := components.NewPage()
	page.PageTitle = "benchmark results"

	order, byGroup := groupResults(results)
	for _, group := range order {
		rs := byGroup[group]

		labels := make([]string, len(rs))
		opsData := make([]opts.ScatterData, len(rs))
		timeData := make([]opts.ScatterData, len(rs))

		var timings []float64
		for _, r := range rs {
			timings = append(timings, r.PerRoundTiming().Mean())
		}
		timeUnit, timeFactor := siunits.ScaleForSmallest(timings, model.BaseInterval)

		for i, r := range rs {
			labels[i] = caseLabel(r)
			opsData[i] = opts.ScatterData{
				Value:      r.OpsPerSecond().Mean(),
				Symbol:     "circle",
				SymbolSize: 12,
			}
			timeData[i] = opts.ScatterData{
				Value:      r.PerRoundTiming().Mean() * timeFactor,
				Symbol:     "diamond",
				SymbolSize: 12,
			}
		}

		page.AddCharts(
			scatterChart(group+" throughput", "ops/s", labels, opsData),
			scatterChart(group+" per-round time", timeUnit, labels, timeData),
		)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render scatter page: %w", err)
	}
	return nil
}

func scatterChart(title, yName string, labels []string, data []opts.ScatterData) *charts.Scatter {
	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	sc.SetXAxis(labels).AddSeries(yName, data)
	return sc
}
