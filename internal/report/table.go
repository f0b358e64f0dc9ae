package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/siunits"
)

var (
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	rowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TableReporter renders a terminal table, one section per group.
type TableReporter struct{}

var _ Reporter = TableReporter{}

func (TableReporter) Report(w io.Writer, results []*model.Results) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("no results"))
		return err
	}

	order, byGroup := groupResults(results)

	for _, group := range order {
		rs := byGroup[group]

		if _, err := fmt.Fprintln(w, groupStyle.Render(group)); err != nil {
			return err
		}

		// One timing unit per group keeps rows comparable.
		var timings []float64
		for _, r := range rs {
			timings = append(timings, r.PerRoundTiming().Min())
		}
		timeUnit, timeFactor := siunits.ScaleForSmallest(timings, model.BaseInterval)

		header := fmt.Sprintf("  %-40s %6s %14s %8s %12s %12s",
			"case", "iters", "ops/s", "rsd", "time/"+timeUnit, "mem/bytes")
		if _, err := fmt.Fprintln(w, headerStyle.Render(header)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, dimStyle.Render("  "+strings.Repeat("-", 96))); err != nil {
			return err
		}

		for _, r := range rs {
			row := fmt.Sprintf("  %-40s %6d %14.6g %7.2f%% %12.6g %12.6g",
				caseLabel(r),
				len(r.Iterations()),
				r.OpsPerSecond().Mean(),
				r.OpsPerSecond().RelativeStandardDeviation(),
				r.PerRoundTiming().Mean()*timeFactor,
				r.Memory().Mean(),
			)
			if _, err := fmt.Fprintln(w, rowStyle.Render(row)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
