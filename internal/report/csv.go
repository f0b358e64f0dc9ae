package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/siunits"
)

// csvHeader lists the columns written for every run. Timing columns share a
// single display unit chosen for the whole file.
var csvHeader = []string{
	"group", "title", "variation", "n", "rounds", "iterations",
	"ops_mean", "ops_median", "ops_min", "ops_max", "ops_rsd_pct",
	"time_unit", "time_mean", "time_median", "time_min", "time_max",
	"mem_mean_bytes", "peak_mem_mean_bytes",
}

// CSVReporter writes one row per run with summary statistics. Per-round
// timings are scaled to the SI unit that renders the smallest timing in the
// file as a number >= 1.
type CSVReporter struct{}

var _ Reporter = CSVReporter{}

func (CSVReporter) Report(w io.Writer, results []*model.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	// Pick one timing unit for the whole file so rows compare at a glance.
	var timings []float64
	for _, r := range results {
		timings = append(timings, r.PerRoundTiming().Min())
	}
	timeUnit, timeFactor := siunits.ScaleForSmallest(timings, model.BaseInterval)

	for _, r := range results {
		ops := r.OpsPerSecond()
		timing := r.PerRoundTiming()

		row := []string{
			r.Group(),
			r.Title(),
			formatMarks(r.VariationMarks()),
			strconv.Itoa(r.N()),
			strconv.Itoa(r.Rounds()),
			strconv.Itoa(len(r.Iterations())),
			formatFloat(ops.Mean()),
			formatFloat(ops.Median()),
			formatFloat(ops.Min()),
			formatFloat(ops.Max()),
			formatFloat(ops.RelativeStandardDeviation()),
			timeUnit,
			formatFloat(timing.Mean() * timeFactor),
			formatFloat(timing.Median() * timeFactor),
			formatFloat(timing.Min() * timeFactor),
			formatFloat(timing.Max() * timeFactor),
			formatFloat(r.Memory().Mean()),
			formatFloat(r.PeakMemory().Mean()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
