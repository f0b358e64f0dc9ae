package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/stats"
)

// JSONReporter writes a full results document. Raw samples are omitted by
// default so the document stays proportional to the number of runs, not the
// number of iterations; set IncludeData to embed them.
type JSONReporter struct {
	IncludeData bool
}

var _ Reporter = JSONReporter{}

// runDocument is the JSON projection of one run's results.
type runDocument struct {
	Group          string            `json:"group"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	N              int               `json:"n"`
	Rounds         int               `json:"rounds"`
	Iterations     int               `json:"iterations"`
	TotalElapsedNS int64             `json:"total_elapsed_ns"`
	Variation      map[string]string `json:"variation,omitempty"`

	OpsPerSecond   *stats.Summary `json:"ops_per_second"`
	PerRoundTiming *stats.Summary `json:"per_round_timing"`
	Memory         *stats.Summary `json:"memory"`
	PeakMemory     *stats.Summary `json:"peak_memory"`

	Samples *runSamples `json:"samples,omitempty"`
}

// runSamples carries the raw per-iteration values when IncludeData is set.
type runSamples struct {
	OpsPerSecond   []float64 `json:"ops_per_second"`
	PerRoundTiming []float64 `json:"per_round_timing"`
	Memory         []float64 `json:"memory"`
	PeakMemory     []float64 `json:"peak_memory"`
}

func (j JSONReporter) Report(w io.Writer, results []*model.Results) error {
	docs := make([]runDocument, len(results))
	for i, r := range results {
		docs[i] = runDocument{
			Group:          r.Group(),
			Title:          r.Title(),
			Description:    r.Description(),
			N:              r.N(),
			Rounds:         r.Rounds(),
			Iterations:     len(r.Iterations()),
			TotalElapsedNS: r.TotalElapsed(),
			Variation:      r.VariationMarks(),
			OpsPerSecond:   r.OpsPerSecond().Summary(),
			PerRoundTiming: r.PerRoundTiming().Summary(),
			Memory:         r.Memory().Summary(),
			PeakMemory:     r.PeakMemory().Summary(),
		}
		if j.IncludeData {
			docs[i].Samples = &runSamples{
				OpsPerSecond:   r.OpsPerSecond().Data(),
				PerRoundTiming: r.PerRoundTiming().Data(),
				Memory:         r.Memory().Data(),
				PeakMemory:     r.PeakMemory().Data(),
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
