package model

import (
	"time"

	"github.com/seantiz/benchtop/internal/stats"
)

// Run status constants.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// validTransitions maps each status to the set of statuses it may transition to.
var validTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusRunning: true,
		StatusFailed:  true,
	},
	StatusRunning: {
		StatusCompleted: true,
		StatusFailed:    true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// RunSummary is the persisted projection of a Results: the four
// per-dimension stat summaries without raw samples.
type RunSummary struct {
	OpsPerSecond   *stats.Summary `json:"ops_per_second"`
	PerRoundTiming *stats.Summary `json:"per_round_timing"`
	Memory         *stats.Summary `json:"memory"`
	PeakMemory     *stats.Summary `json:"peak_memory"`
}

// SummarizeResults projects a Results into its persisted form.
func SummarizeResults(r *Results) *RunSummary {
	return &RunSummary{
		OpsPerSecond:   r.OpsPerSecond().Summary(),
		PerRoundTiming: r.PerRoundTiming().Summary(),
		Memory:         r.Memory().Summary(),
		PeakMemory:     r.PeakMemory().Summary(),
	}
}

// Run is one persisted benchmark run: a single (case, variation) execution
// and, once finished, its summarized results.
type Run struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Group       string `json:"group"`
	Title       string `json:"title"`
	Description string `json:"description"`

	N      int `json:"n"`
	Rounds int `json:"rounds"`

	VariationMarks map[string]string `json:"variation_marks,omitempty"`

	Iterations     int   `json:"iterations"`
	TotalElapsedNS int64 `json:"total_elapsed_ns"`

	Summary *RunSummary `json:"summary,omitempty"`
	Error   string      `json:"error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
