package model

import (
	"github.com/seantiz/benchtop/internal/stats"
)

// Results bundles the statistics of one completed (case, variation) run:
// one Stats per measurement dimension plus the run metadata. It is
// constructed once when the scheduler finishes and immutable thereafter;
// accessors hand out defensive copies of anything mutable.
type Results struct {
	group       string
	title       string
	description string

	n            int
	rounds       int
	totalElapsed int64

	variationMarks map[string]string
	variationCols  map[string]string

	iterations []Iteration

	opsPerSecond   *stats.Stats
	perRoundTiming *stats.Stats
	memory         *stats.Stats
	peakMemory     *stats.Stats
}

// ResultsParams carries everything NewResults needs from a finished
// scheduler run.
type ResultsParams struct {
	Group          string
	Title          string
	Description    string
	N              int
	Rounds         int
	TotalElapsed   int64
	VariationMarks map[string]string
	VariationCols  map[string]string
	Iterations     []Iteration
}

// NewResults assembles the four per-dimension statistics bundles from the
// recorded iterations. Pure assembly: all computation is delegated to the
// stats engine.
func NewResults(p ResultsParams) (*Results, error) {
	if p.Group == "" || p.Title == "" || p.Description == "" {
		return nil, &Error{Kind: BlankField, msg: "results group, title and description must not be blank"}
	}
	if p.N < 1 {
		return nil, &Error{Kind: BadCount, msg: "results n must be >= 1"}
	}
	if p.Rounds < 1 {
		return nil, &Error{Kind: BadCount, msg: "results rounds must be >= 1"}
	}
	if p.TotalElapsed < 0 {
		return nil, &Error{Kind: BadCount, msg: "results total elapsed must be >= 0"}
	}
	if len(p.Iterations) == 0 {
		return nil, &Error{Kind: NoIterations, msg: "results need at least one measured iteration"}
	}

	ops := make([]float64, len(p.Iterations))
	perRound := make([]float64, len(p.Iterations))
	memory := make([]float64, len(p.Iterations))
	peak := make([]float64, len(p.Iterations))
	for i, it := range p.Iterations {
		ops[i] = it.OpsPerSecond()
		perRound[i] = it.PerRoundElapsed()
		memory[i] = float64(it.Memory)
		peak[i] = float64(it.PeakMemory)
	}

	opsStats, err := stats.New(OpsUnit, OpsScale, p.Rounds, ops)
	if err != nil {
		return nil, err
	}
	perRoundStats, err := stats.New(BaseInterval, 1.0, p.Rounds, perRound)
	if err != nil {
		return nil, err
	}
	memoryStats, err := stats.New(MemoryUnit, MemoryScale, p.Rounds, memory)
	if err != nil {
		return nil, err
	}
	peakStats, err := stats.New(MemoryUnit, MemoryScale, p.Rounds, peak)
	if err != nil {
		return nil, err
	}

	return &Results{
		group:          p.Group,
		title:          p.Title,
		description:    p.Description,
		n:              p.N,
		rounds:         p.Rounds,
		totalElapsed:   p.TotalElapsed,
		variationMarks: copyStringMap(p.VariationMarks),
		variationCols:  copyStringMap(p.VariationCols),
		iterations:     append([]Iteration(nil), p.Iterations...),
		opsPerSecond:   opsStats,
		perRoundTiming: perRoundStats,
		memory:         memoryStats,
		peakMemory:     peakStats,
	}, nil
}

// Group returns the reporting group the case belongs to.
func (r *Results) Group() string { return r.group }

// Title returns the case title.
func (r *Results) Title() string { return r.title }

// Description returns the case description.
func (r *Results) Description() string { return r.description }

// N returns the O-notation weight the case declared.
func (r *Results) N() int { return r.n }

// Rounds returns the rounds executed per measured pass.
func (r *Results) Rounds() int { return r.rounds }

// TotalElapsed returns the accumulated measured time in raw interval units.
func (r *Results) TotalElapsed() int64 { return r.totalElapsed }

// VariationMarks returns a copy of the kwarg labels identifying this run's
// point in the variation sweep.
func (r *Results) VariationMarks() map[string]string { return copyStringMap(r.variationMarks) }

// VariationCols returns a copy of the kwarg-to-column-title mapping.
func (r *Results) VariationCols() map[string]string { return copyStringMap(r.variationCols) }

// Iterations returns a copy of the measured iterations in execution order.
func (r *Results) Iterations() []Iteration { return append([]Iteration(nil), r.iterations...) }

// OpsPerSecond returns the throughput statistics.
func (r *Results) OpsPerSecond() *stats.Stats { return r.opsPerSecond }

// PerRoundTiming returns the per-round latency statistics in the base
// interval unit.
func (r *Results) PerRoundTiming() *stats.Stats { return r.perRoundTiming }

// Memory returns the allocation-delta statistics.
func (r *Results) Memory() *stats.Stats { return r.memory }

// PeakMemory returns the peak allocation-delta statistics.
func (r *Results) PeakMemory() *stats.Stats { return r.peakMemory }

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
