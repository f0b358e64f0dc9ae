package model

import "fmt"

// Default measurement units for a single pass: elapsed time is recorded as
// raw nanoseconds scaled into seconds, memory as raw bytes.
const (
	IntervalUnit  = "ns"
	IntervalScale = 1e-9
	BaseInterval  = "s"
	MemoryUnit    = "bytes"
	MemoryScale   = 1.0
	OpsUnit       = "ops/s"
	OpsScale      = 1.0
)

// Iteration is one measured, non-warmup pass of a benchmarked action. It is
// an immutable value: constructed once per pass and read by the Results
// aggregation.
type Iteration struct {
	// N is the number of rounds executed in this pass.
	N int
	// Elapsed is the raw timer delta for the pass, in Unit at Scale.
	Elapsed int64
	// Unit and Scale map Elapsed to the base interval unit.
	Unit  string
	Scale float64
	// Memory and PeakMemory are allocation deltas around the timed region.
	// They may be negative when a collection ran mid-pass.
	Memory     int64
	PeakMemory int64
}

// NewIteration validates and builds an Iteration with the default interval
// unit and scale.
func NewIteration(n int, elapsed, memory, peakMemory int64) (Iteration, error) {
	if n < 1 {
		return Iteration{}, &Error{Kind: BadIteration, msg: fmt.Sprintf("iteration n must be >= 1, got %d", n)}
	}
	if elapsed < 0 {
		return Iteration{}, &Error{Kind: BadIteration, msg: fmt.Sprintf("iteration elapsed must be >= 0, got %d", elapsed)}
	}
	return Iteration{
		N:          n,
		Elapsed:    elapsed,
		Unit:       IntervalUnit,
		Scale:      IntervalScale,
		Memory:     memory,
		PeakMemory: peakMemory,
	}, nil
}

// PerRoundElapsed returns the mean time of a single round scaled to the base
// interval unit.
func (it Iteration) PerRoundElapsed() float64 {
	if it.N == 0 {
		return 0.0
	}
	return float64(it.Elapsed) * it.Scale / float64(it.N)
}

// OpsPerSecond returns the pass throughput. A zero elapsed time yields the
// 0.0 sentinel: the true value would be infinite, which flags a measurement
// below timer resolution rather than a usable result.
func (it Iteration) OpsPerSecond() float64 {
	if it.Elapsed == 0 {
		return 0.0
	}
	return float64(it.N) / (float64(it.Elapsed) * it.Scale)
}
