package stats

import "fmt"

// Summary is the export-safe projection of a Stats: the same derived
// statistics with the raw samples dropped. Fields are copied from the source
// Stats, never recomputed, so a round trip through a Summary is exact.
type Summary struct {
	Unit                      string    `json:"unit"`
	Scale                     float64   `json:"scale"`
	Rounds                    int       `json:"rounds"`
	Mean                      float64   `json:"mean"`
	Median                    float64   `json:"median"`
	Min                       float64   `json:"min"`
	Max                       float64   `json:"max"`
	StandardDeviation         float64   `json:"standard_deviation"`
	AdjustedStandardDeviation float64   `json:"adjusted_standard_deviation"`
	RelativeStandardDeviation float64   `json:"relative_standard_deviation"`
	Percentiles               []float64 `json:"percentiles"`
}

// NewSummaryFromStats projects s into a Summary by field copy.
func NewSummaryFromStats(s *Stats) *Summary {
	return &Summary{
		Unit:                      s.unit,
		Scale:                     s.scale,
		Rounds:                    s.rounds,
		Mean:                      s.mean,
		Median:                    s.median,
		Min:                       s.min,
		Max:                       s.max,
		StandardDeviation:         s.stdev,
		AdjustedStandardDeviation: s.adjStdev,
		RelativeStandardDeviation: s.relStdev,
		Percentiles:               append([]float64(nil), s.percentiles...),
	}
}

// Validate checks the invariants a well-formed Summary carries. It is used
// when a Summary re-enters the system from storage or the wire.
func (sm *Summary) Validate() error {
	if sm.Unit == "" {
		return &Error{Kind: BlankUnit, msg: "summary unit must not be blank"}
	}
	if sm.Scale <= 0 {
		return &Error{Kind: NonPositiveScale, msg: fmt.Sprintf("summary scale must be > 0, got %g", sm.Scale)}
	}
	if sm.Rounds < 1 {
		return &Error{Kind: NonPositiveRounds, msg: fmt.Sprintf("summary rounds must be >= 1, got %d", sm.Rounds)}
	}
	if len(sm.Percentiles) != percentileCount {
		return &Error{Kind: BadSummaryField, msg: fmt.Sprintf(
			"summary must carry %d percentiles, got %d", percentileCount, len(sm.Percentiles))}
	}
	if sm.StandardDeviation < 0 || sm.RelativeStandardDeviation < 0 {
		return &Error{Kind: BadSummaryField, msg: "summary deviations must not be negative"}
	}
	return nil
}

// Equal reports whether two summaries agree once rescaled into a common
// unit, with the same semantics as Stats.Equal.
func (sm *Summary) Equal(other *Summary) bool {
	if other == nil {
		return false
	}
	return derivedEqual(sm.view(), other.view())
}

// EqualStats compares a Summary against the Stats it may have been derived
// from.
func (sm *Summary) EqualStats(s *Stats) bool {
	if s == nil {
		return false
	}
	return derivedEqual(sm.view(), s.view())
}

func (sm *Summary) view() derivedView {
	return derivedView{
		unit:        sm.Unit,
		scale:       sm.Scale,
		mean:        sm.Mean,
		median:      sm.Median,
		min:         sm.Min,
		max:         sm.Max,
		stdev:       sm.StandardDeviation,
		adjStdev:    sm.AdjustedStandardDeviation,
		relStdev:    sm.RelativeStandardDeviation,
		percentiles: sm.Percentiles,
	}
}
