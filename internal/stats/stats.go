// Package stats reduces raw benchmark samples to summary statistics.
//
// A Stats is immutable after construction: every derived figure is computed
// eagerly in New, so there is no cache to invalidate and accessors are safe
// for concurrent use.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/seantiz/benchtop/internal/siunits"
)

// percentileCount is the number of percentile values computed, covering the
// 0th through 100th percentile inclusive.
const percentileCount = 101

// equalTol is the relative/absolute tolerance used when comparing derived
// statistics across instances.
const equalTol = 1e-9

// Stats holds an ordered sample set and its derived summary statistics.
//
// Data order is preserved as given so a time series remains reconstructable;
// percentile computation sorts an internal copy.
type Stats struct {
	unit   string
	scale  float64
	rounds int
	data   []float64

	mean        float64
	median      float64
	min         float64
	max         float64
	stdev       float64
	adjStdev    float64
	relStdev    float64
	percentiles []float64
}

// New builds a Stats over data. The unit must be non-blank, scale positive,
// rounds at least 1 and data non-empty; rounds is the number of operations
// averaged into each sample.
func New(unit string, scale float64, rounds int, data []float64) (*Stats, error) {
	if unit == "" {
		return nil, &Error{Kind: BlankUnit, msg: "unit must not be blank"}
	}
	if scale <= 0 {
		return nil, &Error{Kind: NonPositiveScale, msg: fmt.Sprintf("scale must be > 0, got %g", scale)}
	}
	if rounds < 1 {
		return nil, &Error{Kind: NonPositiveRounds, msg: fmt.Sprintf("rounds must be >= 1, got %d", rounds)}
	}
	if len(data) == 0 {
		return nil, &Error{Kind: EmptyData, msg: "data must not be empty"}
	}

	s := &Stats{
		unit:   unit,
		scale:  scale,
		rounds: rounds,
		data:   append([]float64(nil), data...),
	}
	s.compute()
	return s, nil
}

// compute fills every derived field from s.data.
func (s *Stats) compute() {
	s.mean = stat.Mean(s.data, nil)

	sorted := append([]float64(nil), s.data...)
	sort.Float64s(sorted)
	s.min = sorted[0]
	s.max = sorted[len(sorted)-1]

	if len(s.data) > 1 {
		s.stdev = stat.StdDev(s.data, nil)
	}
	s.adjStdev = s.stdev * math.Sqrt(float64(s.rounds))
	if s.mean != 0 {
		s.relStdev = math.Abs(s.stdev/s.mean) * 100
	}

	s.percentiles = make([]float64, percentileCount)
	if len(sorted) == 1 {
		for i := range s.percentiles {
			s.percentiles[i] = sorted[0]
		}
	} else {
		for i := range s.percentiles {
			s.percentiles[i] = quantileInclusive(sorted, float64(i)/100)
		}
	}
	s.median = s.percentiles[50]
}

// quantileInclusive returns the p-quantile (0 <= p <= 1) of sorted using
// linear interpolation between closest ranks, the inclusive method: the
// 0-quantile is the minimum and the 1-quantile the maximum.
func quantileInclusive(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Unit returns the unit of measurement, e.g. "ns" or "ops/s".
func (s *Stats) Unit() string { return s.unit }

// Scale returns the factor mapping stored values to the base unit.
func (s *Stats) Scale() float64 { return s.scale }

// Rounds returns the number of operations averaged into each sample.
func (s *Stats) Rounds() int { return s.rounds }

// Data returns a copy of the samples in insertion order.
func (s *Stats) Data() []float64 { return append([]float64(nil), s.data...) }

// Mean returns the arithmetic mean of the samples.
func (s *Stats) Mean() float64 { return s.mean }

// Median returns the median of the samples.
func (s *Stats) Median() float64 { return s.median }

// Min returns the smallest sample.
func (s *Stats) Min() float64 { return s.min }

// Max returns the largest sample.
func (s *Stats) Max() float64 { return s.max }

// StandardDeviation returns the sample standard deviation, or 0 when fewer
// than two samples exist.
func (s *Stats) StandardDeviation() float64 { return s.stdev }

// AdjustedStandardDeviation compensates for intra-sample averaging: averaging
// rounds operations into one sample suppresses observed variance by roughly
// 1/sqrt(rounds), so the sample deviation is multiplied back by sqrt(rounds).
func (s *Stats) AdjustedStandardDeviation() float64 { return s.adjStdev }

// RelativeStandardDeviation returns |stdev/mean|*100, or 0 when the mean is 0.
func (s *Stats) RelativeStandardDeviation() float64 { return s.relStdev }

// Percentiles returns a copy of the 101 percentile values, indexed 0..100.
func (s *Stats) Percentiles() []float64 { return append([]float64(nil), s.percentiles...) }

// Equal reports whether two Stats agree once one side is rescaled into the
// other's unit. Units must decompose to the same SI base unit; all derived
// statistics are compared within floating-point tolerance. Raw data points
// are not compared, so a Stats and the Summary derived from it are equal.
func (s *Stats) Equal(other *Stats) bool {
	if other == nil {
		return false
	}
	return derivedEqual(s.view(), other.view())
}

// Summary projects s into its export-safe form.
func (s *Stats) Summary() *Summary { return NewSummaryFromStats(s) }

func (s *Stats) view() derivedView {
	return derivedView{
		unit:        s.unit,
		scale:       s.scale,
		mean:        s.mean,
		median:      s.median,
		min:         s.min,
		max:         s.max,
		stdev:       s.stdev,
		adjStdev:    s.adjStdev,
		relStdev:    s.relStdev,
		percentiles: s.percentiles,
	}
}

// derivedView is the unit-bearing set of derived statistics shared by Stats
// and Summary for comparison purposes.
type derivedView struct {
	unit        string
	scale       float64
	mean        float64
	median      float64
	min         float64
	max         float64
	stdev       float64
	adjStdev    float64
	relStdev    float64
	percentiles []float64
}

// derivedEqual compares two derived-statistics views, rescaling b into a's
// unit first. Comparing raw magnitudes across differently-scaled instances
// would be meaningless, so the unit decomposition and the scale ratio must
// agree before any figure is compared.
func derivedEqual(a, b derivedView) bool {
	aBase := baseUnitOf(a.unit)
	bBase := baseUnitOf(b.unit)
	if aBase != bBase {
		return false
	}

	relativeScale := a.scale / b.scale
	scaleBy := 1.0
	if a.unit != b.unit {
		var err error
		scaleBy, err = siunits.ScaleToUnit(aBase, b.unit, a.unit)
		if err != nil {
			return false
		}
	}
	if !scalar.EqualWithinAbsOrRel(scaleBy, relativeScale, equalTol, equalTol) {
		return false
	}

	eq := func(x, y float64) bool {
		return scalar.EqualWithinAbsOrRel(x, y/relativeScale, equalTol, equalTol)
	}
	if !eq(a.mean, b.mean) || !eq(a.median, b.median) ||
		!eq(a.min, b.min) || !eq(a.max, b.max) ||
		!eq(a.stdev, b.stdev) || !eq(a.adjStdev, b.adjStdev) {
		return false
	}
	if !scalar.EqualWithinAbsOrRel(a.relStdev, b.relStdev, equalTol, equalTol) {
		return false
	}
	if len(a.percentiles) != len(b.percentiles) {
		return false
	}
	for i := range a.percentiles {
		if !eq(a.percentiles[i], b.percentiles[i]) {
			return false
		}
	}
	return true
}

// baseUnitOf strips a recognized SI prefix from unit. Compound units like
// "ops/s" or "bytes" carry no prefix and are already base units.
func baseUnitOf(unit string) string {
	base, err := siunits.UnitBase(unit)
	if err != nil {
		return unit
	}
	return base
}
