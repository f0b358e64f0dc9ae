package model

import (
	"fmt"
	"sort"
	"time"
)

// Default scheduling limits for a benchmark case.
const (
	DefaultIterations       = 20
	DefaultWarmupIterations = 10
	DefaultRounds           = 1
	DefaultMinTime          = 5 * time.Second
	DefaultMaxTime          = 20 * time.Second

	// MinMeasuredIterations is the floor on measured passes required for
	// statistical analysis, regardless of the configured target.
	MinMeasuredIterations = 3
)

// Action is the benchmarked callable. One invocation performs one round of
// work for the given keyword-argument variation; the scheduler does the
// timing and repetition itself.
type Action func(kwargs map[string]string) error

// Hook is an optional setup or teardown callable run outside the timed
// region of each pass.
type Hook func() error

// Case declares one benchmark: the action, its reporting identity, its
// scheduling limits and the keyword-argument sweep to run it across.
type Case struct {
	Group       string
	Title       string
	Description string

	// N is the O-notation weight attached to the reported results. It never
	// enters throughput computation; Rounds is the sole denominator there.
	N int

	Iterations       int
	WarmupIterations int
	Rounds           int
	MinTime          time.Duration
	MaxTime          time.Duration

	// Timeout bounds each action call when positive. A timed-out action is
	// abandoned, not killed.
	Timeout time.Duration

	// Variations maps kwarg names to the values to sweep; a run is executed
	// for every element of the cartesian product. VariationCols selects
	// which kwargs label reported rows and maps them to column titles.
	Variations    map[string][]string
	VariationCols map[string]string

	Action   Action
	Setup    Hook
	Teardown Hook
}

// ApplyDefaults fills zero-valued scheduling limits with the package
// defaults.
func (c *Case) ApplyDefaults() {
	if c.N == 0 {
		c.N = 1
	}
	if c.Iterations == 0 {
		c.Iterations = DefaultIterations
	}
	if c.WarmupIterations == 0 {
		c.WarmupIterations = DefaultWarmupIterations
	}
	if c.Rounds == 0 {
		c.Rounds = DefaultRounds
	}
	if c.MinTime == 0 {
		c.MinTime = DefaultMinTime
	}
	if c.MaxTime == 0 {
		c.MaxTime = DefaultMaxTime
	}
}

// Validate checks the case invariants. It is called once before a session
// schedules the case; validation failures always abort, never coerce.
func (c *Case) Validate() error {
	if c.Group == "" {
		return &Error{Kind: BlankField, msg: "case group must not be blank"}
	}
	if c.Title == "" {
		return &Error{Kind: BlankField, msg: "case title must not be blank"}
	}
	if c.Description == "" {
		return &Error{Kind: BlankField, msg: "case description must not be blank"}
	}
	if c.Action == nil {
		return &Error{Kind: MissingAction, msg: fmt.Sprintf("case %q has no action", c.Title)}
	}
	if c.N < 1 {
		return &Error{Kind: BadCount, msg: fmt.Sprintf("case %q: n must be >= 1, got %d", c.Title, c.N)}
	}
	if c.Iterations < 1 {
		return &Error{Kind: BadCount, msg: fmt.Sprintf("case %q: iterations must be >= 1, got %d", c.Title, c.Iterations)}
	}
	if c.WarmupIterations < 0 {
		return &Error{Kind: BadCount, msg: fmt.Sprintf("case %q: warmup iterations must be >= 0, got %d", c.Title, c.WarmupIterations)}
	}
	if c.Rounds < 1 {
		return &Error{Kind: BadCount, msg: fmt.Sprintf("case %q: rounds must be >= 1, got %d", c.Title, c.Rounds)}
	}
	if c.MinTime <= 0 || c.MaxTime <= 0 {
		return &Error{Kind: BadTimeRange, msg: fmt.Sprintf("case %q: time limits must be positive", c.Title)}
	}
	if c.MaxTime <= c.MinTime {
		return &Error{Kind: BadTimeRange, msg: fmt.Sprintf(
			"case %q: max time %s must exceed min time %s", c.Title, c.MaxTime, c.MinTime)}
	}
	for col := range c.VariationCols {
		if _, ok := c.Variations[col]; !ok {
			return &Error{Kind: UnknownVariationCol, msg: fmt.Sprintf(
				"case %q: variation column %q has no declared variations", c.Title, col)}
		}
	}
	return nil
}

// ExpandVariations returns the cartesian product of the declared kwarg
// variations as a deterministic list: keys are iterated in sorted order and
// the last key varies fastest. A case without variations yields a single
// empty kwargs map.
func (c *Case) ExpandVariations() []map[string]string {
	if len(c.Variations) == 0 {
		return []map[string]string{{}}
	}

	keys := make([]string, 0, len(c.Variations))
	for k := range c.Variations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expanded := []map[string]string{{}}
	for _, key := range keys {
		values := c.Variations[key]
		next := make([]map[string]string, 0, len(expanded)*len(values))
		for _, partial := range expanded {
			for _, v := range values {
				kwargs := make(map[string]string, len(partial)+1)
				for pk, pv := range partial {
					kwargs[pk] = pv
				}
				kwargs[key] = v
				next = append(next, kwargs)
			}
		}
		expanded = next
	}
	return expanded
}

// VariationMarks projects the kwargs of one run onto the case's variation
// columns, labelling the run's point in the sweep.
func (c *Case) VariationMarks(kwargs map[string]string) map[string]string {
	marks := make(map[string]string, len(c.VariationCols))
	for col := range c.VariationCols {
		marks[col] = kwargs[col]
	}
	return marks
}
