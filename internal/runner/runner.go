// Package runner is the adaptive benchmark scheduler: it repeatedly executes
// a case's action, measures each pass, and stops once enough signal has been
// gathered without exceeding the case's hard time budget.
//
// The scheduler is strictly single-threaded: iterations never execute
// concurrently, since contended CPU and cache would corrupt the timing and
// the wall-clock stop conditions.
package runner

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/timeout"
)

// Clock supplies the current time. The default is time.Now, whose monotonic
// reading gives nanosecond-class timer resolution; tests inject a fake.
type Clock func() time.Time

// Observer receives progress updates once per pass, with completed in
// [0, 100].
type Observer func(completed float64, description string)

// Options are the cross-cutting collaborators a Runner can be given.
type Options struct {
	Clock    Clock
	Observer Observer
	Logger   *slog.Logger
}

// Runner executes one (case, variation) pair. Construct a new Runner per
// pair; the scheduling limits come from the case itself.
type Runner struct {
	c      *model.Case
	kwargs map[string]string

	clock    Clock
	observer Observer
	logger   *slog.Logger
	timer    *timeout.Timeout
}

// New validates the case and builds a Runner bound to one kwargs variation.
func New(c *model.Case, kwargs map[string]string, opts Options) (*Runner, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		c:        c,
		kwargs:   kwargs,
		clock:    opts.Clock,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if c.Timeout > 0 {
		r.timer = timeout.New(c.Timeout)
	}
	return r, nil
}

// Run drives the measurement loop and assembles the Results.
//
// Passes continue while the measured-iteration floor or the minimum time has
// not been reached, and stop unconditionally once the maximum time is
// exceeded: a pathologically slow action is cut off even if the iteration
// floor was never met. The first max(1, WarmupIterations) passes are
// discarded as warmup. An action error aborts the run immediately and is
// returned unchanged; no partial Results is produced.
func (r *Runner) Run() (*model.Results, error) {
	c := r.c

	// Start from a collected heap so the first pass does not pay for garbage
	// created before the benchmark.
	runtime.GC()

	start := r.clock()
	minStopAt := start.Add(c.MinTime)
	maxStopAt := start.Add(c.MaxTime)
	effectiveMin := max(model.MinMeasuredIterations, c.Iterations)
	warmup := max(1, c.WarmupIterations)

	var (
		pass         int
		totalElapsed int64
		iterations   []model.Iteration
	)

	for {
		pass++

		if c.Setup != nil {
			if err := c.Setup(); err != nil {
				return nil, fmt.Errorf("setup before pass %d: %w", pass, err)
			}
		}

		memBefore := readMem()
		t0 := r.clock()
		err := r.invokeAction()
		t1 := r.clock()
		memAfter := readMem()

		if c.Teardown != nil {
			if terr := c.Teardown(); terr != nil && err == nil {
				return nil, fmt.Errorf("teardown after pass %d: %w", pass, terr)
			}
		}
		if err != nil {
			return nil, err
		}

		if pass > warmup {
			elapsed := t1.Sub(t0).Nanoseconds()
			it, ierr := model.NewIteration(c.Rounds, elapsed,
				memAfter.alloc-memBefore.alloc, memAfter.totalAlloc-memBefore.totalAlloc)
			if ierr != nil {
				return nil, ierr
			}
			iterations = append(iterations, it)
			totalElapsed += elapsed
		}

		now := r.clock()
		r.observe(len(iterations), effectiveMin, start, minStopAt, now)

		if (len(iterations) >= effectiveMin && !now.Before(minStopAt)) || !now.Before(maxStopAt) {
			break
		}
	}

	if len(iterations) == 0 {
		// The time budget expired inside warmup; there is no signal to
		// report and an empty Results would violate the stats invariants.
		return nil, &Error{Kind: BudgetExhausted, msg: fmt.Sprintf(
			"case %q: max time %s expired before any measured iteration", c.Title, c.MaxTime)}
	}

	r.logger.Debug("run complete",
		"group", c.Group,
		"title", c.Title,
		"iterations", len(iterations),
		"total_elapsed_ns", totalElapsed,
	)

	return model.NewResults(model.ResultsParams{
		Group:          c.Group,
		Title:          c.Title,
		Description:    c.Description,
		N:              c.N,
		Rounds:         c.Rounds,
		TotalElapsed:   totalElapsed,
		VariationMarks: c.VariationMarks(r.kwargs),
		VariationCols:  c.VariationCols,
		Iterations:     iterations,
	})
}

// invokeAction runs the action Rounds times inside the timed region; the
// pass as a whole represents n=Rounds operations. Each call goes through the
// timeout wrapper when the case bounds its actions.
func (r *Runner) invokeAction() error {
	for i := 0; i < r.c.Rounds; i++ {
		if r.timer == nil {
			if err := r.c.Action(r.kwargs); err != nil {
				return err
			}
			continue
		}
		if _, err := r.timer.Run(func() (any, error) {
			return nil, r.c.Action(r.kwargs)
		}); err != nil {
			return err
		}
	}
	return nil
}

// observe reports scheduling progress: whichever is further behind, the
// iteration floor or the minimum-time window, dictates the completion figure.
func (r *Runner) observe(measured, effectiveMin int, start, minStopAt, now time.Time) {
	if r.observer == nil {
		return
	}

	iterCompletion := 100 * float64(measured) / float64(effectiveMin)
	wall := now.Sub(start)
	window := minStopAt.Sub(start)
	timeCompletion := 100 * float64(wall) / float64(window)

	completed := min(iterCompletion, timeCompletion)
	if completed > 100 {
		completed = 100
	}
	r.observer(completed, fmt.Sprintf("benchmarking %s: %s (iteration %d; time %.2fs)",
		r.c.Group, r.c.Title, measured, wall.Seconds()))
}

// memSample is a snapshot of the allocator counters around a timed region.
type memSample struct {
	// alloc is the live heap at sampling time; deltas may be negative when a
	// collection ran mid-pass.
	alloc int64
	// totalAlloc is cumulative bytes allocated, monotonically increasing, so
	// its delta captures the allocation pressure of a pass.
	totalAlloc int64
}

func readMem() memSample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return memSample{
		alloc:      int64(m.HeapAlloc),
		totalAlloc: int64(m.TotalAlloc),
	}
}
