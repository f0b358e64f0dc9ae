package runner

import (
	"errors"
	"testing"
	"time"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/timeout"
)

// scriptClock replays a fixed schedule of instants, then keeps advancing by
// a fallback step so the scheduler's stop conditions always fire eventually.
type scriptClock struct {
	base   time.Time
	script []time.Duration
	step   time.Duration
	calls  int
}

func newScriptClock(step time.Duration, script ...time.Duration) *scriptClock {
	return &scriptClock{base: time.Unix(0, 0), script: script, step: step}
}

func (c *scriptClock) Now() time.Time {
	var offset time.Duration
	if c.calls < len(c.script) {
		offset = c.script[c.calls]
	} else {
		last := time.Duration(0)
		if len(c.script) > 0 {
			last = c.script[len(c.script)-1]
		}
		offset = last + time.Duration(c.calls-len(c.script)+1)*c.step
	}
	c.calls++
	return c.base.Add(offset)
}

// steppingClock advances a fixed step on every reading.
type steppingClock struct {
	base  time.Time
	step  time.Duration
	calls int
}

func (c *steppingClock) Now() time.Time {
	t := c.base.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

func fastCase() *model.Case {
	return &model.Case{
		Group:       "bench",
		Title:       "noop",
		Description: "does nothing",
		N:           1,
		Iterations:  5,
		Rounds:      1,
		MinTime:     time.Nanosecond * 2,
		MaxTime:     time.Hour,
		Action:      func(map[string]string) error { return nil },
	}
}

func TestRunMeetsIterationFloor(t *testing.T) {
	c := fastCase()
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Iterations=5 is the configured target, but the measured floor is
	// max(MinMeasuredIterations, 5) = 5.
	if got := len(res.Iterations()); got != 5 {
		t.Errorf("measured iterations = %d, want 5", got)
	}
}

func TestMeasuredFloorApplies(t *testing.T) {
	c := fastCase()
	c.Iterations = 1
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(res.Iterations()); got != model.MinMeasuredIterations {
		t.Errorf("measured iterations = %d, want the floor %d", got, model.MinMeasuredIterations)
	}
}

func TestMaxTimeAlwaysWins(t *testing.T) {
	c := fastCase()
	c.Iterations = 100
	c.MinTime = 100 * time.Millisecond
	c.MaxTime = 200 * time.Millisecond
	// Each pass consumes three readings of 30ms: passes end at 90ms, 180ms,
	// 270ms... so the 200ms budget cuts the run off after two measured
	// iterations, far short of the configured 100.
	clock := &steppingClock{base: time.Unix(0, 0), step: 30 * time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(res.Iterations()); got >= 100 {
		t.Fatalf("measured %d iterations, want the max-time cutoff to win", got)
	}
}

func TestWarmupDiscarded(t *testing.T) {
	c := fastCase()
	calls := 0
	c.Action = func(map[string]string) error { calls++; return nil }
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Rounds=1, WarmupIterations defaulting to one discarded pass: the
	// action ran once more than the measured count.
	if calls != len(res.Iterations())+1 {
		t.Errorf("action calls = %d, measured = %d; exactly one warmup pass expected",
			calls, len(res.Iterations()))
	}
}

func TestConfiguredWarmupDiscarded(t *testing.T) {
	c := fastCase()
	c.WarmupIterations = 4
	calls := 0
	c.Action = func(map[string]string) error { calls++; return nil }
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != len(res.Iterations())+4 {
		t.Errorf("action calls = %d, measured = %d; four warmup passes expected",
			calls, len(res.Iterations()))
	}
}

func TestZeroElapsedDoesNotDivide(t *testing.T) {
	c := fastCase()
	c.Iterations = 1
	c.MinTime = time.Second
	c.MaxTime = time.Minute
	// All readings inside the measurement window return the same instant, so
	// every measured pass has elapsed 0. The trailing fallback advances past
	// MinTime so the run stops after the floor of three measured passes.
	clock := newScriptClock(2*time.Second,
		0, // start
		0, 0, 0, // warmup pass
		0, 0, 0, // measured 1
		0, 0, 0, // measured 2
		0, 0, // measured 3: t0, t1
	)

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run with zero-elapsed passes must not fail: %v", err)
	}

	for _, it := range res.Iterations() {
		if it.Elapsed != 0 {
			t.Fatalf("iteration elapsed = %d, want 0", it.Elapsed)
		}
		if got := it.OpsPerSecond(); got != 0 {
			t.Errorf("OpsPerSecond() = %g, want the 0.0 sentinel", got)
		}
	}
	if got := res.OpsPerSecond().Mean(); got != 0 {
		t.Errorf("ops mean = %g, want 0", got)
	}
}

func TestActionErrorAborts(t *testing.T) {
	sentinel := errors.New("action failed")
	c := fastCase()
	calls := 0
	c.Action = func(map[string]string) error {
		calls++
		if calls == 3 {
			return sentinel
		}
		return nil
	}
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if !errors.Is(err, sentinel) {
		t.Errorf("Run error = %v, want the action's error unchanged", err)
	}
	if res != nil {
		t.Error("no partial Results may be returned after an action error")
	}
}

func TestSetupTeardownBracketEachPass(t *testing.T) {
	c := fastCase()
	var setups, actions, teardowns int
	c.Setup = func() error { setups++; return nil }
	c.Teardown = func() error { teardowns++; return nil }
	c.Action = func(map[string]string) error {
		actions++
		if setups != teardowns+1 {
			t.Fatal("action ran outside a setup/teardown bracket")
		}
		return nil
	}
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if setups != teardowns || setups != actions {
		t.Errorf("setups = %d, teardowns = %d, actions = %d; want equal counts", setups, teardowns, actions)
	}
}

func TestSetupErrorAborts(t *testing.T) {
	c := fastCase()
	c.Setup = func() error { return errors.New("no fixtures") }
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(); err == nil {
		t.Error("expected setup error to abort the run")
	}
}

func TestProgressObserver(t *testing.T) {
	c := fastCase()
	var updates []float64
	var lastDesc string
	obs := func(completed float64, description string) {
		updates = append(updates, completed)
		lastDesc = description
	}
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, nil, Options{Clock: clock.Now, Observer: obs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(updates) == 0 {
		t.Fatal("observer never called")
	}
	for _, u := range updates {
		if u < 0 || u > 100 {
			t.Errorf("completion %g outside [0, 100]", u)
		}
	}
	if lastDesc == "" {
		t.Error("observer description is empty")
	}
}

func TestBudgetExhaustedDuringWarmup(t *testing.T) {
	c := fastCase()
	c.MinTime = 10 * time.Millisecond
	c.MaxTime = 20 * time.Millisecond
	// The warmup pass alone blows the budget: no measured iteration exists.
	clock := newScriptClock(time.Second, 0, 0, 0, 50*time.Millisecond)

	r, err := New(c, nil, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = r.Run()
	if err == nil {
		t.Fatal("expected budget-exhausted error")
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != BudgetExhausted {
		t.Errorf("error = %v, want BudgetExhausted", err)
	}
}

func TestTimeoutBoundsActionCalls(t *testing.T) {
	c := fastCase()
	c.Timeout = 20 * time.Millisecond
	c.Action = func(map[string]string) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}

	r, err := New(c, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = r.Run()
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var terr *timeout.Error
	if !errors.As(err, &terr) {
		t.Errorf("error type = %T, want *timeout.Error", err)
	}
}

func TestNewRejectsInvalidCase(t *testing.T) {
	c := fastCase()
	c.Rounds = 0
	if _, err := New(c, nil, Options{}); err == nil {
		t.Error("expected validation error for zero rounds")
	}
}

func TestKwargsReachAction(t *testing.T) {
	c := fastCase()
	var seen string
	c.Action = func(kwargs map[string]string) error {
		seen = kwargs["size"]
		return nil
	}
	c.Variations = map[string][]string{"size": {"large"}}
	c.VariationCols = map[string]string{"size": "Size"}
	clock := &steppingClock{base: time.Unix(0, 0), step: time.Millisecond}

	r, err := New(c, map[string]string{"size": "large"}, Options{Clock: clock.Now})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if seen != "large" {
		t.Errorf("action saw kwargs size = %q, want large", seen)
	}
	if res.VariationMarks()["size"] != "large" {
		t.Errorf("variation marks = %v, want size=large", res.VariationMarks())
	}
}
