// Package timeout bounds the wall-clock time of an arbitrary call without
// unsafe asynchronous cancellation: on expiry the worker goroutine is
// abandoned, never killed.
package timeout

import (
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"
)

// State describes where a Timeout is in its run lifecycle.
type State int32

const (
	// StatePending means no run has been dispatched yet.
	StatePending State = iota
	// StateRunning means the worker goroutine is executing the callable.
	StateRunning
	// StateFinished means the callable returned a value within the deadline.
	StateFinished
	// StateTimedOut means the deadline expired; the worker was abandoned.
	StateTimedOut
	// StateFailed means the callable returned an error within the deadline.
	StateFailed
)

// String returns the state name for logs and errors.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateTimedOut:
		return "timed_out"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Func is a callable bounded by a Timeout. It represents the unit of work as
// a whole; the wrapper never inspects or retries it.
type Func func() (any, error)

// Error reports a callable exceeding its deadline.
type Error struct {
	// Callable is the name of the function that timed out.
	Callable string
	// Interval is the deadline that expired.
	Interval time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("timeout: %s did not return within %s", e.Callable, e.Interval)
}

// outcome is the write-once slot the worker fills before terminating. The
// receive on the channel establishes the happens-before ordering, so no lock
// is needed.
type outcome struct {
	value    any
	err      error
	panicked bool
	panicVal any
}

// Timeout runs callables with a deadline. An instance is reusable: each Run
// resets the captured state. It is not safe for concurrent Run calls; the
// scheduler that owns it is single-threaded by design.
type Timeout struct {
	interval time.Duration
	state    atomic.Int32
}

// New creates a Timeout with the given deadline for each Run call.
func New(interval time.Duration) *Timeout {
	return &Timeout{interval: interval}
}

// State returns the state left by the most recent Run (StatePending before
// the first).
func (t *Timeout) State() State { return State(t.state.Load()) }

// Interval returns the configured deadline.
func (t *Timeout) Interval() time.Duration { return t.interval }

// Run invokes fn on a worker goroutine and waits at most the configured
// interval for it to finish.
//
// If fn returns in time its value or error is handed back unchanged (an
// error leaves the state at StateFailed, a value at StateFinished). A panic
// in fn is re-raised on the calling goroutine. On expiry Run returns a
// *Error naming the callable and leaves the state at StateTimedOut; the
// worker keeps running with unknown side effects, so callers must not assume
// the call had no effect.
func (t *Timeout) Run(fn Func) (any, error) {
	t.state.Store(int32(StatePending))

	done := make(chan outcome, 1)
	t.state.Store(int32(StateRunning))
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicked: true, panicVal: r}
			}
		}()
		v, err := fn()
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.panicked {
			t.state.Store(int32(StateFailed))
			panic(out.panicVal)
		}
		if out.err != nil {
			t.state.Store(int32(StateFailed))
			return nil, out.err
		}
		t.state.Store(int32(StateFinished))
		return out.value, nil
	case <-timer.C:
		t.state.Store(int32(StateTimedOut))
		return nil, &Error{Callable: funcName(fn), Interval: t.interval}
	}
}

// funcName resolves the symbol name of fn for timeout error messages.
func funcName(fn Func) string {
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return "unknown callable"
}
