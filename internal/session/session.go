package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seantiz/benchtop/internal/model"
	"github.com/seantiz/benchtop/internal/runner"
	"github.com/seantiz/benchtop/internal/store"
)

// Outcome pairs the persisted record of one (case, variation) run with its
// in-memory results. Results is nil when the run failed.
type Outcome struct {
	Run     *model.Run
	Results *model.Results
}

// Options are the collaborators a Session can be given. Store is optional;
// without one, runs are not persisted. Clock is passed through to runners,
// mainly for tests.
type Options struct {
	Store  store.Store
	Logger *slog.Logger
	Clock  runner.Clock
}

// Session owns an explicit list of benchmark cases and executes them.
// Cases are registered up front, then Run executes every (case, variation)
// pair sequentially. A failing action marks its run failed without stopping
// sibling variations.
type Session struct {
	cases  []*model.Case
	store  store.Store
	broker *Broker
	logger *slog.Logger
	clock  runner.Clock
}

// New creates an empty session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		store:  opts.Store,
		broker: NewBroker(),
		logger: logger,
		clock:  opts.Clock,
	}
}

// Broker returns the session's progress broker for SSE subscription.
func (s *Session) Broker() *Broker {
	return s.broker
}

// Register adds a case to the session. Defaults are applied and the case is
// validated immediately so a bad definition surfaces at registration time,
// not mid-run. A case with the same group and title as an already registered
// one is rejected.
func (s *Session) Register(c *model.Case) error {
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("register case %q: %w", c.Title, err)
	}
	for _, existing := range s.cases {
		if existing.Group == c.Group && existing.Title == c.Title {
			return fmt.Errorf("register case %q: already registered in group %q", c.Title, c.Group)
		}
	}
	s.cases = append(s.cases, c)
	return nil
}

// Cases returns the registered cases in registration order.
func (s *Session) Cases() []*model.Case {
	return append([]*model.Case(nil), s.cases...)
}

// Run executes every (case, variation) pair in order and returns one Outcome
// per pair. An action error fails that run only; execution continues with
// the remaining variations. Run stops early when ctx is cancelled, returning
// the outcomes completed so far along with the context error.
func (s *Session) Run(ctx context.Context) ([]*Outcome, error) {
	var outcomes []*Outcome

	for _, c := range s.cases {
		for _, kwargs := range c.ExpandVariations() {
			if err := ctx.Err(); err != nil {
				return outcomes, err
			}

			outcome, err := s.runOne(ctx, c, kwargs)
			if err != nil {
				return outcomes, err
			}
			outcomes = append(outcomes, outcome)
		}
	}

	return outcomes, nil
}

// runOne executes a single (case, variation) pair through its full
// lifecycle: pending, running, then completed or failed. The returned error
// is reserved for persistence failures; action errors are recorded on the
// outcome instead.
func (s *Session) runOne(ctx context.Context, c *model.Case, kwargs map[string]string) (*Outcome, error) {
	run := &model.Run{
		ID:             model.NewID(),
		Status:         model.StatusPending,
		Group:          c.Group,
		Title:          c.Title,
		Description:    c.Description,
		N:              c.N,
		Rounds:         c.Rounds,
		VariationMarks: c.VariationMarks(kwargs),
		CreatedAt:      time.Now().UTC(),
	}
	defer s.broker.Close(run.ID)

	if s.store != nil {
		if err := s.store.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
	}

	start := time.Now().UTC()
	run.Status = model.StatusRunning
	run.StartedAt = &start
	if s.store != nil {
		if err := s.store.UpdateRunStatus(ctx, run.ID, model.StatusRunning); err != nil {
			s.logger.Error("failed to transition to running", "run_id", run.ID, "error", err)
		}
	}

	s.logger.Info("run started",
		"run_id", run.ID, "group", c.Group, "title", c.Title, "variation", run.VariationMarks)

	r, err := runner.New(c, kwargs, runner.Options{
		Clock:  s.clock,
		Logger: s.logger,
		Observer: func(completed float64, description string) {
			s.broker.Publish(run.ID, Event{
				RunID:       run.ID,
				Completed:   completed,
				Description: description,
			})
		},
	})
	if err != nil {
		return s.finishFailed(ctx, run, err), nil
	}

	results, err := r.Run()
	if err != nil {
		return s.finishFailed(ctx, run, err), nil
	}

	finished := time.Now().UTC()
	run.Status = model.StatusCompleted
	run.Iterations = len(results.Iterations())
	run.TotalElapsedNS = results.TotalElapsed()
	run.Summary = model.SummarizeResults(results)
	run.FinishedAt = &finished

	if s.store != nil {
		if err := s.store.FinishRun(ctx, run); err != nil {
			s.logger.Error("failed to persist completed run", "run_id", run.ID, "error", err)
		}
	}

	s.logger.Info("run completed",
		"run_id", run.ID, "iterations", run.Iterations, "elapsed_ns", run.TotalElapsedNS)

	return &Outcome{Run: run, Results: results}, nil
}

// finishFailed records an action or setup failure on the run without
// aborting the session.
func (s *Session) finishFailed(ctx context.Context, run *model.Run, cause error) *Outcome {
	finished := time.Now().UTC()
	run.Status = model.StatusFailed
	run.Error = cause.Error()
	run.FinishedAt = &finished

	if s.store != nil {
		if err := s.store.FailRun(ctx, run.ID, run.Error); err != nil {
			s.logger.Error("failed to persist failed run", "run_id", run.ID, "error", err)
		}
	}

	s.logger.Error("run failed",
		"run_id", run.ID, "group", run.Group, "title", run.Title, "error", run.Error)

	return &Outcome{Run: run}
}
