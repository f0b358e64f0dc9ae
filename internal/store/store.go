package store

import (
	"context"
	"errors"

	"github.com/seantiz/benchtop/internal/model"
)

// ErrInvalidTransition is returned when a run status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// RunStats holds aggregate statistics over all persisted runs.
type RunStats struct {
	Total         int            `json:"total"`
	CountByStatus map[string]int `json:"count_by_status"`
	CountByGroup  map[string]int `json:"count_by_group"`
	AvgElapsedMS  float64        `json:"avg_elapsed_ms"`
}

// Store defines the persistence operations for benchmark runs.
type Store interface {
	CreateRun(ctx context.Context, r *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*model.Run, int, error)
	UpdateRunStatus(ctx context.Context, id, status string) error
	FinishRun(ctx context.Context, r *model.Run) error
	FailRun(ctx context.Context, id, errMsg string) error
	GetRunStats(ctx context.Context) (*RunStats, error)
	Close() error
}
