package storage

import (
	"context"

	"rmss/internal/model"
)

// Store defines persistence operations for runs and their per-cycle output.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	SaveCycleRecords(ctx context.Context, runID string, records []model.CycleRecord) error
	GetCycleRecords(ctx context.Context, runID string) ([]model.CycleRecord, bool, error)
	SaveBestHistory(ctx context.Context, runID string, history []float64) error
	GetBestHistory(ctx context.Context, runID string) ([]float64, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	Reset(ctx context.Context) error
}

// DefaultStoreKind is the backend used when no explicit kind is configured.
func DefaultStoreKind() string {
	return "sqlite"
}
