package storage

import (
	"context"

	"antcolony/internal/model"
)

// Store defines transaction-like persistence operations for runs and their learners.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
	SaveBrain(ctx context.Context, brain model.Brain) error
	GetBrain(ctx context.Context, runID string, ant int) (model.Brain, bool, error)
	ListBrains(ctx context.Context, runID string) ([]model.Brain, error)
	SaveCumulative(ctx context.Context, cumulative model.Cumulative) error
	GetCumulative(ctx context.Context, runID string) (model.Cumulative, bool, error)
}

// Versioned stamps the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}
