package repositories

import (
	"context"

	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// JobHistoryRepository keeps finished job records.
type JobHistoryRepository interface {
	// Save persists a finished job record.
	Save(ctx context.Context, record *execution.JobRecord) error

	// FindByID retrieves a record by its run ID.
	FindByID(ctx context.Context, id values.RunID) (*execution.JobRecord, error)

	// FindByProfile retrieves the most recent records for a profile, newest first.
	FindByProfile(ctx context.Context, profileName string, limit int) ([]*execution.JobRecord, error)
}
