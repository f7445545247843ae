// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/execution"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
	"github.com/jessica-dev/jessica/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.JobHistoryRepository = (*JobHistoryRepository)(nil)

// JobHistoryRepository is an in-memory implementation of JobHistoryRepository.
// Records are kept for the lifetime of the process.
type JobHistoryRepository struct {
	records map[values.RunID]*execution.JobRecord
	mu      sync.RWMutex
}

// NewJobHistoryRepository creates a new in-memory repository.
func NewJobHistoryRepository() *JobHistoryRepository {
	return &JobHistoryRepository{
		records: make(map[values.RunID]*execution.JobRecord),
	}
}

// Save persists a job record.
func (r *JobHistoryRepository) Save(_ context.Context, record *execution.JobRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// records are finished and never modified afterwards
	r.records[record.Summary.RunID] = record
	return nil
}

// FindByID retrieves a record by its run ID.
func (r *JobHistoryRepository) FindByID(_ context.Context, id values.RunID) (*execution.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("job record", id.String())
	}
	return record, nil
}

// FindByProfile retrieves recent records for a specific profile.
func (r *JobHistoryRepository) FindByProfile(_ context.Context, profileName string, limit int) ([]*execution.JobRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*execution.JobRecord
	for _, rec := range r.records {
		if rec.Summary.Profile == profileName {
			matches = append(matches, rec)
		}
	}

	// Sort by start time descending (newest first)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Summary.StartedAt.After(matches[j].Summary.StartedAt)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
