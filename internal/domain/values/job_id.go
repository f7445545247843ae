package values

import (
	"fmt"
	"sync/atomic"
)

// JobID identifies a compose job within one controller. IDs are issued
// from a monotonic sequence starting at 1; zero means "no job".
type JobID uint64

// String returns the string representation
func (id JobID) String() string {
	return fmt.Sprintf("job-%d", uint64(id))
}

// IsZero returns true if this is the zero value
func (id JobID) IsZero() bool {
	return id == 0
}

// JobSequence hands out increasing JobIDs. Safe for concurrent use.
type JobSequence struct {
	last atomic.Uint64
}

// Next returns the next id in the sequence.
func (s *JobSequence) Next() JobID {
	return JobID(s.last.Add(1))
}
