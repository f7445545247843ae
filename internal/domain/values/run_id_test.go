package values

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunID_ParseAndText(t *testing.T) {
	id := NewRunID()
	assert.False(t, id.IsZero())

	parsed, err := ParseRunID(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = ParseRunID("not-a-uuid")
	assert.Error(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	var back RunID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, id.Equals(back))
}

func TestJobSequence_Monotonic(t *testing.T) {
	var seq JobSequence
	var mu sync.Mutex
	seen := make(map[JobID]bool)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := seq.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
	assert.Equal(t, JobID(51), seq.Next())
	assert.Equal(t, "job-7", JobID(7).String())
	assert.True(t, JobID(0).IsZero())
}
