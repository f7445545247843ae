package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobState_Transitions(t *testing.T) {
	tests := []struct {
		from JobState
		to   JobState
		want bool
	}{
		{StateIdle, StateStarting, true},
		{StateIdle, StateRunning, false},
		{StateStarting, StateRunning, true},
		{StateStarting, StateFailed, true},
		{StateStarting, StateAborted, true},
		{StateStarting, StateSucceeded, false},
		{StateRunning, StateSucceeded, true},
		{StateRunning, StateStarting, false},
		{StateSucceeded, StateIdle, true},
		{StateAborted, StateRunning, false},
		{StateFailed, StateFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobState_Classification(t *testing.T) {
	for _, s := range []JobState{StateSucceeded, StateFailed, StateAborted} {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.IsActive(), s)
	}
	for _, s := range []JobState{StateStarting, StateRunning} {
		assert.True(t, s.IsActive(), s)
		assert.False(t, s.IsTerminal(), s)
	}
	assert.False(t, StateIdle.IsActive())
	assert.NoError(t, StateRunning.Validate())
	assert.Error(t, JobState("paused").Validate())
}
