package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSeverity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Severity
		wantErr bool
	}{
		{"info", "info", SevInfo, false},
		{"warning", "warning", SevWarning, false},
		{"warn alias", "warn", SevWarning, false},
		{"error", "error", SevError, false},
		{"critical", "critical", SevCritical, false},
		{"uppercase", "ERROR", SevError, false},
		{"whitespace", "  warning  ", SevWarning, false},
		{"empty", "", SevInfo, false},
		{"invalid", "fatal", Severity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev, err := NewSeverity(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.True(t, sev.Equals(tt.want))
			}
		})
	}
}

func Test_Severity_ZeroValueIsInfo(t *testing.T) {
	var s Severity
	assert.True(t, s.Equals(SevInfo))
	assert.Equal(t, "info", s.String())
}

func Test_Severity_Ordering(t *testing.T) {
	all := AllSeverities()
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i].IsHigherThan(all[i-1]), "%s > %s", all[i], all[i-1])
		assert.True(t, all[i].IsHigherOrEqual(all[i]))
	}

	assert.False(t, SevWarning.IsProblem())
	assert.True(t, SevError.IsProblem())
	assert.True(t, SevCritical.IsProblem())
}

func Test_Severity_JSON(t *testing.T) {
	type wrapper struct {
		Severity Severity `json:"severity"`
	}

	data, err := json.Marshal(wrapper{Severity: SevCritical})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"critical"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"severity":"warning"}`), &w))
	assert.True(t, w.Severity.Equals(SevWarning))

	assert.Error(t, json.Unmarshal([]byte(`{"severity":"bogus"}`), &w))
}
