package services

import (
	"testing"

	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFilter(t *testing.T) {
	msgs := []entities.LogMessage{
		{Seq: 1, Raw: "Start Composing: tall", Severity: values.SevInfo, Kind: values.KindProgress},
		{Seq: 2, Raw: "Sprite filename a.png was not used", Severity: values.SevWarning, Kind: values.KindWarnSpriteUnref},
		{Seq: 3, Raw: "rock.png is 33x32", Severity: values.SevError, Kind: values.KindErrSpriteSize},
		{Seq: 4, Raw: "  more", Severity: values.SevError, Continuation: true},
	}

	tests := []struct {
		name string
		expr string
		want []int
	}{
		{"empty matches all", "", []int{1, 2, 3, 4}},
		{"by severity name", `severity == "warning"`, []int{2}},
		{"by level", `level >= 2 && !continuation`, []int{3}},
		{"by kind", `kind == "progress"`, []int{1}},
		{"by text", `text contains "png"`, []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileMessageFilter(tt.expr)
			require.NoError(t, err)

			var seqs []int
			for _, m := range f.Apply(msgs) {
				seqs = append(seqs, m.Seq)
			}
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestCompileMessageFilter_Invalid(t *testing.T) {
	_, err := CompileMessageFilter(`severity ==`)
	assert.Error(t, err)

	_, err = CompileMessageFilter(`level + 1`)
	assert.Error(t, err, "non-boolean expressions are rejected")
}
