package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchResolver_Resolve(t *testing.T) {
	files := fakeFiles{
		dirs:  map[string]bool{"/b": true, "/c": true},
		files: map[string]bool{"/tools/json_formatter": true},
	}
	tool := ToolSettings{Command: []string{"python3", "compose.py"}, WorkDir: "/tool"}

	t.Run("first existing source wins", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, nil, nil)
		cfg, err := r.Resolve(context.Background(), entities.NewProfile("p", "/a", "/b", "/c"))
		require.NoError(t, err)
		assert.Equal(t, "/b", cfg.SourceDir())
		assert.Equal(t, "/b/default_compose_output", cfg.OutputDir())
		assert.Equal(t, "/tool", cfg.WorkDir())
	})

	t.Run("empty selection targets the whole tileset", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, nil, nil)
		cfg, err := r.Resolve(context.Background(), entities.NewProfile("p", "/b"))
		require.NoError(t, err)
		assert.True(t, cfg.TargetsAllSheets())
		assert.False(t, cfg.Flags().OnlyJSON, "all sheets does not imply JSON-only")
		assert.NotContains(t, cfg.Args(), "--only-json")
	})

	t.Run("no source exists", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, nil, nil)
		_, err := r.Resolve(context.Background(), entities.NewProfile("p", "/x", "/y"))
		var ve *apperrors.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"/x", "/y"}, ve.Details)
	})

	t.Run("formatter choice", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, nil, nil)

		p := entities.NewProfile("p", "/b")
		p.FormatterPath = "/tools/json_formatter"
		cfg, err := r.Resolve(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, entities.FormatterChoice{External: true, Path: "/tools/json_formatter"}, cfg.Formatter())

		p.FormatterPath = "/tools/missing"
		cfg, err = r.Resolve(context.Background(), p)
		require.NoError(t, err)
		assert.False(t, cfg.Formatter().External)
	})

	t.Run("fail fast flag lowers the threshold", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, nil, nil)
		p := entities.NewProfile("p", "/b")
		cfg, err := r.Resolve(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, cfg.FailFastThreshold().Equals(values.SevCritical))

		p.Flags.FailFast = true
		cfg, err = r.Resolve(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, cfg.FailFastThreshold().Equals(values.SevWarning))
	})

	t.Run("unknown sheets rejected when catalog is readable", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, fakeCatalog{sheets: []string{"tall", "large"}}, nil)
		p := entities.NewProfile("p", "/b")
		p.Sheets = []string{"tall", "giant"}

		_, err := r.Resolve(context.Background(), p)
		var ve *apperrors.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"giant"}, ve.Details)

		r = NewLaunchResolver(tool, files, fakeCatalog{err: errors.New("no tileset.txt")}, nil)
		_, err = r.Resolve(context.Background(), p)
		assert.NoError(t, err)
	})

	t.Run("missing tool command", func(t *testing.T) {
		r := NewLaunchResolver(ToolSettings{}, files, nil, nil)
		_, err := r.Resolve(context.Background(), entities.NewProfile("p", "/b"))
		var ce *apperrors.ConfigurationError
		assert.True(t, errors.As(err, &ce))
	})

	t.Run("invalid profile", func(t *testing.T) {
		r := NewLaunchResolver(tool, files, nil, nil)
		p := entities.NewProfile("p", "/b")
		p.Sheets = []string{"tall"}
		p.Flags.OnlyJSON = true
		_, err := r.Resolve(context.Background(), p)
		var ve *apperrors.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "flags.only_json", ve.Field)
	})
}
