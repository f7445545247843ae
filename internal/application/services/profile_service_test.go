package services

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Select(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(memory.NewProfileRepository(), nil)

	_, err := svc.Select(ctx, "")
	assert.True(t, IsMissingDefault(err))

	require.NoError(t, svc.Save(ctx, entities.NewProfile("MSX", "/msx")))
	require.NoError(t, svc.Save(ctx, entities.NewProfile("Chibi", "/chibi")))

	p, err := svc.Select(ctx, "MSX")
	require.NoError(t, err)
	assert.Equal(t, "MSX", p.Name)

	require.NoError(t, svc.SetDefault(ctx, "Chibi"))
	p, err = svc.Select(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Chibi", p.Name)

	_, err = svc.Select(ctx, "nope")
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.False(t, IsMissingDefault(err))
}

func TestProfileService_SaveValidates(t *testing.T) {
	svc := NewProfileService(memory.NewProfileRepository(), nil)
	err := svc.Save(context.Background(), entities.NewProfile("", "/src"))
	var ve *apperrors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestProfileService_Bootstrap(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(memory.NewProfileRepository(), nil)

	created, err := svc.Bootstrap(ctx, "/gfx")
	require.NoError(t, err)
	assert.True(t, created)

	def, err := svc.GetDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, DefaultProfileName, def.Name)
	assert.Equal(t, []string{"/gfx"}, def.SourceDirs)

	created, err = svc.Bootstrap(ctx, "/other")
	require.NoError(t, err)
	assert.False(t, created)
}
