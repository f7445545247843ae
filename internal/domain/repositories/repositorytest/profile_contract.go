// Package repositorytest holds behavioral tests shared by every
// repositories.ProfileRepository implementation.
package repositorytest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/jessica-dev/jessica/internal/application/errors"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/jessica-dev/jessica/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FullProfile returns a profile with every field set.
func FullProfile(name string) *entities.Profile {
	return &entities.Profile{
		Name:          name,
		SourceDirs:    []string{"/gfx/" + name, "/mnt/backup/gfx/" + name},
		OutputDir:     "/out/" + name,
		Sheets:        []string{"normal", "tall", "large"},
		FormatterPath: "/tools/json_formatter",
		Flags: entities.ComposeFlags{
			UseAll:          true,
			FormatJSON:      true,
			FailFast:        true,
			ObsoleteFillers: true,
			PaletteCopies:   true,
			Palette:         true,
		},
	}
}

// RunProfileRepository runs the contract against repositories created by newRepo.
func RunProfileRepository(t *testing.T, newRepo func(t *testing.T) repositories.ProfileRepository) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo := newRepo(t)
		for _, p := range []*entities.Profile{
			FullProfile("UltiCa"),
			entities.NewProfile("Minimal", "/src"),
			{Name: "JSON only", SourceDirs: []string{"/src"}, Flags: entities.ComposeFlags{OnlyJSON: true}},
		} {
			require.NoError(t, repo.Save(ctx, p))
			got, err := repo.Load(ctx, p.Name)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		}
	})

	t.Run("empty sheet selection loads as nil", func(t *testing.T) {
		repo := newRepo(t)
		p := entities.NewProfile("All sheets", "/src")
		p.Sheets = []string{}
		require.NoError(t, repo.Save(ctx, p))

		got, err := repo.Load(ctx, p.Name)
		require.NoError(t, err)
		assert.Nil(t, got.Sheets)
		assert.Equal(t, p.Clone(), got)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		repo := newRepo(t)
		p := FullProfile("MSX")
		require.NoError(t, repo.Save(ctx, p))

		p.Sheets = []string{"normal"}
		p.Flags.FailFast = false
		require.NoError(t, repo.Save(ctx, p))

		got, err := repo.Load(ctx, "MSX")
		require.NoError(t, err)
		assert.Equal(t, p, got)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("loaded copies are independent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, FullProfile("Chibi")))

		got, err := repo.Load(ctx, "Chibi")
		require.NoError(t, err)
		got.Sheets[0] = "mutated"

		again, err := repo.Load(ctx, "Chibi")
		require.NoError(t, err)
		assert.Equal(t, "normal", again.Sheets[0])
	})

	t.Run("invalid profiles are rejected", func(t *testing.T) {
		repo := newRepo(t)
		bad := FullProfile("Bad")
		bad.Flags.OnlyJSON = true

		for _, p := range []*entities.Profile{entities.NewProfile("", "/src"), bad} {
			err := repo.Save(ctx, p)
			var ve *apperrors.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		}

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("delete then load is not found", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, FullProfile("RetroDays")))
		require.NoError(t, repo.Delete(ctx, "RetroDays"))

		_, err := repo.Load(ctx, "RetroDays")
		var nf *apperrors.NotFoundError
		assert.True(t, errors.As(err, &nf))

		err = repo.Delete(ctx, "RetroDays")
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("default lifecycle", func(t *testing.T) {
		repo := newRepo(t)

		def, err := repo.GetDefault(ctx)
		require.NoError(t, err)
		assert.Nil(t, def)

		var nf *apperrors.NotFoundError
		assert.True(t, errors.As(repo.SetDefault(ctx, "ghost"), &nf))

		require.NoError(t, repo.Save(ctx, FullProfile("A")))
		require.NoError(t, repo.Save(ctx, FullProfile("B")))
		require.NoError(t, repo.SetDefault(ctx, "A"))
		require.NoError(t, repo.SetDefault(ctx, "B"))

		def, err = repo.GetDefault(ctx)
		require.NoError(t, err)
		require.NotNil(t, def)
		assert.Equal(t, "B", def.Name)

		require.NoError(t, repo.Delete(ctx, "B"))
		def, err = repo.GetDefault(ctx)
		require.NoError(t, err)
		assert.Nil(t, def, "deleting the default must not fall back to another profile")

		require.NoError(t, repo.Delete(ctx, "A"))
	})

	t.Run("list is ordered by name", func(t *testing.T) {
		repo := newRepo(t)
		for _, name := range []string{"Ultica", "Chibi", "MSX", "Altica"} {
			require.NoError(t, repo.Save(ctx, FullProfile(name)))
		}

		all, err := repo.List(ctx)
		require.NoError(t, err)
		var names []string
		for _, p := range all {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Altica", "Chibi", "MSX", "Ultica"}, names)
	})

	t.Run("concurrent readers and writers", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Save(ctx, FullProfile("Shared")))

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				p := FullProfile("Shared")
				p.OutputDir = fmt.Sprintf("/out/%d", i)
				assert.NoError(t, repo.Save(ctx, p))
			}(i)
			go func() {
				defer wg.Done()
				got, err := repo.Load(ctx, "Shared")
				if assert.NoError(t, err) {
					assert.NoError(t, got.Validate())
					assert.Len(t, got.Sheets, 3)
				}
			}()
		}
		wg.Wait()
	})
}
