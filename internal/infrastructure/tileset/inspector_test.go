package tileset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTileInfo = `[
  {"width": 32, "height": 32, "pixelscale": 1, "iso": false},
  {"tiles.png": {}},
  {"large.png": {"sprite_width": 64, "sprite_height": 64}},
  {"filler_tall.png": {"sprite_width": 32, "sprite_height": 64, "filler": true}},
  {"fallback.png": {"fallback": true}}
]`

func writeTileset(t *testing.T, props, tileInfo string) string {
	t.Helper()
	dir := t.TempDir()
	if props != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PropertiesFile), []byte(props), 0o600))
	}
	if tileInfo != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, TileInfoFile), []byte(tileInfo), 0o600))
	}
	return dir
}

func TestInspector_Inspect(t *testing.T) {
	dir := writeTileset(t, "# comment\nNAME: UltimateCataclysm\nVIEW: UltiCa\n\nJSON: tile_config.json\n", sampleTileInfo)

	in, err := NewInspector(4, nil)
	require.NoError(t, err)

	info, err := in.Inspect(context.Background(), dir)
	require.NoError(t, err)

	assert.True(t, info.HasProperties)
	assert.Equal(t, "UltimateCataclysm", info.Name)
	assert.Equal(t, "UltiCa", info.View)
	assert.Equal(t, "tile_config.json", info.ConfigFile)
	assert.Equal(t, 32, info.SpriteWidth)
	require.Len(t, info.Sheets, 4)

	assert.Equal(t, Sheet{Name: "tiles.png", SpriteWidth: 32, SpriteHeight: 32}, info.Sheets[0])
	assert.Equal(t, "pngs_large_64x64", info.Sheets[1].SourceDir())
	assert.True(t, info.Sheets[2].Filler)
	assert.True(t, info.Sheets[3].Fallback)

	assert.Equal(t, []string{"tiles.png", "large.png", "filler_tall.png"}, info.SheetNames())
}

func TestInspector_Sheets(t *testing.T) {
	dir := writeTileset(t, "", sampleTileInfo)
	in, err := NewInspector(0, nil)
	require.NoError(t, err)

	sheets, err := in.Sheets(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"tiles.png", "large.png", "filler_tall.png"}, sheets)
}

func TestInspector_MissingProperties(t *testing.T) {
	dir := writeTileset(t, "", `[{}, {"tiles.png": {}}]`)
	in, err := NewInspector(4, nil)
	require.NoError(t, err)

	info, err := in.Inspect(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, info.HasProperties)
	assert.Empty(t, info.Name)
	assert.Equal(t, 16, info.Sheets[0].SpriteWidth)
}

func TestInspector_Errors(t *testing.T) {
	tests := []struct {
		name     string
		props    string
		tileInfo string
		is       error
	}{
		{name: "no tile info", props: "NAME: x\n", is: ErrNoTileInfo},
		{name: "malformed json", tileInfo: `[{"width": 32}`},
		{name: "empty list", tileInfo: `[]`},
		{name: "entry with two sheets", tileInfo: `[{}, {"a.png": {}, "b.png": {}}]`},
		{name: "bad properties", props: "NAME UltiCa\n", tileInfo: `[{}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeTileset(t, tt.props, tt.tileInfo)
			in, err := NewInspector(4, nil)
			require.NoError(t, err)

			_, err = in.Inspect(context.Background(), dir)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestInspector_CacheRefreshesOnChange(t *testing.T) {
	dir := writeTileset(t, "NAME: Before\n", `[{}, {"tiles.png": {}}]`)
	in, err := NewInspector(4, nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := in.Inspect(ctx, dir)
	require.NoError(t, err)
	again, err := in.Inspect(ctx, dir)
	require.NoError(t, err)
	assert.Same(t, first, again)

	path := filepath.Join(dir, PropertiesFile)
	require.NoError(t, os.WriteFile(path, []byte("NAME: After the rename\n"), 0o600))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	updated, err := in.Inspect(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "After the rename", updated.Name)
}

func TestInspector_CancelledContext(t *testing.T) {
	in, err := NewInspector(4, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = in.Inspect(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
