// Package tileset reads the metadata of a composing tileset source directory.
package tileset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jessica-dev/jessica/internal/application/ports"
)

const (
	PropertiesFile = "tileset.txt"
	TileInfoFile   = "tile_info.json"
	FallbackSheet  = "fallback.png"

	// DefaultCacheSize is used when the inspector is created with size <= 0.
	DefaultCacheSize = 64

	defaultSpriteSize = 16
)

// Ensure interface compliance
var _ ports.SheetCatalog = (*Inspector)(nil)

// ErrNoTileInfo is returned when the source directory has no readable tile_info.json.
var ErrNoTileInfo = errors.New("no tile_info.json found in source directory")

// Sheet is one tilesheet entry of tile_info.json.
type Sheet struct {
	Name         string `json:"name" yaml:"name"`
	SpriteWidth  int    `json:"sprite_width" yaml:"sprite_width"`
	SpriteHeight int    `json:"sprite_height" yaml:"sprite_height"`
	Filler       bool   `json:"filler,omitempty" yaml:"filler,omitempty"`
	Fallback     bool   `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// SourceDir is the pngs_<root>_<w>x<h> directory holding the sheet's sprites.
func (s Sheet) SourceDir() string {
	root := strings.SplitN(s.Name, ".png", 2)[0]
	return fmt.Sprintf("pngs_%s_%dx%d", root, s.SpriteWidth, s.SpriteHeight)
}

// Info describes a tileset source directory.
type Info struct {
	Dir           string  `json:"dir" yaml:"dir"`
	Name          string  `json:"name,omitempty" yaml:"name,omitempty"`
	View          string  `json:"view,omitempty" yaml:"view,omitempty"`
	ConfigFile    string  `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	Sheets        []Sheet `json:"sheets" yaml:"sheets"`
	SpriteWidth   int     `json:"sprite_width" yaml:"sprite_width"`
	SpriteHeight  int     `json:"sprite_height" yaml:"sprite_height"`
	PixelScale    float64 `json:"pixelscale" yaml:"pixelscale"`
	ISO           bool    `json:"iso" yaml:"iso"`
	HasProperties bool    `json:"has_properties" yaml:"has_properties"`
}

// SheetNames returns the names of the composable sheets, fallback excluded.
func (i *Info) SheetNames() []string {
	names := make([]string, 0, len(i.Sheets))
	for _, s := range i.Sheets {
		if s.Fallback {
			continue
		}
		names = append(names, s.Name)
	}
	return names
}

type cacheEntry struct {
	info  *Info
	stamp string
}

// Inspector reads tileset.txt and tile_info.json. Results are cached per
// directory and refreshed when either file changes on disk.
type Inspector struct {
	cache  *lru.Cache[string, cacheEntry]
	logger *slog.Logger
}

// NewInspector creates an inspector holding up to size directories.
func NewInspector(size int, logger *slog.Logger) (*Inspector, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create tileset cache: %w", err)
	}
	return &Inspector{cache: cache, logger: logger}, nil
}

// Sheets implements ports.SheetCatalog.
func (in *Inspector) Sheets(ctx context.Context, sourceDir string) ([]string, error) {
	info, err := in.Inspect(ctx, sourceDir)
	if err != nil {
		return nil, err
	}
	return info.SheetNames(), nil
}

// Inspect returns the tileset metadata of dir. A missing tileset.txt is
// reported through Info.HasProperties; a missing tile_info.json is an error.
func (in *Inspector) Inspect(ctx context.Context, dir string) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	stamp := fileStamp(filepath.Join(abs, PropertiesFile)) + "|" + fileStamp(filepath.Join(abs, TileInfoFile))
	if entry, ok := in.cache.Get(abs); ok && entry.stamp == stamp {
		return entry.info, nil
	}

	info, err := readInfo(abs)
	if err != nil {
		in.cache.Remove(abs)
		return nil, err
	}
	in.cache.Add(abs, cacheEntry{info: info, stamp: stamp})
	in.logger.Debug("tileset inspected", "dir", abs, "sheets", len(info.Sheets))
	return info, nil
}

func fileStamp(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%d:%s", st.Size(), st.ModTime().Format(time.RFC3339Nano))
}

func readInfo(dir string) (*Info, error) {
	info := &Info{Dir: dir}

	props, err := ReadProperties(filepath.Join(dir, PropertiesFile))
	switch {
	case err == nil:
		info.HasProperties = true
		info.Name = props["NAME"]
		info.View = props["VIEW"]
		info.ConfigFile = props["JSON"]
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := readTileInfo(filepath.Join(dir, TileInfoFile), info); err != nil {
		return nil, err
	}
	return info, nil
}

// ReadProperties parses a "KEY: value" properties file. Blank lines and
// lines starting with # are ignored.
func ReadProperties(path string) (map[string]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-chosen tileset directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	props := make(map[string]string)
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected KEY: value", filepath.Base(path), lineNo)
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return props, nil
}

type tileInfoHeader struct {
	Width      *int     `json:"width"`
	Height     *int     `json:"height"`
	PixelScale *float64 `json:"pixelscale"`
	ISO        bool     `json:"iso"`
}

type sheetSpec struct {
	SpriteWidth  *int `json:"sprite_width"`
	SpriteHeight *int `json:"sprite_height"`
	Filler       bool `json:"filler"`
	Fallback     bool `json:"fallback"`
}

func readTileInfo(path string, info *Info) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-chosen tileset directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoTileInfo
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse %s: %w", TileInfoFile, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s is empty", TileInfoFile)
	}

	var header tileInfoHeader
	if err := json.Unmarshal(entries[0], &header); err != nil {
		return fmt.Errorf("failed to parse %s header: %w", TileInfoFile, err)
	}
	info.SpriteWidth = intOr(header.Width, defaultSpriteSize)
	info.SpriteHeight = intOr(header.Height, defaultSpriteSize)
	info.PixelScale = 1
	if header.PixelScale != nil {
		info.PixelScale = *header.PixelScale
	}
	info.ISO = header.ISO

	info.Sheets = make([]Sheet, 0, len(entries)-1)
	for i, raw := range entries[1:] {
		var entry map[string]sheetSpec
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("failed to parse %s entry %d: %w", TileInfoFile, i+1, err)
		}
		if len(entry) != 1 {
			return fmt.Errorf("%s entry %d must name exactly one sheet", TileInfoFile, i+1)
		}
		for name, spec := range entry {
			info.Sheets = append(info.Sheets, Sheet{
				Name:         name,
				SpriteWidth:  intOr(spec.SpriteWidth, info.SpriteWidth),
				SpriteHeight: intOr(spec.SpriteHeight, info.SpriteHeight),
				Fallback:     spec.Fallback || name == FallbackSheet,
				Filler:       !spec.Fallback && spec.Filler,
			})
		}
	}
	return nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
