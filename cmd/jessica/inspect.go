package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jessica-dev/jessica/internal/infrastructure/tileset"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	var (
		dir    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "inspect [PROFILE]",
		Short: "Show the tileset a profile points at",
		Long: `Read tileset.txt and tile_info.json from the profile's source directory
(or --dir) and list the tilesheets that can be selected for composing.`,
		Example: `  jessica inspect UltiCa
  jessica inspect --dir ~/cdda/gfx/MSX++UnDeadPeopleEdition --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			if dir == "" {
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				p, err := ctx.Container.ProfileService().Select(ctx.Context, name)
				if err != nil {
					return err
				}
				if dir = firstDir(p.SourceDirs); dir == "" {
					return fmt.Errorf("none of the source directories of %q exist", p.Name)
				}
			}

			info, err := ctx.Container.TilesetInspector().Inspect(ctx.Context, dir)
			if err != nil {
				if errors.Is(err, tileset.ErrNoTileInfo) {
					return fmt.Errorf("%s: %w", dir, err)
				}
				return err
			}

			if format != "table" {
				return printDocument(info, format)
			}
			return printTilesetInfo(info)
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Inspect this directory instead of a profile's source")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, yaml, json")
	return cmd
}

func firstDir(dirs []string) string {
	for _, d := range dirs {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			return d
		}
	}
	return ""
}

//nolint:errcheck // Best-effort terminal output
func printTilesetInfo(info *tileset.Info) error {
	name, view := info.Name, info.View
	if !info.HasProperties {
		name, view = "[no tileset.txt]", "-"
	}
	fmt.Printf("Tileset:   %s\n", name)
	fmt.Printf("View:      %s\n", view)
	if info.ConfigFile != "" {
		fmt.Printf("Config:    %s\n", info.ConfigFile)
	}
	fmt.Printf("Directory: %s\n", info.Dir)
	fmt.Printf("Sprites:   %dx%d, pixelscale %g, iso %t\n\n", info.SpriteWidth, info.SpriteHeight, info.PixelScale, info.ISO)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SHEET\tSIZE\tTYPE\tSPRITES DIR")
	for _, s := range info.Sheets {
		kind := "main"
		switch {
		case s.Fallback:
			kind = "fallback"
		case s.Filler:
			kind = "filler"
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\n", s.Name, s.SpriteWidth, s.SpriteHeight, kind, s.SourceDir())
	}
	return w.Flush()
}
