package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage compose profiles",
}

func init() {
	profileCmd.AddCommand(
		newProfileListCmd(),
		newProfileShowCmd(),
		newProfileSaveCmd(),
		newProfileDeleteCmd(),
		newProfileDefaultCmd(),
		newProfileInitCmd(),
	)
	rootCmd.AddCommand(profileCmd)
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			svc := ctx.Container.ProfileService()
			profiles, err := svc.List(ctx.Context)
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			if len(profiles) == 0 {
				fmt.Println("No profiles saved.")
				return nil
			}

			def, err := svc.GetDefault(ctx.Context)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			if _, err := fmt.Fprintln(w, "NAME\tDEFAULT\tSOURCE\tSHEETS\tFLAGS"); err != nil {
				return fmt.Errorf("failed to write header: %w", err)
			}
			for _, p := range profiles {
				mark := ""
				if def != nil && def.Name == p.Name {
					mark = "*"
				}
				sheets := "all"
				if !p.SelectsAllSheets() {
					sheets = strings.Join(p.Sheets, ",")
				}
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.Name, mark, strings.Join(p.SourceDirs, ","), sheets, flagSummary(p.Flags),
				); err != nil {
					return fmt.Errorf("failed to write profile: %w", err)
				}
			}
			return w.Flush()
		}),
	}
}

func newProfileShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			p, err := ctx.Container.ProfileService().Load(ctx.Context, args[0])
			if err != nil {
				return err
			}
			return printDocument(p, format)
		}),
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml, json")
	return cmd
}

// profileFlags binds the profile fields to command flags.
type profileFlags struct {
	Sources    []string
	Sheets     []string
	OutputDir  string
	Formatter  string
	Flags      entities.ComposeFlags
	SetDefault bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.Sources, "source", "s", nil, "Tileset source directory; repeat for fallbacks tried in order")
	fs.StringSliceVar(&f.Sheets, "sheet", nil, "Compose only this tilesheet; repeatable (default all)")
	fs.StringVar(&f.OutputDir, "output-dir", "", "Output directory (default <source>/default_compose_output)")
	fs.StringVar(&f.Formatter, "formatter", "", "External JSON formatter program")
	fs.BoolVar(&f.Flags.UseAll, "use-all", true, "Add unreferenced sprites as their own tile entries")
	fs.BoolVar(&f.Flags.OnlyJSON, "only-json", false, "Only write the tile config, no sheet images")
	fs.BoolVar(&f.Flags.FormatJSON, "format-json", false, "Format the written JSON")
	fs.BoolVar(&f.Flags.FailFast, "fail-fast", false, "Abort on the first warning instead of the first critical message")
	fs.BoolVar(&f.Flags.ObsoleteFillers, "obsolete-fillers", false, "Warn about filler sprites that are not used")
	fs.BoolVar(&f.Flags.PaletteCopies, "palette-copies", false, "Write palette-limited copies of the sheets")
	fs.BoolVar(&f.Flags.Palette, "palette", false, "Quantize sheets to a palette")
	fs.BoolVar(&f.SetDefault, "default", false, "Mark the profile as default")
}

func (f *profileFlags) profile(name string) *entities.Profile {
	return &entities.Profile{
		Name:          name,
		SourceDirs:    f.Sources,
		OutputDir:     f.OutputDir,
		Sheets:        f.Sheets,
		FormatterPath: f.Formatter,
		Flags:         f.Flags,
	}
}

func newProfileSaveCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:     "save NAME",
		Short:   "Create or replace a profile",
		Example: `  jessica profile save UltiCa -s ~/cdda/gfx/UltimateCataclysm -s /mnt/gfx/UltimateCataclysm --default`,
		Args:    cobra.ExactArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			svc := ctx.Container.ProfileService()
			p := flags.profile(args[0])
			if err := svc.Save(ctx.Context, p); err != nil {
				return err
			}
			if flags.SetDefault {
				if err := svc.SetDefault(ctx.Context, p.Name); err != nil {
					return err
				}
			}
			fmt.Printf("Saved profile %q.\n", p.Name)
			return nil
		}),
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			if err := ctx.Container.ProfileService().Delete(ctx.Context, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted profile %q.\n", args[0])
			return nil
		}),
	}
}

func newProfileDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default [NAME]",
		Short: "Show or set the default profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			svc := ctx.Container.ProfileService()
			if len(args) == 1 {
				if err := svc.SetDefault(ctx.Context, args[0]); err != nil {
					return err
				}
				fmt.Printf("Default profile is now %q.\n", args[0])
				return nil
			}

			def, err := svc.GetDefault(ctx.Context)
			if err != nil {
				return err
			}
			if def == nil {
				fmt.Println("No default profile set.")
				return nil
			}
			fmt.Println(def.Name)
			return nil
		}),
	}
}

func newProfileInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init SOURCE_DIR",
		Short: "Create a default profile if none exist",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			created, err := ctx.Container.ProfileService().Bootstrap(ctx.Context, args[0])
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("Profiles already exist; nothing to do.")
				return nil
			}
			fmt.Println("Created default profile.")
			return nil
		}),
	}
}

func flagSummary(f entities.ComposeFlags) string {
	var set []string
	for _, flag := range []struct {
		name string
		on   bool
	}{
		{"use_all", f.UseAll},
		{"only_json", f.OnlyJSON},
		{"format_json", f.FormatJSON},
		{"fail_fast", f.FailFast},
		{"obsolete_fillers", f.ObsoleteFillers},
		{"palette_copies", f.PaletteCopies},
		{"palette", f.Palette},
	} {
		if flag.on {
			set = append(set, flag.name)
		}
	}
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(set, ",")
}

func printDocument(v any, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("invalid format: %s (valid: yaml, json)", format)
	}
}
