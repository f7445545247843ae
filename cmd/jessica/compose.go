package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/jessica-dev/jessica/internal/application/ports"
	"github.com/jessica-dev/jessica/internal/application/services"
	"github.com/jessica-dev/jessica/internal/domain/entities"
	domainservices "github.com/jessica-dev/jessica/internal/domain/services"
	"github.com/jessica-dev/jessica/internal/domain/values"
	"github.com/jessica-dev/jessica/internal/version"
	"github.com/spf13/cobra"
)

// Exit codes of the compose command.
const (
	exitFailed  = 1
	exitAborted = 2
)

type composeOptions struct {
	Filter string
	Output OutputOptions
	Quiet  bool
}

func init() {
	rootCmd.AddCommand(newComposeCmd())
}

func newComposeCmd() *cobra.Command {
	opts := composeOptions{Output: DefaultOutputOptions()}

	cmd := &cobra.Command{
		Use:   "compose [PROFILE]",
		Short: "Compose a tileset using a saved profile",
		Long: `Launch the compose tool with the settings of PROFILE (or the default
profile) and stream its classified output. The job is aborted as soon as a
critical message appears, or a warning when the profile enables fail_fast.
Press Ctrl+C to abort.`,
		Example: `  jessica compose UltiCa
  jessica compose --filter "severity in ['error', 'critical']"
  jessica compose MSX --format sarif --output compose.sarif`,
		Args: cobra.MaximumNArgs(1),
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runCompose(ctx, name, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "",
		"Expression selecting which messages are shown, e.g. severity == 'error'")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false,
		"Do not stream messages while composing")
	opts.Output.RegisterFlags(cmd, "table", "json", "yaml", "junit", "sarif")

	return cmd
}

func runCompose(ctx *CommandContext, name string, opts composeOptions) error {
	formatters := ctx.Container.OutputFormatters()
	if err := opts.Output.ValidateFlags(formatters.SupportedFormats()); err != nil {
		return err
	}

	filter, err := domainservices.CompileMessageFilter(opts.Filter)
	if err != nil {
		return fmt.Errorf("--filter: %w", err)
	}

	profile, err := selectProfile(ctx, name)
	if err != nil {
		return err
	}

	controller := ctx.Container.JobController()
	unsubscribe := controller.Subscribe(ports.ObserverFunc(func(e ports.Event) {
		switch e.Type {
		case ports.EventMessageClassified:
			if !opts.Quiet && filter.Match(*e.Message) {
				fmt.Fprintln(os.Stderr, e.Message.String())
			}
		case ports.EventAbortTimedOut:
			ctx.Logger.Warn("compose tool ignored the abort request and was killed",
				"job_id", e.JobID, "error", e.Err)
		}
	}))
	defer unsubscribe()

	// The tool runs in its own process group, so Ctrl+C must be caught
	// before it is spawned or it would outlive us.
	guard := watchInterrupts(ctx.Logger, controller)
	defer guard.stop()

	id, err := controller.Start(ctx.Context, profile)
	if err != nil {
		return err
	}
	guard.jobStarted()

	summary, err := controller.Wait(ctx.Context, id)
	if err != nil {
		return err
	}

	record, err := controller.Record(ctx.Context, id)
	if err != nil {
		return fmt.Errorf("failed to load job record: %w", err)
	}
	report := *record
	report.Messages = filter.Apply(record.Messages)

	w, closeOutput, err := opts.Output.Open()
	if err != nil {
		return err
	}
	formatter, err := formatters.Create(opts.Output.Format, w, ports.FormatterOptions{
		ToolVersion: version.Get().Version,
		Indent:      true,
		Color:       opts.Output.Color(),
	})
	if err != nil {
		_ = closeOutput()
		return err
	}
	if err := formatter.Format(&report); err != nil {
		_ = closeOutput()
		return fmt.Errorf("failed to format output: %w", err)
	}
	if err := closeOutput(); err != nil {
		return err
	}

	switch summary.Outcome {
	case values.StateSucceeded:
		return nil
	case values.StateAborted:
		return &exitError{msg: summary.Text(), code: exitAborted}
	default:
		return &exitError{msg: summary.Text(), code: exitFailed}
	}
}

// aborter is the part of the job controller the interrupt guard needs.
type aborter interface {
	Abort(reason values.AbortReason) bool
}

// interruptGuard turns SIGINT and SIGTERM into a user abort. A signal that
// arrives before the job is started is remembered and applied by
// jobStarted. Repeated signals are harmless because aborting is idempotent.
type interruptGuard struct {
	target      aborter
	logger      *slog.Logger
	sigCh       chan os.Signal
	done        chan struct{}
	interrupted atomic.Bool
}

func watchInterrupts(logger *slog.Logger, target aborter) *interruptGuard {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return newInterruptGuard(logger, target, sigCh)
}

func newInterruptGuard(logger *slog.Logger, target aborter, sigCh chan os.Signal) *interruptGuard {
	g := &interruptGuard{target: target, logger: logger, sigCh: sigCh, done: make(chan struct{})}
	go g.loop()
	return g
}

func (g *interruptGuard) loop() {
	for {
		select {
		case sig := <-g.sigCh:
			g.interrupted.Store(true)
			if g.target.Abort(values.AbortUser) {
				g.logger.Info("abort requested", "signal", sig.String())
			}
		case <-g.done:
			return
		}
	}
}

// jobStarted aborts the new job if an interrupt came in while it was
// being started.
func (g *interruptGuard) jobStarted() {
	if g.interrupted.Load() && g.target.Abort(values.AbortUser) {
		g.logger.Info("abort requested", "signal", "interrupt before start")
	}
}

func (g *interruptGuard) stop() {
	signal.Stop(g.sigCh)
	close(g.done)
}

// selectProfile loads the named profile or the default one. Without a
// default, an interactive session is asked to pick a saved profile.
func selectProfile(ctx *CommandContext, name string) (*entities.Profile, error) {
	svc := ctx.Container.ProfileService()

	profile, err := svc.Select(ctx.Context, name)
	if err == nil || !services.IsMissingDefault(err) {
		return profile, err
	}

	profiles, err := svc.List(ctx.Context)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.New("no profiles saved; create one with 'jessica profile save' or 'jessica profile init'")
	}
	if !isTerminal(os.Stdin) {
		return nil, errors.New("no default profile set; pass a profile name or run 'jessica profile default NAME'")
	}

	options := make([]huh.Option[string], 0, len(profiles))
	for _, p := range profiles {
		options = append(options, huh.NewOption(p.Name, p.Name))
	}

	var chosen string
	err = huh.NewSelect[string]().
		Title("No default profile set. Select a profile").
		Options(options...).
		Value(&chosen).
		Run()
	if err != nil {
		return nil, err
	}
	return svc.Load(ctx.Context, chosen)
}
