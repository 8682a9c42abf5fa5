package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/macropower/alsroute/api/v1beta1/configs"
	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/highlight"
	"github.com/macropower/alsroute/pkg/telemetry"
	"github.com/macropower/alsroute/pkg/transform"
)

const routeExamples = `  # Route sets for the default group:
  alsroute song.als

  # Route every set in a directory for a campus:
  alsroute ./sets --group "Brandon Campus"

  # Use a published rule sheet:
  alsroute ./sets --sheet-url "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0"

  # Preview without writing, then watch for new sets:
  alsroute ./sets --dry-run
  alsroute song.als --dry-run --diff
  alsroute ./sets --watch --output-dir ./routed

  # Write the default configuration and exit:
  alsroute --write-config`

type RouteArgs struct {
	*RootArgs

	Paths        []string
	Group        string
	SheetURL     string
	SheetPath    string
	MutePolicy   string
	VolumePolicy string
	OutputDir    string
	Suffix       string
	OTLPEndpoint string
	Jobs         int
	DryRun       bool
	Diff         bool
	Watch        bool
	OTLPInsecure bool
	WriteConfig  bool
	ShowConfig   bool
}

func NewRouteArgs(rootArgs *RootArgs) *RouteArgs {
	return &RouteArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RouteArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ra.Group, "group", "g", "", "Destination group to route for")
	cmd.Flags().StringVar(&ra.SheetURL, "sheet-url", "", "URL of a rule sheet, overrides configured groups")
	cmd.Flags().StringVar(&ra.SheetPath, "sheet-path", "", "Path of a CSV rule sheet, overrides configured groups")
	cmd.Flags().StringVar(&ra.MutePolicy, "mute-policy", "",
		fmt.Sprintf("Mute policy, one of: %s", transform.AllMutePolicies))
	cmd.Flags().StringVar(&ra.VolumePolicy, "volume-policy", "",
		fmt.Sprintf("Volume policy, one of: %s", transform.AllVolumePolicies))
	cmd.Flags().StringVarP(&ra.OutputDir, "output-dir", "o", "", "Directory for routed sets, default is next to each input")
	cmd.Flags().StringVar(&ra.Suffix, "suffix", "", "Suffix for routed set names")
	cmd.Flags().IntVarP(&ra.Jobs, "jobs", "j", runtime.NumCPU(), "Number of sets to process in parallel")
	cmd.Flags().BoolVarP(&ra.DryRun, "dry-run", "n", false, "Transform without writing output")
	cmd.Flags().BoolVarP(&ra.Diff, "diff", "d", false, "Print a unified diff of each routed set")
	cmd.Flags().BoolVarP(&ra.Watch, "watch", "w", false, "Watch inputs and route new or changed sets")
	cmd.Flags().StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to an OTLP/gRPC collector (host:port)")
	cmd.Flags().BoolVar(&ra.OTLPInsecure, "otlp-insecure", false, "Disable TLS for the OTLP connection")
	cmd.Flags().BoolVar(&ra.WriteConfig, "write-config", false, "Write the default configuration files and exit")
	cmd.Flags().BoolVar(&ra.ShowConfig, "show-config", false, "Print the active configuration and exit")

	err := cmd.MarkFlagFilename("sheet-path", "csv")
	if err != nil {
		panic(fmt.Errorf("mark sheet-path flag: %w", err))
	}

	err = cmd.MarkFlagDirname("output-dir")
	if err != nil {
		panic(fmt.Errorf("mark output-dir flag: %w", err))
	}

	cmd.MarkFlagsMutuallyExclusive("sheet-url", "sheet-path")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "watch")

	for name, values := range map[string][]string{
		"mute-policy":   transform.AllMutePolicies,
		"volume-policy": transform.AllVolumePolicies,
	} {
		err = cmd.RegisterFlagCompletionFunc(name,
			cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp),
		)
		if err != nil {
			panic(err)
		}
	}

	err = cmd.RegisterFlagCompletionFunc("group", groupCompletion(ra.RootArgs))
	if err != nil {
		panic(err)
	}
}

func NewRouteCmd(ra *RouteArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "route [path...]",
		Short:   "Default command, routes the given sets and directories",
		Example: routeExamples,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
			return []cobra.Completion{"als"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ra.Paths = args

			return route(cmd, ra)
		},
		SilenceUsage: true,
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

// apply overrides cfg with the flags that were set.
func (ra *RouteArgs) apply(cfg *configs.Config) {
	if ra.SheetURL != "" {
		cfg.Sheet.URL, cfg.Sheet.Path = ra.SheetURL, ""
	}
	if ra.SheetPath != "" {
		cfg.Sheet.URL, cfg.Sheet.Path = "", ra.SheetPath
	}
	if ra.MutePolicy != "" {
		cfg.Policy.Mute = ra.MutePolicy
	}
	if ra.VolumePolicy != "" {
		cfg.Policy.Volume = ra.VolumePolicy
	}
	if ra.OutputDir != "" {
		cfg.Output.Dir = ra.OutputDir
	}
	if ra.Suffix != "" {
		cfg.Output.Suffix = ra.Suffix
	}
}

func route(cmd *cobra.Command, ra *RouteArgs) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if ra.WriteConfig {
		return writeConfig(configPath(ra.RootArgs), false)
	}

	err := writeConfig(configPath(ra.RootArgs), false)
	if err != nil {
		slog.Warn("write default config", slog.Any("err", err))
	}

	cfg, err := loadConfig(ra.RootArgs, ra.Paths)
	if err != nil {
		return err
	}

	ra.apply(cfg)

	err = cfg.Validate()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	if ra.ShowConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err //nolint:wrapcheck // Already wrapped.
		}

		return writeHighlighted(cmd.OutOrStdout(), highlight.YAML, string(data))
	}

	if len(ra.Paths) == 0 {
		return errors.New("requires at least one path")
	}

	shutdown, err := telemetry.Setup(ctx,
		telemetry.WithEndpoint(ra.OTLPEndpoint),
		telemetry.WithInsecure(ra.OTLPInsecure),
	)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}

	defer func() {
		err := shutdown(context.WithoutCancel(ctx))
		if err != nil {
			slog.Error("shutdown telemetry", slog.Any("err", err))
		}
	}()

	provider, err := newRulesProvider(cfg)
	if err != nil {
		return err
	}

	group, err := selectGroup(ctx, ra.RootArgs, provider, ra.Group)
	if err != nil {
		return err
	}

	slog.Info("routing",
		slog.String("group", group),
		slog.String("rules", provider.Origin()),
		slog.String("mute_policy", cfg.Policy.Mute),
		slog.String("volume_policy", cfg.Policy.Volume),
	)

	runner, err := newRunner(provider, group, ra.Jobs,
		batch.WithDryRun(ra.DryRun),
		batch.WithDiffs(ra.Diff),
	)
	if err != nil {
		return err
	}

	events := make(chan batch.Event)
	runner.Subscribe(events)

	var wg sync.WaitGroup

	out := cmd.OutOrStdout()
	diffs := highlight.New(highlight.Diff, termenv.NewOutput(out).Profile)

	wg.Go(func() {
		printEvents(out, diffs, events)
	})

	defer func() {
		close(events)
		wg.Wait()
	}()

	if ra.Watch {
		return runner.Watch(ctx, ra.Paths) //nolint:wrapcheck // Already wrapped.
	}

	summary, err := runner.Run(ctx, ra.Paths)
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	return summary.Err()
}

// newRunner creates a [batch.Runner] for group with the output and policy
// settings of the provider's configuration.
func newRunner(p *rulesProvider, group string, jobs int, opts ...batch.RunnerOpt) (*batch.Runner, error) {
	transformOpts, err := p.cfg.Policy.TransformOpts()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already describes the policy.
	}

	opts = append([]batch.RunnerOpt{
		batch.WithGroup(groupLabel(p, group)),
		batch.WithOutputSuffix(p.cfg.Output.Suffix),
		batch.WithOutputDir(p.cfg.Output.Dir),
		batch.WithJobs(jobs),
		batch.WithTransform(transformOpts...),
	}, opts...)

	return batch.NewRunner(p.Source(group), opts...), nil
}

// groupLabel returns the group name used in output file names. The default
// group of the configuration is left out.
func groupLabel(p *rulesProvider, group string) string {
	if p.sheet == nil && group == configs.DefaultGroup {
		return ""
	}

	return group
}

var (
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

func printEvents(w io.Writer, diffs *highlight.Highlighter, events <-chan batch.Event) {
	for evt := range events {
		switch e := evt.(type) {
		case batch.EventDone:
			verb := "routed"
			if e.DryRun {
				verb = "would route"
			}

			report := e.Result.Report
			mustN(fmt.Fprintf(w, "%s %s -> %s (%d of %d tracks changed, %d warnings)\n",
				doneStyle.Render(verb), e.Result.Input, e.Result.Output,
				len(report.Changes), report.Tracks, len(report.Warnings)))

			if e.Result.Diff != "" {
				diff, err := diffs.Render(e.Result.Diff)
				if err != nil {
					diff = e.Result.Diff
				}

				mustN(io.WriteString(w, diff))
			}

		case batch.EventSkip:
			mustN(fmt.Fprintf(w, "%s %s: %s\n", skipStyle.Render("skipped"), e.Path, e.Reason))

		case batch.EventFail:
			mustN(fmt.Fprintf(w, "%s %v\n", failStyle.Render("failed"), e.Err))

		case batch.EventStart:
			continue
		}
	}
}

// writeHighlighted writes text to w, colored when w is a terminal.
func writeHighlighted(w io.Writer, language, text string) error {
	out, err := highlight.New(language, termenv.NewOutput(w).Profile).Render(text)
	if err != nil {
		out = text
	}

	_, err = io.WriteString(w, out)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
