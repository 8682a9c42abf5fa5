package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/alsroute/pkg/log"
)

const (
	cmdName = "alsroute"
	cmdDesc = `Route, mute and attenuate tracks in Ableton Live sets.`
)

type RootArgs struct {
	// Logs receives all log output. It is held while interactive prompts
	// are shown.
	Logs *log.HoldWriter

	LogLevel   string
	LogFormat  string
	ConfigPath string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVar(&ra.ConfigPath, "config", "", "Path to the alsroute configuration file")

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark config flag: %w", err))
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()
	routeArgs := NewRouteArgs(args)

	routeCmd := NewRouteCmd(routeArgs)
	cmd := &cobra.Command{
		Use:               cmdName + " [path...]",
		Short:             cmdDesc,
		Example:           routeExamples,
		PersistentPreRunE: setupLogging(args),
		ValidArgsFunction: routeCmd.ValidArgsFunction,
		Args:              routeCmd.Args,
		RunE:              routeCmd.RunE,
		SilenceUsage:      true,
	}

	args.AddFlags(cmd)
	routeArgs.AddFlags(cmd)
	cmd.AddCommand(
		routeCmd,
		NewInspectCmd(args),
		NewGroupsCmd(args),
		NewMCPCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(ra *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ra.Logs = log.NewHoldWriter(cmd.ErrOrStderr(), 200)

		logHandler, err := log.NewHandler(ra.Logs, ra.LogLevel, ra.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}
