package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/highlight"
	"github.com/macropower/alsroute/pkg/yaml"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

type InspectArgs struct {
	*RootArgs

	Format string
}

func NewInspectCmd(rootArgs *RootArgs) *cobra.Command {
	ia := &InspectArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "inspect file.als...",
		Short: "List the tracks, routing, mixer state and samples of sets",
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
			return []cobra.Completion{"als"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sets := make([]*als.SetSummary, 0, len(args))
			for _, path := range args {
				info, err := als.SummarizeFile(path)
				if err != nil {
					return err
				}

				sets = append(sets, info)
			}

			return writeSets(cmd.OutOrStdout(), ia.Format, sets)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&ia.Format, "format", "f", formatYAML, "Output format, one of: [yaml json]")

	err := cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions([]string{formatYAML, formatJSON}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	bindEnvVars(cmd)

	return cmd
}

func writeSets(w io.Writer, format string, sets []*als.SetSummary) error {
	var v any = sets
	if len(sets) == 1 {
		v = sets[0]
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil

	case formatYAML, "":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return writeHighlighted(w, highlight.YAML, string(data))
	}

	return fmt.Errorf("invalid argument %q for --format, want yaml or json", format)
}
