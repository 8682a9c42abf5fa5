package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/alsroute/api/v1beta1/configs"
)

type GroupsArgs struct {
	*RootArgs

	SheetURL  string
	SheetPath string
}

func NewGroupsCmd(rootArgs *RootArgs) *cobra.Command {
	ga := &GroupsArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the available destination groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			p, err := ga.provider()
			if err != nil {
				return err
			}

			groups, err := p.Groups(ctx)
			if err != nil {
				return err
			}

			for _, g := range groups {
				mustN(fmt.Fprintln(cmd.OutOrStdout(), g))
			}

			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&ga.SheetURL, "sheet-url", "", "URL of a rule sheet")
	cmd.Flags().StringVar(&ga.SheetPath, "sheet-path", "", "Path of a CSV rule sheet")
	cmd.MarkFlagsMutuallyExclusive("sheet-url", "sheet-path")

	bindEnvVars(cmd)

	return cmd
}

func (ga *GroupsArgs) provider() (*rulesProvider, error) {
	cfg, err := loadConfig(ga.RootArgs, nil)
	if err != nil {
		return nil, err
	}

	if ga.SheetURL != "" {
		cfg.Sheet.URL, cfg.Sheet.Path = ga.SheetURL, ""
	}
	if ga.SheetPath != "" {
		cfg.Sheet.URL, cfg.Sheet.Path = "", ga.SheetPath
	}

	err = cfg.Sheet.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: sheet: %w", configs.ErrInvalidConfig, err)
	}

	return newRulesProvider(cfg)
}

// groupCompletion completes group names from the active configuration.
func groupCompletion(ra *RootArgs) cobra.CompletionFunc {
	return func(cmd *cobra.Command, _ []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := loadConfig(ra, nil)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		p, err := newRulesProvider(cfg)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		groups, err := p.Groups(ctx)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		completions := make([]cobra.Completion, 0, len(groups))
		for _, g := range groups {
			completions = append(completions, cobra.CompletionWithDesc(g, p.Origin()))
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}
