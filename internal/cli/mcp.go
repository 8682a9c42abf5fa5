package cli

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/mcp"
	"github.com/macropower/alsroute/pkg/telemetry"
)

const mcpExamples = `  # Serve over stdio, e.g. for an assistant that launches alsroute itself:
  alsroute mcp

  # Serve streamable HTTP on a local port with a rule sheet:
  alsroute mcp --address localhost:8080 --sheet-path ./rules.csv`

type MCPArgs struct {
	*RootArgs

	Address      string
	SheetURL     string
	SheetPath    string
	OTLPEndpoint string
	Jobs         int
	OTLPInsecure bool
}

func NewMCPCmd(rootArgs *RootArgs) *cobra.Command {
	ma := &MCPArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:     "mcp",
		Short:   "Serve group listing, set inspection and routing over the Model Context Protocol",
		Example: mcpExamples,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveMCP(cmd, ma)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&ma.Address, "address", "", "Address for streamable HTTP, default is stdio")
	cmd.Flags().StringVar(&ma.SheetURL, "sheet-url", "", "URL of a rule sheet, overrides configured groups")
	cmd.Flags().StringVar(&ma.SheetPath, "sheet-path", "", "Path of a CSV rule sheet, overrides configured groups")
	cmd.Flags().IntVarP(&ma.Jobs, "jobs", "j", runtime.NumCPU(), "Number of sets to process in parallel")
	cmd.Flags().StringVar(&ma.OTLPEndpoint, "otlp-endpoint", "", "Export traces to an OTLP/gRPC collector (host:port)")
	cmd.Flags().BoolVar(&ma.OTLPInsecure, "otlp-insecure", false, "Disable TLS for the OTLP connection")
	cmd.MarkFlagsMutuallyExclusive("sheet-url", "sheet-path")

	bindEnvVars(cmd)

	return cmd
}

func serveMCP(cmd *cobra.Command, ma *MCPArgs) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ma.RootArgs, nil)
	if err != nil {
		return err
	}

	if ma.SheetURL != "" {
		cfg.Sheet.URL, cfg.Sheet.Path = ma.SheetURL, ""
	}
	if ma.SheetPath != "" {
		cfg.Sheet.URL, cfg.Sheet.Path = "", ma.SheetPath
	}

	err = cfg.Validate()
	if err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	shutdown, err := telemetry.Setup(ctx,
		telemetry.WithEndpoint(ma.OTLPEndpoint),
		telemetry.WithInsecure(ma.OTLPInsecure),
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

	server := mcp.NewServer(ma.Address, &mcpRouter{rulesProvider: provider, jobs: ma.Jobs})

	return server.Serve(ctx) //nolint:wrapcheck // Already wrapped.
}

// mcpRouter routes sets for MCP tool calls. Groups are never prompted for.
type mcpRouter struct {
	*rulesProvider

	jobs int
}

func (r *mcpRouter) Route(ctx context.Context, req mcp.RouteRequest) (*batch.Summary, error) {
	groups, err := r.Groups(ctx)
	if err != nil {
		return nil, err
	}

	group, err := pickGroup(r.rulesProvider, groups, req.Group)
	if err != nil {
		return nil, err
	}

	runner, err := newRunner(r.rulesProvider, group, r.jobs,
		batch.WithDryRun(req.DryRun),
		batch.WithDiffs(req.Diff),
	)
	if err != nil {
		return nil, err
	}

	return runner.Run(ctx, req.Paths) //nolint:wrapcheck // Already wrapped.
}
