package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/rules"
)

// RouteSetsParams defines parameters for the route_sets tool.
type RouteSetsParams struct {
	Group  string   `json:"group,omitempty"  jsonschema:"destination group"`
	Paths  []string `json:"paths"            jsonschema:"set files or directories"`
	DryRun bool     `json:"dryRun,omitempty" jsonschema:"transform without writing"`
	Diff   bool     `json:"diff,omitempty"   jsonschema:"include unified diffs"`
}

// RouteSetsResult contains the outcome of a batch.
type RouteSetsResult struct {
	Message string         `json:"message"`
	Error   string         `json:"error,omitempty"`
	Routed  []RoutedSet    `json:"routed"`
	Failed  []FailedSet    `json:"failed,omitempty"`
	Skipped []SkippedInput `json:"skipped,omitempty"`
}

// RoutedSet is one transformed set.
type RoutedSet struct {
	Input    string   `json:"input"`
	Output   string   `json:"output"`
	Diff     string   `json:"diff,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Tracks   int      `json:"tracks"`
	Changed  int      `json:"changed"`
}

// FailedSet is one input that could not be processed.
type FailedSet struct {
	Path  string `json:"path,omitempty"`
	Error string `json:"error"`
}

// SkippedInput is one input that was ignored.
type SkippedInput struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (s *Server) handleRouteSets(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[RouteSetsParams],
) (*mcp.CallToolResultFor[RouteSetsResult], error) {
	args := params.Arguments

	s.routeMu.Lock()
	defer s.routeMu.Unlock()

	result := RouteSetsResult{Routed: []RoutedSet{}}

	summary, err := s.router.Route(ctx, RouteRequest{
		Group:  args.Group,
		Paths:  args.Paths,
		DryRun: args.DryRun,
		Diff:   args.Diff,
	})
	if err != nil {
		result.Error = err.Error()
		result.Message = routeErrorMessage(err)
	}

	if summary != nil {
		populateRouteResult(&result, summary)

		if err == nil {
			result.Message = formatRouteMessage(result, args.DryRun)
		}
	}

	return &mcp.CallToolResultFor[RouteSetsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
		IsError:           err != nil,
	}, nil
}

func routeErrorMessage(err error) string {
	if errors.Is(err, rules.ErrUnknownGroup) || errors.Is(err, rules.ErrGroupRequired) {
		return "INVALID INPUT ERROR: " + err.Error() + ". Use a group from the list_groups tool."
	}

	return "ROUTING ERROR: " + err.Error() + "."
}

func populateRouteResult(result *RouteSetsResult, summary *batch.Summary) {
	for _, res := range summary.Results {
		rs := RoutedSet{
			Input:   res.Input,
			Output:  res.Output,
			Diff:    truncateString(res.Diff, maxDiffLen),
			Tracks:  res.Report.Tracks,
			Changed: len(res.Report.Changes),
		}
		for _, w := range res.Report.Warnings {
			rs.Warnings = append(rs.Warnings, w.Error())
		}

		result.Routed = append(result.Routed, rs)
	}

	for _, fe := range summary.Failed {
		result.Failed = append(result.Failed, FailedSet{Path: fe.Path, Error: fe.Err.Error()})
	}

	for _, skip := range summary.Skipped {
		result.Skipped = append(result.Skipped, SkippedInput{Path: skip.Path, Reason: skip.Reason})
	}
}

func formatRouteMessage(result RouteSetsResult, dryRun bool) string {
	verb := "Routed"
	if dryRun {
		verb = "Would route"
	}

	return fmt.Sprintf("%s %d sets, %d failed, %d skipped.",
		verb, len(result.Routed), len(result.Failed), len(result.Skipped))
}
