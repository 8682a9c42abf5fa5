package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/alsroute/pkg/als"
)

// InspectSetParams defines parameters for the inspect_set tool.
type InspectSetParams struct {
	Path string `json:"path" jsonschema:"path of the .als file"`
}

// InspectSetResult contains the tracks of one set.
type InspectSetResult struct {
	Set     *als.SetSummary `json:"set,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message"`
}

func (s *Server) handleInspectSet(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[InspectSetParams],
) (*mcp.CallToolResultFor[InspectSetResult], error) {
	var result InspectSetResult

	set, err := als.SummarizeFile(params.Arguments.Path)
	if err != nil {
		result.Error = err.Error()
		result.Message = fmt.Sprintf("INVALID INPUT ERROR: cannot read set %q.", params.Arguments.Path)
	} else {
		result.Set = set
		result.Message = fmt.Sprintf("Found %d tracks in %s.", len(set.Tracks), set.File)
	}

	return &mcp.CallToolResultFor[InspectSetResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
		IsError:           err != nil,
	}, nil
}
