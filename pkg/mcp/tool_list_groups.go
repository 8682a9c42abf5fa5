package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListGroupsParams defines parameters for the list_groups tool.
type ListGroupsParams struct{}

// ListGroupsResult contains the result of listing groups.
type ListGroupsResult struct {
	Message string   `json:"message"`
	Origin  string   `json:"origin"`
	Groups  []string `json:"groups"`
}

func (s *Server) handleListGroups(
	ctx context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[ListGroupsParams],
) (*mcp.CallToolResultFor[ListGroupsResult], error) {
	groups, err := s.router.Groups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	result := ListGroupsResult{
		Origin:  s.router.Origin(),
		Groups:  groups,
		Message: fmt.Sprintf("Found %d destination groups.", len(groups)),
	}

	return &mcp.CallToolResultFor[ListGroupsResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: result.Message}},
		StructuredContent: result,
	}, nil
}
