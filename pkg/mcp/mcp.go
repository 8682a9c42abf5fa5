// Package mcp serves alsroute over the Model Context Protocol, so assistants
// can list destination groups, inspect Live sets and route them.
package mcp

const (
	name         = "alsroute"
	instructions = `MCP Server 'alsroute' routes the tracks of Ableton Live sets (.als) to the output channels of a destination group, and mutes or attenuates them.

Workflow:
1. Use 'list_groups' to see the destination groups and where they come from.
2. Use 'inspect_set' with the path of an .als file to see its tracks, current routing, mute state and volume.
3. Use 'route_sets' with a group from 'list_groups' and one or more set paths or directories.
   Set "dryRun" to preview the result and "diff" to include a unified diff of the changes.

Routed sets are written next to their inputs with a suffix. Inputs are never modified.
`

	// maxDiffLen bounds the diff text returned for a single set.
	maxDiffLen = 8000
)

// truncateString truncates a string to maxLen characters with ellipsis if needed.
func truncateString(str string, maxLen int) string {
	if len(str) > maxLen {
		return str[:maxLen] + "\n[OUTPUT TRUNCATED]"
	}

	return str
}
