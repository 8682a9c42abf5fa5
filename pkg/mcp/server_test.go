package mcp_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/alsroute/pkg/als/alstest"
	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/mcp"
	"github.com/macropower/alsroute/pkg/rules"
	"github.com/macropower/alsroute/pkg/sheet"
	"github.com/macropower/alsroute/pkg/transform"
)

const slowGroup = "Slow"

// mockRouter routes with a fixed static table.
type mockRouter struct {
	groups   []string
	requests []mcp.RouteRequest
}

func (m *mockRouter) Origin() string {
	return "config"
}

func (m *mockRouter) Groups(context.Context) ([]string, error) {
	return m.groups, nil
}

func (m *mockRouter) Route(ctx context.Context, req mcp.RouteRequest) (*batch.Summary, error) {
	m.requests = append(m.requests, req)

	switch req.Group {
	case "", m.groups[0]:
	case slowGroup:
		return nil, &sheet.LoadError{Kind: sheet.ErrTimeout, Source: "https://example.com/rules.csv", Err: context.DeadlineExceeded}
	default:
		return nil, fmt.Errorf("%w: %q", rules.ErrUnknownGroup, req.Group)
	}

	runner := batch.NewRunner(func(context.Context) (rules.Source, error) {
		return rules.NewStaticSource(rules.StaticTable{
			Routes: map[string][]string{"2": {"BASS"}},
			Mute:   []string{"BASS"},
		})
	},
		batch.WithDryRun(req.DryRun),
		batch.WithDiffs(req.Diff),
		batch.WithTransform(transform.WithMutePolicy(transform.MuteExplicit)),
	)

	return runner.Run(ctx, req.Paths)
}

func connect(t *testing.T, router mcp.Router) *sdk.ClientSession {
	t.Helper()

	ctx := t.Context()
	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	server := mcp.NewServer("", router)

	serverSession, err := server.Server().Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := sdk.NewClient(&sdk.Implementation{Name: "client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, clientSession.Close())
		assert.NoError(t, serverSession.Wait())
	})

	return clientSession
}

func TestServer_ListGroups(t *testing.T) {
	t.Parallel()

	session := connect(t, &mockRouter{groups: []string{"default", "North"}})

	r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      "list_groups",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, r.IsError)

	assert.Equal(t, map[string]any{
		"message": "Found 2 destination groups.",
		"origin":  "config",
		"groups":  []any{"default", "North"},
	}, r.StructuredContent)
}

func TestServer_InspectSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.als")
	require.NoError(t, os.WriteFile(path, alstest.Set(t, alstest.Named("BASS")), 0o600))

	session := connect(t, &mockRouter{groups: []string{"default"}})

	tcs := map[string]struct {
		path    string
		message string
		isError bool
	}{
		"found": {
			path:    path,
			message: "Found 1 tracks in song.als.",
		},
		"missing": {
			path:    filepath.Join(dir, "missing.als"),
			message: `INVALID INPUT ERROR: cannot read set "` + filepath.Join(dir, "missing.als") + `".`,
			isError: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
				Name:      "inspect_set",
				Arguments: map[string]any{"path": tc.path},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.isError, r.IsError)

			got, ok := r.StructuredContent.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tc.message, got["message"])
		})
	}
}

func TestServer_RouteSets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.als")
	require.NoError(t, os.WriteFile(path, alstest.Set(t, alstest.Named("BASS")), 0o600))

	router := &mockRouter{groups: []string{"default"}}
	session := connect(t, router)

	r, err := session.CallTool(t.Context(), &sdk.CallToolParams{
		Name: "route_sets",
		Arguments: map[string]any{
			"paths":  []any{path},
			"dryRun": true,
			"diff":   true,
		},
	})
	require.NoError(t, err)
	assert.False(t, r.IsError)

	got, ok := r.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Would route 1 sets, 0 failed, 0 skipped.", got["message"])

	routed, ok := got["routed"].([]any)
	require.True(t, ok)
	require.Len(t, routed, 1)

	set, ok := routed[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "song_routed.als"), set["output"])
	assert.InDelta(t, 1, set["changed"], 0)
	assert.Contains(t, set["diff"], "+++ song_routed.als")
	assert.NoFileExists(t, filepath.Join(dir, "song_routed.als"))

	require.Len(t, router.requests, 1)
	assert.True(t, router.requests[0].DryRun)

	r, err = session.CallTool(t.Context(), &sdk.CallToolParams{
		Name: "route_sets",
		Arguments: map[string]any{
			"group": "East",
			"paths": []any{path},
		},
	})
	require.NoError(t, err)
	assert.True(t, r.IsError)

	got, ok = r.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, `unknown destination group: "East"`, got["error"])
	assert.Contains(t, got["message"], "Use a group from the list_groups tool.")

	r, err = session.CallTool(t.Context(), &sdk.CallToolParams{
		Name: "route_sets",
		Arguments: map[string]any{
			"group": slowGroup,
			"paths": []any{path},
		},
	})
	require.NoError(t, err)
	assert.True(t, r.IsError)

	got, ok = r.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, got["error"], "timeout")
	msg, ok := got["message"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(msg, "ROUTING ERROR: "), msg)
	assert.NotContains(t, msg, "list_groups")
}
