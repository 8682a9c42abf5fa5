package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/version"
)

// RouteRequest selects what [Router.Route] processes.
type RouteRequest struct {
	// Group is the destination group. Empty selects the only or default group.
	Group  string
	Paths  []string
	DryRun bool
	Diff   bool
}

// Router resolves destination groups and routes sets for the server.
type Router interface {
	Origin() string
	Groups(ctx context.Context) ([]string, error)
	Route(ctx context.Context, req RouteRequest) (*batch.Summary, error)
}

// Server implements the MCP server for alsroute.
type Server struct {
	router  Router
	server  *mcp.Server
	tracer  trace.Tracer
	address string
	// routeMu serializes route_sets calls.
	routeMu sync.Mutex
}

// NewServer creates a new MCP server. An empty address serves over stdio.
func NewServer(address string, router Router) *Server {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version.GetVersion(),
	}

	s := &Server{
		address: address,
		router:  router,
		tracer:  otel.Tracer("mcp"),
		server:  mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
	}

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_groups",
		Description: "List the destination groups that sets can be routed for.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, WithTracing(s.tracer, s.handleListGroups))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "inspect_set",
		Description: "List the tracks of an Ableton Live set with their output routing, mute state, volume and samples.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "Path of the .als file, relative to the working directory of the server.",
				},
			},
			Required: []string{"path"},
		},
	}, WithTracing(s.tracer, s.handleInspectSet))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "route_sets",
		Description: "Route the tracks of Live sets for a destination group and write the routed copies.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"group": {
					Type:        "string",
					Description: "Destination group, EXACTLY as returned by list_groups. May be omitted when only one group exists.",
				},
				"paths": {
					Type:        "array",
					Description: "Paths of .als files or directories containing them.",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"dryRun": {
					Type:        "boolean",
					Description: "Transform without writing output files.",
				},
				"diff": {
					Type:        "boolean",
					Description: "Include a unified diff of each routed set.",
				},
			},
			Required: []string{"paths"},
		},
	}, WithTracing(s.tracer, s.handleRouteSets))
}

// Server returns the underlying [mcp.Server].
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Serve runs the server until ctx is canceled or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	slog.InfoContext(ctx, "starting MCP server", slog.String("address", s.address))

	if s.address == "" {
		err := s.serveStdio(ctx)
		if err != nil {
			return fmt.Errorf("serve stdio: %w", err)
		}

		return nil
	}

	err := s.serveHTTP(ctx)
	if err != nil {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	return nil
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	server := &http.Server{
		Addr:    s.address,
		Handler: handler,

		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("shutdown MCP server", slog.Any("err", err))
		}
	}()

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

func (s *Server) serveStdio(ctx context.Context) error {
	t := mcp.NewLoggingTransport(mcp.NewStdioTransport(), os.Stderr)

	err := s.server.Run(ctx, t)
	if err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
