package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/alsroute/pkg/log"
)

// TracedToolHandler is a tool handler run by [WithTracing].
type TracedToolHandler[In, Out any] func(
	context.Context,
	*mcp.ServerSession,
	*mcp.CallToolParamsFor[In],
) (*mcp.CallToolResultFor[Out], error)

// WithTracing wraps handler in a span named after the tool and logs the
// call. Failed calls are recorded on the span.
func WithTracing[In, Out any](
	tracer trace.Tracer,
	handler TracedToolHandler[In, Out],
) mcp.ToolHandlerFor[In, Out] {
	return func(
		ctx context.Context,
		session *mcp.ServerSession,
		params *mcp.CallToolParamsFor[In],
	) (*mcp.CallToolResultFor[Out], error) {
		name := params.Name

		ctx, span := tracer.Start(ctx, name)
		defer span.End()

		logger := log.WithContext(ctx).With(slog.String("tool", name))
		ctx = log.NewContext(ctx, logger)

		logger.DebugContext(ctx, "handling tool call", slog.Any("args", params.Arguments))

		result, err := handler(ctx, session, params)
		if err != nil {
			logger.ErrorContext(ctx, "tool call failed", slog.Any("err", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			logger.DebugContext(ctx, "tool call completed")
		}

		return result, err
	}
}
