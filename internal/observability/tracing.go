package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "launchpad"

// StartRunSpan starts a span for one orchestrator run.
func StartRunSpan(ctx context.Context, sessionID, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "onboarding.run",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("user.id", userID),
		),
	)
}

// StartStepSpan starts a span for a single workflow step.
func StartStepSpan(ctx context.Context, sessionID, step string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "onboarding.step",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("step", step),
		),
	)
}

// StartToolCallSpan starts a span for a tool invoked by the model.
func StartToolCallSpan(ctx context.Context, callID, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "toolcall",
		trace.WithAttributes(
			attribute.String("toolcall.id", callID),
			attribute.String("toolcall.tool", tool),
		),
	)
}

// EndSpan records a failure message, if any, and ends the span.
func EndSpan(span trace.Span, failure string) {
	if failure != "" {
		span.SetStatus(codes.Error, failure)
	}
	span.End()
}
