package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "citymesh"

// StartDecisionSpan starts a span covering one decide call.
func StartDecisionSpan(ctx context.Context, decisionID, queryType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "decision",
		trace.WithAttributes(
			attribute.String("decision.id", decisionID),
			attribute.String("decision.query_type", queryType),
		),
	)
}

// StartRecipeSpan starts a span for one orchestration recipe.
func StartRecipeSpan(ctx context.Context, recipe string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "recipe",
		trace.WithAttributes(
			attribute.String("recipe.name", recipe),
		),
	)
}

// StartAgentCallSpan starts a span for one outbound agent call.
func StartAgentCallSpan(ctx context.Context, agent, path string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "agentcall",
		trace.WithAttributes(
			attribute.String("agent.type", agent),
			attribute.String("agent.path", path),
		),
	)
}
