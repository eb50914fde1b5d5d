package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("rugby-analytics/internal/usecase")

// startUsecaseSpan only starts a child span when the caller already has a
// valid parent, so untraced CLI runs stay span free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func scopeAttrs(leagueID, seasonID int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("rugby.league_id", leagueID),
		attribute.Int64("rugby.season_id", seasonID),
	}
}
