package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("rugby-analytics/internal/interfaces/httpapi")

// routeParams are copied onto handler spans when the route carries them.
var routeParams = []string{"leagueID", "seasonID"}

// startHandlerSpan opens "httpapi.Handler.<name>" under the request span.
// Requests RequestTracing skipped (health probes) get no span at all.
func startHandlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx := r.Context()
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}

	attrs := make([]attribute.KeyValue, 0, len(routeParams))
	for _, key := range routeParams {
		if v := r.PathValue(key); v != "" {
			attrs = append(attrs, attribute.String("rugby."+key, v))
		}
	}
	return apiTracer.Start(ctx, "httpapi.Handler."+name, trace.WithAttributes(attrs...))
}
