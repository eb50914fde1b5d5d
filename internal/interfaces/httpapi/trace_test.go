package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestStartHandlerSpan_NoParentStaysSpanFree(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	ctx, span := startHandlerSpan(req, "Healthz")
	defer span.End()

	if ctx != req.Context() {
		t.Fatalf("expected request context to be returned unchanged")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected no span without a parent")
	}
}

func TestStartHandlerSpan_InheritsParentTrace(t *testing.T) {
	t.Parallel()

	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), parent)
	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/1/seasons/2/standings", nil).WithContext(ctx)
	req.SetPathValue("leagueID", "1")
	req.SetPathValue("seasonID", "2")

	_, span := startHandlerSpan(req, "GetStandings")
	defer span.End()

	if got := span.SpanContext().TraceID(); got != parent.TraceID() {
		t.Fatalf("expected trace %s, got %s", parent.TraceID(), got)
	}
}
