package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueArgs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).Named("ingest").With("run_id", "01J")

	logger.Info("unit committed", "league", int64(4446), "season", "2024-2025", "err", errors.New("boom"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["run_id"] != "01J" || fields["league"] != int64(4446) || fields["season"] != "2024-2025" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields["err"] != "boom" {
		t.Fatalf("expected error field, got %+v", fields["err"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept: %+v", fields)
	}
	if entries[0].LoggerName != "ingest" {
		t.Fatalf("unexpected component name %q", entries[0].LoggerName)
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "request")
	logger.DebugContext(ctx, "filtered out")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("missing trace fields: %+v", fields)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"":        LevelInfo,
		"DEBUG":   LevelDebug,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", raw, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if OrDefault(nil) == nil {
		t.Fatalf("expected default logger")
	}
}
