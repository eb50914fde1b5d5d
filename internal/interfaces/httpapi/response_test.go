package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/rugby-analytics/internal/platform/resilience"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		status string
	}{
		{name: "invalid input", err: fmt.Errorf("%w: team_a is required", usecase.ErrInvalidInput), code: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "not found", err: fmt.Errorf("season 9: %w", usecase.ErrNotFound), code: http.StatusNotFound, status: "NOT_FOUND"},
		{name: "provider down", err: fmt.Errorf("%w: thesportsdb", usecase.ErrDependencyUnavailable), code: http.StatusServiceUnavailable, status: "UNAVAILABLE"},
		{name: "circuit open", err: fmt.Errorf("lookup: %w", resilience.ErrCircuitOpen), code: http.StatusServiceUnavailable, status: "UNAVAILABLE"},
		{name: "schema mismatch", err: fmt.Errorf("%w: matches", usecase.ErrSchemaMismatch), code: http.StatusInternalServerError, status: "FAILED_PRECONDITION"},
		{name: "unknown", err: fmt.Errorf("boom"), code: http.StatusInternalServerError, status: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if got.HTTPStatus != tt.code || got.Status != tt.status {
				t.Fatalf("mapError(%v) = %+v, want %d %s", tt.err, got, tt.code, tt.status)
			}
		})
	}
}

func TestWriteError_CarriesReason(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: league 7", usecase.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || len(body.Error.Errors) != 1 {
		t.Fatalf("expected one error item, got %+v", body.Error)
	}
	if item := body.Error.Errors[0]; item.Domain != errorDomain || item.Reason != "notFound" {
		t.Fatalf("unexpected error item: %+v", item)
	}
}
