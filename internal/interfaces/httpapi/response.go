package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/rugby-analytics/internal/platform/resilience"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "rugby-analytics"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorMappings is checked in order; the first sentinel that matches wins.
var errorMappings = []struct {
	targets []error
	mapped  mappedError
}{
	{
		targets: []error{usecase.ErrInvalidInput},
		mapped:  mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"},
	},
	{
		targets: []error{usecase.ErrNotFound},
		mapped:  mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"},
	},
	{
		targets: []error{usecase.ErrDependencyUnavailable, resilience.ErrCircuitOpen},
		mapped:  mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"},
	},
	{
		targets: []error{usecase.ErrSchemaMismatch, usecase.ErrMissingDependency},
		mapped:  mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "failedPrecondition", Status: "FAILED_PRECONDITION"},
	},
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// writeError renders err in the envelope and marks the handler span when
// the failure is on our side.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	if mapped.HTTPStatus >= http.StatusInternalServerError {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, mapped.Reason)
	}

	writeJSON(w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: err.Error()}},
		},
	})
}

func writeInternalError(w http.ResponseWriter) {
	const msg = "internal server error"

	writeJSON(w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  internalError.Status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: internalError.Reason, Message: msg}},
		},
	})
}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m.mapped
			}
		}
	}
	return internalError
}
