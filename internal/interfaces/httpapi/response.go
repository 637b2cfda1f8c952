package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/playforge/arcade-api/internal/usecase"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	status, body := mapError(err)
	writeJSON(ctx, w, status, body)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func mapError(err error) (int, errorBody) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest, errorBody{Error: "invalid request", Details: err.Error()}
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found", Details: err.Error()}
	case errors.Is(err, usecase.ErrConflict):
		return http.StatusBadRequest, errorBody{Error: "conflict", Details: err.Error()}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, errorBody{Error: "service unavailable", Details: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}
