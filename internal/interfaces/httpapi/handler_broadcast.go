package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/playforge/arcade-api/internal/usecase"
)

type broadcastRequest struct {
	Message string `json:"message" validate:"required,max=4096"`
}

type broadcastResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Broadcast")
	defer span.End()

	var req broadcastRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.broadcastService.Broadcast(ctx, req.Message)
	if err != nil {
		h.logger.WarnContext(ctx, "broadcast failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, broadcastResponse{
		Sent:   result.Sent,
		Failed: result.Failed,
		Total:  result.Total,
	})
}
