package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/playforge/arcade-api/internal/usecase"
)

type setScoreRequest struct {
	Score int `json:"score" validate:"gte=0"`
}

type paginationDTO struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"totalCount"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"hasMore"`
}

type leaderboardResponse struct {
	Items      []leaderboardEntryDTO `json:"items"`
	Pagination paginationDTO         `json:"pagination"`
}

// userPositionResponse renders Position as the number for ranked users and
// the literal "-" sentinel when the user has no score in the season.
type userPositionResponse struct {
	UserID   string `json:"userId"`
	Position any    `json:"position"`
	Score    int    `json:"score"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := r.URL.Query()
	page, err := parseQueryInt(query, "page", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parseQueryInt(query, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rankingService.Leaderboard(ctx, seasonID, page, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "season_id", seasonID, "page", page, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(result.Items))
	for _, entry := range result.Items {
		items = append(items, leaderboardEntryToDTO(entry))
	}

	writeJSON(ctx, w, http.StatusOK, leaderboardResponse{
		Items: items,
		Pagination: paginationDTO{
			Page:       result.Page,
			Limit:      result.Limit,
			TotalCount: result.TotalCount,
			Offset:     result.Offset,
			HasMore:    result.HasMore,
		},
	})
}

func (h *Handler) GetUserPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserPosition")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: userId query parameter is required", usecase.ErrInvalidInput))
		return
	}

	position, err := h.rankingService.UserPosition(ctx, seasonID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user position failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := userPositionResponse{UserID: position.UserID, Position: "-", Score: position.Score}
	if position.Ranked {
		resp.Position = position.Rank
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *Handler) GetGlobalRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGlobalRanking")
	defer span.End()

	limit, err := parseQueryInt(r.URL.Query(), "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.rankingService.GlobalRanking(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get global ranking failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryToDTO(entry))
	}

	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSeasonScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonScore")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.PathValue("userID")
	record, err := h.rankingService.GetScore(ctx, seasonID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season score failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, seasonScoreToDTO(record))
}

func (h *Handler) SetSeasonScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSeasonScore")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setScoreRequest
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

	userID := r.PathValue("userID")
	record, err := h.rankingService.SetScore(ctx, seasonID, userID, req.Score)
	if err != nil {
		h.logger.WarnContext(ctx, "set season score failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, seasonScoreToDTO(record))
}

func (h *Handler) ResetSeasonScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetSeasonScore")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.PathValue("userID")
	record, err := h.rankingService.ResetScore(ctx, seasonID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "reset season score failed", "season_id", seasonID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, seasonScoreToDTO(record))
}
