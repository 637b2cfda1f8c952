package httpapi

import (
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/playforge/arcade-api/internal/usecase"
)

type seasonRequest struct {
	SeasonNumber int     `json:"seasonNumber" validate:"required,gt=0"`
	StartDate    string  `json:"startDate" validate:"required"`
	EndDate      string  `json:"endDate" validate:"required"`
	PrizeMoney   float64 `json:"prizeMoney" validate:"gte=0"`
	SecondPrize  float64 `json:"secondPrize" validate:"gte=0"`
	ThirdPrize   float64 `json:"thirdPrize" validate:"gte=0"`
}

type closeSeasonResponse struct {
	Message           string    `json:"message"`
	Season            seasonDTO `json:"season"`
	Winner            *userDTO  `json:"winner"`
	WinnerSeasonScore int       `json:"winnerSeasonScore"`
}

func (req seasonRequest) toInput() (usecase.SeasonInput, error) {
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return usecase.SeasonInput{}, fmt.Errorf("%w: invalid startDate %q: %v", usecase.ErrInvalidInput, req.StartDate, err)
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return usecase.SeasonInput{}, fmt.Errorf("%w: invalid endDate %q: %v", usecase.ErrInvalidInput, req.EndDate, err)
	}

	return usecase.SeasonInput{
		SeasonNumber: req.SeasonNumber,
		StartDate:    start,
		EndDate:      end,
		PrizeMoney:   req.PrizeMoney,
		SecondPrize:  req.SecondPrize,
		ThirdPrize:   req.ThirdPrize,
	}, nil
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	seasons, err := h.seasonService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, s := range seasons {
		items = append(items, seasonToDTO(s))
	}

	writeJSON(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	var req seasonRequest
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

	input, err := req.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.seasonService.Create(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "season_number", req.SeasonNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, seasonToDTO(created))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	s, err := h.seasonService.Get(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, seasonToDTO(s))
}

func (h *Handler) UpdateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSeason")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req seasonRequest
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

	input, err := req.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.seasonService.Update(ctx, seasonID, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, seasonToDTO(updated))
}

func (h *Handler) CloseSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloseSeason")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.seasonService.Close(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "close season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	var winner *userDTO
	if result.Winner != nil {
		dto := userToDTO(*result.Winner)
		winner = &dto
	}

	writeJSON(ctx, w, http.StatusOK, closeSeasonResponse{
		Message:           "season closed",
		Season:            seasonToDTO(result.Season),
		Winner:            winner,
		WinnerSeasonScore: result.WinnerScore,
	})
}

func (h *Handler) DeleteSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSeason")
	defer span.End()

	seasonID, err := seasonIDFromPath(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.seasonService.Delete(ctx, seasonID); err != nil {
		h.logger.WarnContext(ctx, "delete season failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"message": "season deleted"})
}
