package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/playforge/arcade-api/internal/domain/user"
	"github.com/playforge/arcade-api/internal/usecase"
)

type upsertUserRequest struct {
	GameID           string `json:"gameId"`
	GameUsername     string `json:"gameUsername" validate:"omitempty,max=100"`
	TelegramID       string `json:"telegramId"`
	TelegramUsername string `json:"telegramUsername" validate:"omitempty,max=100"`
	PaypalEmail      string `json:"paypalEmail" validate:"omitempty,email"`
	DeviceID         string `json:"deviceId"`
	BestScore        int    `json:"bestScore" validate:"gte=0"`
	SeasonScore      int    `json:"seasonScore" validate:"gte=0"`
	MusicEnabled     *bool  `json:"musicEnabled"`
	AvatarSrc        string `json:"avatarSrc"`
}

type addScoretotalRequest struct {
	ID         string `json:"id" validate:"required"`
	ScoreToAdd int    `json:"scoreToAdd" validate:"required,gt=0"`
}

type preferencesRequest struct {
	MusicEnabled *bool `json:"musicEnabled" validate:"required"`
}

type listUsersResponse struct {
	Total       int       `json:"total"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Users       []userDTO `json:"users"`
}

type upsertUserResponse struct {
	Message    string          `json:"message"`
	User       userDTO         `json:"user"`
	SeasonData *seasonScoreDTO `json:"seasonData"`
}

type preferencesDTO struct {
	MusicEnabled bool `json:"musicEnabled"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsers")
	defer span.End()

	query := r.URL.Query()
	page, err := parseQueryInt(query, "page", 1)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parseQueryInt(query, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.userService.List(ctx, usecase.ListUsersInput{
		Search: strings.TrimSpace(query.Get("search")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list users failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	users := make([]userDTO, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, userToDTO(u))
	}

	writeJSON(ctx, w, http.StatusOK, listUsersResponse{
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
		Users:       users,
	})
}

func (h *Handler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertUser")
	defer span.End()

	var req upsertUserRequest
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

	result, err := h.userService.Upsert(ctx, usecase.UpsertUserInput{
		GameID:           req.GameID,
		GameUsername:     req.GameUsername,
		TelegramID:       req.TelegramID,
		TelegramUsername: req.TelegramUsername,
		PaypalEmail:      req.PaypalEmail,
		DeviceID:         req.DeviceID,
		BestScore:        req.BestScore,
		SeasonScore:      req.SeasonScore,
		MusicEnabled:     req.MusicEnabled,
		AvatarSrc:        req.AvatarSrc,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert user failed", "telegram_id", req.TelegramID, "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	message := "user updated"
	if result.Created {
		status = http.StatusCreated
		message = "user created"
	}

	var seasonData *seasonScoreDTO
	if result.SeasonData != nil {
		dto := seasonScoreToDTO(*result.SeasonData)
		seasonData = &dto
	}

	writeJSON(ctx, w, status, upsertUserResponse{
		Message:    message,
		User:       userToDTO(result.User),
		SeasonData: seasonData,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUser")
	defer span.End()

	userID := r.PathValue("userID")
	u, err := h.userService.GetByGameID(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, userToDTO(u))
}

func (h *Handler) GetUserByTelegramID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserByTelegramID")
	defer span.End()

	telegramID := r.PathValue("telegramID")
	u, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user by telegram id failed", "telegram_id", telegramID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, userToDTO(u))
}

func (h *Handler) GetUserByDeviceID(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserByDeviceID")
	defer span.End()

	deviceID := r.PathValue("deviceID")
	u, err := h.userService.GetByDeviceID(ctx, deviceID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user by device id failed", "device_id", deviceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, userToDTO(u))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteUser")
	defer span.End()

	userID := r.PathValue("userID")
	if err := h.userService.Delete(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "delete user failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (h *Handler) AddScoretotal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddScoretotal")
	defer span.End()

	var req addScoretotalRequest
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

	u, err := h.userService.AddScoretotal(ctx, req.ID, req.ScoreToAdd)
	if err != nil {
		h.logger.WarnContext(ctx, "add scoretotal failed", "id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, userToDTO(u))
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPreferences")
	defer span.End()

	userID := r.PathValue("userID")
	prefs, err := h.userService.GetPreferences(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get preferences failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, preferencesDTO{MusicEnabled: prefs.MusicEnabled})
}

func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPreferences")
	defer span.End()

	var req preferencesRequest
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
	prefs, err := h.userService.SetPreferences(ctx, userID, user.Preferences{MusicEnabled: *req.MusicEnabled})
	if err != nil {
		h.logger.WarnContext(ctx, "set preferences failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, preferencesDTO{MusicEnabled: prefs.MusicEnabled})
}
