package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
	"github.com/playforge/arcade-api/internal/domain/user"
	"github.com/playforge/arcade-api/internal/platform/logging"
	"github.com/playforge/arcade-api/internal/usecase"
)

type Handler struct {
	userService      *usecase.UserService
	rankingService   *usecase.RankingService
	seasonService    *usecase.SeasonService
	broadcastService *usecase.BroadcastService
	settingsService  *usecase.SettingsService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	userService *usecase.UserService,
	rankingService *usecase.RankingService,
	seasonService *usecase.SeasonService,
	broadcastService *usecase.BroadcastService,
	settingsService *usecase.SettingsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		userService:      userService,
		rankingService:   rankingService,
		seasonService:    seasonService,
		broadcastService: broadcastService,
		settingsService:  settingsService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// seasonIDFromPath rejects non-numeric season ids before any query runs.
func seasonIDFromPath(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid season id %q", usecase.ErrInvalidInput, raw)
	}

	return id, nil
}

func parseQueryInt(values url.Values, key string, fallback int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", usecase.ErrInvalidInput, key, raw)
	}

	return v, nil
}

type userDTO struct {
	GameID           string `json:"gameId"`
	GameUsername     string `json:"gameUsername"`
	TelegramID       string `json:"telegramId,omitempty"`
	TelegramUsername string `json:"telegramUsername,omitempty"`
	PaypalEmail      string `json:"paypalEmail,omitempty"`
	BestScore        int    `json:"bestScore"`
	RegistrationDate string `json:"registrationDate"`
	LastLogin        string `json:"lastLogin"`
	DeviceID         string `json:"deviceId,omitempty"`
	MusicEnabled     bool   `json:"musicEnabled"`
	AvatarSrc        string `json:"avatarSrc"`
	Scoretotal       int    `json:"scoretotal"`
}

type seasonDTO struct {
	ID           int64   `json:"id"`
	SeasonNumber int     `json:"seasonNumber"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	PrizeMoney   float64 `json:"prizeMoney"`
	SecondPrize  float64 `json:"secondPrize"`
	ThirdPrize   float64 `json:"thirdPrize"`
	IsActive     bool    `json:"isActive"`
	IsClosed     bool    `json:"isClosed"`
	WinnerID     string  `json:"winnerId,omitempty"`
}

type seasonScoreDTO struct {
	UserID   string `json:"userId"`
	SeasonID int64  `json:"seasonId"`
	Score    int    `json:"score"`
}

type leaderboardEntryDTO struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarSrc string `json:"avatarSrc"`
	Score     int    `json:"score"`
}

func userToDTO(v user.User) userDTO {
	return userDTO{
		GameID:           v.GameID,
		GameUsername:     v.GameUsername,
		TelegramID:       v.TelegramID,
		TelegramUsername: v.TelegramUsername,
		PaypalEmail:      v.PaypalEmail,
		BestScore:        v.BestScore,
		RegistrationDate: v.RegistrationDate.UTC().Format(time.RFC3339),
		LastLogin:        v.LastLogin.UTC().Format(time.RFC3339),
		DeviceID:         v.DeviceID,
		MusicEnabled:     v.MusicEnabled,
		AvatarSrc:        v.AvatarSrc,
		Scoretotal:       v.Scoretotal,
	}
}

func seasonToDTO(v season.Season) seasonDTO {
	return seasonDTO{
		ID:           v.ID,
		SeasonNumber: v.SeasonNumber,
		StartDate:    v.StartDate.UTC().Format(time.RFC3339),
		EndDate:      v.EndDate.UTC().Format(time.RFC3339),
		PrizeMoney:   v.PrizeMoney,
		SecondPrize:  v.SecondPrize,
		ThirdPrize:   v.ThirdPrize,
		IsActive:     v.IsActive,
		IsClosed:     v.IsClosed,
		WinnerID:     v.WinnerID,
	}
}

func seasonScoreToDTO(v score.SeasonScore) seasonScoreDTO {
	return seasonScoreDTO{
		UserID:   v.UserID,
		SeasonID: v.SeasonID,
		Score:    v.Score,
	}
}

func leaderboardEntryToDTO(v score.LeaderboardEntry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		UserID:    v.UserID,
		Username:  v.Username,
		AvatarSrc: v.AvatarSrc,
		Score:     v.Score,
	}
}
