package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/users", handler.ListUsers)
	mux.HandleFunc("POST /api/users", handler.UpsertUser)
	mux.HandleFunc("POST /api/users/add-scoretotal", handler.AddScoretotal)
	mux.HandleFunc("GET /api/users/telegram/{telegramID}", handler.GetUserByTelegramID)
	mux.HandleFunc("GET /api/users/device/{deviceID}", handler.GetUserByDeviceID)
	mux.HandleFunc("GET /api/users/{userID}", handler.GetUser)
	mux.HandleFunc("DELETE /api/users/{userID}", handler.DeleteUser)
	mux.HandleFunc("GET /api/users/{userID}/preferences", handler.GetPreferences)
	mux.HandleFunc("POST /api/users/{userID}/preferences", handler.SetPreferences)
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/seasons", handler.ListSeasons)
	mux.HandleFunc("POST /api/seasons", handler.CreateSeason)
	mux.HandleFunc("GET /api/seasons/{seasonID}", handler.GetSeason)
	mux.HandleFunc("PUT /api/seasons/{seasonID}", handler.UpdateSeason)
	mux.HandleFunc("DELETE /api/seasons/{seasonID}", handler.DeleteSeason)
	mux.HandleFunc("POST /api/seasons/{seasonID}/close", handler.CloseSeason)
	mux.HandleFunc("GET /api/seasons/{seasonID}/ranking", handler.GetLeaderboard)
	mux.HandleFunc("GET /api/seasons/{seasonID}/user-position", handler.GetUserPosition)
	mux.HandleFunc("GET /api/seasons/{seasonID}/scores/{userID}", handler.GetSeasonScore)
	mux.HandleFunc("POST /api/seasons/{seasonID}/scores/{userID}", handler.SetSeasonScore)
	mux.HandleFunc("POST /api/seasons/{seasonID}/scores/{userID}/reset", handler.ResetSeasonScore)
	mux.HandleFunc("GET /api/global-ranking", handler.GetGlobalRanking)
}

func registerSettingsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/how-to-play-link", handler.GetHowToPlayLink)
	mux.HandleFunc("POST /api/how-to-play-link", handler.SetHowToPlayLink)
	mux.HandleFunc("GET /api/promo-banner", handler.GetPromoBanner)
	mux.HandleFunc("POST /api/promo-banner", handler.SetPromoBanner)
	mux.HandleFunc("POST /api/broadcast", handler.Broadcast)
}
