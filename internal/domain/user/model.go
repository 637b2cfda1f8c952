package user

import "time"

// User is a player profile keyed by its external-facing game id.
// TelegramID, DeviceID, WinnerID-style references and AvatarSrc use the empty
// string as "absent".
type User struct {
	GameID           string
	GameUsername     string
	TelegramID       string
	TelegramUsername string
	PaypalEmail      string
	BestScore        int
	RegistrationDate time.Time
	LastLogin        time.Time
	DeviceID         string
	MusicEnabled     bool
	AvatarSrc        string
	Scoretotal       int
}

// Preferences holds the per-user client settings exposed over the API.
type Preferences struct {
	MusicEnabled bool
}
